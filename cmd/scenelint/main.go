// Package main provides scenelint, a validator for scene.yaml manifests.
//
// It checks the manifest for structural problems (duplicate types or set
// ids, unknown set members, malformed versions) without loading any
// presenter code, so it can run in CI before the app builds.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/go-drift/scene/pkg/config"
)

func main() {
	minVersion := flag.String("min-version", "", "fail if the manifest version is older than this semantic version")
	quiet := flag.Bool("q", false, "suppress the summary, only report problems")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	m, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenelint: %v\n", err)
		os.Exit(1)
	}

	if *minVersion != "" {
		if err := checkMinVersion(m.Version, *minVersion); err != nil {
			fmt.Fprintf(os.Stderr, "scenelint: %v\n", err)
			os.Exit(1)
		}
	}

	if !*quiet {
		fmt.Printf("%s: ok (%d scenes, %d sets)\n", path, len(m.Scenes), len(m.Sets))
	}
}

func checkMinVersion(have, want string) error {
	if have == "" {
		return fmt.Errorf("manifest declares no version, -min-version %s requires one", want)
	}
	haveV, wantV := canonical(have), canonical(want)
	if !semver.IsValid(wantV) {
		return fmt.Errorf("invalid -min-version %q", want)
	}
	if semver.Compare(haveV, wantV) < 0 {
		return fmt.Errorf("manifest version %s is older than required %s", have, want)
	}
	return nil
}

func canonical(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

func usage() {
	fmt.Fprintf(os.Stderr, `scenelint validates a scene manifest.

Usage: scenelint [flags] <scene.yaml>

Flags:
  -min-version <ver>  fail if the manifest version is older
  -q                  suppress the summary line
`)
}
