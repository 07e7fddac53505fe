// Package config loads scene manifests from scene.yaml files.
//
// A manifest declares presenter descriptors and sets as data; the code
// side contributes presenter and hook factories through a [Registry].
// [Build] joins the two into the descriptors and sets a scene service
// initializes from.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/scene/pkg/scene"
)

// Manifest represents a scene.yaml configuration.
type Manifest struct {
	// Version is the manifest schema version, a semantic version such as
	// "v1.0.0" (the leading "v" may be omitted in the file).
	Version string `yaml:"version"`

	Scenes []SceneConfig `yaml:"scenes"`
	Sets   []SetConfig   `yaml:"sets,omitempty"`
}

// SceneConfig declares one presenter.
type SceneConfig struct {
	Type    string `yaml:"type"`
	Locator string `yaml:"locator"`
	Layer   int    `yaml:"layer"`

	// Mode is "async" (the default) or "sync".
	Mode string `yaml:"mode,omitempty"`
}

// SetConfig declares one named group of presenter types.
type SetConfig struct {
	ID      string   `yaml:"id"`
	Members []string `yaml:"members"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Parse(data)
}

// LoadOptional reads scene.yaml from dir if present. A missing file
// yields an empty manifest.
func LoadOptional(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "scene.yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	return Load(path)
}

// Parse unmarshals and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for structural problems: a malformed
// version, duplicate or empty identifiers, and set members that name no
// declared scene.
func (m *Manifest) Validate() error {
	if v := strings.TrimSpace(m.Version); v != "" {
		if !semver.IsValid(canonicalVersion(v)) {
			return fmt.Errorf("invalid manifest version %q", m.Version)
		}
	}

	types := make(map[string]bool, len(m.Scenes))
	for i, sc := range m.Scenes {
		if strings.TrimSpace(sc.Type) == "" {
			return fmt.Errorf("scenes[%d]: type must not be empty", i)
		}
		if types[sc.Type] {
			return fmt.Errorf("duplicate scene type %q", sc.Type)
		}
		types[sc.Type] = true

		if strings.TrimSpace(sc.Locator) == "" {
			return fmt.Errorf("scene %q: locator must not be empty", sc.Type)
		}
		switch sc.Mode {
		case "", "async", "sync":
		default:
			return fmt.Errorf("scene %q: mode must be \"sync\" or \"async\" (got %q)", sc.Type, sc.Mode)
		}
	}

	setIDs := make(map[string]bool, len(m.Sets))
	for i, set := range m.Sets {
		if strings.TrimSpace(set.ID) == "" {
			return fmt.Errorf("sets[%d]: id must not be empty", i)
		}
		if setIDs[set.ID] {
			return fmt.Errorf("duplicate set id %q", set.ID)
		}
		setIDs[set.ID] = true

		if len(set.Members) == 0 {
			return fmt.Errorf("set %q has no members", set.ID)
		}
		for _, member := range set.Members {
			if !types[member] {
				return fmt.Errorf("set %q references unknown scene type %q", set.ID, member)
			}
		}
	}

	return nil
}

// canonicalVersion prefixes the "v" that semver requires when the
// manifest omits it.
func canonicalVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// Registry binds presenter types declared in a manifest to code.
type Registry struct {
	factories map[string]binding
}

type binding struct {
	presenter scene.PresenterFactory
	hooks     []scene.HookFactory
}

// NewRegistry creates an empty factory registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]binding)}
}

// Register binds a presenter factory (and optional hook factories) to a
// manifest scene type. Re-registering a type replaces the previous binding.
func (r *Registry) Register(presenterType string, factory scene.PresenterFactory, hooks ...scene.HookFactory) {
	r.factories[presenterType] = binding{presenter: factory, hooks: hooks}
}

// Build joins a validated manifest with the registry, producing the
// descriptors and sets for scene.Service.Init. Every scene type in the
// manifest must have a registered factory.
func Build(m *Manifest, r *Registry) ([]scene.Descriptor, []scene.Set, error) {
	descriptors := make([]scene.Descriptor, 0, len(m.Scenes))
	for _, sc := range m.Scenes {
		b, ok := r.factories[sc.Type]
		if !ok {
			return nil, nil, fmt.Errorf("no presenter factory registered for scene type %q", sc.Type)
		}
		mode := scene.LoadAsync
		if sc.Mode == "sync" {
			mode = scene.LoadSync
		}
		descriptors = append(descriptors, scene.Descriptor{
			Type:    sc.Type,
			Locator: sc.Locator,
			Layer:   sc.Layer,
			Mode:    mode,
			New:     b.presenter,
			Hooks:   b.hooks,
		})
	}

	sets := make([]scene.Set, 0, len(m.Sets))
	for _, set := range m.Sets {
		sets = append(sets, scene.Set{ID: set.ID, Members: append([]string(nil), set.Members...)})
	}

	return descriptors, sets, nil
}
