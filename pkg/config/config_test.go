package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/scene/pkg/assets"
	"github.com/go-drift/scene/pkg/scene"
)

const sampleManifest = `
version: 1.2.0
scenes:
  - type: hud
    locator: ui/hud
    layer: 2
  - type: menu
    locator: ui/menu
    layer: 5
    mode: sync
sets:
  - id: frontend
    members: [hud, menu]
`

func TestParse_ValidManifest(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(m.Scenes))
	}
	if m.Scenes[1].Mode != "sync" {
		t.Errorf("menu mode = %q, want sync", m.Scenes[1].Mode)
	}
	if len(m.Sets) != 1 || m.Sets[0].ID != "frontend" {
		t.Errorf("sets = %+v, want one frontend set", m.Sets)
	}
}

func TestParse_RejectsInvalidManifests(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad version",
			yaml:    "version: not-a-version\nscenes:\n  - {type: hud, locator: ui/hud, layer: 0}\n",
			wantErr: "invalid manifest version",
		},
		{
			name:    "duplicate type",
			yaml:    "scenes:\n  - {type: hud, locator: ui/hud, layer: 0}\n  - {type: hud, locator: ui/hud2, layer: 1}\n",
			wantErr: "duplicate scene type",
		},
		{
			name:    "empty locator",
			yaml:    "scenes:\n  - {type: hud, locator: \"\", layer: 0}\n",
			wantErr: "locator must not be empty",
		},
		{
			name:    "bad mode",
			yaml:    "scenes:\n  - {type: hud, locator: ui/hud, layer: 0, mode: lazy}\n",
			wantErr: "mode must be",
		},
		{
			name:    "unknown set member",
			yaml:    "scenes:\n  - {type: hud, locator: ui/hud, layer: 0}\nsets:\n  - {id: all, members: [hud, ghost]}\n",
			wantErr: "unknown scene type",
		},
		{
			name:    "duplicate set id",
			yaml:    "scenes:\n  - {type: hud, locator: ui/hud, layer: 0}\nsets:\n  - {id: all, members: [hud]}\n  - {id: all, members: [hud]}\n",
			wantErr: "duplicate set id",
		},
		{
			name:    "empty set",
			yaml:    "scenes:\n  - {type: hud, locator: ui/hud, layer: 0}\nsets:\n  - {id: all, members: []}\n",
			wantErr: "has no members",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_VersionPrefixOptional(t *testing.T) {
	for _, v := range []string{"1.0.0", "v1.0.0", "v2.1.0-rc.1"} {
		if _, err := Parse([]byte("version: " + v + "\n")); err != nil {
			t.Errorf("version %q rejected: %v", v, err)
		}
	}
}

func TestLoadOptional_MissingFileYieldsEmptyManifest(t *testing.T) {
	m, err := LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if len(m.Scenes) != 0 || len(m.Sets) != 0 {
		t.Errorf("manifest = %+v, want empty", m)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Scenes) != 2 {
		t.Errorf("got %d scenes, want 2", len(m.Scenes))
	}
}

func TestBuild_JoinsManifestWithRegistry(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	reg := NewRegistry()
	reg.Register("hud", func() scene.Presenter { return scene.BasePresenter{} })
	reg.Register("menu", func() scene.Presenter { return scene.BasePresenter{} })

	descriptors, sets, err := Build(m, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(descriptors) != 2 || len(sets) != 1 {
		t.Fatalf("got %d descriptors and %d sets, want 2 and 1", len(descriptors), len(sets))
	}
	if descriptors[1].Mode != scene.LoadSync {
		t.Errorf("menu mode = %v, want LoadSync", descriptors[1].Mode)
	}

	// The built configuration drives a real service end to end.
	provider := assets.NewMemoryProvider()
	svc := scene.New(provider)
	if err := svc.Init(descriptors, sets); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := svc.LoadSet(context.Background(), "frontend"); err != nil {
		t.Fatalf("LoadSet: %v", err)
	}
	if !svc.IsLoaded(scene.ByType("hud")) || !svc.IsLoaded(scene.ByType("menu")) {
		t.Error("frontend set members should be loaded")
	}
}

func TestBuild_UnregisteredTypeFails(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reg := NewRegistry()
	reg.Register("hud", func() scene.Presenter { return scene.BasePresenter{} })

	if _, _, err := Build(m, reg); err == nil {
		t.Fatal("Build succeeded with an unregistered type, want error")
	}
}
