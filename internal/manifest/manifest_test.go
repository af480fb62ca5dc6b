package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/contribd/internal/model"
)

const sampleListing = `
contributions:
  - type: library
    name: Video
    authors: [The Processing Foundation]
    source: https://example.org/video.git
    sentence: GStreamer-based video library.
    categories: [Video & Vision]
    version: 12
    pretty_version: "2.2"
  - type: tool
    name: Color Picker
    version: 3
  - type: plugin
    name: Unknown kind
    version: 1
  - type: mode
    name: ""
    version: 1
`

func TestParseListingSkipsInvalidEntries(t *testing.T) {
	cs, skipped, err := ParseListing([]byte(sampleListing))
	if err != nil {
		t.Fatalf("parse listing: %v", err)
	}
	if skipped != 2 {
		t.Fatalf("expected 2 skipped entries, got %d", skipped)
	}
	if len(cs) != 2 {
		t.Fatalf("expected 2 contributions, got %d", len(cs))
	}
	if cs[0].Name != "Video" || cs[0].Type != model.TypeLibrary || cs[0].Version != 12 {
		t.Fatalf("unexpected first contribution: %+v", cs[0])
	}
	if cs[0].DisplayVersion() != "2.2" {
		t.Fatalf("unexpected pretty version %q", cs[0].DisplayVersion())
	}
	if cs[1].Type != model.TypeTool {
		t.Fatalf("unexpected second type %q", cs[1].Type)
	}
}

func TestParseListingRejectsEmptyAndMalformed(t *testing.T) {
	if _, _, err := ParseListing([]byte("   \n")); err == nil {
		t.Fatal("expected error for empty listing")
	}
	if _, _, err := ParseListing([]byte("contributions: [")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestMarshalListingParsesBack(t *testing.T) {
	in := []model.Contribution{{Name: "Sound", Type: model.TypeLibrary, Version: 4, Categories: []string{"Sound"}}}
	raw, err := MarshalListing(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, skipped, err := ParseListing(raw)
	if err != nil || skipped != 0 || len(out) != 1 {
		t.Fatalf("unexpected parse result: %v skipped=%d len=%d", err, skipped, len(out))
	}
	if !out[0].HasCategory("sound") {
		t.Fatalf("category lost: %+v", out[0])
	}
}

func TestReadWriteFolderManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Video")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := Write(dir, model.Contribution{Name: "Video", Type: model.TypeLibrary, Version: 11}); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	got, err := Read(dir)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if got.Name != "Video" || got.Version != 11 || got.Folder != dir {
		t.Fatalf("unexpected manifest: %+v", got)
	}

	if _, err := Read(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
