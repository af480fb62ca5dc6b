package model

import (
	"errors"
	"testing"
)

func TestContributionValidateSuccess(t *testing.T) {
	c := Contribution{
		Name:        "Video",
		Type:        TypeLibrary,
		Version:     12,
		MinRevision: 200,
		MaxRevision: 228,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid contribution, got error: %v", err)
	}
}

func TestContributionValidateRequiresName(t *testing.T) {
	c := Contribution{Type: TypeTool}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "model: contribution name is required" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestContributionValidateInvalidFields(t *testing.T) {
	c := Contribution{Name: "Bad", Type: ContributionType("plugin")}
	if err := c.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got: %v", err)
	}

	c.Type = TypeMode
	c.Version = -1
	if err := c.Validate(); !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("expected ErrInvalidVersion, got: %v", err)
	}

	c.Version = 1
	c.MinRevision = 300
	c.MaxRevision = 200
	if err := c.Validate(); !errors.Is(err, ErrInvalidRevision) {
		t.Fatalf("expected ErrInvalidRevision, got: %v", err)
	}
}

func TestParseTypeAliases(t *testing.T) {
	cases := map[string]ContributionType{
		"library":   TypeLibrary,
		"Libraries": TypeLibrary,
		" tools ":   TypeTool,
		"MODE":      TypeMode,
	}
	for in, want := range cases {
		got, err := ParseType(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseType("examples"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestFilterTitlesAndAccepts(t *testing.T) {
	if got := TypeFilter(TypeLibrary).Title(); got != "Library Manager" {
		t.Fatalf("unexpected library title %q", got)
	}
	if got := UpdateFilter().Title(); got != "Update Manager" {
		t.Fatalf("unexpected update title %q", got)
	}

	lib := &Contribution{Name: "Sound", Type: TypeLibrary, Version: 3}
	newer := &Contribution{Name: "Sound", Type: TypeLibrary, Version: 4}

	if !TypeFilter(TypeLibrary).Accepts(nil, lib) {
		t.Fatal("library filter should accept advertised library")
	}
	if TypeFilter(TypeTool).Accepts(lib, nil) {
		t.Fatal("tool filter should reject library")
	}
	if UpdateFilter().Accepts(lib, lib) {
		t.Fatal("update filter should reject up-to-date contribution")
	}
	if !UpdateFilter().Accepts(lib, newer) {
		t.Fatal("update filter should accept outdated contribution")
	}
	if UpdateFilter().Accepts(nil, newer) {
		t.Fatal("update filter should reject contributions that are not installed")
	}
}

func TestContributionKeyAndCategory(t *testing.T) {
	c := Contribution{Name: " Video ", Type: TypeLibrary, Categories: []string{"Video & Vision"}}
	if c.Key() != "library/video" {
		t.Fatalf("unexpected key %q", c.Key())
	}
	if !c.HasCategory("video & vision") {
		t.Fatal("expected case-insensitive category match")
	}
	padded := Contribution{Categories: []string{" Sound "}}
	if !padded.HasCategory("sound") || !padded.HasCategory("Sound ") {
		t.Fatal("category match should ignore surrounding whitespace")
	}
	if c.DisplayVersion() != "0" {
		t.Fatalf("unexpected display version %q", c.DisplayVersion())
	}
}
