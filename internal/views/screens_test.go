package views

import (
	"strings"
	"testing"
)

func TestRenderHomePanel(t *testing.T) {
	out := RenderHomePanel(HomePanelData{
		Sketchbook:  "/home/me/sketchbook",
		Mode:        "java",
		Libraries:   []InstalledData{{Name: "Video", Version: "2.1", Update: true}},
		UpdateCount: 1,
	})
	for _, want := range []string{"/home/me/sketchbook", "Libraries [l]", "^ Video", "1 update(s) available", "Tools [t]", "(none installed)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("home panel missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCategoryChooser(t *testing.T) {
	disabled := RenderCategoryChooser(CategoryChooserData{Categories: []string{"All"}, Selected: "All"})
	if !strings.Contains(disabled, "Filter by Category:") || strings.Contains(disabled, "<") {
		t.Fatalf("disabled chooser should not offer cycling: %q", disabled)
	}
	enabled := RenderCategoryChooser(CategoryChooserData{
		Categories: []string{"All", "Sound", "Video"},
		Selected:   "Sound",
		Enabled:    true,
		Focused:    true,
		JumpQuery:  "so",
	})
	if !strings.Contains(enabled, "< Sound >") || !strings.Contains(enabled, "(2)") || !strings.Contains(enabled, "jump: so") {
		t.Fatalf("unexpected chooser: %q", enabled)
	}
}

func TestRenderManagerDialogStatus(t *testing.T) {
	out := RenderManagerDialog(ManagerDialogData{
		Title:       "Library Manager",
		Empty:       true,
		StatusLine:  "An error occurred when downloading the list of available contributions.",
		StatusError: true,
		FilterView:  "Filter your search...",
	})
	for _, want := range []string{"Library Manager", "No contributions match.", "An error occurred", "Filter your search..."} {
		if !strings.Contains(out, want) {
			t.Fatalf("dialog missing %q:\n%s", want, out)
		}
	}
}

func TestContributionMarkdown(t *testing.T) {
	if ContributionMarkdown(ContributionDetailsData{}) != "" {
		t.Fatal("empty details should render nothing")
	}
	md := ContributionMarkdown(ContributionDetailsData{
		Name:       "Video",
		Type:       "Library",
		Authors:    []string{"The Processing Foundation"},
		Version:    "2.2",
		Installed:  "2.1",
		Update:     true,
		Categories: []string{"Video & Vision"},
		Paragraph:  "Reads *movies*.",
	})
	for _, want := range []string{"## Video", "by The Processing Foundation", "(update available)", "Video & Vision", "Reads *movies*."} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if RenderMarkdown("", 40) != "" {
		t.Fatal("empty markdown should render nothing")
	}
	if out := RenderMarkdown(md, 60); !strings.Contains(out, "Video") {
		t.Fatalf("rendered markdown lost content: %q", out)
	}
}
