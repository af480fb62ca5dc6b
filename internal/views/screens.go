package views

import (
	"fmt"
	"strings"
)

type InstalledData struct {
	Name    string
	Version string
	Update  bool
}

type HomePanelData struct {
	Sketchbook  string
	Mode        string
	Libraries   []InstalledData
	Tools       []InstalledData
	Modes       []InstalledData
	UpdateCount int
	Checking    bool
	SpinnerView string
	LastChecked string
}

type CategoryChooserData struct {
	Categories []string
	Selected   string
	Enabled    bool
	Focused    bool
	JumpQuery  string
}

type ManagerDialogData struct {
	Title       string
	Chooser     CategoryChooserData
	ListView    string
	Empty       bool
	StatusLine  string
	StatusError bool
	Downloading bool
	SpinnerView string
	FilterView  string
	FilterFocus bool
	ListFocus   bool
	DetailsView string
}

type ContributionDetailsData struct {
	Name       string
	Type       string
	Authors    []string
	Version    string
	Installed  string
	Update     bool
	Categories []string
	Sentence   string
	Paragraph  string
	URL        string
}

type HelpPanelData struct {
	Context  string
	Bindings []string
	HelpView string
}

func RenderHomePanel(data HomePanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("sketchbook: %s (mode: %s)\n", data.Sketchbook, data.Mode))
	switch {
	case data.Checking:
		b.WriteString(fmt.Sprintf("%s checking for updates...\n", data.SpinnerView))
	case data.UpdateCount > 0:
		b.WriteString(Badge(fmt.Sprintf("%d update(s) available", data.UpdateCount)) + " press [u]\n")
	case data.LastChecked != "":
		b.WriteString(mutedStyle.Render("up to date, checked "+data.LastChecked) + "\n")
	}
	renderInstalledSection(&b, "Libraries", "l", data.Libraries)
	renderInstalledSection(&b, "Tools", "t", data.Tools)
	renderInstalledSection(&b, "Modes", "m", data.Modes)
	return strings.TrimSpace(b.String())
}

func renderInstalledSection(b *strings.Builder, title, key string, items []InstalledData) {
	b.WriteString(fmt.Sprintf("\n%s [%s]:\n", title, key))
	if len(items) == 0 {
		b.WriteString("  (none installed)\n")
		return
	}
	for _, item := range items {
		marker := " "
		if item.Update {
			marker = "^"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", marker, item.Name, mutedStyle.Render(item.Version)))
	}
}

func RenderCategoryChooser(data CategoryChooserData) string {
	label := "Filter by Category:"
	if data.Focused {
		label = focusedStyle.Render(label)
	}
	if !data.Enabled {
		return label + " " + mutedStyle.Render(data.Selected)
	}
	out := fmt.Sprintf("%s < %s > %s", label, data.Selected, mutedStyle.Render(fmt.Sprintf("(%d)", len(data.Categories)-1)))
	if data.Focused && data.JumpQuery != "" {
		out += " jump: " + data.JumpQuery
	}
	return out
}

func RenderManagerDialog(data ManagerDialogData) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(data.Title) + "\n")
	b.WriteString(RenderCategoryChooser(data.Chooser) + "\n\n")

	if data.Empty {
		b.WriteString(mutedStyle.Render("No contributions match.") + "\n")
	} else {
		b.WriteString(data.ListView + "\n")
	}

	switch {
	case data.Downloading:
		b.WriteString(data.SpinnerView + " " + data.StatusLine + "\n")
	case data.StatusError:
		b.WriteString(errorStyle.Render(data.StatusLine) + "\n")
	case data.StatusLine != "":
		b.WriteString(statusStyle.Render(data.StatusLine) + "\n")
	}

	filterLabel := "filter:"
	if data.FilterFocus {
		filterLabel = focusedStyle.Render(filterLabel)
	}
	b.WriteString(filterLabel + " " + data.FilterView + "\n")
	if data.DetailsView != "" {
		b.WriteString("\n" + data.DetailsView)
	}
	return strings.TrimSpace(b.String())
}

// ContributionMarkdown lays out the details pane as markdown for glamour.
func ContributionMarkdown(data ContributionDetailsData) string {
	if strings.TrimSpace(data.Name) == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("## %s\n\n", data.Name))
	if len(data.Authors) > 0 {
		b.WriteString(fmt.Sprintf("by %s\n\n", strings.Join(data.Authors, ", ")))
	}
	b.WriteString(fmt.Sprintf("- **type:** %s\n", data.Type))
	if data.Version != "" {
		b.WriteString(fmt.Sprintf("- **available:** %s\n", data.Version))
	}
	if data.Installed != "" {
		line := fmt.Sprintf("- **installed:** %s", data.Installed)
		if data.Update {
			line += " (update available)"
		}
		b.WriteString(line + "\n")
	}
	if len(data.Categories) > 0 {
		b.WriteString(fmt.Sprintf("- **categories:** %s\n", strings.Join(data.Categories, ", ")))
	}
	if data.URL != "" {
		b.WriteString(fmt.Sprintf("- **url:** %s\n", data.URL))
	}
	if data.Sentence != "" {
		b.WriteString("\n" + data.Sentence + "\n")
	}
	if data.Paragraph != "" {
		b.WriteString("\n" + data.Paragraph + "\n")
	}
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n%s",
		strings.ToLower(data.Context),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
