package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidType     = errors.New("model: invalid contribution type")
	ErrInvalidVersion  = errors.New("model: invalid contribution version")
	ErrInvalidRevision = errors.New("model: invalid revision range")
)

type ContributionType string

const (
	TypeLibrary ContributionType = "library"
	TypeTool    ContributionType = "tool"
	TypeMode    ContributionType = "mode"
)

// AllTypes lists the types in the order the home screen shows them.
var AllTypes = []ContributionType{TypeLibrary, TypeTool, TypeMode}

func (t ContributionType) IsValid() bool {
	switch t {
	case TypeLibrary, TypeTool, TypeMode:
		return true
	default:
		return false
	}
}

func (t ContributionType) Title() string {
	switch t {
	case TypeLibrary:
		return "Library"
	case TypeTool:
		return "Tool"
	case TypeMode:
		return "Mode"
	default:
		return ""
	}
}

// Folder is the sketchbook sub-directory holding installed contributions of t.
func (t ContributionType) Folder() string {
	switch t {
	case TypeLibrary:
		return "libraries"
	case TypeTool:
		return "tools"
	case TypeMode:
		return "modes"
	default:
		return ""
	}
}

// RequiresRestart reports whether changes to a contribution of type t only
// take effect after the editor restarts.
func (t ContributionType) RequiresRestart() bool {
	return t == TypeTool || t == TypeMode
}

func ParseType(raw string) (ContributionType, error) {
	t := ContributionType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case "lib", "libraries":
		t = TypeLibrary
	case "tools":
		t = TypeTool
	case "modes":
		t = TypeMode
	}
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, raw)
	}
	return t, nil
}

type Contribution struct {
	ID            string
	Type          ContributionType
	Name          string
	Authors       []string
	URL           string
	Source        string
	Sentence      string
	Paragraph     string
	Categories    []string
	Version       int
	PrettyVersion string
	MinRevision   int
	MaxRevision   int
	// Folder is set for installed contributions only.
	Folder string
}

// Key identifies a contribution across the advertised and installed lists.
func (c Contribution) Key() string {
	return string(c.Type) + "/" + strings.ToLower(strings.TrimSpace(c.Name))
}

func (c Contribution) HasCategory(category string) bool {
	category = strings.TrimSpace(category)
	for _, have := range c.Categories {
		if strings.EqualFold(strings.TrimSpace(have), category) {
			return true
		}
	}
	return false
}

func (c Contribution) DisplayVersion() string {
	if strings.TrimSpace(c.PrettyVersion) != "" {
		return c.PrettyVersion
	}
	return fmt.Sprintf("%d", c.Version)
}

func (c Contribution) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("model: contribution name is required")
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, c.Type)
	}
	if c.Version < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, c.Version)
	}
	if c.MinRevision < 0 || c.MaxRevision < 0 {
		return fmt.Errorf("%w: negative bound", ErrInvalidRevision)
	}
	if c.MaxRevision != 0 && c.MinRevision > c.MaxRevision {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRevision, c.MinRevision, c.MaxRevision)
	}
	return nil
}
