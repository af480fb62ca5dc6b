// Package manifest reads and writes the YAML documents that describe
// contributions: the remote listing and the per-folder contribution.yml.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/contribd/internal/model"
	"gopkg.in/yaml.v3"
)

// FileName is the manifest every installed contribution folder carries.
const FileName = "contribution.yml"

type Entry struct {
	ID            string   `yaml:"id,omitempty"`
	Type          string   `yaml:"type"`
	Name          string   `yaml:"name"`
	Authors       []string `yaml:"authors,omitempty"`
	URL           string   `yaml:"url,omitempty"`
	Source        string   `yaml:"source,omitempty"`
	Sentence      string   `yaml:"sentence,omitempty"`
	Paragraph     string   `yaml:"paragraph,omitempty"`
	Categories    []string `yaml:"categories,omitempty"`
	Version       int      `yaml:"version"`
	PrettyVersion string   `yaml:"pretty_version,omitempty"`
	MinRevision   int      `yaml:"min_revision,omitempty"`
	MaxRevision   int      `yaml:"max_revision,omitempty"`
}

type Document struct {
	Contributions []Entry `yaml:"contributions"`
}

func (e Entry) Contribution() (model.Contribution, error) {
	t, err := model.ParseType(e.Type)
	if err != nil {
		return model.Contribution{}, err
	}
	c := model.Contribution{
		ID:            strings.TrimSpace(e.ID),
		Type:          t,
		Name:          strings.TrimSpace(e.Name),
		Authors:       e.Authors,
		URL:           e.URL,
		Source:        e.Source,
		Sentence:      e.Sentence,
		Paragraph:     e.Paragraph,
		Categories:    e.Categories,
		Version:       e.Version,
		PrettyVersion: e.PrettyVersion,
		MinRevision:   e.MinRevision,
		MaxRevision:   e.MaxRevision,
	}
	if err := c.Validate(); err != nil {
		return model.Contribution{}, err
	}
	return c, nil
}

func FromContribution(c model.Contribution) Entry {
	return Entry{
		ID:            c.ID,
		Type:          string(c.Type),
		Name:          c.Name,
		Authors:       c.Authors,
		URL:           c.URL,
		Source:        c.Source,
		Sentence:      c.Sentence,
		Paragraph:     c.Paragraph,
		Categories:    c.Categories,
		Version:       c.Version,
		PrettyVersion: c.PrettyVersion,
		MinRevision:   c.MinRevision,
		MaxRevision:   c.MaxRevision,
	}
}

// ParseListing decodes a listing document. Entries that fail validation are
// skipped and counted rather than failing the whole document.
func ParseListing(raw []byte) ([]model.Contribution, int, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, 0, fmt.Errorf("manifest: empty listing")
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("manifest: decode listing: %w", err)
	}
	out := make([]model.Contribution, 0, len(doc.Contributions))
	skipped := 0
	for _, entry := range doc.Contributions {
		c, err := entry.Contribution()
		if err != nil {
			skipped++
			continue
		}
		out = append(out, c)
	}
	return out, skipped, nil
}

func MarshalListing(cs []model.Contribution) ([]byte, error) {
	doc := Document{Contributions: make([]Entry, 0, len(cs))}
	for _, c := range cs {
		doc.Contributions = append(doc.Contributions, FromContribution(c))
	}
	return yaml.Marshal(doc)
}

// Read loads the manifest of an installed contribution folder.
func Read(dir string) (model.Contribution, error) {
	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return model.Contribution{}, err
	}
	var entry Entry
	if err := yaml.Unmarshal(raw, &entry); err != nil {
		return model.Contribution{}, fmt.Errorf("manifest: decode %s: %w", dir, err)
	}
	c, err := entry.Contribution()
	if err != nil {
		return model.Contribution{}, fmt.Errorf("manifest: %s: %w", dir, err)
	}
	c.Folder = dir
	return c, nil
}

func Write(dir string, c model.Contribution) error {
	payload, err := yaml.Marshal(FromContribution(c))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), payload, 0o644)
}
