// Package editor exposes the contributions the editor currently has
// installed, read from the sketchbook folder.
package editor

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sandeepkv93/contribd/internal/logging"
	"github.com/sandeepkv93/contribd/internal/manifest"
	"github.com/sandeepkv93/contribd/internal/model"
)

// Editor is the running editor as seen by the contribution manager.
type Editor interface {
	Libraries() []model.Contribution
	Tools() []model.Contribution
	Modes() []model.Contribution
}

// Installed gathers every installed contribution of e.
func Installed(e Editor) []model.Contribution {
	if e == nil {
		return nil
	}
	out := make([]model.Contribution, 0)
	out = append(out, e.Tools()...)
	out = append(out, e.Libraries()...)
	out = append(out, e.Modes()...)
	return out
}

type Sketchbook struct {
	Root   string
	Mode   string
	logger *slog.Logger
}

func NewSketchbook(root, mode string, logger *slog.Logger) *Sketchbook {
	return &Sketchbook{Root: root, Mode: mode, logger: logging.OrDiscard(logger)}
}

// Dir is where contributions of type t get installed.
func (s *Sketchbook) Dir(t model.ContributionType) string {
	return filepath.Join(s.Root, t.Folder())
}

func (s *Sketchbook) Libraries() []model.Contribution { return s.scan(model.TypeLibrary) }
func (s *Sketchbook) Tools() []model.Contribution     { return s.scan(model.TypeTool) }
func (s *Sketchbook) Modes() []model.Contribution     { return s.scan(model.TypeMode) }

// scan lists folders under the type directory that carry a manifest of the
// matching type. Unreadable folders are logged and skipped.
func (s *Sketchbook) scan(t model.ContributionType) []model.Contribution {
	dir := s.Dir(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("sketchbook scan failed", "dir", dir, "err", err)
		}
		return nil
	}
	out := make([]model.Contribution, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		folder := filepath.Join(dir, entry.Name())
		c, err := manifest.Read(folder)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("skipping contribution folder", "folder", folder, "err", err)
			}
			continue
		}
		if c.Type != t {
			s.logger.Warn("contribution in wrong folder", "folder", folder, "type", c.Type)
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
