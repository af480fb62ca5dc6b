// Package install places contributions into the sketchbook by cloning their
// source repositories, and keeps the install records in step.
package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
	"github.com/sandeepkv93/contribd/internal/logging"
	"github.com/sandeepkv93/contribd/internal/manifest"
	"github.com/sandeepkv93/contribd/internal/model"
	"github.com/sandeepkv93/contribd/internal/storage"
)

var (
	ErrNoSource         = errors.New("install: contribution has no source")
	ErrAlreadyInstalled = errors.New("install: already installed")
	ErrNotInstalled     = errors.New("install: not installed")
)

// Dirs resolves the sketchbook folder for each contribution type.
type Dirs interface {
	Dir(t model.ContributionType) string
}

type Store interface {
	CreateInstall(ctx context.Context, in storage.Install) error
	FindInstall(ctx context.Context, typ, name string) (storage.Install, error)
	UpdateInstall(ctx context.Context, in storage.Install) error
	DeleteInstall(ctx context.Context, id string) error
}

type Result struct {
	Contribution    model.Contribution
	RestartRequired bool
}

type Installer struct {
	dirs   Dirs
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func New(dirs Dirs, store Store, logger *slog.Logger) *Installer {
	return &Installer{
		dirs:   dirs,
		store:  store,
		logger: logging.OrDiscard(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (i *Installer) target(c model.Contribution) string {
	return filepath.Join(i.dirs.Dir(c.Type), FolderName(c.Name))
}

// FolderName turns a contribution name into a safe folder name.
func FolderName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	out := strings.TrimSpace(r.Replace(name))
	if out == "" || strings.HasPrefix(out, ".") {
		out = "_" + out
	}
	return out
}

func (i *Installer) Install(ctx context.Context, c model.Contribution) (Result, error) {
	target := i.target(c)
	if _, err := os.Stat(target); err == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrAlreadyInstalled, c.Name)
	}
	installed, err := i.place(ctx, c, target)
	if err != nil {
		return Result{}, err
	}
	if err := i.record(ctx, installed, false); err != nil {
		return Result{}, err
	}
	i.logger.Info("contribution installed", "name", c.Name, "type", c.Type, "version", c.Version, "folder", target)
	return Result{Contribution: installed, RestartRequired: c.Type.RequiresRestart()}, nil
}

// Update replaces an installed contribution with the advertised version.
// The old folder is kept aside until the new one is in place and restored
// if anything fails.
func (i *Installer) Update(ctx context.Context, installed, advertised model.Contribution) (Result, error) {
	folder := installed.Folder
	if folder == "" {
		folder = i.target(installed)
	}
	if _, err := os.Stat(folder); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNotInstalled, installed.Name)
	}
	backup := filepath.Join(filepath.Dir(folder), ".contribd-backup-"+filepath.Base(folder))
	_ = os.RemoveAll(backup)
	if err := os.Rename(folder, backup); err != nil {
		return Result{}, fmt.Errorf("install: move old version aside: %w", err)
	}

	target := i.target(advertised)
	updated, err := i.place(ctx, advertised, target)
	if err != nil {
		if restoreErr := os.Rename(backup, folder); restoreErr != nil {
			i.logger.Error("restoring previous version failed", "folder", folder, "err", restoreErr)
		}
		return Result{}, err
	}
	if err := os.RemoveAll(backup); err != nil {
		i.logger.Warn("removing previous version failed", "backup", backup, "err", err)
	}
	if err := i.record(ctx, updated, true); err != nil {
		return Result{}, err
	}
	i.logger.Info("contribution updated", "name", advertised.Name, "from", installed.Version, "to", advertised.Version)
	return Result{Contribution: updated, RestartRequired: advertised.Type.RequiresRestart()}, nil
}

func (i *Installer) Remove(ctx context.Context, c model.Contribution) (Result, error) {
	folder := c.Folder
	if folder == "" {
		folder = i.target(c)
	}
	if _, err := os.Stat(folder); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNotInstalled, c.Name)
	}
	if err := os.RemoveAll(folder); err != nil {
		return Result{}, fmt.Errorf("install: remove %s: %w", folder, err)
	}
	if i.store != nil {
		rec, err := i.store.FindInstall(ctx, string(c.Type), c.Name)
		switch {
		case err == nil:
			if err := i.store.DeleteInstall(ctx, rec.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return Result{}, fmt.Errorf("install: delete record: %w", err)
			}
		case !errors.Is(err, storage.ErrNotFound):
			return Result{}, fmt.Errorf("install: find record: %w", err)
		}
	}
	i.logger.Info("contribution removed", "name", c.Name, "type", c.Type)
	return Result{Contribution: c, RestartRequired: c.Type.RequiresRestart()}, nil
}

// place clones the source into target and makes sure a manifest exists.
func (i *Installer) place(ctx context.Context, c model.Contribution, target string) (model.Contribution, error) {
	if strings.TrimSpace(c.Source) == "" {
		return model.Contribution{}, fmt.Errorf("%w: %s", ErrNoSource, c.Name)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return model.Contribution{}, fmt.Errorf("install: create %s: %w", filepath.Dir(target), err)
	}
	_, err := git.PlainCloneContext(ctx, target, false, &git.CloneOptions{
		URL:          c.Source,
		SingleBranch: true,
	})
	if err != nil {
		_ = os.RemoveAll(target)
		return model.Contribution{}, fmt.Errorf("install: clone %s: %w", c.Source, err)
	}
	if _, err := manifest.Read(target); err != nil {
		if err := manifest.Write(target, c); err != nil {
			_ = os.RemoveAll(target)
			return model.Contribution{}, fmt.Errorf("install: write manifest: %w", err)
		}
	}
	c.Folder = target
	return c, nil
}

func (i *Installer) record(ctx context.Context, c model.Contribution, update bool) error {
	if i.store == nil {
		return nil
	}
	now := i.now()
	existing, err := i.store.FindInstall(ctx, string(c.Type), c.Name)
	switch {
	case err == nil:
		existing.Version = c.Version
		existing.PrettyVersion = c.PrettyVersion
		existing.Folder = c.Folder
		existing.Source = c.Source
		existing.UpdatedAt = &now
		if err := i.store.UpdateInstall(ctx, existing); err != nil {
			return fmt.Errorf("install: update record: %w", err)
		}
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("install: find record: %w", err)
	}
	rec := storage.Install{
		ID:            uuid.NewString(),
		Type:          string(c.Type),
		Name:          c.Name,
		Version:       c.Version,
		PrettyVersion: c.PrettyVersion,
		Folder:        c.Folder,
		Source:        c.Source,
		InstalledAt:   now,
	}
	if update {
		rec.UpdatedAt = &now
	}
	if err := i.store.CreateInstall(ctx, rec); err != nil {
		return fmt.Errorf("install: create record: %w", err)
	}
	return nil
}
