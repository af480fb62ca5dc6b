package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

var _ Repository = (*SQLiteRepository)(nil)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "contribd-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestInstallCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	installed := parseRFC3339(t, "2026-02-09T12:00:00Z")

	in := Install{
		ID:            "inst-1",
		Type:          "library",
		Name:          "Video",
		Version:       11,
		PrettyVersion: "2.1",
		Folder:        "/sketchbook/libraries/Video",
		Source:        "https://example.org/video.git",
		InstalledAt:   installed,
	}
	if err := repo.CreateInstall(ctx, in); err != nil {
		t.Fatalf("create install: %v", err)
	}

	got, err := repo.GetInstall(ctx, in.ID)
	if err != nil {
		t.Fatalf("get install: %v", err)
	}
	if got.Name != "Video" || got.Version != 11 || !got.InstalledAt.Equal(installed) || got.UpdatedAt != nil {
		t.Fatalf("unexpected install get result: %#v", got)
	}

	found, err := repo.FindInstall(ctx, "library", "video")
	if err != nil || found.ID != in.ID {
		t.Fatalf("find install: %#v %v", found, err)
	}

	updated := parseRFC3339(t, "2026-03-01T08:00:00Z")
	in.Version = 12
	in.PrettyVersion = "2.2"
	in.UpdatedAt = &updated
	if err := repo.UpdateInstall(ctx, in); err != nil {
		t.Fatalf("update install: %v", err)
	}

	if err := repo.CreateInstall(ctx, Install{ID: "inst-2", Type: "tool", Name: "Color Selector", Folder: "/sketchbook/tools/Color Selector", InstalledAt: installed}); err != nil {
		t.Fatalf("create second install: %v", err)
	}

	libs, err := repo.ListInstalls(ctx, InstallListFilter{Type: "library"})
	if err != nil {
		t.Fatalf("list installs: %v", err)
	}
	if len(libs) != 1 || libs[0].Version != 12 || libs[0].UpdatedAt == nil || !libs[0].UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected library list: %#v", libs)
	}

	all, err := repo.ListInstalls(ctx, InstallListFilter{})
	if err != nil || len(all) != 2 || all[0].Name != "Color Selector" {
		t.Fatalf("unexpected full list: %#v %v", all, err)
	}

	page, err := repo.ListInstalls(ctx, InstallListFilter{Offset: 1})
	if err != nil || len(page) != 1 || page[0].Name != "Video" {
		t.Fatalf("unexpected offset page: %#v %v", page, err)
	}

	if err := repo.DeleteInstall(ctx, in.ID); err != nil {
		t.Fatalf("delete install: %v", err)
	}
	_, err = repo.GetInstall(ctx, in.ID)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := repo.DeleteInstall(ctx, in.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestInstallUniquePerTypeAndName(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := parseRFC3339(t, "2026-02-09T12:00:00Z")

	if err := repo.CreateInstall(ctx, Install{ID: "a", Type: "library", Name: "Sound", Folder: "x", InstalledAt: now}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateInstall(ctx, Install{ID: "b", Type: "library", Name: "SOUND", Folder: "y", InstalledAt: now}); err == nil {
		t.Fatal("expected unique constraint violation")
	}
	if err := repo.CreateInstall(ctx, Install{ID: "c", Type: "tool", Name: "Sound", Folder: "z", InstalledAt: now}); err != nil {
		t.Fatalf("same name with other type should be allowed: %v", err)
	}
	if err := repo.CreateInstall(ctx, Install{ID: "d", Type: "plugin", Name: "Other", Folder: "w", InstalledAt: now}); err == nil {
		t.Fatal("expected type check violation")
	}
}

func TestListingCacheRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	body, at, err := repo.LoadListingCache(ctx)
	if err != nil || body != nil || !at.IsZero() {
		t.Fatalf("expected empty cache, got %q %v %v", body, at, err)
	}

	first := parseRFC3339(t, "2026-02-09T12:00:00Z")
	if err := repo.SaveListingCache(ctx, []byte("contributions: []"), first); err != nil {
		t.Fatalf("save cache: %v", err)
	}
	second := parseRFC3339(t, "2026-02-10T12:00:00Z")
	if err := repo.SaveListingCache(ctx, []byte("contributions: [{}]"), second); err != nil {
		t.Fatalf("overwrite cache: %v", err)
	}

	body, at, err = repo.LoadListingCache(ctx)
	if err != nil {
		t.Fatalf("load cache: %v", err)
	}
	if string(body) != "contributions: [{}]" || !at.Equal(second) {
		t.Fatalf("unexpected cache: %q %v", body, at)
	}
}

func TestOpenSQLiteCreatesDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state", "contribd.db")
	repo, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()

	if _, err := repo.ListInstalls(t.Context(), InstallListFilter{}); err != nil {
		t.Fatalf("list after open: %v", err)
	}
}
