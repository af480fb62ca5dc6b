package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path, creating its directory and
// applying migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const installColumns = `id, type, name, version, pretty_version, folder, source, installed_at, updated_at`

func (r *SQLiteRepository) CreateInstall(ctx context.Context, in Install) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO installs (`+installColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Type, in.Name, in.Version, in.PrettyVersion, in.Folder, in.Source,
		mustTime(in.InstalledAt), nullTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetInstall(ctx context.Context, id string) (Install, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+installColumns+` FROM installs WHERE id = ?`, id)
	return scanInstallRow(row)
}

// FindInstall looks an install up by type and case-insensitive name.
func (r *SQLiteRepository) FindInstall(ctx context.Context, typ, name string) (Install, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+installColumns+` FROM installs
		WHERE type = ? AND name = ? COLLATE NOCASE`, typ, name)
	return scanInstallRow(row)
}

func (r *SQLiteRepository) UpdateInstall(ctx context.Context, in Install) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE installs
		SET type = ?, name = ?, version = ?, pretty_version = ?, folder = ?, source = ?, updated_at = ?
		WHERE id = ?`,
		in.Type, in.Name, in.Version, in.PrettyVersion, in.Folder, in.Source, nullTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteInstall(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM installs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListInstalls(ctx context.Context, filter InstallListFilter) ([]Install, error) {
	query := `SELECT ` + installColumns + ` FROM installs`
	args := make([]any, 0, 3)
	if filter.Type != "" {
		query += ` WHERE type = ?`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY name COLLATE NOCASE ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Install, 0)
	for rows.Next() {
		item, scanErr := scanInstall(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveListingCache(ctx context.Context, body []byte, fetchedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listing_cache (id, body, fetched_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		body, mustTime(fetchedAt),
	)
	return err
}

// LoadListingCache returns an empty body and zero time when nothing has been
// cached yet.
func (r *SQLiteRepository) LoadListingCache(ctx context.Context) ([]byte, time.Time, error) {
	var body []byte
	var fetched string
	err := r.db.QueryRowContext(ctx, `SELECT body, fetched_at FROM listing_cache WHERE id = 1`).Scan(&body, &fetched)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}
	fetchedAt, err := parseRequiredTime(fetched)
	if err != nil {
		return nil, time.Time{}, err
	}
	return body, fetchedAt, nil
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInstallRow(row *sql.Row) (Install, error) {
	item, err := scanInstall(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Install{}, ErrNotFound
		}
		return Install{}, err
	}
	return item, nil
}

func scanInstall(s scanner) (Install, error) {
	var out Install
	var installed string
	var updated sql.NullString
	if err := s.Scan(&out.ID, &out.Type, &out.Name, &out.Version, &out.PrettyVersion, &out.Folder, &out.Source, &installed, &updated); err != nil {
		return Install{}, err
	}
	installedAt, err := parseRequiredTime(installed)
	if err != nil {
		return Install{}, err
	}
	updatedAt, err := parseNullableTime(updated)
	if err != nil {
		return Install{}, err
	}
	out.InstalledAt = installedAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
