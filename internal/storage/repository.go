package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateInstall(ctx context.Context, in Install) error
	GetInstall(ctx context.Context, id string) (Install, error)
	FindInstall(ctx context.Context, typ, name string) (Install, error)
	UpdateInstall(ctx context.Context, in Install) error
	DeleteInstall(ctx context.Context, id string) error
	ListInstalls(ctx context.Context, filter InstallListFilter) ([]Install, error)

	SaveListingCache(ctx context.Context, body []byte, fetchedAt time.Time) error
	LoadListingCache(ctx context.Context) ([]byte, time.Time, error)
}
