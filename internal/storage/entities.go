package storage

import "time"

// Install records a contribution installed through contribd.
type Install struct {
	ID            string
	Type          string
	Name          string
	Version       int
	PrettyVersion string
	Folder        string
	Source        string
	InstalledAt   time.Time
	UpdatedAt     *time.Time
}

type InstallListFilter struct {
	Type   string
	Limit  int
	Offset int
}
