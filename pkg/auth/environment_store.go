package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements ProfileStore using environment variables.
// It is read-only and always available, which makes it the fallback of
// last resort in the store chain.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment variable-based profile store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(profile *Profile) error {
	return ErrStoreUnavailable
}

// Retrieve gets the connection profile from environment variables.
// Only the empty name and "default" resolve here; named profiles live
// in the writable stores.
func (e *EnvironmentStore) Retrieve(name string) (*Profile, error) {
	if name != "" && name != "default" {
		return nil, ErrProfileNotFound
	}

	dsn := os.Getenv("IGCOUNTS_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, ErrProfileNotFound
	}

	return &Profile{
		Name:         "default",
		DSN:          dsn,
		Table:        os.Getenv("IGCOUNTS_TABLE"),
		LastModified: time.Now(),
	}, nil
}

// List returns the environment profile if one is configured
func (e *EnvironmentStore) List() ([]*Profile, error) {
	profile, err := e.Retrieve("")
	if err != nil {
		return []*Profile{}, nil
	}
	return []*Profile{profile}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment variables are set
func (e *EnvironmentStore) Exists(name string) bool {
	profile, err := e.Retrieve(name)
	return err == nil && profile != nil
}
