package auth

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Profile is one named database connection profile. The DSN is the secret;
// everything else is bookkeeping.
type Profile struct {
	Name         string    `json:"name"`
	DSN          string    `json:"dsn"`
	Table        string    `json:"table,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// ProfileStore is the interface for storing and retrieving connection profiles
type ProfileStore interface {
	// Store saves a profile
	Store(profile *Profile) error

	// Retrieve gets the profile with the given name
	Retrieve(name string) (*Profile, error)

	// List returns all stored profiles
	List() ([]*Profile, error)

	// Delete removes the profile with the given name
	Delete(name string) error

	// Exists checks if a profile with the given name exists
	Exists(name string) bool
}

// Manager handles profile storage with fallback mechanisms
type Manager struct {
	stores    []ProfileStore
	env       *EnvironmentStore
	configDir string
}

// NewManager creates a profile manager with the available storage backends:
// system keychain when reachable, encrypted file always, environment last.
func NewManager() (*Manager, error) {
	var stores []ProfileStore

	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "profiles.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	env := NewEnvironmentStore()
	stores = append(stores, env)

	return &Manager{stores: stores, env: env, configDir: configDir}, nil
}

// Store saves the profile in every writable store. The keychain cannot
// enumerate its keys, so the encrypted file must also hold each profile
// for List to be trustworthy.
func (m *Manager) Store(profile *Profile) error {
	if profile.Name == "" {
		return errors.New("profile name is required")
	}
	if profile.DSN == "" {
		return errors.New("connection string is required")
	}

	profile.LastModified = time.Now()

	var stored bool
	var lastErr error
	for _, store := range m.stores {
		if store == ProfileStore(m.env) {
			continue
		}
		if err := store.Store(profile); err == nil {
			stored = true
		} else {
			lastErr = err
		}
	}

	if !stored {
		if lastErr != nil {
			return fmt.Errorf("failed to store profile: %w", lastErr)
		}
		return errors.New("no available profile stores")
	}
	return nil
}

// Retrieve gets the named profile from the first store that has it
func (m *Manager) Retrieve(name string) (*Profile, error) {
	for _, store := range m.stores {
		if profile, err := store.Retrieve(name); err == nil && profile != nil {
			return profile, nil
		}
	}
	return nil, fmt.Errorf("profile not found: %s", name)
}

// RetrieveActive resolves the profile for a run: the explicitly switched
// profile first, then one named "default", then the only stored profile if
// exactly one exists, and the environment variables last.
func (m *Manager) RetrieveActive() (*Profile, error) {
	if name := m.ActiveName(); name != "" {
		if profile, err := m.retrieveStored(name); err == nil {
			return profile, nil
		}
	}

	if profile, err := m.retrieveStored("default"); err == nil {
		return profile, nil
	}

	if profiles := m.listStored(); len(profiles) == 1 {
		return profiles[0], nil
	}

	if profile, err := m.env.Retrieve(""); err == nil && profile != nil {
		return profile, nil
	}

	return nil, ErrProfileNotFound
}

// retrieveStored looks the name up in the persistent stores only
func (m *Manager) retrieveStored(name string) (*Profile, error) {
	for _, store := range m.stores {
		if store == ProfileStore(m.env) {
			continue
		}
		if profile, err := store.Retrieve(name); err == nil && profile != nil {
			return profile, nil
		}
	}
	return nil, ErrProfileNotFound
}

// listStored merges the persistent stores, newest copy of a name winning
func (m *Manager) listStored() []*Profile {
	profileMap := make(map[string]*Profile)

	for _, store := range m.stores {
		if store == ProfileStore(m.env) {
			continue
		}
		profiles, err := store.List()
		if err != nil {
			continue
		}
		for _, profile := range profiles {
			if existing, ok := profileMap[profile.Name]; !ok || profile.LastModified.After(existing.LastModified) {
				profileMap[profile.Name] = profile
			}
		}
	}

	var result []*Profile
	for _, profile := range profileMap {
		result = append(result, profile)
	}
	return result
}

// List returns all stored profiles, including the environment one when set
func (m *Manager) List() ([]*Profile, error) {
	result := m.listStored()

	if envProfiles, err := m.env.List(); err == nil {
		result = append(result, envProfiles...)
	}
	return result, nil
}

// Delete removes the named profile from every persistent store that has it
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if store == ProfileStore(m.env) || !store.Exists(name) {
			continue
		}
		if err := store.Delete(name); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete profile: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("profile not found: %s", name)
	}

	if m.ActiveName() == name {
		_ = os.Remove(m.activePath())
	}
	return nil
}

// DeleteAll removes every stored profile and the active marker
func (m *Manager) DeleteAll() error {
	profiles := m.listStored()
	var lastErr error
	for _, profile := range profiles {
		if err := m.Delete(profile.Name); err != nil {
			lastErr = err
		}
	}
	_ = os.Remove(m.activePath())
	return lastErr
}

// SetActive marks the named profile as the one future runs resolve
func (m *Manager) SetActive(name string) error {
	if _, err := m.retrieveStored(name); err != nil {
		return fmt.Errorf("profile not found: %s", name)
	}
	if err := os.WriteFile(m.activePath(), []byte(name), 0600); err != nil {
		return fmt.Errorf("failed to record active profile: %w", err)
	}
	return nil
}

// ActiveName returns the explicitly switched profile name, if any
func (m *Manager) ActiveName() string {
	content, err := os.ReadFile(m.activePath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}

func (m *Manager) activePath() string {
	return filepath.Join(m.configDir, "active_profile")
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "igcounts")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "igcounts")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "igcounts")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "igcounts")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeProfile creates a copy of the profile with the DSN password masked
func SanitizeProfile(profile *Profile) *Profile {
	if profile == nil {
		return nil
	}

	return &Profile{
		Name:         profile.Name,
		DSN:          MaskDSN(profile.DSN),
		Table:        profile.Table,
		LastModified: profile.LastModified,
	}
}

// MaskDSN hides the password portion of a connection string. A DSN that
// does not parse as a URL is masked wholesale.
func MaskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return maskString(dsn)
	}
	if u.User == nil {
		return dsn
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
		return u.String()
	}
	return dsn
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidProfile   = errors.New("invalid profile")
	ErrStoreUnavailable = errors.New("profile store unavailable")
)
