package credstore

import (
	"context"
	"errors"
	"fmt"
)

const (
	// Namespace holds every key written by the store.
	Namespace = "wifiConfig"

	KeySSID     = "ssid"
	KeyPassword = "password"
	KeyHostname = "hostname"
)

var (
	// ErrNotFound is returned by backends for a missing key.
	ErrNotFound = errors.New("key not found")

	// ErrNotConfigured is returned by Load when no ssid has been stored.
	ErrNotConfigured = errors.New("no credentials stored")
)

// Backend is a namespaced string key-value store. Put writes all entries or
// none of them.
type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Put(ctx context.Context, namespace string, entries map[string]string) error
	Erase(ctx context.Context, namespace string) error
	Close() error
}

// Credentials are the three values collected by the configuration portal.
type Credentials struct {
	Hostname string
	SSID     string
	Password string
}

// Store reads and writes Credentials through a Backend.
type Store struct {
	backend Backend
}

// New returns a Store over backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Open builds a Store for one of the named backends: "sqlite", "file" or
// "memory". path is ignored for memory.
func Open(kind, path string) (*Store, error) {
	switch kind {
	case "sqlite":
		b, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return New(b), nil
	case "file":
		return New(NewFileBackend(path)), nil
	case "memory":
		return New(NewMemoryBackend()), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

// Configured reports whether an ssid has been stored.
func (s *Store) Configured(ctx context.Context) (bool, error) {
	_, err := s.backend.Get(ctx, Namespace, KeySSID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("read %s/%s: %w", Namespace, KeySSID, err)
	}
}

// Load returns the stored credentials. A missing password or hostname reads
// as empty; a missing ssid is ErrNotConfigured.
func (s *Store) Load(ctx context.Context) (Credentials, error) {
	var c Credentials

	ssid, err := s.backend.Get(ctx, Namespace, KeySSID)
	if errors.Is(err, ErrNotFound) {
		return c, ErrNotConfigured
	}
	if err != nil {
		return c, fmt.Errorf("read %s/%s: %w", Namespace, KeySSID, err)
	}
	c.SSID = ssid

	for key, dst := range map[string]*string{KeyPassword: &c.Password, KeyHostname: &c.Hostname} {
		v, err := s.backend.Get(ctx, Namespace, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return c, fmt.Errorf("read %s/%s: %w", Namespace, key, err)
		}
		*dst = v
	}
	return c, nil
}

// Save writes all three fields in one commit.
func (s *Store) Save(ctx context.Context, c Credentials) error {
	err := s.backend.Put(ctx, Namespace, map[string]string{
		KeySSID:     c.SSID,
		KeyPassword: c.Password,
		KeyHostname: c.Hostname,
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Erase forgets the stored credentials.
func (s *Store) Erase(ctx context.Context) error {
	if err := s.backend.Erase(ctx, Namespace); err != nil {
		return fmt.Errorf("erase credentials: %w", err)
	}
	return nil
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}
