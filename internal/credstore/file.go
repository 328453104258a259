package credstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileBackend stores namespaces as a YAML document. Every Put and Erase
// rewrites the file through a temporary file and a rename.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

type fileDocument struct {
	Version    int                          `yaml:"version"`
	Namespaces map[string]map[string]string `yaml:"namespaces"`
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) load() (*fileDocument, error) {
	doc := &fileDocument{Version: 1, Namespaces: make(map[string]map[string]string)}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	if doc.Version != 1 {
		return nil, fmt.Errorf("unsupported store version: %d (expected 1)", doc.Version)
	}
	if doc.Namespaces == nil {
		doc.Namespaces = make(map[string]map[string]string)
	}
	return doc, nil
}

func (f *FileBackend) save(doc *fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	header := []byte("# IR bridge credential store. Contains the WiFi password in clear text.\n\n")
	data = append(header, data...)

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary store file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save store file: %w", err)
	}
	return nil
}

func (f *FileBackend) Get(ctx context.Context, namespace, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := doc.Namespaces[namespace][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileBackend) Put(ctx context.Context, namespace string, entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	ns, ok := doc.Namespaces[namespace]
	if !ok {
		ns = make(map[string]string, len(entries))
		doc.Namespaces[namespace] = ns
	}
	for k, v := range entries {
		ns[k] = v
	}
	return f.save(doc)
}

func (f *FileBackend) Erase(ctx context.Context, namespace string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Namespaces[namespace]; !ok {
		return nil
	}
	delete(doc.Namespaces, namespace)
	return f.save(doc)
}

func (f *FileBackend) Close() error { return nil }
