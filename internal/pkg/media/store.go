package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// Store keeps processed media and returns the URL it is served from.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

// NewStoreFromEnv uses S3 when S3_ENABLED is true and the bucket is reachable,
// and the directory localRoot otherwise.
func NewStoreFromEnv(ctx context.Context, localRoot string) Store {
	if localRoot == "" {
		localRoot = DefaultLocalRoot
	}
	cfg, err := LoadS3Config()
	if err != nil {
		log.Warnf("[Media] invalid S3 configuration, using local storage: %v", err)
		return NewLocalStore(localRoot, DefaultLocalURLPrefix)
	}
	if cfg.Enabled {
		store, err := NewS3Store(ctx, cfg)
		if err == nil {
			return store
		}
		log.Warnf("[Media] S3 unavailable, using local storage: %v", err)
	}
	return NewLocalStore(localRoot, DefaultLocalURLPrefix)
}

const (
	DefaultLocalRoot      = "./uploads"
	DefaultLocalURLPrefix = "/uploads"
)

// LocalStore writes objects below a directory served as static files.
type LocalStore struct {
	root      string
	urlPrefix string
}

func NewLocalStore(root, urlPrefix string) *LocalStore {
	return &LocalStore{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalStore) Name() string { return "local" }

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return s.urlPrefix + "/" + strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+key)), "/"), nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
