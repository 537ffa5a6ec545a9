package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Rhea/pkg/logger"
)

var log = logger.Get("Scratch")

type (
	// Kind tags an allocated artifact template with the type of media
	// the extraction step is expected to materialise inside it.
	Kind string

	// Config controls where the scratch directory lives and how long
	// artifacts inside it are allowed to linger before the eviction
	// sweep reclaims them.
	Config struct {
		Dir            string        `yaml:"dir" env:"SCRATCH_DIR"`
		MaxArtifactAge time.Duration `yaml:"max_artifact_age" env:"SCRATCH_MAX_ARTIFACT_AGE" env-default:"1h"`
	}

	// Store owns the process-wide scratch directory used to hold
	// in-flight and recently completed downloads. It hands out unique
	// per-request output path templates and reclaims stale artifacts.
	Store struct {
		dir string
	}
)

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// OutputDir resolves the directory the store should own; when no directory
// is configured a default beneath the system temp dir is used.
func (config *Config) OutputDir() string {
	if config.Dir != "" {
		return config.Dir
	}

	return filepath.Join(os.TempDir(), "rhea-downloads")
}

// New constructs a scratch store rooted at the directory provided, creating
// it if it's missing. An error is returned if the path exists but points at
// a regular file, or cannot be accessed.
func New(dir string) (*Store, error) {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("scratch path '%s' is not a directory", dir)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("scratch path '%s' could not be created: %w", dir, err)
		}
	} else {
		return nil, fmt.Errorf("scratch path '%s' could not be accessed: %w", dir, err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the directory this store owns.
func (store *Store) Dir() string {
	return store.dir
}

// AllocateTemplate produces an extraction output template rooted inside the
// scratch directory. The template embeds the artifact kind, the request
// timestamp and a short unique discriminator so that concurrent requests
// cannot collide even when their timestamps and extracted titles coincide.
// The extraction step substitutes the real title and extension.
func (store *Store) AllocateTemplate(kind Kind, requestedAt time.Time) string {
	discriminator := uuid.NewString()[:8]
	name := fmt.Sprintf("%s_%d_%s_%%(title)s.%%(ext)s", kind, requestedAt.Unix(), discriminator)

	return filepath.Join(store.dir, name)
}

// EvictStale scans the scratch directory and deletes every regular file
// whose modification time is older than maxAge. Failures against individual
// files are logged and swallowed so a single unreadable or concurrently
// removed file cannot abort the sweep; a transiently unreadable directory
// is logged and the sweep abandoned.
func (store *Store) EvictStale(maxAge time.Duration) {
	entries, err := os.ReadDir(store.dir)
	if err != nil {
		log.Emit(logger.WARNING, "Eviction sweep of %s abandoned: %v\n", store.dir, err)
		return
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Emit(logger.WARNING, "Eviction sweep could not stat %s: %v\n", entry.Name(), err)
			continue
		}

		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}

		path := filepath.Join(store.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Emit(logger.WARNING, "Eviction sweep could not remove %s: %v\n", path, err)
			continue
		}

		log.Emit(logger.REMOVE, "Evicted stale artifact %s (age %s)\n", entry.Name(), now.Sub(info.ModTime()))
	}
}
