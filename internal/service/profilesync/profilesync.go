// Package profilesync keeps the connection-profile registry in sync with a
// directory of JSON profile files. Files dropped into the directory are
// upserted into the registry; files removed from it have their profiles
// deleted.
package profilesync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/topicmux/topicmux/internal/model"
	"github.com/topicmux/topicmux/internal/service/profile"
	"github.com/topicmux/topicmux/pkg/types"
	"gorm.io/gorm"
)

// Options configures the sync service.
type Options struct {
	// Enabled turns the sync on. When false, Start is a no-op.
	Enabled bool

	// Dir is the directory containing profile JSON files.
	Dir string
}

// Services holds the collaborators the sync service needs.
type Services struct {
	DB       *gorm.DB
	Profiles *profile.Service
}

// Service watches the profile config directory and reconciles it with the
// registry.
type Service struct {
	opts     Options
	services Services

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a profile sync service.
func New(opts Options, services Services) (*Service, error) {
	if opts.Enabled && strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("profile sync enabled but no config directory given")
	}
	return &Service{opts: opts, services: services}, nil
}

// Start performs an initial full reconciliation and then watches the config
// directory for changes until the context is canceled.
func (s *Service) Start(ctx context.Context) error {
	if !s.opts.Enabled {
		return nil
	}

	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile config directory %s: %w", s.opts.Dir, err)
	}

	if err := s.reconcileAll(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create profile config watcher: %w", err)
	}
	if err := watcher.Add(s.opts.Dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch profile config directory: %w", err)
	}
	s.watcher = watcher

	go s.watchLoop(ctx)
	return nil
}

// Stop stops the filesystem watcher.
func (s *Service) Stop() {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
}

func (s *Service) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			// a full reconcile per event is cheap at profile-registry scale
			// and sidesteps rename/partial-write edge cases
			if err := s.reconcileAll(); err != nil {
				log.Printf("[profilesync] reconcile after %s failed: %v", event.Op, err)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[profilesync] watcher error: %v", err)
		}
	}
}

// reconcileAll brings the registry in line with the config directory:
// every JSON file is upserted, and tracked profiles whose file disappeared
// are deleted.
func (s *Service) reconcileAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.opts.Dir)
	if err != nil {
		return fmt.Errorf("failed to read profile config directory: %w", err)
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.opts.Dir, entry.Name())
		name, err := s.syncFile(path)
		if err != nil {
			log.Printf("[profilesync] skipping %s: %v", path, err)
			continue
		}
		seen[name] = true
	}

	return s.removeOrphans(seen)
}

// syncFile loads one profile file and upserts it. Returns the profile name.
func (s *Service) syncFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	var p types.ConnectionProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("failed to parse profile file: %w", err)
	}

	hash := sha256.Sum256(data)
	fileHash := hex.EncodeToString(hash[:])

	var tracked model.ManagedProfileFile
	err = s.services.DB.Where("profile_name = ?", p.Name).First(&tracked).Error
	if err == nil && tracked.FileHash == fileHash {
		// unchanged since last sync
		return p.Name, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up tracking row: %w", err)
	}

	if err := s.services.Profiles.Upsert(&p); err != nil {
		return "", err
	}

	record := model.ManagedProfileFile{
		ProfileName: p.Name,
		FilePath:    path,
		FileHash:    fileHash,
	}
	if tracked.ID != 0 {
		record.ID = tracked.ID
	}
	if err := s.services.DB.Save(&record).Error; err != nil {
		return "", fmt.Errorf("failed to track profile file: %w", err)
	}

	return p.Name, nil
}

// removeOrphans deletes tracked profiles whose config file no longer exists.
func (s *Service) removeOrphans(seen map[string]bool) error {
	var tracked []model.ManagedProfileFile
	if err := s.services.DB.Find(&tracked).Error; err != nil {
		return fmt.Errorf("failed to list tracked profile files: %w", err)
	}

	for _, row := range tracked {
		if seen[row.ProfileName] {
			continue
		}
		if err := s.services.Profiles.Delete(row.ProfileName); err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
			log.Printf("[profilesync] failed to delete orphaned profile '%s': %v", row.ProfileName, err)
			continue
		}
		if err := s.services.DB.Unscoped().Delete(&model.ManagedProfileFile{}, row.ID).Error; err != nil {
			log.Printf("[profilesync] failed to drop tracking row for '%s': %v", row.ProfileName, err)
		}
	}
	return nil
}
