package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/agentrep/trustledger/internal/identity"
)

// DebounceInterval lets editors and atomic renames settle before a reload.
const DebounceInterval = 100 * time.Millisecond

type allowlist struct {
	Oracles []identity.ID `yaml:"oracles"`
}

// FileRegistry authorizes the oracles listed in a YAML allowlist and
// reloads it when the file changes. A file that fails to parse keeps the
// previous list in force.
type FileRegistry struct {
	path string

	mu      sync.RWMutex
	members *Set
	reloads int
}

func NewFileRegistry(path string) (*FileRegistry, error) {
	r := &FileRegistry{path: path, members: NewSet()}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRegistry) IsAuthorized(_ context.Context, id identity.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members.Contains(id), nil
}

func (r *FileRegistry) Oracles() []identity.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members.Slice()
}

// Reloads counts successful loads, including the initial one.
func (r *FileRegistry) Reloads() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reloads
}

func (r *FileRegistry) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read oracle allowlist: %w", err)
	}
	var list allowlist
	if err := yaml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse oracle allowlist: %w", err)
	}
	if len(list.Oracles) > MaxOracles {
		return fmt.Errorf("oracle allowlist has %d entries, at most %d allowed", len(list.Oracles), MaxOracles)
	}
	for _, id := range list.Oracles {
		if err := id.Validate(); err != nil {
			return fmt.Errorf("oracle allowlist: %w", err)
		}
	}
	set := NewSet(list.Oracles...)

	r.mu.Lock()
	r.members = set
	r.reloads++
	r.mu.Unlock()
	return nil
}

// Watch reloads the allowlist on change until ctx is done. The parent
// directory is watched so atomic replacements are seen.
func (r *FileRegistry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir, name := filepath.Dir(r.path), filepath.Base(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	slog.Info("watching oracle allowlist", "path", r.path)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(DebounceInterval, func() {
				if err := r.Reload(); err != nil {
					slog.Warn("oracle allowlist reload failed, keeping previous list", "error", err)
					return
				}
				slog.Info("oracle allowlist reloaded", "oracles", len(r.Oracles()))
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("oracle allowlist watcher error", "error", err)
		}
	}
}
