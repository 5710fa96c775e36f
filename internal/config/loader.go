package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config: file not found")

// Loader handles configuration loading, watching, and hot-reloading.
type Loader struct {
	path     string
	mu       sync.RWMutex
	config   *Config
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewLoader creates a configuration loader for the given path.
func NewLoader(path string) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{path: path, ctx: ctx, cancel: cancel}
}

// Load reads, parses, and validates the configuration file.
func (l *Loader) Load() (*Config, error) {
	cfg, err := LoadFile(l.path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return cfg, nil
}

// Current returns the most recently loaded configuration, or defaults when
// nothing has been loaded.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.config == nil {
		return Default()
	}
	return l.config
}

// OnChange registers a callback invoked with each successfully reloaded
// configuration. Register before calling Watch.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts watching the config file for changes and hot-reloads it.
// A reload that fails to parse or validate is logged by the caller via the
// returned error channel; the previous configuration stays active.
func (l *Loader) Watch() (<-chan error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files by rename, which drops a
	// watch placed on the file itself.
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return nil, err
	}
	l.watcher = w

	errCh := make(chan error, 1)
	go l.watchLoop(errCh)
	return errCh, nil
}

func (l *Loader) watchLoop(errCh chan<- error) {
	// Debounce: editors fire several events per save.
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-l.ctx.Done():
			return
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(l.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(100*time.Millisecond, func() {
				l.reload(errCh)
			})
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			select {
			case errCh <- err:
			default:
			}
		}
	}
}

func (l *Loader) reload(errCh chan<- error) {
	cfg, err := LoadFile(l.path)
	if err != nil {
		select {
		case errCh <- fmt.Errorf("reload: %w", err):
		default:
		}
		return
	}
	l.mu.Lock()
	l.config = cfg
	callbacks := make([]func(*Config), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
}

// Close stops watching and releases resources.
func (l *Loader) Close() error {
	l.cancel()
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

// LoadFile reads a single configuration file. Missing keys keep their
// default values.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the file at path, falling back to defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	return cfg, err
}
