package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before notifying listeners.
const DefaultDebounce = 200 * time.Millisecond

// Holder provides thread-safe access to the configuration and watches the
// catalogue tree for changes.
type Holder struct {
	mu       sync.RWMutex
	config   *Config
	path     string // empty when running on defaults
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	onTree   []func(changed []string)
	debounce time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once

	treeMu   sync.RWMutex
	treeDirs map[string]bool

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer
}

// NewHolder creates a holder and loads the initial configuration. A missing
// file at path yields the default configuration.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := LoadWithFallback(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	h := &Holder{
		config:   cfg,
		logger:   logger,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		pending:  make(map[string]struct{}),
		treeDirs: make(map[string]bool),
	}
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		h.path = absPath
	}
	return h, nil
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// SetDebounce changes the debounce interval of tree events.
func (h *Holder) SetDebounce(d time.Duration) {
	h.pendingMu.Lock()
	h.debounce = d
	h.pendingMu.Unlock()
}

// Reload reloads the configuration from disk. On failure the old
// configuration is kept.
func (h *Holder) Reload() error {
	h.logger.Info().Str("path", h.path).Msg("reloading configuration")

	newCfg, err := LoadWithFallback(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("config reload failed, keeping old config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	old := h.config
	h.config = newCfg
	listeners := append(([]func(*Config))(nil), h.onChange...)
	h.mu.Unlock()

	h.logChanges(old, newCfg)
	for _, fn := range listeners {
		fn(newCfg)
	}
	return nil
}

// OnChange registers a callback for configuration reloads.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// OnTreeChange registers a callback for changes in the watched directories.
// It receives the sorted set of changed paths of one debounced burst.
func (h *Holder) OnTreeChange(fn func(changed []string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTree = append(h.onTree, fn)
}

// WatchTree watches the configuration file and every directory below the
// given roots. Roots that do not exist are skipped. Directories created
// later are added automatically.
func (h *Holder) WatchTree(roots ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch the directory (more reliable for editors that do atomic saves)
	if h.path != "" {
		if err := watcher.Add(filepath.Dir(h.path)); err != nil {
			watcher.Close()
			return fmt.Errorf("watch config directory: %w", err)
		}
	}
	for _, root := range roots {
		if err := h.addRecursive(root); err != nil {
			watcher.Close()
			return err
		}
	}

	go h.watchLoop()

	h.logger.Info().Strs("roots", roots).Msg("watching catalogue for changes")
	return nil
}

func (h *Holder) addRecursive(root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		h.logger.Debug().Str("root", root).Msg("watch root not present")
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := h.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		h.treeMu.Lock()
		h.treeDirs[path] = true
		h.treeMu.Unlock()
		return nil
	})
}

// Stop stops watching.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
		h.pendingMu.Lock()
		if h.timer != nil {
			h.timer.Stop()
		}
		h.pendingMu.Unlock()
	})
}

func (h *Holder) watchLoop() {
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			h.handle(event)

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	h.logger.Debug().
		Str("event", event.Op.String()).
		Str("file", event.Name).
		Msg("file changed")

	if event.Name == h.path {
		if err := h.Reload(); err != nil {
			h.logger.Error().Err(err).Msg("file watch reload failed")
		}
		return
	}
	h.treeMu.RLock()
	inTree := h.treeDirs[filepath.Dir(event.Name)]
	h.treeMu.RUnlock()
	if !inTree {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := h.addRecursive(event.Name); err != nil {
				h.logger.Error().Err(err).Msg("watch new directory")
			}
		}
	}
	h.schedule(event.Name)
}

func (h *Holder) schedule(name string) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	h.pending[name] = struct{}{}
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.debounce, h.flush)
}

func (h *Holder) flush() {
	h.pendingMu.Lock()
	changed := make([]string, 0, len(h.pending))
	for name := range h.pending {
		changed = append(changed, name)
	}
	h.pending = make(map[string]struct{})
	h.pendingMu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)

	h.mu.RLock()
	listeners := append(([]func([]string))(nil), h.onTree...)
	h.mu.RUnlock()
	for _, fn := range listeners {
		fn(changed)
	}
}

func (h *Holder) logChanges(old, new *Config) {
	if old.Logging.Level != new.Logging.Level {
		h.logger.Info().
			Str("old", old.Logging.Level).
			Str("new", new.Logging.Level).
			Msg("log level changed")
	}
	if len(old.Topics) != len(new.Topics) {
		h.logger.Info().
			Int("old", len(old.Topics)).
			Int("new", len(new.Topics)).
			Msg("topic overrides changed")
	}
	if old.Schemas.PathMatcher.String() != new.Schemas.PathMatcher.String() {
		h.logger.Info().
			Str("old", old.Schemas.PathMatcher.String()).
			Str("new", new.Schemas.PathMatcher.String()).
			Msg("schema selection changed")
	}
}
