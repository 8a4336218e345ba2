package config

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// SafeConfig provides thread-safe access to the live configuration.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig wraps cfg for concurrent access. A nil cfg is replaced with
// Default().
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration, safe to read without
// further locking.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update validates cfg and, if it passes, atomically swaps it in.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

// Manager owns a SafeConfig loaded from a file and keeps it current via an
// fsnotify watch on that file. Subscribers are notified over a channel after
// each successful reload.
type Manager struct {
	path   string
	config *SafeConfig
	logger *slog.Logger

	watcher *fsnotify.Watcher

	mu          sync.Mutex
	subscribers []chan *Config

	shutdownCh chan struct{}
	wg         sync.WaitGroup
	stopped    atomic.Bool
}

// NewManager loads path, starts an fsnotify watch on it, and returns a
// Manager ready to serve the live config and push reload notifications.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("initial config load: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch config file: %w", err)
	}

	m := &Manager{
		path:       path,
		config:     NewSafeConfig(cfg),
		logger:     logger,
		watcher:    watcher,
		shutdownCh: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.watchLoop()

	return m, nil
}

// Config returns the live SafeConfig.
func (m *Manager) Config() *SafeConfig {
	return m.config
}

// Subscribe returns a channel that receives the new Config after every
// successful hot reload. The channel is closed when Close is called.
func (m *Manager) Subscribe() <-chan *Config {
	ch := make(chan *Config, 1)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

func (m *Manager) watchLoop() {
	defer m.wg.Done()
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			m.reload()
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("config watcher error", "error", err)
		case <-m.shutdownCh:
			return
		}
	}
}

func (m *Manager) reload() {
	cfg, err := Load(m.path)
	if err != nil {
		m.logger.Error("config reload failed, keeping previous config", "path", m.path, "error", err)
		return
	}
	if err := m.config.Update(cfg); err != nil {
		m.logger.Error("config reload rejected", "path", m.path, "error", err)
		return
	}
	m.logger.Info("config reloaded", "path", m.path)

	m.mu.Lock()
	subs := append([]chan *Config(nil), m.subscribers...)
	m.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- cfg.Clone():
		default:
			// Subscriber is slow; drop rather than block the watch loop.
		}
	}
}

// Close stops the watch loop and releases the fsnotify watcher. Subscriber
// channels are closed.
func (m *Manager) Close() error {
	if !m.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(m.shutdownCh)
	err := m.watcher.Close()
	m.wg.Wait()

	m.mu.Lock()
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
	m.mu.Unlock()

	return err
}
