package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const reloadDebounce = 100 * time.Millisecond

// Loader reads the config file and reloads it when it changes.
type Loader struct {
	path string
	log  *zap.SugaredLogger

	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)
}

func NewLoader(path string, log *zap.SugaredLogger) *Loader {
	if path == "" {
		path = DefaultPath()
	}

	return &Loader{path: path, log: log}
}

func (l *Loader) Path() string {
	return l.path
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.read()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()

	return cfg, nil
}

func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// OnChange registers fn to be called with every successfully reloaded config.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

func (l *Loader) read() (*Config, error) {
	envFile := filepath.Join(filepath.Dir(l.path), ".env")
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}

	cfg := DefaultConfig()
	if err := decodeFile(l.path, cfg); err != nil {
		return nil, err
	}

	// the process environment wins over the .env file
	cfg.applyOverrides(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", l.path, err)
	}

	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

// ApplyEnvOverrides applies ESCSWITCH_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	c.applyOverrides(os.LookupEnv)
}

func (c *Config) applyOverrides(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	if v := get("ESCSWITCH_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := get("ESCSWITCH_LATIN_SOURCE"); v != "" {
		c.LatinSource = v
	}
	if v, err := strconv.ParseBool(get("ESCSWITCH_SHIFT_SWITCH")); err == nil {
		c.ShiftSwitch = v
	}
	if v, err := strconv.ParseBool(get("ESCSWITCH_DEBUG")); err == nil {
		c.Debug = v
	}
	if v, ok := lookup("ESCSWITCH_ALLOWED_APPS"); ok {
		c.AllowedApps = nil
		for _, app := range strings.Split(v, ",") {
			if app = strings.TrimSpace(app); app != "" {
				c.AllowedApps = append(c.AllowedApps, app)
			}
		}
	}
}

// Watch reloads the config whenever the file is written, until ctx is done.
// A config that fails to load is logged and the previous one kept.
func (l *Loader) Watch(ctx context.Context) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace the file, so watch the directory
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}

			name := filepath.Base(event.Name)
			if name != filepath.Base(l.path) && name != ".env" {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, l.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			l.log.Warnw("config watcher", "error", err)
		}
	}
}

func (l *Loader) reload() {
	cfg, err := l.read()
	if err != nil {
		l.log.Warnw("config reload failed, keeping previous config", "error", err)
		return
	}

	l.mu.Lock()
	l.config = cfg
	callbacks := append(([]func(*Config))(nil), l.onChange...)
	l.mu.Unlock()

	l.log.Infow("config reloaded", "path", l.path)
	for _, fn := range callbacks {
		fn(cfg)
	}
}
