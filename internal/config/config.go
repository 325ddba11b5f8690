package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/dshills/minui/internal/config/loader"
)

// ErrFileNotFound indicates an explicitly requested settings file is missing.
var ErrFileNotFound = errors.New("config file not found")

// Config provides access to minui settings.
type Config struct {
	mu sync.RWMutex

	merged map[string]any

	fs        loader.FileSystem
	path      string
	envPrefix string
	environ   []string
	useEnv    bool

	// configErrors stores errors encountered during configuration access.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the settings file. Its format follows the extension.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFS sets the file system the settings file is read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnv enables or disables the environment overlay.
func WithEnv(enable bool) Option {
	return func(c *Config) {
		c.useEnv = enable
	}
}

// WithEnviron replaces the process environment with a fixed KEY=value list.
func WithEnviron(env []string) Option {
	return func(c *Config) {
		c.environ = env
		c.useEnv = true
	}
}

// New creates a Config holding the built-in defaults.
func New(opts ...Option) *Config {
	c := &Config{
		merged:    defaultConfig(),
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		useEnv:    true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Load resolves settings from defaults, the settings file and the
// environment, replacing anything loaded before.
func (c *Config) Load(_ context.Context) error {
	merged := defaultConfig()

	if c.path != "" {
		if _, err := c.fs.Stat(c.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, c.path)
			}
			return err
		}
		data, err := loader.NewFileLoaderWithFS(c.fs, c.path).Load()
		if err != nil {
			return err
		}
		merged = loader.DeepMerge(merged, data)
	}

	if c.useEnv {
		var env *loader.EnvLoader
		if c.environ != nil {
			env = loader.NewEnvLoaderFrom(c.envPrefix, c.environ)
		} else {
			env = loader.NewEnvLoader(c.envPrefix)
		}
		data, err := env.Load()
		if err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, data)
	}

	c.mu.Lock()
	c.merged = merged
	c.configErrors = nil
	c.mu.Unlock()
	return nil
}

// Path returns the settings file path, if any.
func (c *Config) Path() string {
	return c.path
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.merged, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration at the given path. Strings are parsed with
// time.ParseDuration; bare integers are milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &ValueError{Path: path, Value: val, Err: err}
		}
		return d, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneMap(c.merged)
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"logging": map[string]any{
			"level":  "info",
			"prefix": "minui",
		},
		"dispatch": map[string]any{
			"sharedParser":    false,
			"firstBucketScan": false,
			"handlerTimeout":  "0s",
		},
		"script": map[string]any{
			"callLimit": 1000,
			"timeout":          "1s",
		},
		"watch": map[string]any{
			"debounce": "200ms",
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	current := any(m)
	for _, part := range strings.Split(path, ".") {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}

	return current, true
}

func cloneMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]any); ok {
			dst[k] = cloneMap(m)
		} else {
			dst[k] = v
		}
	}
	return dst
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
