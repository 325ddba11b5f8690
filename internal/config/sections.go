package config

import (
	"errors"
	"io"
	"time"

	"github.com/dshills/minui/internal/logging"
)

var (
	errNegative     = errors.New("must not be negative")
	errUnknownLevel = errors.New("unknown level")
)

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  logging.Level
	Prefix string
}

// DispatchConfig holds delegated dispatch settings.
type DispatchConfig struct {
	// SharedParser routes selector evaluation through one reused parser.
	SharedParser bool
	// FirstBucketScan limits handler filters to each holder's first bucket.
	FirstBucketScan bool
	// HandlerTimeout bounds each handler invocation. Zero means no bound.
	HandlerTimeout time.Duration
}

// ScriptConfig holds Lua handler settings.
type ScriptConfig struct {
	// CallLimit caps ui.* calls per handler invocation. Zero disables the cap.
	CallLimit int
	// Timeout bounds each handler call.
	Timeout time.Duration
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Debounce time.Duration
}

// Logging returns type-safe access to logging settings.
func (c *Config) Logging() LoggingConfig {
	name := c.getStringOr("logging.level", "info")
	level, ok := logging.ParseLevel(name)
	if !ok {
		c.recordConfigError("logging.level", &ValueError{
			Path:  "logging.level",
			Value: name,
			Err:   errUnknownLevel,
		})
	}
	return LoggingConfig{
		Level:  level,
		Prefix: c.getStringOr("logging.prefix", "minui"),
	}
}

// Dispatch returns type-safe access to dispatch settings.
func (c *Config) Dispatch() DispatchConfig {
	return DispatchConfig{
		SharedParser:    c.getBoolOr("dispatch.sharedParser", false),
		FirstBucketScan: c.getBoolOr("dispatch.firstBucketScan", false),
		HandlerTimeout:  c.getNonNegativeDurationOr("dispatch.handlerTimeout", 0),
	}
}

// Script returns type-safe access to script settings.
func (c *Config) Script() ScriptConfig {
	limit := c.getIntOr("script.callLimit", 1000)
	if limit < 0 {
		c.recordConfigError("script.callLimit", &ValueError{
			Path:  "script.callLimit",
			Value: limit,
			Err:   errNegative,
		})
		limit = 1000
	}
	return ScriptConfig{
		CallLimit: limit,
		Timeout:   c.getNonNegativeDurationOr("script.timeout", time.Second),
	}
}

// Watch returns type-safe access to watch settings.
func (c *Config) Watch() WatchConfig {
	return WatchConfig{
		Debounce: c.getNonNegativeDurationOr("watch.debounce", 200*time.Millisecond),
	}
}

// LoggerConfig returns a logger configuration writing to w.
func (c *Config) LoggerConfig(w io.Writer) logging.Config {
	l := c.Logging()
	return logging.Config{
		Level:  l.Level,
		Output: w,
		Prefix: l.Prefix,
	}
}

// Type-safe getter helpers with defaults.
// These methods only return the default for ErrSettingNotFound.
// Other errors are recorded and return the default.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getNonNegativeDurationOr(path string, defaultValue time.Duration) time.Duration {
	v, err := c.GetDuration(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	if v < 0 {
		c.recordConfigError(path, &ValueError{Path: path, Value: v, Err: errNegative})
		return defaultValue
	}
	return v
}

// recordConfigError stores configuration errors for later retrieval.
// Only the first error for each path is recorded.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

// ConfigErrors returns any configuration errors encountered during access.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	result := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		result[k] = v
	}
	return result
}

// ClearConfigErrors clears any stored configuration errors.
func (c *Config) ClearConfigErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configErrors = nil
}
