package loader

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of minui environment variables.
const DefaultEnvPrefix = "MINUI_"

// EnvLoader loads configuration from environment variables.
//
// Mapped variables set the path they map to. Any other prefixed variable
// is converted by name: MINUI_DISPATCH_HANDLER_TIMEOUT sets
// dispatch.handlerTimeout.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "MINUI_")
	mapping map[string]string // Env var -> config path
	environ func() []string
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "MINUI_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
		environ: os.Environ,
		lookup:  os.LookupEnv,
	}
}

// NewEnvLoaderFrom creates a loader that reads from a fixed list of
// KEY=value pairs instead of the process environment.
func NewEnvLoaderFrom(prefix string, env []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return env }
	l.lookup = func(key string) (string, bool) {
		for _, kv := range env {
			if k, v, ok := strings.Cut(kv, "="); ok && k == key {
				return v, true
			}
		}
		return "", false
	}
	return l
}

// defaultEnvMapping returns variables whose names do not follow the
// section_setting convention.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"MINUI_LOG_LEVEL":  "logging.level",
		"MINUI_LOG_PREFIX": "logging.prefix",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			setByPath(config, path, parseValue(val))
		}
	}

	for _, env := range l.environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		setByPath(config, l.envToPath(name), parseValue(value))
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// envToPath converts MINUI_SCRIPT_CALL_LIMIT to script.callLimit.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")

	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	setting := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			setting += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return section + "." + setting
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	if lower == "true" || lower == "yes" || lower == "on" || s == "1" {
		return true
	}
	if lower == "false" || lower == "no" || lower == "off" || s == "0" {
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only with a decimal point, so integers stay integers.
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	if (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	current[parts[len(parts)-1]] = value
}
