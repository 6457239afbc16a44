package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"github.com/zero-day-ai/socialgraph/internal/types"
)

// EnvPrefix prefixes every environment override, e.g. SOCIALGRAPH_GRAPH_URI.
const EnvPrefix = "SOCIALGRAPH"

// legacyEnv maps config keys to the conventional Neo4j variable names, which
// are consulted after the SOCIALGRAPH_ ones.
var legacyEnv = map[string]string{
	"graph.uri":      "NEO4J_URI",
	"graph.username": "NEO4J_USERNAME",
	"graph.password": "NEO4J_PASSWORD",
	"graph.database": "NEO4J_DATABASE",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ConfigLoader handles loading configuration from files and the environment.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load reads the file at path, applies environment overrides and validates
// the result. A missing file is a CONFIG_NOT_FOUND error.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.WrapError(types.CONFIG_NOT_FOUND, "config file not found: "+path, err)
		}
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to stat config file", err)
	}
	return l.load(path)
}

// LoadWithDefaults behaves like Load, except that a missing file yields the
// defaults plus environment overrides. An empty path never touches the
// filesystem.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if path == "" {
		return l.load("")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return l.load("")
	}
	return l.Load(path)
}

func (l *viperConfigLoader) load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	applyInterpolation(&cfg)
	if err := checkUnresolved(&cfg); err != nil {
		return nil, err
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "configuration validation failed", err)
	}

	return &cfg, nil
}

// newViper returns a Viper instance seeded with every default so that
// AutomaticEnv can override any key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("graph.uri", d.Graph.URI)
	v.SetDefault("graph.username", d.Graph.Username)
	v.SetDefault("graph.password", d.Graph.Password)
	v.SetDefault("graph.database", d.Graph.Database)
	v.SetDefault("graph.max_connection_pool_size", d.Graph.MaxConnectionPoolSize)
	v.SetDefault("graph.connection_timeout", d.Graph.ConnectionTimeout)
	v.SetDefault("graph.max_transaction_retry_time", d.Graph.MaxTransactionRetryTime)
	v.SetDefault("graph.connect_attempts", d.Graph.ConnectAttempts)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.exporter", d.Metrics.Exporter)
	v.SetDefault("metrics.endpoint", d.Metrics.Endpoint)
	v.SetDefault("metrics.insecure", d.Metrics.Insecure)
	v.SetDefault("metrics.interval", d.Metrics.Interval)

	for key, legacy := range legacyEnv {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		// BindEnv only fails when no key is given
		_ = v.BindEnv(key, envKey, legacy)
	}

	return v
}

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables are left as written.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}

// applyInterpolation expands ${VAR} references in every string setting.
func applyInterpolation(cfg *Config) {
	for _, f := range stringFields(cfg) {
		*f = interpolateString(*f)
	}
}

// checkUnresolved rejects settings that still reference an unset or empty
// variable after interpolation. Only variable names are reported.
func checkUnresolved(cfg *Config) error {
	var missing []string
	for _, f := range stringFields(cfg) {
		for _, m := range envVarPattern.FindAllStringSubmatch(*f, -1) {
			missing = append(missing, m[1])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return types.NewError(types.CONFIG_VALIDATION_FAILED,
		"unresolved environment variable(s): "+strings.Join(missing, ", "))
}

func stringFields(cfg *Config) []*string {
	return []*string{
		&cfg.Graph.URI,
		&cfg.Graph.Username,
		&cfg.Graph.Password,
		&cfg.Graph.Database,
		&cfg.Logging.Level,
		&cfg.Logging.Format,
		&cfg.Tracing.Exporter,
		&cfg.Tracing.Endpoint,
		&cfg.Tracing.ServiceName,
		&cfg.Metrics.Exporter,
		&cfg.Metrics.Endpoint,
	}
}
