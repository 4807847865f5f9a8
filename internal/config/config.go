package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// languageTagRx accepts a lowercase primary subtag with an optional uppercase
// region subtag ("en", "en-US"). Consumers depend on this exact leniency, so
// it must not be widened to full BCP-47.
var languageTagRx = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

// settings is the flat validated form of the environment snapshot. Defaults
// and coercion rules live in the struct tags; constraints beyond plain
// coercion are expressed as validate tags.
type settings struct {
	GoogleAPIKey        string `env:"GOOGLE_API_KEY"`
	GoogleCSEID         string `env:"GOOGLE_CSE_ID"`
	CacheMax            int    `env:"CACHE_MAX" envDefault:"100" validate:"gt=0"`
	CacheTTL            int    `env:"CACHE_TTL" envDefault:"300000" validate:"gt=0"`
	DefaultLanguage     string `env:"DEFAULT_LANGUAGE" envDefault:"en" validate:"langtag"`
	EnableDeduplication bool   `env:"ENABLE_DEDUPLICATION" envDefault:"true"`
	UserAgent           string `env:"USER_AGENT"`
	ServerName          string `env:"SERVER_NAME" envDefault:"combined-mcp-server"`
	ServerVersion       string `env:"SERVER_VERSION" envDefault:"1.0.0"`
	Port                int    `env:"PORT" envDefault:"3000" validate:"gt=0,lte=65535"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
	LRUCacheSize        int    `env:"LRU_CACHE_SIZE" envDefault:"500" validate:"gt=0"`
}

// GoogleConfig holds credentials for the Google Custom Search integration.
// Both fields are optional; the integration stays disabled while they are empty.
type GoogleConfig struct {
	APIKey string
	CSEID  string
}

// CacheConfig sizes the Wikipedia response cache.
type CacheConfig struct {
	Max int
	TTL time.Duration
}

// WikipediaConfig groups the Wikipedia lookup settings.
type WikipediaConfig struct {
	Cache               CacheConfig
	DefaultLanguage     string
	EnableDeduplication bool
	UserAgent           string
}

// ServerConfig identifies the server and its listening port.
type ServerConfig struct {
	Name    string
	Version string
	Port    int
}

// Config is the nested, consumer-facing configuration. It is built exactly
// once at startup and never mutated afterwards, so it may be shared across
// goroutines without synchronization.
type Config struct {
	Google       GoogleConfig
	Wikipedia    WikipediaConfig
	Server       ServerConfig
	LRUCacheSize int
	LogLevel     string
}

// Overrides holds command-line overrides applied on top of the environment.
type Overrides struct {
	EnvFile    string
	ConfigFile string
	Port       *int
	LogLevel   *string
}

// Load resolves configuration with precedence:
// CLI overrides > live environment > env file > YAML settings file > defaults.
//
// On any schema violation it returns a *ValidationError listing every
// offending variable, and no partial Config. Load never terminates the
// process; that decision belongs to the caller.
func Load(overrides *Overrides) (Config, error) {
	environ, err := buildEnvironment(overrides)
	if err != nil {
		return Config{}, err
	}

	var s settings
	verr := &ValidationError{}
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		collectParseErrors(verr, err)
	}

	if overrides != nil {
		if overrides.Port != nil {
			s.Port = *overrides.Port
		}
		if overrides.LogLevel != nil {
			s.LogLevel = *overrides.LogLevel
		}
	}

	collectConstraintErrors(verr, s)

	if len(verr.Fields) > 0 {
		return Config{}, verr
	}
	return reshape(s), nil
}

// buildEnvironment assembles the variable map the schema is parsed against:
// the live environment, backed by the env file (which never overrides live
// values), backed by the YAML settings file.
func buildEnvironment(overrides *Overrides) (map[string]string, error) {
	environ := make(map[string]string)
	for k, v := range env.ToMap(os.Environ()) {
		// A variable set to the empty string is treated as unset so that
		// defaults still apply.
		if v != "" {
			environ[k] = v
		}
	}

	fileEnv, err := readEnvFile(overrides)
	if err != nil {
		return nil, err
	}
	for k, v := range fileEnv {
		if _, ok := environ[k]; !ok && v != "" {
			environ[k] = v
		}
	}

	if overrides != nil && overrides.ConfigFile != "" {
		fileValues, err := readSettingsFile(overrides.ConfigFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fileValues {
			if _, ok := environ[k]; !ok && v != "" {
				environ[k] = v
			}
		}
	}

	return environ, nil
}

// reshape converts the flat validated settings into the nested Config. The
// cache TTL arrives as integer milliseconds and becomes a time.Duration; no
// other transformation happens here.
func reshape(s settings) Config {
	return Config{
		Google: GoogleConfig{
			APIKey: s.GoogleAPIKey,
			CSEID:  s.GoogleCSEID,
		},
		Wikipedia: WikipediaConfig{
			Cache: CacheConfig{
				Max: s.CacheMax,
				TTL: time.Duration(s.CacheTTL) * time.Millisecond,
			},
			DefaultLanguage:     s.DefaultLanguage,
			EnableDeduplication: s.EnableDeduplication,
			UserAgent:           s.UserAgent,
		},
		Server: ServerConfig{
			Name:    s.ServerName,
			Version: s.ServerVersion,
			Port:    s.Port,
		},
		LRUCacheSize: s.LRUCacheSize,
		LogLevel:     s.LogLevel,
	}
}

// Redacted returns a copy of the configuration safe for logging: credentials
// are masked, everything else is passed through.
func (c Config) Redacted() Config {
	if c.Google.APIKey != "" {
		c.Google.APIKey = "[redacted]"
	}
	return c
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("env"), ",")
		return name
	})
	if err := v.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
		return languageTagRx.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register langtag validation: %v", err))
	}
	return v
}

func collectConstraintErrors(verr *ValidationError, s settings) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.add("", err.Error())
		return
	}

	// Variables that already failed coercion were left at their zero value,
	// which would trip the numeric constraints and report the same variable
	// twice.
	seen := make(map[string]bool, len(verr.Fields))
	for _, f := range verr.Fields {
		seen[f.Name] = true
	}

	for _, fe := range ves {
		if seen[fe.Field()] {
			continue
		}
		verr.add(fe.Field(), constraintReason(fe))
	}
}

func constraintReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "langtag":
		return fmt.Sprintf("%q does not match %s", fe.Value(), languageTagRx.String())
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "required":
		return "required variable is not set"
	default:
		return fmt.Sprintf("violates %q constraint", fe.Tag())
	}
}
