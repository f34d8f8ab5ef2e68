package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user config directory under $HOME.
const DirName = ".moviedash"

// Global configuration structure.
type Global struct {
	DataPath  string `mapstructure:"data_path" yaml:"data_path"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`
	TopN      int    `mapstructure:"top_n" yaml:"top_n" validate:"gte=0"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"omitempty,oneof=text json"`

	// HTTP API
	ServerAddr  string   `mapstructure:"server_addr" yaml:"server_addr"`
	Watch       bool     `mapstructure:"watch" yaml:"watch"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	RateLimit   int      `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`

	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"data_path", "delimiter", "sheet", "top_n", "log_level", "log_format",
	"server_addr", "watch", "cors_origins", "rate_limit", "export_dir",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	return v
}

// Dir returns ~/.moviedash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.moviedash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is read first and never overrides variables already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MOVIEDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_path", filepath.Join("data", "tmdb_5000_movies.csv"))
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("top_n", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("watch", true)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("rate_limit", 300)
	v.SetDefault("export_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a missing file is not an error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that cannot be expressed by defaults alone.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %v (must satisfy %s %s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if _, err := parseDelimiter(c.Delimiter); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the configured delimiter, or 0 to sniff it from the
// file name.
func (c *Global) DelimiterRune() rune {
	r, _ := parseDelimiter(c.Delimiter)
	return r
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter: %q (use a single character)", s)
	}
	return r, nil
}

// Set assigns key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "data_path":
		c.DataPath = val
	case "delimiter":
		if _, err := parseDelimiter(val); err != nil {
			return err
		}
		c.Delimiter = val
	case "sheet":
		c.Sheet = val
	case "top_n":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for top_n: %v", val)
		}
		c.TopN = i
	case "log_level":
		switch strings.ToLower(val) {
		case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "server_addr":
		c.ServerAddr = val
	case "watch":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for watch: %v", val)
		}
		c.Watch = b
	case "cors_origins":
		c.CORSOrigins = splitList(val)
	case "rate_limit":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for rate_limit: %v", val)
		}
		c.RateLimit = i
	case "export_dir":
		c.ExportDir = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "data_path":
		return c.DataPath, nil
	case "delimiter":
		return c.Delimiter, nil
	case "sheet":
		return c.Sheet, nil
	case "top_n":
		return strconv.Itoa(c.TopN), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "server_addr":
		return c.ServerAddr, nil
	case "watch":
		return strconv.FormatBool(c.Watch), nil
	case "cors_origins":
		return strings.Join(c.CORSOrigins, ","), nil
	case "rate_limit":
		return strconv.Itoa(c.RateLimit), nil
	case "export_dir":
		return c.ExportDir, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
