package config

import (
	"reflect"
	"strings"

	"webpreview/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the tool. Every value can be supplied
// through the environment (WEBPREVIEW_ prefix, nested keys joined with "_")
// or a .env file next to the working directory.
type Config struct {
	// Enabled gates whether the web preview device is discoverable at all.
	// Resolved once at startup and threaded through, never re-read.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Compiler is the entrypoint compiler binary invoked per start.
	Compiler string `mapstructure:"compiler" default:"dart"`
	// BuildDir is where bundle entries are materialized before serving.
	BuildDir string `mapstructure:"build_dir" default:"build/web"`
	// Browser selects the launch strategy: "chrome" resolves a Chrome
	// executable per platform, "default" opens the system default browser.
	Browser string `mapstructure:"browser" default:"chrome"`

	Log logger.Config `mapstructure:"log"`
}

// Load reads configuration from the environment and an optional .env file.
func Load(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore a missing .env, the environment alone is fine.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetEnvPrefix("webpreview")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindValues walks the struct and registers each mapstructure key with its
// default so AutomaticEnv picks the key up even when unset.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
