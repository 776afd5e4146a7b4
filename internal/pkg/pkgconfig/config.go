package pkgconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the read-only view of the application configuration.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat64(key string) float64
	Close() error
}

type viperConfig struct {
	v *viper.Viper
}

// NewViper loads the yaml file at path. Every key can be overridden by an
// environment variable named after the key with dots replaced by underscores.
func NewViper(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &viperConfig{v: v}, nil
}

// NewFromMap builds a Config from in-memory values, used by tools and tests
// that run without a config file.
func NewFromMap(values map[string]any) Config {
	v := newViper()
	for key, value := range values {
		v.Set(key, value)
	}
	return &viperConfig{v: v}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func (c *viperConfig) GetString(key string) string {
	return c.v.GetString(key)
}

func (c *viperConfig) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *viperConfig) GetBool(key string) bool {
	return c.v.GetBool(key)
}

func (c *viperConfig) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

func (c *viperConfig) Close() error {
	return nil
}
