package postgres

import (
	"fmt"
	"os"
	"strings"
)

var ErrConfParamMissing = fmt.Errorf("configuration parameter missing")

type Config struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
}

// NewConfig reads connection settings from POSTGRES_* environment
// variables. Credentials never live in config files.
func NewConfig() (*Config, error) {
	conf := &Config{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		DBName:   os.Getenv("POSTGRES_DB"),
	}
	if conf.Port == "" {
		conf.Port = "5432"
	}
	if !conf.IsValid() {
		return nil, fmt.Errorf("%w: POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_HOST and POSTGRES_DB are required", ErrConfParamMissing)
	}
	return conf, nil
}

func (c *Config) ConString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, c.DBName)
}

func (c Config) String() string {
	var sb strings.Builder
	for i := 0; i < len([]rune(c.Password)); i++ {
		sb.WriteString("*")
	}
	c.Password = sb.String()

	return fmt.Sprintf("%#v", c)
}

func (c *Config) IsValid() bool {
	if c.User == "" || c.Password == "" || c.Host == "" || c.Port == "" || c.DBName == "" {
		return false
	}
	return true
}
