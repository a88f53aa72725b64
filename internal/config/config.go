package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	App App
	DB  DB
	// Port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`
}

type App struct {
	Environment string `env:"APP_ENV" envDefault:"production"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c App) IsDevEnvironment() bool {
	return c.Environment == "dev"
}

// DB holds the connection parameters. User, password, host and name have no
// defaults: a missing value aborts startup.
type DB struct {
	Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
	User     string `env:"DB_USER,notEmpty"`
	Password string `env:"DB_PASSWORD,notEmpty"`
	Host     string `env:"DB_HOST,notEmpty"`
	Name     string `env:"DB_NAME,notEmpty"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN renders a postgres connection URL. Credentials and the database name
// are escaped, so any character is allowed in them.
func (c DB) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return dsn.String()
}

// LoadDotEnv loads variables from the given files into the environment without
// overriding ones that are already set. It reports whether a file was found.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	switch config.DB.Driver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", config.DB.Driver)
	}

	return config, nil
}
