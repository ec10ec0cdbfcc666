package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	// Env is the current environment: local, development, production.
	Env string `yaml:"env" env-default:"local"`
	// Postgres holds the database configuration.
	Postgres PostgresConfig `yaml:"postgres"`
	// HTTP holds the listening ports.
	HTTP HTTPConfig `yaml:"http"`
	// RetryDelay is the pause before the change listener reconnects.
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"5s"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Dbname   string `yaml:"db_name"`                     // Dbname is the name of the database.
}

// HTTPConfig holds the ports of the dashboard and the monitoring server.
type HTTPConfig struct {
	Port        int `yaml:"port"         env-default:"8000"`
	MetricsPort int `yaml:"metrics_port" env-default:"8080"`
}

const (
	defaultRetryDelay  = 5 * time.Second
	defaultHTTPPort    = 8000
	defaultMetricsPort = 8080
)

// MustLoad loads the configuration from the YAML file named by CONFIG_PATH, if any,
// with environment variables taking precedence. It panics on invalid configuration.
func MustLoad() *Config {
	vpr := viper.New()

	vpr.SetDefault("env", "local")
	vpr.SetDefault("postgres.port", "5432")
	vpr.SetDefault("http.port", defaultHTTPPort)
	vpr.SetDefault("http.metrics_port", defaultMetricsPort)
	vpr.SetDefault("retry_delay", defaultRetryDelay)

	bindings := map[string]string{
		"env":               "PLUTUS_ENV",
		"postgres.host":     "DB_HOST",
		"postgres.port":     "DB_PORT",
		"postgres.user":     "DB_USERNAME",
		"postgres.password": "DB_PASSWORD",
		"postgres.db_name":  "DB_NAME",
		"http.port":         "HTTP_PORT",
		"http.metrics_port": "METRICS_PORT",
		"retry_delay":       "PLUTUS_RETRY_DELAY",
	}
	for key, env := range bindings {
		_ = vpr.BindEnv(key, env)
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}

		vpr.SetConfigFile(configPath)
		if err := vpr.ReadInConfig(); err != nil {
			panic("config error: " + err.Error())
		}
	}

	retryDelay, err := cast.ToDurationE(vpr.Get("retry_delay"))
	if err != nil || retryDelay <= 0 {
		panic("failed to parse retry delay from configuration")
	}

	httpPort, err := cast.ToIntE(vpr.Get("http.port"))
	if err != nil {
		panic("failed to parse http port from configuration")
	}
	metricsPort, err := cast.ToIntE(vpr.Get("http.metrics_port"))
	if err != nil {
		panic("failed to parse metrics port from configuration")
	}

	return &Config{
		Env: vpr.GetString("env"),
		Postgres: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Dbname:   vpr.GetString("postgres.db_name"),
		},
		HTTP: HTTPConfig{
			Port:        httpPort,
			MetricsPort: metricsPort,
		},
		RetryDelay: retryDelay,
	}
}
