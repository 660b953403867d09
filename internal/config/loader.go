package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configDir  = ".sqltab"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "SQLTAB"
)

// flag name -> config key
var flagKeys = map[string]string{
	"driver":    "connection.driver",
	"server":    "connection.server",
	"port":      "connection.port",
	"database":  "connection.database",
	"auth":      "connection.auth",
	"user":      "connection.user",
	"password":  "connection.password",
	"sslmode":   "connection.sslmode",
	"dsn":       "connection.dsn",
	"timeout":   "connection.timeout",
	"query":     "query",
	"log-level": "log_level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("connection.driver", string(DriverMssql))
	v.SetDefault("connection.server", "ALEX-GH")
	v.SetDefault("connection.port", 0)
	v.SetDefault("connection.database", "UNI_Empleados")
	v.SetDefault("connection.auth", string(AuthWindows))
	v.SetDefault("connection.user", "")
	v.SetDefault("connection.password", "")
	v.SetDefault("connection.sslmode", "")
	v.SetDefault("connection.dsn", "")
	v.SetDefault("connection.timeout", 5*time.Second)
	v.SetDefault("query", DefaultQuery)
	v.SetDefault("log_level", "warn")
}

// Load resolves the configuration: defaults, then the config file, then
// SQLTAB_* environment variables, then any flag in flags the user set.
// An empty path searches ./sqltab.yaml and ~/.sqltab/config.yaml; finding
// neither is not an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// short env names: SQLTAB_SERVER as well as SQLTAB_CONNECTION_SERVER
	for name, key := range flagKeys {
		env := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if err := v.BindEnv(key, env, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return nil, &Error{Field: key, Cause: err}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, &Error{Field: key, Cause: err}
				}
			}
		}
	}

	if file := ConfigFileUsed(path); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return nil, &Error{Cause: fmt.Errorf("read config: %w", err)}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Cause: fmt.Errorf("unmarshal config: %w", err)}
	}
	cfg.Connection.Driver = Driver(strings.ToLower(string(cfg.Connection.Driver)))
	cfg.Connection.Auth = AuthMode(strings.ToLower(string(cfg.Connection.Auth)))

	return cfg, nil
}

// ConfigFileUsed reports which file Load reads for path, or "" when no
// default location has one.
func ConfigFileUsed(path string) string {
	if path != "" {
		return path
	}
	candidates := []string{"sqltab.yaml"}
	if dir, err := configDirPath(); err == nil {
		candidates = append(candidates, filepath.Join(dir, configFile+"."+configType))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
