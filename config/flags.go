package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Flags are the command-line overrides. A flag wins over the environment
// only when it was given explicitly.
type Flags struct {
	EnvFile string

	fs       *pflag.FlagSet
	port     string
	driver   string
	strict   bool
	logLevel string
}

// RegisterFlags defines the server flags on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.EnvFile, "env-file", ".env", "path to a .env file")
	fs.StringVar(&f.port, "port", "", "HTTP port (overrides PORT)")
	fs.StringVar(&f.driver, "db-driver", "", "storage driver: postgres or memory (overrides DB_DRIVER)")
	fs.BoolVar(&f.strict, "strict-ownership", false, "only owners and admins may change a record (overrides STRICT_OWNERSHIP)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	return f
}

// Apply copies the explicitly set flags onto cfg.
func (f *Flags) Apply(cfg *Config) error {
	if f.fs.Changed("port") {
		cfg.Port = f.port
	}
	if f.fs.Changed("db-driver") {
		cfg.DBDriver = strings.ToLower(f.driver)
	}
	if f.fs.Changed("strict-ownership") {
		cfg.StrictOwnership = f.strict
	}
	if f.fs.Changed("log-level") {
		lvl, err := ParseLogLevel(f.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = lvl
	}
	return nil
}
