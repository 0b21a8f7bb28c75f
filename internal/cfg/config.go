// Package cfg declares the mount command's flag/config surface: a plain
// struct with mapstructure tags, populated by binding pflag flags into
// viper and unmarshalling the merged result (flags, then config file,
// then these defaults) back into the struct.
//
// A Config struct plus a BindFlags function over github.com/spf13/pflag
// and github.com/spf13/viper, scoped to the vault's own knobs.
package cfg

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved mount configuration: flags merged over a
// config file merged over defaults.
type Config struct {
	Vault    VaultConfig    `mapstructure:"vault"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// VaultConfig names the vault to open and how to unlock it.
type VaultConfig struct {
	PasswordEnv         string `mapstructure:"password-env"`
	ShorteningThreshold int    `mapstructure:"shortening-threshold"`
	UID                 uint32 `mapstructure:"uid"`
	GID                 uint32 `mapstructure:"gid"`
	FileMode            uint32 `mapstructure:"file-mode"`
	DirMode             uint32 `mapstructure:"dir-mode"`
}

// ExecutorConfig controls the FUSE adapter's bounded metadata worker pool.
type ExecutorConfig struct {
	Workers         int           `mapstructure:"workers"`
	QueueCapacity   int           `mapstructure:"queue-capacity"`
	Policy          string        `mapstructure:"saturation-policy"` // reject | block | spill
	MetadataTimeout time.Duration `mapstructure:"metadata-timeout"`
}

// CacheConfig controls the attribute and directory listing caches.
type CacheConfig struct {
	AttrTTL time.Duration `mapstructure:"attr-ttl"`
	DirTTL  time.Duration `mapstructure:"dir-ttl"`
}

// LoggingConfig mirrors internal/logger.Config's knobs.
type LoggingConfig struct {
	Severity   string `mapstructure:"severity"`
	JSON       bool   `mapstructure:"json"`
	FilePath   string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
	MaxAgeDays int    `mapstructure:"max-age-days"`
}

// MetricsConfig controls the prometheus registration the async vault and
// lock manager publish to.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// BindFlags declares every flag on flagSet and binds it into viper under
// the matching dotted key, so a later viper.Unmarshal(&Config{}) sees
// flag and config file values merged with the documented precedence (an
// explicitly-set flag wins, then the config file, then these defaults).
// Environment variables are not bound.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.String("vault-password-env", "CRYPTOVAULTFS_PASSWORD", "Environment variable holding the vault password.")
	if err := viper.BindPFlag("vault.password-env", flagSet.Lookup("vault-password-env")); err != nil {
		return err
	}

	flagSet.Int("shortening-threshold", 220, "Encrypted name length above which an entry is stored as a shortened .c9s shell.")
	if err := viper.BindPFlag("vault.shortening-threshold", flagSet.Lookup("shortening-threshold")); err != nil {
		return err
	}

	flagSet.Uint32("uid", 0, "Owner uid reported for every entry.")
	if err := viper.BindPFlag("vault.uid", flagSet.Lookup("uid")); err != nil {
		return err
	}

	flagSet.Uint32("gid", 0, "Owner gid reported for every entry.")
	if err := viper.BindPFlag("vault.gid", flagSet.Lookup("gid")); err != nil {
		return err
	}

	flagSet.Uint32("file-mode", 0o600, "Permission bits reported for regular files.")
	if err := viper.BindPFlag("vault.file-mode", flagSet.Lookup("file-mode")); err != nil {
		return err
	}

	flagSet.Uint32("dir-mode", 0o700, "Permission bits reported for directories.")
	if err := viper.BindPFlag("vault.dir-mode", flagSet.Lookup("dir-mode")); err != nil {
		return err
	}

	flagSet.Int("executor-workers", 16, "Worker goroutines servicing bounded metadata operations.")
	if err := viper.BindPFlag("executor.workers", flagSet.Lookup("executor-workers")); err != nil {
		return err
	}

	flagSet.Int("executor-queue-capacity", 256, "Pending metadata operations the executor will queue before applying its saturation policy.")
	if err := viper.BindPFlag("executor.queue-capacity", flagSet.Lookup("executor-queue-capacity")); err != nil {
		return err
	}

	flagSet.String("executor-saturation-policy", "block", "What to do when the executor queue is full: reject, block, or spill.")
	if err := viper.BindPFlag("executor.saturation-policy", flagSet.Lookup("executor-saturation-policy")); err != nil {
		return err
	}

	flagSet.Duration("executor-metadata-timeout", 5*time.Second, "Deadline applied to lookup/getattr/readdir before returning ETIMEDOUT.")
	if err := viper.BindPFlag("executor.metadata-timeout", flagSet.Lookup("executor-metadata-timeout")); err != nil {
		return err
	}

	flagSet.Duration("cache-attr-ttl", 5*time.Second, "Attribute cache TTL setting. The FUSE adapter does not read it; its attribute cache TTL is fixed at 5s.")
	if err := viper.BindPFlag("cache.attr-ttl", flagSet.Lookup("cache-attr-ttl")); err != nil {
		return err
	}

	flagSet.Duration("cache-dir-ttl", 3*time.Second, "Directory listing cache TTL setting. The FUSE adapter does not read it; its listing cache TTL is fixed at 3s.")
	if err := viper.BindPFlag("cache.dir-ttl", flagSet.Lookup("cache-dir-ttl")); err != nil {
		return err
	}

	flagSet.String("log-severity", "info", "Minimum log severity: trace, debug, info, warn, or error.")
	if err := viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.Bool("log-json", false, "Emit structured JSON log lines instead of the plain text format.")
	if err := viper.BindPFlag("logging.json", flagSet.Lookup("log-json")); err != nil {
		return err
	}

	flagSet.String("log-file", "", "Write logs to this file (rotated via lumberjack) instead of stderr.")
	if err := viper.BindPFlag("logging.file", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.Int("log-max-size-mb", 512, "Maximum size in MB of a log file before it is rotated.")
	if err := viper.BindPFlag("logging.max-size-mb", flagSet.Lookup("log-max-size-mb")); err != nil {
		return err
	}

	flagSet.Int("log-max-backups", 10, "Maximum number of rotated log files to retain.")
	if err := viper.BindPFlag("logging.max-backups", flagSet.Lookup("log-max-backups")); err != nil {
		return err
	}

	flagSet.Int("log-max-age-days", 0, "Maximum age in days of a rotated log file before deletion (0 disables age-based deletion).")
	if err := viper.BindPFlag("logging.max-age-days", flagSet.Lookup("log-max-age-days")); err != nil {
		return err
	}

	flagSet.Bool("metrics-enabled", false, "Expose a Prometheus /metrics endpoint.")
	if err := viper.BindPFlag("metrics.enabled", flagSet.Lookup("metrics-enabled")); err != nil {
		return err
	}

	flagSet.String("metrics-addr", "127.0.0.1:9731", "Address the Prometheus endpoint listens on.")
	if err := viper.BindPFlag("metrics.addr", flagSet.Lookup("metrics-addr")); err != nil {
		return err
	}

	return nil
}
