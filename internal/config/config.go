package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabasesConfig    `mapstructure:"database"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Approval     ApprovalConfig     `mapstructure:"approval"`
	Sweeper      SweeperConfig      `mapstructure:"sweeper"`
	Notification NotificationConfig `mapstructure:"notification"`
	Share        ShareConfig        `mapstructure:"share"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Shares DatabaseConfig `mapstructure:"shares"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ApprovalConfig holds bootstrap defaults for the approval subsystem
type ApprovalConfig struct {
	// Defaults used when the settings singleton row is created lazily
	DefaultExpirationDays    int   `mapstructure:"default_expiration_days"`
	DefaultRequiredApprovals int   `mapstructure:"default_required_approvals"`
	ForceLargeFiles          bool  `mapstructure:"force_large_files"`
	LargeFileThresholdBytes  int64 `mapstructure:"large_file_threshold_bytes"`

	// Defaults for the global system policy created at bootstrap
	GlobalPolicyPriority          int `mapstructure:"global_policy_priority"`
	GlobalPolicyTimeoutHours      int `mapstructure:"global_policy_timeout_hours"`
	GlobalPolicyRequiredApprovals int `mapstructure:"global_policy_required_approvals"`
}

// SweeperConfig holds background expiry sweeper configuration
type SweeperConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	BackoffBase      time.Duration `mapstructure:"backoff_base"`
	BackoffCap       time.Duration `mapstructure:"backoff_cap"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	CircuitCooldown  time.Duration `mapstructure:"circuit_cooldown"`
}

// NotificationConfig holds outbox dispatcher configuration
type NotificationConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	ShareBaseURL string        `mapstructure:"share_base_url"`
}

// ShareConfig holds share-related configuration
type ShareConfig struct {
	ApproverRoles []string `mapstructure:"approver_roles"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")
	}

	// Read from environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("SHARE_MGT")

	setDefaults(v)

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("approval.default_expiration_days", 3)
	v.SetDefault("approval.default_required_approvals", 1)
	v.SetDefault("approval.force_large_files", true)
	v.SetDefault("approval.large_file_threshold_bytes", int64(100*1024*1024))
	v.SetDefault("approval.global_policy_priority", 999)
	v.SetDefault("approval.global_policy_timeout_hours", 72)
	v.SetDefault("approval.global_policy_required_approvals", 1)

	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.poll_interval", 30*time.Minute)
	v.SetDefault("sweeper.backoff_base", time.Minute)
	v.SetDefault("sweeper.backoff_cap", 16*time.Minute)
	v.SetDefault("sweeper.failure_threshold", 5)
	v.SetDefault("sweeper.circuit_cooldown", 30*time.Minute)

	v.SetDefault("notification.enabled", true)
	v.SetDefault("notification.poll_interval", 10*time.Second)
	v.SetDefault("notification.batch_size", 50)
	v.SetDefault("notification.max_attempts", 5)

	v.SetDefault("share.approver_roles", []string{"Admin", "Manager"})
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Shares.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Shares.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Approval.DefaultExpirationDays <= 0 {
		return fmt.Errorf("approval default expiration days must be positive")
	}

	if config.Approval.DefaultRequiredApprovals <= 0 {
		return fmt.Errorf("approval default required approvals must be positive")
	}

	if config.Sweeper.PollInterval <= 0 {
		return fmt.Errorf("sweeper poll interval must be positive")
	}

	if config.Sweeper.FailureThreshold <= 0 {
		return fmt.Errorf("sweeper failure threshold must be positive")
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}
