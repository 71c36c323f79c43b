package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	AI        AIConfig        `mapstructure:"ai"`
	Rewards   RewardsConfig   `mapstructure:"rewards"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// DSN returns URL when set (Supabase hands out a connection string), otherwise a keyword DSN.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	Mode         string `mapstructure:"mode"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type AIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	Timeout        int    `mapstructure:"timeout"`
}

func (a *AIConfig) Enabled() bool {
	return a.APIKey != ""
}

// RewardAmount is an XP grant plus its skill-point split.
type RewardAmount struct {
	XP           int64 `mapstructure:"xp"`
	SPReading    int64 `mapstructure:"sp_reading"`
	SPThinking   int64 `mapstructure:"sp_thinking"`
	SPWriting    int64 `mapstructure:"sp_writing"`
	SPEngagement int64 `mapstructure:"sp_engagement"`
}

type RewardsConfig struct {
	HubThreshold       int64        `mapstructure:"hub_threshold"`
	HubBonus           RewardAmount `mapstructure:"hub_bonus"`
	ScholarBonus       RewardAmount `mapstructure:"scholar_bonus"`
	BridgeBuilderBonus RewardAmount `mapstructure:"bridge_builder_bonus"`
	SolutionBonus      RewardAmount `mapstructure:"solution_bonus"`
	NotePoints         int64        `mapstructure:"note_points"`
	LinkPoints         int64        `mapstructure:"link_points"`
	QualityThreshold   int          `mapstructure:"quality_threshold"`
}

type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ReconcileCron string `mapstructure:"reconcile_cron"`
	HubSweepCron  string `mapstructure:"hub_sweep_cron"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("database.url", "")
	v.SetDefault("database.password", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("ai.api_key", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.mode", "release")

	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.embedding_model", "text-embedding-004")
	v.SetDefault("ai.timeout", 20)

	v.SetDefault("rewards.hub_threshold", 5)
	v.SetDefault("rewards.hub_bonus.xp", 50)
	v.SetDefault("rewards.hub_bonus.sp_thinking", 10)
	v.SetDefault("rewards.scholar_bonus.xp", 15)
	v.SetDefault("rewards.scholar_bonus.sp_writing", 5)
	v.SetDefault("rewards.bridge_builder_bonus.xp", 10)
	v.SetDefault("rewards.bridge_builder_bonus.sp_thinking", 3)
	v.SetDefault("rewards.solution_bonus.xp", 20)
	v.SetDefault("rewards.solution_bonus.sp_engagement", 5)
	v.SetDefault("rewards.note_points", 10)
	v.SetDefault("rewards.link_points", 5)
	v.SetDefault("rewards.quality_threshold", 7)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reconcile_cron", "0 15 3 * * *")
	v.SetDefault("scheduler.hub_sweep_cron", "0 */10 * * * *")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// Load reads configPath (YAML) over the defaults. A missing file is not an error when
// CODEX_* environment variables carry the settings instead.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CODEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Rewards.HubThreshold <= 0 {
		return fmt.Errorf("rewards.hub_threshold must be positive, got %d", c.Rewards.HubThreshold)
	}
	if c.Rewards.NotePoints < 0 || c.Rewards.LinkPoints < 0 {
		return fmt.Errorf("rewards point amounts must not be negative")
	}
	return nil
}
