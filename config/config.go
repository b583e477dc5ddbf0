package config

import (
	"time"

	"github.com/ericlagergren/decimal"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gitlab.com/creatorhub/commission_api/conv"
	"gitlab.com/creatorhub/commission_api/monitor"
	"gitlab.com/creatorhub/commission_api/net/kafka"
)

// Config structure
type Config struct {
	Server          ServerConfig
	Kafka           kafka.Config          `mapstructure:"kafka"`
	DatabaseCluster DatabaseClusterConfig `mapstructure:"database_cluster"`
	Storage         StorageConfig         `mapstructure:"storage"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Commission      CommissionConfig      `mapstructure:"commission"`
	Referral        ReferralConfig        `mapstructure:"referral"`
	Crons           Crons                 `mapstructure:"crons"`
}

// ServerConfig structure
type ServerConfig struct {
	Monitoring monitor.Config `mapstructure:"monitoring"`
	API        APIConfig      `mapstructure:"api"`
}

// APIConfig structure
type APIConfig struct {
	Port               int
	KeepAlive          bool   `mapstructure:"keep_alive"`
	InternalAllowedIPs string `mapstructure:"internal_allowed_ips"`
}

type Crons map[string]string

type StorageDriver string

const (
	StorageDriver_Postgres StorageDriver = "postgres"
	StorageDriver_Memory   StorageDriver = "memory"
)

type StorageConfig struct {
	Driver StorageDriver `mapstructure:"driver"`
}

// RedisConfig for the network tree cache. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	PoolSize int           `mapstructure:"pool_size"`
	TreeTTL  time.Duration `mapstructure:"tree_ttl"`
}

// CommissionConfig holds the per level commission rates and the share of a
// payment kept by the paid creator
type CommissionConfig struct {
	L1           float64 `mapstructure:"L1"`
	L2           float64 `mapstructure:"L2"`
	L3           float64 `mapstructure:"L3"`
	L4           float64 `mapstructure:"L4"`
	CreatorShare float64 `mapstructure:"creator_share"`
	MaxAttempts  int     `mapstructure:"max_attempts"`
}

// Rates returns the commission rates indexed by level - 1
func (cfg CommissionConfig) Rates() []*decimal.Big {
	return []*decimal.Big{
		conv.NewRate(cfg.L1),
		conv.NewRate(cfg.L2),
		conv.NewRate(cfg.L3),
		conv.NewRate(cfg.L4),
	}
}

func (cfg CommissionConfig) CreatorShareRate() *decimal.Big {
	return conv.NewRate(cfg.CreatorShare)
}

type ReferralConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	PrefixLength int    `mapstructure:"prefix_length"`
	SuffixLength int    `mapstructure:"suffix_length"`
	MaxAttempts  int    `mapstructure:"max_attempts"`
}

// DatabaseClusterConfig structure
type DatabaseClusterConfig struct {
	Writer DatabaseConfig `mapstructure:"writer"`
	Reader DatabaseConfig `mapstructure:"reader"`
}

// DatabaseConfig structure
type DatabaseConfig struct {
	Host            string
	Username        string
	Password        string
	Name            string
	SSLmode         string `mapstructure:"sslmode"`
	ApplicationName string `mapstructure:"application_name"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	Port            int
}

// LoadConfig Load server configuration from the yaml file
func LoadConfig(viperConf *viper.Viper) Config {
	var config Config

	err := viperConf.Unmarshal(&config)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to decode config into struct")
	}
	return config
}

// OpenConfig godoc
func OpenConfig(file string) {
	if file != "" {
		// Use config file from the flag.
		viper.SetConfigFile(file)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigName(".config")
	viper.AddConfigPath(".")                    // First try to load the config from the current directory
	viper.AddConfigPath("$HOME")                // Then try to load it from the HOME directory
	viper.AddConfigPath("/etc/commission_api/") // As a last resort try to load it from /etc/
	viper.SetEnvPrefix("CFG")
	viper.AutomaticEnv()
	setDefaultVariables()

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		log.Fatal().Err(err).Msg("Unable to read configuration file")
	}
}

func setDefaultVariables() {
	SetDefaults(viper.GetViper())
}

// SetDefaults registers the default values of every optional setting
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.api.port", 8080)
	v.SetDefault("server.api.keep_alive", true)
	v.SetDefault("server.api.internal_allowed_ips", "127.0.0.1/32, 10.0.0.0/8")
	v.SetDefault("server.monitoring.enabled", true)
	v.SetDefault("server.monitoring.port", 2112)
	v.SetDefault("database_cluster.writer.sslmode", "disable")
	v.SetDefault("database_cluster.writer.application_name", "commission_api")
	v.SetDefault("database_cluster.writer.max_open_conns", 20)
	v.SetDefault("database_cluster.reader.sslmode", "disable")
	v.SetDefault("database_cluster.reader.application_name", "commission_api")
	v.SetDefault("database_cluster.reader.max_open_conns", 20)
	v.SetDefault("storage.driver", string(StorageDriver_Postgres))
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.tree_ttl", "5m")
	v.SetDefault("kafka.group_id", "commission_api")
	v.SetDefault("kafka.topics.payments", "payments")
	v.SetDefault("commission.L1", 0.10)
	v.SetDefault("commission.L2", 0.05)
	v.SetDefault("commission.L3", 0.03)
	v.SetDefault("commission.L4", 0.02)
	v.SetDefault("commission.creator_share", 0.80)
	v.SetDefault("commission.max_attempts", 3)
	v.SetDefault("referral.base_url", "https://app.local")
	v.SetDefault("referral.prefix_length", 8)
	v.SetDefault("referral.suffix_length", 4)
	v.SetDefault("referral.max_attempts", 5)
	v.SetDefault("crons.recompute_financials", "0 0 * * * *")
}
