package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log           Logger         `mapstructure:"logger"`
	DB            Database       `mapstructure:"database"`
	API           API            `mapstructure:"api"`
	Scheduler     Scheduler      `mapstructure:"scheduler"`
	Cache         Cache          `mapstructure:"cache"`
	Scraper       Scraper        `mapstructure:"scraper"`
	HostedScraper HostedScraper  `mapstructure:"hosted_scraper"`
	Browser       Browser        `mapstructure:"browser"`
	Discovery     Discovery      `mapstructure:"discovery"`
	LLM           LLM            `mapstructure:"llm"`
	Usage         Usage          `mapstructure:"usage"`
	Telegram      TelegramConfig `mapstructure:"telegram"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Scheduler struct {
	Enabled         bool          `mapstructure:"enabled"`
	CronExpression  string        `mapstructure:"cron_expression"`
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type API struct {
	Port                int           `mapstructure:"port"`
	UserHeader          string        `mapstructure:"user_header"`
	MaxRequestPerSecond float64       `mapstructure:"max_request_per_second"`
	Burst               int           `mapstructure:"burst"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
}

type Cache struct {
	DefaultExpiration   time.Duration `mapstructure:"default_expiration"`
	CleanupInterval     time.Duration `mapstructure:"cleanup_interval"`
	PlanExpiration      time.Duration `mapstructure:"plan_expiration"`
	DiscoveryExpiration time.Duration `mapstructure:"discovery_expiration"`
}

// Scraper holds the Fetch Client and batch orchestrator knobs.
type Scraper struct {
	Backend                      string        `mapstructure:"backend"`
	Timeout                      time.Duration `mapstructure:"timeout"`
	Concurrency                  int           `mapstructure:"concurrency"`
	AnalyzeConcurrency           int           `mapstructure:"analyze_concurrency"`
	BatchDelay                   time.Duration `mapstructure:"batch_delay"`
	MinContentLength             int           `mapstructure:"min_content_length"`
	MaxRawContentLength          int           `mapstructure:"max_raw_content_length"`
	MaxURLsPerRequest            int           `mapstructure:"max_urls_per_request"`
	DefaultCurrency              string        `mapstructure:"default_currency"`
	UserAgents                   []string      `mapstructure:"user_agents"`
	MaxRequestPerDomainPerSecond float64       `mapstructure:"max_request_per_domain_per_second"`
}

type HostedScraper struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	WaitFor         int           `mapstructure:"wait_for"`
	PageTimeout     int           `mapstructure:"page_timeout"`
	OnlyMainContent bool          `mapstructure:"only_main_content"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type Browser struct {
	ExecPath string        `mapstructure:"exec_path"`
	WaitFor  time.Duration `mapstructure:"wait_for"`
	Headless bool          `mapstructure:"headless"`
}

type Discovery struct {
	SearchURL string        `mapstructure:"search_url"`
	MaxURLs   int           `mapstructure:"max_urls"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type LLM struct {
	Provider            string        `mapstructure:"provider"`
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
}

type Usage struct {
	Strict        bool `mapstructure:"strict"`
	RetentionDays int  `mapstructure:"retention_days"`
}

type TelegramConfig struct {
	Enabled                   bool          `mapstructure:"enabled"`
	BotToken                  string        `mapstructure:"bot_token"`
	AdminChatID               int64         `mapstructure:"admin_chat_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxUserRequestPerSecond   int           `mapstructure:"max_user_request_per_second"`
	RatelimitExpireDuration   time.Duration `mapstructure:"ratelimit_expire_duration"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.user_header", "X-User-ID")
	viper.SetDefault("api.max_request_per_second", 10)
	viper.SetDefault("api.burst", 30)
	viper.SetDefault("api.request_timeout", 3*time.Minute)

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.cron_expression", "* * * * *")
	viper.SetDefault("scheduler.max_concurrency", 2)
	viper.SetDefault("scheduler.timeout_duration", 10*time.Minute)

	viper.SetDefault("cache.default_expiration", 10*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 15*time.Minute)
	viper.SetDefault("cache.plan_expiration", 5*time.Minute)
	viper.SetDefault("cache.discovery_expiration", time.Hour)

	viper.SetDefault("scraper.backend", "direct")
	viper.SetDefault("scraper.timeout", 15*time.Second)
	viper.SetDefault("scraper.concurrency", 3)
	viper.SetDefault("scraper.analyze_concurrency", 2)
	viper.SetDefault("scraper.batch_delay", time.Second)
	viper.SetDefault("scraper.min_content_length", 50)
	viper.SetDefault("scraper.max_raw_content_length", 5000)
	viper.SetDefault("scraper.max_urls_per_request", 10)
	viper.SetDefault("scraper.default_currency", "AUD")
	viper.SetDefault("scraper.max_request_per_domain_per_second", 2)
	viper.SetDefault("scraper.user_agents", []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	})

	viper.SetDefault("hosted_scraper.wait_for", 3000)
	viper.SetDefault("hosted_scraper.page_timeout", 30000)
	viper.SetDefault("hosted_scraper.only_main_content", true)
	viper.SetDefault("hosted_scraper.timeout", 45*time.Second)

	viper.SetDefault("browser.wait_for", 3*time.Second)
	viper.SetDefault("browser.headless", true)

	viper.SetDefault("discovery.search_url", "https://html.duckduckgo.com/html/")
	viper.SetDefault("discovery.max_urls", 10)
	viper.SetDefault("discovery.timeout", 15*time.Second)

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4-turbo-preview")
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("llm.max_request_per_minute", 60)
	viper.SetDefault("llm.max_token_per_minute", 200000)

	viper.SetDefault("usage.strict", false)
	viper.SetDefault("usage.retention_days", 400)

	viper.SetDefault("telegram.timeout_duration", 30*time.Second)
	viper.SetDefault("telegram.max_global_request_per_second", 30)
	viper.SetDefault("telegram.max_user_request_per_second", 1)
	viper.SetDefault("telegram.ratelimit_expire_duration", 10*time.Minute)
	viper.SetDefault("telegram.rate_limit_cleanup_duration", 5*time.Minute)
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject env directly.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
