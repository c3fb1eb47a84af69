package configs

import "github.com/spf13/viper"

type Configs struct {
	DBDriver      string `mapstructure:"DB_DRIVER"`
	DBHost        string `mapstructure:"DB_HOST"`
	DBName        string `mapstructure:"DB_NAME"`
	DBPort        string `mapstructure:"DB_PORT"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	WebServerPort string `mapstructure:"WEB_SERVER_PORT"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	AccessTokenExp  int    `mapstructure:"ACCESS_TOKEN_EXP"`  // Default: 900 (15 min)
	RefreshTokenExp int    `mapstructure:"REFRESH_TOKEN_EXP"` // Default: 604800 (7 days)

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisURL      string `mapstructure:"REDIS_URL"`

	// Webhook endpoints notified on product/currency/pricing changes.
	WebhookURLs    []string `mapstructure:"WEBHOOK_URLS"`
	WebhookSecret  string   `mapstructure:"WEBHOOK_SECRET"`
	WebhookTimeout int      `mapstructure:"WEBHOOK_TIMEOUT"` // seconds

	// Cron expressions use 6 fields (with seconds).
	PruneCronExpression  string `mapstructure:"PRUNE_CRON_EXPRESSION"`
	RecalcCronExpression string `mapstructure:"RECALC_CRON_EXPRESSION"` // empty disables the job
	LogRetentionDays     int    `mapstructure:"LOG_RETENTION_DAYS"`

	LogPath         string   `mapstructure:"LOG_PATH"` // path to log file, empty means stdout only
	AlertRecipients []string `mapstructure:"ALERT_RECIPIENTS"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	MailjetAPIKey    string `mapstructure:"MAILJET_API_KEY"`
	MailjetAPISecret string `mapstructure:"MAILJET_API_SECRET"`
}

func LoadConfig(path string) (*Configs, error) {
	var cfg *Configs
	viper.SetConfigName("app_config")
	viper.SetConfigType("env")
	viper.AddConfigPath(path)
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("WEB_SERVER_PORT", ":8080")

	viper.SetDefault("ACCESS_TOKEN_EXP", 900)     // 15 minutes
	viper.SetDefault("REFRESH_TOKEN_EXP", 604800) // 7 days

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("WEBHOOK_TIMEOUT", 5)

	// Retention sweep at 2:30 AM, recalculation disabled unless configured.
	viper.SetDefault("PRUNE_CRON_EXPRESSION", "0 30 2 * * *")
	viper.SetDefault("RECALC_CRON_EXPRESSION", "")
	viper.SetDefault("LOG_RETENTION_DAYS", 90)

	viper.SetDefault("LOG_PATH", "")
	viper.SetDefault("ALERT_RECIPIENTS", []string{})

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
