package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// Config defines the app configuration.
type Config struct {
	Server struct {
		Port     int    `yaml:"port" env:"PORT" env-default:"4000"`
		Env      string `yaml:"env" env:"ENV" env-default:"development"`
		LogLevel string `yaml:"log_level" env:"LOGLEVEL" env-default:"info"`
	} `yaml:"server"`
	Database struct {
		DSN          string `yaml:"dsn" env:"DSN"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"MAXOPENCONNS" env-default:"25"`
		MaxIdleConns int    `yaml:"max_idle_conns" env:"MAXIDLECONNS" env-default:"25"`
		MaxIdleTime  string `yaml:"max_idle_time" env:"MAXIDLETIME" env-default:"15m"`
		AutoMigrate  bool   `yaml:"auto_migrate" env:"AUTOMIGRATE" env-default:"true"`
	} `yaml:"database"`
	Smtp struct {
		Host     string `yaml:"host" env:"SMTPHOST"`
		Port     int    `yaml:"port" env:"SMTPPORT" env-default:"25"`
		Username string `yaml:"username" env:"SMTPUSERNAME"`
		Password string `yaml:"password" env:"SMTPPASSWORD"`
		Sender   string `yaml:"sender" env:"SMTPSENDER" env-default:"Bookrating <no-reply@bookrating.local>"`
	} `yaml:"smtp"`
	S3 struct {
		AccessKeyID     string `yaml:"access_key_id" env:"ACCESSKEYID"`
		SecretAccessKey string `yaml:"secret_access_key" env:"SECRETACCESSKEY"`
		Region          string `yaml:"region" env:"REGION"`
		Bucket          string `yaml:"bucket" env:"BUCKET"`
	} `yaml:"s3"`
	Limiter struct {
		RPS     float64 `yaml:"rps" env:"RPS" env-default:"4"`
		Burst   int     `yaml:"burst" env:"BURST" env-default:"8"`
		Enabled bool    `yaml:"enabled" env:"LENABLED" env-default:"true"`
	} `yaml:"limiter"`
	Cors struct {
		TrustedOrigins []string `yaml:"trusted_origins" env:"TRUSTEDORIGINS" env-separator:" "`
	} `yaml:"cors"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"MENABLED" env-default:"true"`
	} `yaml:"metrics"`
	BasicAuth struct {
		Username string `yaml:"username" env:"USERNAME"`
		Password string `yaml:"password" env:"PASSWORD"`
	} `yaml:"basic_auth"`
	Cache struct {
		TTL string `yaml:"ttl" env:"CACHETTL" env-default:"5m"`
	} `yaml:"cache"`
	Ingest struct {
		BatchSize     int    `yaml:"batch_size" env:"INGESTBATCHSIZE" env-default:"5000"`
		MaxRetries    int    `yaml:"max_retries" env:"INGESTMAXRETRIES" env-default:"2"`
		RetryDelay    string `yaml:"retry_delay" env:"INGESTRETRYDELAY" env-default:"500ms"`
		DedupDir      string `yaml:"dedup_dir" env:"INGESTDEDUPDIR"`
		DeadLetterDir string `yaml:"dead_letter_dir" env:"INGESTDEADLETTERDIR"`
		NotifyEmail   string `yaml:"notify_email" env:"INGESTNOTIFYEMAIL"`
	} `yaml:"ingest"`
}

// Decode reads the configuration. When path is non-empty the YAML file is read
// first and environment variables override it; otherwise only the environment
// (and defaults) are used.
func Decode(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
