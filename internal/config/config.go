package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	GirrexAPIURL    string        `mapstructure:"GIRREX_API_URL"`
	GirrexCSRFToken string        `mapstructure:"GIRREX_CSRF_TOKEN"`
	EditKey         string        `mapstructure:"EDIT_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	HealthCentreID  int64         `mapstructure:"HEALTH_CENTRE_ID"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	// defaults also register the keys, so AutomaticEnv can see the
	// environment values without a .env file
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIRREX_API_URL", "")
	v.SetDefault("GIRREX_CSRF_TOKEN", "")
	v.SetDefault("EDIT_KEY", "")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("HEALTH_CENTRE_ID", 1)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
