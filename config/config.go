package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Env             string `env:"ENVIRONMENT"`
	ServerPort      int    `env:"SERVER_PORT" envDefault:"8080"`
	BasicAuthCreds  string `env:"BASIC_AUTH_CREDS"`
	SendTimeoutSecs int    `env:"SEND_TIMEOUT_SECS" envDefault:"10"`
	Twitch          struct {
		ClientID         string `env:"TWITCH_CLIENT_ID"`
		ClientSecret     string `env:"TWITCH_CLIENT_SECRET"`
		PollIntervalSecs int    `env:"TWITCH_POLL_INTERVAL_SECS" envDefault:"60"`
	}
	Mailgun struct {
		Domain     string `env:"MAILGUN_DOMAIN"`
		APIKey     string `env:"MAILGUN_API_KEY"`
		SenderFrom string `env:"MAILGUN_SENDER_FROM" envDefault:"streamwatch@localhost"`
	}

	log   *zap.Logger
	creds map[string]string
}

func NewConfig(lc fx.Lifecycle, log *zap.Logger) (*Config, error) {
	cfg := &Config{log: log}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	creds, err := cfg.parseCreds()
	if err != nil {
		if cfg.IsDevelopment() {
			cfg.log.Sugar().Infof("%s (auth will be disabled in development env)", err)
			creds = map[string]string{}
		} else {
			return nil, err
		}
	}
	cfg.creds = creds

	return cfg, nil
}

func (cfg *Config) IsDevelopment() bool {
	return cfg.Env != "production"
}

func (cfg *Config) GetCreds() map[string]string {
	return cfg.creds
}

func (cfg *Config) SendTimeout() time.Duration {
	return time.Duration(cfg.SendTimeoutSecs) * time.Second
}

func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.Twitch.PollIntervalSecs) * time.Second
}

func (cfg *Config) parseCreds() (map[string]string, error) {
	if cfg.BasicAuthCreds == "" {
		return nil, errors.New("BASIC_AUTH_CREDS envvar must be populated")
	}

	result := make(map[string]string)
	for _, cred := range strings.Split(cfg.BasicAuthCreds, ",") {
		userPass := strings.Split(cred, ":")
		if len(userPass) != 2 {
			return nil, fmt.Errorf("failed to parse '%s', each credential should be delimited by a colon -- user1:pass1,user2:pass2", cred)
		}

		user, pass := userPass[0], userPass[1]
		result[strings.Trim(user, " ")] = strings.Trim(pass, " ")
	}

	return result, nil
}
