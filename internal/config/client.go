package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ClientConfig struct {
	APIURL   string
	Timeout  time.Duration
	PageSize int
	// Policy is "any" or "all".
	Policy string
}

func LoadClient() (*ClientConfig, error) {
	v := newViper("client", "GALLERY_CLIENT")
	v.SetDefault("apiurl", "http://127.0.0.1:8080")
	v.SetDefault("timeout", "15s")
	v.SetDefault("pagesize", 20)
	v.SetDefault("policy", "any")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load client config file: %w", err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg, decoderOptions); err != nil {
		return nil, fmt.Errorf("unmarshal client config: %w", err)
	}
	return &cfg, nil
}
