package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestR2Configured(t *testing.T) {
	full := Config{
		R2AccountID:       "acc",
		R2AccessKeyID:     "key",
		R2SecretAccessKey: "secret",
		R2BucketName:      "bucket",
		R2PublicBaseURL:   "https://tabs.example.com",
	}
	assert.True(t, full.R2Configured())

	// Загрузчик требует все поля, включая публичный базовый URL: без
	// любого из них экспорт должен остаться выключенным, а не уронить старт.
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing account id", func(c *Config) { c.R2AccountID = "" }},
		{"missing access key", func(c *Config) { c.R2AccessKeyID = "" }},
		{"missing secret", func(c *Config) { c.R2SecretAccessKey = "" }},
		{"missing bucket", func(c *Config) { c.R2BucketName = "" }},
		{"missing public base url", func(c *Config) { c.R2PublicBaseURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			assert.False(t, cfg.R2Configured())
		})
	}
}
