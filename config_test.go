package dashauth

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "empty redis prefix invalid",
			mutate: func(c *Config) {
				c.Store.RedisPrefix = "   "
			},
			wantValid: false,
		},
		{
			name: "redis prefix with whitespace invalid",
			mutate: func(c *Config) {
				c.Store.RedisPrefix = "dash auth"
			},
			wantValid: false,
		},
		{
			name: "zero check interval invalid",
			mutate: func(c *Config) {
				c.Refresh.CheckInterval = 0
			},
			wantValid: false,
		},
		{
			name: "zero renew window invalid",
			mutate: func(c *Config) {
				c.Refresh.RenewWithin = 0
			},
			wantValid: false,
		},
		{
			name: "renew window below check interval invalid",
			mutate: func(c *Config) {
				c.Refresh.CheckInterval = 10 * time.Minute
				c.Refresh.RenewWithin = 5 * time.Minute
			},
			wantValid: false,
		},
		{
			name: "refresh disabled skips interval checks",
			mutate: func(c *Config) {
				c.Refresh.Disabled = true
				c.Refresh.CheckInterval = 0
				c.Refresh.RenewWithin = 0
			},
			wantValid: true,
		},
		{
			name: "negative backend timeout invalid",
			mutate: func(c *Config) {
				c.Backend.Timeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "zero subscription buffer invalid",
			mutate: func(c *Config) {
				c.Subscription.Buffer = 0
			},
			wantValid: false,
		},
		{
			name: "audit enabled needs buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "audit disabled ignores buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = false
				c.Audit.BufferSize = 0
			},
			wantValid: true,
		},
		{
			name: "empty home path invalid",
			mutate: func(c *Config) {
				c.Routes.HomePath = ""
			},
			wantValid: false,
		},
		{
			name: "empty login path invalid",
			mutate: func(c *Config) {
				c.Routes.LoginPath = ""
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}
