package config

import (
	"strings"
	"testing"
)

func validEncrypt() *Config {
	return &Config{
		Parallel:  4,
		IDSize:    16,
		ChunkSize: 65536,
		Recipients: []string{
			"02" + strings.Repeat("ab", 32),
		},
		Files: []string{"input.txt"},
	}
}

func validDecrypt() *Config {
	return &Config{
		Parallel:  4,
		IDSize:    16,
		ChunkSize: 65536,
		Key:       Key{String: strings.Repeat("ab", 32)},
		Decrypt:   true,
		Files:     []string{"input.txt.enc"},
	}
}

func TestValidateAcceptsValidConfigs(t *testing.T) {
	if err := validEncrypt().Validate(); err != nil {
		t.Errorf("encrypt config rejected: %v", err)
	}

	if err := validDecrypt().Validate(); err != nil {
		t.Errorf("decrypt config rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		base   func() *Config
	}{
		{"zero parallel", func(c *Config) { c.Parallel = 0 }, validEncrypt},
		{"id size too small", func(c *Config) { c.IDSize = 2 }, validEncrypt},
		{"id size too large", func(c *Config) { c.IDSize = 64 }, validEncrypt},
		{"chunk size too small", func(c *Config) { c.ChunkSize = 512 }, validEncrypt},
		{"no files", func(c *Config) { c.Files = nil }, validEncrypt},
		{"no recipients", func(c *Config) { c.Recipients = nil }, validEncrypt},
		{"recipient not hex", func(c *Config) { c.Recipients = []string{"zz"} }, validEncrypt},
		{"recipient wrong length", func(c *Config) { c.Recipients = []string{"02ab"} }, validEncrypt},
		{"sign key wrong length", func(c *Config) { c.SignKey = "abcd" }, validEncrypt},
		{"decrypt without key", func(c *Config) { c.Key = Key{} }, validDecrypt},
		{"key not hex", func(c *Config) { c.Key.String = strings.Repeat("zz", 32) }, validDecrypt},
		{"key wrong length", func(c *Config) { c.Key.String = "abcd" }, validDecrypt},
		{"key and key file", func(c *Config) { c.Key.File = "key.txt" }, validDecrypt},
		{"verify key wrong length", func(c *Config) { c.VerifyKey = "02ab" }, validDecrypt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.base()
			tt.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Fatal("invalid configuration accepted")
			}
		})
	}
}
