package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/mkrupp/socialsvc/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	StringValue   string        `env:"STRING_VALUE" default:"default"`
	IntValue      int           `env:"INT_VALUE" default:"42"`
	BoolValue     bool          `env:"BOOL_VALUE" default:"true"`
	RateValue     float64       `env:"RATE_VALUE" default:"2.5"`
	DurationValue time.Duration `env:"DURATION_VALUE" default:"5"`
	NoEnvTag      string
	Nested        testNestedConfig `envPrefix:"NESTED_"`
}

type testNestedConfig struct {
	NestedString string `env:"STRING" default:"nested-default"`
}

func defaultTestConfig() testConfig {
	return testConfig{
		StringValue:   "default",
		IntValue:      42,
		BoolValue:     true,
		RateValue:     2.5,
		DurationValue: 5 * time.Second,
		Nested: testNestedConfig{
			NestedString: "nested-default",
		},
	}
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		envVars map[string]string
		want    func(cfg *testConfig)
		wantErr error
	}{
		{
			name:    "uses default values when env vars not set",
			envVars: map[string]string{},
			want:    func(*testConfig) {},
		},
		{
			name: "reads environment variables",
			envVars: map[string]string{
				"STRING_VALUE":   "env-value",
				"INT_VALUE":      "123",
				"BOOL_VALUE":     "false",
				"RATE_VALUE":     "0.5",
				"DURATION_VALUE": "250ms",
				"NESTED_STRING":  "env-nested",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "env-value"
				cfg.IntValue = 123
				cfg.BoolValue = false
				cfg.RateValue = 0.5
				cfg.DurationValue = 250 * time.Millisecond
				cfg.Nested.NestedString = "env-nested"
			},
		},
		{
			name:   "handles prefix correctly",
			prefix: "APP",
			envVars: map[string]string{
				"APP_STRING_VALUE": "prefixed-value",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "prefixed-value"
			},
		},
		{
			name:   "prefers more specific prefix",
			prefix: "APP_SERVICE",
			envVars: map[string]string{
				"APP_STRING_VALUE":         "less-specific",
				"APP_SERVICE_STRING_VALUE": "more-specific",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "more-specific"
			},
		},
		{
			name:   "falls back to unprefixed variable",
			prefix: "APP_SERVICE",
			envVars: map[string]string{
				"INT_VALUE": "7",
			},
			want: func(cfg *testConfig) {
				cfg.IntValue = 7
			},
		},
		{
			name: "reads bare duration as seconds",
			envVars: map[string]string{
				"DURATION_VALUE": "30",
			},
			want: func(cfg *testConfig) {
				cfg.DurationValue = 30 * time.Second
			},
		},
		{
			name: "handles empty string values",
			envVars: map[string]string{
				"STRING_VALUE": "",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = ""
			},
		},
		{
			name: "fails on invalid int value",
			envVars: map[string]string{
				"INT_VALUE": "not-a-number",
			},
			wantErr: errAny,
		},
		{
			name: "fails on invalid bool value",
			envVars: map[string]string{
				"BOOL_VALUE": "not-a-bool",
			},
			wantErr: errAny,
		},
		{
			name: "fails on invalid duration value",
			envVars: map[string]string{
				"DURATION_VALUE": "soon",
			},
			wantErr: errAny,
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := &testConfig{}
			err := Parse(ctx, cfg, tt.prefix)

			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				return
			}

			want := defaultTestConfig()
			tt.want(&want)

			if cfg.StringValue != want.StringValue {
				t.Errorf("StringValue = %v, want %v", cfg.StringValue, want.StringValue)
			}
			if cfg.IntValue != want.IntValue {
				t.Errorf("IntValue = %v, want %v", cfg.IntValue, want.IntValue)
			}
			if cfg.BoolValue != want.BoolValue {
				t.Errorf("BoolValue = %v, want %v", cfg.BoolValue, want.BoolValue)
			}
			if cfg.RateValue != want.RateValue {
				t.Errorf("RateValue = %v, want %v", cfg.RateValue, want.RateValue)
			}
			if cfg.DurationValue != want.DurationValue {
				t.Errorf("DurationValue = %v, want %v", cfg.DurationValue, want.DurationValue)
			}
			if cfg.NoEnvTag != "" {
				t.Errorf("NoEnvTag = %v, want empty", cfg.NoEnvTag)
			}
			if cfg.Nested.NestedString != want.Nested.NestedString {
				t.Errorf("NestedString = %v, want %v", cfg.Nested.NestedString, want.Nested.NestedString)
			}
			if cfg.Namespace() != tt.prefix {
				t.Errorf("Namespace() = %v, want %v", cfg.Namespace(), tt.prefix)
			}
		})
	}
}

var errAny = errors.New("any error")

//nolint:paralleltest
func TestParseWithDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if err := os.WriteFile(path, []byte("DOTENV_TEST_STRING_VALUE=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("DOTENV_TEST_INT_VALUE", "9")
	t.Cleanup(func() { os.Unsetenv("DOTENV_TEST_STRING_VALUE") })

	cfg := &testConfig{}
	err := Parse(context.Background(), cfg, "DOTENV_TEST",
		WithDotEnv(filepath.Join(dir, "missing.env"), path),
	)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.StringValue != "from-dotenv" {
		t.Errorf("StringValue = %v, want from-dotenv", cfg.StringValue)
	}
	if cfg.IntValue != 9 {
		t.Errorf("IntValue = %v, want 9", cfg.IntValue)
	}
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     any
		wantErr error
	}{
		{
			name:    "non-pointer config",
			cfg:     testConfig{},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "non-struct pointer",
			cfg:     new(string),
			wantErr: ErrInvalidConfig,
		},
		{
			name: "missing EnvConfig embedding",
			cfg: &struct {
				Value string `env:"VALUE"`
			}{},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Parse(context.Background(), tt.cfg, "")
			if err == nil {
				t.Error("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseRequiredVar(t *testing.T) {
	t.Parallel()

	cfg := &struct {
		EnvConfig

		Required string `env:"SOCIAL_CONFIG_TEST_REQUIRED_VALUE_NEVER_SET"`
	}{}

	err := Parse(context.Background(), cfg, "")
	if !errors.Is(err, ErrVarNotSet) {
		t.Errorf("expected error %v, got %v", ErrVarNotSet, err)
	}
}
