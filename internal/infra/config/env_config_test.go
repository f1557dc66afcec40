package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mkrupp/userapi/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	StringValue   string        `env:"STRING_VALUE" default:"default"`
	IntValue      int           `env:"INT_VALUE" default:"42"`
	BoolValue     bool          `env:"BOOL_VALUE" default:"true"`
	DurationValue time.Duration `env:"DURATION_VALUE" default:"24h"`
	ListValue     []string      `env:"LIST_VALUE" default:"a,b"`
	NoEnvTag      string
	Nested        testNestedConfig `envPrefix:"NESTED_"`
}

type testNestedConfig struct {
	NestedString string `env:"STRING" default:"nested-default"`
}

func defaults() testConfig {
	return testConfig{
		StringValue:   "default",
		IntValue:      42,
		BoolValue:     true,
		DurationValue: 24 * time.Hour,
		ListValue:     []string{"a", "b"},
		Nested: testNestedConfig{
			NestedString: "nested-default",
		},
	}
}

func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()

	for k, v := range envVars {
		t.Setenv(k, v)
	}
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		envVars map[string]string
		want    func(*testConfig)
		wantErr bool
	}{
		{
			name:    "uses default values when env vars not set",
			envVars: map[string]string{},
		},
		{
			name: "reads environment variables",
			envVars: map[string]string{
				"STRING_VALUE":   "env-value",
				"INT_VALUE":      "123",
				"BOOL_VALUE":     "false",
				"DURATION_VALUE": "90m",
				"LIST_VALUE":     " x , y ,,z",
				"NESTED_STRING":  "env-nested",
			},
			want: func(c *testConfig) {
				c.StringValue = "env-value"
				c.IntValue = 123
				c.BoolValue = false
				c.DurationValue = 90 * time.Minute
				c.ListValue = []string{"x", "y", "z"}
				c.Nested.NestedString = "env-nested"
			},
		},
		{
			name:    "reads bare integer durations as seconds",
			envVars: map[string]string{"DURATION_VALUE": "3600"},
			want: func(c *testConfig) {
				c.DurationValue = time.Hour
			},
		},
		{
			name:    "handles prefix correctly",
			prefix:  "APP",
			envVars: map[string]string{"APP_STRING_VALUE": "prefixed-value"},
			want: func(c *testConfig) {
				c.StringValue = "prefixed-value"
			},
		},
		{
			name:    "fails on invalid int value",
			envVars: map[string]string{"INT_VALUE": "not-a-number"},
			wantErr: true,
		},
		{
			name:    "fails on invalid bool value",
			envVars: map[string]string{"BOOL_VALUE": "not-a-bool"},
			wantErr: true,
		},
		{
			name:    "fails on invalid duration value",
			envVars: map[string]string{"DURATION_VALUE": "soon"},
			wantErr: true,
		},
		{
			name:    "handles multi-level prefixes",
			prefix:  "APP_SERVICE",
			envVars: map[string]string{"APP_SERVICE_STRING_VALUE": "multi-level-prefix"},
			want: func(c *testConfig) {
				c.StringValue = "multi-level-prefix"
			},
		},
		{
			name:   "prefers more specific prefix",
			prefix: "APP_SERVICE",
			envVars: map[string]string{
				"APP_STRING_VALUE":         "less-specific",
				"APP_SERVICE_STRING_VALUE": "more-specific",
			},
			want: func(c *testConfig) {
				c.StringValue = "more-specific"
			},
		},
		{
			name:    "handles empty string values",
			envVars: map[string]string{"STRING_VALUE": ""},
			want: func(c *testConfig) {
				c.StringValue = ""
			},
		},
		{
			name:    "handles zero int values",
			envVars: map[string]string{"INT_VALUE": "0"},
			want: func(c *testConfig) {
				c.IntValue = 0
			},
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t, tt.envVars)

			cfg := &testConfig{}
			err := Parse(ctx, cfg, tt.prefix)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)

			want := defaults()
			if tt.want != nil {
				tt.want(&want)
			}

			assert.Equal(t, want.StringValue, cfg.StringValue)
			assert.Equal(t, want.IntValue, cfg.IntValue)
			assert.Equal(t, want.BoolValue, cfg.BoolValue)
			assert.Equal(t, want.DurationValue, cfg.DurationValue)
			assert.Equal(t, want.ListValue, cfg.ListValue)
			assert.Empty(t, cfg.NoEnvTag)
			assert.Equal(t, want.Nested, cfg.Nested)
			assert.Equal(t, tt.prefix, cfg.Namespace())
		})
	}
}

//nolint:paralleltest
func TestParseYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
string_value: from-file
int_value: 7
list_value: [one, two]
nested:
  string: nested-from-file
`), 0o600))

	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_INT_VALUE", "8")

	cfg := &testConfig{}
	require.NoError(t, Parse(context.Background(), cfg, "APP"))

	assert.Equal(t, path, cfg.File())
	assert.Equal(t, "from-file", cfg.StringValue)
	assert.Equal(t, 8, cfg.IntValue, "environment overrides the file")
	assert.Equal(t, []string{"one", "two"}, cfg.ListValue)
	assert.Equal(t, "nested-from-file", cfg.Nested.NestedString)
	assert.True(t, cfg.BoolValue)
}

//nolint:paralleltest
func TestParseYAMLFileMissing(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	err := Parse(context.Background(), &testConfig{}, "APP")
	require.Error(t, err)
}

//nolint:paralleltest
func TestParseRequired(t *testing.T) {
	type requiredConfig struct {
		EnvConfig

		Secret string `env:"SECRET" default:"" required:"true"`
	}

	err := Parse(context.Background(), &requiredConfig{}, "")
	require.ErrorIs(t, err, ErrVarEmpty)

	t.Setenv("SECRET", "s3cr3t")

	cfg := &requiredConfig{}
	require.NoError(t, Parse(context.Background(), cfg, ""))
	assert.Equal(t, "s3cr3t", cfg.Secret)
}

func TestParseMissingWithoutDefault(t *testing.T) {
	t.Parallel()

	type strictConfig struct {
		EnvConfig

		Value string `env:"USERAPI_TEST_UNSET_VALUE"`
	}

	err := Parse(context.Background(), &strictConfig{}, "")
	require.ErrorIs(t, err, ErrVarNotSet)
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  interface{}
	}{
		{
			name: "non-pointer config",
			cfg:  testConfig{},
		},
		{
			name: "non-struct pointer",
			cfg:  new(string),
		},
		{
			name: "missing EnvConfig embedding",
			cfg: &struct {
				Value string `env:"VALUE"`
			}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Parse(context.Background(), tt.cfg, "")
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
