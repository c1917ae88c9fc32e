package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:    AppConfig{Environment: "development"},
			Logger: LoggerConfig{Level: "info"},
			Data:   DataConfig{BasePath: "/tmp/litshelf"},
			Catalog: CatalogConfig{
				GoogleBooksBaseURL: "https://www.googleapis.com/books/v1",
			},
		}
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing environment", func(t *testing.T) {
		cfg := valid()
		cfg.App.Environment = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown environment", func(t *testing.T) {
		cfg := valid()
		cfg.App.Environment = "testing"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown log level", func(t *testing.T) {
		cfg := valid()
		cfg.Logger.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing data path", func(t *testing.T) {
		cfg := valid()
		cfg.Data.BasePath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing catalog URL", func(t *testing.T) {
		cfg := valid()
		cfg.Catalog.GoogleBooksBaseURL = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestDataConfig_Paths(t *testing.T) {
	d := DataConfig{BasePath: "/var/lib/litshelf"}

	assert.Equal(t, "/var/lib/litshelf/shelf", d.ShelfDBPath())
	assert.Equal(t, "/var/lib/litshelf/search.bleve", d.SearchIndexPath())
	assert.Equal(t, "/var/lib/litshelf/local.db", d.LocalDBPath())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("LITSHELF_TEST_VALUE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "LITSHELF_TEST_VALUE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "LITSHELF_TEST_VALUE", "default"))

	os.Unsetenv("LITSHELF_TEST_VALUE")
	assert.Equal(t, "default", getConfigValue("", "LITSHELF_TEST_VALUE", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"banana", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, getBoolConfigValue(tt.value, "UNUSED_KEY", true))
		})
	}

	// Empty value falls through to the default.
	assert.True(t, getBoolConfigValue("", "UNSET_KEY_FOR_BOOL", true))
	assert.False(t, getBoolConfigValue("", "UNSET_KEY_FOR_BOOL", false))
}

func TestExpandPath(t *testing.T) {
	t.Run("empty uses default", func(t *testing.T) {
		got, err := expandPath("", "/default/path")
		require.NoError(t, err)
		assert.Equal(t, "/default/path", got)
	})

	t.Run("tilde expansion", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := expandPath("~/litshelf", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "litshelf"), got)
	})

	t.Run("relative becomes absolute", func(t *testing.T) {
		got, err := expandPath("data", "")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	content := "# comment line\n\nLITSHELF_ENV_TEST=hello\nLITSHELF_QUOTED_TEST=\"quoted value\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("LITSHELF_ENV_TEST")
		os.Unsetenv("LITSHELF_QUOTED_TEST")
	})

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("LITSHELF_ENV_TEST"))
	assert.Equal(t, "quoted value", os.Getenv("LITSHELF_QUOTED_TEST"))
}

func TestLoadEnvFile_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LITSHELF_EXISTING=from-file\n"), 0o600))

	t.Setenv("LITSHELF_EXISTING", "from-env")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "from-env", os.Getenv("LITSHELF_EXISTING"))
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NOT A VALID LINE\n"), 0o600))

	assert.Error(t, loadEnvFile(envPath))
}

func TestDurationDefaults(t *testing.T) {
	// The duration strings used as defaults must parse.
	for _, s := range []string{"15m", "720h", "15s", "60s"} {
		_, err := time.ParseDuration(s)
		assert.NoError(t, err)
	}
}
