package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_MergePriority verifies that earlier sources win over later ones
// for fields both define, while later sources still fill gaps.
func TestBuild_MergePriority(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{
			App:     App{TokenSignKey: "from-env"},
			Storage: Storage{DB: DB{DSN: "postgres://env"}},
		},
		&StructuredConfig{
			App:    App{TokenSignKey: "from-flags", TokenIssuer: "issuer-from-flags"},
			Server: Server{HTTPAddress: "localhost:9999"},
		},
	)
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.App.TokenSignKey)
	assert.Equal(t, "issuer-from-flags", cfg.App.TokenIssuer)
	assert.Equal(t, "localhost:9999", cfg.Server.HTTPAddress)
	assert.Equal(t, "postgres://env", cfg.Storage.DB.DSN)
}

// TestBuild_ValidationFailure verifies that a merged config missing the DSN
// or the token sign key does not pass validation.
func TestBuild_ValidationFailure(t *testing.T) {
	b := newConfigBuilder()
	b.withDefaults()

	_, err := b.build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDatabaseDSN)
	assert.ErrorIs(t, err, ErrMissingTokenSignKey)
}

// ── withDefaults ──────────────────────────────────────────────────────────────

// TestWithDefaults_FillsGapsOnly verifies built-in defaults apply only where
// no other source supplied a value.
func TestWithDefaults_FillsGapsOnly(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		App:     App{TokenSignKey: "secret", TokenDuration: time.Hour},
		Storage: Storage{DB: DB{DSN: "postgres://x"}},
	})
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.App.TokenDuration)        // kept
	assert.Equal(t, 10*time.Minute, cfg.App.OTPLifetime)     // defaulted
	assert.Equal(t, "go-fin-keeper", cfg.App.TokenIssuer)    // defaulted
	assert.Equal(t, 10, cfg.App.BcryptCost)                  // defaulted
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress) // defaulted
	assert.Equal(t, 587, cfg.Mail.Port)                      // defaulted
}

// ── withEnv ───────────────────────────────────────────────────────────────────

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	t.Setenv("APP_TOKEN_SIGN_KEY", "env-secret")

	b := newConfigBuilder().withEnv()
	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-secret", b.configs[0].App.TokenSignKey)
}

func TestWithEnv_NoErrorOnEmptyEnv(t *testing.T) {
	b := newConfigBuilder().withEnv()
	assert.NoError(t, b.err)
	assert.Len(t, b.configs, 1)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withJSON()

	assert.NoError(t, b.err)
	assert.Len(t, b.configs, 1)
}

func TestWithJSON_AppendsConfig_WhenValidFile(t *testing.T) {
	p := writeTempJSONConfig(t, `{"app": {"token_issuer": "json-issuer"}}`)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: p})
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "json-issuer", b.configs[1].App.TokenIssuer)
}

func TestWithJSON_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/no/such/file.json"})
	b.withJSON()

	assert.Error(t, b.err)
}

func TestWithJSON_SetsError_WhenMalformedJSON(t *testing.T) {
	p := writeTempJSONConfig(t, `{not json`)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: p})
	b.withJSON()

	assert.Error(t, b.err)
}
