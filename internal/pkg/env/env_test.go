package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	Env = map[string]string{"APP_PORT": "4000"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("APP_PORT", "5000")

	assert.Equal(t, "4000", GetEnv("APP_PORT", "8080"))
	assert.Equal(t, "fallback", GetEnv("CELUMARKET_UNSET_KEY", "fallback"))
}

func TestGetEnvIntAndBool(t *testing.T) {
	t.Setenv("JOBQUEUE_WORKERS", "7")
	t.Setenv("S3_ENABLED", "Yes")
	t.Setenv("BROKEN_INT", "seven")

	assert.Equal(t, 7, GetEnvInt("JOBQUEUE_WORKERS", 3))
	assert.Equal(t, 3, GetEnvInt("BROKEN_INT", 3))
	assert.True(t, GetEnvBool("S3_ENABLED", false))
	assert.True(t, GetEnvBool("CELUMARKET_UNSET_BOOL", true))
}

func TestIsDev(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	assert.True(t, IsDev())
	t.Setenv("APP_ENV", "prod")
	assert.False(t, IsDev())
}
