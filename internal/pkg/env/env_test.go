package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedGetters(t *testing.T) {
	Env = map[string]string{
		"WORKERS":  "5",
		"BAD_INT":  "five",
		"FLAG_ON":  "Yes",
		"FLAG_OFF": "0",
		"FLAG_ODD": "maybe",
		"APP_ENV":  "dev",
	}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 5, GetEnvInt("WORKERS", 3))
	assert.Equal(t, 3, GetEnvInt("BAD_INT", 3))
	assert.Equal(t, 3, GetEnvInt("MISSING_INT_KEY", 3))
	assert.True(t, GetEnvBool("FLAG_ON", false))
	assert.False(t, GetEnvBool("FLAG_OFF", true))
	assert.True(t, GetEnvBool("FLAG_ODD", true))
	assert.True(t, IsDev())
}

func TestGetEnv_FallsBackToOS(t *testing.T) {
	Env = map[string]string{}
	t.Cleanup(func() { Env = nil })
	t.Setenv("SC_TEST_ONLY_KEY", "from-os")

	assert.Equal(t, "from-os", GetEnv("SC_TEST_ONLY_KEY", "def"))
	assert.Equal(t, "def", GetEnv("SC_TEST_ONLY_MISSING", "def"))
}
