package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Run("set variable wins over default", func(t *testing.T) {
		t.Setenv("HERITAGE_TEST_HOST", "db.internal")
		assert.Equal(t, "host: db.internal", expandEnv("host: ${HERITAGE_TEST_HOST:localhost}"))
	})

	t.Run("missing variable falls back to default", func(t *testing.T) {
		assert.Equal(t, "host: localhost", expandEnv("host: ${HERITAGE_TEST_UNSET:localhost}"))
	})

	t.Run("empty default yields empty value", func(t *testing.T) {
		assert.Equal(t, "password: ", expandEnv("password: ${HERITAGE_TEST_UNSET:}"))
	})

	t.Run("no default leaves placeholder visible", func(t *testing.T) {
		assert.Equal(t, "key: ${HERITAGE_TEST_UNSET}", expandEnv("key: ${HERITAGE_TEST_UNSET}"))
	})

	t.Run("multiple placeholders", func(t *testing.T) {
		t.Setenv("HERITAGE_TEST_A", "1")
		got := expandEnv("${HERITAGE_TEST_A:x}:${HERITAGE_TEST_B:2}")
		assert.Equal(t, "1:2", got)
	})
}
