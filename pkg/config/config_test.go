package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("BLOG_TEST_INT", "42")
	t.Setenv("BLOG_TEST_BAD_INT", "x")
	t.Setenv("BLOG_TEST_BOOL", "false")

	assert.Equal(t, 42, EnvIntDefault("BLOG_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("BLOG_TEST_BAD_INT", 1))
	assert.Equal(t, 7, EnvIntDefault("BLOG_TEST_MISSING", 7))
	assert.False(t, EnvBoolDefault("BLOG_TEST_BOOL", true))
	assert.True(t, EnvBoolDefault("BLOG_TEST_MISSING", true))
	assert.Equal(t, "d", EnvDefault("BLOG_TEST_MISSING", "d"))
	assert.Error(t, NonEmpty("", "JWT_SECRET"))
}
