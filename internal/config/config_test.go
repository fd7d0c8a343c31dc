package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithDefaults(t *testing.T) {
	values, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", values.RunAddr)
	assert.Equal(t, "info", values.LogLevel)
	assert.Empty(t, values.MongoDSN)
	assert.Equal(t, "messages", values.MongoDBName)
	assert.Equal(t, "images", values.ImagesDir)
	assert.Equal(t, time.Hour, values.TokenTTL)
	assert.Equal(t, 10*time.Second, values.DBConnectionTimeout)
	assert.Equal(t, 64, values.CleanerQueueCapacity)
	assert.Equal(t, 5*time.Second, values.CleanerFlushInterval)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "localhost:9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MONGO_DSN", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "messages_test")
	t.Setenv("IMAGES_DIR", "uploads")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("CLEANER_QUEUE_CAPACITY", "128")

	values, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "localhost:9090", values.RunAddr)
	assert.Equal(t, "debug", values.LogLevel)
	assert.Equal(t, "mongodb://localhost:27017", values.MongoDSN)
	assert.Equal(t, "messages_test", values.MongoDBName)
	assert.Equal(t, "uploads", values.ImagesDir)
	assert.Equal(t, 30*time.Minute, values.TokenTTL)
	assert.Equal(t, 128, values.CleanerQueueCapacity)
}

func TestValidationRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name     string
		envName  string
		envValue string
	}{
		{
			name:     "unknown log level",
			envName:  "LOG_LEVEL",
			envValue: "verbose",
		},
		{
			name:     "malformed listen address",
			envName:  "SERVER_ADDRESS",
			envValue: "not an address",
		},
		{
			name:     "secret key is not base64url",
			envName:  "TOKEN_SIGNING_SECRET_KEY",
			envValue: "!!!not-base64!!!",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testCase.envName, testCase.envValue)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}
