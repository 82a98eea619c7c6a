package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
)

func TestProvider(t *testing.T) {
	log := zap.NewNop()

	t.Run("should pick the configured provider", func(t *testing.T) {
		for _, tc := range []struct{ kind, name string }{{"local", "local"}, {"http", "http"}} {
			cfg := &config.Config{DataProvider: tc.kind, DataDir: t.TempDir(), DataBaseURL: "http://data.example.org"}
			p, err := Provider(cfg, nil, log)
			require.NoError(t, err)
			assert.Equal(t, tc.name, p.Name())
		}
	})

	t.Run("should require a client for s3", func(t *testing.T) {
		_, err := Provider(&config.Config{DataProvider: "s3"}, nil, log)
		assert.Error(t, err)
	})

	t.Run("should reject unknown providers", func(t *testing.T) {
		_, err := Provider(&config.Config{DataProvider: "ftp"}, nil, log)
		assert.Error(t, err)
	})
}

func TestS3ClientDisabled(t *testing.T) {
	client, err := S3Client(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Nil(t, Archive(&config.Config{}, nil, zap.NewNop()))
}

func TestStoreUnknownDriver(t *testing.T) {
	_, _, err := Store(context.Background(), &config.Config{StoreDriver: "sqlite"}, zap.NewNop())
	assert.Error(t, err)
}
