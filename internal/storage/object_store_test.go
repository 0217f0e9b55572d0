package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikocoro/prubas123/internal/config"
)

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000/photos",
		publicBaseURL(config.StorageConfig{Endpoint: "minio:9000", Bucket: "photos"}, false))
	assert.Equal(t, "https://minio:9000/photos",
		publicBaseURL(config.StorageConfig{Endpoint: "minio:9000", Bucket: "photos"}, true))
	assert.Equal(t, "https://cdn.example.com/photos",
		publicBaseURL(config.StorageConfig{Endpoint: "minio:9000", PublicURL: "https://cdn.example.com/", Bucket: "photos"}, false))
}

func TestObjectStoreURLAndKey(t *testing.T) {
	store, err := NewObjectStore(config.StorageConfig{
		Endpoint: "http://localhost:9000",
		Bucket:   "photos",
	})
	require.NoError(t, err)

	u := store.URL("2026/01/02/abc.png")
	assert.Equal(t, "http://localhost:9000/photos/2026/01/02/abc.png", u)

	key, ok := store.KeyFromURL(u)
	assert.True(t, ok)
	assert.Equal(t, "2026/01/02/abc.png", key)

	_, ok = store.KeyFromURL("https://elsewhere.example.com/ana.jpg")
	assert.False(t, ok)
	_, ok = store.KeyFromURL("http://localhost:9000/photos/")
	assert.False(t, ok)
}
