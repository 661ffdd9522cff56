package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"moodr-backend/internal/config"
)

func testStore(t *testing.T, publicURL string) *ObjectStore {
	t.Helper()

	s, err := New(&config.Config{
		MinioEndpoint:  "localhost:9000",
		MinioAccessKey: "test",
		MinioSecretKey: "test",
		MinioBucket:    "images",
		MinioPublicURL: publicURL,
	})
	require.NoError(t, err)

	return s
}

func TestURL_DefaultBase(t *testing.T) {
	s := testStore(t, "")
	assert.Equal(t, "http://localhost:9000/images/users/u/pic.jpg", s.URL("users/u/pic.jpg"))
}

func TestURL_PublicBaseOverride(t *testing.T) {
	s := testStore(t, "https://cdn.example.com/images/")
	assert.Equal(t, "https://cdn.example.com/images/users/u/pic.jpg", s.URL("users/u/pic.jpg"))
}

func TestKeyForURL_RoundTrip(t *testing.T) {
	s := testStore(t, "https://cdn.example.com/images")

	key, ok := s.KeyForURL(s.URL("users/u/pic.jpg"))
	require.True(t, ok)
	assert.Equal(t, "users/u/pic.jpg", key)
}

func TestKeyForURL_ForeignLocator(t *testing.T) {
	s := testStore(t, "https://cdn.example.com/images")

	_, ok := s.KeyForURL("https://elsewhere.example.com/images/pic.jpg")
	assert.False(t, ok)
}
