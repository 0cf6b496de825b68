package loopback

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (string, error) {
	t.Helper()
	c := &http.Client{Timeout: 2 * time.Second}
	resp, err := c.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return string(b), err
}

func TestSessionServesAndCloses(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello "+r.URL.Path)
	})
	s, err := Open(context.Background(), h)
	require.NoError(t, err)
	assert.Regexp(t, `^http://127\.0\.0\.1:\d+/$`, s.URL())

	body, err := get(t, s.URL()+"x")
	require.NoError(t, err)
	assert.Equal(t, "hello /x", body)

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.NoError(t, s.Close(), "second close is a no-op")

	_, err = get(t, s.URL())
	assert.Error(t, err)
}

func TestSessionClosesWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := Open(ctx, http.NotFoundHandler())
	require.NoError(t, err)
	cancel()
	assert.Eventually(t, s.Closed, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, s.Close())
}

func TestOpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, http.NotFoundHandler())
	assert.ErrorIs(t, err, context.Canceled)
}
