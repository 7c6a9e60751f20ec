package imagehost

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &core.Config{ImageHost: core.ImageHostConfig{BaseURL: srv.URL, APIKey: "k3y", Expiration: time.Hour}}
	c, err := NewClient(conf)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(&core.Config{})
	assert.Error(t, err)
}

func TestClient_Upload(t *testing.T) {
	content := []byte("\x89PNG\r\n\x1a\nfake")

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, uploadPath, r.URL.Path)
			assert.Equal(t, "k3y", r.URL.Query().Get("key"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, base64.StdEncoding.EncodeToString(content), r.PostForm.Get("image"))
			assert.Equal(t, "proof.png", r.PostForm.Get("name"))
			assert.Equal(t, "3600", r.PostForm.Get("expiration"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"url":"https://i.example/a.png","display_url":"https://i.example/d/a.png",` +
				`"delete_url":"https://i.example/del/a","thumb":{"url":"https://i.example/t/a.png"}},"success":true,"status":200}`))
		})

		img, err := c.Upload(context.Background(), "proof.png", content)
		require.NoError(t, err)
		assert.Equal(t, "https://i.example/a.png", img.URL)
		assert.Equal(t, "https://i.example/d/a.png", img.DisplayURL)
		assert.Equal(t, "https://i.example/del/a", img.DeleteURL)
		assert.Equal(t, "https://i.example/t/a.png", img.ThumbURL)
	})

	t.Run("failure", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status_code":400,"error":{"message":"Invalid API v1 key."},"success":false,"status":400}`))
		})

		_, err := c.Upload(context.Background(), "proof.png", content)
		require.Error(t, err)
		assert.Equal(t, ErrUploadFailed, errors.Cause(err))
		assert.Contains(t, err.Error(), "Invalid API v1 key.")
	})

	t.Run("garbage", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})

		_, err := c.Upload(context.Background(), "proof.png", content)
		assert.Equal(t, ErrUploadFailed, errors.Cause(err))
	})
}
