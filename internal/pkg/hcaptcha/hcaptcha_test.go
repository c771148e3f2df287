package hcaptcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSiteverify(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))

		resp := Response{Success: r.PostForm.Get("response") == "good"}
		if !resp.Success {
			resp.ErrorCodes = []string{"invalid-input-response"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifier_Verify(t *testing.T) {
	srv := newSiteverify(t)
	v := NewVerifier("s3cret", srv.URL)
	ctx := context.Background()

	assert.NoError(t, v.Verify(ctx, "good"))

	err := v.Verify(ctx, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid-input-response")

	assert.ErrorIs(t, v.Verify(ctx, ""), ErrEmptyToken)
}

func TestNewVerifier_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultVerifyURL, NewVerifier("x", "").verifyURL)
}
