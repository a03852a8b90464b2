package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahinestrog/shoppyglobe/internal/auth"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"Bearer":         "",
		"Bearer ":        "",
		"Bearer abc":     "abc",
		"bearer abc":     "abc",
		"Basic abc":      "",
		"  Bearer  abc ": "abc",
	}
	for header, want := range cases {
		assert.Equal(t, want, bearerToken(header), "header %q", header)
	}
}

func TestProtectedAttachesClaims(t *testing.T) {
	tokens, err := auth.NewTokens("secret", 0)
	require.NoError(t, err)
	raw, err := tokens.Issue("u-7", "carol")
	require.NoError(t, err)

	var got *auth.Claims
	h := protected(tokens, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		got, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h(rec, req, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u-7", got.UserID)
	assert.Equal(t, "carol", got.UserName)

	_, ok := ClaimsFromContext(req.Context())
	assert.False(t, ok)
}
