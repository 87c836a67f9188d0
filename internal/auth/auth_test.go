package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "characterhub", Duration: time.Hour}
}

func TestSignAndParse(t *testing.T) {
	ts := testTokens()

	tok, exp, err := ts.Sign("ops", ScopeWrite)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, ScopeWrite, claims.Scope)
}

func TestParseRejectsForeignSecretAndIssuer(t *testing.T) {
	tok, _, err := testTokens().Sign("ops", ScopeWrite)
	require.NoError(t, err)

	other := testTokens()
	other.Secret = []byte("different")
	_, err = other.Parse(tok)
	assert.Error(t, err)

	other = testTokens()
	other.Issuer = "someone-else"
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	ts := testTokens()
	ts.Duration = -time.Minute

	tok, _, err := ts.Sign("ops", ScopeWrite)
	require.NoError(t, err)
	_, err = ts.Parse(tok)
	assert.Error(t, err)
}

func TestRequireScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ts := testTokens()

	r := gin.New()
	r.POST("/w", RequireScope(ts, ScopeWrite), func(c *gin.Context) {
		c.String(http.StatusOK, MustGetClaims(c).Subject)
	})

	good, _, err := ts.Sign("ops", ScopeWrite)
	require.NoError(t, err)
	readOnly, _, err := ts.Sign("viewer", "characters:read")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Bearer nope", http.StatusUnauthorized},
		{"wrong scope", "Bearer " + readOnly, http.StatusForbidden},
		{"ok", "Bearer " + good, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/w", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
