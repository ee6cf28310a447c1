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

var testTokens = TokenService{Secret: []byte("s3cret"), Issuer: "popflix", Duration: time.Hour}

func TestSignParse(t *testing.T) {
	tok, exp, err := testTokens.Sign("ops", RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := testTokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)

	other := TokenService{Secret: []byte("other"), Issuer: "popflix", Duration: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err)

	expired := TokenService{Secret: testTokens.Secret, Issuer: "popflix", Duration: -time.Minute}
	tok, _, err = expired.Sign("ops", RoleAdmin)
	require.NoError(t, err)
	_, err = testTokens.Parse(tok)
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin", RequireRole(testTokens, RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Subject)
	})

	admin, _, err := testTokens.Sign("ops", RoleAdmin)
	require.NoError(t, err)
	viewer, _, err := testTokens.Sign("guest", "viewer")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
