package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"translation-api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", "translation-api", "translation-api-admin")
}

func TestAPIKeyMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyMiddleware(auth.NewGate("s3cr3t")))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		name   string
		header string
		set    bool
		want   int
	}{
		{"exact match", "s3cr3t", true, http.StatusOK},
		{"case differs", "S3cr3t", true, http.StatusForbidden},
		{"empty", "", true, http.StatusForbidden},
		{"absent", "", false, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.set {
				req.Header.Set(auth.APIKeyHeader, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusForbidden {
				require.JSONEq(t, `{"error":"Not authorized"}`, w.Body.String())
				require.Contains(t, w.Header().Get("Cache-Control"), "max-age=0")
			}
		})
	}
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newIssuer()
	r := gin.New()
	r.Use(JWTAuthMiddleware(issuer))
	r.GET("/protected", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(AdminUserKey)) })

	token, err := issuer.GenerateToken("admin")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "admin", w.Body.String())
}

func TestJWTAuthMiddleware_QueryTokenFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newIssuer()
	r := gin.New()
	r.Use(JWTAuthMiddleware(issuer))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	token, err := issuer.GenerateToken("admin")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(newIssuer()))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
