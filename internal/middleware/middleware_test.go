package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-0123456789"

func sign(t *testing.T, key string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

// 認証を通った後に context の値を返すだけのハンドラ
func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"user_id": c.Get(CtxUserIDKey),
			"role":    c.Get(CtxUserRoleKey),
		})
	}, mw...)
	return e
}

func do(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_OK(t *testing.T) {
	e := newEcho(AuthJWT(secret))
	tok := sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": RoleGateway,
		"exp":  time.Now().Add(time.Minute).Unix(),
	})

	rec := do(e, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42,"role":"GATEWAY"}`, rec.Body.String())
}

func TestAuthJWT_Rejects(t *testing.T) {
	e := newEcho(AuthJWT(secret))

	cases := map[string]string{
		"no header":  "",
		"not bearer": "Basic abc",
		"empty":      "Bearer ",
		"garbage":    "Bearer abc.def.ghi",
		"wrong key": "Bearer " + sign(t, "another-secret-000000", jwt.SigningMethodHS256,
			jwt.MapClaims{"sub": "1", "role": RoleAdmin}),
		"wrong alg": "Bearer " + sign(t, secret, jwt.SigningMethodHS512,
			jwt.MapClaims{"sub": "1", "role": RoleAdmin}),
		"expired": "Bearer " + sign(t, secret, jwt.SigningMethodHS256,
			jwt.MapClaims{"sub": "1", "role": RoleAdmin, "exp": time.Now().Add(-time.Minute).Unix()}),
		"no sub": "Bearer " + sign(t, secret, jwt.SigningMethodHS256,
			jwt.MapClaims{"role": RoleAdmin}),
		"no role": "Bearer " + sign(t, secret, jwt.SigningMethodHS256,
			jwt.MapClaims{"sub": "1"}),
	}
	for name, authz := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, do(e, authz).Code)
		})
	}
}

func TestRoleGuard(t *testing.T) {
	e := newEcho(AuthJWT(secret), RoleGuard(RoleGateway))

	gw := sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": RoleGateway})
	admin := sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": RoleAdmin})

	assert.Equal(t, http.StatusOK, do(e, "Bearer "+gw).Code)
	assert.Equal(t, http.StatusForbidden, do(e, "Bearer "+admin).Code)
}

func TestAdminRoleGuard(t *testing.T) {
	isAdmin := func(id int64) bool { return id == 7 }
	e := newEcho(AuthJWT(secret), AdminRoleGuard(isAdmin))

	ok := sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": float64(7), "role": RoleAdmin})
	notListed := sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "8", "role": RoleAdmin})
	gateway := sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "role": RoleGateway})

	assert.Equal(t, http.StatusOK, do(e, "Bearer "+ok).Code)
	assert.Equal(t, http.StatusForbidden, do(e, "Bearer "+notListed).Code)
	assert.Equal(t, http.StatusForbidden, do(e, "Bearer "+gateway).Code)

	// AuthJWT を通していない
	bare := newEcho(AdminRoleGuard(isAdmin))
	assert.Equal(t, http.StatusUnauthorized, do(bare, "").Code)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	e := newEcho(RequestLogger())

	rec := do(e, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "rid-1")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "rid-1", rec.Header().Get(HeaderRequestID))
}
