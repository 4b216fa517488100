package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/snooker-house-api/internal/utils"
)

func runJWT(t *testing.T, secret, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	h := JWTAuth(secret)(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, captured
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken("unit-secret", 7, "OWNER", 15)
	require.NoError(t, err)

	rec, c := runJWT(t, "unit-secret", "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c)
	// JWT numeric claims come back as float64.
	assert.Equal(t, float64(7), c.Get("user_id"))
	assert.Equal(t, "OWNER", c.Get("role"))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, c := runJWT(t, "unit-secret", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 7, "OWNER", 15)
	require.NoError(t, err)

	rec, c := runJWT(t, "unit-secret", "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec, c := runJWT(t, "unit-secret", "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, c)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	call := func(role interface{}) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := RequireRole("OWNER", "STAFF")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("OWNER"))
	assert.Equal(t, http.StatusOK, call("STAFF"))
	assert.Equal(t, http.StatusForbidden, call("CUSTOMER"))
	assert.Equal(t, http.StatusForbidden, call(nil))
}
