package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func callWith(mw echo.MiddlewareFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAPIAuthRejectsWrongToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Token", "wrong")
	rec := callWith(APIAuth("secret"), req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIAuthAcceptsMatchingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Token", "secret")
	rec := callWith(APIAuth("secret"), req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIAuthDisabledWithEmptyKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := callWith(APIAuth(""), req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNoStoreHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := callWith(NoStore(), req)
	require.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.Equal(t, "0", rec.Header().Get("Expires"))
}

func TestCORSShortCircuitsPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := callWith(CORS(), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
