package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/HSouheill/simstore_backend/services"
)

type stubVerifier map[string]*services.SessionClaims

func (s stubVerifier) Authenticate(token string) (*services.SessionClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		{header: "bearer abc", want: "abc", ok: true},
		{header: "Bearer    ", ok: false},
		{header: "Basic dXNlcjpwYXNz", ok: false},
		{header: "abc.def.ghi", ok: false},
		{header: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := ExtractBearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestJWTMiddleware(t *testing.T) {
	verifier := stubVerifier{"good": {UserID: "u-1", Mobile: "9000000001"}}

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		assert.Equal(t, "9000000001", GetClaims(c).Mobile)
		return c.String(http.StatusOK, GetUserIDFromToken(c))
	}, JWTMiddleware(verifier))

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := call("Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer forged").Code)
	assert.Contains(t, call("Token good").Body.String(), "Missing or malformed")
}

func TestContextHelpersOutsideMiddleware(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, GetUserIDFromToken(c))
	assert.Nil(t, GetClaims(c))
}
