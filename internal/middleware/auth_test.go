package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type verifierStub struct {
	verifyFunc func(ctx context.Context, accessToken string) (string, error)
}

func (v *verifierStub) Verify(ctx context.Context, accessToken string) (string, error) {
	return v.verifyFunc(ctx, accessToken)
}

func acceptToken(token, userID string) *verifierStub {
	return &verifierStub{
		verifyFunc: func(ctx context.Context, accessToken string) (string, error) {
			if accessToken != token {
				return "", errors.New("unknown token")
			}
			return userID, nil
		},
	}
}

func echoUserID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context())))
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	h := RequireAuth(acceptToken("good", "user-1"))(echoUserID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"success":false,"message":"Authorization header required"}`, rec.Body.String())
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	h := RequireAuth(acceptToken("good", "user-1"))(echoUserID())

	for _, header := range []string{"good", "Basic good", "Bearer "} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	h := RequireAuth(acceptToken("good", "user-1"))(echoUserID())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"success":false,"message":"Invalid authentication token"}`, rec.Body.String())
}

func TestRequireAuth_ValidToken(t *testing.T) {
	h := RequireAuth(acceptToken("good", "user-1"))(echoUserID())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAuth_CaseInsensitiveScheme(t *testing.T) {
	h := RequireAuth(acceptToken("good", "user-1"))(echoUserID())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", rec.Body.String())
}

func TestOptionalAuth_Anonymous(t *testing.T) {
	h := OptionalAuth(acceptToken("good", "user-1"))(echoUserID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestOptionalAuth_InvalidTokenStaysAnonymous(t *testing.T) {
	h := OptionalAuth(acceptToken("good", "user-1"))(echoUserID())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestGetUserID_EmptyWithoutAuth(t *testing.T) {
	require.Empty(t, GetUserID(context.Background()))
}
