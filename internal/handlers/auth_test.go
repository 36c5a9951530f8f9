package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/models"

	"github.com/stretchr/testify/require"
)

type gatewayMock struct {
	registerFunc func(ctx context.Context, email, password, fullName string) (*models.Token, error)
	loginFunc    func(ctx context.Context, email, password string) (*models.Token, error)
	refreshFunc  func(ctx context.Context, refreshToken string) (*models.Token, error)
}

func (m *gatewayMock) Register(ctx context.Context, email, password, fullName string) (*models.Token, error) {
	return m.registerFunc(ctx, email, password, fullName)
}

func (m *gatewayMock) Login(ctx context.Context, email, password string) (*models.Token, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *gatewayMock) Refresh(ctx context.Context, refreshToken string) (*models.Token, error) {
	return m.refreshFunc(ctx, refreshToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestAuthHandler_Register_Session(t *testing.T) {
	h := NewAuthHandler(&gatewayMock{
		registerFunc: func(ctx context.Context, email, password, fullName string) (*models.Token, error) {
			require.Equal(t, "new@example.com", email)
			require.Equal(t, "Ada", fullName)
			return &models.Token{AccessToken: "access", TokenType: models.TokenTypeBearer}, nil
		},
	}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"new@example.com","password":"password123","full_name":"Ada"}`))
	h.Register(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, true, envelope["success"])
	require.Equal(t, "User registered and logged in successfully", envelope["message"])
}

func TestAuthHandler_Register_PendingConfirmation(t *testing.T) {
	h := NewAuthHandler(&gatewayMock{
		registerFunc: func(ctx context.Context, email, password, fullName string) (*models.Token, error) {
			return &models.Token{TokenType: models.TokenTypePendingConfirmation}, nil
		},
	}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"new@example.com","password":"password123"}`))
	h.Register(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, true, envelope["success"])
	require.Contains(t, envelope["message"], "check your email")

	data := envelope["data"].(map[string]any)
	require.Equal(t, "pending_confirmation", data["token_type"])
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	h := NewAuthHandler(&gatewayMock{}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"new@example.com"}`))
	h.Register(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, false, envelope["success"])
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	h := NewAuthHandler(&gatewayMock{
		registerFunc: func(ctx context.Context, email, password, fullName string) (*models.Token, error) {
			return nil, apierr.Conflict("An account with this email already exists. Please try logging in instead.")
		},
	}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"dupe@example.com","password":"password123"}`))
	h.Register(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, false, envelope["success"])
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&gatewayMock{
		loginFunc: func(ctx context.Context, email, password string) (*models.Token, error) {
			return nil, apierr.Unauthorized("Invalid credentials")
		},
	}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"user@example.com","password":"wrong"}`))
	h.Login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, false, envelope["success"])
	require.Equal(t, "Invalid credentials", envelope["message"])
}

func TestAuthHandler_Refresh_QueryParamFallback(t *testing.T) {
	h := NewAuthHandler(&gatewayMock{
		refreshFunc: func(ctx context.Context, refreshToken string) (*models.Token, error) {
			require.Equal(t, "from-query", refreshToken)
			return &models.Token{AccessToken: "new-access", TokenType: models.TokenTypeBearer}, nil
		},
	}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh?refresh_token=from-query", nil)
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	h := NewAuthHandler(&gatewayMock{}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{}`))
	h.Refresh(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(&gatewayMock{}, false)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, true, envelope["success"])
	require.Equal(t, "Logout successful", envelope["message"])
}
