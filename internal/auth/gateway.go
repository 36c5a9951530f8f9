// Package auth wraps the external identity provider. Account creation,
// password checking and session issuance all happen provider-side; this
// gateway only translates its HTTP surface into models.Token values and the
// apierr taxonomy.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/config"
	"wescape-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Gateway talks to a GoTrue-style identity provider.
type Gateway struct {
	baseURL   string
	anonKey   string
	jwtSecret string
	client    *http.Client
}

// NewGateway creates a gateway from the auth configuration.
func NewGateway(cfg config.AuthConfig) *Gateway {
	return &Gateway{
		baseURL:   strings.TrimRight(cfg.ProviderURL, "/"),
		anonKey:   cfg.AnonKey,
		jwtSecret: cfg.JWTSecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// sessionResponse covers both provider success shapes: a session with an
// embedded user, or a bare user object when email confirmation is pending.
type sessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"`
	User         *providerUser `json:"user"`
	ID           string        `json:"id"`
}

type providerUser struct {
	ID string `json:"id"`
}

type providerError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e *providerError) text() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	}
	return "unknown provider error"
}

// Register creates an account with the provider. When the provider withholds
// the session pending email confirmation, the returned token has type
// pending_confirmation and empty credentials; that is a success, not an
// error.
func (g *Gateway) Register(ctx context.Context, email, password, fullName string) (*models.Token, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if fullName != "" {
		body["data"] = map[string]any{"full_name": fullName}
	}

	status, respBody, err := g.post(ctx, "/auth/v1/signup", body)
	if err != nil {
		return nil, apierr.Internal("Registration failed", err)
	}

	if status != http.StatusOK {
		msg := decodeProviderError(respBody)
		switch {
		case status == http.StatusTooManyRequests:
			return nil, apierr.RateLimited("Too many registration attempts. Please wait before trying again.")
		case status == http.StatusConflict || strings.Contains(strings.ToLower(msg), "already registered"):
			return nil, apierr.Conflict("An account with this email already exists. Please try logging in instead.")
		default:
			return nil, apierr.BadRequest("Registration failed: " + msg)
		}
	}

	var resp sessionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, apierr.Internal("Registration failed", err)
	}

	if resp.AccessToken == "" {
		if resp.ID == "" && resp.User == nil {
			return nil, apierr.BadRequest("Registration failed")
		}
		// Account created, session withheld until the email is confirmed.
		return &models.Token{TokenType: models.TokenTypePendingConfirmation}, nil
	}

	return &models.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    models.TokenTypeBearer,
	}, nil
}

// Login exchanges credentials for a session. Every provider failure maps to
// Unauthorized without distinguishing the cause.
func (g *Gateway) Login(ctx context.Context, email, password string) (*models.Token, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	status, respBody, err := g.post(ctx, "/auth/v1/token?grant_type=password", body)
	if err != nil || status != http.StatusOK {
		return nil, apierr.Unauthorized("Invalid credentials")
	}

	var resp sessionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil || resp.AccessToken == "" {
		return nil, apierr.Unauthorized("Invalid credentials")
	}

	return &models.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    models.TokenTypeBearer,
	}, nil
}

// Refresh exchanges a refresh token for a new session.
func (g *Gateway) Refresh(ctx context.Context, refreshToken string) (*models.Token, error) {
	body := map[string]any{
		"refresh_token": refreshToken,
	}

	status, respBody, err := g.post(ctx, "/auth/v1/token?grant_type=refresh_token", body)
	if err != nil || status != http.StatusOK {
		return nil, apierr.Unauthorized("Invalid refresh token")
	}

	var resp sessionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil || resp.AccessToken == "" {
		return nil, apierr.Unauthorized("Invalid refresh token")
	}

	return &models.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    models.TokenTypeBearer,
	}, nil
}

// Verify resolves an access token to a user id. Verification is local when a
// JWT secret is configured (provider tokens are HS256-signed with it),
// otherwise it round-trips to the provider. Any failure means
// "unauthenticated"; callers never see a 5xx from here.
func (g *Gateway) Verify(ctx context.Context, accessToken string) (string, error) {
	if g.jwtSecret != "" {
		return g.verifyLocal(accessToken)
	}
	return g.verifyRemote(ctx, accessToken)
}

func (g *Gateway) verifyLocal(accessToken string) (string, error) {
	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(g.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("subject not found in token")
	}

	return sub, nil
}

func (g *Gateway) verifyRemote(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", g.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider rejected token: status %d", resp.StatusCode)
	}

	var user providerUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil || user.ID == "" {
		return "", fmt.Errorf("invalid introspection response")
	}

	return user.ID, nil
}

func (g *Gateway) post(ctx context.Context, path string, body map[string]any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", g.anonKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

func decodeProviderError(body []byte) string {
	var pe providerError
	if err := json.Unmarshal(body, &pe); err != nil {
		return "unknown provider error"
	}
	return pe.text()
}
