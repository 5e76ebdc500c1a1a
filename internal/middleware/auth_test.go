package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func newTestAuthenticator(t *testing.T) (*Authenticator, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAuthenticator(testSecret, "moodmate-auth", "moodmate-client", rdb), mr
}

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestAuthRequired(t *testing.T) {
	auth, mr := newTestAuthenticator(t)

	app := fiber.New()
	app.Get("/test", auth.Required(), func(c *fiber.Ctx) error {
		uid, _ := UserID(c)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": uid.String()})
	})

	userID := uuid.New()
	valid, err := auth.IssueToken(userID, time.Hour)
	require.NoError(t, err)

	claims := func(mut func(jwt.MapClaims)) jwt.MapClaims {
		c := jwt.MapClaims{
			"sub": userID.String(),
			"iss": "moodmate-auth",
			"aud": "moodmate-client",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		if mut != nil {
			mut(c)
		}
		return c
	}

	revoked := signToken(t, claims(func(c jwt.MapClaims) { c["jti"] = "revoked-jti" }), jwt.SigningMethodHS256, []byte(testSecret))
	require.NoError(t, mr.Set("blacklist:revoked-jti", "1"))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{name: "Happy Path", authHeader: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "Missing Header", expectedStatus: http.StatusUnauthorized},
		{name: "Invalid Format", authHeader: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "Malformed Token", authHeader: "Bearer malformed.token.here", expectedStatus: http.StatusUnauthorized},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + signToken(t, claims(func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }), jwt.SigningMethodHS256, []byte(testSecret)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Issuer",
			authHeader:     "Bearer " + signToken(t, claims(func(c jwt.MapClaims) { c["iss"] = "someone-else" }), jwt.SigningMethodHS256, []byte(testSecret)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Audience",
			authHeader:     "Bearer " + signToken(t, claims(func(c jwt.MapClaims) { c["aud"] = "other-client" }), jwt.SigningMethodHS256, []byte(testSecret)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Non UUID Subject",
			authHeader:     "Bearer " + signToken(t, claims(func(c jwt.MapClaims) { c["sub"] = "123" }), jwt.SigningMethodHS256, []byte(testSecret)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Secret",
			authHeader:     "Bearer " + signToken(t, claims(nil), jwt.SigningMethodHS256, []byte("another-secret-another-secret-another")),
			expectedStatus: http.StatusUnauthorized,
		},
		{name: "Revoked Token", authHeader: "Bearer " + revoked, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, userID.String(), body["userID"])
			} else {
				assert.Equal(t, "UNAUTHORIZED", body["code"])
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	auth, _ := newTestAuthenticator(t)

	app := fiber.New()
	handler := func(c *fiber.Ctx) error {
		uid, ok := UserID(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(uid.String())
	}
	app.Get("/feed", auth.Optional(), handler)
	app.Get("/ws", auth.OptionalWebSocket(), handler)

	userID := uuid.New()
	tok, err := auth.IssueToken(userID, time.Hour)
	require.NoError(t, err)

	read := func(req *http.Request) string {
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var buf [64]byte
		n, _ := resp.Body.Read(buf[:])
		return string(buf[:n])
	}

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	assert.Equal(t, "anonymous", read(req))

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, "anonymous", read(req), "bad tokens degrade to anonymous")

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, userID.String(), read(req))

	req = httptest.NewRequest(http.MethodGet, "/ws?token="+tok, nil)
	assert.Equal(t, userID.String(), read(req))
}

func TestParseToken_RejectsNonHMAC(t *testing.T) {
	auth := NewAuthenticator(testSecret, "", "", nil)
	tok := signToken(t, jwt.MapClaims{"sub": uuid.NewString()}, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)

	_, err := auth.ParseToken(context.Background(), tok)
	assert.Error(t, err)
}
