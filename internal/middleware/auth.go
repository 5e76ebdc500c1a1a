package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"moodmate/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LocalUserID is the Fiber locals key holding the authenticated user's uuid.UUID.
const LocalUserID = "userID"

var (
	errMissingToken  = errors.New("authorization required")
	errInvalidToken  = errors.New("invalid or expired token")
	errTokenRevoked  = errors.New("token has been revoked")
	errInvalidIssuer = errors.New("invalid token issuer")
	errInvalidAud    = errors.New("invalid token audience")
	errInvalidSub    = errors.New("invalid user ID in token")
)

// Authenticator verifies HMAC-signed access tokens issued by the auth provider.
// Tokens carry the user's UUID in "sub"; revoked jti values live in Redis
// under "blacklist:<jti>".
type Authenticator struct {
	secret   []byte
	issuer   string
	audience string
	redis    *redis.Client
}

// NewAuthenticator creates an Authenticator. rdb may be nil, in which case
// revocation is not checked.
func NewAuthenticator(secret, issuer, audience string, rdb *redis.Client) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		redis:    rdb,
	}
}

// ParseToken validates tokenString and returns the subject user id.
func (a *Authenticator) ParseToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, errMissingToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errInvalidToken
	}

	if a.issuer != "" {
		if iss, _ := claims.GetIssuer(); iss != a.issuer {
			return uuid.Nil, errInvalidIssuer
		}
	}
	if a.audience != "" {
		aud, _ := claims.GetAudience()
		found := false
		for _, v := range aud {
			if v == a.audience {
				found = true
				break
			}
		}
		if !found {
			return uuid.Nil, errInvalidAud
		}
	}

	sub, _ := claims.GetSubject()
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errInvalidSub
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" && a.redis != nil {
		revoked, err := a.redis.Exists(ctx, "blacklist:"+jti).Result()
		if err == nil && revoked > 0 {
			return uuid.Nil, errTokenRevoked
		}
	}

	return userID, nil
}

// IssueToken signs a token for userID. It exists for tooling and tests; the
// production auth provider issues its own tokens with the same claims.
func (a *Authenticator) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	if a.issuer != "" {
		claims["iss"] = a.issuer
	}
	if a.audience != "" {
		claims["aud"] = a.audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := a.ParseToken(c.UserContext(), bearerToken(c))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(capitalize(err.Error())))
		}
		setUser(c, userID)
		return c.Next()
	}
}

// Optional attaches the viewer when a valid token is present and lets
// anonymous requests through unchanged.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearerToken(c); tok != "" {
			if userID, err := a.ParseToken(c.UserContext(), tok); err == nil {
				setUser(c, userID)
			}
		}
		return c.Next()
	}
}

// OptionalWebSocket behaves like Optional but also accepts the token as a
// "token" query parameter, since browsers cannot set headers on upgrades.
func (a *Authenticator) OptionalWebSocket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			tok = c.Query("token")
		}
		if tok != "" {
			if userID, err := a.ParseToken(c.UserContext(), tok); err == nil {
				setUser(c, userID)
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated user stored by Required or Optional.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	uid, ok := c.Locals(LocalUserID).(uuid.UUID)
	return uid, ok && uid != uuid.Nil
}

func setUser(c *fiber.Ctx, userID uuid.UUID) {
	c.Locals(LocalUserID, userID)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
