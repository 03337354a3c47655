package serverutils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	require.NoError(t, err)
	return token
}

func TestParseTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	userID := uuid.NewString()
	token, err := GenerateToken(userID, time.Minute)
	require.NoError(t, err)

	parsed, err := parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseTokenRejectsNonUUIDClaim(t *testing.T) {
	InitJWT("test-secret")

	token := signToken(t, jwt.MapClaims{
		"user_id": "not-a-uuid",
		"exp":     time.Now().Add(time.Minute).Unix(),
		"iat":     time.Now().Unix(),
	})

	_, err := parseToken(token)
	require.Error(t, err)
}

func TestJwtMiddlewareRejectsForgedClaim(t *testing.T) {
	InitJWT("test-secret")

	app := fiber.New()
	app.Get("/protected", JwtMiddleware, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})

	// A correctly signed token whose subject is not a uuid must fail auth
	// instead of silently scoping the request to the nil uuid.
	forged := signToken(t, jwt.MapClaims{
		"user_id": "admin",
		"exp":     time.Now().Add(time.Minute).Unix(),
		"iat":     time.Now().Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userID := uuid.NewString()
	valid, err := GenerateToken(userID, time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
