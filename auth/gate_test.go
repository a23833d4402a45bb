package auth

import (
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"eshop/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newGatedApp(t *testing.T, cfg GateConfig) *fiber.App {
	t.Helper()
	gate, err := NewGate(cfg)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler(false)})
	app.Use(gate)
	app.All("/*", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := GenerateToken(testSecret, 1, true, time.Hour)
	require.NoError(t, err)
	return token
}

func TestGateRejectsMissingToken(t *testing.T) {
	app := newGatedApp(t, GateConfig{Secret: testSecret})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/products", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGateAcceptsAdminToken(t *testing.T) {
	app := newGatedApp(t, GateConfig{Secret: testSecret})

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/products", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGateRevokesNonAdminToken(t *testing.T) {
	app := newGatedApp(t, GateConfig{Secret: testSecret})

	token, err := GenerateToken(testSecret, 2, false, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/products", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGateRejectsForgedToken(t *testing.T) {
	app := newGatedApp(t, GateConfig{Secret: testSecret})

	forged, err := GenerateToken("another-secret", 1, true, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/products", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+forged)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

// An exempt request must pass without the token ever being decoded: a
// garbage bearer token on an exempt path still goes through.
func TestGateExemptSkipsDecoding(t *testing.T) {
	app := newGatedApp(t, GateConfig{
		Secret: testSecret,
		Exemptions: []Rule{
			{Pattern: regexp.MustCompile(`^/api/v1/products`), Methods: []string{fiber.MethodGet, fiber.MethodOptions}},
		},
	})

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/products/7", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGateExemptionMethodBound(t *testing.T) {
	app := newGatedApp(t, GateConfig{
		Secret: testSecret,
		Exemptions: []Rule{
			{Pattern: regexp.MustCompile(`^/api/v1/products`), Methods: []string{fiber.MethodGet}},
		},
	})

	// Same path, non-exempt method: gated.
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/v1/products", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGateLiteralPathExemption(t *testing.T) {
	app := newGatedApp(t, GateConfig{
		Secret: testSecret,
		Exemptions: []Rule{
			{Path: "/api/v1/users/login", Methods: []string{fiber.MethodPost}},
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/v1/users/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Prefix is not enough for a literal rule.
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/api/v1/users/login/extra", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestNewGateRejectsCatchAllRule(t *testing.T) {
	_, err := NewGate(GateConfig{
		Secret:     testSecret,
		Exemptions: []Rule{{Pattern: regexp.MustCompile(`(.*)`)}},
	})
	assert.ErrorIs(t, err, ErrOpenExemption)
}

func TestNewGateAllowAll(t *testing.T) {
	app := newGatedApp(t, GateConfig{AllowAll: true})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/v1/products/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestNewGateRequiresSecret(t *testing.T) {
	_, err := NewGate(GateConfig{})
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestNewGateRejectsEmptyRule(t *testing.T) {
	_, err := NewGate(GateConfig{Secret: testSecret, Exemptions: []Rule{{}}})
	assert.ErrorIs(t, err, ErrEmptyRule)
}

func TestGateAttachesClaims(t *testing.T) {
	gate, err := NewGate(GateConfig{Secret: testSecret})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler(false)})
	app.Use(gate)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"user_id": claims.UserID})
	})

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
