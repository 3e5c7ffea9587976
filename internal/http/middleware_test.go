package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"sociograph/internal/config"
	"sociograph/internal/store"
)

func authTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	st := &store.Store{}
	app.Get("/v1/jobs", authMiddleware(cfg, st), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.Enabled = true
	app := authTestApp(cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware_BadKeyPrefix(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.Enabled = true
	app := authTestApp(cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	req.Header.Set("Authorization", "Bearer wrong_prefix_key")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware_DisabledPassesThrough(t *testing.T) {
	cfg := &config.Config{}
	app := authTestApp(cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAdminOnlyMiddleware_NonAdmin(t *testing.T) {
	app := fiber.New()
	app.Post("/admin/api-keys", func(c *fiber.Ctx) error {
		c.Locals("apiKey", store.APIKey{IsAdmin: false})
		return adminOnlyMiddleware(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/api-keys", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
