// Package test contains end-to-end API tests that exercise the full HTTP
// stack against an in-memory database and an embedded Redis.
package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/server"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type authUser struct {
	ID    uint
	Token string
}

var (
	appOnce sync.Once
	testApp *fiber.App
	testErr error
)

// newTestApp builds the full application once and reuses it for every
// test. Prometheus collectors register globally, so the server must not
// be constructed more than once per process.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	appOnce.Do(func() {
		if err := os.Setenv("APP_ENV", "test"); err != nil {
			testErr = err
			return
		}

		cfg := &config.Config{
			Env:       "test",
			Port:      "0",
			JWTSecret: "test-secret-key-12345678901234567890123456789012",
			DBDriver:  "sqlite",
		}

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			testErr = err
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			testErr = err
			return
		}
		sqlDB.SetMaxOpenConns(1)

		if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
			testErr = err
			return
		}

		redisSrv, err := miniredis.Run()
		if err != nil {
			testErr = err
			return
		}
		rdb := redis.NewClient(&redis.Options{Addr: redisSrv.Addr()})

		srv, err := server.NewServerWithDeps(cfg, db, rdb)
		if err != nil {
			testErr = err
			return
		}

		app := fiber.New()
		srv.SetupMiddleware(app)
		srv.SetupRoutes(app)
		testApp = app
	})

	if testErr != nil {
		t.Fatalf("build test app: %v", testErr)
	}
	return testApp
}

func signupUser(t *testing.T, app *fiber.App, prefix string) authUser {
	t.Helper()

	email := fmt.Sprintf("%s_%d_%s@example.com", prefix, time.Now().UnixNano(), uuid.NewString()[:8])
	payload := map[string]string{
		"email":        email,
		"password":     "TestPass123!@#",
		"display_name": prefix,
	}

	req := jsonReq(t, http.MethodPost, "/api/auth/signup", payload)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("signup app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup expected 201 got %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	if body.Token == "" || body.User.ID == 0 {
		t.Fatalf("invalid signup response: %+v", body)
	}

	return authUser{ID: body.User.ID, Token: body.Token}
}

func jsonReq(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()
	if payload == nil {
		return httptest.NewRequest(method, path, nil)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authReq(t *testing.T, method, path, token string, payload any) *http.Request {
	t.Helper()
	req := jsonReq(t, method, path, payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
