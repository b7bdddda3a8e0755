//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/corefellowship/backend/config"
	"github.com/corefellowship/backend/internal/applications"
	"github.com/corefellowship/backend/internal/db"
	"github.com/corefellowship/backend/internal/gateway"
	"github.com/corefellowship/backend/internal/identity"
	"github.com/corefellowship/backend/internal/logging"
)

const (
	gatewayPort      = 18080
	identityPort     = 18081
	applicationsPort = 18082
)

type servers struct {
	gateway      *gateway.Server
	identity     *identity.Server
	applications *applications.Server
}

func (s *servers) shutdown() {
	if s.gateway != nil {
		_ = s.gateway.Shutdown()
	}
	if s.identity != nil {
		_ = s.identity.Shutdown()
	}
	if s.applications != nil {
		_ = s.applications.Shutdown()
	}
}

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d", "postgres"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	setTestEnv()

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srvs, err := startServers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start servers: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", gatewayPort)
	if err := waitForHealth(ctx, baseURL+"/health"); err != nil {
		fmt.Fprintf(os.Stderr, "gateway not healthy: %v\n", err)
		srvs.shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	srvs.shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

// The full trust chain: register and login through the gateway, then access
// the applications backend with the minted token and verify the identity
// that arrives there came from validated claims.
func TestTrustChain(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", gatewayPort)
	email := fmt.Sprintf("student_%d@example.com", time.Now().UnixNano())
	password := "testpass123!"

	// Health is public through the gateway.
	if status, _ := doJSON(t, http.MethodGet, baseURL+"/v1/identity/health", nil, ""); status != http.StatusOK {
		t.Fatalf("identity health status %d", status)
	}

	// Protected route without a token.
	if status, _ := doJSON(t, http.MethodGet, baseURL+"/v1/students/applications", nil, ""); status != http.StatusUnauthorized {
		t.Fatalf("anonymous protected access status %d, want 401", status)
	}

	status, body := doJSON(t, http.MethodPost, baseURL+"/v1/auth/register", map[string]any{
		"email":    email,
		"password": password,
		"userType": "STUDENT",
		"fullName": "E2E Student",
	}, "")
	if status != http.StatusCreated {
		t.Fatalf("register status %d: %v", status, body)
	}

	status, body = doJSON(t, http.MethodPost, baseURL+"/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, "")
	if status != http.StatusOK {
		t.Fatalf("login status %d: %v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login response missing token")
	}

	// Submit an intake form through the gateway; the backend must attribute
	// it to the token's subject, not to anything the client claims.
	status, created := doJSON(t, http.MethodPost, baseURL+"/v1/students/applications", map[string]any{
		"fullName": "E2E Student",
		"school":   "E2E University",
	}, token)
	if status != http.StatusCreated {
		t.Fatalf("submit status %d: %v", status, created)
	}
	if created["userId"] != body["userId"] {
		t.Errorf("application userId = %v, want the authenticated subject %v", created["userId"], body["userId"])
	}

	// A user token on an admin-only route is rejected at the edge.
	if status, _ := doJSON(t, http.MethodGet, baseURL+"/v1/export/students.csv", nil, token); status != http.StatusForbidden {
		t.Errorf("user on admin route status %d, want 403", status)
	}

	// A tampered token never reaches a backend.
	tampered := token[:len(token)-2] + "xx"
	if status, _ := doJSON(t, http.MethodGet, baseURL+"/v1/students/applications", nil, tampered); status != http.StatusUnauthorized {
		t.Errorf("tampered token status %d, want 401", status)
	}
}

func doJSON(t *testing.T, method, url string, payload any, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded
}

func setTestEnv() {
	_ = os.Setenv("JWT_SECRET", "e2e-test-secret")
	_ = os.Setenv("GATEWAY_PORT", fmt.Sprintf("%d", gatewayPort))
	_ = os.Setenv("IDENTITY_PORT", fmt.Sprintf("%d", identityPort))
	_ = os.Setenv("APPLICATIONS_PORT", fmt.Sprintf("%d", applicationsPort))
	_ = os.Setenv("IDENTITY_BASE_URL", fmt.Sprintf("http://localhost:%d", identityPort))
	_ = os.Setenv("APPLICATIONS_BASE_URL", fmt.Sprintf("http://localhost:%d", applicationsPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "fellowship")
	_ = os.Setenv("DB_PASSWORD", "password")
	_ = os.Setenv("DB_NAME", "fellowship_db")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("STORAGE_BACKEND", "")
	_ = os.Setenv("MQ_BACKEND", "")
}

func startServers(ctx context.Context) (*servers, error) {
	cfg := config.LoadConfig()
	srvs := &servers{}

	var err error
	srvs.identity, err = identity.New(ctx, cfg, logging.NewDefault("identity"))
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	srvs.applications, err = applications.New(ctx, cfg, logging.NewDefault("applications"))
	if err != nil {
		srvs.shutdown()
		return nil, fmt.Errorf("applications: %w", err)
	}
	srvs.gateway, err = gateway.New(cfg, logging.NewDefault("gateway"))
	if err != nil {
		srvs.shutdown()
		return nil, fmt.Errorf("gateway: %w", err)
	}

	go func() { _ = srvs.identity.Start() }()
	go func() { _ = srvs.applications.Start() }()
	go func() { _ = srvs.gateway.Start() }()

	return srvs, nil
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	conn, err := sql.Open("postgres", db.DSN(cfg))
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := conn.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, db.DSN(cfg))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
