package main

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/myrjola/liftplan/internal/e2etest"
	"github.com/myrjola/liftplan/internal/testhelpers"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "LIFTPLAN_SQLITE_URL":
		return ":memory:", true
	case "LIFTPLAN_ADDR":
		return "localhost:0", true
	case "LIFTPLAN_DEFAULT_PLAN":
		return "ppl6", true
	default:
		return "", false
	}
}

// startServer boots the application and returns a client that is registered and logged in.
func startServer(t *testing.T) (*e2etest.Server, *e2etest.Client) {
	t.Helper()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()
	if _, err = client.Register(t.Context(), "Lifter"); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	return server, client
}

func Test_application_auth(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	t.Run("Requires authentication", func(t *testing.T) {
		err = client.Do(ctx, http.MethodGet, "/api/preferences", nil, nil)
		if got := e2etest.StatusCode(err); got != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusUnauthorized, err)
		}
	})

	t.Run("Rejects empty display name", func(t *testing.T) {
		_, err = client.Register(ctx, "  ")
		if got := e2etest.StatusCode(err); got != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusUnprocessableEntity, err)
		}
	})

	t.Run("After registration", func(t *testing.T) {
		var userID int
		if userID, err = client.Register(ctx, "Lifter"); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		if userID == 0 {
			t.Errorf("user id = 0")
		}
		if err = client.Do(ctx, http.MethodGet, "/api/preferences", nil, nil); err != nil {
			t.Errorf("Failed to get preferences: %v", err)
		}
	})

	t.Run("After logout", func(t *testing.T) {
		if err = client.Logout(ctx); err != nil {
			t.Fatalf("Failed to logout: %v", err)
		}
		err = client.Do(ctx, http.MethodGet, "/api/preferences", nil, nil)
		if got := e2etest.StatusCode(err); got != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusUnauthorized, err)
		}
	})

	t.Run("After deleting the user", func(t *testing.T) {
		if _, err = client.Register(ctx, "Short-lived"); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		if err = client.Do(ctx, http.MethodDelete, "/api/users/me", nil, nil); err != nil {
			t.Fatalf("Failed to delete user: %v", err)
		}
		err = client.Do(ctx, http.MethodGet, "/api/preferences", nil, nil)
		if got := e2etest.StatusCode(err); got != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusUnauthorized, err)
		}
	})
}

func Test_application_notFound(t *testing.T) {
	_, client := startServer(t)

	err := client.Do(t.Context(), http.MethodGet, "/does-not-exist", nil, nil)
	if got := e2etest.StatusCode(err); got != http.StatusNotFound {
		t.Errorf("status = %d, want %d (err %v)", got, http.StatusNotFound, err)
	}
}

func Test_application_metrics(t *testing.T) {
	_, client := startServer(t)

	resp, err := client.Get(t.Context(), "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read metrics: %v", err)
	}
	for _, want := range []string{"go_goroutines", "liftplan_web_sessions_completed_total"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics do not contain %s", want)
		}
	}
}
