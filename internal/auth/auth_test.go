package auth_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/liftplan/internal/auth"
	"github.com/myrjola/liftplan/internal/contexthelpers"
	"github.com/myrjola/liftplan/internal/sqlite"
	"github.com/myrjola/liftplan/internal/testhelpers"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sessionManager := scs.New()
	a := auth.New(logger, sessionManager, db)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		userID, registerErr := a.Register(r.Context(), r.URL.Query().Get("name"))
		if errors.Is(registerErr, auth.ErrInvalidDisplayName) {
			http.Error(w, registerErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		if registerErr != nil {
			http.Error(w, registerErr.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = fmt.Fprint(w, userID)
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		if logoutErr := a.Logout(r.Context()); logoutErr != nil {
			http.Error(w, logoutErr.Error(), http.StatusInternalServerError)
		}
	})
	mux.Handle("POST /delete", a.AuthenticateMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if deleteErr := a.DeleteUser(r.Context(), contexthelpers.AuthenticatedUserID(r.Context())); deleteErr != nil {
			http.Error(w, deleteErr.Error(), http.StatusInternalServerError)
		}
	})))
	mux.Handle("GET /me", a.AuthenticateMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, contexthelpers.AuthenticatedUserID(r.Context()))
	})))

	srv := httptest.NewServer(sessionManager.LoadAndSave(mux))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	return &http.Client{Jar: jar}
}

func call(t *testing.T, client *http.Client, method, url string) (int, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, url, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return resp.StatusCode, strings.TrimSpace(string(body))
}

func TestAuthenticator(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	if _, body := call(t, client, http.MethodGet, srv.URL+"/me"); body != "0" {
		t.Fatalf("anonymous user id = %s, want 0", body)
	}

	status, body := call(t, client, http.MethodPost, srv.URL+"/register?name=Alice")
	if status != http.StatusOK {
		t.Fatalf("register status = %d, body %s", status, body)
	}
	userID, err := strconv.Atoi(body)
	if err != nil || userID == 0 {
		t.Fatalf("register returned %q", body)
	}

	if _, body = call(t, client, http.MethodGet, srv.URL+"/me"); body != strconv.Itoa(userID) {
		t.Errorf("user id after register = %s, want %d", body, userID)
	}

	other := newClient(t)
	if _, body = call(t, other, http.MethodPost, srv.URL+"/register?name=Bob"); body == strconv.Itoa(userID) {
		t.Errorf("second user got the same id %s", body)
	}

	call(t, client, http.MethodPost, srv.URL+"/logout")
	if _, body = call(t, client, http.MethodGet, srv.URL+"/me"); body != "0" {
		t.Errorf("user id after logout = %s, want 0", body)
	}
}

func TestAuthenticator_invalidDisplayName(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	for _, name := range []string{"", "%20%20", strings.Repeat("a", 65)} {
		if status, _ := call(t, client, http.MethodPost, srv.URL+"/register?name="+name); status !=
			http.StatusUnprocessableEntity {
			t.Errorf("register %q status = %d, want %d", name, status, http.StatusUnprocessableEntity)
		}
	}
}

func TestAuthenticator_deletedUser(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	if status, body := call(t, client, http.MethodPost, srv.URL+"/register?name=Alice"); status != http.StatusOK {
		t.Fatalf("register status = %d, body %s", status, body)
	}
	if status, body := call(t, client, http.MethodPost, srv.URL+"/delete"); status != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", status, body)
	}
	if _, body := call(t, client, http.MethodGet, srv.URL+"/me"); body != "0" {
		t.Errorf("user id after delete = %s, want 0", body)
	}
}
