package controllers_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"talenttrack-backend/controllers"
	"talenttrack-backend/models/contracts"
	"talenttrack-backend/models/jobs"
	"talenttrack-backend/models/messages"
	"talenttrack-backend/models/users"
	"talenttrack-backend/services"
)

func newServer(t *testing.T, strict bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newHandler(t, strict))
	t.Cleanup(srv.Close)
	return srv
}

func newHandler(t *testing.T, strict bool) http.Handler {
	t.Helper()
	userRepo := users.NewMemoryRepository()
	jobRepo := jobs.NewMemoryRepository()
	contractRepo := contracts.NewMemoryRepository()
	policy := services.Policy{Strict: strict}
	events := services.NopPublisher{}

	h := controllers.NewRouter(controllers.Deps{
		Auth:        services.NewAuthService(userRepo, services.AuthOptions{Secret: []byte("router-test"), BcryptCost: bcrypt.MinCost}),
		Users:       services.NewUserService(userRepo),
		Jobs:        services.NewJobService(jobRepo, contractRepo, events, policy),
		Contracts:   services.NewContractService(contractRepo, jobRepo, events, policy),
		Messages:    services.NewMessageService(messages.NewMemoryRepository(), events, policy),
		BodyLimit:   1 << 10,
		CORSOrigins: []string{"*"},
	})
	return h
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	raw := new(bytes.Buffer)
	raw.ReadFrom(resp.Body)
	if strings.HasPrefix(strings.TrimSpace(raw.String()), "{") {
		json.Unmarshal(raw.Bytes(), &out)
	}
	return resp, out
}

func register(t *testing.T, srv *httptest.Server, email string) (token, id string) {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": "pw", "safeCode": "code", "firstName": "Test",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d %v", email, resp.StatusCode, body)
	}
	user, _ := body["user"].(map[string]any)
	id, _ = user["id"].(string)
	token, _ = body["token"].(string)
	if token == "" || id == "" {
		t.Fatalf("register %s: missing token or id in %v", email, body)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("register response leaked password")
	}
	return token, id
}

func createJob(t *testing.T, srv *httptest.Server, token string) string {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/api/jobs", token, map[string]any{
		"title": "Go developer", "contactEmail": "hr@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create job: status %d %v", resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	return id
}

func TestJobOwnershipOverHTTP(t *testing.T) {
	for _, tc := range []struct {
		name        string
		strict      bool
		foreignWant int
	}{
		{"permissive", false, http.StatusOK},
		{"strict", true, http.StatusForbidden},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.strict)
			ownerToken, _ := register(t, srv, "owner@example.com")
			otherToken, _ := register(t, srv, "other@example.com")
			jobID := createJob(t, srv, ownerToken)

			resp, body := do(t, srv, http.MethodGet, "/api/jobs/"+jobID, "", nil)
			if resp.StatusCode != http.StatusOK || body["title"] != "Go developer" {
				t.Fatalf("public get: status %d %v", resp.StatusCode, body)
			}

			patch := map[string]any{"title": "Renamed"}
			resp, body = do(t, srv, http.MethodPut, "/api/jobs/"+jobID, "", patch)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("unauthenticated put: status %d, want 401", resp.StatusCode)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("error body missing: %v", body)
			}

			resp, _ = do(t, srv, http.MethodPut, "/api/jobs/"+jobID, otherToken, patch)
			if resp.StatusCode != tc.foreignWant {
				t.Errorf("foreign put: status %d, want %d", resp.StatusCode, tc.foreignWant)
			}
		})
	}
}

func TestApplyAndHideOverHTTP(t *testing.T) {
	srv := newServer(t, false)
	ownerToken, _ := register(t, srv, "owner@example.com")
	seekerToken, seekerID := register(t, srv, "seeker@example.com")
	jobID := createJob(t, srv, ownerToken)

	resp, contract := do(t, srv, http.MethodPost, "/api/jobs/"+jobID+"/apply", seekerToken, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("apply: status %d %v", resp.StatusCode, contract)
	}
	if contract["status"] != "Applied" || contract["userId"] != seekerID {
		t.Errorf("contract = %v", contract)
	}
	contractID, _ := contract["id"].(string)

	resp, _ = do(t, srv, http.MethodPost, "/api/jobs/"+jobID+"/apply", seekerToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate apply: status %d, want 400", resp.StatusCode)
	}

	resp, _ = do(t, srv, http.MethodPost, "/api/contracts/"+contractID+"/hide", seekerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hide: status %d", resp.StatusCode)
	}

	visible := listLen(t, srv, "/api/contracts/visible", seekerToken)
	if visible != 0 {
		t.Errorf("seeker sees %d contracts after hiding, want 0", visible)
	}
	if n := listLen(t, srv, "/api/contracts/visible", ownerToken); n != 1 {
		t.Errorf("owner sees %d contracts, want 1", n)
	}

	resp, body := do(t, srv, http.MethodPost, "/api/contracts/"+contractID+"/approve", ownerToken, nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "Approved" {
		t.Errorf("approve: status %d %v", resp.StatusCode, body)
	}
	resp, _ = do(t, srv, http.MethodPost, "/api/contracts/"+contractID+"/reject", ownerToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("reject after approve: status %d, want 400", resp.StatusCode)
	}
}

func listLen(t *testing.T, srv *httptest.Server, path, token string) int {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	var list []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return len(list)
}

func TestAuthErrorsOverHTTP(t *testing.T) {
	srv := newServer(t, false)
	register(t, srv, "user@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"duplicate register", http.MethodPost, "/api/auth/register", "", map[string]any{"email": "user@example.com", "password": "x", "safeCode": "y"}, http.StatusBadRequest},
		{"bad password", http.MethodPost, "/api/auth/login", "", map[string]any{"email": "user@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"good login", http.MethodPost, "/api/auth/login", "", map[string]any{"email": "user@example.com", "password": "pw"}, http.StatusOK},
		{"bad safe code", http.MethodPost, "/api/auth/reset-password", "", map[string]any{"email": "user@example.com", "safeCode": "wrong", "newPassword": "n"}, http.StatusUnauthorized},
		{"unknown reset", http.MethodPost, "/api/auth/reset-password", "", map[string]any{"email": "ghost@example.com", "safeCode": "x", "newPassword": "n"}, http.StatusNotFound},
		{"garbage token", http.MethodGet, "/api/users", "garbage", nil, http.StatusUnauthorized},
		{"no token", http.MethodGet, "/api/users/profile", "", nil, http.StatusUnauthorized},
		{"missing job", http.MethodGet, "/api/jobs/missing", "", nil, http.StatusNotFound},
		{"health", http.MethodGet, "/health", "", nil, http.StatusOK},
	}
	for _, tt := range tests {
		resp, body := do(t, srv, tt.method, tt.path, tt.token, tt.body)
		if resp.StatusCode != tt.want {
			t.Errorf("%s: status %d, want %d (%v)", tt.name, resp.StatusCode, tt.want, body)
		}
	}
}

func TestBodyLimit(t *testing.T) {
	srv := newServer(t, false)
	big := map[string]any{"email": "big@example.com", "password": "pw", "safeCode": "c", "avatar": strings.Repeat("A", 4<<10)}
	resp, _ := do(t, srv, http.MethodPost, "/api/auth/register", "", big)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status %d, want 413", resp.StatusCode)
	}
}

func TestProfileAndRatingOverHTTP(t *testing.T) {
	srv := newServer(t, false)
	token, _ := register(t, srv, "me@example.com")
	raterToken, _ := register(t, srv, "rater@example.com")
	_, targetID := register(t, srv, "target@example.com")

	resp, body := do(t, srv, http.MethodPut, "/api/users/profile", token, map[string]any{"lastName": "Doe", "password": "hijack"})
	if resp.StatusCode != http.StatusOK || body["lastName"] != "Doe" {
		t.Fatalf("update profile: status %d %v", resp.StatusCode, body)
	}
	resp, _ = do(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "me@example.com", "password": "pw"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("password changed through profile update")
	}

	resp, body = do(t, srv, http.MethodPost, "/api/users/"+targetID+"/rate", raterToken, map[string]any{"grade": 4})
	if resp.StatusCode != http.StatusOK || body["rating"] != 4.0 {
		t.Errorf("rate: status %d %v", resp.StatusCode, body)
	}
	resp, _ = do(t, srv, http.MethodPost, "/api/users/"+targetID+"/rate", raterToken, map[string]any{"grade": 9})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("rate out of range: status %d, want 400", resp.StatusCode)
	}

	if n := listLen(t, srv, "/api/users", token); n != 3 {
		t.Errorf("users listed = %d, want 3", n)
	}
}

func TestUnmatchedRoutesAreLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := newHandler(t, false)
	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/nope", http.StatusNotFound},
		{http.MethodPatch, "/api/jobs", http.StatusMethodNotAllowed},
	} {
		logs.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Errorf("%s %s: status %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
		line := logs.String()
		if !strings.Contains(line, "path="+tc.path) || !strings.Contains(line, "status="+strconv.Itoa(tc.want)) {
			t.Errorf("%s %s: request not logged, got %q", tc.method, tc.path, line)
		}
	}
}

func TestMalformedIDOverHTTP(t *testing.T) {
	srv := newServer(t, false)
	token, _ := register(t, srv, "user@example.com")
	for _, path := range []string{"/api/jobs/abc", "/api/contracts/abc", "/api/messages/abc"} {
		resp, body := do(t, srv, http.MethodGet, path, token, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s: status %d, want 404 (%v)", path, resp.StatusCode, body)
		}
	}
}
