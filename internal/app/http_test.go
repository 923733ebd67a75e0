package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"migrator/bot/internal/request"
	"migrator/bot/internal/roster"
)

type fakeRoster struct {
	upsertPlayerFn    func(context.Context, roster.Player) error
	getPlayerFn       func(context.Context, string) (roster.Player, error)
	listPlayersFn     func(context.Context) ([]roster.Player, error)
	deletePlayerFn    func(context.Context, string) (bool, error)
	setMigrationFn    func(context.Context, string, string) error
	listScreenshotsFn func(context.Context, string) ([]roster.Screenshot, error)
	statsFn           func(context.Context) (roster.Stats, error)
	pingFn            func(context.Context) error
}

func (f *fakeRoster) UpsertPlayer(ctx context.Context, p roster.Player) error {
	if f.upsertPlayerFn != nil {
		return f.upsertPlayerFn(ctx, p)
	}
	return nil
}
func (f *fakeRoster) GetPlayer(ctx context.Context, id string) (roster.Player, error) {
	if f.getPlayerFn != nil {
		return f.getPlayerFn(ctx, id)
	}
	return roster.Player{}, roster.ErrNotFound
}
func (f *fakeRoster) ListPlayers(ctx context.Context) ([]roster.Player, error) {
	if f.listPlayersFn != nil {
		return f.listPlayersFn(ctx)
	}
	return nil, nil
}
func (f *fakeRoster) DeletePlayer(ctx context.Context, id string) (bool, error) {
	if f.deletePlayerFn != nil {
		return f.deletePlayerFn(ctx, id)
	}
	return false, nil
}
func (f *fakeRoster) SetMigration(ctx context.Context, playerID, status string) error {
	if f.setMigrationFn != nil {
		return f.setMigrationFn(ctx, playerID, status)
	}
	return nil
}
func (f *fakeRoster) ListScreenshots(ctx context.Context, playerID string) ([]roster.Screenshot, error) {
	if f.listScreenshotsFn != nil {
		return f.listScreenshotsFn(ctx, playerID)
	}
	return nil, nil
}
func (f *fakeRoster) Stats(ctx context.Context) (roster.Stats, error) {
	if f.statsFn != nil {
		return f.statsFn(ctx)
	}
	return roster.Stats{}, nil
}
func (f *fakeRoster) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn(ctx)
	}
	return nil
}

type fakeRequests struct {
	allFn func(context.Context) []request.Pending
}

func (f *fakeRequests) All(ctx context.Context) []request.Pending {
	if f.allFn != nil {
		return f.allFn(ctx)
	}
	return nil
}

const adminToken = "test-admin-token"

func testAdminHash(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func newTestServer(t *testing.T, players RosterStore) *HTTPServer {
	t.Helper()
	service := NewService(players, &fakeRequests{}, nil, nil, nil, testAdminHash(t))
	return NewHTTPServer(service, "*", "")
}

func doRequest(t *testing.T, srv *HTTPServer, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{})
	rec := doRequest(t, srv, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
}

func TestReady(t *testing.T) {
	t.Run("database ok", func(t *testing.T) {
		srv := newTestServer(t, &fakeRoster{})
		rec := doRequest(t, srv, http.MethodGet, "/api/ready", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("database down", func(t *testing.T) {
		srv := newTestServer(t, &fakeRoster{
			pingFn: func(context.Context) error { return errors.New("connection refused") },
		})
		rec := doRequest(t, srv, http.MethodGet, "/api/ready", "", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("database disabled", func(t *testing.T) {
		srv := newTestServer(t, nil)
		rec := doRequest(t, srv, http.MethodGet, "/api/ready", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "disabled") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestListPlayers(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{
		listPlayersFn: func(context.Context) ([]roster.Player, error) {
			return []roster.Player{{ID: "100", Nickname: "Ana", TotalPoints: 158_120}}, nil
		},
	})
	rec := doRequest(t, srv, http.MethodGet, "/api/players", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Players []roster.Player `json:"players"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Players) != 1 || body.Players[0].Nickname != "Ana" {
		t.Errorf("players = %+v", body.Players)
	}
}

func TestListPlayersWithoutDatabase(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/players", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpsertPlayerRequiresAdmin(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{})

	rec := doRequest(t, srv, http.MethodPost, "/api/players", "", UpsertPlayerInput{ID: "100", Nickname: "Ana"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/players", "wrong-token", UpsertPlayerInput{ID: "100", Nickname: "Ana"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token = %d", rec.Code)
	}
}

func TestUpsertPlayerRecomputesPoints(t *testing.T) {
	var stored roster.Player
	srv := newTestServer(t, &fakeRoster{
		upsertPlayerFn: func(_ context.Context, p roster.Player) error {
			stored = p
			return nil
		},
		getPlayerFn: func(context.Context, string) (roster.Player, error) {
			return stored, nil
		},
	})

	in := UpsertPlayerInput{
		ID:       "100",
		Nickname: "Ana",
		Power:    1_500_000_000,
		KP:       800_000_000,
		Deaths:   120_000,
	}
	rec := doRequest(t, srv, http.MethodPost, "/api/players", adminToken, in)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if stored.TotalPoints != 158_120 {
		t.Errorf("total points = %d, want 158120", stored.TotalPoints)
	}
	if stored.CanMigrate != "pending" {
		t.Errorf("can migrate = %q, want pending default", stored.CanMigrate)
	}
}

func TestUpsertPlayerValidation(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{})

	cases := []struct {
		name string
		in   UpsertPlayerInput
	}{
		{"missing id", UpsertPlayerInput{Nickname: "Ana"}},
		{"missing nickname", UpsertPlayerInput{ID: "100"}},
		{"bad status", UpsertPlayerInput{ID: "100", Nickname: "Ana", CanMigrate: "maybe"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/players", adminToken, tc.in)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d", rec.Code)
			}
		})
	}
}

func TestGetPlayerNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{})
	rec := doRequest(t, srv, http.MethodGet, "/api/players/100", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeletePlayer(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{
		deletePlayerFn: func(_ context.Context, id string) (bool, error) { return id == "100", nil },
	})

	rec := doRequest(t, srv, http.MethodDelete, "/api/players/100", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodDelete, "/api/players/999", adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for unknown id = %d", rec.Code)
	}
}

func TestSetMigrationStatus(t *testing.T) {
	var gotID, gotStatus string
	srv := newTestServer(t, &fakeRoster{
		setMigrationFn: func(_ context.Context, id, status string) error {
			gotID, gotStatus = id, status
			return nil
		},
	})

	rec := doRequest(t, srv, http.MethodPut, "/api/players/100/migration", adminToken, map[string]string{"status": "migrate"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotID != "100" || gotStatus != "migrate" {
		t.Errorf("SetMigration(%q, %q)", gotID, gotStatus)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/players/100/migration", adminToken, map[string]string{"status": "maybe"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status for invalid value = %d", rec.Code)
	}
}

func TestSearchUnavailableWithoutBackend(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{})
	rec := doRequest(t, srv, http.MethodGet, "/api/players/search?q=ana", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPendingRequestsRequiresAdmin(t *testing.T) {
	requests := &fakeRequests{
		allFn: func(context.Context) []request.Pending {
			return []request.Pending{{UserID: "100", Status: request.StatusPending, SubmittedAt: time.Now()}}
		},
	}
	service := NewService(&fakeRoster{}, requests, nil, nil, nil, testAdminHash(t))
	srv := NewHTTPServer(service, "*", "")

	rec := doRequest(t, srv, http.MethodGet, "/api/requests", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/requests", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"100"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAdminDisabledWithoutHash(t *testing.T) {
	service := NewService(&fakeRoster{}, &fakeRequests{}, nil, nil, nil, "")
	srv := NewHTTPServer(service, "*", "")

	rec := doRequest(t, srv, http.MethodGet, "/api/requests", adminToken, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDashboardRenders(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{
		listPlayersFn: func(context.Context) ([]roster.Player, error) {
			return []roster.Player{{ID: "100", Nickname: "Ana", CanMigrate: "migrate"}}, nil
		},
	})
	rec := doRequest(t, srv, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Ana") {
		t.Error("dashboard missing player row")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &fakeRoster{})
	rec := doRequest(t, srv, http.MethodGet, "/api/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
