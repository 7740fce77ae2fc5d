package e2e_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexjbarnes/skport-sync/internal/config"
	"github.com/alexjbarnes/skport-sync/internal/scheduler"
	"github.com/alexjbarnes/skport-sync/internal/store"
	"github.com/alexjbarnes/skport-sync/skport"
)

const (
	testStoredToken = "stored-token-1"
	testSignSecret  = "session-sign-secret"
	testCred        = "session-cred"
	testUserID      = "user-1"
	testServerID    = "us"
)

// harness runs a fake SKPort backend plus a real store, client and
// scheduler wired together. The fake backend enforces the credential
// chain: grants are per stored token, exchange codes are single use, and
// signed endpoints verify the signature server side.
type harness struct {
	t   *testing.T
	srv *httptest.Server

	store     *store.Store
	client    *skport.Client
	scheduler *scheduler.Scheduler

	mu          sync.Mutex
	storedToken string
	nextCode    int
	codes       map[string]bool
	claims      map[string]int
	cardCalls   int
	rotations   int
}

// rewriteTransport sends every request to the test server regardless of
// the host the client dialed, so one mux serves all four API hosts.
type rewriteTransport struct {
	base *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.base.Scheme
	req.URL.Host = rt.base.Host

	return http.DefaultTransport.RoundTrip(req)
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		t:           t,
		storedToken: testStoredToken,
		codes:       make(map[string]bool),
		claims:      make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/oauth2/v2/grant", h.handleGrant)
	mux.HandleFunc("POST /web/v1/user/auth/generate_cred_by_code", h.handleGenerateCred)
	mux.HandleFunc("POST /web/v1/game/endfield/attendance", h.handleAttendance)
	mux.HandleFunc("POST /cookie_store/account_token", h.handleAccountToken)
	mux.HandleFunc("GET /api/v1/game/endfield/card/detail", h.handleCardDetail)

	h.srv = httptest.NewServer(mux)
	t.Cleanup(h.srv.Close)

	base, err := url.Parse(h.srv.URL)
	require.NoError(t, err)

	h.client = skport.NewClient(&http.Client{
		Transport: rewriteTransport{base: base},
		Timeout:   5 * time.Second,
	})

	st, err := store.Open(filepath.Join(t.TempDir(), "accounts.db"), "e2e-secret")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	h.store = st

	sched, err := scheduler.New(st, h.client, nil, config.Schedule{
		AttendanceAt:     "16:05",
		RefreshEvery:     12 * time.Hour,
		SweepConcurrency: 4,
		SweepJitterMax:   0,
	}, slog.Default())
	require.NoError(t, err)
	h.scheduler = sched

	return h
}

func (h *harness) linkAccount(n int) store.Account {
	h.t.Helper()

	account := store.Account{
		ID:           fmt.Sprintf("acc-%d", n),
		Nickname:     fmt.Sprintf("Doctor %d", n),
		UserID:       testUserID,
		ServerID:     testServerID,
		RoleID:       fmt.Sprintf("role-%d", n),
		Token:        testStoredToken,
		EnableSignin: true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(h.t, h.store.PutAccount(account))

	return account
}

func (h *harness) claimCount(roleID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.claims["3_"+roleID+"_"+testServerID]
}

func (h *harness) currentStoredToken() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.storedToken
}

func (h *harness) cardCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.cardCalls
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, map[string]any{"code": code, "message": msg})
}

func (h *harness) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AppCode string `json:"appCode"`
		Token   string `json:"token"`
		Type    int    `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, 1, "bad request")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if req.Token != h.storedToken {
		writeFailure(w, 10002, "token invalid or expired")
		return
	}

	// Steady-state clients only ever ask for code grants.
	if req.Type != 0 {
		writeFailure(w, 10004, "unsupported grant type")
		return
	}

	h.nextCode++
	code := fmt.Sprintf("code-%d", h.nextCode)
	h.codes[code] = false

	writeJSON(w, map[string]any{
		"status": 0,
		"data":   map[string]any{"code": code, "uid": testUserID},
	})
}

func (h *harness) handleGenerateCred(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind int    `json:"kind"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, 1, "bad request")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	used, known := h.codes[req.Code]
	if !known || used {
		writeFailure(w, 10003, "code invalid or already used")
		return
	}
	h.codes[req.Code] = true

	writeJSON(w, map[string]any{
		"code": 0,
		"data": map[string]any{
			"cred":   testCred,
			"userId": testUserID,
			"token":  testSignSecret,
		},
	})
}

// verifySigned recomputes the signature from the request headers and
// rejects mismatches the way the real backend does.
func (h *harness) verifySigned(w http.ResponseWriter, r *http.Request, signBody string) bool {
	if r.Header.Get("cred") != testCred {
		writeFailure(w, 10000, "missing or wrong cred")
		return false
	}

	ts, err := strconv.ParseInt(r.Header.Get("timestamp"), 10, 64)
	if err != nil {
		writeFailure(w, 10000, "bad timestamp")
		return false
	}

	expected, err := skport.ComputeSign(testSignSecret, r.URL.Path, signBody, ts)
	if err != nil || r.Header.Get("sign") != expected {
		writeFailure(w, 10000, "signature mismatch")
		return false
	}

	return true
}

func (h *harness) handleAttendance(w http.ResponseWriter, r *http.Request) {
	if !h.verifySigned(w, r, "") {
		return
	}

	role := r.Header.Get("sk-game-role")
	if role == "" {
		writeFailure(w, 10000, "missing sk-game-role")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.claims[role] > 0 {
		h.claims[role]++
		writeFailure(w, 10001, "already attended today")
		return
	}
	h.claims[role] = 1

	writeJSON(w, map[string]any{
		"code": 0,
		"data": map[string]any{
			"awardIds": []map[string]string{{"id": "item-gold"}, {"id": "item-orundum"}},
			"resourceInfoMap": map[string]any{
				"item-gold":    map[string]any{"name": "Gold", "count": 2000},
				"item-orundum": map[string]any{"name": "Orundum", "count": 100},
			},
		},
	})
}

func (h *harness) handleAccountToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, 1, "bad request")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if req.Content != h.storedToken {
		writeFailure(w, 10002, "token invalid or expired")
		return
	}

	h.rotations++
	h.storedToken = fmt.Sprintf("stored-token-rotated-%d", h.rotations)

	http.SetCookie(w, &http.Cookie{Name: "ACCOUNT_TOKEN", Value: url.QueryEscape(h.storedToken)})
	writeJSON(w, map[string]any{"code": 0, "data": map[string]any{}})
}

func (h *harness) handleCardDetail(w http.ResponseWriter, r *http.Request) {
	if !h.verifySigned(w, r, "{}") {
		return
	}

	h.mu.Lock()
	h.cardCalls++
	h.mu.Unlock()

	writeJSON(w, map[string]any{
		"code": 0,
		"data": map[string]any{
			"base": map[string]any{
				"serverName": "Americas",
				"roleId":     r.URL.Query().Get("roleId"),
				"name":       "Endministrator",
				"level":      42,
			},
			"chars":   []any{},
			"dungeon": map[string]any{"curStamina": "120", "maxStamina": "240"},
		},
	})
}
