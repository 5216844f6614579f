package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/recap-crew/recap/internal/domain"
	"github.com/recap-crew/recap/internal/infra/sqlite"
)

const (
	testTrackerPIN = "1234"
	testAdminPIN   = "9999"
)

// testNow pins the clock to a Wednesday mid-season.
var testNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.SeedDefaults(2025, testTrackerPIN, testAdminPIN); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	return NewServer(db, func() time.Time { return testNow }), db
}

// login authenticates with a PIN and returns the session cookie.
func login(t *testing.T, h http.Handler, pin string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"pin":"`+pin+`"}`))
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("login set no session cookie")
	return nil
}

// do sends a request with an optional session cookie and JSON body.
func do(t *testing.T, h http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

// firstIDs returns the seeded season's first person and the Sporting
// metric, the pair most tests log entries against.
func firstIDs(t *testing.T, db *sqlite.DB) (personID, metricID int64) {
	t.Helper()
	people, err := db.ActivePeople()
	if err != nil || len(people) == 0 {
		t.Fatalf("ActivePeople: %v", err)
	}
	metricList, err := db.ActiveMetrics()
	if err != nil || len(metricList) == 0 {
		t.Fatalf("ActiveMetrics: %v", err)
	}
	for _, m := range metricList {
		if m.Name == "Sporting" {
			return people[0].ID, m.ID
		}
	}
	return people[0].ID, metricList[0].ID
}

// ─── Health & Auth ──────────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := decode(t, w); body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestAPI_Login(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, "POST", "/api/auth/login", `{"pin":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad pin status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	cookie := login(t, h, testTrackerPIN)

	w = do(t, h, "GET", "/api/auth/session", "", cookie)
	body := decode(t, w)
	if body["authenticated"] != true {
		t.Error("session should be authenticated after login")
	}
	if body["role"] != string(domain.RoleTracker) {
		t.Errorf("role = %v, want tracker", body["role"])
	}

	w = do(t, h, "POST", "/api/auth/logout", "", cookie)
	if w.Code != http.StatusOK {
		t.Errorf("logout status = %d", w.Code)
	}
	w = do(t, h, "GET", "/api/people", "", cookie)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status after logout = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAPI_RoleGating(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// No session at all.
	w := do(t, h, "GET", "/api/people", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	tracker := login(t, h, testTrackerPIN)
	admin := login(t, h, testAdminPIN)

	// Trackers read, admins write the roster.
	if w := do(t, h, "GET", "/api/people", "", tracker); w.Code != http.StatusOK {
		t.Errorf("tracker list people = %d, want %d", w.Code, http.StatusOK)
	}
	if w := do(t, h, "POST", "/api/people", `{"name":"Noor"}`, tracker); w.Code != http.StatusForbidden {
		t.Errorf("tracker create person = %d, want %d", w.Code, http.StatusForbidden)
	}
	if w := do(t, h, "POST", "/api/people", `{"name":"Noor"}`, admin); w.Code != http.StatusCreated {
		t.Errorf("admin create person = %d, want %d", w.Code, http.StatusCreated)
	}
	// Admin sessions pass tracker routes too.
	if w := do(t, h, "GET", "/api/people", "", admin); w.Code != http.StatusOK {
		t.Errorf("admin list people = %d, want %d", w.Code, http.StatusOK)
	}
}

// ─── Entries ────────────────────────────────────────────────────────────────

func TestAPI_CreateEntry(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	cookie := login(t, h, testTrackerPIN)
	personID, metricID := firstIDs(t, db)

	payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"2025-03-10"}`, personID, metricID)
	w := do(t, h, "POST", "/api/entries", payload, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	body := decode(t, w)
	unlocked, ok := body["new_achievements"].([]any)
	if !ok || len(unlocked) == 0 {
		t.Fatal("first entry should unlock at least one achievement")
	}
	first := unlocked[0].(map[string]any)
	if first["key"] != "first_entry" {
		t.Errorf("first unlock = %v, want first_entry", first["key"])
	}
}

func TestAPI_DuplicateEntry(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	cookie := login(t, h, testTrackerPIN)
	personID, metricID := firstIDs(t, db)

	payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"2025-03-10"}`, personID, metricID)
	if w := do(t, h, "POST", "/api/entries", payload, cookie); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}

	w := do(t, h, "POST", "/api/entries", payload, cookie)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want %d", w.Code, http.StatusConflict)
	}
	if body := decode(t, w); body["duplicate"] == nil {
		t.Error("conflict response should carry the existing entry")
	}

	forced := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"2025-03-10","force":true}`, personID, metricID)
	if w := do(t, h, "POST", "/api/entries", forced, cookie); w.Code != http.StatusCreated {
		t.Errorf("forced create = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestAPI_DeleteEntryIsAdminOnly(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	tracker := login(t, h, testTrackerPIN)
	admin := login(t, h, testAdminPIN)
	personID, metricID := firstIDs(t, db)

	payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"2025-03-10"}`, personID, metricID)
	w := do(t, h, "POST", "/api/entries", payload, tracker)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	entry := decode(t, w)["entry"].(map[string]any)
	id := int64(entry["id"].(float64))

	if w := do(t, h, "DELETE", fmt.Sprintf("/api/entries/%d", id), "", tracker); w.Code != http.StatusForbidden {
		t.Errorf("tracker delete = %d, want %d", w.Code, http.StatusForbidden)
	}
	if w := do(t, h, "DELETE", fmt.Sprintf("/api/entries/%d", id), "", admin); w.Code != http.StatusOK {
		t.Errorf("admin delete = %d, want %d", w.Code, http.StatusOK)
	}

	// The audit trail saw both operations.
	w = do(t, h, "GET", fmt.Sprintf("/api/entries/%d/audit", id), "", admin)
	audit := decode(t, w)["audit"].([]any)
	if len(audit) != 2 {
		t.Errorf("audit rows = %d, want 2", len(audit))
	}
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestAPI_Leaderboard(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	cookie := login(t, h, testTrackerPIN)

	people, _ := db.ActivePeople()
	_, metricID := firstIDs(t, db)

	// people[0] logs twice, people[1] once.
	for _, e := range []struct {
		person int
		date   string
	}{
		{0, "2025-03-03"}, {0, "2025-03-04"}, {1, "2025-03-03"},
	} {
		payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"%s"}`, people[e.person].ID, metricID, e.date)
		if w := do(t, h, "POST", "/api/entries", payload, cookie); w.Code != http.StatusCreated {
			t.Fatalf("create = %d", w.Code)
		}
	}

	w := do(t, h, "GET", "/api/stats/leaderboard", "", cookie)
	rows := decode(t, w)["leaderboard"].([]any)
	if len(rows) != len(people) {
		t.Fatalf("leaderboard rows = %d, want %d", len(rows), len(people))
	}
	top := rows[0].(map[string]any)
	if top["person_name"] != people[0].Name {
		t.Errorf("leader = %v, want %s", top["person_name"], people[0].Name)
	}
	if top["rank"].(float64) != 1 || top["rank_display"] != "🥇" {
		t.Errorf("top rank = %v/%v, want 1/🥇", top["rank"], top["rank_display"])
	}
	// Four zero-entry people tie for third.
	third := rows[2].(map[string]any)
	last := rows[len(rows)-1].(map[string]any)
	if third["rank"].(float64) != 3 || last["rank"].(float64) != 3 {
		t.Errorf("tied ranks = %v and %v, want 3", third["rank"], last["rank"])
	}
}

func TestAPI_StatsPeriods(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	cookie := login(t, h, testTrackerPIN)
	personID, metricID := firstIDs(t, db)

	// One entry this week (Mon 2025-03-10), one in an earlier week.
	for _, date := range []string{"2025-03-10", "2025-02-03"} {
		payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"%s"}`, personID, metricID, date)
		if w := do(t, h, "POST", "/api/entries", payload, cookie); w.Code != http.StatusCreated {
			t.Fatalf("create = %d", w.Code)
		}
	}

	sum := func(period string) int {
		w := do(t, h, "GET", "/api/stats?period="+period, "", cookie)
		if w.Code != http.StatusOK {
			t.Fatalf("stats %s = %d", period, w.Code)
		}
		total := 0
		for _, row := range decode(t, w)["stats"].([]any) {
			total += int(row.(map[string]any)["count"].(float64))
		}
		return total
	}

	if got := sum("week"); got != 1 {
		t.Errorf("week total = %d, want 1", got)
	}
	if got := sum("all"); got != 2 {
		t.Errorf("all total = %d, want 2", got)
	}
}

func TestAPI_NoActiveSeason(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.SetSetting("tracker_pin", testTrackerPIN); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}

	srv := NewServer(db, func() time.Time { return testNow })
	h := srv.Handler()
	cookie := login(t, h, testTrackerPIN)

	w := do(t, h, "GET", "/api/stats", "", cookie)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

// ─── Person Detail ──────────────────────────────────────────────────────────

func TestAPI_PersonDetail(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	cookie := login(t, h, testTrackerPIN)
	personID, metricID := firstIDs(t, db)

	for _, date := range []string{"2025-03-10", "2025-03-11"} {
		payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"%s"}`, personID, metricID, date)
		if w := do(t, h, "POST", "/api/entries", payload, cookie); w.Code != http.StatusCreated {
			t.Fatalf("create = %d", w.Code)
		}
	}

	w := do(t, h, "GET", fmt.Sprintf("/api/person/%d", personID), "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)

	if body["entries_logged"].(float64) != 2 {
		t.Errorf("entries_logged = %v, want 2", body["entries_logged"])
	}
	if len(body["achievements"].([]any)) == 0 {
		t.Error("person detail should include unlocked achievements")
	}
	catalog := body["catalog"].([]any)
	if len(catalog) != len(domain.Achievements()) {
		t.Errorf("catalog size = %d, want %d", len(catalog), len(domain.Achievements()))
	}
	ps := body["player_stats"].(map[string]any)
	xp := ps["xp"].(map[string]any)
	if xp["total"].(float64) <= 0 {
		t.Error("player should have positive XP after two entries")
	}
	calendar := body["calendar"].(map[string]any)
	if calendar["2025-03-10"].(float64) != 1 {
		t.Errorf("calendar[2025-03-10] = %v, want 1", calendar["2025-03-10"])
	}

	w = do(t, h, "GET", "/api/person/9999", "", cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing person status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── Recap & Teasers ────────────────────────────────────────────────────────

func TestAPI_Recap(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	cookie := login(t, h, testTrackerPIN)
	personID, metricID := firstIDs(t, db)

	for _, date := range []string{"2025-03-03", "2025-03-04", "2025-03-05"} {
		payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"%s"}`, personID, metricID, date)
		if w := do(t, h, "POST", "/api/entries", payload, cookie); w.Code != http.StatusCreated {
			t.Fatalf("create = %d", w.Code)
		}
	}

	w := do(t, h, "GET", "/api/recap", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if _, ok := body["awards"].([]any); !ok {
		t.Error("recap should include awards")
	}
	if _, ok := body["trivia"].([]any); !ok {
		t.Error("recap should include trivia")
	}
}

func TestAPI_Teasers(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	cookie := login(t, h, testTrackerPIN)
	personID, metricID := firstIDs(t, db)

	payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"2025-03-12"}`, personID, metricID)
	if w := do(t, h, "POST", "/api/entries", payload, cookie); w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}

	w := do(t, h, "GET", "/api/teasers", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	summary := body["summary"].(map[string]any)
	if summary["total_entries"].(float64) != 1 {
		t.Errorf("total_entries = %v, want 1", summary["total_entries"])
	}
	if summary["today_entries"].(float64) != 1 {
		t.Errorf("today_entries = %v, want 1", summary["today_entries"])
	}
}

// ─── Admin Surface ──────────────────────────────────────────────────────────

func TestAPI_ExportImport(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()
	tracker := login(t, h, testTrackerPIN)
	admin := login(t, h, testAdminPIN)
	personID, metricID := firstIDs(t, db)

	payload := fmt.Sprintf(`{"person_id":%d,"metric_id":%d,"entry_date":"2025-03-10"}`, personID, metricID)
	if w := do(t, h, "POST", "/api/entries", payload, tracker); w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}

	w := do(t, h, "GET", "/api/admin/export", "", admin)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	exported := w.Body.String()
	if strings.Contains(exported, testAdminPIN) || strings.Contains(exported, testTrackerPIN) {
		t.Fatal("export must never contain PIN values")
	}

	w = do(t, h, "POST", "/api/admin/import", `{"mode":"replace","data":`+exported+`}`, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d, body %s", w.Code, w.Body.String())
	}
	summary := decode(t, w)["summary"].(map[string]any)
	imported := summary["imported"].(map[string]any)
	if imported["entries"].(float64) != 1 {
		t.Errorf("imported entries = %v, want 1", imported["entries"])
	}

	w = do(t, h, "POST", "/api/admin/import", `{"mode":"sideways","data":`+exported+`}`, admin)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad mode = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAPI_ChangePINs(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	admin := login(t, h, testAdminPIN)

	if w := do(t, h, "PUT", "/api/admin/pins", `{"tracker_pin":"12"}`, admin); w.Code != http.StatusBadRequest {
		t.Errorf("short pin = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w := do(t, h, "PUT", "/api/admin/pins", `{"tracker_pin":"`+testAdminPIN+`"}`, admin); w.Code != http.StatusBadRequest {
		t.Errorf("conflicting pin = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w := do(t, h, "PUT", "/api/admin/pins", `{"tracker_pin":"5678"}`, admin); w.Code != http.StatusOK {
		t.Errorf("change pin = %d, want %d", w.Code, http.StatusOK)
	}

	// Old tracker PIN no longer works, new one does.
	w := do(t, h, "POST", "/api/auth/login", `{"pin":"`+testTrackerPIN+`"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("old pin login = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	login(t, h, "5678")
}

func TestAPI_Debug(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	admin := login(t, h, testAdminPIN)

	w := do(t, h, "GET", "/api/admin/debug", "", admin)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	dbInfo := body["database"].(map[string]any)
	if dbInfo["status"] != "connected" {
		t.Errorf("database status = %v, want connected", dbInfo["status"])
	}
	tables := dbInfo["tables"].(map[string]any)
	if tables["people"].(float64) != 6 {
		t.Errorf("people count = %v, want 6", tables["people"])
	}
}

func TestAPI_CORS(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "OPTIONS", "/api/people", "", nil)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Access-Control-Allow-Origin should be *")
	}
}
