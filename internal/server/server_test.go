package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"tailscale.com/client/tailscale/apitype"
	"tailscale.com/tailcfg"

	"github.com/claude/repcycle/internal/ingest"
	"github.com/claude/repcycle/internal/metrics"
	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/progress"
	"github.com/claude/repcycle/internal/split"
	"github.com/claude/repcycle/internal/storage"
)

// fakeStore implements the handful of Store methods the tests reach.
// Anything else panics through the nil embedded interface.
type fakeStore struct {
	Store

	mu         sync.Mutex
	active     *models.SplitRow
	splits     map[int64]models.SplitRow
	logs       map[string][]split.LogEntry
	priorities map[string]int
	users      map[string]int
	imports    []storage.ImportLog
	activated  time.Time
	created    int
}

func (f *fakeStore) GetActiveSplit(_ context.Context, _ int) (*split.Split, error) {
	if f.active == nil {
		return nil, nil
	}
	s := f.active.ToSplit()
	return &s, nil
}

func (f *fakeStore) GetSplit(_ context.Context, id int64, _ int) (*split.Split, error) {
	row, ok := f.splits[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	s := row.ToSplit()
	return &s, nil
}

func (f *fakeStore) GetLogsForDate(_ context.Context, _ int, date time.Time) ([]split.LogEntry, error) {
	return f.logs[date.Format(time.DateOnly)], nil
}

func (f *fakeStore) GetPriorities(_ context.Context, _ int) (map[string]int, error) {
	return f.priorities, nil
}

func (f *fakeStore) GetActiveSplitRow(_ context.Context, _ int) (*models.SplitRow, error) {
	return f.active, nil
}

func (f *fakeStore) GetSplitRow(_ context.Context, id int64, _ int) (*models.SplitRow, error) {
	row, ok := f.splits[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &row, nil
}

func (f *fakeStore) ActivateSplit(_ context.Context, id int64, _ int, start time.Time) (*models.SplitRow, error) {
	row, ok := f.splits[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	f.activated = start
	row.StartDate = &start
	row.IsActive = true
	return &row, nil
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = map[string]int{}
	}
	if id, ok := f.users[login]; ok {
		return id, nil
	}
	id := len(f.users) + 2
	f.users[login] = id
	return id, nil
}

func (f *fakeStore) InsertImportLog(_ context.Context, log storage.ImportLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports = append(f.imports, log)
	return int64(len(f.imports)), nil
}

// The create and update fakes validate the way storage does.

func (f *fakeStore) CreateWorkout(_ context.Context, _ int, in models.WorkoutInput) (*models.WorkoutRow, error) {
	f.created++
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &models.WorkoutRow{ID: 1, Name: in.Name, Type: in.Type}, nil
}

func (f *fakeStore) CreateWorkoutLog(_ context.Context, _ int, in models.WorkoutLogInput, source string) (*models.WorkoutLogRow, error) {
	f.created++
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &models.WorkoutLogRow{WorkoutID: in.WorkoutID, Source: source, DateTime: in.DateTime}, nil
}

func (f *fakeStore) CreateSplit(_ context.Context, _ int, in models.SplitInput) (*models.SplitRow, error) {
	f.created++
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &models.SplitRow{ID: 1, Name: in.Name}, nil
}

func (f *fakeStore) UpdateSplit(_ context.Context, id int64, _ int, in models.SplitInput) (*models.SplitRow, error) {
	f.created++
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &models.SplitRow{ID: id, Name: in.Name}, nil
}

type fakeProvider struct {
	gotUser int
	body    string
	result  *ingest.Result
	err     error
}

func (p *fakeProvider) Ingest(_ context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	b, _ := io.ReadAll(r)
	p.body = string(b)
	p.gotUser = userID
	return p.result, p.err
}

type fakeWhoIs struct {
	login string
	err   error
}

func (f fakeWhoIs) WhoIs(_ context.Context, _ string) (*apitype.WhoIsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &apitype.WhoIsResponse{
		UserProfile: &tailcfg.UserProfile{LoginName: f.login, DisplayName: "Alice"},
	}, nil
}

func pushPullRestRow() models.SplitRow {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.SplitRow{
		ID:        3,
		Name:      "PPR",
		StartDate: &start,
		IsActive:  true,
		Days: []models.SplitDayRow{
			{Name: "Push", DayOrder: 1, Targets: []models.SplitDayTargetRow{{MuscleName: "Chest", TargetActivation: 100}}},
			{Name: "Pull", DayOrder: 2, Targets: []models.SplitDayTargetRow{{MuscleName: "Back", TargetActivation: 100}}},
			{Name: "Rest", DayOrder: 3},
		},
	}
}

func newTestServer(t *testing.T, db *fakeStore, alpha ingest.Provider) (*Server, *metrics.Manager) {
	t.Helper()
	m, _ := metrics.NewTestManager()
	s := New(db, alpha, Options{APIKey: "secret", Metrics: m}, slog.New(slog.DiscardHandler))
	s.now = func() time.Time { return time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC) }
	return s, m
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestProgressNoActiveSplit(t *testing.T) {
	s, _ := newTestServer(t, &fakeStore{}, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/progress?date=2025-01-02", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if msg := decodeError(t, rec); msg != progress.ErrNoActiveSplit.Error() {
		t.Errorf("error = %q", msg)
	}
}

func TestProgressDefaultsToToday(t *testing.T) {
	row := pushPullRestRow()
	db := &fakeStore{
		active: &row,
		logs: map[string][]split.LogEntry{
			"2025-01-02": {{WorkoutID: 9, Muscles: []split.Activation{{Muscle: "Back", Rating: 60}}}},
		},
	}
	s, m := newTestServer(t, db, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/progress", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var report split.DayReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Date != "2025-01-02" || report.Day.Name != "Pull" {
		t.Errorf("report = %s/%s, want 2025-01-02/Pull", report.Date, report.Day.Name)
	}
	if len(report.Muscles) != 1 || report.Muscles[0].Current != 60 {
		t.Errorf("muscles = %+v", report.Muscles)
	}
	if got := testutil.ToFloat64(m.CounterMuscleStatus.WithLabelValues(string(split.StatusBelow))); got != 1 {
		t.Errorf("muscle_status_total{below} = %v, want 1", got)
	}
}

func TestProgressBeforeStart(t *testing.T) {
	row := pushPullRestRow()
	s, _ := newTestServer(t, &fakeStore{active: &row}, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/progress?date=2024-12-01", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProgressBadDate(t *testing.T) {
	s, _ := newTestServer(t, &fakeStore{}, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/progress?date=yesterday", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProgressRange(t *testing.T) {
	row := pushPullRestRow()
	s, _ := newTestServer(t, &fakeStore{active: &row}, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/progress/range?start=2024-12-31&end=2025-01-03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var days []progress.RangeDay
	if err := json.NewDecoder(rec.Body).Decode(&days); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(days) != 4 {
		t.Fatalf("got %d days, want 4", len(days))
	}
	if days[0].Report != nil {
		t.Error("day before start should have no report")
	}
	if days[3].Report == nil || days[3].Report.Day.Name != "Rest" {
		t.Errorf("2025-01-03 should be Rest, got %+v", days[3].Report)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/progress/range?start=2025-01-01&end=2025-03-01", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized range status = %d, want 400", rec.Code)
	}
}

func TestGetSplitIncludesAnalysis(t *testing.T) {
	db := &fakeStore{
		splits:     map[int64]models.SplitRow{3: pushPullRestRow()},
		priorities: map[string]int{"Chest": 100},
	}
	s, _ := newTestServer(t, db, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/splits/3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got splitDetail
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Split == nil || got.Split.Name != "PPR" {
		t.Errorf("split = %+v", got.Split)
	}
	if len(got.Analysis) != 2 {
		t.Fatalf("analysis rows = %d, want 2", len(got.Analysis))
	}

	rec = do(t, s, http.MethodGet, "/api/v1/splits/99", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing split status = %d, want 404", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/splits/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad ID status = %d, want 400", rec.Code)
	}
}

func TestActivateSplit(t *testing.T) {
	db := &fakeStore{splits: map[int64]models.SplitRow{3: pushPullRestRow()}}
	s, _ := newTestServer(t, db, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/splits/3/activate", `{}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing start_date status = %d, want 422", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/splits/3/activate", `{"start_date":"2025-02-10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if want := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC); !db.activated.Equal(want) {
		t.Errorf("activated with %v, want %v", db.activated, want)
	}
}

func TestActiveSplitNone(t *testing.T) {
	s, _ := newTestServer(t, &fakeStore{}, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/splits/active", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	s, _ := newTestServer(t, &fakeStore{}, nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"workout without name", "/api/v1/workouts", `{"type":"machine"}`},
		{"activation over 100", "/api/v1/workouts", `{"workout_name":"Row","muscles":[{"muscle":"Back","activation":150}]}`},
		{"log without workout", "/api/v1/workouts/logs", `{"reps":8}`},
		{"split day order zero", "/api/v1/splits", `{"split_name":"X","split_days":[{"day_name":"A","day_order":0}]}`},
		{"malformed JSON", "/api/v1/splits", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

// TestCreateSplitValidatesInStore verifies split payloads reach the store
// once, which accepts valid input and rejects invalid input with 400.
func TestCreateSplitValidatesInStore(t *testing.T) {
	db := &fakeStore{}
	s, _ := newTestServer(t, db, nil)

	valid := `{"split_name":"PPR","split_days":[{"day_name":"Push","day_order":1,"targets":[{"muscle":"Chest","activation":100}]}]}`
	if rec := do(t, s, http.MethodPost, "/api/v1/splits", valid); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/v1/splits/1", `{"split_name":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("update status = %d, want 400", rec.Code)
	}
	if db.created != 2 {
		t.Errorf("store calls = %d, want 2", db.created)
	}
}

func TestAlphaIngest(t *testing.T) {
	db := &fakeStore{}
	alpha := &fakeProvider{result: &ingest.Result{SessionsReceived: 1, SetsReceived: 3, LogsInserted: 2, Unmatched: []string{"Dips"}}}
	s, m := newTestServer(t, db, alpha)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/alpha", strings.NewReader("csv"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without key status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/ingest/alpha", strings.NewReader("csv"))
	req.Header.Set("X-API-Key", "secret")
	req.Header.Set("X-Filename", "export.csv")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	if alpha.body != "csv" || alpha.gotUser != 1 {
		t.Errorf("provider got body %q user %d", alpha.body, alpha.gotUser)
	}
	if len(db.imports) != 1 {
		t.Fatalf("import logs = %d, want 1", len(db.imports))
	}
	il := db.imports[0]
	if il.Status != "success" || il.RecordsCreated != 2 || il.RecordsSkipped != 1 {
		t.Errorf("import log = %+v", il)
	}
	if il.Filename == nil || *il.Filename != "export.csv" {
		t.Errorf("filename = %v", il.Filename)
	}
	if got := testutil.ToFloat64(m.CounterIngestedLogs.WithLabelValues(storage.SourceAlpha)); got != 2 {
		t.Errorf("ingested_logs_total = %v, want 2", got)
	}
}

func TestAlphaIngestError(t *testing.T) {
	db := &fakeStore{}
	s, _ := newTestServer(t, db, &fakeProvider{err: errors.New("bad csv")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/alpha", strings.NewReader("x"))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(db.imports) != 1 || db.imports[0].Status != "error" {
		t.Errorf("import logs = %+v", db.imports)
	}
}

func TestTailscaleIdentity(t *testing.T) {
	db := &fakeStore{}
	s, _ := newTestServer(t, db, nil)
	s.SetTailscale(fakeWhoIs{login: "alice@example.com"})

	rec := do(t, s, http.MethodGet, "/api/v1/me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q", info.Login)
	}
	if db.users["alice@example.com"] != 2 {
		t.Errorf("users = %v", db.users)
	}
}

func TestTailscaleIdentityUnknownPeer(t *testing.T) {
	s, _ := newTestServer(t, &fakeStore{}, nil)
	s.SetTailscale(fakeWhoIs{err: errors.New("no peer")})

	rec := do(t, s, http.MethodGet, "/api/v1/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{progress.ErrNoActiveSplit, http.StatusNotFound},
		{fmt.Errorf("evaluating: %w", split.ErrInvalidDateRange), http.StatusNotFound},
		{storage.ErrNotFound, http.StatusNotFound},
		{split.ErrEmptySplit, http.StatusUnprocessableEntity},
		{split.ErrNoStartDate, http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", models.ErrInvalidInput), http.StatusBadRequest},
		{storage.ErrUnknownMuscle, http.StatusBadRequest},
		{progress.ErrRangeTooLarge, http.StatusBadRequest},
		{&pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/?start=2025-03-01&end=2025-03-02", nil)
	start, end, err := parseTimeRange(req, now)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if end.Format(time.DateOnly) != "2025-03-02" || end.Hour() != 23 {
		t.Errorf("end = %v, want end of 2025-03-02", end)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	start, end, err = parseTimeRange(req, now)
	if err != nil {
		t.Fatal(err)
	}
	if !end.Equal(now) || !start.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("default range = %v..%v", start, end)
	}

	req = httptest.NewRequest(http.MethodGet, "/?start=soon", nil)
	if _, _, err := parseTimeRange(req, now); err == nil {
		t.Error("expected error for bad start")
	}
}
