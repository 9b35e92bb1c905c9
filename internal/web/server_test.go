package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/tabview/internal/config"
	"github.com/JonMunkholm/tabview/internal/core"
)

const salesCSV = "date,region,sales\n" +
	"2024-01-01,east,100\n" +
	"2024-01-02,west,NaN\n" +
	"2024-01-03,east,50\n" +
	"2024-01-04,north,75\n" +
	"2024-01-05,west,20\n" +
	"2024-01-06,east,60\n"

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second, ShutdownTimeout: time.Second},
		Upload:   config.UploadConfig{MaxFileSize: 1 << 20, MaxConcurrent: 2, MaxWaitTime: time.Second},
		Session:  config.SessionConfig{TTL: time.Hour, MaxSessions: 10, SweepInterval: time.Minute},
		Security: config.SecurityConfig{EnableCSP: true},
		Chart:    config.ChartConfig{Width: 320, Height: 240},
		Logging:  config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	sessions := core.NewSessions(core.SessionConfig{
		TTL:           cfg.Session.TTL,
		MaxSessions:   cfg.Session.MaxSessions,
		SweepInterval: cfg.Session.SweepInterval,
	})
	limiter := core.NewLoadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	s := NewServer(cfg, sessions, limiter)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = fw.Write([]byte(content))
	} else {
		_ = mw.WriteField("other", "value")
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ctype := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	return do(t, s, req)
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	rec := upload(t, s, "sales.csv", salesCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return resp.ID
}

func putSelection(t *testing.T, s *Server, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/api/session/"+id+"/selection", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, s, req)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (%q)", err, rec.Body.String())
	}
	return resp
}

func TestUpload_CreatesSession(t *testing.T) {
	s := newTestServer(t, nil)
	rec := upload(t, s, "sales.csv", salesCSV)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.FileName != "sales.csv" || resp.Rows != 6 || len(resp.Columns) != 3 {
		t.Errorf("response = %+v", resp)
	}
	if resp.URL != "/session/"+resp.ID {
		t.Errorf("URL = %q", resp.URL)
	}
	if s.sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", s.sessions.Len())
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		maxSize    int64
		wantStatus int
		wantCode   string
	}{
		{"no file", "", "", 0, http.StatusBadRequest, "FILE004"},
		{"unsupported type", "notes.txt", "a,b\n1,2\n", 0, http.StatusUnsupportedMediaType, "FILE006"},
		{"empty file", "empty.csv", "", 0, http.StatusBadRequest, "FILE005"},
		{"too large", "big.csv", strings.Repeat("a,b\n1,2\n", 100), 64, http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(c *config.Config) {
				if tt.maxSize > 0 {
					c.Upload.MaxFileSize = tt.maxSize
				}
			})
			rec := upload(t, s, tt.filename, tt.content)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := decodeError(t, rec).Code; got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
			if s.sessions.Len() != 0 {
				t.Errorf("failed upload left %d sessions", s.sessions.Len())
			}
		})
	}
}

func TestUpload_SessionCapacity(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Session.MaxSessions = 1 })
	createSession(t, s)

	rec := upload(t, s, "sales.csv", salesCSV)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "SES002" {
		t.Errorf("code = %q, want SES002", got)
	}
}

func TestGetSession(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Rows != 6 || resp.ViewRows != 6 {
		t.Errorf("rows = %d/%d, want 6/6", resp.Rows, resp.ViewRows)
	}
	if len(resp.Preview) != core.PreviewRows {
		t.Errorf("preview rows = %d, want %d", len(resp.Preview), core.PreviewRows)
	}
	if resp.Selection.Chart != core.ChartLine || resp.Selection.Sort.Column != "date" {
		t.Errorf("default selection = %+v", resp.Selection)
	}
	if got := resp.Options.Categorical["region"].Values; strings.Join(got, ",") != "east,west,north" {
		t.Errorf("region options = %q", got)
	}
	if b := resp.Options.Numeric["sales"]; b.Min != "20" || b.Max != "100" {
		t.Errorf("sales bounds = %+v, want 20..100", b)
	}
	if resp.Chart.MediaType != "image/png" || !strings.HasPrefix(resp.Chart.URL, "/api/session/"+id+"/chart") {
		t.Errorf("chart info = %+v", resp.Chart)
	}
}

func TestUpdateSelection(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	rec := putSelection(t, s, id, `{
		"categorical": {"column": "region", "values": ["east"]},
		"sort": {"column": "sales", "dir": "desc"},
		"chart": "Bar", "x": "date", "y": "sales", "show_full": true
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ViewRows != 3 || resp.Selection.Chart != core.ChartBar {
		t.Errorf("view rows = %d, chart = %q", resp.ViewRows, resp.Selection.Chart)
	}
	var sales []string
	for _, row := range resp.Preview {
		sales = append(sales, row[2])
	}
	if strings.Join(sales, ",") != "100,60,50" {
		t.Errorf("sorted sales = %q, want 100,60,50", sales)
	}
	// Range hints follow the categorical filter.
	if b := resp.Options.Numeric["sales"]; b.Min != "50" || b.Max != "100" {
		t.Errorf("sales bounds = %+v, want 50..100 for east", b)
	}
}

func TestUpdateSelection_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown column", `{"sort":{"column":"profit"},"chart":"line","x":"date","y":"sales"}`, http.StatusBadRequest, "CFG001"},
		{"wrong type", `{"categorical":{"column":"sales","values":["1"]},"sort":{"column":"date"},"chart":"line","x":"date","y":"sales"}`, http.StatusBadRequest, "CFG002"},
		{"unknown chart", `{"sort":{"column":"date"},"chart":"pie","x":"date","y":"sales"}`, http.StatusBadRequest, "CFG003"},
		{"inverted range", `{"numeric":{"column":"sales","min":10,"max":5},"sort":{"column":"date"},"chart":"line","x":"date","y":"sales"}`, http.StatusBadRequest, "CFG004"},
		{"malformed json", `{"sort":`, http.StatusBadRequest, "CFG005"},
		{"unknown field", `{"sorting":{}}`, http.StatusBadRequest, "CFG005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			id := createSession(t, s)
			rec := putSelection(t, s, id, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := decodeError(t, rec).Code; got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}

			sess, err := s.sessions.Get(id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if sel := sess.Selection(); sel.Sort.Column != "date" || sel.Chart != core.ChartLine {
				t.Errorf("rejected update changed selection to %+v", sel)
			}
		})
	}
}

func TestChart(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id+"/chart", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("line chart status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("chart is not a PNG: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("chart size = %dx%d, want 320x240", cfg.Width, cfg.Height)
	}

	putSelection(t, s, id, `{"sort":{"column":"date"},"chart":"interactive_scatter","x":"date","y":"sales","color":"region"}`)
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id+"/chart", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("interactive chart = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), `"mode":"markers"`) {
		t.Errorf("figure = %s", rec.Body.String())
	}
}

func TestChart_HeatmapWarning(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	rec := putSelection(t, s, id, `{"sort":{"column":"date"},"chart":"heatmap","x":"date","y":"sales"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("selection status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Chart.Code != "CHT001" || resp.Chart.Warning == "" {
		t.Errorf("chart info = %+v, want CHT001 warning", resp.Chart)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id+"/chart", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "CHT001" {
		t.Errorf("code = %q, want CHT001", got)
	}

	// The session survives the warning.
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("session after warning = %d", rec.Code)
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)
	putSelection(t, s, id, `{"categorical":{"column":"region","values":["west"]},"sort":{"column":"date"},"chart":"scatter","x":"date","y":"sales"}`)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id+"/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="filtered_data.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	want := "date,region,sales\n2024-01-02,west,\n2024-01-05,west,20\n"
	if rec.Body.String() != want {
		t.Errorf("export = %q, want %q", rec.Body.String(), want)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id+"/export?scope=chart", nil))
	if want := "date,region,sales\n2024-01-05,west,20\n"; rec.Body.String() != want {
		t.Errorf("chart-scope export = %q, want %q", rec.Body.String(), want)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id+"/export?scope=everything", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown scope status = %d, want 400", rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	rec := do(t, s, httptest.NewRequest(http.MethodDelete, "/api/session/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/session/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "SES001" {
		t.Errorf("code = %q, want SES001", got)
	}
	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/session/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, nil)
	createSession(t, s)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Sessions != 1 || resp.Uploads.MaxConcurrent != 2 || resp.Uploads.Active != 0 {
		t.Errorf("status = %+v", resp)
	}
}

func TestPages(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `enctype="multipart/form-data"`) {
		t.Fatalf("index = %d %q", rec.Code, rec.Body.String())
	}

	body, ctype := multipartBody(t, "<sales>.csv", salesCSV)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec = do(t, s, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("form upload = %d: %s", rec.Code, rec.Body.String())
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/session/") {
		t.Fatalf("Location = %q", loc)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, loc, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d", rec.Code)
	}
	page := rec.Body.String()
	if strings.Contains(page, "<sales>") || !strings.Contains(page, "&lt;sales&gt;.csv") {
		t.Error("file name is not HTML-escaped")
	}
	if !strings.Contains(page, `<img alt="Line"`) || !strings.Contains(page, "Download filtered CSV") {
		t.Error("dashboard is missing the chart or download link")
	}
}

func TestSelectionForm(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s)

	post := func(form url.Values, htmx bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/session/"+id+"/selection", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if htmx {
			req.Header.Set("HX-Request", "true")
		}
		return do(t, s, req)
	}

	// Picking a categorical column starts with every value selected.
	rec := post(url.Values{"categorical_column": {"region"}, "sort_column": {"date"}, "chart": {"line"}}, true)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `id="dashboard"`) {
		t.Fatalf("htmx post = %d %q", rec.Code, rec.Body.String())
	}
	sess, _ := s.sessions.Get(id)
	if f := sess.Selection().Categorical; f == nil || len(f.Values) != 3 || f.IncludeMissing {
		t.Fatalf("categorical defaults = %+v", f)
	}

	// Narrow it down.
	post(url.Values{"categorical_column": {"region"}, "categorical_values": {"east"}, "sort_column": {"date"}}, true)
	view, err := sess.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.NumRows() != 3 {
		t.Errorf("view rows = %d, want 3", view.NumRows())
	}

	// A bad bound is shown inline and keeps the previous selection.
	post(url.Values{"numeric_column": {"sales"}}, true)
	rec = post(url.Values{"numeric_column": {"sales"}, "numeric_min": {"lots"}}, true)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "alert-error") {
		t.Errorf("bad bound response = %d %q", rec.Code, rec.Body.String())
	}
	if f := sess.Selection().Numeric; f == nil || f.Min != nil {
		t.Errorf("numeric filter after rejected bound = %+v", f)
	}

	// Plain form posts redirect back to the dashboard.
	rec = post(url.Values{"chart": {"scatter"}}, false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/session/"+id {
		t.Errorf("plain post = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if sess.Selection().Chart != core.ChartScatter {
		t.Errorf("chart = %q, want scatter", sess.Selection().Chart)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, UploadLimit: 1}
	})

	for i := 0; i < 2; i++ {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if got := decodeError(t, rec).Code; got != "RATE001" {
		t.Errorf("code = %q, want RATE001", got)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)
	rl := newRateLimiter(1, time.Minute, stop)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("1.2.3.4") {
		t.Fatal("first request denied")
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("second request in window allowed")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other IP denied")
	}
	now = now.Add(61 * time.Second)
	if !rl.allow("1.2.3.4") {
		t.Error("request after window denied")
	}
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})

	if rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/status", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("api without key = %d, want 401", rec.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", "secret")
	if rec := do(t, s, req); rec.Code != http.StatusOK {
		t.Errorf("api with key = %d, want 200", rec.Code)
	}
	if rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Errorf("page without key = %d, want 200", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}

	s = newTestServer(t, func(c *config.Config) { c.Security.EnableCSP = false })
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Content-Security-Policy") != "" {
		t.Error("CSP set while disabled")
	}
}

func TestRespondError_Formats(t *testing.T) {
	err := &core.ConfigurationError{Field: "x", Column: "nope", Err: core.ErrUnknownColumn}

	req := httptest.NewRequest(http.MethodGet, "/session/abc", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	respondError(rec, req, err, http.StatusBadRequest)
	if !strings.Contains(rec.Body.String(), "alert-error") || !strings.Contains(rec.Body.String(), "CFG001") {
		t.Errorf("htmx body = %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/session/abc", nil)
	rec = httptest.NewRecorder()
	respondError(rec, req, err, http.StatusBadRequest)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("page error Content-Type = %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/session/abc", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	respondError(rec, req, err, http.StatusBadRequest)
	if got := decodeError(t, rec); got.Code != "CFG001" || got.Action == "" {
		t.Errorf("json error = %+v", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrSessionNotFound, http.StatusNotFound},
		{core.ErrTooManySessions, http.StatusServiceUnavailable},
		{core.ErrTooManyUploads, http.StatusServiceUnavailable},
		{&core.LoadError{FileName: "a.txt", Err: core.ErrUnsupportedFile}, http.StatusUnsupportedMediaType},
		{&core.LoadError{FileName: "a.csv", Err: core.ErrEmptyFile}, http.StatusBadRequest},
		{&core.ChartError{Kind: core.ChartHeatmap, Err: core.ErrInsufficientNumeric}, http.StatusUnprocessableEntity},
		{errFileTooBig, http.StatusRequestEntityTooLarge},
		{errRateLimited, http.StatusTooManyRequests},
		{http.ErrAbortHandler, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
