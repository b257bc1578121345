package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/iamarketings/Operator/internal/config"
	"github.com/iamarketings/Operator/internal/models"
)

func newTestRouter(t *testing.T, cfg *config.Config) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	if cfg == nil {
		cfg = config.Default()
	}
	return NewRouter(cfg, mock), mock
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAPIKeyAuth(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.APIKeys = []config.APIKey{{Name: "ops", Key: "secret"}}

	tests := []struct {
		name string
		key  string
		want int
	}{
		{name: "missing", key: "", want: http.StatusUnauthorized},
		{name: "wrong", key: "nope", want: http.StatusForbidden},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t, cfg)
			req := httptest.NewRequest(http.MethodGet, "/api/trunks", nil)
			if tc.key != "" {
				req.Header.Set("X-API-Key", tc.key)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestListTrunks(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.APIKeys = []config.APIKey{{Name: "ops", Key: "secret"}}
	router, mock := newTestRouter(t, cfg)
	mock.ExpectQuery(`SELECT .+ FROM pbx\.trunks`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "type", "status", "host"}).
			AddRow("trunk-1", "Carrier", "SIP", "Registered", "sip.example"))

	req := httptest.NewRequest(http.MethodGet, "/api/trunks", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got []models.Trunk
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "trunk-1" || got[0].Status != models.TrunkRegistered {
		t.Errorf("unexpected trunks %+v", got)
	}
}

func TestCreateExtensionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"number":`},
		{name: "missing name", body: `{"number":"2001","protocol":"SIP"}`},
		{name: "bad protocol", body: `{"number":"2001","name":"Bob","protocol":"H323"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/extensions", strings.NewReader(tc.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestUpdateQueueUsesPathID(t *testing.T) {
	t.Parallel()

	router, mock := newTestRouter(t, nil)
	mock.ExpectExec(`UPDATE pbx\.queues`).
		WithArgs("queue-1", "Support", "ringall", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	body := `{"id":"queue-other","name":"Support","strategy":"ringall","members":[]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/queues/queue-1", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Queue
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "queue-1" {
		t.Errorf("id = %q, want queue-1", got.ID)
	}
}

func TestDeleteMissingExtension(t *testing.T) {
	t.Parallel()

	router, mock := newTestRouter(t, nil)
	mock.ExpectExec(`DELETE FROM pbx\.extensions WHERE id=\$1`).
		WithArgs("ext-404").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/extensions/ext-404", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCDRIngestAuthAndValidation(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CDRAuthorization = "tok"

	tests := []struct {
		name  string
		token string
		body  string
		want  int
	}{
		{name: "no token", token: "", body: `{}`, want: http.StatusForbidden},
		{name: "bad token", token: "other", body: `{}`, want: http.StatusForbidden},
		{name: "invalid record", token: "tok", body: `{"disposition":"ANSWERED"}`, want: http.StatusBadRequest},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t, cfg)
			req := httptest.NewRequest(http.MethodPost, "/fs/cdr", strings.NewReader(tc.body))
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestDirectoryRequiresBasicAuth(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.XMLCurlUser, cfg.XMLCurlPass = "fs", "pw"
	router, mock := newTestRouter(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fs/xml/directory?user=2000&domain=pbx", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	mock.ExpectQuery(`FROM pbx\.extensions WHERE number=\$1`).
		WithArgs("2000").
		WillReturnRows(pgxmock.NewRows([]string{"id", "number", "name", "secret", "protocol", "status", "ip_address", "user_agent", "voicemail", "call_recording"}).
			AddRow("ext-2000", "2000", "Alice", "pw", "PJSIP", "Registered", "10.0.0.1", "N/A",
				[]byte(`{"enabled":true,"pin":"1234"}`), []byte(`{"incoming":true,"outgoing":false}`)))

	req := httptest.NewRequest(http.MethodGet, "/fs/xml/directory?user=2000&domain=pbx", nil)
	req.SetBasicAuth("fs", "pw")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `id="2000"`) {
		t.Errorf("directory entry missing user: %s", rec.Body.String())
	}
}

func TestRecordingHandlerServesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "monitor"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "monitor", "1.1.wav"), []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Recordings.BasePath = dir

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "inside base", path: "monitor/1.1.wav", want: http.StatusOK},
		{name: "escapes base", path: "../../etc/passwd", want: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mock := newTestRouter(t, cfg)
			mock.ExpectQuery(`SELECT path FROM pbx\.recordings WHERE cdr_id=\$1`).
				WithArgs("cdr-1").
				WillReturnRows(pgxmock.NewRows([]string{"path"}).AddRow(tc.path))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recordings/cdr-1", nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRecordingHandlerWithoutBasePath(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Recordings.BasePath = ""
	router, _ := newTestRouter(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recordings/cdr-1", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
