package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verustcode/valreport/internal/api/middleware"
	"github.com/verustcode/valreport/internal/backend"
	"github.com/verustcode/valreport/internal/generation"
	"github.com/verustcode/valreport/internal/model"
	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/internal/report"
	"github.com/verustcode/valreport/internal/report/exporter"
	"github.com/verustcode/valreport/internal/store"
)

// stubPDFExporter stands in for the Chrome-backed PDF exporter
type stubPDFExporter struct {
	err error
}

func (s *stubPDFExporter) Export(_ context.Context, doc *report.Document) ([]byte, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return []byte("%PDF-1.4 " + doc.HTML[:10]), 3, nil
}

func (s *stubPDFExporter) Name() string          { return "PDF" }
func (s *stubPDFExporter) FileExtension() string { return ".pdf" }
func (s *stubPDFExporter) ContentType() string   { return "application/pdf" }

// SetupTestRouter creates a Gin router with the error handler installed.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.ErrorHandler(true))
	return r
}

// newTestEngine builds an engine with HTML and stub PDF exporters
func newTestEngine(s store.Store, b *backend.Client, pdfErr error) *generation.Engine {
	m := exporter.NewExportManager()
	m.Register(exporter.ExportFormatHTML, exporter.NewHTMLExporter())
	m.Register(exporter.ExportFormatPDF, &stubPDFExporter{err: pdfErr})
	return generation.NewEngine(m, s, b)
}

// CreateTestRequest creates an HTTP request with an optional JSON body.
func CreateTestRequest(method, url string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, url, nil)
	}
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(method, url, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func sampleRecord() record.Record {
	return record.Record{
		"uniqueId":   "VAL-42",
		"clientName": "Anil Mehta",
		"bankName":   "Canara Bank",
		"pdfDetails": map[string]any{"fairMarketValue": 2500000},
	}
}

// fakeBackend serves the valuation records API from memory
func fakeBackend(t *testing.T, records map[string]record.Record) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		write := func(status int, success bool, data any, msg string) {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": success, "data": data, "message": msg})
		}

		if r.URL.Path == "/valuations" {
			list := make([]record.Record, 0, len(records))
			for _, rec := range records {
				list = append(list, rec)
			}
			write(http.StatusOK, true, list, "")
			return
		}

		id, action, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/valuations/"), "/")

		rec, ok := records[id]
		if !ok {
			write(http.StatusNotFound, false, nil, "Valuation not found")
			return
		}

		switch action {
		case "approve":
			out := record.Record{"uniqueId": id, "status": "approved"}
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			out["comments"] = body["comments"]
			write(http.StatusOK, true, out, "")
		case "reject":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			write(http.StatusOK, true, record.Record{"uniqueId": id, "status": "rejected", "reason": body["reason"]}, "")
		default:
			write(http.StatusOK, true, rec, "")
		}
	}))
	t.Cleanup(srv.Close)
	return backend.NewClient(backend.Options{BaseURL: srv.URL})
}

// mockStore wires a mockGenerationStore into store.Store
type mockStore struct {
	gens *mockGenerationStore
}

func (m *mockStore) Generation() store.GenerationStore { return m.gens }
func (m *mockStore) DB() *gorm.DB                      { return nil }
func (m *mockStore) Transaction(fn func(store.Store) error) error {
	return fn(m)
}

// mockGenerationStore is a testify mock of store.GenerationStore
type mockGenerationStore struct {
	mock.Mock
}

func (m *mockGenerationStore) Create(gen *model.Generation) error {
	return m.Called(gen).Error(0)
}

func (m *mockGenerationStore) GetByID(id string) (*model.Generation, error) {
	args := m.Called(id)
	gen, _ := args.Get(0).(*model.Generation)
	return gen, args.Error(1)
}

func (m *mockGenerationStore) MarkCompleted(id string, outcome store.GenerationOutcome) error {
	return m.Called(id, outcome).Error(0)
}

func (m *mockGenerationStore) MarkFailed(id, code, message string, duration time.Duration) error {
	return m.Called(id, code, message, duration).Error(0)
}

func (m *mockGenerationStore) List(query model.GenerationQuery) ([]model.Generation, int64, error) {
	args := m.Called(query)
	gens, _ := args.Get(0).([]model.Generation)
	return gens, args.Get(1).(int64), args.Error(2)
}

func (m *mockGenerationStore) LatestForRecord(recordID string) (*model.Generation, error) {
	args := m.Called(recordID)
	gen, _ := args.Get(0).(*model.Generation)
	return gen, args.Error(1)
}

func (m *mockGenerationStore) CountByStatus() (map[model.GenerationStatus]int64, error) {
	args := m.Called()
	counts, _ := args.Get(0).(map[model.GenerationStatus]int64)
	return counts, args.Error(1)
}

func (m *mockGenerationStore) DeleteOlderThan(days int) (int64, error) {
	args := m.Called(days)
	return args.Get(0).(int64), args.Error(1)
}
