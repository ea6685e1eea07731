package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/valreport/internal/backend"
	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/pkg/errors"
)

func setupValuationRouter(t *testing.T, client *backend.Client) *ValuationHandler {
	t.Helper()
	return NewValuationHandler(newTestEngine(nil, client, nil))
}

func TestValuationHandler_GetReport(t *testing.T) {
	client := fakeBackend(t, map[string]record.Record{"VAL-42": sampleRecord()})
	h := setupValuationRouter(t, client)
	r := SetupTestRouter()
	r.GET("/api/v1/valuations/:id/report", h.GetReport)

	tests := []struct {
		name            string
		url             string
		wantStatus      int
		wantType        string
		wantDisposition string
		wantCode        errors.ErrorCode
	}{
		{"default pdf", "/api/v1/valuations/VAL-42/report", http.StatusOK, "application/pdf", `attachment; filename="Anil_Mehta.pdf"`, ""},
		{"html", "/api/v1/valuations/VAL-42/report?format=html", http.StatusOK, "text/html; charset=utf-8", `attachment; filename="Anil_Mehta.html"`, ""},
		{"pdf preview", "/api/v1/valuations/VAL-42/report?format=pdf&preview=true", http.StatusOK, "application/pdf", `inline; filename="Anil_Mehta.pdf"`, ""},
		{"unknown format", "/api/v1/valuations/VAL-42/report?format=docx", http.StatusBadRequest, "", "", errors.ErrCodeValidation},
		{"missing valuation", "/api/v1/valuations/VAL-404/report", http.StatusNotFound, "", "", errors.ErrCodeBackendNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, CreateTestRequest(http.MethodGet, tt.url, nil))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, string(tt.wantCode), decodeJSON(t, w)["code"])
				return
			}
			assert.Equal(t, tt.wantType, w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantDisposition, w.Header().Get("Content-Disposition"))
		})
	}
}

func TestValuationHandler_BackendDisabled(t *testing.T) {
	h := setupValuationRouter(t, nil)
	r := SetupTestRouter()
	r.GET("/api/v1/valuations/:id/report", h.GetReport)
	r.POST("/api/v1/valuations/:id/approve", h.Approve)

	for _, req := range []*http.Request{
		CreateTestRequest(http.MethodGet, "/api/v1/valuations/VAL-42/report", nil),
		CreateTestRequest(http.MethodPost, "/api/v1/valuations/VAL-42/approve", nil),
	} {
		w := serve(r, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, string(errors.ErrCodeBackendDisabled), decodeJSON(t, w)["code"])
	}
}

func TestValuationHandler_ListAndGet(t *testing.T) {
	client := fakeBackend(t, map[string]record.Record{"VAL-42": sampleRecord()})
	h := setupValuationRouter(t, client)
	r := SetupTestRouter()
	r.GET("/api/v1/valuations", h.ListValuations)
	r.GET("/api/v1/valuations/:id", h.GetValuation)

	w := serve(r, CreateTestRequest(http.MethodGet, "/api/v1/valuations?status=pending&page=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Len(t, body["items"], 1)
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(20), body["limit"])

	w = serve(r, CreateTestRequest(http.MethodGet, "/api/v1/valuations/VAL-42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeJSON(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Canara Bank", data["bankName"])

	w = serve(r, CreateTestRequest(http.MethodGet, "/api/v1/valuations/VAL-404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValuationHandler_Approve(t *testing.T) {
	client := fakeBackend(t, map[string]record.Record{"VAL-42": sampleRecord()})
	h := setupValuationRouter(t, client)
	r := SetupTestRouter()
	r.POST("/api/v1/valuations/:id/approve", h.Approve)

	w := serve(r, CreateTestRequest(http.MethodPost, "/api/v1/valuations/VAL-42/approve", map[string]string{"comments": "verified on site"}))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeJSON(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "approved", data["status"])
	assert.Equal(t, "verified on site", data["comments"])

	// comments are optional
	w = serve(r, CreateTestRequest(http.MethodPost, "/api/v1/valuations/VAL-42/approve", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, CreateTestRequest(http.MethodPost, "/api/v1/valuations/VAL-404/approve", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValuationHandler_Reject(t *testing.T) {
	client := fakeBackend(t, map[string]record.Record{"VAL-42": sampleRecord()})
	h := setupValuationRouter(t, client)
	r := SetupTestRouter()
	r.POST("/api/v1/valuations/:id/reject", h.Reject)

	w := serve(r, CreateTestRequest(http.MethodPost, "/api/v1/valuations/VAL-42/reject", map[string]string{"reason": "sale deed missing"}))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeJSON(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "rejected", data["status"])
	assert.Equal(t, "sale deed missing", data["reason"])

	w = serve(r, CreateTestRequest(http.MethodPost, "/api/v1/valuations/VAL-42/reject", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errors.ErrCodeValidation), decodeJSON(t, w)["code"])
}
