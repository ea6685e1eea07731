package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/valreport/pkg/errors"
)

func newRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name   string
		cfg    *LoggerConfig
		status int
	}{
		{"access log enabled", &LoggerConfig{AccessLog: true}, http.StatusOK},
		{"access log disabled", &LoggerConfig{AccessLog: false}, http.StatusOK},
		{"nil config", nil, http.StatusOK},
		{"client error", nil, http.StatusBadRequest},
		{"server error", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(RequestID(), Logger(tt.cfg))
			r.GET("/test", func(c *gin.Context) {
				c.JSON(tt.status, gin.H{"message": "x"})
			})

			w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestMetrics(t *testing.T) {
	r := newRouter(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/items/1", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil)).Code)
}

func TestRecovery(t *testing.T) {
	r := newRouter(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("test panic") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(errors.ErrCodeInternal), decodeBody(t, w)["code"])
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantHeader string
	}{
		{"allowed origin", http.MethodGet, "https://bank.example.com", http.StatusOK, "https://bank.example.com"},
		{"unknown origin", http.MethodGet, "https://evil.example.com", http.StatusOK, ""},
		{"preflight allowed", http.MethodOptions, "https://bank.example.com", http.StatusNoContent, "https://bank.example.com"},
		{"preflight rejected", http.MethodOptions, "https://evil.example.com", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(CORS([]string{"https://bank.example.com"}))
			r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(r, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = serve(r, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", w.Body.String())
}

func TestBodyLimit(t *testing.T) {
	r := newRouter(ErrorHandler(false), BodyLimit(8))
	r.POST("/upload", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.String(http.StatusOK, string(data))
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("far too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, string(errors.ErrCodeTooLarge), decodeBody(t, w)["code"])
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		debug       bool
		err         error
		wantStatus  int
		wantCode    errors.ErrorCode
		wantMessage string
		wantDetails bool
	}{
		{"plain error in debug mode", true, io.ErrUnexpectedEOF, http.StatusInternalServerError, errors.ErrCodeInternal, "unexpected EOF", false},
		{"plain error in production", false, io.ErrUnexpectedEOF, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", false},
		{"client app error", false, errors.ErrValidation("bad format").WithDetails("docx"), http.StatusBadRequest, errors.ErrCodeValidation, "bad format", true},
		{"server app error hidden", false, errors.New(errors.ErrCodeRenderFailed, "chrome crashed").WithDetails("trace"), http.StatusInternalServerError, errors.ErrCodeRenderFailed, "Internal server error", false},
		{"server app error in debug", true, errors.New(errors.ErrCodeRenderFailed, "chrome crashed").WithDetails("trace"), http.StatusInternalServerError, errors.ErrCodeRenderFailed, "chrome crashed", true},
		{"backend not found", false, errors.New(errors.ErrCodeBackendNotFound, "Valuation not found"), http.StatusNotFound, errors.ErrCodeBackendNotFound, "Valuation not found", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(ErrorHandler(tt.debug))
			r.GET("/test", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, string(tt.wantCode), body["code"])
			assert.Equal(t, tt.wantMessage, body["message"])
			_, hasDetails := body["details"]
			assert.Equal(t, tt.wantDetails, hasDetails)
		})
	}
}

func TestTokenAuth(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
	}{
		{"disabled", "", "", http.StatusOK},
		{"valid token", "s3cret", "Bearer s3cret", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
		{"empty bearer", "s3cret", "Bearer ", http.StatusUnauthorized},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(TokenAuth(tt.token))
			r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, string(errors.ErrCodeUnauthorized), decodeBody(t, w)["code"])
			}
		})
	}
}
