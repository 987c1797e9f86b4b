package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/projectboard/internal/auth"
	"github.com/devilmonastery/projectboard/internal/pkg/metrics"
	"github.com/devilmonastery/projectboard/web/internal/session"
)

func newAuthMiddleware() (*AuthMiddleware, *session.Manager) {
	sm := session.NewManager([]byte("0123456789abcdef0123456789abcdef"), auth.NewJWTManager("k", time.Hour), false)
	return NewAuthMiddleware(sm, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))), sm
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		referer string
		want    string
	}{
		{"get keeps query", http.MethodGet, "/articles/form?x=1", "", "/login?redirect=%2Farticles%2Fform%3Fx%3D1"},
		{"post goes back to referer", http.MethodPost, "/comments/new", "http://localhost/articles/5", "/login?redirect=%2Farticles%2F5"},
		{"post without referer", http.MethodPost, "/comments/new", "", "/login?redirect=%2F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, LoginURL(r))
		})
	}
}

func TestRequireAuth(t *testing.T) {
	am, sm := newAuthMiddleware()
	protected := am.LoadUser(am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.GetUserFromContext(r.Context())
		require.NoError(t, err)
		_, _ = w.Write([]byte(user.UserID))
	})))

	t.Run("anonymous is redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/form", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?redirect=%2Farticles%2Fform", rec.Header().Get("Location"))
	})

	t.Run("logged in passes", func(t *testing.T) {
		login := httptest.NewRecorder()
		require.NoError(t, sm.SetUser(httptest.NewRequest(http.MethodGet, "/", nil), login, &auth.UserContext{UserID: "uno"}))

		req := httptest.NewRequest(http.MethodGet, "/articles/form", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "uno", rec.Body.String())
	})
}

func TestLogRequest(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := LogRequest(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestID(r.Context()))
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/articles/99", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "/articles/99", entry["http_path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestLogRequestSkipsHealth(t *testing.T) {
	var buf bytes.Buffer
	h := LogRequest(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Empty(t, buf.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics)
	router.HandleFunc("/articles/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {}).Methods(http.MethodGet)

	counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/articles/{id:[0-9]+}", "200")
	before := testutil.ToFloat64(counter)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles/2", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
