package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/goliatone/go-incomeform/pkg/census"
	"github.com/goliatone/go-incomeform/pkg/orchestrator"
	"github.com/goliatone/go-incomeform/pkg/predict"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubPredictor struct {
	mu      sync.Mutex
	records []census.Record
	result  predict.Result
}

func (s *stubPredictor) Predict(_ context.Context, record census.Record) predict.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return s.result
}

func (s *stubPredictor) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func newTestServer(t *testing.T, result predict.Result) (*Server, *stubPredictor) {
	t.Helper()
	predictor := &stubPredictor{result: result}
	orch := orchestrator.New(orchestrator.WithPredictor(predictor))
	return New(orch, WithLogger(zaptest.NewLogger(t))), predictor
}

func defaultForm() url.Values {
	form := url.Values{}
	for name, value := range census.Defaults() {
		form.Set(name, toString(value))
	}
	return form
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}

func TestHandleForm_Get(t *testing.T) {
	srv, predictor := newTestServer(t, predict.Success(">50K"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `action="/"`)
	for _, name := range census.FieldNames() {
		assert.Contains(t, body, `name="`+name+`"`)
	}
	assert.NotContains(t, body, `role="status"`)
	assert.Zero(t, predictor.calls())
}

func TestHandleForm_PostSuccess(t *testing.T) {
	srv, predictor := newTestServer(t, predict.Success("<=50K"))

	form := defaultForm()
	form.Set(census.FieldAge, "52")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, predictor.calls())
	assert.Equal(t, 52, predictor.records[0].Age)

	body := rec.Body.String()
	assert.Contains(t, body, "incomeform__notice--success")
	assert.Contains(t, body, "Predicted Income: &lt;=50K")
	assert.Contains(t, body, `value="52"`)
}

func TestHandleForm_PostShowsServiceTextLiterally(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "error", body: `{"error": "expected <int> for age"}`, want: "Error: expected &lt;int&gt; for age</div>"},
		{name: "label", body: `{"predicted_income": "<b>50K</b>"}`, want: "Predicted Income: &lt;b&gt;50K&lt;/b&gt;</div>"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, predictor := newTestServer(t, predict.Classify([]byte(tc.body)))

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(defaultForm().Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, 1, predictor.calls())
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestHandleForm_PostInvalidShowsFieldErrors(t *testing.T) {
	srv, predictor := newTestServer(t, predict.Success(">50K"))

	form := defaultForm()
	form.Set(census.FieldHoursPerWeek, "120")
	form.Del(census.FieldSex)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, predictor.calls())
	body := rec.Body.String()
	assert.Contains(t, body, "incomeform__field--invalid")
	assert.Contains(t, body, "is required")
	assert.NotContains(t, body, `role="status"`)
}

func TestHandleForm_PostTransportFailure(t *testing.T) {
	srv, _ := newTestServer(t, predict.TransportError(errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(defaultForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "incomeform__notice--error")
	assert.Contains(t, body, "Failed to connect to prediction service: dial tcp 127.0.0.1:8000: connect: connection refused")
}

func TestHandleForm_MethodAndPath(t *testing.T) {
	srv, _ := newTestServer(t, predict.Success(">50K"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleForm_DarkVariant(t *testing.T) {
	srv, _ := newTestServer(t, predict.Success(">50K"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?variant=dark", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "#1f2937")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?variant=sepia", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlePredict(t *testing.T) {
	valid, err := json.Marshal(census.Default().Payload())
	require.NoError(t, err)

	cases := []struct {
		name       string
		result     predict.Result
		body       string
		wantStatus int
		wantKind   string
		wantCalls  int
		check      func(t *testing.T, resp predictResponse)
	}{
		{
			name:       "success",
			result:     predict.Success(">50K"),
			body:       string(valid),
			wantStatus: http.StatusOK,
			wantKind:   "success",
			wantCalls:  1,
			check: func(t *testing.T, resp predictResponse) {
				assert.Equal(t, ">50K", resp.Label)
				assert.Equal(t, "Predicted Income: >50K", resp.Display)
			},
		},
		{
			name:       "api error",
			result:     predict.APIError("model unavailable"),
			body:       string(valid),
			wantStatus: http.StatusOK,
			wantKind:   "api_error",
			wantCalls:  1,
			check: func(t *testing.T, resp predictResponse) {
				assert.Equal(t, "model unavailable", resp.Message)
			},
		},
		{
			name:       "integral float",
			result:     predict.Success("<=50K"),
			body:       strings.Replace(string(valid), `"age":17,`, `"age":17.0,`, 1),
			wantStatus: http.StatusOK,
			wantKind:   "success",
			wantCalls:  1,
		},
		{
			name:       "transport error",
			result:     predict.TransportError(errors.New("timeout")),
			body:       string(valid),
			wantStatus: http.StatusOK,
			wantKind:   "transport_error",
			wantCalls:  1,
			check: func(t *testing.T, resp predictResponse) {
				assert.Equal(t, "Failed to connect to prediction service: timeout", resp.Display)
			},
		},
		{
			name:       "invalid values",
			result:     predict.Success(">50K"),
			body:       `{"age": 3}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   KindInvalid,
			check: func(t *testing.T, resp predictResponse) {
				assert.NotEmpty(t, resp.Errors[census.FieldAge])
				assert.Equal(t, []string{"is required"}, resp.Errors[census.FieldWorkclass])
			},
		},
		{
			name:       "undecodable",
			result:     predict.Success(">50K"),
			body:       `{"age":`,
			wantStatus: http.StatusBadRequest,
			wantKind:   KindInvalid,
		},
		{
			name:       "not an object",
			result:     predict.Success(">50K"),
			body:       `null`,
			wantStatus: http.StatusBadRequest,
			wantKind:   KindInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, predictor := newTestServer(t, tc.result)

			req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.wantCalls, predictor.calls())

			var resp predictResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantKind, resp.Kind)
			if tc.check != nil {
				tc.check(t, resp)
			}
		})
	}
}

func TestHandlePredict_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, predict.Success(">50K"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/predict", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHealthAndAssets(t *testing.T) {
	srv, _ := newTestServer(t, predict.Success(">50K"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/incomeform.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Body.String(), "var(--if-accent)")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, predict.Success(">50K"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, listener)
	}()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + listener.Addr().String() + "/healthz")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithPredictor(&stubPredictor{}))
	srv := New(orch, WithAddr("127.0.0.1:-1"))
	err := srv.ListenAndServe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server: listen")
}
