package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-incomeform/pkg/census"
	"github.com/goliatone/go-incomeform/pkg/orchestrator"
	"github.com/goliatone/go-incomeform/pkg/predict"
	"github.com/goliatone/go-incomeform/pkg/render"
	"github.com/goliatone/go-incomeform/pkg/renderers/vanilla"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8501"

	defaultShutdownGrace = 5 * time.Second
	maxBodyBytes         = 64 << 10

	// KindInvalid marks API responses rejected by local validation.
	KindInvalid = "invalid"
)

// Option configures the Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if strings.TrimSpace(addr) != "" {
			s.addr = strings.TrimSpace(addr)
		}
	}
}

// WithLogger sets the logger for lifecycle events and handler failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithShutdownGrace bounds how long in-flight requests may run after the
// serve context is cancelled.
func WithShutdownGrace(grace time.Duration) Option {
	return func(s *Server) {
		if grace > 0 {
			s.grace = grace
		}
	}
}

// WithRenderer selects the renderer used for the HTML page.
func WithRenderer(name string) Option {
	return func(s *Server) {
		s.renderer = strings.TrimSpace(name)
	}
}

// Server serves the form page and the prediction API.
type Server struct {
	orch     *orchestrator.Orchestrator
	addr     string
	grace    time.Duration
	renderer string
	logger   *zap.Logger
}

// New constructs a Server around the orchestrator.
func New(orch *orchestrator.Orchestrator, options ...Option) *Server {
	s := &Server{
		orch:   orch,
		addr:   DefaultAddr,
		grace:  defaultShutdownGrace,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(vanilla.AssetsFS()))))
	mux.HandleFunc("/api/predict", s.handlePredict)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handleForm)
	return mux
}

// ListenAndServe listens on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("endpoint", s.orch.Endpoint()),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()

	s.logger.Info("shutting down", zap.Duration("grace", s.grace))
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	<-errChan
	return nil
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	opts := render.RenderOptions{}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form payload", http.StatusBadRequest)
			return
		}
		sub := s.orch.Submit(r.Context(), formValues(r))
		opts = sub.RenderOptions()
	default:
		methodNotAllowedWith(w, http.MethodGet, http.MethodPost)
		return
	}
	opts.Action = "/"

	renderer, err := s.orch.Renderer(s.renderer)
	if err != nil {
		s.logger.Error("resolve renderer", zap.String("renderer", s.renderer), zap.Error(err))
		http.Error(w, "renderer unavailable", http.StatusInternalServerError)
		return
	}

	output, err := s.orch.Render(r.Context(), orchestrator.Request{
		Renderer:      renderer.Name(),
		ThemeVariant:  strings.TrimSpace(r.URL.Query().Get("variant")),
		RenderOptions: opts,
	})
	if err != nil {
		s.logger.Error("render form", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	if _, err := w.Write(output); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}

// predictResponse is the JSON body of /api/predict.
type predictResponse struct {
	Kind    string              `json:"kind"`
	Label   string              `json:"label,omitempty"`
	Message string              `json:"message,omitempty"`
	Display string              `json:"display,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowedWith(w, http.MethodPost)
		return
	}

	values, err := decodeValues(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, predictResponse{Kind: KindInvalid, Message: err.Error()})
		return
	}

	sub := s.orch.Submit(r.Context(), values)
	if sub.Invalid() {
		resp := predictResponse{Kind: KindInvalid, Errors: sub.Errors}
		if len(sub.FormErrors) > 0 {
			resp.Message = strings.Join(sub.FormErrors, "; ")
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	writeJSON(w, http.StatusOK, resultResponse(sub.Result))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowedWith(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func resultResponse(result predict.Result) predictResponse {
	return predictResponse{
		Kind:    string(result.Kind),
		Label:   result.Label,
		Message: result.Message,
		Display: result.Display(),
	}
}

func formValues(r *http.Request) map[string]any {
	values := make(map[string]any, len(r.PostForm))
	for _, name := range census.FieldNames() {
		if _, ok := r.PostForm[name]; ok {
			values[name] = r.PostForm.Get(name)
		}
	}
	return values
}

func decodeValues(body io.Reader) (map[string]any, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if values == nil {
		return nil, errors.New("decode request: expected a JSON object")
	}
	if decoder.More() {
		return nil, errors.New("decode request: unexpected trailing data")
	}
	return values, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func methodNotAllowedWith(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
