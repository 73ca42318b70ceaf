// ABOUTME: HTTP control server for a headless duck-sort session, built on the chi router.
// ABOUTME: Every session call is marshaled onto the host loop; run history is served from the SQLite store.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/2389-research/ducksort/animation"
	"github.com/2389-research/ducksort/history"
	"github.com/2389-research/ducksort/hostloop"
	"github.com/2389-research/ducksort/pond"
	"github.com/2389-research/ducksort/render"
	"github.com/2389-research/ducksort/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed content/home.md
var contentFS embed.FS

// SessionHeader carries the server's session ID on every response.
const SessionHeader = "X-Ducksort-Session"

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:2389"

// ServerConfig holds configuration for creating a new Server.
type ServerConfig struct {
	Addr        string
	History     *history.Store // nil disables the /runs routes
	Logger      animation.Logger
	CallTimeout time.Duration // bound on one host-loop call (default 5s)
}

// Server exposes one session over HTTP.
type Server struct {
	router  chi.Router
	addr    string
	loop    *hostloop.Loop
	sess    *session.Session
	history *history.Store
	log     animation.Logger
	id      uuid.UUID
	home    template.HTML
	timeout time.Duration
	svg     *render.RenderCache
}

// NewServer creates a Server for sess. The session must only ever be driven
// from loop.
func NewServer(loop *hostloop.Loop, sess *session.Session, cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	home, err := renderHome()
	if err != nil {
		return nil, err
	}
	s := &Server{
		addr:    cfg.Addr,
		loop:    loop,
		sess:    sess,
		history: cfg.History,
		log:     animation.OrDiscard(cfg.Logger),
		id:      uuid.New(),
		home:    home,
		timeout: cfg.CallTimeout,
		svg:     render.NewRenderCache(render.SVG, time.Minute),
	}
	s.router = s.buildRouter()
	return s, nil
}

// ID returns the session ID reported in SessionHeader.
func (s *Server) ID() uuid.UUID { return s.id }

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Printf("web listening addr=%s session=%s", s.addr, s.id)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))
	r.Use(s.sessionHeader)

	r.Get("/", s.handleHome)
	r.Get("/health", s.handleHealth)
	r.Get("/state", s.handleState)
	r.Get("/events", s.handleEvents)
	r.Get("/pond.svg", s.handlePondSVG)

	r.Post("/start", s.action(func(sess *session.Session) { sess.Start() }))
	r.Post("/pause", s.action(func(sess *session.Session) { sess.Pause() }))
	r.Post("/resume", s.action(func(sess *session.Session) { sess.Resume() }))
	r.Post("/stop", s.action(func(sess *session.Session) { sess.Stop() }))
	r.Post("/step", s.action(func(sess *session.Session) { sess.Step() }))
	r.Post("/skip", s.action(func(sess *session.Session) { sess.Skip() }))
	r.Post("/speed", s.handleSpeed)
	r.Post("/ducks", s.handleDucks)
	r.Post("/highlight/{slot}", s.handleHighlight)

	r.Route("/runs", func(r chi.Router) {
		r.Use(s.requireHistory)
		r.Get("/", s.handleRunList)
		r.Get("/{runID}", s.handleRunGet)
		r.Delete("/{runID}", s.handleRunDelete)
	})

	return r
}

func (s *Server) sessionHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(SessionHeader, s.id.String())
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireHistory(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.history == nil {
			writeError(w, http.StatusServiceUnavailable, "run history is disabled")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// call runs fn against the session on the host loop.
func (s *Server) call(r *http.Request, fn func(*session.Session)) error {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	return s.loop.Do(ctx, func() { fn(s.sess) })
}

// callState runs fn and then captures the session state in the same turn.
func (s *Server) callState(w http.ResponseWriter, r *http.Request, fn func(*session.Session)) {
	var st session.State
	err := s.call(r, func(sess *session.Session) {
		if fn != nil {
			fn(sess)
		}
		st = sess.State()
	})
	if err != nil {
		s.writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) action(fn func(*session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.callState(w, r, fn)
	}
}

func (s *Server) writeCallError(w http.ResponseWriter, err error) {
	s.log.Printf("web host loop call failed err=%v", err)
	switch {
	case errors.Is(err, hostloop.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "session closed")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "session busy")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>ducksort</title></head>
<body>
{{.Body}}
<p><small>session {{.Session}}</small></p>
</body>
</html>
`))

func renderHome() (template.HTML, error) {
	src, err := contentFS.ReadFile("content/home.md")
	if err != nil {
		return "", fmt.Errorf("read home page: %w", err)
	}
	var buf bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render home page: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Body    template.HTML
		Session string
	}{s.home, s.id.String()}
	if err := homeTemplate.Execute(w, data); err != nil {
		s.log.Printf("web render home failed err=%v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "session": s.id.String()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.callState(w, r, nil)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = n
	}
	var events []json.RawMessage
	err := s.call(r, func(sess *session.Session) {
		for _, evt := range sess.Events() {
			if evt.Seq <= since {
				continue
			}
			data, err := json.Marshal(evt)
			if err != nil {
				s.log.Printf("web marshal event failed seq=%d err=%v", evt.Seq, err)
				continue
			}
			events = append(events, data)
		}
	})
	if err != nil {
		s.writeCallError(w, err)
		return
	}
	if events == nil {
		events = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handlePondSVG(w http.ResponseWriter, r *http.Request) {
	var snap pond.Snapshot
	if err := s.call(r, func(sess *session.Session) { snap = sess.Pond().Snapshot() }); err != nil {
		s.writeCallError(w, err)
		return
	}
	data, err := s.svg.Render(r.Context(), snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type speedRequest struct {
	Speed float64 `json:"speed"`
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var speedErr error
	err := s.call(r, func(sess *session.Session) { speedErr = sess.SetSpeed(req.Speed) })
	if err != nil {
		s.writeCallError(w, err)
		return
	}
	if speedErr != nil {
		writeError(w, http.StatusBadRequest, speedErr.Error())
		return
	}
	s.callState(w, r, nil)
}

type ducksRequest struct {
	Values []int `json:"values"`
}

func (s *Server) handleDucks(w http.ResponseWriter, r *http.Request) {
	var req ducksRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	s.callState(w, r, func(sess *session.Session) { sess.NewDucks(req.Values) })
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "slot must be an integer")
		return
	}
	var hlErr error
	if err := s.call(r, func(sess *session.Session) { hlErr = sess.Highlight(slot) }); err != nil {
		s.writeCallError(w, err)
		return
	}
	if hlErr != nil {
		writeError(w, http.StatusNotFound, hlErr.Error())
		return
	}
	s.callState(w, r, nil)
}

// runView is the JSON form of a recorded run.
type runView struct {
	RunID       string    `json:"run_id"`
	Scenario    string    `json:"scenario"`
	Initial     []int     `json:"initial"`
	Final       []int     `json:"final"`
	Comparisons int       `json:"comparisons"`
	Swaps       int       `json:"swaps"`
	Steps       int       `json:"steps"`
	Retries     int       `json:"retries"`
	Speed       float64   `json:"speed"`
	Completed   bool      `json:"completed"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMS  int64     `json:"duration_ms"`
}

func newRunView(r history.Run) runView {
	return runView{
		RunID:       r.RunID.String(),
		Scenario:    r.Scenario,
		Initial:     r.Initial,
		Final:       r.Final,
		Comparisons: r.Comparisons,
		Swaps:       r.Swaps,
		Steps:       r.Steps,
		Retries:     r.Retries,
		Speed:       r.Speed,
		Completed:   r.Completed,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		DurationMS:  r.Duration().Milliseconds(),
	}
}

func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.history.ListRuns(limit)
	if err != nil {
		s.log.Printf("web list runs failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	out := make([]runView, 0, len(runs))
	for _, run := range runs {
		out = append(out, newRunView(run))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	id, err := ulid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return ulid.ULID{}, false
	}
	return id, true
}

func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseRunID(w, r)
	if !ok {
		return
	}
	run, err := s.history.GetRun(id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.log.Printf("web get run failed run_id=%s err=%v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	events, err := s.history.Events(id)
	if err != nil {
		s.log.Printf("web run events failed run_id=%s err=%v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run":    newRunView(run),
		"events": events,
	})
}

func (s *Server) handleRunDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseRunID(w, r)
	if !ok {
		return
	}
	err := s.history.DeleteRun(id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.log.Printf("web delete run failed run_id=%s err=%v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
