package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/tabmesh/core"
	"github.com/hupe1980/tabmesh/logging"
)

// Options configure a bridge Server.
type Options struct {
	// Logger receives bridge diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// CommandTimeout bounds how long a host call waits for the extension's
	// reply before failing. Defaults to 30s.
	CommandTimeout time.Duration

	// PollTimeout bounds how long GET /v1/commands blocks when no command is
	// pending before answering 204. Defaults to 25s, below common proxy
	// idle timeouts.
	PollTimeout time.Duration

	// QueueSize is the capacity of the outgoing command queue. Defaults
	// to 64.
	QueueSize int

	// Registry receives the bridge's Prometheus collectors. Defaults to a
	// private registry served on /metrics.
	Registry *prometheus.Registry
}

// Server is a core.Host backed by a browser extension speaking the bridge
// protocol. Host calls enqueue commands, the extension drains them via
// long-poll and posts replies; each call blocks until its reply arrives, so
// callers get the same sequential awaited semantics as a local host.
type Server struct {
	logger      logging.Logger
	cmdTimeout  time.Duration
	pollTimeout time.Duration

	outgoing chan command

	mu      sync.Mutex
	waiters map[string]chan reply
	closed  bool

	done     chan struct{}
	triggers chan struct{}

	router chi.Router

	commandsTotal *prometheus.CounterVec
	repliesTotal  *prometheus.CounterVec
	triggersTotal prometheus.Counter
}

var _ core.Host = (*Server)(nil)

// NewServer creates a bridge server with optional overrides. Attach Router()
// to an http.Server to serve the extension endpoints.
func NewServer(optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger:         logging.NoOpLogger{},
		CommandTimeout: 30 * time.Second,
		PollTimeout:    25 * time.Second,
		QueueSize:      64,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		logger:      opts.Logger,
		cmdTimeout:  opts.CommandTimeout,
		pollTimeout: opts.PollTimeout,
		outgoing:    make(chan command, opts.QueueSize),
		waiters:     make(map[string]chan reply),
		done:        make(chan struct{}),
		triggers:    make(chan struct{}, 1),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabmesh_bridge_commands_total",
			Help: "Commands issued to the extension by action.",
		}, []string{"action"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabmesh_bridge_replies_total",
			Help: "Replies received from the extension by status.",
		}, []string{"status"}),
		triggersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabmesh_bridge_triggers_total",
			Help: "Organize triggers received from the extension.",
		}),
	}

	opts.Registry.MustRegister(s.commandsTotal, s.repliesTotal, s.triggersTotal)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/v1/commands", s.handleCommands)
	r.Post("/v1/replies", s.handleReplies)
	r.Post("/v1/trigger", s.handleTrigger)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// Router returns the HTTP handler serving the extension endpoints.
func (s *Server) Router() http.Handler { return s.router }

// Triggers emits one value per organize request from the extension. Pending
// triggers are coalesced; a consumer that is mid-run sees at most one queued
// trigger afterwards.
func (s *Server) Triggers() <-chan struct{} { return s.triggers }

// Close releases every blocked host call with core.ErrHostClosed and stops
// accepting new commands. Safe to call more than once.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// exec enqueues a command and blocks until the extension's reply, the
// context's cancellation, the command timeout or Close.
func (s *Server) exec(ctx context.Context, cmd command) (reply, error) {
	cmd.ID = uuid.New().String()

	ch := make(chan reply, 1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return reply{}, core.ErrHostClosed
	}
	s.waiters[cmd.ID] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.waiters, cmd.ID)
		s.mu.Unlock()
	}()

	select {
	case s.outgoing <- cmd:
	case <-ctx.Done():
		return reply{}, ctx.Err()
	case <-s.done:
		return reply{}, core.ErrHostClosed
	}

	s.commandsTotal.WithLabelValues(cmd.Action).Inc()
	s.logger.Debug("command queued", "id", cmd.ID, "action", cmd.Action)

	timer := time.NewTimer(s.cmdTimeout)
	defer timer.Stop()

	select {
	case rep := <-ch:
		if !rep.OK {
			s.repliesTotal.WithLabelValues("error").Inc()
			return reply{}, fmt.Errorf("extension rejected %s: %s", cmd.Action, rep.Error)
		}
		s.repliesTotal.WithLabelValues("ok").Inc()
		return rep, nil
	case <-timer.C:
		s.repliesTotal.WithLabelValues("timeout").Inc()
		return reply{}, fmt.Errorf("no reply for %s within %s", cmd.Action, s.cmdTimeout)
	case <-ctx.Done():
		return reply{}, ctx.Err()
	case <-s.done:
		return reply{}, core.ErrHostClosed
	}
}

// CurrentWindow implements core.Host.
func (s *Server) CurrentWindow(ctx context.Context) (core.Window, error) {
	rep, err := s.exec(ctx, command{Action: actionCurrentWindow})
	if err != nil {
		return core.Window{}, err
	}
	if len(rep.Windows) == 0 {
		return core.Window{}, core.ErrWindowNotFound
	}
	return rep.Windows[0].toWindow(), nil
}

// Windows implements core.Host.
func (s *Server) Windows(ctx context.Context) ([]core.Window, error) {
	rep, err := s.exec(ctx, command{Action: actionWindows})
	if err != nil {
		return nil, err
	}
	windows := make([]core.Window, len(rep.Windows))
	for i, w := range rep.Windows {
		windows[i] = w.toWindow()
	}
	return windows, nil
}

// MoveTab implements core.Host.
func (s *Server) MoveTab(ctx context.Context, tab core.TabID, window core.WindowID, index int) (core.Tab, error) {
	rep, err := s.exec(ctx, command{
		Action:   actionMove,
		TabIDs:   []core.TabID{tab},
		WindowID: window,
		Index:    &index,
	})
	if err != nil {
		return core.Tab{}, err
	}
	if rep.Tab == nil {
		return core.Tab{}, errors.New("move reply missing tab")
	}
	return rep.Tab.toTab(), nil
}

// RemoveTabs implements core.Host.
func (s *Server) RemoveTabs(ctx context.Context, tabs []core.TabID) error {
	_, err := s.exec(ctx, command{Action: actionClose, TabIDs: tabs})
	return err
}

// GroupTabs implements core.Host.
func (s *Server) GroupTabs(ctx context.Context, tabs []core.TabID, window core.WindowID) (core.GroupID, error) {
	rep, err := s.exec(ctx, command{Action: actionGroup, TabIDs: tabs, WindowID: window})
	if err != nil {
		return core.NoGroup, err
	}
	return rep.GroupID, nil
}

// SetGroupTitle implements core.Host.
func (s *Server) SetGroupTitle(ctx context.Context, group core.GroupID, title string) error {
	_, err := s.exec(ctx, command{Action: actionTitleGroup, GroupID: group, Title: title})
	return err
}

// UngroupTabs implements core.Host.
func (s *Server) UngroupTabs(ctx context.Context, tabs []core.TabID) error {
	_, err := s.exec(ctx, command{Action: actionUngroup, TabIDs: tabs})
	return err
}

// handleCommands serves the extension's long-poll. It blocks until at least
// one command is pending, then drains whatever else is immediately available
// into the same response. 204 signals an empty poll cycle.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	timer := time.NewTimer(s.pollTimeout)
	defer timer.Stop()

	var batch []command
	select {
	case cmd := <-s.outgoing:
		batch = append(batch, cmd)
	case <-timer.C:
		w.WriteHeader(http.StatusNoContent)
		return
	case <-r.Context().Done():
		return
	case <-s.done:
		w.WriteHeader(http.StatusGone)
		return
	}

	for {
		select {
		case cmd := <-s.outgoing:
			batch = append(batch, cmd)
			continue
		default:
		}
		break
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(batch); err != nil {
		s.logger.Error("encoding command batch failed", "error", err)
	}
}

// handleReplies routes a posted reply to the waiter registered under its ID.
// Replies for unknown IDs (timed out or cancelled calls) are dropped.
func (s *Server) handleReplies(w http.ResponseWriter, r *http.Request) {
	var rep reply
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		http.Error(w, "invalid reply body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	ch, ok := s.waiters[rep.ID]
	s.mu.Unlock()

	if !ok {
		s.logger.Warn("reply for unknown command", "id", rep.ID)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	// A repeated reply for the same ID finds the buffer already full; drop
	// it rather than block the handler.
	select {
	case ch <- rep:
		w.WriteHeader(http.StatusOK)
	default:
		s.logger.Warn("duplicate reply dropped", "id", rep.ID)
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) handleTrigger(w http.ResponseWriter, _ *http.Request) {
	s.triggersTotal.Inc()
	select {
	case s.triggers <- struct{}{}:
	default:
	}
	s.logger.Info("organize trigger received")
	w.WriteHeader(http.StatusAccepted)
}
