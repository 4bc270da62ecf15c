package cek

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TraceRecorder persists finished runs.
type TraceRecorder interface {
	Record(tr Trace) (int64, error)
}

// TraceReader reads persisted runs back. A recorder that also implements it
// serves the traces and trace-get ops instead of the in-memory ring.
type TraceReader interface {
	Recent(n int) ([]Trace, error)
	Get(id int64) (Trace, error)
}

const (
	// DefaultServerMaxSteps bounds a run when the config leaves max_steps
	// unlimited. The actor evaluates one program at a time, so a run that
	// never halts would block every client.
	DefaultServerMaxSteps = 1_000_000

	// maxSnapshots caps the registers returned by one trace request.
	maxSnapshots = 10_000
)

// Server evaluates programs sent over a unix socket. Connections are
// served concurrently but every request is handled by one actor goroutine,
// so at most one machine runs at a time.
type Server struct {
	cfg       Config
	log       zerolog.Logger
	recorder  TraceRecorder
	reader    TraceReader
	requests  chan serverRequest
	done      chan struct{}
	closeOnce sync.Once
	listener  net.Listener
	traces    []Trace
	maxTraces int
	lastID    int64
}

type serverRequest struct {
	msg      map[string]any
	response chan map[string]any
}

// NewServer creates a server; recorder may be nil. An unlimited max_steps
// is replaced by DefaultServerMaxSteps.
func NewServer(cfg Config, log zerolog.Logger, recorder TraceRecorder) *Server {
	maxTraces := cfg.MaxTraces
	if maxTraces <= 0 {
		maxTraces = DefaultConfig().MaxTraces
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultServerMaxSteps
	}
	s := &Server{
		cfg:       cfg,
		log:       log,
		recorder:  recorder,
		requests:  make(chan serverRequest, 64),
		done:      make(chan struct{}),
		maxTraces: maxTraces,
	}
	if r, ok := recorder.(TraceReader); ok {
		s.reader = r
	}
	return s
}

// Listen binds the configured socket path, removing a stale socket first.
func (s *Server) Listen() error {
	os.Remove(s.cfg.Socket)
	l, err := net.Listen("unix", s.cfg.Socket)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Socket, err)
	}
	s.listener = l
	return nil
}

// Start launches the actor goroutine.
func (s *Server) Start() {
	go s.actorLoop()
}

// Run starts the actor and accepts connections. Blocks until the listener
// is closed.
func (s *Server) Run() {
	s.Start()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.ServeConn(conn)
	}
}

// Shutdown stops accepting connections and stops the actor. Requests still
// in flight are answered with an error. It is safe to call more than once.
func (s *Server) Shutdown() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Server) actorLoop() {
	for {
		select {
		case req := <-s.requests:
			select {
			case <-s.done:
				return
			default:
			}
			req.response <- s.handleRequest(req.msg)
		case <-s.done:
			return
		}
	}
}

func (s *Server) sendToActor(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)
	select {
	case <-s.done:
		return errorResponse(id, "server is shutting down")
	default:
	}
	resp := make(chan map[string]any, 1)
	select {
	case s.requests <- serverRequest{msg: msg, response: resp}:
	case <-s.done:
		return errorResponse(id, "server is shutting down")
	}
	select {
	case r := <-resp:
		return r
	case <-s.done:
		return errorResponse(id, "server is shutting down")
	}
}

// ServeConn answers framed requests on conn until the peer disconnects.
func (s *Server) ServeConn(conn net.Conn) {
	defer conn.Close()
	for {
		msg, err := ReadMsg(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warn().Err(err).Msg("read client message")
			}
			return
		}
		resp := s.sendToActor(msg)
		if err := WriteMsg(conn, resp); err != nil {
			s.log.Warn().Err(err).Msg("write client response")
			return
		}
	}
}

func (s *Server) handleRequest(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)
	op, _ := msg["op"].(string)
	switch op {
	case "":
		return s.manual(id)
	case "eval":
		return s.handleEval(id, msg)
	case "trace":
		return s.handleTrace(id, msg)
	case "traces":
		return s.handleTraces(id, msg)
	case "trace-get":
		return s.handleTraceGet(id, msg)
	default:
		return errorResponse(id, fmt.Sprintf("unknown op: %s", op))
	}
}

func (s *Server) manual(id string) map[string]any {
	return map[string]any{
		"id": id,
		"ok": true,
		"value": map[string]any{
			"name": "cek-server",
			"ops": map[string]any{
				"eval":      "Evaluate a program. Params: program (XML or s-expression string)",
				"trace":     "Evaluate a program and return the registers after every step. Params: program (string), limit (number, optional)",
				"traces":    "List recent runs, oldest first. Params: n (number, optional)",
				"trace-get": "Fetch one recorded run. Params: trace (number, the run id)",
			},
		},
	}
}

func (s *Server) options() Options {
	return Options{MaxSteps: s.cfg.MaxSteps, Log: s.log}
}

func (s *Server) handleEval(id string, msg map[string]any) map[string]any {
	src, ok := msg["program"].(string)
	if !ok {
		return errorResponse(id, "eval: missing 'program' string")
	}
	res, err := s.evaluate(src, s.options())
	if err != nil {
		return evalErrorResponse(id, err)
	}
	out, err := DocumentString(res.Output)
	if err != nil {
		return errorResponse(id, fmt.Sprintf("serialize result: %s", err))
	}
	return map[string]any{
		"id": id,
		"ok": res.OK(),
		"value": map[string]any{
			"output":  out,
			"outcome": res.Outcome.String(),
			"steps":   res.Steps,
		},
	}
}

func (s *Server) handleTrace(id string, msg map[string]any) map[string]any {
	src, ok := msg["program"].(string)
	if !ok {
		return errorResponse(id, "trace: missing 'program' string")
	}
	limit := maxSnapshots
	if n, ok := msg["limit"].(float64); ok && n > 0 && int(n) < maxSnapshots {
		limit = int(n)
	}
	snaps := make([]Snapshot, 0)
	truncated := false
	opts := s.options()
	opts.OnStep = func(m *Machine) {
		if len(snaps) < limit {
			snaps = append(snaps, m.Snapshot())
		} else {
			truncated = true
		}
	}
	res, err := s.evaluate(src, opts)
	var resp map[string]any
	if err != nil {
		resp = evalErrorResponse(id, err)
	} else {
		resp = map[string]any{"id": id, "ok": res.OK()}
	}
	resp["value"] = snaps
	if truncated {
		resp["truncated"] = true
	}
	return resp
}

func (s *Server) handleTraces(id string, msg map[string]any) map[string]any {
	n := s.maxTraces
	if v, ok := msg["n"].(float64); ok && int(v) >= 0 && int(v) < n {
		n = int(v)
	}
	if s.reader != nil {
		out, err := s.reader.Recent(n)
		if err != nil {
			return errorResponse(id, fmt.Sprintf("traces: %s", err))
		}
		return map[string]any{"id": id, "ok": true, "value": out}
	}
	if n > len(s.traces) {
		n = len(s.traces)
	}
	out := make([]Trace, n)
	copy(out, s.traces[len(s.traces)-n:])
	return map[string]any{"id": id, "ok": true, "value": out}
}

func (s *Server) handleTraceGet(id string, msg map[string]any) map[string]any {
	v, ok := msg["trace"].(float64)
	if !ok {
		return errorResponse(id, "trace-get: missing numeric 'trace' id")
	}
	traceID := int64(v)
	if s.reader != nil {
		tr, err := s.reader.Get(traceID)
		if err != nil {
			return errorResponse(id, fmt.Sprintf("trace-get: %s", err))
		}
		return map[string]any{"id": id, "ok": true, "value": tr}
	}
	for _, tr := range s.traces {
		if tr.ID == traceID {
			return map[string]any{"id": id, "ok": true, "value": tr}
		}
	}
	return errorResponse(id, fmt.Sprintf("trace-get: trace %d not found", traceID))
}

// evaluate runs one program and records its trace.
func (s *Server) evaluate(src string, opts Options) (*Result, error) {
	doc, err := LoadProgram(src)
	var res *Result
	if err == nil {
		res, err = Evaluate(doc, opts)
	}
	s.record(NewTrace(strings.TrimSpace(src), res, err))
	return res, err
}

func (s *Server) record(tr Trace) {
	if s.recorder != nil {
		id, err := s.recorder.Record(tr)
		if err != nil {
			s.log.Error().Err(err).Msg("persist trace")
		} else {
			tr.ID = id
		}
	} else {
		s.lastID++
		tr.ID = s.lastID
	}
	s.log.Debug().Int64("trace", tr.ID).Bool("failed", tr.Failed()).Int("steps", tr.Steps).Msg("run recorded")
	s.traces = append(s.traces, tr)
	if len(s.traces) > s.maxTraces {
		excess := len(s.traces) - s.maxTraces
		s.traces = s.traces[excess:]
	}
}

func errorResponse(id, errMsg string) map[string]any {
	return map[string]any{"id": id, "ok": false, "error": errMsg}
}

func evalErrorResponse(id string, err error) map[string]any {
	resp := errorResponse(id, err.Error())
	if kind, ok := KindOf(err); ok {
		resp["kind"] = kind.String()
	}
	return resp
}
