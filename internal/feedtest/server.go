// Package feedtest runs an in-process console backend for tests: a state
// feed websocket, the command endpoints and the media offer endpoint.
package feedtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is one recorded call to a command or offer endpoint.
type Request struct {
	Path      string
	RequestID string
	Body      map[string]any
	Raw       []byte
}

// Response is a canned reply for an endpoint.
type Response struct {
	Status int
	Body   string
}

// OfferFunc answers a media offer. Returning a non-2xx status fails the
// negotiation.
type OfferFunc func(sdp, typ string) Response

// Server is a fake console backend.
type Server struct {
	*httptest.Server

	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	accepted  int
	initial   []byte
	requests  []Request
	responses map[string]Response
	offer     OfferFunc
	state     []byte
	changed   chan struct{}
}

// Endpoint paths served by the backend.
const (
	PathFeed    = "/ws"
	PathState   = "/api/state"
	PathMode    = "/api/cmd_mode"
	PathEStop   = "/api/estop"
	PathOffer   = "/api/webrtc/offer"
	defaultWait = 2 * time.Second
)

// NewServer starts a backend that accepts every command.
func NewServer() *Server {
	s := &Server{
		clients: make(map[*websocket.Conn]struct{}),
		responses: map[string]Response{
			PathMode:  {Status: http.StatusOK, Body: `{"ok": true}`},
			PathEStop: {Status: http.StatusOK, Body: `{"ok": true}`},
		},
		offer: func(sdp, typ string) Response {
			return Response{Status: http.StatusOK, Body: `{"sdp": "v=0\r\n", "type": "answer"}`}
		},
		state:   []byte(`{}`),
		changed: make(chan struct{}),
	}

	r := mux.NewRouter()
	r.HandleFunc(PathFeed, s.handleFeed).Methods("GET")
	r.HandleFunc(PathState, s.handleState).Methods("GET")
	r.HandleFunc(PathMode, s.handleCommand).Methods("POST")
	r.HandleFunc(PathEStop, s.handleCommand).Methods("POST")
	r.HandleFunc(PathOffer, s.handleOffer).Methods("POST")

	s.Server = httptest.NewServer(r)
	return s
}

// Close drops feed clients and shuts the server down.
func (s *Server) Close() {
	s.DropClients()
	s.Server.Close()
}

// SetInitial sets a frame sent to every client as soon as it connects.
func (s *Server) SetInitial(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial = []byte(frame)
	s.state = []byte(frame)
}

// SetResponse overrides the reply for a command endpoint.
func (s *Server) SetResponse(path string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = resp
}

// SetOffer overrides how media offers are answered.
func (s *Server) SetOffer(fn OfferFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offer = fn
}

// Push sends a frame to every connected feed client and makes it the
// current state.
func (s *Server) Push(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = []byte(frame)
	for c := range s.clients {
		_ = c.WriteMessage(websocket.TextMessage, []byte(frame))
	}
}

// DropClients closes every feed connection from the server side.
func (s *Server) DropClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
	s.notify()
}

// Clients returns how many feed connections are open.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Accepted returns how many feed connections were ever accepted.
func (s *Server) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// WaitForClients blocks until n feed connections are open.
func (s *Server) WaitForClients(n int) bool {
	deadline := time.After(defaultWait)
	for {
		s.mu.Lock()
		count, changed := len(s.clients), s.changed
		s.mu.Unlock()
		if count == n {
			return true
		}
		select {
		case <-changed:
		case <-deadline:
			return false
		}
	}
}

// Requests returns every recorded command and offer request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the recorded requests for one path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// notify wakes WaitForClients. Callers hold s.mu.
func (s *Server) notify() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.accepted++
	if s.initial != nil {
		_ = conn.WriteMessage(websocket.TextMessage, s.initial)
	}
	s.notify()
	s.mu.Unlock()

	// Drain until the client goes away so close frames are processed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		s.notify()
	}
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(state)
}

func (s *Server) record(r *http.Request) (Request, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return Request{}, err
	}
	req := Request{
		Path:      r.URL.Path,
		RequestID: r.Header.Get("X-Request-ID"),
		Raw:       raw,
	}
	_ = json.Unmarshal(raw, &req.Body)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return req, nil
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	req, err := s.record(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	resp := s.responses[req.Path]
	s.mu.Unlock()
	write(w, resp)
}

func (s *Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	req, err := s.record(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sdp, _ := req.Body["sdp"].(string)
	typ, _ := req.Body["type"].(string)

	s.mu.Lock()
	fn := s.offer
	s.mu.Unlock()
	write(w, fn(sdp, typ))
}

func write(w http.ResponseWriter, resp Response) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}
