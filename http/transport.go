package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-currency-sync/domain"
	"go-currency-sync/engine"
	"go-currency-sync/limits"
	"go-currency-sync/transfergo"
	"go-currency-sync/view"
)

// Server dependencies for HTTP Server functions. Every browser session gets
// its own converter, addressed by an opaque id.
type Server struct {
	rates  transfergo.Service
	limits limits.Table
	logger log.Logger
	opts   []engine.Option

	mu       sync.Mutex
	sessions map[string]*view.Adapter

	router *http.ServeMux
}

// NewServer constructs a session server. The engine options are applied to
// every converter it creates.
func NewServer(rates transfergo.Service, table limits.Table, logger log.Logger, opts ...engine.Option) *Server {
	server := &Server{
		rates:    rates,
		limits:   table,
		logger:   logger,
		opts:     opts,
		sessions: map[string]*view.Adapter{},
		router:   http.NewServeMux(),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("/api/sessions", s.createSession())
	s.router.Handle("/api/sessions/", s.session())
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// createSession produces the HTTP handler starting a new converter session
func (s *Server) createSession() http.HandlerFunc {

	// response for marshalling JSON responses to return to clients
	type response struct {
		ID   string    `json:"id"`
		View view.Data `json:"view"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			rw.Write([]byte(`{"error": "method not allowed"}`))
			return
		}

		id := uuid.NewString()
		opts := append([]engine.Option{
			engine.WithLogger(log.With(s.logger, "session", id)),
		}, s.opts...)
		adapter := view.NewAdapter(engine.New(s.rates, s.limits, opts...))

		s.mu.Lock()
		s.sessions[id] = adapter
		s.mu.Unlock()

		s.logger.Log("msg", "session created", "session", id)

		enc := json.NewEncoder(rw)
		if err := enc.Encode(&response{ID: id, View: adapter.Render()}); err != nil {
			rw.WriteHeader(http.StatusInternalServerError)
			rw.Write([]byte(`{"error": "failed json encoding"}`))
		}
	}
}

// session produces the HTTP handler for reading, driving and ending one
// converter session
func (s *Server) session() http.HandlerFunc {

	// request for unmarshalling JSON intents posted by clients
	type request struct {
		Type     string `json:"type"`               // editAmount | selectCurrency | swap | submit
		Side     string `json:"side,omitempty"`     // source | target
		Value    string `json:"value,omitempty"`    // decimal, empty means cleared
		Currency string `json:"currency,omitempty"` // currency code for selectCurrency
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		rw.Header().Set("Content-Type", "application/json")

		id, rest, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")

		s.mu.Lock()
		adapter, ok := s.sessions[id]
		s.mu.Unlock()
		if !ok {
			rw.WriteHeader(http.StatusNotFound)
			rw.Write([]byte(`{"error": "unknown session"}`))
			return
		}

		switch {
		case rest == "" && r.Method == http.MethodGet:
			// fall through to render below

		case rest == "" && r.Method == http.MethodDelete:
			s.mu.Lock()
			delete(s.sessions, id)
			s.mu.Unlock()
			adapter.Close()
			s.logger.Log("msg", "session closed", "session", id)
			rw.Write([]byte(`{}`))
			return

		case rest == "intents" && r.Method == http.MethodPost:
			var request request
			if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
				rw.WriteHeader(http.StatusBadRequest)
				rw.Write([]byte(`{"error": "invalid json"}`))
				return
			}
			if !s.dispatch(adapter, request.Type, request.Side, request.Value, request.Currency) {
				rw.WriteHeader(http.StatusBadRequest)
				rw.Write([]byte(`{"error": "invalid intent"}`))
				return
			}

		default:
			rw.WriteHeader(http.StatusNotFound)
			rw.Write([]byte(`{"error": "not found"}`))
			return
		}

		enc := json.NewEncoder(rw)
		if err := enc.Encode(adapter.Render()); err != nil {
			rw.WriteHeader(http.StatusInternalServerError)
			rw.Write([]byte(`{"error": "failed json encoding"}`))
		}
	}
}

// dispatch applies one intent to a session, reporting whether it was well
// formed.
func (s *Server) dispatch(adapter *view.Adapter, kind, side, value, currency string) bool {
	switch kind {
	case "editAmount":
		var amount *decimal.Decimal
		if value != "" {
			parsed, err := decimal.NewFromString(value)
			if err != nil {
				return false
			}
			amount = &parsed
		}
		switch side {
		case "source":
			adapter.SourceAmountChanged(amount)
		case "target":
			adapter.TargetAmountChanged(amount)
		default:
			return false
		}
		return true

	case "selectCurrency":
		code := domain.Currency(currency)
		if !code.Known() {
			return false
		}
		switch side {
		case "source":
			adapter.SourceCurrencySelected(code)
		case "target":
			adapter.TargetCurrencySelected(code)
		default:
			return false
		}
		return true

	case "swap":
		adapter.Swapped()
		return true

	case "submit":
		adapter.Submitted()
		return true
	}
	return false
}
