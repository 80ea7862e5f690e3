package rpc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"xlmstake/crypto"
	"xlmstake/node"
	"xlmstake/observability"
)

// deadlineSkewSeconds bounds how far in the past an expiresAt may land and
// still be accepted, absorbing clock drift between the caller and this
// process, mirroring the teacher's caller-metadata skew allowance.
const deadlineSkewSeconds = 5

// idempotencyTTL is how long a cached response for a given request id stays
// valid, so a client that retries a dropped HTTP response after a
// successful state mutation gets the original result instead of a second
// one (google/uuid-keyed request dedup per SPEC_FULL's domain stack table).
const idempotencyTTL = 10 * time.Minute

type idempotencyEntry struct {
	response  json.RawMessage
	expiresAt time.Time
}

// handlerFunc decodes params, invokes exactly one engine operation, and
// returns the JSON-encodable result or a taxonomy error.
type handlerFunc func(s *Server, actor crypto.Address, params json.RawMessage) (interface{}, error)

// Server is the JSON-RPC 2.0 front end over a node.Node. One Server binds
// one Node; the dispatch table is built once at construction from the six
// handler files (token_handlers.go, staking_handlers.go, ...,
// coin_handlers.go).
type Server struct {
	node    *node.Node
	log     *slog.Logger
	methods map[string]handlerFunc

	callerMetadataMaxTTL time.Duration
	callerNonceMu        sync.Mutex
	callerNonces         map[string]callerNonceState

	idempotencyMu sync.Mutex
	idempotency   map[string]idempotencyEntry
}

// NewServer builds a Server around n. log defaults to slog.Default() when
// nil, matching the rest of the ambient stack's "never nil logger" rule.
func NewServer(n *node.Node, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		node:                 n,
		log:                  log,
		callerMetadataMaxTTL: time.Hour,
		callerNonces:         make(map[string]callerNonceState),
		idempotency:          make(map[string]idempotencyEntry),
	}
	s.methods = s.buildDispatchTable()
	return s
}

func (s *Server) buildDispatchTable() map[string]handlerFunc {
	m := make(map[string]handlerFunc)
	registerTokenHandlers(m)
	registerStakingHandlers(m)
	registerLendingHandlers(m)
	registerAMMHandlers(m)
	registerGovernanceHandlers(m)
	registerCoinHandlers(m)
	return m
}

// baseParams is embedded by every method's params struct: caller identifies
// the authenticating principal (spec.md §4's "signer authenticates as the
// named principal" rule — this Go port checks role/ownership, not
// signatures, so caller is taken on trust from the envelope the same way
// the teacher's RPC layer trusts an already-verified JWT subject) and
// requestId is the optional idempotency key.
type baseParams struct {
	Caller    string               `json:"caller"`
	RequestID string               `json:"requestId,omitempty"`
	Metadata  callerMetadataParams `json:"meta,omitempty"`
}

// ServeHTTP implements http.Handler, dispatching each JSON-RPC 2.0 request
// to its registered handler and recording module metrics/logs around the
// call, mirroring the teacher's rpc/http.go request lifecycle.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeHTTPError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResponse(w, nil, nil, &rpcError{Code: codeParseError, Message: "invalid JSON"})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeResponse(w, req.ID, nil, &rpcError{Code: codeInvalidRequest, Message: "malformed request"})
		return
	}

	module, _ := splitMethod(req.Method)
	start := time.Now()
	result, rpcErr := s.dispatch(req.Method, req.Params)
	status := http.StatusOK
	if rpcErr != nil {
		status = statusForError(rpcErr)
	}
	observability.ModuleMetrics().Observe(module, req.Method, status, time.Since(start))
	if rpcErr != nil {
		s.log.Warn("rpc call failed", "method", req.Method, "error", rpcErr.Message)
	}
	s.writeResponse(w, req.ID, result, rpcErr)
}

func (s *Server) dispatch(method string, params json.RawMessage) (interface{}, *rpcError) {
	handler, ok := s.methods[method]
	if !ok {
		return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("unknown method %q", method)}
	}

	var base baseParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &base); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params envelope"}
		}
	}

	if base.RequestID != "" {
		if cached, ok := s.lookupIdempotent(base.RequestID); ok {
			var out interface{}
			_ = json.Unmarshal(cached, &out)
			return out, nil
		}
	}

	var actor crypto.Address
	var err error
	if base.Caller != "" {
		actor, err = crypto.DecodeAddress(base.Caller)
		if err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: "invalid caller address"}
		}
		if err := s.validateCallerMetadata(base.Caller, base.Metadata); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
	}

	result, err := handler(s, actor, params)
	if err != nil {
		return nil, &rpcError{Code: codeEngineError, Message: err.Error(), Data: err.Error()}
	}

	if base.RequestID != "" {
		s.storeIdempotent(base.RequestID, result)
	}
	return result, nil
}

func (s *Server) lookupIdempotent(requestID string) (json.RawMessage, bool) {
	s.idempotencyMu.Lock()
	defer s.idempotencyMu.Unlock()
	entry, ok := s.idempotency[requestID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.idempotency, requestID)
		return nil, false
	}
	return entry.response, true
}

func (s *Server) storeIdempotent(requestID string, result interface{}) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	s.idempotencyMu.Lock()
	defer s.idempotencyMu.Unlock()
	s.idempotency[requestID] = idempotencyEntry{response: raw, expiresAt: time.Now().Add(idempotencyTTL)}
}

// NewRequestID mints a fresh idempotency key for callers
// that want at-most-once semantics for a submitted operation without
// tracking their own nonce.
func NewRequestID() string { return uuid.NewString() }

func (s *Server) writeResponse(w http.ResponseWriter, id json.RawMessage, result interface{}, rpcErr *rpcError) {
	resp := response{JSONRPC: "2.0", ID: id, Result: result, Error: rpcErr}
	w.Header().Set("Content-Type", "application/json")
	if rpcErr != nil {
		w.WriteHeader(statusForError(rpcErr))
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeHTTPError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: codeInvalidRequest, Message: msg}})
}

func statusForError(err *rpcError) int {
	switch err.Code {
	case codeParseError, codeInvalidRequest, codeInvalidParams:
		return http.StatusBadRequest
	case codeMethodNotFound:
		return http.StatusNotFound
	case codeEngineError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func splitMethod(method string) (module, action string) {
	for i := 0; i < len(method); i++ {
		if method[i] == '_' {
			return method[:i], method[i+1:]
		}
	}
	return method, ""
}
