// Package server exposes the protocol and cipher operations over JSON HTTP.
//
// Routes:
//
//	POST /api/bb84     {n_bits, eve_prob, eve_enabled?, seed?} → protocol run
//	POST /api/encrypt  {message, key}                          → envelope
//	POST /api/decrypt  {encrypted_data, key}                   → {plaintext}
//	GET  /healthz                                              → health report
//	GET  /metrics                                              → Prometheus text
//
// The server is a thin collaborator over the core packages: it validates
// transport-level input, translates error kinds into status codes, and
// records metrics. All simulation and cipher logic lives in pkg/bb84 and
// pkg/seal.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/qkdlab/bb84-go/internal/constants"
	qerrors "github.com/qkdlab/bb84-go/internal/errors"
	"github.com/qkdlab/bb84-go/pkg/bb84"
	"github.com/qkdlab/bb84-go/pkg/metrics"
	"github.com/qkdlab/bb84-go/pkg/seal"
	"github.com/qkdlab/bb84-go/pkg/version"
)

// defaultEveProb is the interception probability assumed when a run request
// omits eve_prob.
const defaultEveProb = 0.3

// Options configures a Server. Zero values get sensible defaults.
type Options struct {
	// Logger receives request logs. Defaults to a silent logger.
	Logger *metrics.Logger

	// Collector receives run and cipher metrics. Defaults to a fresh one.
	Collector *metrics.Collector

	// AllowedOrigin is the CORS origin, "*" by default. The browser
	// frontend is served from another origin.
	AllowedOrigin string
}

// Server handles the JSON API.
type Server struct {
	log       *metrics.Logger
	collector *metrics.Collector
	origin    string
	mux       *http.ServeMux
}

// New creates a Server with all routes mounted.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = metrics.NullLogger()
	}
	if opts.Collector == nil {
		opts.Collector = metrics.NewCollector(nil)
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}

	s := &Server{
		log:       opts.Logger,
		collector: opts.Collector,
		origin:    opts.AllowedOrigin,
		mux:       http.NewServeMux(),
	}

	s.mux.Handle("/api/bb84", s.api(s.handleRun))
	s.mux.Handle("/api/encrypt", s.api(s.handleEncrypt))
	s.mux.Handle("/api/decrypt", s.api(s.handleDecrypt))

	health := metrics.NewHealthCheck(s.collector, version.String())
	s.mux.Handle("/healthz", health.Handler())
	s.mux.Handle("/metrics", metrics.NewPrometheusExporter(s.collector, "bb84_sim").Handler())

	return s
}

// Handler returns the root handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves the API on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("listening", metrics.Fields{"addr": addr})
	return metrics.NewHTTPServer(addr, s.mux).ListenAndServe()
}

// api wraps a JSON POST handler with CORS and method filtering.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			h(w, r)
		default:
			s.writeErrorKind(w, http.StatusMethodNotAllowed, qerrors.KindInvalidParameter, "method not allowed")
		}
	})
}

// --- Requests and responses ---

type runRequest struct {
	NBits      *int     `json:"n_bits"`
	EveProb    *float64 `json:"eve_prob"`
	EveEnabled *bool    `json:"eve_enabled"`
	Seed       *int64   `json:"seed"`
}

type encryptRequest struct {
	Message string      `json:"message"`
	Key     interface{} `json:"key"`
}

type decryptRequest struct {
	EncryptedData *seal.Envelope `json:"encrypted_data"`
	Key           interface{}    `json:"key"`
}

type plaintextResponse struct {
	Plaintext string `json:"plaintext"`
}

type errorResponse struct {
	Error string       `json:"error"`
	Kind  qerrors.Kind `json:"kind"`
}

// --- Handlers ---

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if !s.decode(w, r, &req) {
		return
	}

	cfg := bb84.Config{NumBits: constants.DefaultNumBits, Seed: req.Seed}
	if req.NBits != nil {
		cfg.NumBits = *req.NBits
	}
	cfg.Eve.Prob = defaultEveProb
	if req.EveProb != nil {
		cfg.Eve.Prob = *req.EveProb
	}
	// Enablement defaults to a positive probability; eve_enabled overrides.
	cfg.Eve.Enabled = cfg.Eve.Prob > 0
	if req.EveEnabled != nil {
		cfg.Eve.Enabled = *req.EveEnabled
	}

	start := time.Now()
	res, err := bb84.Run(r.Context(), cfg)
	if err != nil {
		s.collector.RunFailed()
		s.writeError(w, err)
		return
	}

	intercepts := 0
	for _, bit := range res.EveBits {
		if bit != nil {
			intercepts++
		}
	}
	s.collector.RunCompleted(cfg.NumBits, len(res.AliceKey), intercepts, res.QBER, time.Since(start))
	s.log.Info("protocol run", metrics.Fields{
		"n_bits":      cfg.NumBits,
		"eve_enabled": cfg.Eve.Enabled,
		"eve_prob":    cfg.Eve.Prob,
		"qber":        res.QBER,
		"sifted":      len(res.AliceKey),
	})
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req encryptRequest
	if !s.decode(w, r, &req) {
		return
	}

	_, end := metrics.StartSpan(r.Context(), metrics.SpanEncrypt)
	env, err := seal.Encrypt(req.Message, req.Key)
	end(err)
	if err != nil {
		s.collector.EncryptFailed()
		s.writeError(w, err)
		return
	}
	s.collector.EncryptCompleted()
	s.writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req decryptRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.EncryptedData == nil {
		s.collector.DecryptFailed(false)
		s.writeError(w, qerrors.ErrMalformedEnvelope)
		return
	}

	_, end := metrics.StartSpan(r.Context(), metrics.SpanDecrypt)
	plaintext, err := seal.Decrypt(req.EncryptedData, req.Key)
	end(err)
	if err != nil {
		s.collector.DecryptFailed(qerrors.Is(err, qerrors.ErrAuthenticationFailed))
		s.writeError(w, err)
		return
	}
	s.collector.DecryptCompleted()
	s.writeJSON(w, http.StatusOK, plaintextResponse{Plaintext: plaintext})
}

// --- Encoding helpers ---

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		s.writeErrorKind(w, http.StatusBadRequest, qerrors.KindDecoding, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", metrics.Fields{"error": err.Error()})
	}
}

// writeError translates a core error into a structured response. Caller
// input problems map to 400; everything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := qerrors.KindOf(err)
	status := http.StatusBadRequest
	if kind == qerrors.KindInternal {
		status = http.StatusInternalServerError
	}
	s.writeErrorKind(w, status, kind, err.Error())
}

func (s *Server) writeErrorKind(w http.ResponseWriter, status int, kind qerrors.Kind, msg string) {
	s.log.Warn("request failed", metrics.Fields{"kind": string(kind), "error": msg})
	s.writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
