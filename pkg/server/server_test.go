package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qkdlab/bb84-go/pkg/bb84"
	"github.com/qkdlab/bb84-go/pkg/seal"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Options{})
}

func postJSON(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRunEndpoint(t *testing.T) {
	s := newTestServer(t)
	seed := int64(7)

	rec := postJSON(t, s, "/api/bb84", map[string]interface{}{
		"n_bits":   16,
		"eve_prob": 0.0,
		"seed":     seed,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()

	var res bb84.Result
	decodeBody(t, rec, &res)
	if len(res.AliceBits) != 16 {
		t.Fatalf("alice bits = %d, want 16", len(res.AliceBits))
	}
	if len(res.AliceKey) != len(res.BobKey) {
		t.Fatalf("key lengths differ: %d vs %d", len(res.AliceKey), len(res.BobKey))
	}
	// eve_prob 0 still enables Eve per the default rule only when positive.
	if res.EveBases != nil {
		t.Fatalf("eve bases present with eve_prob 0 and no eve_enabled")
	}

	// Same seed, same parameters, identical output.
	rec2 := postJSON(t, s, "/api/bb84", map[string]interface{}{
		"n_bits":   16,
		"eve_prob": 0.0,
		"seed":     seed,
	})
	if body != rec2.Body.String() {
		t.Fatal("seeded runs produced different responses")
	}
}

func TestRunEndpointDefaults(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/bb84", map[string]interface{}{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var res bb84.Result
	decodeBody(t, rec, &res)
	if len(res.AliceBits) != 10 {
		t.Fatalf("default n_bits: got %d qubits, want 10", len(res.AliceBits))
	}
	// Default eve_prob is positive, so Eve is on the channel.
	if res.EveBases == nil {
		t.Fatal("eve bases missing under default config")
	}
}

func TestRunEndpointEveEnabledOverride(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/bb84", map[string]interface{}{
		"n_bits":      8,
		"eve_prob":    1.0,
		"eve_enabled": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var res bb84.Result
	decodeBody(t, rec, &res)
	if res.EveBases != nil || res.EveBits != nil {
		t.Fatal("eve_enabled=false must keep Eve off the channel")
	}
}

func TestRunEndpointInvalidParameters(t *testing.T) {
	s := newTestServer(t)

	cases := []map[string]interface{}{
		{"n_bits": -1},
		{"n_bits": 1 << 20},
		{"eve_prob": -0.5},
		{"eve_prob": 1.5},
	}
	for _, body := range cases {
		rec := postJSON(t, s, "/api/bb84", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, rec.Code)
		}
		var er errorResponse
		decodeBody(t, rec, &er)
		if er.Kind != "invalid_parameter" {
			t.Errorf("body %v: kind = %q", body, er.Kind)
		}
	}
}

func TestRunEndpointMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/bb84", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er errorResponse
	decodeBody(t, rec, &er)
	if er.Kind != "decoding_error" {
		t.Fatalf("kind = %q, want decoding_error", er.Kind)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := newTestServer(t)
	key := []int{1, 0, 1, 1, 0, 0, 1, 0}

	rec := postJSON(t, s, "/api/encrypt", map[string]interface{}{
		"message": "attack at dawn",
		"key":     key,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("encrypt status = %d, body %s", rec.Code, rec.Body.String())
	}
	var env seal.Envelope
	decodeBody(t, rec, &env)
	if env.Ciphertext == "" || env.Nonce == "" || env.Tag == "" {
		t.Fatalf("incomplete envelope: %+v", env)
	}

	rec = postJSON(t, s, "/api/decrypt", map[string]interface{}{
		"encrypted_data": env,
		"key":            key,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("decrypt status = %d, body %s", rec.Code, rec.Body.String())
	}
	var pt plaintextResponse
	decodeBody(t, rec, &pt)
	if pt.Plaintext != "attack at dawn" {
		t.Fatalf("plaintext = %q", pt.Plaintext)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	s := newTestServer(t)

	env, err := seal.Encrypt("secret", []int{1, 1, 0, 0})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	rec := postJSON(t, s, "/api/decrypt", map[string]interface{}{
		"encrypted_data": env,
		"key":            []int{0, 0, 1, 1},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er errorResponse
	decodeBody(t, rec, &er)
	if er.Kind != "authentication_error" {
		t.Fatalf("kind = %q, want authentication_error", er.Kind)
	}
}

func TestDecryptMissingEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/decrypt", map[string]interface{}{
		"key": []int{1, 0},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er errorResponse
	decodeBody(t, rec, &er)
	if er.Kind != "decoding_error" {
		t.Fatalf("kind = %q, want decoding_error", er.Kind)
	}
}

func TestEncryptEmptyKeyMaterial(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/encrypt", map[string]interface{}{
		"message": "hello",
		"key":     []int{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er errorResponse
	decodeBody(t, rec, &er)
	if er.Kind != "invalid_parameter" {
		t.Fatalf("kind = %q, want invalid_parameter", er.Kind)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := New(Options{AllowedOrigin: "http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/api/bb84", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Fatalf("allow-methods = %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/bb84", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "status") {
		t.Fatalf("unexpected health body: %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Drive one run so counters move.
	rec := postJSON(t, s, "/api/bb84", map[string]interface{}{"n_bits": 4, "seed": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	out := httptest.NewRecorder()
	s.Handler().ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", out.Code)
	}
	body := out.Body.String()
	if !strings.Contains(body, "bb84_sim_runs_total") {
		t.Fatalf("metrics output missing run counter:\n%s", body)
	}
}
