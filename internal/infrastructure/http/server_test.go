package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
)

// stubDecider implements Decider for testing
type stubDecider struct {
	lastUserID string
	lastQuery  string
	result     *entities.DecisionResult
	err        error
}

func (s *stubDecider) Decide(ctx context.Context, userID, query string) (*entities.DecisionResult, error) {
	s.lastUserID = userID
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &entities.DecisionResult{Reply: "9-5 Mon-Fri", Confident: true, Similarity: 0.9}, nil
}

type stubEscalator struct {
	lastMessage string
	err         error
}

func (s *stubEscalator) CreateTicket(ctx context.Context, userID, message string) (string, error) {
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return "1756132200000", nil
}

type stubIngestor struct {
	count int
	err   error
}

func (s *stubIngestor) Ingest(ctx context.Context, path string) (int, error) {
	return s.count, s.err
}

const testSecret = "test-secret"

func newTestServer(decider *stubDecider, escalator *stubEscalator, ingestor *stubIngestor) *Server {
	if decider == nil {
		decider = &stubDecider{}
	}
	if escalator == nil {
		escalator = &stubEscalator{}
	}
	if ingestor == nil {
		ingestor = &stubIngestor{}
	}
	return NewServer(decider, escalator, ingestor, "data/faq.csv", testSecret, ":0")
}

func authedRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	token, err := mintToken(testSecret, "tester", "user", time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAsk_ReturnsDecision(t *testing.T) {
	decider := &stubDecider{}
	handler := newTestServer(decider, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/ask", `{"user_id":"u1","message":"what are your hours?"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result entities.DecisionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Reply != "9-5 Mon-Fri" || !result.Confident {
		t.Errorf("unexpected result: %+v", result)
	}
	if decider.lastUserID != "u1" {
		t.Errorf("user id not forwarded: %s", decider.lastUserID)
	}
}

func TestAsk_RedactsPIIBeforeDeciding(t *testing.T) {
	decider := &stubDecider{}
	handler := newTestServer(decider, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/ask", `{"message":"my email is a@b.com"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(decider.lastQuery, "a@b.com") {
		t.Errorf("raw email reached the decider: %q", decider.lastQuery)
	}
	if !strings.Contains(decider.lastQuery, "[REDACTED_EMAIL]") {
		t.Errorf("expected a redaction placeholder: %q", decider.lastQuery)
	}
}

func TestAsk_DefaultsAnonUser(t *testing.T) {
	decider := &stubDecider{}
	handler := newTestServer(decider, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/ask", `{"message":"hello"}`))

	if decider.lastUserID != "anon" {
		t.Errorf("expected anon user, got %s", decider.lastUserID)
	}
}

func TestAsk_EmptyMessageRejected(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/ask", `{"user_id":"u1"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAsk_AuditFailureIs500(t *testing.T) {
	decider := &stubDecider{err: errors.New("recording audit: disk full")}
	handler := newTestServer(decider, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/ask", `{"message":"hello"}`))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Audit log unavailable") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAsk_MethodNotAllowed(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "GET", "/ask", ""))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestAsk_MissingTokenRejected(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAsk_WrongSecretRejected(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	token, err := mintToken("some-other-secret", "tester", "user", time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAsk_ExpiredTokenRejected(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	token, err := mintToken(testSecret, "tester", "user", -time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAsk_TokenWithoutRolesForbidden(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	claims := jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestTickets_CreatesTicket(t *testing.T) {
	escalator := &stubEscalator{}
	handler := newTestServer(nil, escalator, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/tickets", `{"user_id":"u1","message":"order lost, my number is +923001234567"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["ticket_id"] != "1756132200000" {
		t.Errorf("unexpected ticket id: %s", body["ticket_id"])
	}
	if strings.Contains(escalator.lastMessage, "+923001234567") {
		t.Errorf("raw phone number reached the ticket store: %q", escalator.lastMessage)
	}
}

func TestTickets_StorageFailureIs500(t *testing.T) {
	escalator := &stubEscalator{err: entities.ErrStorageUnavailable}
	handler := newTestServer(nil, escalator, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/tickets", `{"message":"help"}`))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestIngest_ReturnsCount(t *testing.T) {
	handler := newTestServer(nil, nil, &stubIngestor{count: 42}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/ingest", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["ingested"] != 42 {
		t.Errorf("unexpected count: %d", body["ingested"])
	}
}

func TestIngest_FailureIs500(t *testing.T) {
	handler := newTestServer(nil, nil, &stubIngestor{err: errors.New("bad source")}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "POST", "/ingest", ""))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestDevToken_MintsUsableToken(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/dev/token", bytes.NewReader([]byte(`{"username":"dev"}`))))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	// The minted token should open the guarded endpoints.
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+body["token"])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("minted token was rejected: %d", rec.Code)
	}
}

func TestDevToken_UsernameRequired(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/dev/token", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRequestID_HeaderSet(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestRequestID_CallerValuePreserved(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", "caller-id-7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "caller-id-7" {
		t.Errorf("caller request id was replaced: %s", got)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	handler := newTestServer(nil, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/ask", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("preflight should not hit the auth guard, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS headers on preflight")
	}
}
