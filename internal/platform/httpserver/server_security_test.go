package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authorization "carebridge/contexts/identity-access/authorization-service"
	"carebridge/contexts/identity-access/authorization-service/adapters/token"
	disputeservice "carebridge/contexts/trust-safety/dispute-service"
	disputeauthz "carebridge/contexts/trust-safety/dispute-service/adapters/authz"
	verificationservice "carebridge/contexts/trust-safety/verification-service"
	verificationauthz "carebridge/contexts/trust-safety/verification-service/adapters/authz"
	"carebridge/internal/shared/audit"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	sink := audit.NewMemorySink()
	authzModule := authorization.NewModule(authorization.Dependencies{Audit: sink})
	verificationModule, _ := verificationservice.NewInMemoryModule(
		verificationauthz.Gate{Authorizer: authzModule.Gate}, nil, nil, nil,
	)
	disputeModule, _ := disputeservice.NewInMemoryModule(
		disputeauthz.Gate{Authorizer: authzModule.Gate}, nil, nil, nil,
	)
	resolver, err := token.NewResolver([]byte(testSecret))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return New(authzModule, verificationModule, disputeModule, resolver, nil, nil, ":0")
}

func signToken(t *testing.T, subject, role string) string {
	t.Helper()
	claims := token.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestSubmissionCreateRequiresAuthorizationHeader(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/verification/v1/submissions", bytes.NewReader([]byte(`{"type":"agency_legal_docs"}`)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmissionRecommendReturnsUniformForbiddenBody(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(
		http.MethodPost,
		"/api/verification/v1/submissions/sub-1/recommend",
		bytes.NewReader([]byte(`{"recommendation":"approve"}`)),
	)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, "shop-1", "shop"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "forbidden" || body["message"] != "forbidden" {
		t.Fatalf("expected uniform forbidden body, got %s", rr.Body.String())
	}
}

func TestDisputeRaiseAndReadBackAsParty(t *testing.T) {
	server := newTestServer(t)
	raise := httptest.NewRequest(
		http.MethodPost,
		"/api/disputes/v1/disputes",
		bytes.NewReader([]byte(`{"type":"quality","job_id":"job-1","against_id":"caregiver-9","description":"late three times"}`)),
	)
	raise.Header.Set("Content-Type", "application/json")
	raise.Header.Set("Authorization", "Bearer "+signToken(t, "guardian-1", "guardian"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, raise)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		DisputeID string `json:"dispute_id"`
		Severity  string `json:"severity"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if created.Severity != "medium" {
		t.Fatalf("expected medium severity, got %q", created.Severity)
	}

	get := httptest.NewRequest(http.MethodGet, "/api/disputes/v1/disputes/"+created.DisputeID, nil)
	get.Header.Set("Authorization", "Bearer "+signToken(t, "guardian-1", "guardian"))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, get)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	// A stranger to the dispute gets the uniform forbidden body.
	other := httptest.NewRequest(http.MethodGet, "/api/disputes/v1/disputes/"+created.DisputeID, nil)
	other.Header.Set("Authorization", "Bearer "+signToken(t, "shop-1", "shop"))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, other)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmissionDecideBeforeReviewConflicts(t *testing.T) {
	server := newTestServer(t)

	create := httptest.NewRequest(http.MethodPost, "/api/verification/v1/submissions", bytes.NewReader([]byte(`{"type":"agency_legal_docs"}`)))
	create.Header.Set("Content-Type", "application/json")
	create.Header.Set("Authorization", "Bearer "+signToken(t, "agency-1", "agency"))
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, create)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		SubmissionID string `json:"submission_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	decide := httptest.NewRequest(
		http.MethodPost,
		"/api/verification/v1/submissions/"+created.SubmissionID+"/decide",
		bytes.NewReader([]byte(`{"decision":"approve"}`)),
	)
	decide.Header.Set("Content-Type", "application/json")
	decide.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", "admin"))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, decide)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}
