package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

type stubDispatcher struct {
	enqueued int
	err      error
}

func (s *stubDispatcher) EnqueueAll(ctx context.Context) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.enqueued, nil
}

func newAdminContext(t *testing.T, method, target, body string, pathParams map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := newTestContext(t, method, target, body)
	asAdmin(c, "admin_1")
	names := make([]string, 0, len(pathParams))
	values := make([]string, 0, len(pathParams))
	for k, v := range pathParams {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func TestAdminHandler_SetCredentialStatus_Success(t *testing.T) {
	stub := &stubVerificationService{
		setStatusFn: func(ctx context.Context, input ports.SetCredentialStatusInput) (*domain.Credential, error) {
			if input.Type != domain.TypeCertification || input.CredentialID != "c1" {
				t.Fatalf("unexpected target: %+v", input)
			}
			if input.Status != domain.CredentialVerified || input.Actor.ID != "admin_1" {
				t.Fatalf("unexpected decision: %+v", input)
			}
			return &domain.Credential{
				ID:     "c1",
				Type:   input.Type,
				Status: input.Status,
			}, nil
		},
	}
	handler := NewAdminHandler(stub, &stubDispatcher{})

	c, rec := newAdminContext(t, http.MethodPut, "/v1/admin/credentials/certification/c1/status",
		`{"status":"verified"}`,
		map[string]string{"type": "certification", "id": "c1"})

	if err := handler.SetCredentialStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp credentialResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "verified" {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
}

func TestAdminHandler_SetCredentialStatus_UnknownStatus(t *testing.T) {
	stub := &stubVerificationService{
		setStatusFn: func(ctx context.Context, input ports.SetCredentialStatusInput) (*domain.Credential, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewAdminHandler(stub, &stubDispatcher{})

	c, _ := newAdminContext(t, http.MethodPut, "/v1/admin/credentials/certification/c1/status",
		`{"status":"approved"}`,
		map[string]string{"type": "certification", "id": "c1"})

	err := handler.SetCredentialStatus(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAdminHandler_SetCredentialStatus_PropagatesDomainErrors(t *testing.T) {
	for _, want := range []error{domain.ErrCredentialNotFound, domain.ErrNoteRequired, domain.ErrForbidden} {
		stub := &stubVerificationService{
			setStatusFn: func(ctx context.Context, input ports.SetCredentialStatusInput) (*domain.Credential, error) {
				return nil, want
			},
		}
		handler := NewAdminHandler(stub, &stubDispatcher{})

		c, _ := newAdminContext(t, http.MethodPut, "/v1/admin/credentials/certification/c1/status",
			`{"status":"rejected","note":"expired"}`,
			map[string]string{"type": "certification", "id": "c1"})

		if err := handler.SetCredentialStatus(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAdminHandler_ResolveRequest_Success(t *testing.T) {
	stub := &stubVerificationService{
		resolveFn: func(ctx context.Context, input ports.ResolveRequestInput) (*domain.Credential, error) {
			if input.RequestID != "req_1" || input.Decision != ports.DecisionApprove {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Credential{
				ID:     "c1",
				Type:   domain.TypeEducation,
				Status: domain.CredentialVerified,
			}, nil
		},
	}
	handler := NewAdminHandler(stub, &stubDispatcher{})

	c, rec := newAdminContext(t, http.MethodPost, "/v1/admin/verification-requests/req_1/resolve",
		`{"decision":"approve"}`,
		map[string]string{"id": "req_1"})

	if err := handler.ResolveRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminHandler_ResolveRequest_InvalidDecision(t *testing.T) {
	stub := &stubVerificationService{
		resolveFn: func(ctx context.Context, input ports.ResolveRequestInput) (*domain.Credential, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewAdminHandler(stub, &stubDispatcher{})

	c, _ := newAdminContext(t, http.MethodPost, "/v1/admin/verification-requests/req_1/resolve",
		`{"decision":"maybe"}`,
		map[string]string{"id": "req_1"})

	err := handler.ResolveRequest(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAdminHandler_ListRequests_PassesFilters(t *testing.T) {
	stub := &stubVerificationService{
		listRequestsFn: func(ctx context.Context, input ports.ListRequestsInput) (*ports.ListRequestsResult, error) {
			if input.Status != "queued" || input.CredentialType != "education" {
				t.Fatalf("unexpected filters: %+v", input)
			}
			if input.Page != 2 || input.Limit != 10 {
				t.Fatalf("unexpected paging: %+v", input)
			}
			return &ports.ListRequestsResult{
				Items: []*domain.VerificationRequest{
					{ID: "req_1", Status: domain.RequestQueued},
				},
				Total:      11,
				Page:       2,
				Limit:      10,
				TotalPages: 2,
			}, nil
		},
	}
	handler := NewAdminHandler(stub, &stubDispatcher{})

	c, rec := newAdminContext(t, http.MethodGet,
		"/v1/admin/verification-requests?status=queued&type=education&page=2&limit=10", "", nil)

	if err := handler.ListRequests(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp listRequestsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Pagination.Total != 11 || resp.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAdminHandler_ToggleBan_Success(t *testing.T) {
	stub := &stubVerificationService{
		toggleUserBanFn: func(ctx context.Context, input ports.ToggleBanInput) (*domain.User, error) {
			if input.UserID != "u1" || !input.Banned {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{ID: "u1", Username: "alice", Status: domain.AccountSuspended}, nil
		},
	}
	handler := NewAdminHandler(stub, &stubDispatcher{})

	c, rec := newAdminContext(t, http.MethodPut, "/v1/admin/users/u1/ban",
		`{"banned":true}`,
		map[string]string{"id": "u1"})

	if err := handler.ToggleBan(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "suspended" {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
}

func TestAdminHandler_ToggleBan_MissingFlag(t *testing.T) {
	stub := &stubVerificationService{
		toggleUserBanFn: func(ctx context.Context, input ports.ToggleBanInput) (*domain.User, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewAdminHandler(stub, &stubDispatcher{})

	c, _ := newAdminContext(t, http.MethodPut, "/v1/admin/users/u1/ban",
		`{}`,
		map[string]string{"id": "u1"})

	err := handler.ToggleBan(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAdminHandler_RecomputeAll_Accepted(t *testing.T) {
	handler := NewAdminHandler(&stubVerificationService{}, &stubDispatcher{enqueued: 42})

	c, rec := newAdminContext(t, http.MethodPost, "/v1/admin/trust-scores/recompute", "", nil)

	if err := handler.RecomputeAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp acceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 42 {
		t.Fatalf("expected 42 jobs, got %d", resp.Count)
	}
}
