package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Ghost247-bot/ulster-sub001/internal/batch"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/services"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
)

type stubAdminAccountService struct {
	listAllFn         func(ctx context.Context) ([]models.Account, error)
	freezeByAdminFn   func(ctx context.Context, actorID, accountID string) error
	unfreezeByAdminFn func(ctx context.Context, actorID, accountID string) error
	adjustBalanceFn   func(ctx context.Context, actorID, accountID string, newBalance int64, reason string) (string, error)
}

func (s stubAdminAccountService) ListAll(ctx context.Context) ([]models.Account, error) {
	return s.listAllFn(ctx)
}

func (s stubAdminAccountService) FreezeByAdmin(ctx context.Context, actorID, accountID string) error {
	return s.freezeByAdminFn(ctx, actorID, accountID)
}

func (s stubAdminAccountService) UnfreezeByAdmin(ctx context.Context, actorID, accountID string) error {
	return s.unfreezeByAdminFn(ctx, actorID, accountID)
}

func (s stubAdminAccountService) AdjustBalance(ctx context.Context, actorID, accountID string, newBalance int64, reason string) (string, error) {
	return s.adjustBalanceFn(ctx, actorID, accountID, newBalance, reason)
}

type stubAuditLog struct {
	recordFn func(ctx context.Context, actorID, action, entityType, entityID, data string) error
	listFn   func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditLog) Record(ctx context.Context, actorID, action, entityType, entityID, data string) error {
	if s.recordFn == nil {
		return nil
	}
	return s.recordFn(ctx, actorID, action, entityType, entityID, data)
}

func (s stubAuditLog) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return s.listFn(ctx, limit, offset)
}

func adminRouter(h *AdminHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/admin/accounts/{accountID}/balance", h.AdjustBalance)
	r.Post("/admin/accounts/{accountID}/freeze", h.FreezeAccount)
	r.Get("/admin/audit-logs", h.AuditLogs)
	r.Get("/admin/users", h.ListUsers)
	r.Post("/admin/users", h.ProvisionUser)
	r.Delete("/admin/users/{userID}", h.DeleteUser)
	return r
}

func TestAdminAdjustBalanceParsesDecimal(t *testing.T) {
	var gotBalance int64
	var gotReason string
	h := NewAdminHandler(stubAdminAccountService{
		adjustBalanceFn: func(_ context.Context, actorID, accountID string, newBalance int64, reason string) (string, error) {
			if actorID != "admin-1" || accountID != "acc-1" {
				t.Fatalf("args: %s %s", actorID, accountID)
			}
			gotBalance = newBalance
			gotReason = reason
			return "tx-1", nil
		},
	}, stubAuditLog{}, nil)
	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/admin/accounts/acc-1/balance", `{"balance":"150.25","reason":"correction"}`, "admin-1")
	adminRouter(h).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if gotBalance != 15025 || gotReason != "correction" {
		t.Fatalf("balance=%d reason=%q", gotBalance, gotReason)
	}
}

func TestAdminAdjustBalanceNegative(t *testing.T) {
	h := NewAdminHandler(stubAdminAccountService{
		adjustBalanceFn: func(context.Context, string, string, int64, string) (string, error) {
			return "", services.ErrNegativeBalance
		},
	}, stubAuditLog{}, nil)
	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/admin/accounts/acc-1/balance", `{"balance":"-1.00"}`, "admin-1")
	adminRouter(h).ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestAdminAdjustBalancePartialApply(t *testing.T) {
	h := NewAdminHandler(stubAdminAccountService{
		adjustBalanceFn: func(context.Context, string, string, int64, string) (string, error) {
			return "", &batch.PartialError{Step: "insert_transaction", Applied: 1, Err: context.DeadlineExceeded}
		},
	}, stubAuditLog{}, nil)
	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/admin/accounts/acc-1/balance", `{"balance":"10.00"}`, "admin-1")
	adminRouter(h).ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := rr.Body.String(); !containsAll(body, "partially applied", "insert_transaction") {
		t.Fatalf("body = %s", body)
	}
}

func TestProvisionUserUnavailableWithoutPrivilegedHandle(t *testing.T) {
	h := NewAdminHandler(stubAdminAccountService{}, stubAuditLog{}, nil)
	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/admin/users", `{"email":"new@example.com","password":"password123"}`, "admin-1")
	adminRouter(h).ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestProvisionUserCreatesAdminProfile(t *testing.T) {
	var createdProfile store.ProfileInput
	provisioner := &Provisioner{
		Tx: stubTxRunner{},
		Users: stubUserStore{
			createFn: func(context.Context, store.Execer, string, string, string) error { return nil },
		},
		Profiles: stubProfileStore{
			createFn: func(_ context.Context, _ store.Execer, input store.ProfileInput) error {
				createdProfile = input
				return nil
			},
		},
		Accounts: stubAccountCreator{},
	}
	h := NewAdminHandler(stubAdminAccountService{}, stubAuditLog{}, provisioner)
	rr := httptest.NewRecorder()
	body := `{"email":"ops@example.com","password":"password123","is_admin":true}`
	req := authedRequest(http.MethodPost, "/admin/users", body, "admin-1")
	adminRouter(h).ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if !createdProfile.IsAdmin || createdProfile.Role != "admin" {
		t.Fatalf("profile = %+v", createdProfile)
	}
}

func TestProvisionUserRecordsAuditEntry(t *testing.T) {
	var gotAction, gotEntity string
	audit := stubAuditLog{
		recordFn: func(_ context.Context, actorID, action, entityType, _, _ string) error {
			if actorID != "admin-1" {
				t.Fatalf("actor = %q", actorID)
			}
			gotAction, gotEntity = action, entityType
			return nil
		},
	}
	provisioner := &Provisioner{
		Tx:       stubTxRunner{},
		Users:    stubUserStore{createFn: func(context.Context, store.Execer, string, string, string) error { return nil }},
		Profiles: stubProfileStore{},
		Accounts: stubAccountCreator{},
	}
	h := NewAdminHandler(stubAdminAccountService{}, audit, provisioner)
	rr := httptest.NewRecorder()
	body := `{"email":"ops@example.com","password":"password123"}`
	adminRouter(h).ServeHTTP(rr, authedRequest(http.MethodPost, "/admin/users", body, "admin-1"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if gotAction != "provision_user" || gotEntity != "user" {
		t.Fatalf("audit entry: %s %s", gotAction, gotEntity)
	}
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	provisioner := &Provisioner{
		Tx: stubTxRunner{},
		Users: stubUserStore{
			deleteFn: func(context.Context, store.Execer, string) error {
				t.Fatal("delete must not be called")
				return nil
			},
		},
	}
	h := NewAdminHandler(stubAdminAccountService{}, stubAuditLog{}, provisioner)
	rr := httptest.NewRecorder()
	adminRouter(h).ServeHTTP(rr, authedRequest(http.MethodDelete, "/admin/users/admin-1", "", "admin-1"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestDeleteUserRemovesAndAudits(t *testing.T) {
	var deletedID, auditedID string
	provisioner := &Provisioner{
		Tx: stubTxRunner{},
		Users: stubUserStore{
			deleteFn: func(_ context.Context, _ store.Execer, userID string) error {
				deletedID = userID
				return nil
			},
		},
	}
	audit := stubAuditLog{
		recordFn: func(_ context.Context, _, action, _, entityID, _ string) error {
			if action != "delete_user" {
				t.Fatalf("action = %q", action)
			}
			auditedID = entityID
			return nil
		},
	}
	h := NewAdminHandler(stubAdminAccountService{}, audit, provisioner)
	rr := httptest.NewRecorder()
	adminRouter(h).ServeHTTP(rr, authedRequest(http.MethodDelete, "/admin/users/u-9", "", "admin-1"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if deletedID != "u-9" || auditedID != "u-9" {
		t.Fatalf("deleted=%q audited=%q", deletedID, auditedID)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
