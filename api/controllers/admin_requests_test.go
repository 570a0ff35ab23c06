package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/internal/requests"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

func TestAdminListRequestsParsesFilters(t *testing.T) {
	divisionID := uuid.New()
	var got requests.ListParams
	svc := &testRequestsService{
		listFn: func(ctx context.Context, params requests.ListParams) ([]requests.Detail, pagination.Meta, error) {
			got = params
			return nil, pagination.Meta{Page: 2, Limit: 10}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/requests?status=PENDING&divisionId="+divisionID.String()+"&from=2026-01-01&to=2026-02-01&page=2&limit=10", nil)
	resp := httptest.NewRecorder()

	AdminListRequests(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Status == nil || *got.Status != enums.RequestStatusPending {
		t.Fatalf("unexpected status filter %+v", got.Status)
	}
	if got.DivisionID == nil || *got.DivisionID != divisionID {
		t.Fatalf("unexpected division filter %+v", got.DivisionID)
	}
	if got.From == nil || got.To == nil {
		t.Fatal("expected date range filters")
	}
	if got.Pagination.Page != 2 || got.Pagination.Limit != 10 {
		t.Fatalf("unexpected pagination %+v", got.Pagination)
	}
}

func TestAdminListRequestsRejectsBogusStatus(t *testing.T) {
	svc := &testRequestsService{
		listFn: func(ctx context.Context, params requests.ListParams) ([]requests.Detail, pagination.Meta, error) {
			t.Fatal("service should not be called")
			return nil, pagination.Meta{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/requests?status=SHIPPED", nil)
	resp := httptest.NewRecorder()

	AdminListRequests(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminApproveRequestInjectsAdminIdentity(t *testing.T) {
	requestID := uuid.New()
	adminID := uuid.New()
	lineID := uuid.New()
	var got requests.ApproveInput
	svc := &testRequestsService{
		approveFn: func(ctx context.Context, input requests.ApproveInput) (*requests.Detail, error) {
			got = input
			return &requests.Detail{Status: enums.RequestStatusApproved}, nil
		},
	}

	payload := `{"lines":[{"requestItemId":"` + lineID.String() + `","qtyApproved":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/requests/"+requestID.String()+"/approve", strings.NewReader(payload))
	req = asAdmin(req, adminID.String())
	req = addRouteParam(req, "requestId", requestID.String())
	resp := httptest.NewRecorder()

	AdminApproveRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.RequestID != requestID {
		t.Fatalf("unexpected request id %s", got.RequestID)
	}
	if got.AdminID != adminID {
		t.Fatalf("unexpected admin id %s", got.AdminID)
	}
	if len(got.Lines) != 1 || got.Lines[0].RequestItemID != lineID || got.Lines[0].QtyApproved != 3 {
		t.Fatalf("unexpected lines %+v", got.Lines)
	}
}

func TestAdminApproveRequestWithoutIdentity(t *testing.T) {
	svc := &testRequestsService{
		approveFn: func(ctx context.Context, input requests.ApproveInput) (*requests.Detail, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	requestID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/requests/"+requestID+"/approve", strings.NewReader(`{"lines":[]}`))
	req = addRouteParam(req, "requestId", requestID)
	resp := httptest.NewRecorder()

	AdminApproveRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminRejectRequestRequiresReason(t *testing.T) {
	svc := &testRequestsService{
		rejectFn: func(ctx context.Context, input requests.RejectInput) (*requests.Detail, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	requestID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/requests/"+requestID+"/reject", strings.NewReader(`{"reason":""}`))
	req = asAdmin(req, uuid.NewString())
	req = addRouteParam(req, "requestId", requestID)
	resp := httptest.NewRecorder()

	AdminRejectRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminRejectRequestForwardsReason(t *testing.T) {
	requestID := uuid.New()
	var got requests.RejectInput
	svc := &testRequestsService{
		rejectFn: func(ctx context.Context, input requests.RejectInput) (*requests.Detail, error) {
			got = input
			return &requests.Detail{Status: enums.RequestStatusRejected}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/requests/"+requestID.String()+"/reject", strings.NewReader(`{"reason":"  out of budget  "}`))
	req = asAdmin(req, uuid.NewString())
	req = addRouteParam(req, "requestId", requestID.String())
	resp := httptest.NewRecorder()

	AdminRejectRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Reason != "out of budget" {
		t.Fatalf("expected trimmed reason, got %q", got.Reason)
	}
}

func TestAdminRequestDetailInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/requests/not-a-uuid", nil)
	req = addRouteParam(req, "requestId", "not-a-uuid")
	resp := httptest.NewRecorder()

	AdminRequestDetail(&testRequestsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
