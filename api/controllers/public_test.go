package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/internal/requests"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

type testRequestsService struct {
	submitFn        func(ctx context.Context, input requests.SubmitInput) (*requests.Detail, error)
	getByTokenFn    func(ctx context.Context, token string) (*requests.Detail, error)
	updateByTokenFn func(ctx context.Context, token string, input requests.UpdateInput) (*requests.Detail, error)
	listFn          func(ctx context.Context, params requests.ListParams) ([]requests.Detail, pagination.Meta, error)
	getFn           func(ctx context.Context, id uuid.UUID) (*requests.Detail, error)
	approveFn       func(ctx context.Context, input requests.ApproveInput) (*requests.Detail, error)
	rejectFn        func(ctx context.Context, input requests.RejectInput) (*requests.Detail, error)
}

func (s *testRequestsService) Submit(ctx context.Context, input requests.SubmitInput) (*requests.Detail, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, input)
	}
	return &requests.Detail{}, nil
}

func (s *testRequestsService) GetByToken(ctx context.Context, token string) (*requests.Detail, error) {
	if s.getByTokenFn != nil {
		return s.getByTokenFn(ctx, token)
	}
	return &requests.Detail{}, nil
}

func (s *testRequestsService) UpdateByToken(ctx context.Context, token string, input requests.UpdateInput) (*requests.Detail, error) {
	if s.updateByTokenFn != nil {
		return s.updateByTokenFn(ctx, token, input)
	}
	return &requests.Detail{}, nil
}

func (s *testRequestsService) List(ctx context.Context, params requests.ListParams) ([]requests.Detail, pagination.Meta, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return nil, pagination.Meta{}, nil
}

func (s *testRequestsService) Get(ctx context.Context, id uuid.UUID) (*requests.Detail, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &requests.Detail{}, nil
}

func (s *testRequestsService) Approve(ctx context.Context, input requests.ApproveInput) (*requests.Detail, error) {
	if s.approveFn != nil {
		return s.approveFn(ctx, input)
	}
	return &requests.Detail{}, nil
}

func (s *testRequestsService) Reject(ctx context.Context, input requests.RejectInput) (*requests.Detail, error) {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, input)
	}
	return &requests.Detail{}, nil
}

func TestPublicSubmitRequestSuccess(t *testing.T) {
	divisionID := uuid.New()
	itemID := uuid.New()
	token := mustTrackingToken(t)
	var got requests.SubmitInput
	svc := &testRequestsService{
		submitFn: func(ctx context.Context, input requests.SubmitInput) (*requests.Detail, error) {
			got = input
			return &requests.Detail{RequestNumber: "REQ-2026-0001", TrackingToken: token}, nil
		},
	}

	payload := `{"requesterName":"  Dana Ives  ","divisionId":"` + divisionID.String() + `","formData":{"floor":"3"},"items":[{"itemId":"` + itemID.String() + `","qty":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/public/requests", strings.NewReader(payload))
	resp := httptest.NewRecorder()

	PublicSubmitRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.RequesterName != "Dana Ives" {
		t.Fatalf("expected trimmed requester name, got %q", got.RequesterName)
	}
	if got.DivisionID != divisionID {
		t.Fatalf("unexpected division %s", got.DivisionID)
	}
	if len(got.Items) != 1 || got.Items[0].ItemID != itemID || got.Items[0].Qty != 2 {
		t.Fatalf("unexpected items %+v", got.Items)
	}

	var envelope struct {
		Data requests.Detail `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.RequestNumber != "REQ-2026-0001" {
		t.Fatalf("unexpected request number %q", envelope.Data.RequestNumber)
	}
}

func TestPublicSubmitRequestRejectsEmptyItems(t *testing.T) {
	svc := &testRequestsService{
		submitFn: func(ctx context.Context, input requests.SubmitInput) (*requests.Detail, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	payload := `{"requesterName":"Dana","divisionId":"` + uuid.NewString() + `","items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/public/requests", strings.NewReader(payload))
	resp := httptest.NewRecorder()

	PublicSubmitRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPublicSubmitRequestRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/public/requests", strings.NewReader(`{"requesterName":"Dana","bogus":true}`))
	resp := httptest.NewRecorder()

	PublicSubmitRequest(&testRequestsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPublicTrackRequestMalformedToken(t *testing.T) {
	svc := &testRequestsService{
		getByTokenFn: func(ctx context.Context, token string) (*requests.Detail, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/track/short", nil)
	req = addRouteParam(req, "token", "short")
	resp := httptest.NewRecorder()

	PublicTrackRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestPublicTrackRequestSuccess(t *testing.T) {
	token := mustTrackingToken(t)
	svc := &testRequestsService{
		getByTokenFn: func(ctx context.Context, got string) (*requests.Detail, error) {
			if got != token {
				t.Fatalf("unexpected token %s", got)
			}
			return &requests.Detail{RequestNumber: "REQ-2026-0042"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/track/"+token, nil)
	req = addRouteParam(req, "token", token)
	resp := httptest.NewRecorder()

	PublicTrackRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestPublicUpdateRequestForwardsInput(t *testing.T) {
	token := mustTrackingToken(t)
	divisionID := uuid.New()
	itemID := uuid.New()
	var got requests.UpdateInput
	svc := &testRequestsService{
		updateByTokenFn: func(ctx context.Context, tok string, input requests.UpdateInput) (*requests.Detail, error) {
			if tok != token {
				t.Fatalf("unexpected token %s", tok)
			}
			got = input
			return &requests.Detail{}, nil
		},
	}

	payload := `{"requesterName":"Dana","divisionId":"` + divisionID.String() + `","items":[{"itemId":"` + itemID.String() + `","qty":4}]}`
	req := httptest.NewRequest(http.MethodPatch, "/api/public/track/"+token, strings.NewReader(payload))
	req = addRouteParam(req, "token", token)
	resp := httptest.NewRecorder()

	PublicUpdateRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Items[0].Qty != 4 {
		t.Fatalf("unexpected qty %d", got.Items[0].Qty)
	}
}

type testTokenNotificationsService struct {
	notifications.Service
	listForTokenFn func(ctx context.Context, token string) ([]notifications.NotificationView, error)
}

func (s *testTokenNotificationsService) ListForToken(ctx context.Context, token string) ([]notifications.NotificationView, error) {
	if s.listForTokenFn != nil {
		return s.listForTokenFn(ctx, token)
	}
	return nil, nil
}

func TestPublicTrackNotificationsMalformedToken(t *testing.T) {
	svc := &testTokenNotificationsService{
		listForTokenFn: func(ctx context.Context, token string) ([]notifications.NotificationView, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/track/nope/notifications", nil)
	req = addRouteParam(req, "token", "nope")
	resp := httptest.NewRecorder()

	PublicTrackNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
