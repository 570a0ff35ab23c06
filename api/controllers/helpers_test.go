package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func asAdmin(req *http.Request, adminID string) *http.Request {
	return req.WithContext(middleware.WithAdminID(req.Context(), adminID))
}

func mustTrackingToken(t *testing.T) string {
	t.Helper()
	token, err := security.NewTrackingToken()
	if err != nil {
		t.Fatalf("generate tracking token: %v", err)
	}
	return token
}
