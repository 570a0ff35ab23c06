package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	"github.com/stockroomhq/stockroom-backend/internal/divisions"
	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/internal/requests"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const maxRequesterNameLen = 120

type requestLineBody struct {
	ItemID uuid.UUID `json:"itemId" validate:"required"`
	Qty    int       `json:"qty" validate:"required,gt=0"`
}

type submitRequestBody struct {
	RequesterName string            `json:"requesterName" validate:"required,max=120"`
	DivisionID    uuid.UUID         `json:"divisionId" validate:"required"`
	FormData      map[string]string `json:"formData"`
	Items         []requestLineBody `json:"items" validate:"required,min=1,max=10,dive"`
}

// PublicForm returns the data the request form needs: active divisions and
// the orderable catalog.
func PublicForm(divisionsSvc divisions.Service, inventorySvc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if divisionsSvc == nil || inventorySvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form services unavailable"))
			return
		}

		divisionList, err := divisionsSvc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := inventorySvc.ListItems(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"divisions": divisionList,
			"items":     items,
		})
	}
}

// PublicSubmitRequest accepts a new inventory request from the public form.
func PublicSubmitRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		var body submitRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Submit(r.Context(), requests.SubmitInput{
			RequesterName: validators.SanitizeString(body.RequesterName, maxRequesterNameLen),
			DivisionID:    body.DivisionID,
			FormData:      body.FormData,
			Items:         linesFromBody(body.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// PublicTrackRequest returns the request bound to a tracking token.
func PublicTrackRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		token, err := validators.TrackingToken(chi.URLParam(r, "token"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetByToken(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// PublicUpdateRequest replaces a pending request's content via its token.
func PublicUpdateRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		token, err := validators.TrackingToken(chi.URLParam(r, "token"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.UpdateByToken(r.Context(), token, requests.UpdateInput{
			RequesterName: validators.SanitizeString(body.RequesterName, maxRequesterNameLen),
			DivisionID:    body.DivisionID,
			FormData:      body.FormData,
			Items:         linesFromBody(body.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// PublicTrackNotifications lists the status notifications for a token.
func PublicTrackNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		token, err := validators.TrackingToken(chi.URLParam(r, "token"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListForToken(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func linesFromBody(lines []requestLineBody) []requests.LineInput {
	out := make([]requests.LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, requests.LineInput{ItemID: line.ItemID, Qty: line.Qty})
	}
	return out
}
