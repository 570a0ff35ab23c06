package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	"github.com/stockroomhq/stockroom-backend/internal/requests"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

type approvalLineBody struct {
	RequestItemID uuid.UUID `json:"requestItemId" validate:"required"`
	QtyApproved   int       `json:"qtyApproved" validate:"min=0"`
}

type approveRequestBody struct {
	Lines []approvalLineBody `json:"lines" validate:"required,min=1,dive"`
}

type rejectRequestBody struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// AdminListRequests returns the filtered, paginated request listing.
func AdminListRequests(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, meta, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"requests": rows, "meta": meta})
	}
}

// AdminRequestDetail returns one request with its lines.
func AdminRequestDetail(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		id, err := uuidURLParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminApproveRequest records the per-line approval decision and consumes
// stock for the approved quantities.
func AdminApproveRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := uuidURLParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body approveRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]requests.ApprovalLine, 0, len(body.Lines))
		for _, line := range body.Lines {
			lines = append(lines, requests.ApprovalLine{
				RequestItemID: line.RequestItemID,
				QtyApproved:   line.QtyApproved,
			})
		}

		detail, err := svc.Approve(r.Context(), requests.ApproveInput{
			RequestID: requestID,
			AdminID:   adminID,
			Lines:     lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminRejectRequest rejects a pending request with a reason.
func AdminRejectRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := uuidURLParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Reject(r.Context(), requests.RejectInput{
			RequestID: requestID,
			AdminID:   adminID,
			Reason:    validators.SanitizeString(body.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func listParamsFromQuery(r *http.Request) (requests.ListParams, error) {
	var params requests.ListParams

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enumsParseStatus(raw)
		if err != nil {
			return params, err
		}
		params.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("divisionId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid division id")
		}
		params.DivisionID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("itemId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
		}
		params.ItemID = &id
	}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return params, err
	}
	params.From = from

	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return params, err
	}
	params.To = to

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return params, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return params, err
	}
	params.Pagination = pagination.Params{Page: page, Limit: limit}

	return params, nil
}
