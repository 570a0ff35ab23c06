package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type createItemBody struct {
	Name      string  `json:"name" validate:"required,max=150"`
	Stock     int     `json:"stock" validate:"min=0"`
	Threshold *int    `json:"threshold"`
	ImageURL  *string `json:"imageUrl" validate:"omitempty,max=500"`
}

type updateItemBody struct {
	Name      *string `json:"name" validate:"omitempty,max=150"`
	Threshold *int    `json:"threshold"`
	ImageURL  *string `json:"imageUrl" validate:"omitempty,max=500"`
}

type stockActionBody struct {
	Qty   int    `json:"qty" validate:"required,gt=0"`
	Notes string `json:"notes" validate:"required,max=500"`
}

type adjustStockBody struct {
	NewStock int    `json:"newStock" validate:"min=0"`
	Reason   string `json:"reason" validate:"required,max=500"`
}

type setStockBody struct {
	NewStock int `json:"newStock" validate:"min=0"`
}

// AdminCreateItem adds a catalog item.
func AdminCreateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createItemBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), inventory.CreateItemInput{
			Name:      body.Name,
			Stock:     body.Stock,
			Threshold: body.Threshold,
			ImageURL:  body.ImageURL,
			AdminID:   adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminUpdateItem applies partial item edits. Stock is not editable here.
func AdminUpdateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidURLParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateItemBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), id, inventory.UpdateItemInput{
			Name:      body.Name,
			Threshold: body.Threshold,
			ImageURL:  body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminDeleteItem soft-deletes an item when no pending requests reference it.
func AdminDeleteItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidURLParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AdminGetItem returns one item.
func AdminGetItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidURLParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminListItems lists the catalog, optionally including inactive items.
func AdminListItems(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		includeInactive := false
		if raw := strings.TrimSpace(r.URL.Query().Get("includeInactive")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid includeInactive value"))
				return
			}
			includeInactive = value
		}

		items, err := svc.ListItems(r.Context(), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminLowStockItems lists active items at or below their threshold.
func AdminLowStockItems(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		items, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminTotalStock reports the stock total across active items.
func AdminTotalStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		total, err := svc.TotalStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"totalStock": total})
	}
}

// AdminRestockItem adds stock and appends a RESTOCK ledger row.
func AdminRestockItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockActionHandler(svc, logg, func(r *http.Request, input inventory.StockActionInput) (*inventory.ItemView, error) {
		return svc.Restock(r.Context(), input)
	})
}

// AdminReduceItem removes stock and appends a REDUCTION ledger row.
func AdminReduceItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockActionHandler(svc, logg, func(r *http.Request, input inventory.StockActionInput) (*inventory.ItemView, error) {
		return svc.Reduce(r.Context(), input)
	})
}

// AdminDamagedItem writes off damaged stock.
func AdminDamagedItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockActionHandler(svc, logg, func(r *http.Request, input inventory.StockActionInput) (*inventory.ItemView, error) {
		return svc.RecordDamaged(r.Context(), input)
	})
}

// AdminAdjustItem sets an absolute stock level with an audit record.
func AdminAdjustItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidURLParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustStockBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Adjust(r.Context(), inventory.AdjustInput{
			ItemID:   id,
			NewStock: body.NewStock,
			Reason:   validators.SanitizeString(body.Reason, 500),
			AdminID:  adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminSetItemStock overwrites the stock level without a ledger row. The
// reconcile pass reports the resulting drift.
func AdminSetItemStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidURLParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setStockBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SetStock(r.Context(), inventory.SetStockInput{
			ItemID:   id,
			NewStock: body.NewStock,
			AdminID:  adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func stockActionHandler(svc inventory.Service, logg *logger.Logger, action func(r *http.Request, input inventory.StockActionInput) (*inventory.ItemView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := uuidURLParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body stockActionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := action(r, inventory.StockActionInput{
			ItemID:  id,
			Qty:     body.Qty,
			Notes:   validators.SanitizeString(body.Notes, 500),
			AdminID: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
