package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	dbtypes "github.com/stockroomhq/stockroom-backend/pkg/db/types"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier enqueues workflow notifications on the caller's transaction so
// they commit or roll back together with the request mutation.
type Notifier interface {
	NewRequest(ctx context.Context, tx *gorm.DB, request *models.Request) error
	StatusChanged(ctx context.Context, tx *gorm.DB, request *models.Request) error
}

// ConsumeInput describes one approved line whose stock must be drawn down.
type ConsumeInput struct {
	ItemID        uuid.UUID
	Qty           int
	RequestID     uuid.UUID
	RequestNumber string
	AdminID       uuid.UUID
}

// StockConsumer decrements item stock for an approved line and appends the
// matching ledger row.
type StockConsumer interface {
	ConsumeApproved(ctx context.Context, tx *gorm.DB, input ConsumeInput) error
}

// Service defines request-level operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*Detail, error)
	GetByToken(ctx context.Context, token string) (*Detail, error)
	UpdateByToken(ctx context.Context, token string, input UpdateInput) (*Detail, error)
	List(ctx context.Context, params ListParams) ([]Detail, pagination.Meta, error)
	Get(ctx context.Context, id uuid.UUID) (*Detail, error)
	Approve(ctx context.Context, input ApproveInput) (*Detail, error)
	Reject(ctx context.Context, input RejectInput) (*Detail, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier Notifier
	stock    StockConsumer
	metrics  *metrics.DomainMetrics
	clock    func() time.Time
}

// NewService builds a requests service with the required dependencies.
func NewService(repo Repository, tx txRunner, notifier Notifier, stock StockConsumer, domainMetrics *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock consumer required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		stock:    stock,
		metrics:  domainMetrics,
		clock:    time.Now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*Detail, error) {
	if strings.TrimSpace(input.RequesterName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requester name required")
	}
	if input.DivisionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "division required")
	}
	if err := validateLines(input.Items); err != nil {
		return nil, err
	}

	token, err := security.NewTrackingToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate tracking token")
	}

	var requestID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := s.checkDivisionAndItems(ctx, repo, input.DivisionID, input.Items); err != nil {
			return err
		}

		now := s.clock()
		number, err := repo.NextRequestNumber(ctx, now.Year())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate request number")
		}

		request := &models.Request{
			RequestNumber: number,
			TrackingToken: token,
			RequesterName: strings.TrimSpace(input.RequesterName),
			DivisionID:    input.DivisionID,
			Status:        enums.RequestStatusPending,
			FormData:      dbtypes.JSONMap(input.FormData),
			RequestDate:   now,
		}
		if err := repo.Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
		}

		lines := make([]models.RequestItem, 0, len(input.Items))
		for _, line := range input.Items {
			lines = append(lines, models.RequestItem{
				RequestID:    request.ID,
				ItemID:       line.ItemID,
				QtyRequested: line.Qty,
			})
		}
		if err := repo.CreateItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request items")
		}

		requestID = request.ID
		return s.notifier.NewRequest(ctx, tx, request)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRequestSubmitted()
	return s.Get(ctx, requestID)
}

func (s *service) GetByToken(ctx context.Context, token string) (*Detail, error) {
	if !security.IsTrackingToken(token) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	request, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request by token")
	}
	return detailFromModel(request), nil
}

func (s *service) UpdateByToken(ctx context.Context, token string, input UpdateInput) (*Detail, error) {
	if !security.IsTrackingToken(token) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	if strings.TrimSpace(input.RequesterName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requester name required")
	}
	if input.DivisionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "division required")
	}
	if err := validateLines(input.Items); err != nil {
		return nil, err
	}

	var requestID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindByToken(ctx, token)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request by token")
		}
		if request.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already processed")
		}

		if err := s.checkDivisionAndItems(ctx, repo, input.DivisionID, input.Items); err != nil {
			return err
		}

		updated, err := repo.UpdatePendingHeader(ctx, request.ID, strings.TrimSpace(input.RequesterName), input.DivisionID, dbtypes.JSONMap(input.FormData))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already processed")
		}

		lines := make([]models.RequestItem, 0, len(input.Items))
		for _, line := range input.Items {
			lines = append(lines, models.RequestItem{
				RequestID:    request.ID,
				ItemID:       line.ItemID,
				QtyRequested: line.Qty,
			})
		}
		if err := repo.ReplaceItems(ctx, request.ID, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace request items")
		}

		requestID = request.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, requestID)
}

func (s *service) List(ctx context.Context, params ListParams) ([]Detail, pagination.Meta, error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}

	details := make([]Detail, 0, len(rows))
	for i := range rows {
		details = append(details, *detailFromModel(&rows[i]))
	}
	return details, pagination.MetaFor(params.Pagination, total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	return detailFromModel(request), nil
}

func (s *service) Approve(ctx context.Context, input ApproveInput) (*Detail, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approval lines required")
	}

	var outcome enums.RequestStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindByID(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if request.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already processed")
		}

		decided, err := resolveApprovalLines(request.Items, input.Lines)
		if err != nil {
			return err
		}

		outcome = enums.RequestStatusApproved
		for _, line := range decided {
			if line.qtyApproved != line.qtyRequested {
				outcome = enums.RequestStatusPartiallyApproved
				break
			}
		}

		processed, err := repo.MarkProcessed(ctx, request.ID, outcome, input.AdminID, nil, s.clock())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition request status")
		}
		if !processed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already processed")
		}

		for _, line := range decided {
			if err := repo.SetLineApproved(ctx, line.id, line.qtyApproved); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record approved quantity")
			}
			if line.qtyApproved == 0 {
				continue
			}
			err := s.stock.ConsumeApproved(ctx, tx, ConsumeInput{
				ItemID:        line.itemID,
				Qty:           line.qtyApproved,
				RequestID:     request.ID,
				RequestNumber: request.RequestNumber,
				AdminID:       input.AdminID,
			})
			if err != nil {
				return err
			}
			s.metrics.IncStockMovement(string(enums.StockChangeApproved))
		}

		request.Status = outcome
		return s.notifier.StatusChanged(ctx, tx, request)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRequestProcessed(string(outcome))
	return s.Get(ctx, input.RequestID)
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*Detail, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindByID(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if request.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already processed")
		}

		processed, err := repo.MarkProcessed(ctx, request.ID, enums.RequestStatusRejected, input.AdminID, &reason, s.clock())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition request status")
		}
		if !processed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already processed")
		}

		request.Status = enums.RequestStatusRejected
		request.RejectionReason = &reason
		return s.notifier.StatusChanged(ctx, tx, request)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRequestProcessed(string(enums.RequestStatusRejected))
	return s.Get(ctx, input.RequestID)
}

func (s *service) checkDivisionAndItems(ctx context.Context, repo Repository, divisionID uuid.UUID, lines []LineInput) error {
	if _, err := repo.FindActiveDivision(ctx, divisionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeValidation, "division not found or inactive")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load division")
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	items, err := repo.FindActiveItemsByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	byID := make(map[uuid.UUID]models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	for _, line := range lines {
		item, ok := byID[line.ItemID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown or inactive item").
				WithDetails(map[string]any{"item_id": line.ItemID})
		}
		if line.Qty > item.Stock {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds available stock").
				WithDetails(map[string]any{"item_id": line.ItemID, "available": item.Stock})
		}
	}
	return nil
}

type decidedLine struct {
	id           uuid.UUID
	itemID       uuid.UUID
	qtyRequested int
	qtyApproved  int
}

// resolveApprovalLines matches the admin's lines against the request lines.
// Every request line must be decided exactly once, quantities must stay
// within what was requested, and an all-zero approval is rejected in favor
// of an explicit reject.
func resolveApprovalLines(requestLines []models.RequestItem, approvals []ApprovalLine) ([]decidedLine, error) {
	byID := make(map[uuid.UUID]models.RequestItem, len(requestLines))
	for _, line := range requestLines {
		byID[line.ID] = line
	}

	seen := make(map[uuid.UUID]bool, len(approvals))
	decided := make([]decidedLine, 0, len(approvals))
	anyApproved := false

	for _, approval := range approvals {
		line, ok := byID[approval.RequestItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "approval line does not belong to request").
				WithDetails(map[string]any{"request_item_id": approval.RequestItemID})
		}
		if seen[approval.RequestItemID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate approval line").
				WithDetails(map[string]any{"request_item_id": approval.RequestItemID})
		}
		seen[approval.RequestItemID] = true

		if approval.QtyApproved < 0 || approval.QtyApproved > line.QtyRequested {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "approved quantity out of range").
				WithDetails(map[string]any{"request_item_id": approval.RequestItemID, "max": line.QtyRequested})
		}
		if approval.QtyApproved > 0 {
			anyApproved = true
		}
		decided = append(decided, decidedLine{
			id:           line.ID,
			itemID:       line.ItemID,
			qtyRequested: line.QtyRequested,
			qtyApproved:  approval.QtyApproved,
		})
	}

	if len(seen) != len(requestLines) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "every request line needs a decision")
	}
	if !anyApproved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing approved; use reject instead")
	}
	return decided, nil
}

func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	if len(lines) > MaxItemsPerRequest {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("a request can carry at most %d items", MaxItemsPerRequest))
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if line.ItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
		}
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if seen[line.ItemID] {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate item line").
				WithDetails(map[string]any{"item_id": line.ItemID})
		}
		seen[line.ItemID] = true
	}
	return nil
}
