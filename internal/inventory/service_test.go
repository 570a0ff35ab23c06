package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type stubInventoryRepo struct {
	items       map[uuid.UUID]*models.Item
	histories   []models.StockHistory
	adjustments []models.StockAdjustment
	pendingRefs int64
	updates     map[string]any
	deactivated bool
	casFails    bool
}

func newStubInventoryRepo(items ...*models.Item) *stubInventoryRepo {
	repo := &stubInventoryRepo{items: map[uuid.UUID]*models.Item{}}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInventoryRepo) Create(ctx context.Context, item *models.Item) error {
	for _, existing := range s.items {
		if existing.Name == item.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "items_name_key"}
		}
	}
	s.items[item.ID] = item
	return nil
}

func (s *stubInventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubInventoryRepo) List(ctx context.Context, includeInactive bool) ([]models.Item, error) {
	var out []models.Item
	for _, item := range s.items {
		if !includeInactive && !item.IsActive {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *stubInventoryRepo) ListLowStock(ctx context.Context) ([]models.Item, error) {
	var out []models.Item
	for _, item := range s.items {
		if item.IsActive && item.Stock <= item.Threshold {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubInventoryRepo) TotalStock(ctx context.Context) (int64, error) {
	var total int64
	for _, item := range s.items {
		if item.IsActive {
			total += int64(item.Stock)
		}
	}
	return total, nil
}

func (s *stubInventoryRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	item := s.items[id]
	if name, ok := updates["name"].(string); ok {
		item.Name = name
	}
	if threshold, ok := updates["threshold"].(int); ok {
		item.Threshold = threshold
	}
	return nil
}

func (s *stubInventoryRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.deactivated = true
	s.items[id].IsActive = false
	return nil
}

func (s *stubInventoryRepo) CountPendingReferences(ctx context.Context, itemID uuid.UUID) (int64, error) {
	return s.pendingRefs, nil
}

func (s *stubInventoryRepo) AddStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	item, ok := s.items[id]
	if !ok || !item.IsActive {
		return false, nil
	}
	item.Stock += qty
	return true, nil
}

func (s *stubInventoryRepo) RemoveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	item, ok := s.items[id]
	if !ok || !item.IsActive || item.Stock < qty {
		return false, nil
	}
	item.Stock -= qty
	return true, nil
}

func (s *stubInventoryRepo) CompareAndSetStock(ctx context.Context, id uuid.UUID, oldStock, newStock int) (bool, error) {
	if s.casFails {
		return false, nil
	}
	item, ok := s.items[id]
	if !ok || item.Stock != oldStock {
		return false, nil
	}
	item.Stock = newStock
	return true, nil
}

func (s *stubInventoryRepo) OverwriteStock(ctx context.Context, id uuid.UUID, newStock int) (bool, error) {
	item, ok := s.items[id]
	if !ok {
		return false, nil
	}
	item.Stock = newStock
	return true, nil
}

func (s *stubInventoryRepo) AppendHistory(ctx context.Context, row *models.StockHistory) error {
	s.histories = append(s.histories, *row)
	return nil
}

func (s *stubInventoryRepo) CreateAdjustment(ctx context.Context, row *models.StockAdjustment) error {
	s.adjustments = append(s.adjustments, *row)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestInventoryService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func activeItem(name string, stock int) *models.Item {
	return &models.Item{ID: uuid.New(), Name: name, Stock: stock, InitialStock: stock, Threshold: 10, IsActive: true}
}

func TestCreateItemPinsInitialStock(t *testing.T) {
	repo := newStubInventoryRepo()
	svc := newTestInventoryService(t, repo)

	view, err := svc.CreateItem(context.Background(), CreateItemInput{Name: " Stapler ", Stock: 25})
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}
	if view.Name != "Stapler" {
		t.Fatalf("expected trimmed name, got %q", view.Name)
	}
	if view.InitialStock != 25 || view.Stock != 25 {
		t.Fatalf("expected initial stock pinned to 25, got %+v", view)
	}
	if view.Threshold != defaultThreshold {
		t.Fatalf("expected default threshold, got %d", view.Threshold)
	}
}

func TestCreateItemDuplicateNameConflicts(t *testing.T) {
	existing := activeItem("Stapler", 5)
	repo := newStubInventoryRepo(existing)
	svc := newTestInventoryService(t, repo)

	_, err := svc.CreateItem(context.Background(), CreateItemInput{Name: "Stapler", Stock: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateItemRejectsNegativeStock(t *testing.T) {
	svc := newTestInventoryService(t, newStubInventoryRepo())

	_, err := svc.CreateItem(context.Background(), CreateItemInput{Name: "Stapler", Stock: -1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteItemBlockedByPendingRequests(t *testing.T) {
	item := activeItem("Stapler", 5)
	repo := newStubInventoryRepo(item)
	repo.pendingRefs = 2
	svc := newTestInventoryService(t, repo)

	err := svc.DeleteItem(context.Background(), item.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.deactivated {
		t.Fatal("item must not be deactivated while referenced")
	}
}

func TestDeleteItemSoftDeletes(t *testing.T) {
	item := activeItem("Stapler", 5)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)

	if err := svc.DeleteItem(context.Background(), item.ID); err != nil {
		t.Fatalf("DeleteItem returned error: %v", err)
	}
	if !repo.deactivated {
		t.Fatal("expected soft delete")
	}
}

func TestRestockAppendsLedgerRow(t *testing.T) {
	item := activeItem("Stapler", 5)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)

	view, err := svc.Restock(context.Background(), StockActionInput{ItemID: item.ID, Qty: 7, Notes: " quarterly order ", AdminID: uuid.New()})
	if err != nil {
		t.Fatalf("Restock returned error: %v", err)
	}
	if view.Stock != 12 {
		t.Fatalf("expected stock 12, got %d", view.Stock)
	}
	if len(repo.histories) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(repo.histories))
	}
	row := repo.histories[0]
	if row.ChangeType != enums.StockChangeRestock || row.QtyChange != 7 {
		t.Fatalf("unexpected ledger row %+v", row)
	}
	if row.Notes == nil || *row.Notes != "quarterly order" {
		t.Fatalf("expected trimmed notes on ledger row, got %v", row.Notes)
	}
}

func TestStockActionsRequireNotes(t *testing.T) {
	item := activeItem("Stapler", 10)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)
	ctx := context.Background()

	actions := map[string]func(StockActionInput) (*ItemView, error){
		"restock": func(in StockActionInput) (*ItemView, error) { return svc.Restock(ctx, in) },
		"reduce":  func(in StockActionInput) (*ItemView, error) { return svc.Reduce(ctx, in) },
		"damaged": func(in StockActionInput) (*ItemView, error) { return svc.RecordDamaged(ctx, in) },
	}
	for name, action := range actions {
		for _, notes := range []string{"", "   "} {
			_, err := action(StockActionInput{ItemID: item.ID, Qty: 2, Notes: notes, AdminID: uuid.New()})
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("%s with notes %q: expected validation error, got %v", name, notes, err)
			}
		}
	}
	if len(repo.histories) != 0 {
		t.Fatalf("blank-note actions must not write ledger rows, got %d", len(repo.histories))
	}
	if repo.items[item.ID].Stock != 10 {
		t.Fatalf("blank-note actions must not move stock, got %d", repo.items[item.ID].Stock)
	}
}

func TestReduceGuardsAgainstInsufficientStock(t *testing.T) {
	item := activeItem("Stapler", 3)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)

	_, err := svc.Reduce(context.Background(), StockActionInput{ItemID: item.ID, Qty: 5, Notes: "handout", AdminID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if len(repo.histories) != 0 {
		t.Fatal("failed reduction must not write a ledger row")
	}
}

func TestRecordDamagedWritesNegativeChange(t *testing.T) {
	item := activeItem("Stapler", 10)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)

	view, err := svc.RecordDamaged(context.Background(), StockActionInput{ItemID: item.ID, Qty: 4, Notes: "water damage", AdminID: uuid.New()})
	if err != nil {
		t.Fatalf("RecordDamaged returned error: %v", err)
	}
	if view.Stock != 6 {
		t.Fatalf("expected stock 6, got %d", view.Stock)
	}
	row := repo.histories[0]
	if row.ChangeType != enums.StockChangeDamaged || row.QtyChange != -4 {
		t.Fatalf("unexpected ledger row %+v", row)
	}
}

func TestAdjustDualWrites(t *testing.T) {
	item := activeItem("Stapler", 10)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)
	adminID := uuid.New()

	view, err := svc.Adjust(context.Background(), AdjustInput{ItemID: item.ID, NewStock: 4, Reason: "recount", AdminID: adminID})
	if err != nil {
		t.Fatalf("Adjust returned error: %v", err)
	}
	if view.Stock != 4 {
		t.Fatalf("expected stock 4, got %d", view.Stock)
	}
	if len(repo.histories) != 1 || repo.histories[0].QtyChange != -6 {
		t.Fatalf("expected ledger delta -6, got %+v", repo.histories)
	}
	if len(repo.adjustments) != 1 {
		t.Fatalf("expected one adjustment record, got %d", len(repo.adjustments))
	}
	adj := repo.adjustments[0]
	if adj.StockBefore != 10 || adj.StockAfter != 4 || adj.Reason != "recount" {
		t.Fatalf("unexpected adjustment %+v", adj)
	}
}

func TestAdjustRequiresReason(t *testing.T) {
	item := activeItem("Stapler", 10)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)

	_, err := svc.Adjust(context.Background(), AdjustInput{ItemID: item.ID, NewStock: 4, Reason: " ", AdminID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty reason, got %v", err)
	}
}

func TestAdjustAllowsConfirmingRecount(t *testing.T) {
	item := activeItem("Stapler", 10)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)

	view, err := svc.Adjust(context.Background(), AdjustInput{ItemID: item.ID, NewStock: 10, Reason: "recount confirmed", AdminID: uuid.New()})
	if err != nil {
		t.Fatalf("Adjust returned error: %v", err)
	}
	if view.Stock != 10 {
		t.Fatalf("expected stock 10, got %d", view.Stock)
	}
	if len(repo.histories) != 1 || repo.histories[0].QtyChange != 0 {
		t.Fatalf("expected a zero-delta ledger row, got %+v", repo.histories)
	}
	if len(repo.adjustments) != 1 || repo.adjustments[0].StockBefore != 10 || repo.adjustments[0].StockAfter != 10 {
		t.Fatalf("expected audit record for confirming recount, got %+v", repo.adjustments)
	}
}

func TestAdjustLosesRaceReturnsConflict(t *testing.T) {
	item := activeItem("Stapler", 10)
	repo := newStubInventoryRepo(item)
	repo.casFails = true
	svc := newTestInventoryService(t, repo)

	_, err := svc.Adjust(context.Background(), AdjustInput{ItemID: item.ID, NewStock: 4, Reason: "recount", AdminID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSetStockSkipsLedger(t *testing.T) {
	item := activeItem("Stapler", 10)
	repo := newStubInventoryRepo(item)
	svc := newTestInventoryService(t, repo)

	view, err := svc.SetStock(context.Background(), SetStockInput{ItemID: item.ID, NewStock: 99, AdminID: uuid.New()})
	if err != nil {
		t.Fatalf("SetStock returned error: %v", err)
	}
	if view.Stock != 99 {
		t.Fatalf("expected stock 99, got %d", view.Stock)
	}
	if len(repo.histories) != 0 {
		t.Fatal("SetStock must not write ledger rows")
	}
}

func TestListLowStockFlags(t *testing.T) {
	low := activeItem("Stapler", 2)
	fine := activeItem("Notebook", 50)
	repo := newStubInventoryRepo(low, fine)
	svc := newTestInventoryService(t, repo)

	views, err := svc.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("ListLowStock returned error: %v", err)
	}
	if len(views) != 1 || views[0].ID != low.ID {
		t.Fatalf("expected only the low item, got %+v", views)
	}
	if !views[0].LowStock {
		t.Fatal("expected low stock flag set")
	}
}
