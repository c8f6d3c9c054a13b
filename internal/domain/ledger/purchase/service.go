package purchase

import (
	"context"
	"fmt"
	"time"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/tx"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/domain/ledger/stock"
	"savdo/pkg/logger"
)

// ReceiveItem is one line of a supplier receipt.
type ReceiveItem struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitCost  types.Money `json:"unitCost"`
}

// ReceiveInput describes one receiving event.
type ReceiveInput struct {
	TenantID     id.ID
	SupplierName string
	Items        []ReceiveItem
	Notes        string
}

// Service is Purchase Receiving: it only composes with the Stock Ledger;
// no debt or dealer interaction.
type Service struct {
	repo      Repository
	stock     *stock.Service
	products  catalog.ProductRepository
	txManager tx.Manager
}

// NewService creates a new purchase receiving service.
func NewService(
	repo Repository,
	stockSvc *stock.Service,
	products catalog.ProductRepository,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		stock:     stockSvc,
		products:  products,
		txManager: txManager,
	}
}

// Receive increments stock per line, overwrites each product's cost basis
// with the line's unit cost, and inserts the purchase with its items,
// atomically. Fails only on invalid input or an unknown product.
func (s *Service) Receive(ctx context.Context, in ReceiveInput) (*Purchase, error) {
	if id.IsNil(in.TenantID) {
		return nil, apperror.NewValidation("tenant is required")
	}
	if len(in.Items) == 0 {
		return nil, apperror.NewValidation("at least one line is required")
	}
	for i, item := range in.Items {
		if id.IsNil(item.ProductID) {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: product is required", i+1))
		}
		if item.Quantity <= 0 {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if item.UnitCost.IsNegative() {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: unit cost must not be negative", i+1))
		}
	}

	received := &Purchase{
		TenantID:     in.TenantID,
		ID:           id.New(),
		SupplierName: in.SupplierName,
		Notes:        in.Notes,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lines := make([]stock.Line, 0, len(in.Items))
		for _, item := range in.Items {
			lines = append(lines, stock.Line{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if _, err := s.stock.Restore(ctx, in.TenantID, lines); err != nil {
			return err
		}

		total := types.Zero()
		items := make([]PurchaseItem, 0, len(in.Items))
		for _, item := range in.Items {
			// Last-cost-wins: the receipt's unit cost overwrites the
			// product's cost basis, no weighted average.
			if err := s.products.SetCostPrice(ctx, in.TenantID, item.ProductID, item.UnitCost); err != nil {
				return fmt.Errorf("set cost price: %w", err)
			}

			lineTotal := item.UnitCost.Mul(types.MoneyFromInt(item.Quantity))
			total = total.Add(lineTotal)
			items = append(items, PurchaseItem{
				PurchaseID: received.ID,
				ID:         id.New(),
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitCost:   item.UnitCost,
				Total:      lineTotal,
			})
		}

		received.TotalAmount = total
		received.Items = items

		if err := s.repo.Create(ctx, received); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.repo.SaveItems(ctx, received.ID, items); err != nil {
			return fmt.Errorf("save purchase items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase received",
		"purchase_id", received.ID,
		"supplier", received.SupplierName,
		"items", len(received.Items),
		"total", received.TotalAmount,
	)

	return received, nil
}

// GetByID retrieves a purchase with its items.
func (s *Service) GetByID(ctx context.Context, tenantID, purchaseID id.ID) (*Purchase, error) {
	found, err := s.repo.GetByID(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get purchase items: %w", err)
	}
	found.Items = items
	return found, nil
}

// List retrieves receiving history.
func (s *Service) List(ctx context.Context, tenantID id.ID, filter PurchaseFilter) ([]*Purchase, error) {
	return s.repo.List(ctx, tenantID, filter)
}
