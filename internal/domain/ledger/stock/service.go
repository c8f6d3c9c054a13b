// Package stock owns the single source of truth for a product's central
// warehouse quantity.
package stock

import (
	"context"
	"fmt"
	"sort"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/domain/catalog"
	"savdo/pkg/logger"
)

// Line is one (product, quantity) entry of a multi-item operation.
type Line struct {
	ProductID id.ID
	Quantity  int64
}

// Service provides atomic stock increment/decrement with a non-negativity
// guard. Callers compose it inside their own ledger transaction: both
// Reserve and Restore expect an open transaction in ctx.
type Service struct {
	products catalog.ProductRepository
}

// NewService creates a new stock ledger service.
func NewService(products catalog.ProductRepository) *Service {
	return &Service{products: products}
}

// Reserve decrements stock for every line, or fails without mutating
// anything. All product rows are locked first (in ascending id order) and
// every line is validated before the first decrement, so a multi-product
// operation either fully succeeds or fully fails.
//
// Returns the locked products keyed by id so callers can value the
// movement at current prices within the same transaction.
func (s *Service) Reserve(ctx context.Context, tenantID id.ID, lines []Line) (map[id.ID]*catalog.Product, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	locked, err := s.lockProducts(ctx, tenantID, lines)
	if err != nil {
		return nil, err
	}

	// Check every line before mutating any line.
	need := requiredByProduct(lines)
	for productID, qty := range need {
		p, ok := locked[productID]
		if !ok {
			return nil, apperror.NewNotFound("product", productID)
		}
		if p.Stock < qty {
			return nil, apperror.NewInsufficientStock(productID.String(), qty, p.Stock)
		}
	}

	for productID, qty := range need {
		if err := s.products.AdjustStock(ctx, tenantID, productID, -qty); err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", productID, err)
		}
	}

	return locked, nil
}

// Restore increments stock unconditionally. Used on return, cancellation,
// and purchase receiving.
func (s *Service) Restore(ctx context.Context, tenantID id.ID, lines []Line) (map[id.ID]*catalog.Product, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	locked, err := s.lockProducts(ctx, tenantID, lines)
	if err != nil {
		return nil, err
	}

	need := requiredByProduct(lines)
	for productID := range need {
		if _, ok := locked[productID]; !ok {
			return nil, apperror.NewNotFound("product", productID)
		}
	}

	for productID, qty := range need {
		if err := s.products.AdjustStock(ctx, tenantID, productID, qty); err != nil {
			return nil, fmt.Errorf("increment stock for %s: %w", productID, err)
		}
	}

	return locked, nil
}

// Availability returns the current central stock for a product.
func (s *Service) Availability(ctx context.Context, tenantID, productID id.ID) (int64, error) {
	p, err := s.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// LowStock returns products below their replenishment threshold.
func (s *Service) LowStock(ctx context.Context, tenantID id.ID) ([]*catalog.Product, error) {
	products, err := s.products.ListBelowMinStock(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list below min stock: %w", err)
	}
	logger.Debug(ctx, "low stock report", "count", len(products))
	return products, nil
}

// lockProducts locks all referenced product rows in ascending id order so
// two concurrent multi-product operations cannot deadlock.
func (s *Service) lockProducts(ctx context.Context, tenantID id.ID, lines []Line) (map[id.ID]*catalog.Product, error) {
	ids := make([]id.ID, 0, len(lines))
	seen := make(map[id.ID]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	products, err := s.products.GetManyForUpdate(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	byID := make(map[id.ID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// requiredByProduct folds duplicate product lines into one quantity so the
// sufficiency check sees the true total.
func requiredByProduct(lines []Line) map[id.ID]int64 {
	need := make(map[id.ID]int64, len(lines))
	for _, l := range lines {
		need[l.ProductID] += l.Quantity
	}
	return need
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required")
	}
	for i, l := range lines {
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation(fmt.Sprintf("line %d: product is required", i+1))
		}
		if l.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
	}
	return nil
}
