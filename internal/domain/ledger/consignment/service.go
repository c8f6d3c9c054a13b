package consignment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/tx"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/domain/ledger/debt"
	"savdo/internal/domain/ledger/stock"
	"savdo/pkg/logger"
)

// LoadItem is one line of a tenant-to-dealer load.
type LoadItem struct {
	ProductID id.ID `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// LoadInput describes one atomic load operation.
type LoadInput struct {
	TenantID   id.ID
	DealerID   id.ID
	Items      []LoadItem
	Policy     PaymentPolicy
	PaidAmount types.Money // required for PolicyPartial: 0 < paid < total
	Method     string      // payment method recorded for cash/partial
	Notes      string
}

// SellItem is one line of a dealer-to-end-customer sale.
type SellItem struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	Price     types.Money `json:"price"`
}

// SellInput describes one atomic dealer sell operation.
type SellInput struct {
	TenantID      id.ID
	DealerID      id.ID
	Items         []SellItem
	CustomerName  string
	CustomerPhone string
	// DealerCustomerID optionally references the dealer's sub-customer
	// ledger; an unpaid remainder accrues to that balance.
	DealerCustomerID *id.ID
	PaidAmount       types.Money
	Notes            string
}

// ReturnItem is one line of a dealer-to-tenant return.
type ReturnItem struct {
	ProductID id.ID `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// ReturnInput describes one atomic return operation.
type ReturnInput struct {
	TenantID id.ID
	DealerID id.ID
	Items    []ReturnItem
	Notes    string
}

// LoadResult reports the financial outcome of a load.
type LoadResult struct {
	TotalLoaded types.Money `json:"totalLoaded"`
	DealerDebt  types.Money `json:"dealerDebt"`
	PaymentID   *id.ID      `json:"paymentId,omitempty"`
}

// Service is the Consignment Engine: load, sell, and return, each one
// atomic ledger transaction.
type Service struct {
	stock           *stock.Service
	inventory       InventoryRepository
	transactions    TransactionRepository
	dealers         catalog.DealerRepository
	dealerCustomers catalog.DealerCustomerRepository
	payments        debt.PaymentRepository
	txManager       tx.Manager
}

// NewService creates a new consignment engine.
func NewService(
	stockSvc *stock.Service,
	inventory InventoryRepository,
	transactions TransactionRepository,
	dealers catalog.DealerRepository,
	dealerCustomers catalog.DealerCustomerRepository,
	payments debt.PaymentRepository,
	txManager tx.Manager,
) *Service {
	return &Service{
		stock:           stockSvc,
		inventory:       inventory,
		transactions:    transactions,
		dealers:         dealers,
		dealerCustomers: dealerCustomers,
		payments:        payments,
		txManager:       txManager,
	}
}

// Load moves goods from the central warehouse to a dealer and applies the
// payment policy. The whole load is one atomic unit: every line is checked
// against central stock before any mutation.
func (s *Service) Load(ctx context.Context, in LoadInput) (*LoadResult, error) {
	if id.IsNil(in.TenantID) {
		return nil, apperror.NewValidation("tenant is required")
	}
	if id.IsNil(in.DealerID) {
		return nil, apperror.NewValidation("dealer is required")
	}
	switch in.Policy {
	case PolicyCash, PolicyDebt, PolicyPartial:
	default:
		return nil, apperror.NewValidation("unknown payment policy").
			WithDetail("policy", string(in.Policy))
	}

	var result LoadResult

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Lock the dealer before product rows; every operation touching
		// both follows the same order.
		dealer, err := s.dealers.GetForUpdate(ctx, in.TenantID, in.DealerID)
		if err != nil {
			return err
		}

		lines := make([]stock.Line, 0, len(in.Items))
		for _, item := range in.Items {
			lines = append(lines, stock.Line{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		products, err := s.stock.Reserve(ctx, in.TenantID, lines)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		total := types.Zero()
		txns := make([]*DealerTransaction, 0, len(in.Items))
		for _, item := range in.Items {
			if err := s.inventory.AdjustQuantity(ctx, in.TenantID, in.DealerID, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("increment dealer inventory: %w", err)
			}

			price := products[item.ProductID].Price
			lineTotal := price.Mul(types.MoneyFromInt(item.Quantity))
			total = total.Add(lineTotal)

			txns = append(txns, &DealerTransaction{
				TenantID:  in.TenantID,
				ID:        id.New(),
				DealerID:  in.DealerID,
				Type:      TransactionLoad,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     price,
				Total:     lineTotal,
				Notes:     in.Notes,
				CreatedAt: now,
			})
		}

		if err := s.transactions.Append(ctx, txns); err != nil {
			return fmt.Errorf("append load transactions: %w", err)
		}

		paid, debtDelta, err := splitLoadPayment(in.Policy, in.PaidAmount, total)
		if err != nil {
			return err
		}

		newDebt := dealer.Debt
		if debtDelta.IsPositive() {
			newDebt = dealer.Debt.Add(debtDelta)
			if err := s.dealers.SetDebt(ctx, in.TenantID, in.DealerID, newDebt); err != nil {
				return fmt.Errorf("accrue dealer debt: %w", err)
			}
		}

		if paid.IsPositive() {
			payment := &debt.Payment{
				TenantID:   in.TenantID,
				ID:         id.New(),
				DebtorType: debt.DebtorDealer,
				DebtorID:   in.DealerID,
				Amount:     paid,
				Method:     in.Method,
				Notes:      in.Notes,
				CreatedAt:  now,
			}
			if err := s.payments.Append(ctx, payment); err != nil {
				return fmt.Errorf("append load payment: %w", err)
			}
			result.PaymentID = &payment.ID
		}

		result.TotalLoaded = total
		result.DealerDebt = newDebt
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "dealer load committed",
		"dealer_id", in.DealerID,
		"items", len(in.Items),
		"total", result.TotalLoaded,
		"policy", in.Policy,
	)

	return &result, nil
}

// splitLoadPayment resolves the payment policy into (paid now, debt accrued).
func splitLoadPayment(policy PaymentPolicy, paidAmount, total types.Money) (paid, debtDelta types.Money, err error) {
	switch policy {
	case PolicyCash:
		return total, types.Zero(), nil
	case PolicyDebt:
		return types.Zero(), total, nil
	case PolicyPartial:
		if !paidAmount.IsPositive() || paidAmount.GreaterThanOrEqual(total) {
			return types.Zero(), types.Zero(), apperror.NewValidation(
				"partial payment must be between zero and the loaded total").
				WithDetail("paid_amount", paidAmount.String()).
				WithDetail("total", total.String())
		}
		return paidAmount, total.Sub(paidAmount), nil
	}
	return types.Zero(), types.Zero(), apperror.NewValidation("unknown payment policy")
}

// Sell records a dealer selling consigned goods to an end customer. It
// only reduces the dealer's physical holdings: central stock already moved
// at load time and dealer debt is untouched. An unpaid remainder accrues
// to the referenced dealer sub-customer, when one is given.
func (s *Service) Sell(ctx context.Context, in SellInput) error {
	if id.IsNil(in.TenantID) {
		return apperror.NewValidation("tenant is required")
	}
	if id.IsNil(in.DealerID) {
		return apperror.NewValidation("dealer is required")
	}
	if len(in.Items) == 0 {
		return apperror.NewValidation("at least one line is required")
	}
	for i, item := range in.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation(fmt.Sprintf("line %d: product is required", i+1))
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if item.Price.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("line %d: price must not be negative", i+1))
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkAndTakeInventory(ctx, in.TenantID, in.DealerID, sellQuantities(in.Items)); err != nil {
			return err
		}

		now := time.Now().UTC()
		total := types.Zero()
		txns := make([]*DealerTransaction, 0, len(in.Items))
		for _, item := range in.Items {
			lineTotal := item.Price.Mul(types.MoneyFromInt(item.Quantity))
			total = total.Add(lineTotal)
			txns = append(txns, &DealerTransaction{
				TenantID:      in.TenantID,
				ID:            id.New(),
				DealerID:      in.DealerID,
				Type:          TransactionSell,
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				Price:         item.Price,
				Total:         lineTotal,
				CustomerName:  in.CustomerName,
				CustomerPhone: in.CustomerPhone,
				Notes:         in.Notes,
				CreatedAt:     now,
			})
		}

		if err := s.transactions.Append(ctx, txns); err != nil {
			return fmt.Errorf("append sell transactions: %w", err)
		}

		remainder := total.Sub(in.PaidAmount)
		if in.DealerCustomerID != nil && remainder.IsPositive() {
			dc, err := s.dealerCustomers.GetForUpdate(ctx, in.TenantID, *in.DealerCustomerID)
			if err != nil {
				return err
			}
			if dc.DealerID != in.DealerID {
				return apperror.NewNotFound("dealer customer", *in.DealerCustomerID)
			}
			if err := s.dealerCustomers.SetDebt(ctx, in.TenantID, dc.ID, dc.Debt.Add(remainder)); err != nil {
				return fmt.Errorf("accrue dealer customer debt: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "dealer sell committed",
		"dealer_id", in.DealerID,
		"items", len(in.Items),
		"customer", in.CustomerName,
	)

	return nil
}

// Return moves goods back from a dealer to the central warehouse and
// reduces the dealer's debt by the returned value, floored at zero.
func (s *Service) Return(ctx context.Context, in ReturnInput) error {
	if id.IsNil(in.TenantID) {
		return apperror.NewValidation("tenant is required")
	}
	if id.IsNil(in.DealerID) {
		return apperror.NewValidation("dealer is required")
	}
	if len(in.Items) == 0 {
		return apperror.NewValidation("at least one line is required")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		dealer, err := s.dealers.GetForUpdate(ctx, in.TenantID, in.DealerID)
		if err != nil {
			return err
		}

		quantities := make(map[id.ID]int64, len(in.Items))
		for i, item := range in.Items {
			if id.IsNil(item.ProductID) {
				return apperror.NewValidation(fmt.Sprintf("line %d: product is required", i+1))
			}
			if item.Quantity <= 0 {
				return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1))
			}
			quantities[item.ProductID] += item.Quantity
		}

		if err := s.checkAndTakeInventory(ctx, in.TenantID, in.DealerID, quantities); err != nil {
			return err
		}

		lines := make([]stock.Line, 0, len(quantities))
		for productID, qty := range quantities {
			lines = append(lines, stock.Line{ProductID: productID, Quantity: qty})
		}
		products, err := s.stock.Restore(ctx, in.TenantID, lines)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		returnedValue := types.Zero()
		txns := make([]*DealerTransaction, 0, len(in.Items))
		for _, item := range in.Items {
			price := products[item.ProductID].Price
			lineTotal := price.Mul(types.MoneyFromInt(item.Quantity))
			returnedValue = returnedValue.Add(lineTotal)
			txns = append(txns, &DealerTransaction{
				TenantID:  in.TenantID,
				ID:        id.New(),
				DealerID:  in.DealerID,
				Type:      TransactionReturn,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     price,
				Total:     lineTotal,
				Notes:     in.Notes,
				CreatedAt: now,
			})
		}

		if err := s.transactions.Append(ctx, txns); err != nil {
			return fmt.Errorf("append return transactions: %w", err)
		}

		newDebt := types.MaxMoney(types.Zero(), dealer.Debt.Sub(returnedValue))
		if err := s.dealers.SetDebt(ctx, in.TenantID, in.DealerID, newDebt); err != nil {
			return fmt.Errorf("reduce dealer debt: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "dealer return committed",
		"dealer_id", in.DealerID,
		"items", len(in.Items),
	)

	return nil
}

// checkAndTakeInventory locks the dealer's inventory rows in ascending
// product id order, validates every quantity, then decrements. Check and
// mutate stay under the same row locks so two concurrent sells cannot
// both pass the sufficiency check.
func (s *Service) checkAndTakeInventory(ctx context.Context, tenantID, dealerID id.ID, quantities map[id.ID]int64) error {
	ids := make([]id.ID, 0, len(quantities))
	for productID := range quantities {
		ids = append(ids, productID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, productID := range ids {
		inv, err := s.inventory.GetForUpdate(ctx, tenantID, dealerID, productID)
		if err != nil {
			return fmt.Errorf("lock dealer inventory: %w", err)
		}
		if inv.Quantity < quantities[productID] {
			return apperror.NewInsufficientDealerStock(
				dealerID.String(), productID.String(), quantities[productID], inv.Quantity)
		}
	}

	for _, productID := range ids {
		if err := s.inventory.AdjustQuantity(ctx, tenantID, dealerID, productID, -quantities[productID]); err != nil {
			return fmt.Errorf("decrement dealer inventory: %w", err)
		}
	}

	return nil
}

func sellQuantities(items []SellItem) map[id.ID]int64 {
	quantities := make(map[id.ID]int64, len(items))
	for _, item := range items {
		quantities[item.ProductID] += item.Quantity
	}
	return quantities
}

// Inventory returns a dealer's current holdings.
func (s *Service) Inventory(ctx context.Context, tenantID, dealerID id.ID) ([]*DealerInventory, error) {
	return s.inventory.ListByDealer(ctx, tenantID, dealerID)
}

// History returns the dealer transaction log.
func (s *Service) History(ctx context.Context, tenantID id.ID, filter TransactionFilter) ([]*DealerTransaction, error) {
	return s.transactions.List(ctx, tenantID, filter)
}

// ConsignedTotals sums consigned quantity per product across all dealers.
// Together with central stock it backs the conservation report.
func (s *Service) ConsignedTotals(ctx context.Context, tenantID id.ID) (map[id.ID]int64, error) {
	return s.inventory.TotalsByProduct(ctx, tenantID)
}
