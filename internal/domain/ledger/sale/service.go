package sale

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

// CreateItem is one requested order line; when Price is zero the current
// catalog price applies.
type CreateItem struct {
	ProductID id.ID       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	Price     types.Money `json:"price"`
}

// CreateInput describes one POS sale or portal order.
type CreateInput struct {
	TenantID    id.ID
	CustomerID  *id.ID
	Items       []CreateItem
	Discount    types.Money
	PaidAmount  types.Money
	PaymentType PaymentType
	Source      Source
	Notes       string
}

// TransitionInput requests one status change.
type TransitionInput struct {
	TenantID id.ID
	SaleID   id.ID
	To       Status
	// DealerID optionally assigns a dealer to the delivery created on
	// first entry to delivering.
	DealerID *id.ID
}

// Service is the Sale Lifecycle State Machine. Creation and cancellation
// are atomic with their stock and debt side effects; a visible status
// change without the corresponding ledger change is a consistency bug.
type Service struct {
	repo       Repository
	deliveries DeliveryRepository
	stock      *stock.Service
	customers  catalog.CustomerRepository
	txManager  tx.Manager
}

// NewService creates a new sale lifecycle service.
func NewService(
	repo Repository,
	deliveries DeliveryRepository,
	stockSvc *stock.Service,
	customers catalog.CustomerRepository,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		deliveries: deliveries,
		stock:      stockSvc,
		customers:  customers,
		txManager:  txManager,
	}
}

// Create validates every line against stock availability, decrements stock
// per line, inserts the sale and its items, and accrues the unpaid
// remainder to the customer's debt, all in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	switch in.PaymentType {
	case PaymentCash, PaymentCard, PaymentDebt, PaymentPartial:
	default:
		return nil, apperror.NewValidation("unknown payment type").
			WithDetail("payment_type", string(in.PaymentType))
	}
	if in.Source != SourcePOS && in.Source != SourcePortal {
		return nil, apperror.NewValidation("unknown sale source").
			WithDetail("source", string(in.Source))
	}

	newSale := &Sale{
		TenantID:    in.TenantID,
		ID:          id.New(),
		CustomerID:  in.CustomerID,
		Status:      StatusPending,
		Discount:    in.Discount,
		PaidAmount:  in.PaidAmount,
		PaymentType: in.PaymentType,
		Source:      in.Source,
		Notes:       in.Notes,
		Version:     1,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lines := make([]stock.Line, 0, len(in.Items))
		for _, item := range in.Items {
			lines = append(lines, stock.Line{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		products, err := s.stock.Reserve(ctx, in.TenantID, lines)
		if err != nil {
			return err
		}

		total := types.Zero()
		items := make([]SaleItem, 0, len(in.Items))
		for _, item := range in.Items {
			price := item.Price
			if price.IsZero() {
				price = products[item.ProductID].Price
			}
			lineTotal := price.Mul(types.MoneyFromInt(item.Quantity))
			total = total.Add(lineTotal)
			items = append(items, SaleItem{
				SaleID:    newSale.ID,
				ID:        id.New(),
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     price,
				Total:     lineTotal,
			})
		}

		newSale.TotalAmount = total.Sub(in.Discount)
		if newSale.TotalAmount.IsNegative() {
			return apperror.NewValidation("discount exceeds order total").
				WithDetail("discount", in.Discount.String()).
				WithDetail("total", total.String())
		}
		newSale.Items = items

		if err := newSale.Validate(ctx); err != nil {
			return err
		}
		if err := s.validatePayment(newSale); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, newSale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.SaveItems(ctx, newSale.ID, items); err != nil {
			return fmt.Errorf("save sale items: %w", err)
		}

		unpaid := newSale.UnpaidAmount()
		if unpaid.IsPositive() {
			if in.CustomerID == nil {
				return apperror.NewValidation("debt sale requires a customer")
			}
			c, err := s.customers.GetForUpdate(ctx, in.TenantID, *in.CustomerID)
			if err != nil {
				return err
			}
			if err := s.customers.SetDebt(ctx, in.TenantID, c.ID, c.Debt.Add(unpaid)); err != nil {
				return fmt.Errorf("accrue customer debt: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale created",
		"sale_id", newSale.ID,
		"source", newSale.Source,
		"total", newSale.TotalAmount,
		"payment_type", newSale.PaymentType,
	)

	return newSale, nil
}

// validatePayment enforces the payment-type rules at creation time.
func (s *Service) validatePayment(sale *Sale) error {
	switch sale.PaymentType {
	case PaymentCash, PaymentCard:
		if !sale.PaidAmount.Equal(sale.TotalAmount) {
			return apperror.NewValidation("cash and card sales must be fully paid").
				WithDetail("paid_amount", sale.PaidAmount.String()).
				WithDetail("total", sale.TotalAmount.String())
		}
	case PaymentDebt:
		if !sale.PaidAmount.IsZero() {
			return apperror.NewValidation("debt sales must not carry a paid amount")
		}
	case PaymentPartial:
		if !sale.PaidAmount.IsPositive() || sale.PaidAmount.GreaterThanOrEqual(sale.TotalAmount) {
			return apperror.NewValidation("partial payment must be between zero and the order total").
				WithDetail("paid_amount", sale.PaidAmount.String()).
				WithDetail("total", sale.TotalAmount.String())
		}
	}
	return nil
}

// Transition applies one status change. Cancellation restores stock for
// every item and reverses the customer debt impact; entering delivering
// creates the delivery record once; shipped and delivered are pure status
// bookkeeping.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (*Sale, error) {
	if !ValidStatus(in.To) {
		return nil, apperror.NewValidation("unknown sale status").
			WithDetail("status", string(in.To))
	}

	var result *Sale

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, in.TenantID, in.SaleID)
		if err != nil {
			return err
		}

		if !CanTransition(current.Status, in.To) {
			return apperror.NewInvalidTransition(string(current.Status), string(in.To))
		}

		switch in.To {
		case StatusCancelled:
			if err := s.reverseCreation(ctx, current); err != nil {
				return err
			}
		case StatusDelivering:
			if err := s.ensureDelivery(ctx, current, in.DealerID); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatus(ctx, in.TenantID, in.SaleID, in.To, current.Version); err != nil {
			return err
		}

		current.Status = in.To
		current.Version++
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale transitioned",
		"sale_id", in.SaleID,
		"to", in.To,
	)

	return result, nil
}

// reverseCreation is the symmetric undo of Create: restore stock for every
// item and reduce customer debt by the sale total, floored at zero.
func (s *Service) reverseCreation(ctx context.Context, current *Sale) error {
	items, err := s.repo.GetItems(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("get sale items: %w", err)
	}

	lines := make([]stock.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, stock.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if _, err := s.stock.Restore(ctx, current.TenantID, lines); err != nil {
		return err
	}

	if current.CustomerID != nil {
		c, err := s.customers.GetForUpdate(ctx, current.TenantID, *current.CustomerID)
		if err != nil {
			return err
		}
		newDebt := types.MaxMoney(types.Zero(), c.Debt.Sub(current.TotalAmount))
		if err := s.customers.SetDebt(ctx, current.TenantID, c.ID, newDebt); err != nil {
			return fmt.Errorf("reverse customer debt: %w", err)
		}
	}

	return nil
}

// ensureDelivery creates the delivery record on first entry to delivering.
func (s *Service) ensureDelivery(ctx context.Context, current *Sale, dealerID *id.ID) error {
	existing, err := s.deliveries.GetBySale(ctx, current.TenantID, current.ID)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("get delivery: %w", err)
	}
	if existing != nil {
		return nil
	}

	delivery := &Delivery{
		TenantID:  current.TenantID,
		ID:        id.New(),
		SaleID:    current.ID,
		DealerID:  dealerID,
		Status:    "assigned",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.deliveries.Create(ctx, delivery); err != nil {
		return fmt.Errorf("create delivery: %w", err)
	}
	return nil
}

// GetByID retrieves a sale with its items.
func (s *Service) GetByID(ctx context.Context, tenantID, saleID id.ID) (*Sale, error) {
	found, err := s.repo.GetByID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	found.Items = items
	return found, nil
}

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, tenantID id.ID, filter SaleFilter) ([]*Sale, error) {
	return s.repo.List(ctx, tenantID, filter)
}
