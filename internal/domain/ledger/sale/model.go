// Package sale owns point-of-sale and portal order records, their items,
// and the status state machine.
package sale

import (
	"context"
	"time"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/types"
)

// Status is a sale lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCompleted  Status = "completed"
	StatusDelivering Status = "delivering"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// transitions is the closed set of legal status edges. Anything else is
// rejected with INVALID_TRANSITION. Shipped and delivered sales can never
// be cancelled.
var transitions = map[Status][]Status{
	StatusPending:    {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusDelivering, StatusCancelled},
	StatusDelivering: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// PaymentType is how the buyer settles a sale.
type PaymentType string

const (
	PaymentCash    PaymentType = "cash"
	PaymentCard    PaymentType = "card"
	PaymentDebt    PaymentType = "debt"
	PaymentPartial PaymentType = "partial"
)

// Source distinguishes POS sales from customer portal orders.
type Source string

const (
	SourcePOS    Source = "pos"
	SourcePortal Source = "portal"
)

// Sale is one order. Items are immutable once created; quantity changes
// are never applied to a placed sale, only to its cancellation effects.
type Sale struct {
	TenantID    id.ID       `db:"tenant_id" json:"tenantId"`
	ID          id.ID       `db:"id" json:"id"`
	CustomerID  *id.ID      `db:"customer_id" json:"customerId,omitempty"`
	Status      Status      `db:"status" json:"status"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	Discount    types.Money `db:"discount" json:"discount"`
	PaidAmount  types.Money `db:"paid_amount" json:"paidAmount"`
	PaymentType PaymentType `db:"payment_type" json:"paymentType"`
	Source      Source      `db:"source" json:"source"`
	Notes       string      `db:"notes" json:"notes,omitempty"`
	Version     int         `db:"version" json:"version"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`

	Items []SaleItem `db:"-" json:"items"`
}

// UnpaidAmount is the part of the total the buyer still owes.
func (s *Sale) UnpaidAmount() types.Money {
	unpaid := s.TotalAmount.Sub(s.PaidAmount)
	if unpaid.IsNegative() {
		return types.Zero()
	}
	return unpaid
}

// SaleItem is one immutable order line.
type SaleItem struct {
	SaleID    id.ID       `db:"sale_id" json:"saleId"`
	ID        id.ID       `db:"id" json:"id"`
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	Price     types.Money `db:"price" json:"price"`
	Total     types.Money `db:"total" json:"total"`
}

// Delivery links a sale to its delivery tracking record, created on the
// first transition to delivering. At most one per sale.
type Delivery struct {
	TenantID  id.ID     `db:"tenant_id" json:"tenantId"`
	ID        id.ID     `db:"id" json:"id"`
	SaleID    id.ID     `db:"sale_id" json:"saleId"`
	DealerID  *id.ID    `db:"dealer_id" json:"dealerId,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks sale invariants without database access.
func (s *Sale) Validate(ctx context.Context) error {
	if id.IsNil(s.TenantID) {
		return apperror.NewValidation("tenant is required")
	}
	if !ValidStatus(s.Status) {
		return apperror.NewValidation("unknown sale status").WithDetail("status", string(s.Status))
	}
	if len(s.Items) == 0 {
		return apperror.NewValidation("at least one line is required").WithDetail("field", "items")
	}
	for i, item := range s.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").WithDetail("lineNo", i+1)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").WithDetail("lineNo", i+1)
		}
		if item.Price.IsNegative() {
			return apperror.NewValidation("price must not be negative").
				WithDetail("field", "items").WithDetail("lineNo", i+1)
		}
	}
	if s.Discount.IsNegative() {
		return apperror.NewValidation("discount must not be negative")
	}
	if s.PaidAmount.IsNegative() {
		return apperror.NewValidation("paid amount must not be negative")
	}
	return nil
}

// SaleFilter narrows sale list queries.
type SaleFilter struct {
	Status     *Status
	CustomerID *id.ID
	Source     *Source
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository defines persistence for sales and their items.
type Repository interface {
	Create(ctx context.Context, sale *Sale) error

	// SaveItems inserts the immutable order lines.
	SaveItems(ctx context.Context, saleID id.ID, items []SaleItem) error

	GetByID(ctx context.Context, tenantID, saleID id.ID) (*Sale, error)

	// GetForUpdate locks the sale row for a status transition.
	GetForUpdate(ctx context.Context, tenantID, saleID id.ID) (*Sale, error)

	GetItems(ctx context.Context, saleID id.ID) ([]SaleItem, error)

	// UpdateStatus writes the new status with optimistic version check.
	UpdateStatus(ctx context.Context, tenantID, saleID id.ID, status Status, version int) error

	List(ctx context.Context, tenantID id.ID, filter SaleFilter) ([]*Sale, error)
}

// DeliveryRepository stores delivery records, one per sale.
type DeliveryRepository interface {
	GetBySale(ctx context.Context, tenantID, saleID id.ID) (*Delivery, error)
	Create(ctx context.Context, delivery *Delivery) error
}
