// Package debt owns debt balances for customers, dealers, and dealer
// sub-customers, and the append-only payment history that reduces them.
package debt

import (
	"context"
	"time"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
)

// DebtorType identifies which balance a payment is applied against.
type DebtorType string

const (
	DebtorCustomer       DebtorType = "customer"
	DebtorDealer         DebtorType = "dealer"
	DebtorDealerCustomer DebtorType = "dealer_customer"
)

// Valid reports whether the debtor type is one of the known kinds.
func (t DebtorType) Valid() bool {
	switch t {
	case DebtorCustomer, DebtorDealer, DebtorDealerCustomer:
		return true
	}
	return false
}

// DebtorRef points at the debtor whose balance a payment reduces.
type DebtorRef struct {
	Type DebtorType `json:"type"`
	ID   id.ID      `json:"id"`
}

// Payment is one immutable payment record. Payments are never updated or
// deleted; the payment history is the audit trail for how a balance
// reached its current value.
type Payment struct {
	TenantID   id.ID       `db:"tenant_id" json:"tenantId"`
	ID         id.ID       `db:"id" json:"id"`
	DebtorType DebtorType  `db:"debtor_type" json:"debtorType"`
	DebtorID   id.ID       `db:"debtor_id" json:"debtorId"`
	Amount     types.Money `db:"amount" json:"amount"`
	Method     string      `db:"method" json:"method"`
	Notes      string      `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}

// PaymentFilter narrows payment history queries.
type PaymentFilter struct {
	DebtorType *DebtorType
	DebtorID   *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// PaymentRepository is insert-only by construction: no update or delete
// operation is exposed at all.
type PaymentRepository interface {
	// Append inserts an immutable payment record.
	Append(ctx context.Context, payment *Payment) error

	// List returns payment history for a tenant.
	List(ctx context.Context, tenantID id.ID, filter PaymentFilter) ([]*Payment, error)
}
