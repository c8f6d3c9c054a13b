package debt

import (
	"context"
	"fmt"
	"time"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/tx"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/pkg/logger"
)

// ApplyPaymentInput carries one payment against a debtor balance.
// TenantID is explicit: the engine never reads it from ambient state.
type ApplyPaymentInput struct {
	TenantID id.ID
	Debtor   DebtorRef
	Amount   types.Money
	Method   string
	Notes    string
}

// Service is the Debt & Payment Ledger. ApplyPayment is the only way debt
// decreases other than a consignment return or sale cancellation reversal.
type Service struct {
	customers       catalog.CustomerRepository
	dealers         catalog.DealerRepository
	dealerCustomers catalog.DealerCustomerRepository
	payments        PaymentRepository
	txManager       tx.Manager
}

// NewService creates a new debt ledger service.
func NewService(
	customers catalog.CustomerRepository,
	dealers catalog.DealerRepository,
	dealerCustomers catalog.DealerCustomerRepository,
	payments PaymentRepository,
	txManager tx.Manager,
) *Service {
	return &Service{
		customers:       customers,
		dealers:         dealers,
		dealerCustomers: dealerCustomers,
		payments:        payments,
		txManager:       txManager,
	}
}

// ApplyPayment decrements the debtor's balance and appends an immutable
// payment record, atomically. The payment is rejected before any mutation
// if the amount is non-positive or exceeds the current debt.
func (s *Service) ApplyPayment(ctx context.Context, in ApplyPaymentInput) (*Payment, error) {
	if id.IsNil(in.TenantID) {
		return nil, apperror.NewValidation("tenant is required")
	}
	if !in.Debtor.Type.Valid() {
		return nil, apperror.NewValidation("unknown debtor type").
			WithDetail("type", string(in.Debtor.Type))
	}
	if id.IsNil(in.Debtor.ID) {
		return nil, apperror.NewValidation("debtor is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("amount", in.Amount.String())
	}

	payment := &Payment{
		TenantID:   in.TenantID,
		ID:         id.New(),
		DebtorType: in.Debtor.Type,
		DebtorID:   in.Debtor.ID,
		Amount:     in.Amount,
		Method:     in.Method,
		Notes:      in.Notes,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.decrementDebt(ctx, in); err != nil {
			return err
		}
		if err := s.payments.Append(ctx, payment); err != nil {
			return fmt.Errorf("append payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment applied",
		"payment_id", payment.ID,
		"debtor_type", payment.DebtorType,
		"debtor_id", payment.DebtorID,
		"amount", payment.Amount,
	)

	return payment, nil
}

// decrementDebt locks the debtor row, re-validates sufficiency under the
// lock, and writes the reduced balance.
func (s *Service) decrementDebt(ctx context.Context, in ApplyPaymentInput) error {
	switch in.Debtor.Type {
	case DebtorCustomer:
		c, err := s.customers.GetForUpdate(ctx, in.TenantID, in.Debtor.ID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(c.Debt) {
			return apperror.NewExcessPayment(c.ID.String(), in.Amount, c.Debt)
		}
		return s.customers.SetDebt(ctx, in.TenantID, c.ID, c.Debt.Sub(in.Amount))

	case DebtorDealer:
		d, err := s.dealers.GetForUpdate(ctx, in.TenantID, in.Debtor.ID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(d.Debt) {
			return apperror.NewExcessPayment(d.ID.String(), in.Amount, d.Debt)
		}
		return s.dealers.SetDebt(ctx, in.TenantID, d.ID, d.Debt.Sub(in.Amount))

	case DebtorDealerCustomer:
		dc, err := s.dealerCustomers.GetForUpdate(ctx, in.TenantID, in.Debtor.ID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(dc.Debt) {
			return apperror.NewInsufficientDealerCustomerBalance(dc.ID.String(), in.Amount, dc.Debt)
		}
		return s.dealerCustomers.SetDebt(ctx, in.TenantID, dc.ID, dc.Debt.Sub(in.Amount))
	}

	return apperror.NewValidation("unknown debtor type")
}

// History returns the payment trail for a tenant.
func (s *Service) History(ctx context.Context, tenantID id.ID, filter PaymentFilter) ([]*Payment, error) {
	return s.payments.List(ctx, tenantID, filter)
}
