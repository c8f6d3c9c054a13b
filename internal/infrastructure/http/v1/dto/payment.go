package dto

import (
	"time"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/ledger/debt"
)

// ApplyPaymentRequest records one payment against a debtor balance.
type ApplyPaymentRequest struct {
	DebtorType string      `json:"debtorType" binding:"required,oneof=customer dealer dealer_customer"`
	DebtorID   string      `json:"debtorId" binding:"required"`
	Amount     types.Money `json:"amount" binding:"required"`
	Method     string      `json:"method"`
	Notes      string      `json:"notes"`
}

// ToInput converts the request into a service input.
func (r ApplyPaymentRequest) ToInput(tenantID id.ID) (debt.ApplyPaymentInput, error) {
	debtorID, err := ParseID("debtorId", r.DebtorID)
	if err != nil {
		return debt.ApplyPaymentInput{}, err
	}

	return debt.ApplyPaymentInput{
		TenantID: tenantID,
		Debtor: debt.DebtorRef{
			Type: debt.DebtorType(r.DebtorType),
			ID:   debtorID,
		},
		Amount: r.Amount,
		Method: r.Method,
		Notes:  r.Notes,
	}, nil
}

// PaymentResponse is one immutable payment record.
type PaymentResponse struct {
	ID         string      `json:"id"`
	DebtorType string      `json:"debtorType"`
	DebtorID   string      `json:"debtorId"`
	Amount     types.Money `json:"amount"`
	Method     string      `json:"method"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// FromPayment converts a payment record.
func FromPayment(p *debt.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID.String(),
		DebtorType: string(p.DebtorType),
		DebtorID:   p.DebtorID.String(),
		Amount:     p.Amount,
		Method:     p.Method,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
	}
}

// PaymentListQuery filters payment history queries.
type PaymentListQuery struct {
	DebtorType string     `form:"debtorType" binding:"omitempty,oneof=customer dealer dealer_customer"`
	DebtorID   string     `form:"debtorId"`
	FromDate   *time.Time `form:"from" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to" time_format:"2006-01-02"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts query params into a repository filter.
func (q PaymentListQuery) ToFilter() (debt.PaymentFilter, error) {
	filter := debt.PaymentFilter{
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = 100
	}

	if q.DebtorType != "" {
		t := debt.DebtorType(q.DebtorType)
		filter.DebtorType = &t
	}
	if q.DebtorID != "" {
		debtorID, err := ParseID("debtorId", q.DebtorID)
		if err != nil {
			return filter, err
		}
		filter.DebtorID = &debtorID
	}

	return filter, nil
}
