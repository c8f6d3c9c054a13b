package handlers

import (
	"github.com/gin-gonic/gin"

	"savdo/internal/domain/ledger/debt"
	"savdo/internal/infrastructure/http/v1/dto"
	"savdo/internal/infrastructure/storage/postgres"
)

// PaymentHandler handles HTTP requests for the debt & payment ledger.
type PaymentHandler struct {
	*BaseHandler
	service *debt.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *debt.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// Apply handles POST /payments
func (h *PaymentHandler) Apply(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.ApplyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	payment, err := h.service.ApplyPayment(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, tenantID, string(in.Debtor.Type), in.Debtor.ID, postgres.AuditActionPayment, payment)
	h.Created(c, dto.FromPayment(payment))
}

// History handles GET /payments
func (h *PaymentHandler) History(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var query dto.PaymentListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	payments, err := h.service.History(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = dto.FromPayment(p)
	}
	h.OK(c, dto.NewListResponse(items))
}
