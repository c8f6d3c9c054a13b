package handlers

import (
	"github.com/gin-gonic/gin"

	"savdo/internal/domain/ledger/purchase"
	"savdo/internal/infrastructure/http/v1/dto"
	"savdo/internal/infrastructure/storage/postgres"
)

// PurchaseHandler handles HTTP requests for purchase receiving.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Receive handles POST /purchases
func (h *PurchaseHandler) Receive(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	received, err := h.service.Receive(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, tenantID, "purchase", received.ID, postgres.AuditActionReceive, received)
	h.Created(c, dto.FromPurchase(received))
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	purchaseID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetByID(c.Request.Context(), tenantID, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchase(found))
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var query dto.PurchaseListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	purchases, err := h.service.List(c.Request.Context(), tenantID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PurchaseResponse, len(purchases))
	for i, p := range purchases {
		items[i] = dto.FromPurchase(p)
	}
	h.OK(c, dto.NewListResponse(items))
}
