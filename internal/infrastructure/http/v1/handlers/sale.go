package handlers

import (
	"github.com/gin-gonic/gin"

	"savdo/internal/domain/ledger/sale"
	"savdo/internal/infrastructure/http/v1/dto"
	"savdo/internal/infrastructure/storage/postgres"
)

// SaleHandler handles HTTP requests for the sale lifecycle.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Create handles POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, tenantID, "sale", created.ID, postgres.AuditActionSaleCreate, created)
	h.Created(c, dto.FromSale(created))
}

// Transition handles POST /sales/:id/transition
func (h *SaleHandler) Transition(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(tenantID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.service.Transition(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, tenantID, "sale", saleID, postgres.AuditActionTransition, updated)
	h.OK(c, dto.FromSale(updated))
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetByID(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(found))
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var query dto.SaleListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	sales, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.SaleResponse, len(sales))
	for i, s := range sales {
		items[i] = dto.FromSale(s)
	}
	h.OK(c, dto.NewListResponse(items))
}
