package handlers

import (
	"github.com/gin-gonic/gin"

	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/infrastructure/http/v1/dto"
	"savdo/internal/infrastructure/storage/postgres"
)

// ConsignmentHandler handles HTTP requests for the consignment engine.
type ConsignmentHandler struct {
	*BaseHandler
	service *consignment.Service
}

// NewConsignmentHandler creates a new consignment handler.
func NewConsignmentHandler(base *BaseHandler, service *consignment.Service) *ConsignmentHandler {
	return &ConsignmentHandler{BaseHandler: base, service: service}
}

// Load handles POST /consignment/loads
func (h *ConsignmentHandler) Load(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.LoadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Load(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, tenantID, "dealer", in.DealerID, postgres.AuditActionLoad, result)
	h.Created(c, dto.FromLoadResult(result))
}

// Sell handles POST /consignment/sells
func (h *ConsignmentHandler) Sell(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.SellRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Sell(c.Request.Context(), in); err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, tenantID, "dealer", in.DealerID, postgres.AuditActionSell, req)
	h.Created(c, dto.SuccessResponse{Success: true})
}

// Return handles POST /consignment/returns
func (h *ConsignmentHandler) Return(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.ReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Return(c.Request.Context(), in); err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, tenantID, "dealer", in.DealerID, postgres.AuditActionReturn, req)
	h.Created(c, dto.SuccessResponse{Success: true})
}

// Inventory handles GET /consignment/dealers/:dealerId/inventory
func (h *ConsignmentHandler) Inventory(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	dealerID, ok := h.ParamID(c, "dealerId")
	if !ok {
		return
	}

	holdings, err := h.service.Inventory(c.Request.Context(), tenantID, dealerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.InventoryResponse, len(holdings))
	for i, inv := range holdings {
		items[i] = dto.FromInventory(inv)
	}
	h.OK(c, dto.NewListResponse(items))
}

// History handles GET /consignment/transactions
func (h *ConsignmentHandler) History(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var query dto.TransactionListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	txns, err := h.service.History(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, len(txns))
	for i, txn := range txns {
		items[i] = dto.FromTransaction(txn)
	}
	h.OK(c, dto.NewListResponse(items))
}
