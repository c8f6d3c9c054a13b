package handlers

import (
	"sort"

	"github.com/gin-gonic/gin"

	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/domain/ledger/stock"
	"savdo/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock ledger and its reports.
type StockHandler struct {
	*BaseHandler
	service     *stock.Service
	consignment *consignment.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service, consignmentSvc *consignment.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		consignment: consignmentSvc,
	}
}

// Availability handles GET /stock/availability/:productId
func (h *StockHandler) Availability(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}

	available, err := h.service.Availability(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AvailabilityResponse{
		ProductID: productID.String(),
		Available: available,
	})
}

// LowStock handles GET /stock/low
func (h *StockHandler) LowStock(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	products, err := h.service.LowStock(c.Request.Context(), tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LowStockResponse, len(products))
	for i, p := range products {
		items[i] = dto.FromLowStockProduct(p)
	}
	h.OK(c, dto.NewListResponse(items))
}

// Conservation handles GET /stock/conservation
//
// For every product with consigned holdings it reports central stock,
// consigned total, and their sum. The sum is invariant under loads and
// returns, so a drifting total points at a ledger bug.
func (h *StockHandler) Conservation(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	consigned, err := h.consignment.ConsignedTotals(ctx, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	rows := make([]dto.ConservationRow, 0, len(consigned))
	for productID, qty := range consigned {
		central, err := h.service.Availability(ctx, tenantID, productID)
		if err != nil {
			h.Error(c, err)
			return
		}
		rows = append(rows, dto.ConservationRow{
			ProductID: productID.String(),
			Central:   central,
			Consigned: qty,
			Total:     central + qty,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductID < rows[j].ProductID })

	h.OK(c, dto.NewListResponse(rows))
}
