package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	fulfillmentapp "github.com/orderbridge/backend/internal/application/fulfillment"
	"github.com/orderbridge/backend/internal/interfaces/http/dto"
)

const pdfContentType = "application/pdf"

// FulfillmentHandler handles the sales order and job report endpoints
type FulfillmentHandler struct {
	BaseHandler
	intake  *fulfillmentapp.IntakeService
	cart    *fulfillmentapp.CartService
	tags    *fulfillmentapp.TagService
	reports *fulfillmentapp.ReportService
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(
	intake *fulfillmentapp.IntakeService,
	cart *fulfillmentapp.CartService,
	tags *fulfillmentapp.TagService,
	reports *fulfillmentapp.ReportService,
) *FulfillmentHandler {
	return &FulfillmentHandler{
		intake:  intake,
		cart:    cart,
		tags:    tags,
		reports: reports,
	}
}

// ToOrder godoc
// @ID           listToOrder
// @Summary      List sales orders waiting to be ordered
// @Description  Reads the ShopVox "to order" view and every sales order on it, merging line items per part, color and store
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.ResultResponse[dto.SalesOrder]
// @Success      204 {object} dto.MessageResponse
// @Failure      500 {object} ErrorResponse
// @Router       /to-order [get]
func (h *FulfillmentHandler) ToOrder(c *gin.Context) {
	orders, err := h.intake.ToOrder(c.Request.Context())
	if err != nil {
		if errors.Is(err, fulfillmentapp.ErrNoRows) {
			h.NoRows(c)
			return
		}
		h.HandleError(c, err)
		return
	}
	if len(orders) == 0 {
		h.NoRows(c)
		return
	}
	h.Success(c, dto.ResultResponse[dto.SalesOrder]{Result: dto.FromDomainOrders(orders)})
}

// AddToCart godoc
// @ID           addToCart
// @Summary      Add sales orders to vendor carts
// @Description  Places every order with its vendors and reports one result per order in request order.
// @Description  A failing order does not stop the others.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Rejects a replay of the same batch with 409"
// @Param        request body []dto.SalesOrder true "Sales orders"
// @Success      200 {object} dto.ResultResponse[dto.OrderResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /add-to-cart [post]
func (h *FulfillmentHandler) AddToCart(c *gin.Context) {
	var req []dto.SalesOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	results := h.cart.AddToCart(c.Request.Context(), dto.ToDomainOrders(req))
	h.Success(c, dto.ResultResponse[dto.OrderResult]{Result: dto.FromDomainResults(results)})
}

// UpdateTagOrdered godoc
// @ID           updateSalesOrderTagOrdered
// @Summary      Mark sales orders as ordered
// @Description  Removes the NOT ORDER YET tag and adds Ordered on each sales order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Rejects a replay of the same batch with 409"
// @Param        request body []string true "Sales order URLs"
// @Success      200 {object} dto.TagUpdateResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /update-so-tag-ordered [post]
func (h *FulfillmentHandler) UpdateTagOrdered(c *gin.Context) {
	var urls []string
	if err := c.ShouldBindJSON(&urls); err != nil {
		h.BindError(c, err)
		return
	}

	results := h.tags.MarkOrdered(c.Request.Context(), urls)
	h.Success(c, dto.TagUpdateResponse{Message: "Updated", Result: dto.FromTagResults(results)})
}

// OverdueJobs godoc
// @ID           exportOverdueJobs
// @Summary      Export overdue jobs
// @Description  Downloads the ShopVox overdue jobs view as PDF
// @Tags         jobs
// @Produce      application/pdf
// @Success      200 {file} file
// @Success      204 {object} dto.MessageResponse
// @Failure      500 {object} ErrorResponse
// @Router       /overdue-jobs [get]
func (h *FulfillmentHandler) OverdueJobs(c *gin.Context) {
	h.exportJobs(c, fulfillmentapp.JobKindOverdue, "")
}

// PendingJobs godoc
// @ID           exportPendingJobs
// @Summary      Export pending jobs
// @Description  Downloads the ShopVox pending jobs view as PDF, optionally for one sales rep
// @Tags         jobs
// @Produce      application/pdf
// @Param        sales_rep query string false "Sales rep name"
// @Success      200 {file} file
// @Success      204 {object} dto.MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /pending-jobs [get]
func (h *FulfillmentHandler) PendingJobs(c *gin.Context) {
	h.exportJobs(c, fulfillmentapp.JobKindPending, c.Query("sales_rep"))
}

func (h *FulfillmentHandler) exportJobs(c *gin.Context, kind fulfillmentapp.JobKind, salesRep string) {
	export, err := h.reports.Export(c.Request.Context(), kind, salesRep)
	if err != nil {
		if errors.Is(err, fulfillmentapp.ErrNoRows) {
			h.NoRows(c)
			return
		}
		h.HandleError(c, err)
		return
	}

	filename := export.Filename
	if filename == "" {
		filename = string(kind) + "-jobs.pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, pdfContentType, export.Data)
}
