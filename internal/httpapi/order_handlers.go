package httpapi

import (
	"net/http"

	"rawmart-be/internal/order"
	"rawmart-be/internal/utils"
	"rawmart-be/internal/validation"

	"github.com/gin-gonic/gin"
)

// orderFilters reads status, paymentStatus, startDate and endDate. A bare
// endDate covers the whole day.
func orderFilters(c *gin.Context) (order.Filters, bool) {
	var f order.Filters

	if v := c.Query("status"); v != "" {
		s := order.Status(v)
		if !s.Valid() {
			badRequest(c, "invalid status")
			return f, false
		}
		f.Status = &s
	}
	if v := c.Query("paymentStatus"); v != "" {
		ps := order.PaymentStatus(v)
		if !ps.Valid() {
			badRequest(c, "invalid paymentStatus")
			return f, false
		}
		f.PaymentStatus = &ps
	}
	if v := c.Query("startDate"); v != "" {
		t, err := utils.ParseDay(v, false)
		if err != nil {
			badRequest(c, "invalid startDate")
			return f, false
		}
		f.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := utils.ParseDay(v, true)
		if err != nil {
			badRequest(c, "invalid endDate")
			return f, false
		}
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		badRequest(c, "endDate is before startDate")
		return f, false
	}
	return f, true
}

func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	res, err := h.deps.Orders.Checkout(c.Request.Context(), accountID(c), req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListForUser(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	o, err := h.deps.Orders.GetForUser(c.Request.Context(), accountID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) orderPaymentCallback(c *gin.Context) {
	var req paymentCallbackRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	o, err := h.deps.Orders.PaymentCallback(c.Request.Context(), accountID(c), req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) listSupplierOrders(c *gin.Context) {
	f, ok := orderFilters(c)
	if !ok {
		return
	}

	orders, err := h.deps.Orders.ListSupplierOrders(c.Request.Context(), accountID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) updateSupplierOrder(c *gin.Context) {
	var req supplierOrderStatusRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	o, err := h.deps.Orders.UpdateStatusForSupplier(c.Request.Context(), accountID(c), req.OrderID, order.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) adminSupplierOrders(c *gin.Context) {
	supplierID, ok := pathID(c, "id")
	if !ok {
		return
	}
	f, ok := orderFilters(c)
	if !ok {
		return
	}

	orders, err := h.deps.Orders.AdminSupplierOrders(c.Request.Context(), supplierID, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
