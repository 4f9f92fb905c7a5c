package httpapi

import (
	"net/http"

	"rawmart-be/internal/material"
	"rawmart-be/internal/surplus"
	"rawmart-be/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listSurplus(c *gin.Context) {
	var f surplus.ListFilter
	if v := c.Query("status"); v != "" {
		s := surplus.Status(v)
		if !s.Valid() {
			badRequest(c, "invalid status")
			return
		}
		f.Status = &s
	}
	if v := c.Query("category"); v != "" {
		cat := material.Category(v)
		f.Category = &cat
	}

	items, err := h.deps.Surplus.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"surplus": items})
}

func (h *Handler) createSurplus(c *gin.Context) {
	var req createSurplusRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	s, err := h.deps.Surplus.Create(c.Request.Context(), accountID(c), req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) updateSurplus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateSurplusRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	s, err := h.deps.Surplus.Update(c.Request.Context(), accountID(c), id, req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) deleteSurplus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Surplus.Delete(c.Request.Context(), accountID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "surplus deleted"})
}

// acceptSurplus answers 404 to every caller but the one that won the
// pending-to-accepted transition.
func (h *Handler) acceptSurplus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.deps.Surplus.Accept(c.Request.Context(), accountID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) surplusPaymentCallback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req paymentCallbackRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	s, err := h.deps.Surplus.PaymentCallback(c.Request.Context(), accountID(c), id, req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
