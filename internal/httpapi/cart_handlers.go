package httpapi

import (
	"net/http"

	"rawmart-be/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.deps.Carts.Get(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) addToCart(c *gin.Context) {
	var req addCartRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	cart, err := h.deps.Carts.Add(c.Request.Context(), accountID(c), req.MaterialID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	materialID, ok := pathID(c, "materialId")
	if !ok {
		return
	}
	var req updateCartRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	cart, err := h.deps.Carts.Update(c.Request.Context(), accountID(c), materialID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	materialID, ok := pathID(c, "materialId")
	if !ok {
		return
	}

	cart, err := h.deps.Carts.Remove(c.Request.Context(), accountID(c), materialID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.deps.Carts.Clear(c.Request.Context(), accountID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
