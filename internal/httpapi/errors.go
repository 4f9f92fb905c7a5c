package httpapi

import (
	"errors"
	"net/http"

	"rawmart-be/internal/analytics"
	"rawmart-be/internal/cart"
	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/material"
	"rawmart-be/internal/order"
	"rawmart-be/internal/payment"
	"rawmart-be/internal/review"
	"rawmart-be/internal/supplier"
	"rawmart-be/internal/surplus"
	"rawmart-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByError = []struct {
	err    error
	status int
}{
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{cart.ErrCartEmpty, http.StatusBadRequest},
	{order.ErrInvalidTransition, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusBadRequest},
	{payment.ErrInvalidSignature, http.StatusBadRequest},
	{surplus.ErrPaymentMismatch, http.StatusBadRequest},
	{review.ErrInvalidRating, http.StatusBadRequest},
	{review.ErrAlreadyReviewed, http.StatusBadRequest},
	{analytics.ErrInvalidTimeRange, http.StatusBadRequest},
	{user.ErrEmailExists, http.StatusBadRequest},
	{supplier.ErrEmailExists, http.StatusBadRequest},

	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{supplier.ErrInvalidCredentials, http.StatusUnauthorized},

	{material.ErrNotOwner, http.StatusForbidden},
	{surplus.ErrNotOwner, http.StatusForbidden},
	{review.ErrNotAuthor, http.StatusForbidden},

	{user.ErrUserNotFound, http.StatusNotFound},
	{supplier.ErrSupplierNotFound, http.StatusNotFound},
	{material.ErrMaterialNotFound, http.StatusNotFound},
	{review.ErrReviewNotFound, http.StatusNotFound},
	{cart.ErrCartItemNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{order.ErrOrderConflict, http.StatusNotFound},
	{order.ErrPaymentCompleted, http.StatusNotFound},
	{surplus.ErrSurplusNotFound, http.StatusNotFound},
	{surplus.ErrNotAvailable, http.StatusNotFound},
	{surplus.ErrPaymentCompleted, http.StatusNotFound},

	{db.ErrRateLimited, http.StatusServiceUnavailable},
	{db.ErrClosed, http.StatusServiceUnavailable},
}

// respondError maps domain errors onto status codes. Anything unknown is a
// 500 whose detail only reaches the log.
func respondError(c *gin.Context, err error) {
	var availErr *cart.AvailabilityError
	if errors.As(err, &availErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"notices":   availErr.Notices(),
			"shortages": availErr.Shortages,
		})
		return
	}

	var cfgErr *db.ConfigError
	if errors.As(err, &cfgErr) {
		logger.FromCtx(c.Request.Context()).Error("database unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			if m.status == http.StatusServiceUnavailable {
				c.JSON(m.status, gin.H{"error": "service unavailable"})
				return
			}
			c.JSON(m.status, gin.H{"error": err.Error()})
			return
		}
	}

	logger.FromCtx(c.Request.Context()).Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
