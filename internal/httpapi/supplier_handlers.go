package httpapi

import (
	"bytes"
	"net/http"

	"rawmart-be/internal/analytics"
	"rawmart-be/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getSupplierProfile(c *gin.Context) {
	s, err := h.deps.Suppliers.GetProfile(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) updateSupplierProfile(c *gin.Context) {
	var req supplierProfileRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	s, err := h.deps.Suppliers.UpdateProfile(c.Request.Context(), accountID(c), req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) supplierAnalytics(c *gin.Context) {
	tr, err := analytics.ParseTimeRange(c.Query("timeRange"))
	if err != nil {
		respondError(c, err)
		return
	}

	d, err := h.deps.Analytics.Dashboard(c.Request.Context(), accountID(c), tr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// exportSupplierAnalytics buffers the workbook so a failed build can still
// answer with a JSON error.
func (h *Handler) exportSupplierAnalytics(c *gin.Context) {
	tr, err := analytics.ParseTimeRange(c.Query("timeRange"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Analytics.Export(c.Request.Context(), accountID(c), tr, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+analytics.ExportFilename+`"`)
	c.Data(http.StatusOK, analytics.ExportContentType, buf.Bytes())
}
