package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"rawmart-be/internal/material"
	"rawmart-be/internal/utils"
	"rawmart-be/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var materialSorts = map[string]material.SortField{
	"":                             material.SortNewest,
	string(material.SortNewest):    material.SortNewest,
	string(material.SortPriceAsc):  material.SortPriceAsc,
	string(material.SortPriceDesc): material.SortPriceDesc,
	string(material.SortRating):    material.SortRating,
}

// materialFilter reads the catalogue query string. ok is false once a 400
// has been written.
func materialFilter(c *gin.Context) (material.ListFilter, bool) {
	var f material.ListFilter

	if v := c.Query("category"); v != "" {
		cat := material.Category(v)
		f.Category = &cat
	}
	if v := strings.TrimSpace(c.Query("search")); v != "" {
		f.Search = &v
	}
	if v := c.Query("supplierId"); v != "" {
		id, ok := utils.ParseID(v)
		if !ok {
			badRequest(c, "invalid supplierId")
			return f, false
		}
		f.SupplierID = &id
	}
	for _, p := range []struct {
		key string
		dst **decimal.Decimal
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		v := c.Query(p.key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			badRequest(c, "invalid "+p.key)
			return f, false
		}
		*p.dst = &d
	}

	sort, ok := materialSorts[c.Query("sort")]
	if !ok {
		badRequest(c, "invalid sort")
		return f, false
	}
	f.Sort = sort

	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	return f, true
}

func (h *Handler) listMaterials(c *gin.Context) {
	f, ok := materialFilter(c)
	if !ok {
		return
	}

	res, err := h.deps.Materials.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) getMaterial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	m, err := h.deps.Materials.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) listReviews(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.deps.Reviews.ListByMaterial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *Handler) createReview(c *gin.Context) {
	materialID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	r, err := h.deps.Reviews.Create(c.Request.Context(), accountID(c), materialID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) updateReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	r, err := h.deps.Reviews.Update(c.Request.Context(), accountID(c), id, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) deleteReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Reviews.Delete(c.Request.Context(), accountID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

func (h *Handler) listSupplierMaterials(c *gin.Context) {
	items, err := h.deps.Materials.ListForSupplier(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": items})
}

func (h *Handler) createMaterial(c *gin.Context) {
	var req createMaterialRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	m, err := h.deps.Materials.Create(c.Request.Context(), accountID(c), req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) updateMaterial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateMaterialRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	m, err := h.deps.Materials.Update(c.Request.Context(), accountID(c), id, req.params())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) deleteMaterial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Materials.Delete(c.Request.Context(), accountID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "material deleted"})
}
