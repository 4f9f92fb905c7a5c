package httpapi

import (
	"net/http"

	"rawmart-be/internal/auth"
	"rawmart-be/internal/utils"
	"rawmart-be/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handler) startSession(c *gin.Context, token string) {
	auth.SetSessionCookie(c.Writer, token, h.deps.Sessions.TTL(), h.deps.Config.IsProduction())
}

func (h *Handler) vendorRegister(c *gin.Context) {
	var req vendorRegisterRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	token, u, err := h.deps.Users.Register(c.Request.Context(), req.params())
	if err != nil {
		respondError(c, err)
		return
	}

	h.startSession(c, token)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": u})
}

func (h *Handler) vendorLogin(c *gin.Context) {
	var req loginRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	token, u, err := h.deps.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.startSession(c, token)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

func (h *Handler) supplierRegister(c *gin.Context) {
	var req supplierRegisterRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	token, s, err := h.deps.Suppliers.Register(c.Request.Context(), req.params())
	if err != nil {
		respondError(c, err)
		return
	}

	h.startSession(c, token)
	c.JSON(http.StatusCreated, gin.H{"token": token, "supplier": s})
}

func (h *Handler) supplierLogin(c *gin.Context) {
	var req loginRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	token, s, err := h.deps.Suppliers.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.startSession(c, token)
	c.JSON(http.StatusOK, gin.H{"token": token, "supplier": s})
}

func (h *Handler) logout(c *gin.Context) {
	auth.ClearSessionCookie(c.Writer, h.deps.Config.IsProduction())
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	ctx := c.Request.Context()
	id := accountID(c)

	if utils.HasRole(ctx, utils.RoleSupplier) {
		s, err := h.deps.Suppliers.GetProfile(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": utils.RoleSupplier, "supplier": s})
		return
	}

	u, err := h.deps.Users.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": u.Role, "user": u})
}
