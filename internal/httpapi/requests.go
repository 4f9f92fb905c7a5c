package httpapi

import (
	"time"

	"rawmart-be/internal/material"
	"rawmart-be/internal/order"
	"rawmart-be/internal/payment"
	"rawmart-be/internal/supplier"
	"rawmart-be/internal/surplus"
	"rawmart-be/internal/user"

	"github.com/shopspring/decimal"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type vendorRegisterRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	Phone     *string `json:"phone" validate:"omitempty,max=15"`
	StallName *string `json:"stallName" validate:"omitempty,max=100"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
}

func (r vendorRegisterRequest) params() user.RegisterParams {
	return user.RegisterParams{
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		Phone:     r.Phone,
		StallName: r.StallName,
		Location:  r.Location,
	}
}

type supplierRegisterRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Email        string  `json:"email" validate:"required,email,max=254"`
	Password     string  `json:"password" validate:"required,min=6,max=72"`
	BusinessName string  `json:"businessName" validate:"required,min=2,max=150"`
	Phone        string  `json:"phone" validate:"required,max=15"`
	Address      *string `json:"address" validate:"omitempty,max=300"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitempty,max=100"`
}

func (r supplierRegisterRequest) params() supplier.RegisterParams {
	return supplier.RegisterParams{
		Name:         r.Name,
		Email:        r.Email,
		Password:     r.Password,
		BusinessName: r.BusinessName,
		Phone:        r.Phone,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
	}
}

type supplierProfileRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=100"`
	BusinessName *string `json:"businessName" validate:"omitempty,min=2,max=150"`
	Phone        *string `json:"phone" validate:"omitempty,max=15"`
	Address      *string `json:"address" validate:"omitempty,max=300"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitempty,max=100"`
}

func (r supplierProfileRequest) params() supplier.UpdateProfileParams {
	return supplier.UpdateProfileParams{
		Name:         r.Name,
		BusinessName: r.BusinessName,
		Phone:        r.Phone,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
	}
}

type createMaterialRequest struct {
	Name             string          `json:"name" validate:"required,min=2,max=100"`
	Description      string          `json:"description" validate:"max=1000"`
	Category         string          `json:"category" validate:"required,oneof=vegetables fruits grains spices dairy oils meat packaging other"`
	Price            decimal.Decimal `json:"price" validate:"gte=0"`
	Unit             string          `json:"unit" validate:"required,max=20"`
	Stock            int             `json:"stock" validate:"gte=0"`
	MinOrderQuantity int             `json:"minOrderQuantity" validate:"omitempty,gte=1"`
	ImageURL         *string         `json:"imageUrl" validate:"omitempty,url,max=500"`
}

func (r createMaterialRequest) params() material.CreateParams {
	return material.CreateParams{
		Name:             r.Name,
		Description:      r.Description,
		Category:         material.Category(r.Category),
		Price:            r.Price,
		Unit:             r.Unit,
		Stock:            r.Stock,
		MinOrderQuantity: r.MinOrderQuantity,
		ImageURL:         r.ImageURL,
	}
}

type updateMaterialRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=2,max=100"`
	Description      *string          `json:"description" validate:"omitempty,max=1000"`
	Category         *string          `json:"category" validate:"omitempty,oneof=vegetables fruits grains spices dairy oils meat packaging other"`
	Price            *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Unit             *string          `json:"unit" validate:"omitempty,max=20"`
	Stock            *int             `json:"stock" validate:"omitempty,gte=0"`
	MinOrderQuantity *int             `json:"minOrderQuantity" validate:"omitempty,gte=1"`
	ImageURL         *string          `json:"imageUrl" validate:"omitempty,url,max=500"`
	IsActive         *bool            `json:"isActive"`
}

func (r updateMaterialRequest) params() material.UpdateParams {
	p := material.UpdateParams{
		Name:             r.Name,
		Description:      r.Description,
		Price:            r.Price,
		Unit:             r.Unit,
		Stock:            r.Stock,
		MinOrderQuantity: r.MinOrderQuantity,
		ImageURL:         r.ImageURL,
		IsActive:         r.IsActive,
	}
	if r.Category != nil {
		c := material.Category(*r.Category)
		p.Category = &c
	}
	return p
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

type addCartRequest struct {
	MaterialID uint `json:"materialId" validate:"required"`
	Quantity   int  `json:"quantity" validate:"required,min=1"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type shippingAddressRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Address    string `json:"address" validate:"required,max=300"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=12"`
	Country    string `json:"country" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"required,max=15"`
}

type checkoutRequest struct {
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"omitempty,oneof=razorpay"`
}

func (r checkoutRequest) params() order.CheckoutParams {
	a := r.ShippingAddress
	return order.CheckoutParams{
		ShippingAddress: order.ShippingAddress{
			Name:       a.Name,
			Address:    a.Address,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Phone:      a.Phone,
		},
		PaymentMethod: r.PaymentMethod,
	}
}

type paymentCallbackRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" validate:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" validate:"required"`
	RazorpaySignature string `json:"razorpaySignature" validate:"required"`
	Failed            bool   `json:"failed"`
	Reason            string `json:"reason" validate:"max=500"`
}

func (r paymentCallbackRequest) params() payment.CallbackParams {
	return payment.CallbackParams{
		GatewayOrderID: r.RazorpayOrderID,
		PaymentID:      r.RazorpayPaymentID,
		Signature:      r.RazorpaySignature,
		Failed:         r.Failed,
		Reason:         r.Reason,
	}
}

type createSurplusRequest struct {
	Title       string          `json:"title" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"max=1000"`
	Category    string          `json:"category" validate:"required,oneof=vegetables fruits grains spices dairy oils meat packaging other"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	Unit        string          `json:"unit" validate:"required,max=20"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	ExpiryDate  *time.Time      `json:"expiryDate"`
	Location    string          `json:"location" validate:"required,max=200"`
}

func (r createSurplusRequest) params() surplus.CreateParams {
	return surplus.CreateParams{
		Title:       r.Title,
		Description: r.Description,
		Category:    material.Category(r.Category),
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		Price:       r.Price,
		ExpiryDate:  r.ExpiryDate,
		Location:    r.Location,
	}
}

type updateSurplusRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=2,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Category    *string          `json:"category" validate:"omitempty,oneof=vegetables fruits grains spices dairy oils meat packaging other"`
	Quantity    *int             `json:"quantity" validate:"omitempty,min=1"`
	Unit        *string          `json:"unit" validate:"omitempty,max=20"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	ExpiryDate  *time.Time       `json:"expiryDate"`
	Location    *string          `json:"location" validate:"omitempty,max=200"`
}

func (r updateSurplusRequest) params() surplus.UpdateParams {
	p := surplus.UpdateParams{
		Title:       r.Title,
		Description: r.Description,
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		Price:       r.Price,
		ExpiryDate:  r.ExpiryDate,
		Location:    r.Location,
	}
	if r.Category != nil {
		c := material.Category(*r.Category)
		p.Category = &c
	}
	return p
}

type supplierOrderStatusRequest struct {
	OrderID uint   `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=processing delivered"`
}
