package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CouponResponse — применённый купон в теле ответа.
type CouponResponse struct {
	Code  string `json:"code"`
	Kind  string `json:"kind"`
	Value int64  `json:"value"`
}

// LineItemResponse — позиция корзины или заказа в теле ответа.
type LineItemResponse struct {
	ID                     string    `json:"id"`
	ReferenceKind          string    `json:"reference_kind"`
	ReferenceID            string    `json:"reference_id"`
	Qty                    int32     `json:"qty"`
	SelectedColor          string    `json:"selected_color,omitempty"`
	SelectedSize           string    `json:"selected_size,omitempty"`
	UnitPriceMinor         int64     `json:"unit_price_minor"`
	UnitOriginalPriceMinor int64     `json:"unit_original_price_minor"`
	CreatedAt              time.Time `json:"created_at"`
}

// CartResponse — корзина c производными суммами.
type CartResponse struct {
	ID            string             `json:"id"`
	OwnerID       string             `json:"owner_id"`
	Items         []LineItemResponse `json:"items"`
	SubtotalMinor int64              `json:"subtotal_minor"`
	TaxMinor      int64              `json:"tax_minor"`
	ShippingMinor int64              `json:"shipping_minor"`
	DiscountMinor int64              `json:"discount_minor"`
	TotalMinor    int64              `json:"total_minor"`
	Coupon        *CouponResponse    `json:"coupon,omitempty"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// OrderResponse — снимок заказа.
type OrderResponse struct {
	ID              string                  `json:"id"`
	OwnerID         string                  `json:"owner_id"`
	Status          string                  `json:"status"`
	Items           []LineItemResponse      `json:"items"`
	SubtotalMinor   int64                   `json:"subtotal_minor"`
	TaxMinor        int64                   `json:"tax_minor"`
	ShippingMinor   int64                   `json:"shipping_minor"`
	DiscountMinor   int64                   `json:"discount_minor"`
	TotalMinor      int64                   `json:"total_minor"`
	Coupon          *CouponResponse         `json:"coupon,omitempty"`
	ShippingAddress ShippingAddressResponse `json:"shipping_address"`
	PaymentMethod   string                  `json:"payment_method"`
	CreatedAt       time.Time               `json:"created_at"`
}

// ShippingAddressResponse — адрес доставки заказа.
type ShippingAddressResponse struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

func toCouponResponse(coupon *domain.Coupon) *CouponResponse {
	if coupon == nil {
		return nil
	}
	return &CouponResponse{
		Code:  coupon.Code,
		Kind:  string(coupon.Kind),
		Value: coupon.Value,
	}
}

func toLineItemResponses(items []domain.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, LineItemResponse{
			ID:                     item.ID,
			ReferenceKind:          string(item.ReferenceKind),
			ReferenceID:            item.ReferenceID,
			Qty:                    item.Qty,
			SelectedColor:          item.SelectedColor,
			SelectedSize:           item.SelectedSize,
			UnitPriceMinor:         item.UnitPriceMinor,
			UnitOriginalPriceMinor: item.UnitOriginalPriceMinor,
			CreatedAt:              item.CreatedAt,
		})
	}
	return out
}

func toCartResponse(cart domain.Cart) CartResponse {
	return CartResponse{
		ID:            cart.ID,
		OwnerID:       cart.OwnerID,
		Items:         toLineItemResponses(cart.Items),
		SubtotalMinor: cart.SubtotalMinor,
		TaxMinor:      cart.TaxMinor,
		ShippingMinor: cart.ShippingMinor,
		DiscountMinor: cart.DiscountMinor,
		TotalMinor:    cart.TotalMinor,
		Coupon:        toCouponResponse(cart.Coupon),
		UpdatedAt:     cart.UpdatedAt,
	}
}

func toOrderResponse(order domain.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		OwnerID:       order.OwnerID,
		Status:        string(order.Status),
		Items:         toLineItemResponses(order.Items),
		SubtotalMinor: order.SubtotalMinor,
		TaxMinor:      order.TaxMinor,
		ShippingMinor: order.ShippingMinor,
		DiscountMinor: order.DiscountMinor,
		TotalMinor:    order.TotalMinor,
		Coupon:        toCouponResponse(order.Coupon),
		ShippingAddress: ShippingAddressResponse{
			Line1:      order.ShippingAddress.Line1,
			City:       order.ShippingAddress.City,
			Region:     order.ShippingAddress.Region,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
		},
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	}
}

// respondDomainError транслирует доменную ошибку в HTTP-статус.
func respondDomainError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidCoupon),
		errors.Is(err, domain.ErrItemReferenceInvalid),
		errors.Is(err, domain.ErrItemPriceInvalid),
		errors.Is(err, domain.ErrShippingAddressRequired),
		errors.Is(err, domain.ErrPaymentMethodRequired),
		errors.Is(err, domain.ErrOwnerRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUnknownReference):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrActiveCartExists),
		errors.Is(err, domain.ErrOrderExists),
		domain.IsVersionConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
