package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/api/middleware"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
)

const defaultOrderListLimit = 20

// CreateOrderRequest — тело запроса на оформление заказа.
type CreateOrderRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
}

// ShippingAddressRequest — адрес доставки в запросе оформления.
type ShippingAddressRequest struct {
	Line1      string `json:"line1" binding:"required"`
	City       string `json:"city" binding:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OrderHandler обслуживает оформление и чтение заказов.
type OrderHandler struct {
	checkout *checkout.Service
	logger   *log.Entry
}

// NewOrderHandler создаёт обработчик заказов.
func NewOrderHandler(svc *checkout.Service, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "order-handler")
	}
	return &OrderHandler{checkout: svc, logger: logger}
}

// Create оформляет заказ из активной корзины покупателя.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	order, err := h.checkout.CreateOrder(middleware.OwnerID(c), checkout.CreateOrderInput{
		ShippingAddress: domain.ShippingAddress{
			Line1:      req.ShippingAddress.Line1,
			City:       req.ShippingAddress.City,
			Region:     req.ShippingAddress.Region,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Get возвращает заказ покупателя по идентификатору.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.checkout.GetOrder(middleware.OwnerID(c), c.Param("orderID"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// List возвращает заказы покупателя, новые первыми.
func (h *OrderHandler) List(c *gin.Context) {
	limit := defaultOrderListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	orders, err := h.checkout.ListOrders(middleware.OwnerID(c), limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}
