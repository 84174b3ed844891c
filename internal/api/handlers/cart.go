package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/api/middleware"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
)

// AddItemRequest — тело запроса на добавление позиции.
// Цены клиент не передаёт: их сервис берёт из каталога в момент добавления.
type AddItemRequest struct {
	ReferenceKind string `json:"reference_kind" binding:"required"`
	ReferenceID   string `json:"reference_id" binding:"required"`
	Qty           int32  `json:"qty" binding:"required"`
	SelectedColor string `json:"selected_color"`
	SelectedSize  string `json:"selected_size"`
}

// UpdateQuantityRequest — тело запроса на изменение количества.
type UpdateQuantityRequest struct {
	Qty int32 `json:"qty" binding:"required"`
}

// ApplyCouponRequest — тело запроса на применение купона.
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// CartHandler обслуживает HTTP-операции над корзиной.
type CartHandler struct {
	engine  *cart.Engine
	catalog domain.CatalogService
	logger  *log.Entry
}

// NewCartHandler создаёт обработчик корзины.
func NewCartHandler(engine *cart.Engine, catalog domain.CatalogService, logger *log.Entry) *CartHandler {
	if logger == nil {
		logger = log.New().WithField("component", "cart-handler")
	}
	return &CartHandler{engine: engine, catalog: catalog, logger: logger}
}

// Get возвращает активную корзину покупателя, лениво создавая пустую.
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.engine.GetOrCreate(middleware.OwnerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

// AddItem добавляет позицию: ссылка проверяется по каталогу, цена фиксируется
// из каталожного чтения, остаток сверяется с итоговым количеством строки.
func (h *CartHandler) AddItem(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	kind := domain.ReferenceKind(req.ReferenceKind)
	entry, err := h.catalog.Lookup(kind, req.ReferenceID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := h.checkStock(ownerID, entry, req); err != nil {
		respondDomainError(c, err)
		return
	}

	updated, err := h.engine.AddItem(ownerID, cart.NewItem{
		ReferenceKind:          kind,
		ReferenceID:            req.ReferenceID,
		Qty:                    req.Qty,
		SelectedColor:          req.SelectedColor,
		SelectedSize:           req.SelectedSize,
		UnitPriceMinor:         entry.PriceMinor,
		UnitOriginalPriceMinor: entry.OriginalPriceMinor,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCartResponse(updated))
}

// UpdateQuantity выставляет количество существующей позиции.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.engine.UpdateQuantity(middleware.OwnerID(c), c.Param("itemID"), req.Qty)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// RemoveItem удаляет позицию; отсутствующая позиция — тоже успех.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	updated, err := h.engine.RemoveItem(middleware.OwnerID(c), c.Param("itemID"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// Clear опустошает корзину.
func (h *CartHandler) Clear(c *gin.Context) {
	updated, err := h.engine.Clear(middleware.OwnerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// ApplyCoupon применяет купон к корзине.
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.engine.ApplyCoupon(middleware.OwnerID(c), req.Code)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// RemoveCoupon снимает купон с корзины.
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	updated, err := h.engine.RemoveCoupon(middleware.OwnerID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// checkStock сверяет остаток с количеством строки после добавления.
func (h *CartHandler) checkStock(ownerID string, entry domain.CatalogEntry, req AddItemRequest) error {
	if req.Qty < 1 {
		return domain.ErrInvalidQuantity
	}

	existing := int32(0)
	current, err := h.engine.GetOrCreate(ownerID)
	if err != nil {
		return err
	}
	if idx, ok := current.FindLine(domain.LineItem{
		ReferenceKind: domain.ReferenceKind(req.ReferenceKind),
		ReferenceID:   req.ReferenceID,
		SelectedColor: req.SelectedColor,
		SelectedSize:  req.SelectedSize,
	}); ok {
		existing = current.Items[idx].Qty
	}

	if existing+req.Qty > entry.Stock {
		h.logger.WithFields(log.Fields{
			"owner_id":     ownerID,
			"reference_id": req.ReferenceID,
			"requested":    existing + req.Qty,
			"stock":        entry.Stock,
		}).Warn("add item rejected: insufficient stock")
		return domain.ErrInsufficientStock
	}
	return nil
}
