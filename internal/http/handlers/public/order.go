package public

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/giftledger/internal/http/handlers/shared"
	"github.com/giftledger/internal/http/response"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Email string             `json:"email"`
	Items []OrderItemRequest `json:"items" binding:"required"`
}

// CreateMyOrder 创建当前用户订单
func (h *Handler) CreateMyOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		user, err := h.UserAuthService.GetUserByID(uid)
		if err != nil || user == nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		email = user.Email
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID: uid,
		Email:  email,
		Items:  items,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	requestLog(c).Infow("order_created", "user_id", uid, "order_no", order.OrderNo)
	response.Success(c, order)
}

// GetMyOrder 获取当前用户订单
func (h *Handler) GetMyOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	order, ok := h.loadOwnedOrder(c, uid)
	if !ok {
		return
	}
	response.Success(c, order)
}

// RemoveMyOrderGiftCard 移除当前用户订单上的礼品卡抵扣
func (h *Handler) RemoveMyOrderGiftCard(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	owned, ok := h.loadOwnedOrder(c, uid)
	if !ok {
		return
	}

	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.RemoveGiftCard(owned.OrderNo, uint(cardID))
	if err != nil {
		if errors.Is(err, service.ErrGiftCardNotFound) {
			respondError(c, response.CodeNotFound, "gift_card.not_found", nil)
			return
		}
		respondOrderError(c, err)
		return
	}

	requestLog(c).Infow("order_gift_card_removed", "user_id", uid, "order_no", order.OrderNo, "gift_card_id", cardID)
	response.Success(c, order)
}

// GetGiftCardVariants 获取可购买礼品卡的商品规格
func (h *Handler) GetGiftCardVariants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	variants, total, err := h.VariantService.ListVariants(service.VariantListInput{
		GiftCardOnly: true,
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, variants, pagination)
}

// loadOwnedOrder 校验路径中的订单归属当前用户
func (h *Handler) loadOwnedOrder(c *gin.Context, uid uint) (*models.Order, bool) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	order, err := h.OrderService.GetOrder(orderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order.not_found", nil)
			return nil, false
		}
		respondOrderError(c, err)
		return nil, false
	}
	if order.UserID != uid {
		respondError(c, response.CodeNotFound, "order.not_found", nil)
		return nil, false
	}
	return order, true
}
