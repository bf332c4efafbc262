package admin

import (
	"errors"
	"strings"

	"github.com/giftledger/internal/http/response"
	"github.com/giftledger/internal/service"

	"github.com/gin-gonic/gin"
)

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order.not_found", nil)
	case errors.Is(err, service.ErrOrderUpdateFailed):
		respondError(c, response.CodeBadRequest, "order.update_failed", nil)
	case errors.Is(err, service.ErrGiftCardNotFound):
		respondError(c, response.CodeNotFound, "gift_card.not_found", nil)
	case errors.Is(err, service.ErrGiftCardExpired):
		respondError(c, response.CodeBadRequest, "gift_card.expired", nil)
	default:
		respondError(c, response.CodeInternal, "order.fetch_failed", err)
	}
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrder(orderNo)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminOrderAdjustments 管理端订单调整项列表
func (h *Handler) AdminOrderAdjustments(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrder(orderNo)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	adjustments, err := h.OrderRepo.ListAdjustments(order.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "order.fetch_failed", err)
		return
	}
	response.Success(c, adjustments)
}

// AdvanceOrderRequest 订单状态推进请求
type AdvanceOrderRequest struct {
	State string `json:"state" binding:"required"`
}

// AdminAdvanceOrder 管理端推进订单状态
func (h *Handler) AdminAdvanceOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.AdvanceOrder(orderNo, req.State)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminCompleteOrder 管理端完成订单
func (h *Handler) AdminCompleteOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.CompleteOrder(orderNo)
	if err != nil {
		if errors.Is(err, service.ErrGiftCardInsufficientBalance) {
			respondError(c, response.CodeBadRequest, "gift_card.insufficient_balance", nil)
			return
		}
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminRemoveOrderGiftCard 管理端移除订单上的礼品卡抵扣
func (h *Handler) AdminRemoveOrderGiftCard(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	cardID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.RemoveGiftCard(orderNo, cardID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}
