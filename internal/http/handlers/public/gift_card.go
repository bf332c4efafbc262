package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/http/response"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type userGiftCardItem struct {
	models.GiftCard
	Status      string `json:"status"`
	Activatable *bool  `json:"activatable,omitempty"`
}

func newUserGiftCardItem(card models.GiftCard, now time.Time) userGiftCardItem {
	return userGiftCardItem{GiftCard: card, Status: service.GiftCardStatus(&card, now)}
}

// GetMyGiftCards 获取当前用户礼品卡列表
func (h *Handler) GetMyGiftCards(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	// 带 order_no 时标注每张卡对该订单是否可用
	var order *models.Order
	if orderNo := strings.TrimSpace(c.Query("order_no")); orderNo != "" {
		loaded, err := h.OrderService.GetOrder(orderNo)
		if err != nil {
			respondOrderError(c, err)
			return
		}
		if loaded.UserID != uid {
			respondError(c, response.CodeNotFound, "order.not_found", nil)
			return
		}
		order = loaded
	}

	usableOnly := c.Query("usable") == "true"
	cards, err := h.GiftCardService.ListUserGiftCards(uid, usableOnly)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	now := time.Now()
	items := make([]userGiftCardItem, 0, len(cards))
	for i := range cards {
		item := newUserGiftCardItem(cards[i], now)
		if order != nil {
			activatable := service.GiftCardOrderActivatable(&cards[i], order, now)
			item.Activatable = &activatable
		}
		items = append(items, item)
	}
	response.Success(c, gin.H{"gift_cards": items})
}

// GetMyGiftCard 获取当前用户指定礼品卡
func (h *Handler) GetMyGiftCard(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	card, ok := h.loadOwnedGiftCard(c, uid)
	if !ok {
		return
	}

	transfers, err := h.GiftCardService.ListTransfers(card.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.Success(c, gin.H{
		"gift_card": newUserGiftCardItem(*card, time.Now()),
		"transfers": transfers,
	})
}

// ApplyGiftCardRequest 礼品卡抵扣订单请求
type ApplyGiftCardRequest struct {
	Code           string                `json:"code" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// ApplyGiftCardToOrder 将礼品卡余额抵扣到订单
func (h *Handler) ApplyGiftCardToOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ApplyGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneGiftCardApply, req.CaptchaPayload.toServicePayload()); captchaErr != nil {
			switch {
			case errors.Is(captchaErr, service.ErrCaptchaRequired):
				respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
			case errors.Is(captchaErr, service.ErrCaptchaInvalid):
				respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
			default:
				respondError(c, response.CodeInternal, "error.internal", captchaErr)
			}
			return
		}
	}

	adjustment, err := h.GiftCardService.ApplyGiftCard(service.ApplyGiftCardInput{
		UserID:  uid,
		OrderNo: strings.TrimSpace(c.Param("order_no")),
		Code:    strings.TrimSpace(req.Code),
	})
	if err != nil {
		var verr *service.GiftCardValidationError
		if errors.As(err, &verr) {
			respondErrorWithMsg(c, response.CodeBadRequest, verr.Error(), nil)
			return
		}
		respondGiftCardApplyError(c, err)
		return
	}

	requestLog(c).Infow("gift_card_applied", "user_id", uid, "order_no", c.Param("order_no"), "adjustment_id", adjustment.ID)
	response.Success(c, gin.H{"adjustment": adjustment})
}

// TransferMyGiftCardRequest 用户转赠礼品卡请求
type TransferMyGiftCardRequest struct {
	Amount         string `json:"amount" binding:"required"`
	RecipientName  string `json:"recipient_name" binding:"required"`
	RecipientEmail string `json:"recipient_email" binding:"required"`
	Note           string `json:"note"`
}

// TransferMyGiftCard 用户将余额转赠给他人
func (h *Handler) TransferMyGiftCard(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	card, ok := h.loadOwnedGiftCard(c, uid)
	if !ok {
		return
	}

	var req TransferMyGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	destination, transfer, err := h.GiftCardService.TransferGiftCard(service.TransferGiftCardInput{
		CardID:         card.ID,
		Amount:         models.NewMoneyFromDecimal(amount),
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		Note:           req.Note,
	})
	if err != nil {
		var verr *service.GiftCardValidationError
		if errors.As(err, &verr) {
			respondErrorWithMsg(c, response.CodeBadRequest, verr.Error(), nil)
			return
		}
		respondGiftCardTransferError(c, err)
		return
	}

	requestLog(c).Infow("gift_card_transferred", "user_id", uid, "source_id", card.ID, "destination_id", destination.ID)
	response.Success(c, gin.H{
		"destination": newUserGiftCardItem(*destination, time.Now()),
		"transfer":    transfer,
	})
}

// loadOwnedGiftCard 校验路径中的礼品卡归属当前用户
func (h *Handler) loadOwnedGiftCard(c *gin.Context, uid uint) (*models.GiftCard, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return nil, false
	}

	card, err := h.GiftCardService.GetGiftCard(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrGiftCardNotFound) {
			respondError(c, response.CodeNotFound, "gift_card.not_found", nil)
			return nil, false
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return nil, false
	}
	if card.UserID == nil || *card.UserID != uid {
		respondError(c, response.CodeNotFound, "gift_card.not_found", nil)
		return nil, false
	}
	return card, true
}
