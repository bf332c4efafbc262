package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/giftledger/internal/http/response"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// IssueGiftCardRequest 签发礼品卡请求
type IssueGiftCardRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Note           string `json:"note"`
	Value          string `json:"value" binding:"required"`
	VariantID      *uint  `json:"variant_id"`
	ExpirationDate string `json:"expiration_date"`
	RestrictUser   bool   `json:"restrict_user"` // 绑定到邮箱对应的注册用户
}

// UpdateGiftCardRequest 更新礼品卡请求
type UpdateGiftCardRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Note           *string `json:"note"`
	ExpirationDate *string `json:"expiration_date"`
}

// TransferGiftCardRequest 转赠礼品卡请求
type TransferGiftCardRequest struct {
	Amount         string `json:"amount" binding:"required"`
	RecipientName  string `json:"recipient_name" binding:"required"`
	RecipientEmail string `json:"recipient_email" binding:"required"`
	Note           string `json:"note"`
}

// DebitGiftCardRequest 扣款请求
type DebitGiftCardRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type adminGiftCardItem struct {
	models.GiftCard
	Status string `json:"status"`
}

func newAdminGiftCardItem(card models.GiftCard, now time.Time) adminGiftCardItem {
	return adminGiftCardItem{
		GiftCard: card,
		Status:   service.GiftCardStatus(&card, now),
	}
}

func respondGiftCardError(c *gin.Context, err error) {
	var verr *service.GiftCardValidationError
	switch {
	case errors.As(err, &verr):
		respondErrorWithMsg(c, response.CodeBadRequest, verr.Error(), nil)
	case errors.Is(err, service.ErrGiftCardNotFound):
		respondError(c, response.CodeNotFound, "gift_card.not_found", nil)
	case errors.Is(err, service.ErrGiftCardInvalid):
		respondError(c, response.CodeBadRequest, "gift_card.invalid", nil)
	case errors.Is(err, service.ErrGiftCardExpired):
		respondError(c, response.CodeBadRequest, "gift_card.expired", nil)
	case errors.Is(err, service.ErrGiftCardRedeemed):
		respondError(c, response.CodeBadRequest, "gift_card.redeemed", nil)
	case errors.Is(err, service.ErrGiftCardInvalidUser):
		respondError(c, response.CodeBadRequest, "gift_card.invalid_user", nil)
	case errors.Is(err, service.ErrGiftCardInsufficientBalance):
		respondError(c, response.CodeBadRequest, "gift_card.insufficient_balance", nil)
	case errors.Is(err, service.ErrGiftCardVoidFailed):
		respondError(c, response.CodeBadRequest, "gift_card.void_failed", nil)
	case errors.Is(err, service.ErrGiftCardRestoreFailed):
		respondError(c, response.CodeBadRequest, "gift_card.restore_failed", nil)
	case errors.Is(err, service.ErrGiftCardOrderNotEligible):
		respondError(c, response.CodeBadRequest, "gift_card.order_not_eligible", nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeBadRequest, "gift_card.user_not_found", nil)
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order.not_found", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}

// IssueGiftCard 管理端签发礼品卡
func (h *Handler) IssueGiftCard(c *gin.Context) {
	var req IssueGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	value, err := decimal.NewFromString(strings.TrimSpace(req.Value))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expirationDate, err := parseTimeNullable(strings.TrimSpace(req.ExpirationDate))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	card, err := h.GiftCardService.IssueGiftCard(service.IssueGiftCardInput{
		Name:           req.Name,
		Email:          req.Email,
		Note:           req.Note,
		Value:          models.NewMoneyFromDecimal(value),
		VariantID:      req.VariantID,
		ExpirationDate: expirationDate,
		RestrictToUser: req.RestrictUser,
	})
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, newAdminGiftCardItem(*card, time.Now()))
}

// GetGiftCards 获取礼品卡列表
func (h *Handler) GetGiftCards(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var userID uint
	if rawUserID := strings.TrimSpace(c.Query("user_id")); rawUserID != "" {
		parsed, err := strconv.ParseUint(rawUserID, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		userID = uint(parsed)
	}

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expiresFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("expires_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expiresTo, err := parseTimeNullable(strings.TrimSpace(c.Query("expires_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	expiresWithinDays := 0
	if raw := strings.TrimSpace(c.Query("expires_within_days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		expiresWithinDays = parsed
	}

	cards, total, err := h.GiftCardService.ListGiftCards(service.GiftCardListInput{
		Code:              strings.TrimSpace(c.Query("code")),
		Email:             strings.TrimSpace(c.Query("email")),
		Status:            strings.TrimSpace(strings.ToLower(c.Query("status"))),
		UserID:            userID,
		CreatedFrom:       createdFrom,
		CreatedTo:         createdTo,
		ExpiresFrom:       expiresFrom,
		ExpiresTo:         expiresTo,
		ExpiresWithinDays: expiresWithinDays,
		SortBy:            strings.TrimSpace(c.Query("sort_by")),
		SortDesc:          c.Query("sort_desc") == "true",
		Page:              page,
		PageSize:          pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	now := time.Now()
	items := make([]adminGiftCardItem, 0, len(cards))
	for _, card := range cards {
		items = append(items, newAdminGiftCardItem(card, now))
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, items, pagination)
}

// GetGiftCard 获取礼品卡详情
func (h *Handler) GetGiftCard(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	card, err := h.GiftCardService.GetGiftCard(id)
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, newAdminGiftCardItem(*card, time.Now()))
}

// UpdateGiftCard 更新礼品卡
func (h *Handler) UpdateGiftCard(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req UpdateGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input := service.UpdateGiftCardInput{
		Name:  req.Name,
		Email: req.Email,
		Note:  req.Note,
	}
	if req.ExpirationDate != nil {
		if strings.TrimSpace(*req.ExpirationDate) == "" {
			input.ClearExpiration = true
		} else {
			parsed, err := parseTimeNullable(strings.TrimSpace(*req.ExpirationDate))
			if err != nil {
				respondError(c, response.CodeBadRequest, "error.bad_request", err)
				return
			}
			input.ExpirationDate = parsed
		}
	}

	card, err := h.GiftCardService.UpdateGiftCard(id, input)
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, newAdminGiftCardItem(*card, time.Now()))
}

// DeleteGiftCard 删除礼品卡
func (h *Handler) DeleteGiftCard(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.GiftCardService.DeleteGiftCard(id); err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// VoidGiftCard 作废礼品卡
func (h *Handler) VoidGiftCard(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	card, err := h.GiftCardService.VoidGiftCard(id)
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, newAdminGiftCardItem(*card, time.Now()))
}

// RestoreGiftCard 恢复已作废的礼品卡
func (h *Handler) RestoreGiftCard(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	card, err := h.GiftCardService.RestoreGiftCard(id)
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, newAdminGiftCardItem(*card, time.Now()))
}

// DebitGiftCard 礼品卡手动扣款
func (h *Handler) DebitGiftCard(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req DebitGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	card, err := h.GiftCardService.DebitGiftCard(service.DebitGiftCardInput{
		CardID: id,
		Amount: models.NewMoneyFromDecimal(amount),
	})
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, newAdminGiftCardItem(*card, time.Now()))
}

// TransferGiftCard 转赠礼品卡
func (h *Handler) TransferGiftCard(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req TransferGiftCardRequest
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
		CardID:         id,
		Amount:         models.NewMoneyFromDecimal(amount),
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		Note:           req.Note,
	})
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, gin.H{
		"destination": newAdminGiftCardItem(*destination, time.Now()),
		"transfer":    transfer,
	})
}

// GetGiftCardTransfers 获取礼品卡转赠记录
func (h *Handler) GetGiftCardTransfers(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	transfers, err := h.GiftCardService.ListTransfers(id)
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, transfers)
}

// GetGiftCardAdjustments 获取礼品卡抵扣记录
func (h *Handler) GetGiftCardAdjustments(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	adjustments, err := h.GiftCardService.ListCardAdjustments(id)
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, adjustments)
}
