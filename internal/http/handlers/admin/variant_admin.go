package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/giftledger/internal/http/response"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// VariantRequest 商品规格请求
type VariantRequest struct {
	SKU        string `json:"sku" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Price      string `json:"price" binding:"required"`
	IsGiftCard bool   `json:"is_gift_card"`
}

func (r VariantRequest) toServiceInput() (service.VariantInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return service.VariantInput{}, err
	}
	return service.VariantInput{
		SKU:        r.SKU,
		Name:       r.Name,
		Price:      models.NewMoneyFromDecimal(price),
		IsGiftCard: r.IsGiftCard,
	}, nil
}

func respondVariantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVariantNotFound):
		respondError(c, response.CodeNotFound, "variant.not_found", nil)
	case errors.Is(err, service.ErrVariantInvalid):
		respondError(c, response.CodeBadRequest, "variant.invalid", nil)
	case errors.Is(err, service.ErrVariantSKUExists):
		respondError(c, response.CodeBadRequest, "variant.sku_exists", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}

// CreateVariant 创建商品规格
func (h *Handler) CreateVariant(c *gin.Context) {
	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	variant, err := h.VariantService.CreateVariant(input)
	if err != nil {
		respondVariantError(c, err)
		return
	}
	response.Success(c, variant)
}

// GetVariants 获取商品规格列表
func (h *Handler) GetVariants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	variants, total, err := h.VariantService.ListVariants(service.VariantListInput{
		GiftCardOnly: c.Query("gift_card_only") == "true",
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

// GetVariant 获取商品规格详情
func (h *Handler) GetVariant(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	variant, err := h.VariantService.GetVariant(id)
	if err != nil {
		respondVariantError(c, err)
		return
	}
	response.Success(c, variant)
}

// UpdateVariant 更新商品规格
func (h *Handler) UpdateVariant(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	variant, err := h.VariantService.UpdateVariant(id, input)
	if err != nil {
		respondVariantError(c, err)
		return
	}
	response.Success(c, variant)
}

// DeleteVariant 删除商品规格
func (h *Handler) DeleteVariant(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.VariantService.DeleteVariant(id); err != nil {
		respondVariantError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
