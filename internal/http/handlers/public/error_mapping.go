package public

import (
	"errors"

	"github.com/giftledger/internal/http/response"
	"github.com/giftledger/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var giftCardApplyErrorRules = []mappedHandlerError{
	{target: service.ErrGiftCardNotFound, code: response.CodeNotFound, key: "gift_card.not_found"},
	{target: service.ErrGiftCardExpired, code: response.CodeBadRequest, key: "gift_card.expired"},
	{target: service.ErrGiftCardRedeemed, code: response.CodeBadRequest, key: "gift_card.redeemed"},
	{target: service.ErrGiftCardInvalidUser, code: response.CodeBadRequest, key: "gift_card.invalid_user"},
	{target: service.ErrGiftCardOrderNotEligible, code: response.CodeBadRequest, key: "gift_card.order_not_eligible"},
	{target: service.ErrGiftCardInvalid, code: response.CodeBadRequest, key: "gift_card.invalid"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "order.not_found"},
}

var giftCardTransferErrorRules = []mappedHandlerError{
	{target: service.ErrGiftCardNotFound, code: response.CodeNotFound, key: "gift_card.not_found"},
	{target: service.ErrGiftCardExpired, code: response.CodeBadRequest, key: "gift_card.expired"},
	{target: service.ErrGiftCardInsufficientBalance, code: response.CodeBadRequest, key: "gift_card.insufficient_balance"},
	{target: service.ErrGiftCardInvalid, code: response.CodeBadRequest, key: "gift_card.invalid"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "order.not_found"},
	{target: service.ErrOrderUpdateFailed, code: response.CodeBadRequest, key: "order.update_failed"},
	{target: service.ErrVariantNotFound, code: response.CodeBadRequest, key: "variant.not_found"},
	{target: service.ErrVariantInvalid, code: response.CodeBadRequest, key: "variant.invalid"},
	{target: service.ErrGiftCardInsufficientBalance, code: response.CodeBadRequest, key: "gift_card.insufficient_balance"},
	{target: service.ErrGiftCardExpired, code: response.CodeBadRequest, key: "gift_card.expired"},
}

func respondGiftCardApplyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, giftCardApplyErrorRules, response.CodeInternal, "error.internal")
}

func respondGiftCardTransferError(c *gin.Context, err error) {
	respondWithMappedError(c, err, giftCardTransferErrorRules, response.CodeInternal, "error.internal")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "order.fetch_failed")
}
