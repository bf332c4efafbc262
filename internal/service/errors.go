package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 通用错误
var (
	ErrNotFound           = errors.New("资源不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("原密码不正确")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrInvalidEmail       = errors.New("邮箱格式不正确")
	ErrForbidden          = errors.New("没有权限执行该操作")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUserDisabled       = errors.New("账号已被禁用")
	ErrProfileEmpty       = errors.New("没有需要更新的资料")
)

// 礼品卡错误
var (
	ErrGiftCardInvalid             = errors.New("礼品卡信息无效")
	ErrGiftCardNotFound            = errors.New("礼品卡不存在")
	ErrGiftCardFetchFailed         = errors.New("礼品卡查询失败")
	ErrGiftCardCreateFailed        = errors.New("礼品卡创建失败")
	ErrGiftCardUpdateFailed        = errors.New("礼品卡更新失败")
	ErrGiftCardDeleteFailed        = errors.New("礼品卡删除失败")
	ErrGiftCardExpired             = errors.New("礼品卡已过期")
	ErrGiftCardRedeemed            = errors.New("礼品卡余额已用尽")
	ErrGiftCardInvalidUser         = errors.New("礼品卡不属于当前用户")
	ErrGiftCardInsufficientBalance = errors.New("礼品卡余额不足")
	ErrGiftCardVoidFailed          = errors.New("礼品卡当前不可作废")
	ErrGiftCardRestoreFailed       = errors.New("礼品卡当前不可恢复")
	ErrGiftCardOrderNotEligible    = errors.New("当前订单状态不支持使用礼品卡")
)

// 订单错误
var (
	ErrOrderNotFound     = errors.New("订单不存在")
	ErrOrderFetchFailed  = errors.New("订单查询失败")
	ErrOrderUpdateFailed = errors.New("订单更新失败")
)

// 商品规格错误
var (
	ErrVariantInvalid   = errors.New("商品规格信息无效")
	ErrVariantNotFound  = errors.New("商品规格不存在")
	ErrVariantSKUExists = errors.New("规格编码已存在")
)

// 验证码错误
var (
	ErrCaptchaRequired = errors.New("请先完成验证码")
	ErrCaptchaInvalid  = errors.New("验证码错误或已失效")
)

// 邮件错误
var (
	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务未配置")
	ErrEmailRecipientRejected    = errors.New("收件人地址被拒绝")
)

// GiftCardValidationError 带字段明细的礼品卡校验错误，
// errors.Is 时等同于 ErrGiftCardInvalid。
type GiftCardValidationError struct {
	Fields map[string]string
}

// Error 输出按字段名排序的明细
func (e *GiftCardValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrGiftCardInvalid.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	return "礼品卡校验失败（" + strings.Join(parts, "; ") + "）"
}

// Is 支持 errors.Is(err, ErrGiftCardInvalid)
func (e *GiftCardValidationError) Is(target error) bool {
	return target == ErrGiftCardInvalid
}
