package i18n

import (
	"fmt"
	"strings"

	"github.com/giftledger/internal/constants"

	"github.com/gin-gonic/gin"
)

// 站点语言常量
const (
	LocaleZH = constants.LocaleZhCN
	LocaleTW = constants.LocaleZhTW
	LocaleEN = constants.LocaleEnUS
)

// ResolveLocale 解析请求语言，优先级为 query、header，默认简体中文
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return LocaleZH
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return Normalize(lang)
	}
	if lang := strings.TrimSpace(c.GetHeader("Accept-Language")); lang != "" {
		return Normalize(lang)
	}
	return LocaleZH
}

// Normalize 将任意语言标记归一化为受支持的站点语言
func Normalize(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case strings.HasPrefix(l, "zh-tw"), strings.HasPrefix(l, "zh-hk"), strings.HasPrefix(l, "zh-mo"):
		return LocaleTW
	case strings.HasPrefix(l, "en"):
		return LocaleEN
	default:
		return LocaleZH
	}
}

// T 按语言查找文案，未命中时回退简体中文，再未命中返回 key 本身
func T(locale, key string) string {
	if messages, ok := catalog[Normalize(locale)]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[LocaleZH][key]; ok {
		return msg
	}
	return key
}

// Sprintf 查找文案并格式化参数
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":         "请求参数有误",
		"error.unauthorized":        "请先登录",
		"error.forbidden":           "没有权限执行该操作",
		"error.not_found":           "资源不存在",
		"error.internal":            "服务器开小差了，请稍后再试",
		"error.rate_limited":        "操作过于频繁，请稍后再试",
		"error.captcha_required":    "请先完成验证码",
		"error.captcha_invalid":     "验证码错误或已失效",
		"error.invalid_credentials": "用户名或密码错误",
		"error.auth_header_missing": "缺少认证信息",
		"error.auth_header_invalid": "认证信息格式有误",
		"error.token_invalid":       "登录凭证无效",
		"error.token_revoked":       "登录凭证已失效，请重新登录",
		"error.jwt_secret_missing":  "服务端认证配置缺失",

		"error.admin_id_invalid":      "管理员身份无效",
		"error.admin_id_type_invalid": "管理员身份解析失败",
		"error.user_id_invalid":       "用户身份无效",
		"error.user_id_type_invalid":  "用户身份解析失败",

		"error.login_too_many":         "登录尝试过于频繁，请 %d 秒后再试",
		"error.apply_too_many":         "操作过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable": "限流服务暂不可用，请稍后再试",

		"error.password_min_length":      "密码长度不能少于 %d 位",
		"error.password_require_upper":   "密码需要包含大写字母",
		"error.password_require_lower":   "密码需要包含小写字母",
		"error.password_require_number":  "密码需要包含数字",
		"error.password_require_special": "密码需要包含特殊字符",
		"error.email_exists":             "邮箱已被注册",
		"error.email_invalid":            "邮箱格式不正确",
		"error.user_disabled":            "账号已被禁用",

		"gift_card.not_found":            "礼品卡不存在",
		"gift_card.invalid":              "礼品卡信息无效",
		"gift_card.expired":              "礼品卡已过期",
		"gift_card.redeemed":             "礼品卡余额已用尽",
		"gift_card.invalid_user":         "该礼品卡不属于当前账户",
		"gift_card.insufficient_balance": "礼品卡余额不足",
		"gift_card.void_failed":          "礼品卡当前不可作废",
		"gift_card.restore_failed":       "礼品卡当前不可恢复",
		"gift_card.validation_failed":    "礼品卡信息校验失败",
		"gift_card.user_not_found":       "找不到对应邮箱的用户",
		"gift_card.order_not_eligible":   "当前订单状态不支持使用礼品卡",

		"order.not_found":      "订单不存在",
		"order.update_failed":  "订单更新失败",
		"order.fetch_failed":   "订单查询失败",
		"variant.not_found":    "商品规格不存在",
		"variant.invalid":      "商品规格信息无效",
		"variant.sku_exists":   "规格编码已存在",
		"error.profile_empty":  "没有需要更新的资料",
		"error.login_failed":   "登录失败，请稍后再试",
		"error.old_password":   "原密码不正确",

		"email.gift_card.no_expiry":           "长期有效",
		"email.gift_card_issued.subject":      "您收到一张礼品卡",
		"email.gift_card_issued.body":         "您好 %s：\n\n您收到一张面值 %s 的礼品卡。\n卡号：%s\n有效期至：%s\n\n下单时输入卡号即可抵扣。",
		"email.gift_card_transferred.subject": "您收到一张转赠的礼品卡",
		"email.gift_card_transferred.body":    "您好 %s：\n\n%s 向您转赠了一张余额 %s 的礼品卡。\n卡号：%s\n有效期至：%s\n\n下单时输入卡号即可抵扣。",
	},
	LocaleTW: {
		"error.bad_request":         "請求參數有誤",
		"error.unauthorized":        "請先登入",
		"error.forbidden":           "沒有權限執行該操作",
		"error.not_found":           "資源不存在",
		"error.internal":            "伺服器開小差了，請稍後再試",
		"error.rate_limited":        "操作過於頻繁，請稍後再試",
		"error.captcha_required":    "請先完成驗證碼",
		"error.captcha_invalid":     "驗證碼錯誤或已失效",
		"error.invalid_credentials": "使用者名稱或密碼錯誤",
		"error.auth_header_missing": "缺少認證資訊",
		"error.auth_header_invalid": "認證資訊格式有誤",
		"error.token_invalid":       "登入憑證無效",
		"error.token_revoked":       "登入憑證已失效，請重新登入",
		"error.jwt_secret_missing":  "伺服器認證設定缺失",

		"error.admin_id_invalid":      "管理員身份無效",
		"error.admin_id_type_invalid": "管理員身份解析失敗",
		"error.user_id_invalid":       "使用者身份無效",
		"error.user_id_type_invalid":  "使用者身份解析失敗",

		"error.login_too_many":         "登入嘗試過於頻繁，請 %d 秒後再試",
		"error.apply_too_many":         "操作過於頻繁，請 %d 秒後再試",
		"error.rate_limit_unavailable": "限流服務暫不可用，請稍後再試",

		"error.password_min_length":      "密碼長度不能少於 %d 位",
		"error.password_require_upper":   "密碼需要包含大寫字母",
		"error.password_require_lower":   "密碼需要包含小寫字母",
		"error.password_require_number":  "密碼需要包含數字",
		"error.password_require_special": "密碼需要包含特殊字符",
		"error.email_exists":             "信箱已被註冊",
		"error.email_invalid":            "信箱格式不正確",
		"error.user_disabled":            "帳號已被停用",

		"gift_card.not_found":            "禮品卡不存在",
		"gift_card.invalid":              "禮品卡資訊無效",
		"gift_card.expired":              "禮品卡已過期",
		"gift_card.redeemed":             "禮品卡餘額已用盡",
		"gift_card.invalid_user":         "該禮品卡不屬於當前帳戶",
		"gift_card.insufficient_balance": "禮品卡餘額不足",
		"gift_card.void_failed":          "禮品卡當前不可作廢",
		"gift_card.restore_failed":       "禮品卡當前不可恢復",
		"gift_card.validation_failed":    "禮品卡資訊校驗失敗",
		"gift_card.user_not_found":       "找不到對應信箱的使用者",
		"gift_card.order_not_eligible":   "當前訂單狀態不支援使用禮品卡",

		"order.not_found":      "訂單不存在",
		"order.update_failed":  "訂單更新失敗",
		"order.fetch_failed":   "訂單查詢失敗",
		"variant.not_found":    "商品規格不存在",
		"variant.invalid":      "商品規格資訊無效",
		"variant.sku_exists":   "規格編碼已存在",
		"error.profile_empty":  "沒有需要更新的資料",
		"error.login_failed":   "登入失敗，請稍後再試",
		"error.old_password":   "原密碼不正確",

		"email.gift_card.no_expiry":           "長期有效",
		"email.gift_card_issued.subject":      "您收到一張禮品卡",
		"email.gift_card_issued.body":         "您好 %s：\n\n您收到一張面值 %s 的禮品卡。\n卡號：%s\n有效期至：%s\n\n下單時輸入卡號即可抵扣。",
		"email.gift_card_transferred.subject": "您收到一張轉贈的禮品卡",
		"email.gift_card_transferred.body":    "您好 %s：\n\n%s 向您轉贈了一張餘額 %s 的禮品卡。\n卡號：%s\n有效期至：%s\n\n下單時輸入卡號即可抵扣。",
	},
	LocaleEN: {
		"error.bad_request":         "Invalid request parameters",
		"error.unauthorized":        "Please sign in first",
		"error.forbidden":           "You are not allowed to perform this action",
		"error.not_found":           "Resource not found",
		"error.internal":            "Something went wrong, please try again later",
		"error.rate_limited":        "Too many requests, please try again later",
		"error.captcha_required":    "Captcha verification required",
		"error.captcha_invalid":     "Captcha is invalid or expired",
		"error.invalid_credentials": "Invalid username or password",
		"error.auth_header_missing": "Missing authorization header",
		"error.auth_header_invalid": "Malformed authorization header",
		"error.token_invalid":       "Invalid token",
		"error.token_revoked":       "Token has been revoked, please sign in again",
		"error.jwt_secret_missing":  "Server auth configuration is missing",

		"error.admin_id_invalid":      "Invalid admin identity",
		"error.admin_id_type_invalid": "Failed to resolve admin identity",
		"error.user_id_invalid":       "Invalid user identity",
		"error.user_id_type_invalid":  "Failed to resolve user identity",

		"error.login_too_many":         "Too many login attempts, retry in %d seconds",
		"error.apply_too_many":         "Too many attempts, retry in %d seconds",
		"error.rate_limit_unavailable": "Rate limiter is unavailable, please retry later",

		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",
		"error.email_exists":             "Email is already registered",
		"error.email_invalid":            "Email address is invalid",
		"error.user_disabled":            "Account is disabled",

		"gift_card.not_found":            "Gift card not found",
		"gift_card.invalid":              "Gift card details are invalid",
		"gift_card.expired":              "Gift card has expired",
		"gift_card.redeemed":             "Gift card balance is used up",
		"gift_card.invalid_user":         "Gift card does not belong to this account",
		"gift_card.insufficient_balance": "Gift card balance is insufficient",
		"gift_card.void_failed":          "Gift card cannot be voided right now",
		"gift_card.restore_failed":       "Gift card cannot be restored right now",
		"gift_card.validation_failed":    "Gift card details failed validation",
		"gift_card.user_not_found":       "No user matches that email",
		"gift_card.order_not_eligible":   "Order state does not allow gift cards",

		"order.not_found":      "Order not found",
		"order.update_failed":  "Failed to update the order",
		"order.fetch_failed":   "Failed to load the order",
		"variant.not_found":    "Variant not found",
		"variant.invalid":      "Variant details are invalid",
		"variant.sku_exists":   "SKU already exists",
		"error.profile_empty":  "Nothing to update",
		"error.login_failed":   "Login failed, please try again later",
		"error.old_password":   "Current password is incorrect",

		"email.gift_card.no_expiry":           "No expiry",
		"email.gift_card_issued.subject":      "A gift card for you",
		"email.gift_card_issued.body":         "Hi %s,\n\nYou have received a gift card worth %s.\nCode: %s\nValid until: %s\n\nEnter the code at checkout to redeem it.",
		"email.gift_card_transferred.subject": "A gift card was transferred to you",
		"email.gift_card_transferred.body":    "Hi %s,\n\n%s transferred you a gift card with a balance of %s.\nCode: %s\nValid until: %s\n\nEnter the code at checkout to redeem it.",
	},
}
