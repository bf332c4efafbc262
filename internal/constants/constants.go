package constants

// 礼品卡状态常量
const (
	GiftCardStatusActive   = "active"
	GiftCardStatusRedeemed = "redeemed"
	GiftCardStatusExpired  = "expired"
)

// 支持的礼品卡状态顺序
var GiftCardStatuses = []string{
	GiftCardStatusActive,
	GiftCardStatusRedeemed,
	GiftCardStatusExpired,
}

// 订单状态常量
const (
	OrderStateCart           = "cart"
	OrderStateAddress        = "address"
	OrderStateDelivery       = "delivery"
	OrderStatePayment        = "payment"
	OrderStateConfirm        = "confirm"
	OrderStateComplete       = "complete"
	OrderStateAwaitingReturn = "awaiting_return"
	OrderStateReturned       = "returned"
	OrderStateCanceled       = "canceled"
)

// 不允许再追加礼品卡抵扣的订单状态
var GiftCardUnactivatableOrderStates = []string{
	OrderStateComplete,
	OrderStateAwaitingReturn,
	OrderStateReturned,
}

// 订单支付状态常量
const (
	PaymentStateBalanceDue = "balance_due"
	PaymentStatePaid       = "paid"
	PaymentStateCreditOwed = "credit_owed"
	PaymentStateFailed     = "failed"
)

// 调整项来源类型常量
const (
	AdjustmentSourceGiftCard = "gift_card"
)

// 抵扣金额计算器类型常量
const (
	CalculatorTypeFullBalance = "full_balance"
)

// 队列常量
const (
	QueueDefault                 = "default"
	TaskGiftCardIssuedEmail      = "gift_card:issued_email"
	TaskGiftCardTransferredEmail = "gift_card:transferred_email"
	TaskGiftCardExpireSweep      = "gift_card:expire_sweep"
	TaskOrderIssueGiftCards      = "order:issue_gift_cards"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "gl"
)

// 验证码校验场景常量
const (
	CaptchaSceneAdminLogin    = "admin_login"
	CaptchaSceneGiftCardApply = "gift_card_apply"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}

// 礼品卡默认配置常量
const (
	GiftCardDefaultExpirationDays = 730
	GiftCardDefaultCodePrefix     = "GC"
	GiftCardDefaultCodeRandom     = 6
	GiftCardCodeMaxAttempts       = 5
)
