package queue

import (
	"encoding/json"

	"github.com/giftledger/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskGiftCardIssuedEmail 礼品卡签发邮件通知任务
	TaskGiftCardIssuedEmail = constants.TaskGiftCardIssuedEmail
	// TaskGiftCardTransferredEmail 礼品卡转赠邮件通知任务
	TaskGiftCardTransferredEmail = constants.TaskGiftCardTransferredEmail
	// TaskGiftCardExpireSweep 过期礼品卡巡检任务
	TaskGiftCardExpireSweep = constants.TaskGiftCardExpireSweep
	// TaskOrderIssueGiftCards 订单付款后签发礼品卡任务
	TaskOrderIssueGiftCards = constants.TaskOrderIssueGiftCards
)

// GiftCardIssuedEmailPayload 礼品卡签发邮件任务载荷
type GiftCardIssuedEmailPayload struct {
	GiftCardID uint   `json:"gift_card_id"`
	Locale     string `json:"locale,omitempty"`
}

// GiftCardTransferredEmailPayload 礼品卡转赠邮件任务载荷
type GiftCardTransferredEmailPayload struct {
	TransferID uint   `json:"transfer_id"`
	Locale     string `json:"locale,omitempty"`
}

// GiftCardExpireSweepPayload 过期礼品卡巡检任务载荷
type GiftCardExpireSweepPayload struct {
	Limit int `json:"limit,omitempty"`
}

// OrderIssueGiftCardsPayload 订单签发礼品卡任务载荷
type OrderIssueGiftCardsPayload struct {
	OrderID uint `json:"order_id"`
}

// NewGiftCardIssuedEmailTask 创建礼品卡签发邮件任务
func NewGiftCardIssuedEmailTask(payload GiftCardIssuedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGiftCardIssuedEmail, body), nil
}

// NewGiftCardTransferredEmailTask 创建礼品卡转赠邮件任务
func NewGiftCardTransferredEmailTask(payload GiftCardTransferredEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGiftCardTransferredEmail, body), nil
}

// NewGiftCardExpireSweepTask 创建过期礼品卡巡检任务
func NewGiftCardExpireSweepTask(payload GiftCardExpireSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGiftCardExpireSweep, body), nil
}

// NewOrderIssueGiftCardsTask 创建订单签发礼品卡任务
func NewOrderIssueGiftCardsTask(payload OrderIssueGiftCardsPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderIssueGiftCards, body), nil
}
