package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/giftledger/internal/logger"
	"github.com/giftledger/internal/provider"
	"github.com/giftledger/internal/queue"
	"github.com/giftledger/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskGiftCardIssuedEmail, c.handleGiftCardIssuedEmail)
	mux.HandleFunc(queue.TaskGiftCardTransferredEmail, c.handleGiftCardTransferredEmail)
	mux.HandleFunc(queue.TaskGiftCardExpireSweep, c.handleGiftCardExpireSweep)
	mux.HandleFunc(queue.TaskOrderIssueGiftCards, c.handleOrderIssueGiftCards)
}

func (c *Consumer) handleGiftCardIssuedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_gift_card_issued_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GiftCardIssuedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gift_card_issued_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.GiftCardID == 0 {
		logger.Debugw("worker_gift_card_issued_email_skip_invalid_payload", "gift_card_id", payload.GiftCardID)
		return nil
	}
	card, err := c.GiftCardRepo.GetByID(payload.GiftCardID)
	if err != nil {
		logger.Warnw("worker_gift_card_issued_email_fetch_failed", "gift_card_id", payload.GiftCardID, "error", err)
		return err
	}
	if card == nil {
		logger.Debugw("worker_gift_card_issued_email_skip_not_found", "gift_card_id", payload.GiftCardID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_gift_card_issued_email_skip_email_service_nil", "gift_card_id", card.ID)
		return nil
	}

	locale := strings.TrimSpace(payload.Locale)
	if locale == "" && card.User != nil {
		locale = strings.TrimSpace(card.User.Locale)
	}
	if err := c.EmailService.SendGiftCardIssuedEmail(card, locale); err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("worker_gift_card_issued_email_skip_disabled", "gift_card_id", card.ID)
			return nil
		}
		if errors.Is(err, service.ErrEmailRecipientRejected) {
			logger.Warnw("worker_gift_card_issued_email_recipient_rejected", "gift_card_id", card.ID, "email", card.Email)
			return nil
		}
		logger.Warnw("worker_gift_card_issued_email_send_failed", "gift_card_id", card.ID, "email", card.Email, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleGiftCardTransferredEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_gift_card_transferred_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GiftCardTransferredEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gift_card_transferred_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.TransferID == 0 {
		logger.Debugw("worker_gift_card_transferred_email_skip_invalid_payload", "transfer_id", payload.TransferID)
		return nil
	}
	transfer, err := c.GiftCardRepo.GetTransferByID(payload.TransferID)
	if err != nil {
		logger.Warnw("worker_gift_card_transferred_email_fetch_failed", "transfer_id", payload.TransferID, "error", err)
		return err
	}
	if transfer == nil || transfer.Source == nil || transfer.Destination == nil {
		logger.Debugw("worker_gift_card_transferred_email_skip_not_found", "transfer_id", payload.TransferID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_gift_card_transferred_email_skip_email_service_nil", "transfer_id", transfer.ID)
		return nil
	}

	if err := c.EmailService.SendGiftCardTransferredEmail(transfer.Source, transfer.Destination, transfer, payload.Locale); err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("worker_gift_card_transferred_email_skip_disabled", "transfer_id", transfer.ID)
			return nil
		}
		if errors.Is(err, service.ErrEmailRecipientRejected) {
			logger.Warnw("worker_gift_card_transferred_email_recipient_rejected", "transfer_id", transfer.ID, "email", transfer.Destination.Email)
			return nil
		}
		logger.Warnw("worker_gift_card_transferred_email_send_failed", "transfer_id", transfer.ID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleGiftCardExpireSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_gift_card_expire_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GiftCardExpireSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gift_card_expire_sweep_unmarshal_failed", "error", err)
		return err
	}
	if c.GiftCardService == nil {
		logger.Warnw("worker_gift_card_expire_sweep_skip_service_nil")
		return nil
	}
	cards, err := c.GiftCardService.SweepExpiredGiftCards(payload.Limit)
	if err != nil {
		logger.Warnw("worker_gift_card_expire_sweep_failed", "error", err)
		return err
	}
	for i := range cards {
		logger.Infow("worker_gift_card_expired_with_balance",
			"gift_card_id", cards[i].ID,
			"code", cards[i].Code,
			"current_value", cards[i].CurrentValue.String(),
			"expiration_date", cards[i].ExpirationDate,
		)
	}
	return nil
}

func (c *Consumer) handleOrderIssueGiftCards(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_issue_gift_cards_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderIssueGiftCardsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_issue_gift_cards_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_issue_gift_cards_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_issue_gift_cards_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	issued, err := c.OrderService.IssueGiftCardsForOrder(payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_issue_gift_cards_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_issue_gift_cards_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	if len(issued) > 0 {
		logger.Infow("worker_order_issue_gift_cards_done", "order_id", payload.OrderID, "issued", len(issued))
	}
	return nil
}
