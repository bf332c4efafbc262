package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/giftledger/internal/provider"
	"github.com/giftledger/internal/queue"

	"github.com/hibiken/asynq"
)

func newTestConsumer() *Consumer {
	return NewConsumer(&provider.Container{})
}

func TestHandleGiftCardIssuedEmailInvalidPayload(t *testing.T) {
	c := newTestConsumer()
	task := asynq.NewTask(queue.TaskGiftCardIssuedEmail, []byte("{not json"))
	if err := c.handleGiftCardIssuedEmail(context.Background(), task); err == nil {
		t.Fatalf("期望载荷解析失败返回错误")
	}
}

func TestHandleGiftCardIssuedEmailZeroIDSkipped(t *testing.T) {
	c := newTestConsumer()
	body, err := json.Marshal(queue.GiftCardIssuedEmailPayload{GiftCardID: 0})
	if err != nil {
		t.Fatalf("序列化载荷失败: %v", err)
	}
	task := asynq.NewTask(queue.TaskGiftCardIssuedEmail, body)
	if err := c.handleGiftCardIssuedEmail(context.Background(), task); err != nil {
		t.Fatalf("期望跳过无效载荷, got %v", err)
	}
}

func TestHandleGiftCardTransferredEmailZeroIDSkipped(t *testing.T) {
	c := newTestConsumer()
	body, err := json.Marshal(queue.GiftCardTransferredEmailPayload{TransferID: 0})
	if err != nil {
		t.Fatalf("序列化载荷失败: %v", err)
	}
	task := asynq.NewTask(queue.TaskGiftCardTransferredEmail, body)
	if err := c.handleGiftCardTransferredEmail(context.Background(), task); err != nil {
		t.Fatalf("期望跳过无效载荷, got %v", err)
	}
}

func TestHandleOrderIssueGiftCardsZeroIDSkipped(t *testing.T) {
	c := newTestConsumer()
	body, err := json.Marshal(queue.OrderIssueGiftCardsPayload{OrderID: 0})
	if err != nil {
		t.Fatalf("序列化载荷失败: %v", err)
	}
	task := asynq.NewTask(queue.TaskOrderIssueGiftCards, body)
	if err := c.handleOrderIssueGiftCards(context.Background(), task); err != nil {
		t.Fatalf("期望跳过无效载荷, got %v", err)
	}
}
