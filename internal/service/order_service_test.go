package service

import (
	"errors"
	"testing"
	"time"

	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/models"

	"github.com/shopspring/decimal"
)

func TestCreateOrderComputesTotals(t *testing.T) {
	_, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(4001)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-ORDER-1", "19.90", false)

	order := createTestOrder(t, orderSvc, userID, variant.ID, 3)
	if order.OrderNo == "" {
		t.Fatal("expected generated order no")
	}
	if order.State != constants.OrderStateCart {
		t.Fatalf("expected cart state, got: %s", order.State)
	}
	if !order.ItemTotal.Decimal.Equal(decimal.RequireFromString("59.70")) {
		t.Fatalf("expected item total 59.70, got: %s", order.ItemTotal)
	}
	if !order.TotalAmount.Decimal.Equal(order.ItemTotal.Decimal) {
		t.Fatalf("total should equal item total before adjustments, got: %s", order.TotalAmount)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}
}

func TestAdvanceOrderRejectsUnknownState(t *testing.T) {
	_, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(4002)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-ORDER-2", "10.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)

	if _, err := orderSvc.AdvanceOrder(order.OrderNo, "teleported"); !errors.Is(err, ErrOrderUpdateFailed) {
		t.Fatalf("expected ErrOrderUpdateFailed, got: %v", err)
	}

	advanced, err := orderSvc.AdvanceOrder(order.OrderNo, constants.OrderStatePayment)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if advanced.State != constants.OrderStatePayment {
		t.Fatalf("expected payment state, got: %s", advanced.State)
	}
}

func TestRemoveGiftCardRecalculatesTotals(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(4003)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-ORDER-3", "60.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	card := issueTestGiftCard(t, svc, "40.00")

	if _, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: userID, OrderNo: order.OrderNo, Code: card.Code}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	updated, err := orderSvc.RemoveGiftCard(order.OrderNo, card.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !updated.TotalAmount.Decimal.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected total restored to 60.00, got: %s", updated.TotalAmount)
	}

	var count int64
	if err := db.Model(&models.Adjustment{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count adjustments failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no adjustments after removal, got: %d", count)
	}
}

func TestRemoveGiftCardAfterCaptureRejected(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(4004)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-ORDER-4", "30.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	card := issueTestGiftCard(t, svc, "30.00")

	if _, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: userID, OrderNo: order.OrderNo, Code: card.Code}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := orderSvc.CompleteOrder(order.OrderNo); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if _, err := orderSvc.RemoveGiftCard(order.OrderNo, card.ID); !errors.Is(err, ErrOrderUpdateFailed) {
		t.Fatalf("expected ErrOrderUpdateFailed, got: %v", err)
	}
}

func TestCompleteOrderIdempotent(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(4005)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-ORDER-5", "25.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	card := issueTestGiftCard(t, svc, "25.00")

	if _, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: userID, OrderNo: order.OrderNo, Code: card.Code}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := orderSvc.CompleteOrder(order.OrderNo); err != nil {
		t.Fatalf("first complete failed: %v", err)
	}
	if _, err := orderSvc.CompleteOrder(order.OrderNo); err != nil {
		t.Fatalf("second complete failed: %v", err)
	}

	reloaded, err := svc.GetGiftCard(card.ID)
	if err != nil {
		t.Fatalf("reload card failed: %v", err)
	}
	if !reloaded.CurrentValue.Decimal.IsZero() {
		t.Fatalf("card must be debited exactly once, got: %s", reloaded.CurrentValue)
	}
}

func TestSweepExpiredGiftCards(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	expiredAt := time.Now().Add(-24 * time.Hour)
	card := models.GiftCard{
		Name:           "巡检卡",
		Email:          "sweep@example.com",
		Code:           "GCSWEEP0001",
		OriginalValue:  models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")),
		CurrentValue:   models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")),
		CalculatorType: constants.CalculatorTypeFullBalance,
		ExpirationDate: &expiredAt,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("create expired card failed: %v", err)
	}

	cards, err := svc.SweepExpiredGiftCards(10)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != card.ID {
		t.Fatalf("expected expired card in sweep, got: %+v", cards)
	}
}
