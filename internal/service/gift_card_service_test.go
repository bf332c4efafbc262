package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/giftledger/internal/calculator"
	"github.com/giftledger/internal/config"
	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupGiftCardServiceTest(t *testing.T) (*GiftCardService, *OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:gift_card_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Variant{},
		&models.Order{},
		&models.LineItem{},
		&models.Adjustment{},
		&models.GiftCard{},
		&models.GiftCardTransfer{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cardRepo := repository.NewGiftCardRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	cfg := &config.GiftCardConfig{
		DefaultExpirationDays: constants.GiftCardDefaultExpirationDays,
		CodePrefix:            constants.GiftCardDefaultCodePrefix,
		CodeRandomBytes:       constants.GiftCardDefaultCodeRandom,
		CalculatorType:        constants.CalculatorTypeFullBalance,
	}
	giftSvc := NewGiftCardService(cardRepo, orderRepo, userRepo, variantRepo, calculator.NewRegistry(), nil, cfg)
	orderSvc := NewOrderService(orderRepo, variantRepo, giftSvc, nil)
	return giftSvc, orderSvc, db
}

func seedGiftCardUser(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("gift_card_user_%d@example.com", id),
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func seedGiftCardVariant(t *testing.T, db *gorm.DB, sku, price string, isGiftCard bool) *models.Variant {
	t.Helper()
	variant := models.Variant{
		SKU:        sku,
		Name:       "礼品卡规格 " + sku,
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		IsGiftCard: isGiftCard,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return &variant
}

func issueTestGiftCard(t *testing.T, svc *GiftCardService, value string) *models.GiftCard {
	t.Helper()
	card, err := svc.IssueGiftCard(IssueGiftCardInput{
		Name:  "收卡人",
		Email: "recipient@example.com",
		Value: models.NewMoneyFromDecimal(decimal.RequireFromString(value)),
	})
	if err != nil {
		t.Fatalf("issue gift card failed: %v", err)
	}
	return card
}

func createTestOrder(t *testing.T, orderSvc *OrderService, userID uint, variantID uint, quantity int) *models.Order {
	t.Helper()
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID: userID,
		Email:  fmt.Sprintf("gift_card_user_%d@example.com", userID),
		Items:  []CreateOrderItem{{VariantID: variantID, Quantity: quantity}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestIssueGiftCardDefaults(t *testing.T) {
	svc, _, _ := setupGiftCardServiceTest(t)
	card := issueTestGiftCard(t, svc, "50.00")

	if card.ID == 0 || card.Code == "" {
		t.Fatalf("unexpected card: %+v", card)
	}
	if !strings.HasPrefix(card.Code, constants.GiftCardDefaultCodePrefix) {
		t.Fatalf("expected code prefix %s, got: %s", constants.GiftCardDefaultCodePrefix, card.Code)
	}
	if !card.OriginalValue.Decimal.Equal(card.CurrentValue.Decimal) {
		t.Fatalf("expected current == original, got: %s / %s", card.CurrentValue, card.OriginalValue)
	}
	if card.ExpirationDate == nil {
		t.Fatal("expected default expiration date")
	}
	wantExpire := time.Now().AddDate(0, 0, constants.GiftCardDefaultExpirationDays)
	if diff := card.ExpirationDate.Sub(wantExpire); diff > time.Minute || diff < -time.Minute {
		t.Fatalf("unexpected expiration date: %v", card.ExpirationDate)
	}
	if got := GiftCardStatus(card, time.Now()); got != constants.GiftCardStatusActive {
		t.Fatalf("expected active status, got: %s", got)
	}
}

func TestIssueGiftCardValidation(t *testing.T) {
	svc, _, _ := setupGiftCardServiceTest(t)
	_, err := svc.IssueGiftCard(IssueGiftCardInput{
		Name:  "",
		Email: "not-an-email",
		Value: models.NewMoneyFromDecimal(decimal.RequireFromString("-1")),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrGiftCardInvalid) {
		t.Fatalf("expected ErrGiftCardInvalid, got: %v", err)
	}
	var validationErr *GiftCardValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected GiftCardValidationError, got: %T", err)
	}
	for _, field := range []string{"name", "email", "original_value"} {
		if validationErr.Fields[field] == "" {
			t.Fatalf("expected field error for %s, got: %+v", field, validationErr.Fields)
		}
	}
}

func TestIssueGiftCardVariantOverridesValue(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	variant := seedGiftCardVariant(t, db, "SKU-GIFT-OVERRIDE", "25.00", true)

	card, err := svc.IssueGiftCard(IssueGiftCardInput{
		Name:      "收卡人",
		Email:     "recipient@example.com",
		Value:     models.NewMoneyFromDecimal(decimal.RequireFromString("30.00")),
		VariantID: &variant.ID,
	})
	if err != nil {
		t.Fatalf("issue gift card failed: %v", err)
	}
	if !card.OriginalValue.Decimal.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected variant price 25.00 to override caller value, got: %s", card.OriginalValue)
	}
	if !card.CurrentValue.Decimal.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected current value 25.00, got: %s", card.CurrentValue)
	}
	if card.VariantID == nil || *card.VariantID != variant.ID {
		t.Fatalf("expected card bound to variant %d, got: %v", variant.ID, card.VariantID)
	}
}

func TestIssueGiftCardZeroValueAllowed(t *testing.T) {
	svc, _, _ := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{
		Name:  "收卡人",
		Email: "recipient@example.com",
		Value: models.NewMoneyFromDecimal(decimal.Zero),
	})
	if err != nil {
		t.Fatalf("zero value issue failed: %v", err)
	}
	if !card.OriginalValue.Decimal.IsZero() || !card.CurrentValue.Decimal.IsZero() {
		t.Fatalf("expected zero values, got: %s / %s", card.OriginalValue, card.CurrentValue)
	}
	if got := GiftCardStatus(card, time.Now()); got != constants.GiftCardStatusRedeemed {
		t.Fatalf("expected redeemed status for zero balance, got: %s", got)
	}
}

func TestGiftCardStatusRedeemedBeatsExpired(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	card := &models.GiftCard{
		OriginalValue:  models.NewMoneyFromDecimal(decimal.RequireFromString("30.00")),
		CurrentValue:   models.NewMoneyFromDecimal(decimal.Zero),
		ExpirationDate: &expired,
	}
	if got := GiftCardStatus(card, time.Now()); got != constants.GiftCardStatusRedeemed {
		t.Fatalf("expected redeemed over expired, got: %s", got)
	}
	card.CurrentValue = models.NewMoneyFromDecimal(decimal.RequireFromString("1.00"))
	if got := GiftCardStatus(card, time.Now()); got != constants.GiftCardStatusExpired {
		t.Fatalf("expected expired, got: %s", got)
	}
}

func TestGiftCardOrderActivatable(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)
	owner := uint(7)
	stranger := uint(9)

	base := func() *models.GiftCard {
		return &models.GiftCard{
			OriginalValue:  models.NewMoneyFromDecimal(decimal.RequireFromString("30.00")),
			CurrentValue:   models.NewMoneyFromDecimal(decimal.RequireFromString("30.00")),
			UserID:         &owner,
			ExpirationDate: &future,
		}
	}

	cases := []struct {
		name  string
		card  *models.GiftCard
		order *models.Order
		want  bool
	}{
		{"owner_matches", base(), &models.Order{UserID: owner, State: constants.OrderStateCart}, true},
		{"owner_mismatch", base(), &models.Order{UserID: stranger, State: constants.OrderStateCart}, false},
		{"unbound_card", func() *models.GiftCard { c := base(); c.UserID = nil; return c }(), &models.Order{UserID: stranger, State: constants.OrderStateCart}, true},
		{"completed_order", base(), &models.Order{UserID: owner, State: constants.OrderStateComplete}, false},
		{"expired_card", func() *models.GiftCard { c := base(); c.ExpirationDate = &past; return c }(), &models.Order{UserID: owner, State: constants.OrderStateCart}, false},
		{"drained_card", func() *models.GiftCard { c := base(); c.CurrentValue = models.NewMoneyFromDecimal(decimal.Zero); return c }(), &models.Order{UserID: owner, State: constants.OrderStateCart}, false},
		{"nil_card", nil, &models.Order{UserID: owner, State: constants.OrderStateCart}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GiftCardOrderActivatable(tc.card, tc.order, now); got != tc.want {
				t.Fatalf("want %v got %v", tc.want, got)
			}
		})
	}
}

func TestApplyGiftCardCreatesAdjustmentAndBindsUser(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(3001)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-PLAIN-1", "80.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	card := issueTestGiftCard(t, svc, "50.00")

	adjustment, err := svc.ApplyGiftCard(ApplyGiftCardInput{
		UserID:  userID,
		OrderNo: order.OrderNo,
		Code:    card.Code,
	})
	if err != nil {
		t.Fatalf("apply gift card failed: %v", err)
	}
	if !adjustment.Amount.Decimal.Equal(decimal.RequireFromString("-50.00")) {
		t.Fatalf("expected adjustment amount -50.00, got: %s", adjustment.Amount)
	}

	updated, err := orderSvc.GetOrder(order.OrderNo)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !updated.TotalAmount.Decimal.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected order total 30.00, got: %s", updated.TotalAmount)
	}

	reloaded, err := svc.GetGiftCard(card.ID)
	if err != nil {
		t.Fatalf("reload card failed: %v", err)
	}
	if reloaded.UserID == nil || *reloaded.UserID != userID {
		t.Fatalf("expected card bound to user %d, got: %+v", userID, reloaded.UserID)
	}
	if !reloaded.CurrentValue.Decimal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("balance should not move before capture, got: %s", reloaded.CurrentValue)
	}
}

func TestApplyGiftCardClampsToOrderTotal(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(3002)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-PLAIN-2", "20.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	card := issueTestGiftCard(t, svc, "100.00")

	adjustment, err := svc.ApplyGiftCard(ApplyGiftCardInput{
		UserID:  userID,
		OrderNo: order.OrderNo,
		Code:    card.Code,
	})
	if err != nil {
		t.Fatalf("apply gift card failed: %v", err)
	}
	if !adjustment.Amount.Decimal.Equal(decimal.RequireFromString("-20.00")) {
		t.Fatalf("expected adjustment clamped to -20.00, got: %s", adjustment.Amount)
	}

	updated, err := orderSvc.GetOrder(order.OrderNo)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !updated.TotalAmount.Decimal.IsZero() {
		t.Fatalf("expected order total 0, got: %s", updated.TotalAmount)
	}
}

func TestApplyGiftCardIdempotent(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(3003)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-PLAIN-3", "60.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	card := issueTestGiftCard(t, svc, "25.00")

	first, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: userID, OrderNo: order.OrderNo, Code: card.Code})
	if err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	second, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: userID, OrderNo: order.OrderNo, Code: card.Code})
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same adjustment, got: %d / %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&models.Adjustment{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count adjustments failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 adjustment, got: %d", count)
	}
}

func TestApplyGiftCardExpired(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(3004)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-PLAIN-4", "40.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)

	expiredAt := time.Now().Add(-time.Hour)
	card := models.GiftCard{
		Name:           "过期礼品卡",
		Email:          "expired@example.com",
		Code:           "GCEXPIRED0001",
		OriginalValue:  models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		CurrentValue:   models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		CalculatorType: constants.CalculatorTypeFullBalance,
		ExpirationDate: &expiredAt,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("create expired card failed: %v", err)
	}

	_, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: userID, OrderNo: order.OrderNo, Code: card.Code})
	if !errors.Is(err, ErrGiftCardExpired) {
		t.Fatalf("expected ErrGiftCardExpired, got: %v", err)
	}
}

func TestApplyGiftCardCompletedOrderRejected(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(3005)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-PLAIN-5", "40.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	if _, err := orderSvc.CompleteOrder(order.OrderNo); err != nil {
		t.Fatalf("complete order failed: %v", err)
	}
	card := issueTestGiftCard(t, svc, "15.00")

	_, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: userID, OrderNo: order.OrderNo, Code: card.Code})
	if !errors.Is(err, ErrGiftCardOrderNotEligible) {
		t.Fatalf("expected ErrGiftCardOrderNotEligible, got: %v", err)
	}
}

func TestApplyGiftCardWrongOwnerRejected(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	ownerID := uint(3006)
	strangerID := uint(3007)
	seedGiftCardUser(t, db, ownerID)
	seedGiftCardUser(t, db, strangerID)
	variant := seedGiftCardVariant(t, db, "SKU-PLAIN-6", "40.00", false)
	order := createTestOrder(t, orderSvc, strangerID, variant.ID, 1)

	card := issueTestGiftCard(t, svc, "15.00")
	if err := db.Model(&models.GiftCard{}).Where("id = ?", card.ID).Update("user_id", ownerID).Error; err != nil {
		t.Fatalf("bind card owner failed: %v", err)
	}

	_, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: strangerID, OrderNo: order.OrderNo, Code: card.Code})
	if !errors.Is(err, ErrGiftCardInvalidUser) {
		t.Fatalf("expected ErrGiftCardInvalidUser, got: %v", err)
	}
}

func TestDebitGiftCard(t *testing.T) {
	svc, _, _ := setupGiftCardServiceTest(t)
	card := issueTestGiftCard(t, svc, "30.00")

	debited, err := svc.DebitGiftCard(DebitGiftCardInput{
		CardID: card.ID,
		Amount: models.NewMoneyFromDecimal(decimal.RequireFromString("12.50")),
	})
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if !debited.CurrentValue.Decimal.Equal(decimal.RequireFromString("17.50")) {
		t.Fatalf("expected balance 17.50, got: %s", debited.CurrentValue)
	}

	_, err = svc.DebitGiftCard(DebitGiftCardInput{
		CardID: card.ID,
		Amount: models.NewMoneyFromDecimal(decimal.RequireFromString("20.00")),
	})
	if !errors.Is(err, ErrGiftCardInsufficientBalance) {
		t.Fatalf("expected ErrGiftCardInsufficientBalance, got: %v", err)
	}

	reloaded, err := svc.GetGiftCard(card.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reloaded.CurrentValue.Decimal.Equal(decimal.RequireFromString("17.50")) {
		t.Fatalf("failed debit should not change balance, got: %s", reloaded.CurrentValue)
	}
}

func TestVoidRestoreRoundTrip(t *testing.T) {
	svc, _, _ := setupGiftCardServiceTest(t)
	card := issueTestGiftCard(t, svc, "45.00")

	voided, err := svc.VoidGiftCard(card.ID)
	if err != nil {
		t.Fatalf("void failed: %v", err)
	}
	if !voided.CurrentValue.Decimal.IsZero() {
		t.Fatalf("expected zero balance after void, got: %s", voided.CurrentValue)
	}
	if got := GiftCardStatus(voided, time.Now()); got != constants.GiftCardStatusRedeemed {
		t.Fatalf("expected redeemed status after void, got: %s", got)
	}

	if _, err := svc.VoidGiftCard(card.ID); !errors.Is(err, ErrGiftCardVoidFailed) {
		t.Fatalf("expected ErrGiftCardVoidFailed on double void, got: %v", err)
	}

	restored, err := svc.RestoreGiftCard(card.ID)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !restored.CurrentValue.Decimal.Equal(decimal.RequireFromString("45.00")) {
		t.Fatalf("expected balance 45.00 after restore, got: %s", restored.CurrentValue)
	}
	if _, err := svc.RestoreGiftCard(card.ID); !errors.Is(err, ErrGiftCardRestoreFailed) {
		t.Fatalf("expected ErrGiftCardRestoreFailed on nonzero balance, got: %v", err)
	}
}

func TestTransferFullAmount(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	recipientID := uint(3008)
	seedGiftCardUser(t, db, recipientID)
	card := issueTestGiftCard(t, svc, "70.00")

	destination, transfer, err := svc.TransferGiftCard(TransferGiftCardInput{
		CardID:         card.ID,
		Amount:         models.NewMoneyFromDecimal(decimal.RequireFromString("70.00")),
		RecipientName:  "朋友",
		RecipientEmail: fmt.Sprintf("gift_card_user_%d@example.com", recipientID),
		Note:           "生日快乐",
	})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if !destination.OriginalValue.Decimal.Equal(decimal.RequireFromString("70.00")) ||
		!destination.CurrentValue.Decimal.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("unexpected destination values: %s / %s", destination.CurrentValue, destination.OriginalValue)
	}
	if destination.UserID == nil || *destination.UserID != recipientID {
		t.Fatalf("expected destination bound to recipient, got: %+v", destination.UserID)
	}
	if destination.ExpirationDate == nil || card.ExpirationDate == nil ||
		!destination.ExpirationDate.Equal(*card.ExpirationDate) {
		t.Fatalf("destination should inherit expiration: %v / %v", destination.ExpirationDate, card.ExpirationDate)
	}
	if transfer.SourceID != card.ID || transfer.DestinationID != destination.ID {
		t.Fatalf("unexpected transfer record: %+v", transfer)
	}

	source, err := svc.GetGiftCard(card.ID)
	if err != nil {
		t.Fatalf("reload source failed: %v", err)
	}
	if !source.CurrentValue.Decimal.IsZero() {
		t.Fatalf("expected empty source, got: %s", source.CurrentValue)
	}
	if got := GiftCardStatus(source, time.Now()); got != constants.GiftCardStatusRedeemed {
		t.Fatalf("expected source redeemed, got: %s", got)
	}
}

func TestTransferInsufficientBalanceChangesNothing(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	card := issueTestGiftCard(t, svc, "10.00")

	_, _, err := svc.TransferGiftCard(TransferGiftCardInput{
		CardID:         card.ID,
		Amount:         models.NewMoneyFromDecimal(decimal.RequireFromString("15.00")),
		RecipientName:  "朋友",
		RecipientEmail: "friend@example.com",
	})
	if !errors.Is(err, ErrGiftCardInsufficientBalance) {
		t.Fatalf("expected ErrGiftCardInsufficientBalance, got: %v", err)
	}

	source, err := svc.GetGiftCard(card.ID)
	if err != nil {
		t.Fatalf("reload source failed: %v", err)
	}
	if !source.CurrentValue.Decimal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("source balance should be unchanged, got: %s", source.CurrentValue)
	}
	var cardCount int64
	if err := db.Model(&models.GiftCard{}).Count(&cardCount).Error; err != nil {
		t.Fatalf("count cards failed: %v", err)
	}
	if cardCount != 1 {
		t.Fatalf("failed transfer must not create cards, got: %d", cardCount)
	}
	var transferCount int64
	if err := db.Model(&models.GiftCardTransfer{}).Count(&transferCount).Error; err != nil {
		t.Fatalf("count transfers failed: %v", err)
	}
	if transferCount != 0 {
		t.Fatalf("failed transfer must not be recorded, got: %d", transferCount)
	}
}

func TestCompleteOrderCapturesGiftCard(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(3009)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-PLAIN-7", "35.00", false)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	card := issueTestGiftCard(t, svc, "50.00")

	if _, err := svc.ApplyGiftCard(ApplyGiftCardInput{UserID: userID, OrderNo: order.OrderNo, Code: card.Code}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	completed, err := orderSvc.CompleteOrder(order.OrderNo)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.State != constants.OrderStateComplete {
		t.Fatalf("expected complete state, got: %s", completed.State)
	}
	if completed.PaymentState != constants.PaymentStatePaid {
		t.Fatalf("expected paid payment state, got: %s", completed.PaymentState)
	}
	if !completed.TotalAmount.Decimal.IsZero() {
		t.Fatalf("expected zero total, got: %s", completed.TotalAmount)
	}

	reloaded, err := svc.GetGiftCard(card.ID)
	if err != nil {
		t.Fatalf("reload card failed: %v", err)
	}
	if !reloaded.CurrentValue.Decimal.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected balance 15.00 after capture, got: %s", reloaded.CurrentValue)
	}

	var adjustment models.Adjustment
	if err := db.Where("order_id = ?", order.ID).First(&adjustment).Error; err != nil {
		t.Fatalf("load adjustment failed: %v", err)
	}
	if !adjustment.Captured {
		t.Fatal("expected adjustment marked captured")
	}
}

func TestIssueGiftCardsForOrderIdempotent(t *testing.T) {
	_, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(3010)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-GIFT-1", "25.00", true)
	order := createTestOrder(t, orderSvc, userID, variant.ID, 2)
	if _, err := orderSvc.CompleteOrder(order.OrderNo); err != nil {
		t.Fatalf("complete order failed: %v", err)
	}

	issued, err := orderSvc.IssueGiftCardsForOrder(order.ID)
	if err != nil {
		t.Fatalf("issue for order failed: %v", err)
	}
	if len(issued) != 2 {
		t.Fatalf("expected 2 issued cards (one per unit), got: %d", len(issued))
	}
	for i := range issued {
		if !issued[i].OriginalValue.Decimal.Equal(decimal.RequireFromString("25.00")) {
			t.Fatalf("expected card value 25.00 from variant price, got: %s", issued[i].OriginalValue)
		}
		if issued[i].LineItemID == nil {
			t.Fatal("expected card linked to line item")
		}
	}

	again, err := orderSvc.IssueGiftCardsForOrder(order.ID)
	if err != nil {
		t.Fatalf("second issue for order failed: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new cards on repeat, got: %d", len(again))
	}
}

func TestListUserGiftCardsHidesUnpaidPurchases(t *testing.T) {
	svc, orderSvc, db := setupGiftCardServiceTest(t)
	userID := uint(3011)
	seedGiftCardUser(t, db, userID)
	variant := seedGiftCardVariant(t, db, "SKU-GIFT-2", "20.00", true)

	// 已付款订单签发的卡应当可见
	paidOrder := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	if _, err := orderSvc.CompleteOrder(paidOrder.OrderNo); err != nil {
		t.Fatalf("complete paid order failed: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", paidOrder.ID).
		Update("payment_state", constants.PaymentStatePaid).Error; err != nil {
		t.Fatalf("mark order paid failed: %v", err)
	}
	visible, err := orderSvc.IssueGiftCardsForOrder(paidOrder.ID)
	if err != nil || len(visible) != 1 {
		t.Fatalf("issue visible card failed: %v (%d)", err, len(visible))
	}
	if err := db.Model(&models.GiftCard{}).Where("id = ?", visible[0].ID).
		Update("user_id", userID).Error; err != nil {
		t.Fatalf("bind visible card failed: %v", err)
	}

	// 欠款订单签发的卡要隐藏
	dueOrder := createTestOrder(t, orderSvc, userID, variant.ID, 1)
	if _, err := orderSvc.CompleteOrder(dueOrder.OrderNo); err != nil {
		t.Fatalf("complete due order failed: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", dueOrder.ID).
		Update("payment_state", constants.PaymentStateBalanceDue).Error; err != nil {
		t.Fatalf("mark order balance_due failed: %v", err)
	}
	hidden, err := orderSvc.IssueGiftCardsForOrder(dueOrder.ID)
	if err != nil || len(hidden) != 1 {
		t.Fatalf("issue hidden card failed: %v (%d)", err, len(hidden))
	}
	if err := db.Model(&models.GiftCard{}).Where("id = ?", hidden[0].ID).
		Update("user_id", userID).Error; err != nil {
		t.Fatalf("bind hidden card failed: %v", err)
	}

	cards, err := svc.ListUserGiftCards(userID, false)
	if err != nil {
		t.Fatalf("list user cards failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 visible card, got: %d", len(cards))
	}
	if cards[0].ID != visible[0].ID {
		t.Fatalf("expected visible card %d, got: %d", visible[0].ID, cards[0].ID)
	}
}
