package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giftledger/internal/calculator"
	"github.com/giftledger/internal/config"
	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/http/response"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/provider"
	"github.com/giftledger/internal/repository"
	"github.com/giftledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type publicGiftCardFixture struct {
	OwnerID  uint
	OtherID  uint
	CardID   uint
	CardCode string
	OrderNo  string
	OrderID  uint
}

func setupPublicGiftCardHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_gift_card_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	giftSvc := service.NewGiftCardService(cardRepo, orderRepo, userRepo, variantRepo, calculator.NewRegistry(), nil, cfg)
	orderSvc := service.NewOrderService(orderRepo, variantRepo, giftSvc, nil)

	h := &Handler{Container: &provider.Container{
		GiftCardRepo:    cardRepo,
		OrderRepo:       orderRepo,
		UserRepo:        userRepo,
		GiftCardService: giftSvc,
		OrderService:    orderSvc,
		CaptchaService:  service.NewCaptchaService(config.CaptchaConfig{}),
	}}
	return h, db
}

func seedPublicGiftCardData(t *testing.T, db *gorm.DB) publicGiftCardFixture {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)

	owner := models.User{
		Email:        "public_gift_card_owner@example.com",
		PasswordHash: "hash",
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	other := models.User{
		Email:        "public_gift_card_other@example.com",
		PasswordHash: "hash",
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("create owner failed: %v", err)
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create other failed: %v", err)
	}

	card := models.GiftCard{
		Code:           "GC-PUBLICTEST-0001",
		Name:           "持卡人",
		Email:          owner.Email,
		OriginalValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
		CurrentValue:   models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
		CalculatorType: constants.CalculatorTypeFullBalance,
		UserID:         &owner.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	order := models.Order{
		OrderNo:     "GL-PUBLICTEST-0001",
		UserID:      owner.ID,
		Email:       owner.Email,
		State:       constants.OrderStatePayment,
		ItemTotal:   models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	return publicGiftCardFixture{
		OwnerID:  owner.ID,
		OtherID:  other.ID,
		CardID:   card.ID,
		CardCode: card.Code,
		OrderNo:  order.OrderNo,
		OrderID:  order.ID,
	}
}

func TestApplyGiftCardToOrderCreatesAdjustment(t *testing.T) {
	h, db := setupPublicGiftCardHandlerTest(t)
	fixture := seedPublicGiftCardData(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := fmt.Sprintf(`{"code":%q}`, fixture.CardCode)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/"+fixture.OrderNo+"/gift-cards", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "order_no", Value: fixture.OrderNo}}
	c.Set("user_id", fixture.OwnerID)

	h.ApplyGiftCardToOrder(c)

	if code := decodeBusinessCode(t, w); code != response.CodeOK {
		t.Fatalf("status_code want %d got %d", response.CodeOK, code)
	}

	var adjustment models.Adjustment
	err := db.Where("order_id = ? AND source_type = ? AND source_id = ?",
		fixture.OrderID, constants.AdjustmentSourceGiftCard, fixture.CardID).
		First(&adjustment).Error
	if err != nil {
		t.Fatalf("load adjustment failed: %v", err)
	}
	if !adjustment.Amount.Decimal.Equal(decimal.NewFromInt(-45)) {
		t.Fatalf("adjustment amount want -45 got %s", adjustment.Amount.Decimal)
	}

	var order models.Order
	if err := db.First(&order, fixture.OrderID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if !order.TotalAmount.Decimal.IsZero() {
		t.Fatalf("order total after apply want 0 got %s", order.TotalAmount.Decimal)
	}

	// 卡余额在订单完成结算前保持不变
	var card models.GiftCard
	if err := db.First(&card, fixture.CardID).Error; err != nil {
		t.Fatalf("load card failed: %v", err)
	}
	if !card.CurrentValue.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("card balance want 60 got %s", card.CurrentValue.Decimal)
	}
}

func TestApplyGiftCardToOtherUsersOrder(t *testing.T) {
	h, db := setupPublicGiftCardHandlerTest(t)
	fixture := seedPublicGiftCardData(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := fmt.Sprintf(`{"code":%q}`, fixture.CardCode)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/"+fixture.OrderNo+"/gift-cards", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "order_no", Value: fixture.OrderNo}}
	c.Set("user_id", fixture.OtherID)

	h.ApplyGiftCardToOrder(c)

	if code := decodeBusinessCode(t, w); code != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, code)
	}
}

func TestTransferMyGiftCardSplitsBalance(t *testing.T) {
	h, db := setupPublicGiftCardHandlerTest(t)
	fixture := seedPublicGiftCardData(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"amount":"25","recipient_name":"收礼人","recipient_email":"public_gift_card_other@example.com","note":"送你"}`
	c.Request = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/me/gift-cards/%d/transfer", fixture.CardID), strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", fixture.CardID)}}
	c.Set("user_id", fixture.OwnerID)

	h.TransferMyGiftCard(c)

	if code := decodeBusinessCode(t, w); code != response.CodeOK {
		t.Fatalf("status_code want %d got %d", response.CodeOK, code)
	}

	var source models.GiftCard
	if err := db.First(&source, fixture.CardID).Error; err != nil {
		t.Fatalf("load source failed: %v", err)
	}
	if !source.CurrentValue.Decimal.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("source balance want 35 got %s", source.CurrentValue.Decimal)
	}

	var destination models.GiftCard
	err := db.Where("email = ?", "public_gift_card_other@example.com").First(&destination).Error
	if err != nil {
		t.Fatalf("load destination failed: %v", err)
	}
	if !destination.CurrentValue.Decimal.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("destination balance want 25 got %s", destination.CurrentValue.Decimal)
	}
	if destination.UserID == nil || *destination.UserID != fixture.OtherID {
		t.Fatalf("destination should bind to registered recipient %d, got %v", fixture.OtherID, destination.UserID)
	}

	var transfer models.GiftCardTransfer
	if err := db.Where("source_id = ?", fixture.CardID).First(&transfer).Error; err != nil {
		t.Fatalf("load transfer failed: %v", err)
	}
	if transfer.DestinationID != destination.ID {
		t.Fatalf("transfer destination want %d got %d", destination.ID, transfer.DestinationID)
	}
}

func TestTransferGiftCardNotOwned(t *testing.T) {
	h, db := setupPublicGiftCardHandlerTest(t)
	fixture := seedPublicGiftCardData(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"amount":"10","recipient_name":"收礼人","recipient_email":"x@example.com"}`
	c.Request = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/me/gift-cards/%d/transfer", fixture.CardID), strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", fixture.CardID)}}
	c.Set("user_id", fixture.OtherID)

	h.TransferMyGiftCard(c)

	if code := decodeBusinessCode(t, w); code != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, code)
	}
}

func TestGetMyGiftCardsAnnotatesOrderActivatable(t *testing.T) {
	h, db := setupPublicGiftCardHandlerTest(t)
	fixture := seedPublicGiftCardData(t, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/me/gift-cards?order_no="+fixture.OrderNo, nil)
	c.Set("user_id", fixture.OwnerID)

	h.GetMyGiftCards(c)

	if code := decodeBusinessCode(t, w); code != response.CodeOK {
		t.Fatalf("status_code want %d got %d", response.CodeOK, code)
	}

	var resp struct {
		Data struct {
			GiftCards []struct {
				ID          uint   `json:"id"`
				Status      string `json:"status"`
				Activatable *bool  `json:"activatable"`
			} `json:"gift_cards"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if len(resp.Data.GiftCards) != 1 {
		t.Fatalf("gift_cards len want 1 got %d", len(resp.Data.GiftCards))
	}
	card := resp.Data.GiftCards[0]
	if card.ID != fixture.CardID {
		t.Fatalf("card id want %d got %d", fixture.CardID, card.ID)
	}
	if card.Activatable == nil || !*card.Activatable {
		t.Fatalf("card should be activatable for own pending order, got %v", card.Activatable)
	}

	// 他人订单不可见
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/me/gift-cards?order_no="+fixture.OrderNo, nil)
	c.Set("user_id", fixture.OtherID)

	h.GetMyGiftCards(c)

	if code := decodeBusinessCode(t, w); code != response.CodeNotFound {
		t.Fatalf("status_code want %d got %d", response.CodeNotFound, code)
	}
}

func decodeBusinessCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}
