package main

import (
	"fmt"
	"time"

	"github.com/giftledger/internal/config"
	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/logger"
	"github.com/giftledger/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()

	// 礼品卡规格
	variants := []models.Variant{
		{SKU: "GIFT-CARD-50", Name: "礼品卡 ¥50", Price: money("50"), IsGiftCard: true},
		{SKU: "GIFT-CARD-100", Name: "礼品卡 ¥100", Price: money("100"), IsGiftCard: true},
		{SKU: "GIFT-CARD-200", Name: "礼品卡 ¥200", Price: money("200"), IsGiftCard: true},
		{SKU: "MUG-CLASSIC", Name: "经典马克杯", Price: money("39.9"), IsGiftCard: false},
	}
	for i := range variants {
		variant := &variants[i]
		var exist models.Variant
		if err := models.DB.Where("sku = ?", variant.SKU).First(&exist).Error; err == nil {
			variants[i] = exist
			continue
		}
		variant.CreatedAt = now
		variant.UpdatedAt = now
		if err := models.DB.Create(variant).Error; err != nil {
			stdLog.Fatalf("Failed to seed variant %s: %v", variant.SKU, err)
		}
		fmt.Printf("seeded variant %s\n", variant.SKU)
	}

	// 演示用户
	users := []models.User{
		{Email: "alice@example.com", DisplayName: "Alice"},
		{Email: "bob@example.com", DisplayName: "Bob"},
	}
	for i := range users {
		user := &users[i]
		var exist models.User
		if err := models.DB.Where("email = ?", user.Email).First(&exist).Error; err == nil {
			users[i] = exist
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		user.PasswordHash = string(hashed)
		user.Status = constants.UserStatusActive
		user.CreatedAt = now
		user.UpdatedAt = now
		if err := models.DB.Create(user).Error; err != nil {
			stdLog.Fatalf("Failed to seed user %s: %v", user.Email, err)
		}
		fmt.Printf("seeded user %s\n", user.Email)
	}

	// 演示礼品卡
	expiration := now.AddDate(0, 0, constants.GiftCardDefaultExpirationDays)
	cards := []models.GiftCard{
		{
			Code:           "GC-DEMO-ALICE-100",
			Name:           users[0].DisplayName,
			Email:          users[0].Email,
			Note:           "演示数据",
			OriginalValue:  money("100"),
			CurrentValue:   money("100"),
			CalculatorType: constants.CalculatorTypeFullBalance,
			UserID:         &users[0].ID,
			VariantID:      &variants[1].ID,
			ExpirationDate: &expiration,
		},
		{
			Code:           "GC-DEMO-BOB-50",
			Name:           users[1].DisplayName,
			Email:          users[1].Email,
			Note:           "演示数据",
			OriginalValue:  money("50"),
			CurrentValue:   money("32.5"),
			CalculatorType: constants.CalculatorTypeFullBalance,
			UserID:         &users[1].ID,
			VariantID:      &variants[0].ID,
			ExpirationDate: &expiration,
		},
	}
	for i := range cards {
		card := &cards[i]
		var exist models.GiftCard
		if err := models.DB.Where("code = ?", card.Code).First(&exist).Error; err == nil {
			continue
		}
		card.CreatedAt = now
		card.UpdatedAt = now
		if err := models.DB.Create(card).Error; err != nil {
			stdLog.Fatalf("Failed to seed gift card %s: %v", card.Code, err)
		}
		fmt.Printf("seeded gift card %s\n", card.Code)
	}

	// 演示订单（待支付，可用于体验礼品卡抵扣）
	orderNo := "GL-DEMO-0001"
	var existOrder models.Order
	if err := models.DB.Where("order_no = ?", orderNo).First(&existOrder).Error; err != nil {
		order := models.Order{
			OrderNo:     orderNo,
			UserID:      users[0].ID,
			Email:       users[0].Email,
			State:       constants.OrderStatePayment,
			ItemTotal:   money("39.9"),
			TotalAmount: money("39.9"),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := models.DB.Create(&order).Error; err != nil {
			stdLog.Fatalf("Failed to seed order: %v", err)
		}
		item := models.LineItem{
			OrderID:   order.ID,
			VariantID: variants[3].ID,
			Quantity:  1,
			Price:     money("39.9"),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := models.DB.Create(&item).Error; err != nil {
			stdLog.Fatalf("Failed to seed line item: %v", err)
		}
		fmt.Printf("seeded order %s\n", orderNo)
	}

	fmt.Println("seed done")
}

func money(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}
