//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/giftledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.GiftCardTransfer{},
		&models.GiftCard{},
		&models.Adjustment{},
		&models.LineItem{},
		&models.Order{},
		&models.Variant{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Variant{},
		&models.Order{},
		&models.LineItem{},
		&models.Adjustment{},
		&models.GiftCard{},
		&models.GiftCardTransfer{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresGiftCardListFilters(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewGiftCardRepository(db)

	now := time.Now().UTC().Truncate(time.Second)
	expired := now.Add(-24 * time.Hour)
	cards := []models.GiftCard{
		{
			Code:          "GC-PG-ACTIVE",
			Name:          "活跃卡",
			Email:         "pg_active@example.com",
			OriginalValue: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			CurrentValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			Code:           "GC-PG-EXPIRED",
			Name:           "过期卡",
			Email:          "pg_expired@example.com",
			OriginalValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			CurrentValue:   models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			ExpirationDate: &expired,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			Code:          "GC-PG-REDEEMED",
			Name:          "用尽卡",
			Email:         "pg_redeemed@example.com",
			OriginalValue: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			CurrentValue:  models.NewMoneyFromDecimal(decimal.Zero),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
	for i := range cards {
		if err := db.Create(&cards[i]).Error; err != nil {
			t.Fatalf("create card %s failed: %v", cards[i].Code, err)
		}
	}

	// ILIKE 大小写不敏感匹配
	got, total, err := repo.List(GiftCardListFilter{Code: "gc-pg-active", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by code failed: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].Code != "GC-PG-ACTIVE" {
		t.Fatalf("code filter want GC-PG-ACTIVE got total=%d rows=%d", total, len(got))
	}

	got, total, err = repo.List(GiftCardListFilter{Status: "expired", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list expired failed: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].Code != "GC-PG-EXPIRED" {
		t.Fatalf("expired filter want GC-PG-EXPIRED got total=%d rows=%d", total, len(got))
	}

	got, total, err = repo.List(GiftCardListFilter{Status: "redeemed", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list redeemed failed: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].Code != "GC-PG-REDEEMED" {
		t.Fatalf("redeemed filter want GC-PG-REDEEMED got total=%d rows=%d", total, len(got))
	}
}

func TestPostgresGiftCardCodeUnique(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	card := models.GiftCard{
		Code:          "GC-PG-UNIQUE",
		Name:          "唯一卡",
		Email:         "pg_unique@example.com",
		OriginalValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		CurrentValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	dup := card
	dup.ID = 0
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("duplicate code should be rejected by unique index")
	}
}
