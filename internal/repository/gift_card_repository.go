package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/giftledger/internal/constants"
	"github.com/giftledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiftCardListFilter 礼品卡列表筛选
type GiftCardListFilter struct {
	Code              string
	Email             string
	Status            string
	UserID            uint
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	ExpiresFrom       *time.Time
	ExpiresTo         *time.Time
	ExpiresWithinDays int
	SortBy            string
	SortDesc          bool
	Page              int
	PageSize          int
}

// giftCardSortColumns 列表排序字段白名单
var giftCardSortColumns = map[string]string{
	"code":            "code",
	"created_at":      "created_at",
	"expiration_date": "expiration_date",
	"current_value":   "current_value",
	"original_value":  "original_value",
}

// GiftCardRepository 礼品卡仓储接口
type GiftCardRepository interface {
	Create(card *models.GiftCard) error
	GetByID(id uint) (*models.GiftCard, error)
	GetByIDForUpdate(id uint) (*models.GiftCard, error)
	GetByCode(code string) (*models.GiftCard, error)
	GetByCodeForUpdate(code string) (*models.GiftCard, error)
	GetByLineItem(lineItemID uint) (*models.GiftCard, error)
	CodeTaken(code string) (bool, error)
	List(filter GiftCardListFilter) ([]models.GiftCard, int64, error)
	ListByUser(userID uint, usableOnly bool, now time.Time) ([]models.GiftCard, error)
	ListExpiringBefore(deadline time.Time, limit int) ([]models.GiftCard, error)
	CreateTransfer(transfer *models.GiftCardTransfer) error
	GetTransferByID(id uint) (*models.GiftCardTransfer, error)
	ListTransfers(cardID uint) ([]models.GiftCardTransfer, error)
	Update(card *models.GiftCard) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormGiftCardRepository
}

// GormGiftCardRepository GORM 礼品卡仓储实现
type GormGiftCardRepository struct {
	db *gorm.DB
}

// NewGiftCardRepository 创建礼品卡仓储
func NewGiftCardRepository(db *gorm.DB) *GormGiftCardRepository {
	return &GormGiftCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftCardRepository) WithTx(tx *gorm.DB) *GormGiftCardRepository {
	if tx == nil {
		return r
	}
	return &GormGiftCardRepository{db: tx}
}

// Create 创建礼品卡
func (r *GormGiftCardRepository) Create(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Create(card).Error
}

// GetByID 根据 ID 查询礼品卡
func (r *GormGiftCardRepository) GetByID(id uint) (*models.GiftCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Preload("User").Preload("Variant").First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByIDForUpdate 根据 ID 加锁查询礼品卡
func (r *GormGiftCardRepository) GetByIDForUpdate(id uint) (*models.GiftCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByCode 根据卡号查询礼品卡
func (r *GormGiftCardRepository) GetByCode(code string) (*models.GiftCard, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Where("code = ?", code).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByCodeForUpdate 根据卡号加锁查询礼品卡
func (r *GormGiftCardRepository) GetByCodeForUpdate(code string) (*models.GiftCard, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByLineItem 根据来源订单项查询礼品卡
func (r *GormGiftCardRepository) GetByLineItem(lineItemID uint) (*models.GiftCard, error) {
	if lineItemID == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Where("line_item_id = ?", lineItemID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// CodeTaken 检查卡号是否已被占用，软删除的卡号同样占用
func (r *GormGiftCardRepository) CodeTaken(code string) (bool, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return false, nil
	}
	var count int64
	if err := r.db.Unscoped().Model(&models.GiftCard{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List 查询礼品卡列表
func (r *GormGiftCardRepository) List(filter GiftCardListFilter) ([]models.GiftCard, int64, error) {
	now := time.Now()
	query := r.db.Model(&models.GiftCard{}).Preload("User")
	likeOp := likeOperator(r.db)
	if code := strings.TrimSpace(strings.ToUpper(filter.Code)); code != "" {
		query = query.Where(fmt.Sprintf("code %s ?", likeOp), "%"+code+"%")
	}
	if email := strings.TrimSpace(strings.ToLower(filter.Email)); email != "" {
		query = query.Where(fmt.Sprintf("email %s ?", likeOp), "%"+email+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		switch status {
		case constants.GiftCardStatusRedeemed:
			query = query.Where("current_value <= 0")
		case constants.GiftCardStatusExpired:
			query = query.Where("current_value > 0 AND expiration_date IS NOT NULL AND expiration_date < ?", now)
		case constants.GiftCardStatusActive:
			query = query.Where("current_value > 0 AND (expiration_date IS NULL OR expiration_date >= ?)", now)
		}
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.ExpiresFrom != nil {
		query = query.Where("expiration_date >= ?", *filter.ExpiresFrom)
	}
	if filter.ExpiresTo != nil {
		query = query.Where("expiration_date <= ?", *filter.ExpiresTo)
	}
	if filter.ExpiresWithinDays > 0 {
		deadline := now.AddDate(0, 0, filter.ExpiresWithinDays)
		query = query.Where("expiration_date IS NOT NULL AND expiration_date >= ? AND expiration_date <= ?", now, deadline)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var cards []models.GiftCard
	if err := query.Order(giftCardOrderExpr(filter)).Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// giftCardOrderExpr 构建排序表达式，非法字段回退按 ID 倒序
func giftCardOrderExpr(filter GiftCardListFilter) string {
	column, ok := giftCardSortColumns[strings.TrimSpace(filter.SortBy)]
	if !ok {
		return "id desc"
	}
	direction := "asc"
	if filter.SortDesc {
		direction = "desc"
	}
	return fmt.Sprintf("%s %s, id desc", column, direction)
}

// ListByUser 查询用户名下的礼品卡。
// 购卡订单尚未付清（balance_due）的卡不返回，usableOnly 再过滤掉已用尽与已过期的卡。
func (r *GormGiftCardRepository) ListByUser(userID uint, usableOnly bool, now time.Time) ([]models.GiftCard, error) {
	if userID == 0 {
		return []models.GiftCard{}, nil
	}
	query := r.db.Model(&models.GiftCard{}).
		Joins("LEFT JOIN line_items ON line_items.id = gift_cards.line_item_id").
		Joins("LEFT JOIN orders ON orders.id = line_items.order_id").
		Where("gift_cards.user_id = ?", userID).
		Where("gift_cards.line_item_id IS NULL OR orders.payment_state IS NULL OR orders.payment_state <> ?", constants.PaymentStateBalanceDue)
	if usableOnly {
		query = query.
			Where("gift_cards.current_value > 0").
			Where("gift_cards.expiration_date IS NULL OR gift_cards.expiration_date >= ?", now)
	}
	var cards []models.GiftCard
	if err := query.Order("gift_cards.id desc").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// ListExpiringBefore 查询在指定时间前到期且仍有余额的礼品卡
func (r *GormGiftCardRepository) ListExpiringBefore(deadline time.Time, limit int) ([]models.GiftCard, error) {
	query := r.db.Model(&models.GiftCard{}).
		Where("current_value > 0 AND expiration_date IS NOT NULL AND expiration_date < ?", deadline).
		Order("expiration_date asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var cards []models.GiftCard
	if err := query.Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// CreateTransfer 创建转赠记录
func (r *GormGiftCardRepository) CreateTransfer(transfer *models.GiftCardTransfer) error {
	if transfer == nil {
		return errors.New("invalid gift card transfer")
	}
	return r.db.Create(transfer).Error
}

// GetTransferByID 查询转赠记录
func (r *GormGiftCardRepository) GetTransferByID(id uint) (*models.GiftCardTransfer, error) {
	if id == 0 {
		return nil, nil
	}
	var transfer models.GiftCardTransfer
	err := r.db.Preload("Source").Preload("Destination").First(&transfer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// ListTransfers 查询礼品卡的转出记录
func (r *GormGiftCardRepository) ListTransfers(cardID uint) ([]models.GiftCardTransfer, error) {
	if cardID == 0 {
		return []models.GiftCardTransfer{}, nil
	}
	var transfers []models.GiftCardTransfer
	if err := r.db.Preload("Destination").
		Where("source_id = ?", cardID).
		Order("id desc").
		Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Update 更新礼品卡
func (r *GormGiftCardRepository) Update(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Save(card).Error
}

// Delete 软删除礼品卡
func (r *GormGiftCardRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.GiftCard{}, id).Error
}
