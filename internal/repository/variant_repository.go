package repository

import (
	"errors"
	"strings"

	"github.com/giftledger/internal/models"

	"gorm.io/gorm"
)

// VariantRepository 商品规格数据访问接口
type VariantRepository interface {
	GetByID(id uint) (*models.Variant, error)
	GetBySKU(sku string) (*models.Variant, error)
	List(giftCardOnly bool, page, pageSize int) ([]models.Variant, int64, error)
	Create(variant *models.Variant) error
	Update(variant *models.Variant) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormVariantRepository
}

// GormVariantRepository GORM 实现
type GormVariantRepository struct {
	db *gorm.DB
}

// NewVariantRepository 创建商品规格仓库
func NewVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVariantRepository) WithTx(tx *gorm.DB) *GormVariantRepository {
	if tx == nil {
		return r
	}
	return &GormVariantRepository{db: tx}
}

// GetByID 根据 ID 查询商品规格
func (r *GormVariantRepository) GetByID(id uint) (*models.Variant, error) {
	if id == 0 {
		return nil, nil
	}
	var variant models.Variant
	if err := r.db.First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// GetBySKU 根据规格编码查询商品规格
func (r *GormVariantRepository) GetBySKU(sku string) (*models.Variant, error) {
	sku = strings.TrimSpace(strings.ToUpper(sku))
	if sku == "" {
		return nil, nil
	}
	var variant models.Variant
	if err := r.db.Where("sku = ?", sku).First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// List 分页查询商品规格
func (r *GormVariantRepository) List(giftCardOnly bool, page, pageSize int) ([]models.Variant, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := r.db.Model(&models.Variant{})
	if giftCardOnly {
		query = query.Where("is_gift_card = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var variants []models.Variant
	if err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&variants).Error; err != nil {
		return nil, 0, err
	}
	return variants, total, nil
}

// Create 创建商品规格
func (r *GormVariantRepository) Create(variant *models.Variant) error {
	return r.db.Create(variant).Error
}

// Update 更新商品规格
func (r *GormVariantRepository) Update(variant *models.Variant) error {
	return r.db.Save(variant).Error
}

// Delete 软删除商品规格
func (r *GormVariantRepository) Delete(id uint) error {
	return r.db.Delete(&models.Variant{}, id).Error
}
