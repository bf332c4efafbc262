package repository

import (
	"errors"
	"strings"

	"github.com/giftledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.LineItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByOrderNoForUpdate(orderNo string) (*models.Order, error)
	GetAdjustmentBySource(orderID uint, sourceType string, sourceID uint) (*models.Adjustment, error)
	ListAdjustments(orderID uint) ([]models.Adjustment, error)
	ListAdjustmentsBySource(sourceType string, sourceID uint) ([]models.Adjustment, error)
	CreateAdjustment(adjustment *models.Adjustment) error
	UpdateAdjustment(adjustment *models.Adjustment) error
	DeleteAdjustment(id uint) error
	Update(order *models.Order) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.LineItem) error {
	if order == nil {
		return errors.New("invalid order")
	}
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 查询订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Preload("Items.Variant").Preload("Adjustments").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 根据 ID 加锁查询订单
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单号查询订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Preload("Items.Variant").Preload("Adjustments").
		Where("order_no = ?", orderNo).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNoForUpdate 根据订单号加锁查询订单
func (r *GormOrderRepository) GetByOrderNoForUpdate(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_no = ?", orderNo).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetAdjustmentBySource 查询订单上指定来源的调整项
func (r *GormOrderRepository) GetAdjustmentBySource(orderID uint, sourceType string, sourceID uint) (*models.Adjustment, error) {
	if orderID == 0 || sourceID == 0 {
		return nil, nil
	}
	var adjustment models.Adjustment
	if err := r.db.Where("order_id = ? AND source_type = ? AND source_id = ?", orderID, sourceType, sourceID).
		First(&adjustment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &adjustment, nil
}

// ListAdjustments 查询订单的全部调整项
func (r *GormOrderRepository) ListAdjustments(orderID uint) ([]models.Adjustment, error) {
	if orderID == 0 {
		return []models.Adjustment{}, nil
	}
	var adjustments []models.Adjustment
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// ListAdjustmentsBySource 查询指定来源在所有订单上的调整项
func (r *GormOrderRepository) ListAdjustmentsBySource(sourceType string, sourceID uint) ([]models.Adjustment, error) {
	if sourceID == 0 {
		return []models.Adjustment{}, nil
	}
	var adjustments []models.Adjustment
	if err := r.db.Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("id asc").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// CreateAdjustment 创建调整项
func (r *GormOrderRepository) CreateAdjustment(adjustment *models.Adjustment) error {
	if adjustment == nil {
		return errors.New("invalid adjustment")
	}
	return r.db.Create(adjustment).Error
}

// UpdateAdjustment 更新调整项
func (r *GormOrderRepository) UpdateAdjustment(adjustment *models.Adjustment) error {
	if adjustment == nil {
		return errors.New("invalid adjustment")
	}
	return r.db.Save(adjustment).Error
}

// DeleteAdjustment 删除调整项
func (r *GormOrderRepository) DeleteAdjustment(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Adjustment{}, id).Error
}

// Update 更新订单
func (r *GormOrderRepository) Update(order *models.Order) error {
	if order == nil {
		return errors.New("invalid order")
	}
	return r.db.Save(order).Error
}
