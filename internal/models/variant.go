package models

import (
	"time"

	"gorm.io/gorm"
)

// Variant 商品规格
type Variant struct {
	ID         uint           `gorm:"primarykey" json:"id"`                            // 主键
	SKU        string         `gorm:"type:varchar(80);uniqueIndex;not null" json:"sku"` // 规格编码
	Name       string         `gorm:"type:varchar(200);not null" json:"name"`          // 规格名称
	Price      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	IsGiftCard bool           `gorm:"not null;default:false;index" json:"is_gift_card"` // 是否礼品卡商品
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (Variant) TableName() string {
	return "variants"
}
