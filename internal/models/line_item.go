package models

import (
	"time"
)

// LineItem 订单项
type LineItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                               // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                     // 订单ID
	VariantID uint      `gorm:"index;not null" json:"variant_id"`                   // 商品规格ID
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`                 // 数量
	Price     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 下单时单价
	CreatedAt time.Time `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                            // 更新时间
	Variant   *Variant  `gorm:"foreignKey:VariantID" json:"variant,omitempty"`      // 商品规格
}

// TableName 指定表名
func (LineItem) TableName() string {
	return "line_items"
}
