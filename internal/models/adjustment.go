package models

import (
	"time"
)

// Adjustment 订单金额调整项，负数金额表示抵扣
type Adjustment struct {
	ID         uint      `gorm:"primarykey" json:"id"`                      // 主键
	OrderID    uint      `gorm:"index;not null" json:"order_id"`            // 订单ID
	SourceType string    `gorm:"type:varchar(40);index;not null" json:"source_type"` // 来源类型
	SourceID   uint      `gorm:"index;not null" json:"source_id"`           // 来源ID
	Amount     Money     `gorm:"type:decimal(20,2);not null" json:"amount"` // 调整金额
	Label      string    `gorm:"type:varchar(200)" json:"label"`            // 展示文案
	Mandatory  bool      `gorm:"not null;default:false" json:"mandatory"`   // 是否强制保留
	Captured   bool      `gorm:"not null;default:false" json:"captured"`    // 是否已从来源扣款
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`                   // 更新时间
}

// TableName 指定表名
func (Adjustment) TableName() string {
	return "adjustments"
}
