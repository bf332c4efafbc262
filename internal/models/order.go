package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo         string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	UserID          uint           `gorm:"index;not null" json:"user_id"`                                // 用户ID
	Email           string         `gorm:"type:varchar(200);index" json:"email,omitempty"`               // 下单邮箱
	State           string         `gorm:"type:varchar(32);index;not null" json:"state"`                 // 订单状态
	PaymentState    string         `gorm:"type:varchar(32);index" json:"payment_state,omitempty"`        // 支付状态
	ItemTotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"item_total"`      // 商品合计
	AdjustmentTotal Money          `gorm:"type:decimal(20,2);not null;default:0" json:"adjustment_total"` // 调整项合计
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	CompletedAt     *time.Time     `gorm:"index" json:"completed_at"`                                    // 完成时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Items       []LineItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`       // 订单项
	Adjustments []Adjustment `gorm:"foreignKey:OrderID" json:"adjustments,omitempty"` // 调整项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
