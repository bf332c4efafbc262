package models

import (
	"time"

	"gorm.io/gorm"
)

// GiftCard 礼品卡
type GiftCard struct {
	ID             uint               `gorm:"primarykey" json:"id"`                                        // 主键
	Code           string             `gorm:"type:varchar(80);uniqueIndex;not null" json:"code"`           // 卡号
	Name           string             `gorm:"type:varchar(120);not null" json:"name"`                      // 收卡人姓名
	Email          string             `gorm:"type:varchar(200);index;not null" json:"email"`               // 收卡人邮箱
	Note           string             `gorm:"type:varchar(500)" json:"note,omitempty"`                     // 赠言
	OriginalValue  Money              `gorm:"type:decimal(20,2);not null;default:0" json:"original_value"` // 原始面值
	CurrentValue   Money              `gorm:"type:decimal(20,2);not null;default:0" json:"current_value"`  // 剩余余额
	CalculatorType string             `gorm:"type:varchar(40);not null;default:'full_balance'" json:"-"`   // 抵扣金额计算器类型
	UserID         *uint              `gorm:"index" json:"user_id,omitempty"`                              // 持卡用户ID
	VariantID      *uint              `gorm:"index" json:"variant_id,omitempty"`                           // 来源商品规格ID
	LineItemID     *uint              `gorm:"index" json:"line_item_id,omitempty"`                         // 来源订单项ID
	ExpirationDate *time.Time         `gorm:"index" json:"expiration_date"`                                // 过期时间
	CreatedAt      time.Time          `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt      time.Time          `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`                                              // 软删除时间
	User           *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`                     // 持卡用户
	Variant        *Variant           `gorm:"foreignKey:VariantID" json:"variant,omitempty"`               // 来源商品规格
	Transfers      []GiftCardTransfer `gorm:"foreignKey:SourceID" json:"transfers,omitempty"`              // 转出记录
}

// TableName 指定表名
func (GiftCard) TableName() string {
	return "gift_cards"
}
