package models

import (
	"time"
)

// GiftCardTransfer 礼品卡转赠记录
type GiftCardTransfer struct {
	ID            uint      `gorm:"primarykey" json:"id"`                          // 主键
	SourceID      uint      `gorm:"index;not null" json:"source_id"`               // 转出礼品卡ID
	DestinationID uint      `gorm:"index;not null" json:"destination_id"`          // 新礼品卡ID
	Amount        Money     `gorm:"type:decimal(20,2);not null" json:"amount"`     // 转赠金额
	Note          string    `gorm:"type:varchar(500)" json:"note,omitempty"`       // 转赠留言
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                       // 创建时间
	Source        *GiftCard `gorm:"foreignKey:SourceID" json:"source,omitempty"`   // 转出礼品卡
	Destination   *GiftCard `gorm:"foreignKey:DestinationID" json:"destination,omitempty"` // 新礼品卡
}

// TableName 指定表名
func (GiftCardTransfer) TableName() string {
	return "gift_card_transfers"
}
