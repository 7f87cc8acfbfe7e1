package model

import (
	"time"

	"gorm.io/datatypes"
)

// HistoryRecord is one finished valuation. Records are written once and never
// updated; later valuations read them to stabilize their own results.
type HistoryRecord struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	UniqueAdID     string         `gorm:"type:varchar(128);not null;index" json:"unique_ad_id"`
	Timestamp      time.Time      `gorm:"not null;index" json:"timestamp"`
	VIN            string         `gorm:"type:varchar(32)" json:"vin,omitempty"`
	Description    string         `gorm:"type:text" json:"description,omitempty"`
	PriceUSD       float64        `gorm:"not null;default:0" json:"price_usd"`
	Location       string         `gorm:"type:varchar(64)" json:"location,omitempty"`
	SellerType     string         `gorm:"type:varchar(16)" json:"seller_type,omitempty"`
	Brand          string         `gorm:"type:varchar(64)" json:"brand,omitempty"`
	VehicleModel   string         `gorm:"column:model;type:varchar(64)" json:"model,omitempty"`
	Year           int            `json:"year,omitempty"`
	Miles          float64        `json:"miles,omitempty"`
	TitleStatus    string         `gorm:"type:varchar(16)" json:"title_status,omitempty"`
	DealScore      float64        `gorm:"not null" json:"deal_score"`
	Classification string         `gorm:"type:varchar(32)" json:"classification,omitempty"`
	ROIExpected    float64        `gorm:"not null" json:"roi_expected"`
	ROIOptimistic  float64        `gorm:"not null" json:"roi_optimistic"`
	ROIPessimistic float64        `gorm:"not null" json:"roi_pessimistic"`
	ROIConfidence  float64        `gorm:"not null" json:"roi_confidence"`
	Components     datatypes.JSON `gorm:"type:jsonb" json:"components,omitempty"`
	Weights        datatypes.JSON `gorm:"type:jsonb" json:"weights,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (HistoryRecord) TableName() string {
	return "history_records"
}
