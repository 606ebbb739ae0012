package courses

import (
	"time"

	"gorm.io/datatypes"
)

type Video struct {
	Title        string `json:"title"`
	Duration     string `json:"duration"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type Chapter struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	PDFURL      string  `json:"pdf_url,omitempty"`
	Videos      []Video `json:"videos"`
}

type Course struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	Slug        string `gorm:"type:varchar(160);not null;uniqueIndex:ux_courses_slug"`
	Title       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	// Prices are minor units (paise, cents). DiscountPriceMinor is what gets charged.
	ActualPriceMinor   int64  `gorm:"not null"`
	DiscountPriceMinor int64  `gorm:"not null"`
	Currency           string `gorm:"type:char(3);not null"`

	Duration string `gorm:"type:varchar(32);not null"`
	Language string `gorm:"type:varchar(64);not null"`
	Category string `gorm:"type:varchar(64);not null;index:ix_courses_category"`

	IntroVideoURL     string `gorm:"type:varchar(512)"`
	IntroThumbnailURL string `gorm:"type:varchar(512)"`

	Chapters  datatypes.JSONSlice[Chapter] `gorm:"type:json;not null"`
	MediaKeys datatypes.JSONSlice[string]  `gorm:"type:json;not null"`

	CreatedAt time.Time `gorm:"precision:3;not null"`
	UpdatedAt time.Time `gorm:"precision:3;not null"`
}

func (Course) TableName() string { return "courses" }
