package models

import "time"

// Review holds a single customer's score for a product model.
type Review struct {
	ProductModel string    `gorm:"column:product_model;primaryKey"`
	Username     string    `gorm:"column:username;primaryKey"`
	Score        int       `gorm:"column:score;not null"`
	Comment      string    `gorm:"column:comment;not null"`
	Date         time.Time `gorm:"column:date;type:date;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Review) TableName() string { return "reviews" }
