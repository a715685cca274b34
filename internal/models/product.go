package models

import (
	"time"
)

type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"not null"`
	PromoPrice  *float64  `json:"promoPrice,omitempty"`
	IsPromo     bool      `json:"isPromo"`
	IsFeatured  bool      `json:"isFeatured"`
	CategoryID  string    `json:"categoryId" gorm:"size:36;index"`
	Image       string    `json:"image"`
	Available   bool      `json:"available"`
	Variants    []Variant `json:"variants" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Variant is a selectable option such as a size. A nil Price keeps the product price.
type Variant struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
