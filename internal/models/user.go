package models

import (
	"time"
)

type AppUser struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"size:16;not null"`
	DelivererID  *string   `json:"delivererId,omitempty" gorm:"size:36"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeliverer Role = "deliverer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDeliverer
}

// AppCounter is a named sequence, used for human readable order numbers.
type AppCounter struct {
	Name  string `json:"name" gorm:"primaryKey;size:64"`
	Value int    `json:"value" gorm:"not null"`
}

const OrderCounter = "order_number"
