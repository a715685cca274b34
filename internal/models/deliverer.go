package models

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"pizzatrack/internal/geo"
)

type Deliverer struct {
	ID              string      `json:"id" gorm:"primaryKey;size:36"`
	Name            string      `json:"name" gorm:"not null"`
	Phone           string      `json:"phone"`
	Email           string      `json:"email,omitempty"`
	Document        string      `json:"document,omitempty"`
	Vehicle         string      `json:"vehicle"`
	VehiclePlate    string      `json:"vehiclePlate,omitempty"`
	VehicleModel    string      `json:"vehicleModel,omitempty"`
	VehicleColor    string      `json:"vehicleColor,omitempty"`
	Available       bool        `json:"available"`
	CurrentLocation *geo.Coords `json:"currentLocation,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (d *Deliverer) AfterFind(tx *gorm.DB) error {
	if d.CurrentLocation != nil && !d.CurrentLocation.Valid() {
		slog.Warn("ignoring unreadable deliverer location", "deliverer_id", d.ID)
		d.CurrentLocation = nil
	}
	return nil
}
