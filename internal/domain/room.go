package domain

import "time"

type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomBooked    RoomStatus = "booked"
)

type Room struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:120;not null" json:"name"`
	Description      string     `gorm:"type:text" json:"description"`
	PricePerNight    int64      `gorm:"not null" json:"price_per_night"`
	CapacityAdults   int        `gorm:"not null" json:"capacity_adults"`
	CapacityChildren int        `gorm:"not null;default:0" json:"capacity_children"`
	Status           RoomStatus `gorm:"size:20;not null;default:'available'" json:"status"`
	Active           bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }
