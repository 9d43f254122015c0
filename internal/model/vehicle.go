package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Transmission string

const (
	TransmissionAutomatic Transmission = "AUTOMATIC"
	TransmissionManual    Transmission = "MANUAL"
	TransmissionCVT       Transmission = "CVT"
	TransmissionDCT       Transmission = "DCT"
	TransmissionOther     Transmission = "OTHER"
)

type FuelType string

const (
	FuelPetrol   FuelType = "PETROL"
	FuelDiesel   FuelType = "DIESEL"
	FuelHybrid   FuelType = "HYBRID"
	FuelElectric FuelType = "ELECTRIC"
	FuelLPG      FuelType = "LPG"
	FuelOther    FuelType = "OTHER"
)

type BodyType string

const (
	BodySedan       BodyType = "SEDAN"
	BodyHatchback   BodyType = "HATCHBACK"
	BodySUV         BodyType = "SUV"
	BodyWagon       BodyType = "WAGON"
	BodyUte         BodyType = "UTE"
	BodyCoupe       BodyType = "COUPE"
	BodyConvertible BodyType = "CONVERTIBLE"
	BodyVan         BodyType = "VAN"
	BodyOther       BodyType = "OTHER"
)

type Vehicle struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Year           int           `gorm:"not null" json:"year"`
	Make           string        `gorm:"type:varchar(100);not null" json:"make"`
	Model          string        `gorm:"type:varchar(100);not null" json:"model"`
	Variant        *string       `gorm:"type:varchar(100)" json:"variant,omitempty"`
	Odometer       *int          `json:"odometer,omitempty"`
	Transmission   *Transmission `gorm:"type:varchar(20)" json:"transmission,omitempty"`
	FuelType       *FuelType     `gorm:"type:varchar(20)" json:"fuel_type,omitempty"`
	BodyType       *BodyType     `gorm:"type:varchar(20)" json:"body_type,omitempty"`
	Colour         *string       `gorm:"type:varchar(50)" json:"colour,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// DisplayName renders "2020 Toyota Camry Ascent".
func (v *Vehicle) DisplayName() string {
	parts := []string{fmt.Sprintf("%d", v.Year), v.Make, v.Model}
	if v.Variant != nil && *v.Variant != "" {
		parts = append(parts, *v.Variant)
	}
	return strings.Join(parts, " ")
}
