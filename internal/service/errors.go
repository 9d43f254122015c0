package service

import (
	"errors"
	"fmt"

	"tradepilot/internal/dto"
)

var errNonFiniteValuation = errors.New("valuation contains a non-finite number")

func vehicleLabel(v dto.VehicleInfo) string {
	label := fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
	if v.Variant != "" {
		label += " " + v.Variant
	}
	return label
}
