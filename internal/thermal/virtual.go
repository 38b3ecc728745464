package thermal

import (
	"math"

	"github.com/lakeside-soc/thermald/internal/severity"
)

// ReadFunc reads a linked sensor's value by name. The callers in this
// module return it already scaled by that sensor's own Multiplier.
type ReadFunc func(sensorName string) (float64, error)

// CombineVirtual computes a virtual sensor's value
// by reading each linked sensor and combining per the
// declared formula. A linked sensor of "NAN" or "" is skipped, as is
// one with a NaN coefficient.
func CombineVirtual(info *VirtualInfo, read ReadFunc) float64 {
	var acc float64
	switch info.Formula {
	case severity.FormulaMaximum:
		acc = math.Inf(-1)
	case severity.FormulaMinimum:
		acc = math.Inf(1)
	default:
		acc = 0
	}

	for i, linked := range info.LinkedSensors {
		if linked == "" || linked == "NAN" {
			continue
		}
		if i >= len(info.Coefficients) {
			continue
		}
		coeff := info.Coefficients[i]
		if math.IsNaN(coeff) {
			continue
		}
		reading, err := read(linked)
		if err != nil {
			continue
		}

		switch info.Formula {
		case severity.FormulaCountThreshold:
			if (coeff < 0 && reading < -coeff) || (coeff >= 0 && reading >= coeff) {
				acc++
			}
		case severity.FormulaWeightedAvg:
			acc += reading * coeff
		case severity.FormulaMaximum:
			if v := reading * coeff; v > acc {
				acc = v
			}
		case severity.FormulaMinimum:
			if v := reading * coeff; v < acc {
				acc = v
			}
		}
	}
	return acc
}
