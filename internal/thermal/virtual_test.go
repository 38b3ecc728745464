package thermal

import (
	"errors"
	"testing"

	"github.com/lakeside-soc/thermald/internal/severity"
)

func readerFromMap(values map[string]float64) ReadFunc {
	return func(name string) (float64, error) {
		v, ok := values[name]
		if !ok {
			return 0, errors.New("no such sensor")
		}
		return v, nil
	}
}

func TestCombineVirtual_WeightedAverage(t *testing.T) {
	info := &VirtualInfo{
		LinkedSensors: []string{"a", "b"},
		Coefficients:  []float64{0.5, 0.5},
		Formula:       severity.FormulaWeightedAvg,
	}
	read := readerFromMap(map[string]float64{"a": 40, "b": 60})
	got := CombineVirtual(info, read)
	if got != 50 {
		t.Errorf("got %v, want 50", got)
	}
}

func TestCombineVirtual_Maximum(t *testing.T) {
	info := &VirtualInfo{
		LinkedSensors: []string{"a", "b"},
		Coefficients:  []float64{1, 1},
		Formula:       severity.FormulaMaximum,
	}
	read := readerFromMap(map[string]float64{"a": 40, "b": 60})
	got := CombineVirtual(info, read)
	if got != 60 {
		t.Errorf("got %v, want 60", got)
	}
}

func TestCombineVirtual_Minimum(t *testing.T) {
	info := &VirtualInfo{
		LinkedSensors: []string{"a", "b"},
		Coefficients:  []float64{1, 1},
		Formula:       severity.FormulaMinimum,
	}
	read := readerFromMap(map[string]float64{"a": 40, "b": 60})
	got := CombineVirtual(info, read)
	if got != 40 {
		t.Errorf("got %v, want 40", got)
	}
}

func TestCombineVirtual_CountThreshold(t *testing.T) {
	info := &VirtualInfo{
		LinkedSensors: []string{"a", "b", "c"},
		Coefficients:  []float64{50, 50, -50},
		Formula:       severity.FormulaCountThreshold,
	}
	// a=60 >= 50 counts; b=40 >= 50 doesn't; c=-60 < 50 (-coeff) counts.
	read := readerFromMap(map[string]float64{"a": 60, "b": 40, "c": -60})
	got := CombineVirtual(info, read)
	if got != 2 {
		t.Errorf("got %v, want 2", got)
	}
}

func TestCombineVirtual_SkipsNanSensorsAndFailedReads(t *testing.T) {
	info := &VirtualInfo{
		LinkedSensors: []string{"NAN", "", "a", "missing"},
		Coefficients:  []float64{1, 1, 1, 1},
		Formula:       severity.FormulaWeightedAvg,
	}
	read := readerFromMap(map[string]float64{"a": 10})
	got := CombineVirtual(info, read)
	if got != 10 {
		t.Errorf("got %v, want 10 (others skipped)", got)
	}
}
