package thermal

import "github.com/lakeside-soc/thermald/internal/logger"

// AllocatePower splits a sensor's power budget across its weighted
// cooling devices and maps each device's share to a discrete state via
// its power2state table. On success it writes
// status.PidRequestMap in place. If the sensor's total cdev weight is
// zero, the allocation is skipped and any existing PidRequestMap
// entries are left untouched (open question (a)).
func AllocatePower(sensorName string, info *SensorInfo, status *SensorStatus, cdevs map[string]*CdevInfo, budget float64) {
	ti := info.Throttling

	var totalWeight float64
	for _, w := range ti.CdevWeight {
		totalWeight += w
	}
	if totalWeight == 0 {
		logger.Error("sensor %s: total cdev weight is zero", sensorName)
		return
	}

	for i, cdevName := range ti.CdevRequest {
		if cdevName == "" {
			continue
		}
		weight := ti.CdevWeight[i]
		cdevBudget := budget * (weight / totalWeight)

		cdev, ok := cdevs[cdevName]
		if !ok {
			continue
		}
		state := stateForBudget(cdev.Power2State, cdevBudget)
		status.PidRequestMap[cdevName] = state
	}
}

// stateForBudget finds the smallest state index j such that
// power2state[j] < budget (strict, per open question (c)); if no such
// index exists, the last state is selected.
func stateForBudget(power2state []float64, budget float64) int {
	for j := 0; j < len(power2state)-1; j++ {
		if budget > power2state[j] {
			return j
		}
	}
	if len(power2state) == 0 {
		return 0
	}
	return len(power2state) - 1
}
