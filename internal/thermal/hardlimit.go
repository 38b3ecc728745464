package thermal

import "github.com/lakeside-soc/thermald/internal/severity"

// ApplyHardLimit implements the tabular hard-limit policy: scan
// severities from the sensor's current severity down to (exclusive)
// NONE, pick the highest at which throttle_type is LIMIT, and set
// every cdev in LimitInfo to its state at that target severity (0 if
// none found).
func ApplyHardLimit(info *SensorInfo, status *SensorStatus) {
	target := severity.None
	for s := status.Severity; s > severity.None; s-- {
		if info.Throttling.ThrottleType[s] == severity.ThrottleLimit {
			target = s
			break
		}
	}

	for cdevName, states := range info.Throttling.LimitInfo {
		status.HardLimitRequestMap[cdevName] = states[target]
	}
}
