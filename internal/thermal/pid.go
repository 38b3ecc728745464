package thermal

import (
	"math"

	"github.com/lakeside-soc/thermald/internal/severity"
)

// PowerBudget runs the per-sensor PID step and returns a
// power budget in mW. It mutates status.ErrIntegral/PrevErr.
//
// Target severity is the lowest PID-throttled severity at or above the
// sensor's current severity (open question (b): if there is none, or
// the current severity is NONE, target stays at NONE and the loop
// returns +Inf with no throttling).
func PowerBudget(info *SensorInfo, status *SensorStatus, value float64, elapsedMs int64) float64 {
	target := severity.None
	for s := severity.Severity(0); s < severity.Count; s++ {
		if info.Throttling.ThrottleType[s] == severity.ThrottlePID && s >= status.Severity {
			target = s
			break
		}
	}

	if target == severity.None || status.Severity == severity.None {
		status.ErrIntegral = 0
		status.PrevErr = math.NaN()
		return math.Inf(1)
	}

	ti := info.Throttling

	err := info.HotThresholds[target] - value

	var p float64
	if err < 0 {
		p = err * ti.KPo[target]
	} else {
		p = err * ti.KPu[target]
	}

	i := status.ErrIntegral * ti.KI[target]
	if err < ti.ICutoff[target] {
		iNext := i + err*ti.KI[target]
		if math.Abs(iNext) < ti.IMax[target] {
			i = iNext
			status.ErrIntegral += err
		}
	}

	var d float64
	if !math.IsNaN(status.PrevErr) && elapsedMs != 0 {
		d = ti.KD[target] * (err - status.PrevErr) / float64(elapsedMs)
	}
	status.PrevErr = err

	budget := ti.SPower[target] + p + i + d
	if budget < ti.MinAllocPower[target] {
		budget = ti.MinAllocPower[target]
	}
	if budget > ti.MaxAllocPower[target] {
		budget = ti.MaxAllocPower[target]
	}
	return budget
}
