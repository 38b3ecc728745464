package thermal

import (
	"math"

	"github.com/lakeside-soc/thermald/internal/severity"
)

// ClassifySeverity computes the (hot, cold) severity pair for a new
// reading, applying hysteresis: scanning from SHUTDOWN
// down to LIGHT, the raw crossing is used unless it would drop below
// the previous severity, in which case the hysteresis-widened crossing
// is used instead. NaN thresholds never trigger.
func ClassifySeverity(info *SensorInfo, prevHot, prevCold severity.Severity, value float64) (hot, cold severity.Severity) {
	hot = classifyHot(info.HotThresholds, value)
	hotHyst := classifyHotHyst(info.HotThresholds, info.HotHysteresis, value)
	cold = classifyCold(info.ColdThresholds, value)
	coldHyst := classifyColdHyst(info.ColdThresholds, info.ColdHysteresis, value)

	if hot < prevHot {
		hot = hotHyst
	}
	if cold < prevCold {
		cold = coldHyst
	}
	return hot, cold
}

func classifyHot(thresholds [severity.Count]float64, value float64) severity.Severity {
	for i := severity.Shutdown; i > severity.None; i-- {
		t := thresholds[i]
		if !math.IsNaN(t) && t <= value {
			return i
		}
	}
	return severity.None
}

func classifyHotHyst(thresholds, hysteresis [severity.Count]float64, value float64) severity.Severity {
	for i := severity.Shutdown; i > severity.None; i-- {
		t := thresholds[i]
		if !math.IsNaN(t) && (t-hysteresis[i]) < value {
			return i
		}
	}
	return severity.None
}

func classifyCold(thresholds [severity.Count]float64, value float64) severity.Severity {
	for i := severity.Shutdown; i > severity.None; i-- {
		t := thresholds[i]
		if !math.IsNaN(t) && t >= value {
			return i
		}
	}
	return severity.None
}

func classifyColdHyst(thresholds, hysteresis [severity.Count]float64, value float64) severity.Severity {
	for i := severity.Shutdown; i > severity.None; i-- {
		t := thresholds[i]
		if !math.IsNaN(t) && (t+hysteresis[i]) > value {
			return i
		}
	}
	return severity.None
}
