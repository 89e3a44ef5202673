package layout

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/topodraw/pkg/topology"
)

// Tier is a utilization bucket.
type Tier string

// Utilization tiers. TierNone marks nodes without a usable capacity metric.
const (
	TierNone     Tier = ""
	TierNormal   Tier = "normal"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

// Tiers lists the metric-bearing tiers in ascending order.
var Tiers = []Tier{TierNormal, TierWarning, TierCritical}

// Classify buckets a capacity metric. A nil capacity or a non-positive
// total yields [TierNone].
func Classify(c *topology.Capacity, th Thresholds) Tier {
	if c == nil || c.Total <= 0 {
		return TierNone
	}
	return ClassifyRatio(c.Used/c.Total, th)
}

// ClassifyRatio buckets a utilization ratio in 0..1. Ratios exactly on a
// threshold fall into the lower tier.
func ClassifyRatio(ratio float64, th Thresholds) Tier {
	switch {
	case ratio <= th.Warning:
		return TierNormal
	case ratio <= th.Critical:
		return TierWarning
	default:
		return TierCritical
	}
}

// TierLabel describes the ratio range of a tier, e.g. "≤ 70%".
func TierLabel(t Tier, th Thresholds) string {
	switch t {
	case TierNormal:
		return "≤ " + percent(th.Warning)
	case TierWarning:
		return percent(th.Warning) + " - " + percent(th.Critical)
	case TierCritical:
		return "> " + percent(th.Critical)
	default:
		return "no data"
	}
}

// percent formats a ratio as a percentage with at most two decimals.
func percent(ratio float64) string {
	return strconv.FormatFloat(math.Round(ratio*10000)/100, 'f', -1, 64) + "%"
}

// utilizationLine renders "72.5% used (72.5 / 100 TiB)".
func utilizationLine(c topology.Capacity) string {
	unit := ""
	if c.Unit != "" {
		unit = " " + c.Unit
	}
	return fmt.Sprintf("%.1f%% used (%s / %s%s)",
		c.Ratio()*100,
		strconv.FormatFloat(c.Used, 'f', -1, 64),
		strconv.FormatFloat(c.Total, 'f', -1, 64),
		unit)
}
