package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Numzn/station-main/internal/models"
)

var (
	refuelInterval     = decimal.NewFromInt(6)
	longRefuelInterval = decimal.NewFromInt(7)
)

// GensetInput 发电机加油录入
type GensetInput struct {
	RunningHours     string              `json:"running_hours"`
	Operator         string              `json:"operator"`
	Status           models.GensetStatus `json:"genset_status"`
	PowerOutageStart *time.Time          `json:"power_outage_start,omitempty"`
}

// ParseRunningHours 解析运行小时数，允许逗号作为小数点
func ParseRunningHours(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// RecordGensetReading 校验运行小时数单调递增，计算间隔与油耗
func RecordGensetReading(in GensetInput, last *models.GensetReading, cfg Config, now time.Time) (*models.GensetReading, error) {
	var issues issueList
	hours, ok := ParseRunningHours(in.RunningHours)
	if !ok {
		issues.add(KindMissingField, "running_hours", "Running hours must be a number")
	}
	if strings.TrimSpace(in.Operator) == "" {
		issues.add(KindMissingField, "operator", "Operator is required")
	}
	status := in.Status
	if status == "" {
		status = models.GensetRunning
	}
	if status != models.GensetRunning && status != models.GensetStopped {
		issues.add(KindMissingField, "genset_status", "Genset status must be running or stopped")
	}
	if err := issues.err(); err != nil {
		return nil, err
	}

	since := decimal.Zero
	if last != nil {
		if !hours.GreaterThan(last.RunningHours) {
			return nil, Fail(KindInvalidTransition, "running_hours",
				"Running hours (%s) must be greater than the last reading (%s)", hours.String(), last.RunningHours.String())
		}
		since = hours.Sub(last.RunningHours)
	}

	rate := decimal.Zero
	if since.IsPositive() {
		rate = cfg.GensetFuelLiters.Div(since).Round(4)
	}

	return &models.GensetReading{
		RunningHours:         hours,
		HoursSinceLastRefuel: since,
		FuelAdded:            cfg.GensetFuelLiters,
		FuelConsumptionRate:  rate,
		Operator:             strings.TrimSpace(in.Operator),
		GensetStatus:         status,
		PowerOutageStart:     in.PowerOutageStart,
		Timestamp:            now,
	}, nil
}

// NextRefuelAt 下次加油的运行小时数。上次间隔不足 6 小时则顺延为 7 小时。
func NextRefuelAt(last *models.GensetReading, hasHistory bool) *decimal.Decimal {
	if last == nil {
		return nil
	}
	step := refuelInterval
	if hasHistory && last.HoursSinceLastRefuel.LessThan(refuelInterval) {
		step = longRefuelInterval
	}
	next := last.RunningHours.Add(step)
	return &next
}
