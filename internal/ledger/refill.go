package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Numzn/station-main/internal/models"
)

var hundred = decimal.NewFromInt(100)

// DeriveRefill 计算实际卸油量、差异和结果
func DeriveRefill(r *models.TankRefill) {
	r.ActualDelivered = r.FinalDip.Sub(r.InitialDip)
	r.Variance = r.ActualDelivered.Sub(r.ExpectedDelivery)
	r.VariancePercent = decimal.Zero
	if !r.ExpectedDelivery.IsZero() {
		r.VariancePercent = r.Variance.Div(r.ExpectedDelivery).Mul(hundred).Round(2)
	}
	r.Status = RefillStatusOf(r.Variance)
}

// RefillStatusOf 差异为 0 是 Exact，大于 0 是 Over，小于 0 是 Short
func RefillStatusOf(variance decimal.Decimal) models.RefillStatus {
	switch variance.Sign() {
	case 1:
		return models.RefillOver
	case -1:
		return models.RefillShort
	}
	return models.RefillExact
}

// CheckPrep 准备阶段完成条件
func CheckPrep(r *models.TankRefill) error {
	var issues issueList
	if r.TankType == "" {
		issues.add(KindMissingField, "tank_type", "Tank type is required")
	}
	if strings.TrimSpace(r.InvoiceNumber) == "" {
		issues.add(KindMissingField, "invoice_number", "Invoice number is required")
	}
	if !r.InitialDip.IsPositive() {
		issues.add(KindMissingField, "initial_dip", "Initial dip reading is required")
	}
	if !r.ExpectedDelivery.IsPositive() {
		issues.add(KindMissingField, "expected_delivery", "Expected delivery volume is required")
	}
	return issues.err()
}

// CheckOffload 卸油阶段完成条件
func CheckOffload(r *models.TankRefill) error {
	if !r.FinalDip.IsPositive() {
		return Fail(KindMissingField, "final_dip", "Final dip reading is required")
	}
	return nil
}

// ValidateRefill 保存前校验。warnings 只提示，err 阻止保存。
func ValidateRefill(r *models.TankRefill, cfg Config) (warnings []Issue, err error) {
	var issues issueList
	if r.TankType == "" {
		issues.add(KindMissingField, "tank_type", "Tank type is required")
	}
	if r.InitialDip.IsZero() {
		issues.add(KindMissingField, "initial_dip", "Initial dip reading is required")
	}
	if r.ExpectedDelivery.IsZero() {
		issues.add(KindMissingField, "expected_delivery", "Expected delivery volume is required")
	}
	if r.FinalDip.IsZero() {
		issues.add(KindMissingField, "final_dip", "Final dip reading is required")
	}
	if strings.TrimSpace(r.InvoiceNumber) == "" {
		issues.add(KindMissingField, "invoice_number", "Invoice number is required")
	}
	if !r.Signature {
		issues.add(KindMissingField, "signature", "Please confirm by checking the signature box")
	}

	if r.TankType != "" {
		if max := cfg.MaxVolume(r.TankType); r.FinalDip.GreaterThan(max) {
			issues.add(KindCapacityExceeded, "final_dip", "Final dip exceeds tank capacity (%sL)", max.String())
		}
	}

	if w, ok := largeVariance(r, cfg); ok {
		warnings = append(warnings, w)
	}
	return warnings, issues.err()
}

func largeVariance(r *models.TankRefill, cfg Config) (Issue, bool) {
	if r.InitialDip.IsZero() || r.FinalDip.IsZero() || r.ExpectedDelivery.IsZero() {
		return Issue{}, false
	}
	actual := r.FinalDip.Sub(r.InitialDip)
	pct := actual.Sub(r.ExpectedDelivery).Abs().Div(r.ExpectedDelivery).Mul(hundred)
	if !pct.GreaterThan(cfg.LargeVariancePercent) {
		return Issue{}, false
	}
	return Issue{
		Kind:   KindLargeVariance,
		Field:  "final_dip",
		Detail: "Warning: Large variance detected. Please verify measurements.",
	}, true
}
