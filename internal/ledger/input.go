package ledger

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// 输入框最多保留三位小数
const inputDecimals = 3

var leadingNumber = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)

// FormatMeterInput 清理表读数输入：只保留数字、小数点和负号，多个小数点合并为第一个，截断到三位小数
func FormatMeterInput(raw string) string {
	switch raw {
	case ".":
		return "0."
	case "-.":
		return "-0."
	}

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	parts := strings.Split(cleaned, ".")
	if len(parts) > 2 {
		return parts[0] + "." + strings.Join(parts[1:], "")
	}
	if len(parts) == 2 && len(parts[1]) > inputDecimals {
		return parts[0] + "." + parts[1][:inputDecimals]
	}
	return cleaned
}

// ParseMeterInput 解析表读数，无法解析时返回 0
func ParseMeterInput(raw string) decimal.Decimal {
	m := leadingNumber.FindString(FormatMeterInput(raw))
	if m == "" {
		return decimal.Zero
	}
	m = strings.TrimSuffix(m, ".")
	switch {
	case strings.HasPrefix(m, "-."):
		m = "-0" + m[1:]
	case strings.HasPrefix(m, "."):
		m = "0" + m
	}

	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d.Truncate(inputDecimals)
}
