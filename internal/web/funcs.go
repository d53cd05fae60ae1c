package web

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"purecerts-console/internal/model"
)

const dateLayout = "2006-01-02 15:04 MST"

func Funcs() template.FuncMap {
	return template.FuncMap{
		"date":    formatDate,
		"enum":    enumLabel,
		"role":    func(r model.Role) string { return titleCase(r.Label()) },
		"join":    strings.Join,
		"percent": percent,
		"money":   money,
		"add":     func(a, b int) int { return a + b },
		"roles":   func() []model.Role { return []model.Role{model.RoleAdmin, model.RoleOperator, model.RoleViewer} },
	}
}

func formatDate(v any) string {
	switch t := v.(type) {
	case *time.Time:
		if t == nil || t.IsZero() {
			return "-"
		}
		return t.UTC().Format(dateLayout)
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format(dateLayout)
	default:
		return "-"
	}
}

// enumLabel turns "CERTIFICATE_STATUS_EXPIRING" into "Expiring" given the prefix.
func enumLabel(value, prefix string) string {
	v := strings.TrimPrefix(value, prefix)
	if v == "" || v == "UNSPECIFIED" {
		return "Unknown"
	}
	return titleCase(strings.ReplaceAll(strings.ToLower(v), "_", " "))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func percent(count, limit int32) int {
	if limit <= 0 {
		return 0
	}
	p := int(count) * 100 / int(limit)
	if p > 100 {
		return 100
	}
	return p
}

// money formats an amount in minor units.
func money(amount model.Int64String, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%d.%02d %s", int64(amount)/100, int64(amount)%100, strings.ToUpper(currency))
}
