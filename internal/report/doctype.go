package report

import "fmt"

// DocType identifies one of the six canonical report documents synchronized
// from the published workbooks.
type DocType string

const (
	DocProduction DocType = "production"
	DocDowntime   DocType = "downtime"
	DocStockpile  DocType = "stockpile"
	DocShipping   DocType = "shipping"
	DocDailyPlan  DocType = "daily_plan"
	DocTarget     DocType = "target"
)

// AllDocTypes lists every known document type in a stable order.
func AllDocTypes() []DocType {
	return []DocType{
		DocProduction,
		DocDowntime,
		DocStockpile,
		DocShipping,
		DocDailyPlan,
		DocTarget,
	}
}

// ParseDocType validates a document type string received from configuration
// or an HTTP path segment.
func ParseDocType(s string) (DocType, error) {
	for _, dt := range AllDocTypes() {
		if string(dt) == s {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown document type %q", s)
}
