// Package legend holds the map colour coding for industries and statuses.
package legend

var industryColours = map[string]string{
	"Semiconductor":    "#3B82F6",
	"Automotive":       "#10B981",
	"Battery":          "#F59E0B",
	"Renewable Energy": "#059669",
	"Metals":           "#6B7280",
	"Aerospace":        "#8B5CF6",
	"Pharmaceuticals":  "#EF4444",
	"Food & Beverage":  "#F97316",
	"Textiles":         "#EC4899",
	"Other":            "#6B7280",
}

var statusColours = map[string]string{
	"Announced":    "#3B82F6",
	"Planning":     "#F59E0B",
	"Construction": "#10B981",
	"Operational":  "#059669",
	"Cancelled":    "#EF4444",
	"Delayed":      "#F97316",
}

// IndustryColour falls back to the "Other" colour.
func IndustryColour(category string) string {
	if c, ok := industryColours[category]; ok {
		return c
	}
	return industryColours["Other"]
}

// StatusColour falls back to the "Announced" colour.
func StatusColour(status string) string {
	if c, ok := statusColours[status]; ok {
		return c
	}
	return statusColours["Announced"]
}

type Entry struct {
	Label  string `json:"label"`
	Colour string `json:"colour"`
}

type Legend struct {
	Industries []Entry `json:"industries"`
	Statuses   []Entry `json:"statuses"`
}

var (
	industryOrder = []string{"Semiconductor", "Automotive", "Battery", "Renewable Energy", "Metals", "Aerospace", "Pharmaceuticals", "Food & Beverage", "Textiles", "Other"}
	statusOrder   = []string{"Announced", "Planning", "Construction", "Operational", "Cancelled", "Delayed"}
)

func Default() Legend {
	l := Legend{
		Industries: make([]Entry, 0, len(industryOrder)),
		Statuses:   make([]Entry, 0, len(statusOrder)),
	}
	for _, k := range industryOrder {
		l.Industries = append(l.Industries, Entry{Label: k, Colour: industryColours[k]})
	}
	for _, k := range statusOrder {
		l.Statuses = append(l.Statuses, Entry{Label: k, Colour: statusColours[k]})
	}
	return l
}
