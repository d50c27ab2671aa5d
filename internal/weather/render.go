package weather

import (
	"fmt"
	"strings"

	"github.com/i474232898/weather-widget/internal/common"
)

const (
	// Placeholder shown for fields with no value yet or no forecast day.
	Placeholder       = "—"
	NotAvailable      = "N/A"
	NoAlertsMessage   = "No weather alerts."
	pm25UnitSuffix    = "µg/m³"
	secureScheme      = "https:"
	insecureScheme    = "http:"
	locationSeparator = ", "
	// iconHost serves the provider's condition icons.
	iconHost          = "//cdn.weatherapi.com"
)

// View holds every display field of the widget, already formatted.
type View struct {
	Location    string      `json:"location"`
	LocalTime   string      `json:"localTime"`
	IconURL     string      `json:"iconUrl"`
	IconAlt     string      `json:"iconAlt"`
	Temperature string      `json:"temperature"`
	Condition   string      `json:"condition"`
	FeelsLike   string      `json:"feelsLike"`
	HiLo        string      `json:"hiLo"`
	Humidity    string      `json:"humidity"`
	Wind        string      `json:"wind"`
	AirQuality  string      `json:"airQuality"`
	Alerts      []AlertView `json:"alerts"`
	Units       UnitSystem  `json:"units"`
}

// AlertView is one rendered alert entry. When Placeholder is set the entry
// stands in for an empty alert list and only Event is filled.
type AlertView struct {
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Window      string `json:"window"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Render maps a report onto display fields using the given unit system.
// Missing optional sections render as placeholders; Render never panics on a nil section.
func Render(r *Report, units UnitSystem) View {
	if r == nil {
		r = &Report{}
	}
	var loc Location
	if r.Location != nil {
		loc = *r.Location
	}
	var cur Current
	if r.Current != nil {
		cur = *r.Current
	}

	v := View{
		Location:    LocationLabel(loc),
		LocalTime:   loc.LocalTime,
		IconURL:     SecureIconURL(cur.Condition.Icon),
		IconAlt:     cur.Condition.Text,
		Temperature: FormatTemp(cur.TempC, units),
		Condition:   cur.Condition.Text,
		FeelsLike:   FormatTemp(cur.FeelsLikeC, units),
		HiLo:        Placeholder,
		Humidity:    fmt.Sprintf("%d%%", cur.Humidity),
		Wind:        FormatWind(cur.WindKph, units),
		AirQuality:  NotAvailable,
		Units:       units,
	}

	if day := r.Today(); day != nil {
		v.HiLo = FormatTemp(day.MaxTempC, units) + " / " + FormatTemp(day.MinTempC, units)
	}

	if aq := cur.AirQuality; aq != nil && aq.PM25 != nil {
		v.AirQuality = fmt.Sprintf("%.1f %s", *aq.PM25, pm25UnitSuffix)
	}

	v.Alerts = renderAlerts(r.AlertList())
	return v
}

// LocationLabel returns "<name>, <region>", falling back to the country when the region is empty.
func LocationLabel(l Location) string {
	return l.Name + locationSeparator + common.FirstNonBlank(l.Region, l.Country)
}

// SecureIconURL resolves the provider's icon reference to an absolute https URL.
// WeatherAPI sends scheme-relative references such as "//cdn.weatherapi.com/...".
// Path-relative references resolve against the provider's icon host.
func SecureIconURL(icon string) string {
	switch {
	case icon == "":
		return ""
	case strings.HasPrefix(icon, "//"):
		return secureScheme + icon
	case strings.HasPrefix(icon, insecureScheme+"//"):
		return secureScheme + strings.TrimPrefix(icon, insecureScheme)
	case strings.HasPrefix(icon, secureScheme+"//"):
		return icon
	case strings.HasPrefix(icon, "/"):
		return secureScheme + iconHost + icon
	default:
		return secureScheme + "//" + icon
	}
}

func renderAlerts(alerts []Alert) []AlertView {
	if len(alerts) == 0 {
		return []AlertView{{Event: NoAlertsMessage, Placeholder: true}}
	}

	out := make([]AlertView, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertView{
			Event:    a.Event,
			Headline: a.Headline,
			Window:   a.Effective + " → " + a.Expires,
		})
	}
	return out
}
