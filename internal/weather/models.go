package weather

// UnitSystem selects how temperatures and wind speeds are displayed.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// ParseUnitSystem maps "metric"/"imperial" to a UnitSystem. Anything else is metric.
func ParseUnitSystem(s string) UnitSystem {
	if s == string(Imperial) {
		return Imperial
	}
	return Metric
}

// Report is the provider's forecast response for a single query.
// It is read once by the renderer; optional sections are nil when the provider omits them.
// Location and Current are pointers so a payload without them is detectable.
type Report struct {
	Location *Location `json:"location"`
	Current  *Current  `json:"current"`
	Forecast *Forecast `json:"forecast,omitempty"`
	Alerts   *Alerts   `json:"alerts,omitempty"`
}

// Location identifies the place the provider resolved the query to.
type Location struct {
	Name      string `json:"name"`
	Region    string `json:"region"`
	Country   string `json:"country"`
	LocalTime string `json:"localtime"`
}

// Current holds current conditions in metric units.
type Current struct {
	TempC      float64     `json:"temp_c"`
	FeelsLikeC float64     `json:"feelslike_c"`
	Humidity   int         `json:"humidity"`
	WindKph    float64     `json:"wind_kph"`
	Condition  Condition   `json:"condition"`
	AirQuality *AirQuality `json:"air_quality,omitempty"`
}

// Condition is the provider's human-readable condition and its icon reference.
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// AirQuality carries the PM2.5 reading; PM25 is nil when the provider did not send one.
type AirQuality struct {
	PM25 *float64 `json:"pm2_5,omitempty"`
}

type Forecast struct {
	ForecastDay []ForecastDay `json:"forecastday"`
}

type ForecastDay struct {
	Day *Day `json:"day,omitempty"`
}

// Day holds the forecast extremes for one day.
type Day struct {
	MaxTempC float64 `json:"maxtemp_c"`
	MinTempC float64 `json:"mintemp_c"`
}

type Alerts struct {
	Alert []Alert `json:"alert"`
}

// Alert is a single weather alert. Timestamps are kept as the provider sent them.
type Alert struct {
	Event     string `json:"event"`
	Headline  string `json:"headline,omitempty"`
	Effective string `json:"effective,omitempty"`
	Expires   string `json:"expires,omitempty"`
}

// Complete reports whether the response carried both a location and current conditions.
func (r *Report) Complete() bool {
	return r != nil && r.Location != nil && r.Current != nil
}

// Today returns the first forecast day, or nil when the response has none.
func (r *Report) Today() *Day {
	if r == nil || r.Forecast == nil || len(r.Forecast.ForecastDay) == 0 {
		return nil
	}
	return r.Forecast.ForecastDay[0].Day
}

// AlertList returns the alerts in provider order. It never returns nil for a nil section.
func (r *Report) AlertList() []Alert {
	if r == nil || r.Alerts == nil {
		return []Alert{}
	}
	return r.Alerts.Alert
}
