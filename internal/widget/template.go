package widget

import (
	"bytes"
	"html/template"

	"github.com/i474232898/weather-widget/internal/weather"
)

var fragmentTmpl = template.Must(template.New("widget").Funcs(template.FuncMap{
	"placeholder": func() string { return weather.Placeholder },
}).Parse(`<div class="widget" data-id="{{.ID}}">
<p class="status status-{{.Status.Kind}}"{{if not .Status.Visible}} hidden{{end}}>{{.Status.Message}}</p>
<button class="go" type="submit"{{if not .Trigger.Enabled}} disabled{{end}}>{{.Trigger.Label}}</button>
{{- with .View}}
<div class="report">
<div class="city"><strong>{{.Location}}</strong></div>
<div class="localtime">{{.LocalTime}}</div>
<img class="icon" src="{{.IconURL}}" alt="{{.IconAlt}}">
<div class="temp">{{.Temperature}}</div>
<div class="cond">{{.Condition}}</div>
<dl>
<dt>Feels like</dt><dd class="feels">{{.FeelsLike}}</dd>
<dt>High / Low</dt><dd class="hilo">{{.HiLo}}</dd>
<dt>Humidity</dt><dd class="humidity">{{.Humidity}}</dd>
<dt>Wind</dt><dd class="wind">{{.Wind}}</dd>
<dt>PM2.5</dt><dd class="aqi">{{.AirQuality}}</dd>
</dl>
<div class="alerts">
{{- range .Alerts}}
{{- if .Placeholder}}
<div class="muted">{{.Event}}</div>
{{- else}}
<div class="alert"><div class="name">{{.Event}}</div><div class="sub">{{.Headline}}</div><div class="muted">{{.Window}}</div></div>
{{- end}}
{{- end}}
</div>
</div>
{{- else}}
<div class="report empty"><div class="temp">{{placeholder}}</div></div>
{{- end}}
</div>
`))

// RenderHTML renders a state as the widget's HTML fragment.
func RenderHTML(st State) ([]byte, error) {
	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, st); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
