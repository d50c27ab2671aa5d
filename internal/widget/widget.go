package widget

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/i474232898/weather-widget/internal/weather"
)

// Status line and trigger control texts.
const (
	EmptyQueryMessage      = "Please type a city or coordinates."
	FetchingMessage        = "Fetching weather…"
	LocatingMessage        = "Getting device location…"
	GeolocationUnsupported = "Geolocation is not supported by your browser."
	LocationFallback       = "Could not get location."
	locationTimeoutMessage = "Timeout expired"

	IdleLabel = "Get weather"
	BusyLabel = "Loading…"

	DefaultLocation = "London"
)

// ErrGeolocationUnsupported is returned by Geolocate when no locator is available.
var ErrGeolocationUnsupported = errors.New("geolocation not supported")

type StatusKind string

const (
	StatusInfo  StatusKind = "info"
	StatusError StatusKind = "error"
)

// Status is the widget's single status line.
type Status struct {
	Message string     `json:"message"`
	Kind    StatusKind `json:"kind"`
	Visible bool       `json:"visible"`
}

// Trigger is the control that starts a fetch. It is disabled while a fetch is in flight.
type Trigger struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

// State is a point-in-time copy of everything the widget displays.
type State struct {
	ID        string             `json:"id"`
	Input     string             `json:"input"`
	Units     weather.UnitSystem `json:"units"`
	Status    Status             `json:"status"`
	Trigger   Trigger            `json:"trigger"`
	View      *weather.View      `json:"view,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty"`
}

// Options configure a Widget.
type Options struct {
	// DefaultLocation is submitted by Start.
	DefaultLocation string
	// PositionTimeout bounds Geolocate.
	PositionTimeout time.Duration
	// FetchTimeout bounds a single fetch; zero leaves it to the HTTP client.
	FetchTimeout time.Duration
	Units        weather.UnitSystem
}

// Widget coordinates user actions for one widget instance: it validates input,
// runs fetches against the provider and keeps the display state.
//
// Every fetch gets a sequence number. Only the result of the most recently
// issued fetch reaches the display; older results are dropped when they resolve.
type Widget struct {
	id       string
	provider weather.Provider
	opts     Options

	mu        sync.Mutex
	input     string
	units     weather.UnitSystem
	status    Status
	trigger   Trigger
	report    *weather.Report
	view      *weather.View
	seq       uint64
	updatedAt time.Time

	inflight sync.WaitGroup
}

// New creates an idle widget. Call Start to load the default location.
func New(id string, provider weather.Provider, opts Options) *Widget {
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = DefaultLocation
	}
	if opts.PositionTimeout <= 0 {
		opts.PositionTimeout = DefaultPositionTimeout
	}
	if opts.Units == "" {
		opts.Units = weather.Metric
	}

	return &Widget{
		id:       id,
		provider: provider,
		opts:     opts,
		units:    opts.Units,
		trigger:  Trigger{Enabled: true, Label: IdleLabel},
	}
}

func (w *Widget) ID() string {
	return w.id
}

// Start pre-fills the input with the default location and submits it.
func (w *Widget) Start() error {
	w.mu.Lock()
	w.input = w.opts.DefaultLocation
	w.mu.Unlock()

	return w.Submit(w.opts.DefaultLocation)
}

// Submit validates q and, when it is non-empty after trimming, starts a fetch for it.
// It returns weather.ErrEmptyQuery without touching the network for empty input.
// The fetch itself runs in the background; use State or Wait to observe its outcome.
func (w *Widget) Submit(q string) error {
	q, err := weather.NormalizeQuery(q)

	w.mu.Lock()
	if err != nil {
		w.setStatus(EmptyQueryMessage, StatusError)
		w.mu.Unlock()
		return err
	}

	w.input = q
	w.seq++
	seq := w.seq
	w.setStatus(FetchingMessage, StatusInfo)
	w.trigger = Trigger{Enabled: false, Label: BusyLabel}
	w.inflight.Add(1)
	w.mu.Unlock()

	go w.fetch(seq, q)
	return nil
}

func (w *Widget) fetch(seq uint64, q string) {
	defer w.inflight.Done()
	defer w.release(seq)

	ctx := context.Background()
	if w.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.FetchTimeout)
		defer cancel()
	}

	report, err := w.provider.Fetch(ctx, q)

	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.seq {
		log.Printf("DEBUG: widget %s: dropping result of request %d for %q; latest is %d", w.id, seq, q, w.seq)
		return
	}

	if err != nil {
		log.Printf("ERROR: widget %s: %s fetch for %q failed: %v", w.id, w.provider.Name(), q, err)
		w.setStatus(weather.StatusMessage(err), StatusError)
		return
	}

	w.report = report
	view := weather.Render(report, w.units)
	w.view = &view
	w.updatedAt = time.Now().UTC()
	w.status = Status{}
}

// release re-enables the trigger once the latest request has resolved, whatever its outcome.
func (w *Widget) release(seq uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if seq == w.seq {
		w.trigger = Trigger{Enabled: true, Label: IdleLabel}
	}
}

// Geolocate asks loc for the device position and submits it as a "lat,lon" query.
// A nil loc means the runtime has no location capability.
func (w *Widget) Geolocate(ctx context.Context, loc Locator) error {
	if loc == nil {
		w.mu.Lock()
		w.setStatus(GeolocationUnsupported, StatusError)
		w.mu.Unlock()
		return ErrGeolocationUnsupported
	}

	w.mu.Lock()
	w.setStatus(LocatingMessage, StatusInfo)
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.opts.PositionTimeout)
	defer cancel()

	pos, err := loc.CurrentPosition(ctx, PositionOptions{
		HighAccuracy: true,
		Timeout:      w.opts.PositionTimeout,
	})
	if err != nil {
		w.mu.Lock()
		w.setStatus(locationErrorMessage(err), StatusError)
		w.mu.Unlock()
		return err
	}

	q := weather.FormatCoordinates(pos.Latitude, pos.Longitude)

	w.mu.Lock()
	w.input = q
	w.mu.Unlock()

	return w.Submit(q)
}

func locationErrorMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return locationTimeoutMessage
	case errors.Is(err, ErrLocationUnavailable), err.Error() == "":
		return LocationFallback
	default:
		return err.Error()
	}
}

// SetUnits switches the unit system. A report already on display is re-rendered
// locally; no request is made.
func (w *Widget) SetUnits(units weather.UnitSystem) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.units = units
	if w.report != nil {
		view := weather.Render(w.report, units)
		w.view = &view
	}
}

// SetImperial is the unit toggle: true selects imperial, false metric.
func (w *Widget) SetImperial(imperial bool) {
	if imperial {
		w.SetUnits(weather.Imperial)
		return
	}
	w.SetUnits(weather.Metric)
}

// State returns a copy of the current display state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := State{
		ID:        w.id,
		Input:     w.input,
		Units:     w.units,
		Status:    w.status,
		Trigger:   w.trigger,
		UpdatedAt: w.updatedAt,
	}
	if w.view != nil {
		view := *w.view
		view.Alerts = append([]weather.AlertView(nil), w.view.Alerts...)
		st.View = &view
	}
	return st
}

// Wait blocks until every fetch started so far has resolved.
func (w *Widget) Wait() {
	w.inflight.Wait()
}

// setStatus must be called with w.mu held.
func (w *Widget) setStatus(msg string, kind StatusKind) {
	w.status = Status{Message: msg, Kind: kind, Visible: true}
}
