package widget

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-widget/internal/weather"
)

// fakeProvider answers from a function and records every query it receives.
type fakeProvider struct {
	mu      sync.Mutex
	queries []string
	respond func(q string) (*weather.Report, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(ctx context.Context, q string) (*weather.Report, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.respond(q)
}

func (f *fakeProvider) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func reportFor(name string, tempC float64) *weather.Report {
	pm := 5.0
	return &weather.Report{
		Location: &weather.Location{Name: name, Region: "Region", Country: "Country", LocalTime: "2024-05-01 12:00"},
		Current: &weather.Current{
			TempC:      tempC,
			FeelsLikeC: tempC,
			Humidity:   40,
			WindKph:    10,
			Condition:  weather.Condition{Text: "Clear", Icon: "//cdn/clear.png"},
			AirQuality: &weather.AirQuality{PM25: &pm},
		},
	}
}

func okProvider() *fakeProvider {
	return &fakeProvider{respond: func(q string) (*weather.Report, error) {
		return reportFor(q, 20), nil
	}}
}

func TestNewWidgetIsIdle(t *testing.T) {
	w := New("s1", okProvider(), Options{})
	st := w.State()

	assert.Equal(t, "s1", st.ID)
	assert.Equal(t, weather.Metric, st.Units)
	assert.Equal(t, Trigger{Enabled: true, Label: IdleLabel}, st.Trigger)
	assert.False(t, st.Status.Visible)
	assert.Nil(t, st.View)
}

func TestStartLoadsDefaultLocation(t *testing.T) {
	p := okProvider()
	w := New("s1", p, Options{})

	require.NoError(t, w.Start())
	w.Wait()

	assert.Equal(t, []string{"London"}, p.calls())
	st := w.State()
	assert.Equal(t, "London", st.Input)
	require.NotNil(t, st.View)
	assert.Equal(t, "London, Region", st.View.Location)
	assert.Equal(t, "20°C", st.View.Temperature)
	assert.False(t, st.Status.Visible)
	assert.True(t, st.Trigger.Enabled)
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestStartUsesConfiguredDefault(t *testing.T) {
	p := okProvider()
	w := New("s1", p, Options{DefaultLocation: "Paris"})

	require.NoError(t, w.Start())
	w.Wait()

	assert.Equal(t, []string{"Paris"}, p.calls())
}

func TestSubmitEmptyQueryDoesNotFetch(t *testing.T) {
	for _, q := range []string{"", "   ", "\t"} {
		p := okProvider()
		w := New("s1", p, Options{})

		err := w.Submit(q)
		w.Wait()

		assert.ErrorIs(t, err, weather.ErrEmptyQuery)
		assert.Empty(t, p.calls())

		st := w.State()
		assert.Equal(t, Status{Message: EmptyQueryMessage, Kind: StatusError, Visible: true}, st.Status)
		assert.True(t, st.Trigger.Enabled)
	}
}

func TestSubmitTrimsQuery(t *testing.T) {
	p := okProvider()
	w := New("s1", p, Options{})

	require.NoError(t, w.Submit("  Berlin \n"))
	w.Wait()

	assert.Equal(t, []string{"Berlin"}, p.calls())
	assert.Equal(t, "Berlin", w.State().Input)
}

func TestTriggerDisabledWhileFetching(t *testing.T) {
	release := make(chan struct{})
	p := &fakeProvider{respond: func(q string) (*weather.Report, error) {
		<-release
		return reportFor(q, 10), nil
	}}
	w := New("s1", p, Options{})

	require.NoError(t, w.Submit("Oslo"))

	st := w.State()
	assert.Equal(t, Trigger{Enabled: false, Label: BusyLabel}, st.Trigger)
	assert.Equal(t, Status{Message: FetchingMessage, Kind: StatusInfo, Visible: true}, st.Status)

	close(release)
	w.Wait()

	st = w.State()
	assert.Equal(t, Trigger{Enabled: true, Label: IdleLabel}, st.Trigger)
	assert.False(t, st.Status.Visible)
}

func TestFailureShowsStatusAndReenablesTrigger(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "provider error",
			err:     &weather.FetchError{Kind: weather.KindStatus, StatusCode: 400, Detail: "API key invalid", ProviderMessage: "API key invalid"},
			message: "HTTP 400: API key invalid",
		},
		{
			name:    "transport error",
			err:     &weather.FetchError{Kind: weather.KindTransport, Err: errors.New("no such host")},
			message: weather.GenericFetchMessage,
		},
		{
			name:    "decode error",
			err:     &weather.FetchError{Kind: weather.KindDecode, Err: errors.New("unexpected EOF")},
			message: weather.GenericFetchMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{respond: func(string) (*weather.Report, error) { return nil, tt.err }}
			w := New("s1", p, Options{})

			require.NoError(t, w.Submit("London"))
			w.Wait()

			st := w.State()
			assert.Equal(t, Status{Message: tt.message, Kind: StatusError, Visible: true}, st.Status)
			assert.Equal(t, Trigger{Enabled: true, Label: IdleLabel}, st.Trigger)
			assert.Nil(t, st.View)
		})
	}
}

func TestFailureLogNamesProvider(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	p := &fakeProvider{respond: func(string) (*weather.Report, error) {
		return nil, &weather.FetchError{Kind: weather.KindTransport, Err: errors.New("no such host")}
	}}
	w := New("s1", p, Options{})

	require.NoError(t, w.Submit("London"))
	w.Wait()

	assert.Contains(t, buf.String(), `ERROR: widget s1: fake fetch for "London" failed`)
}

// hangingProvider never answers on its own; it returns once the fetch context ends.
type hangingProvider struct {
	deadline chan bool
}

func (h *hangingProvider) Name() string { return "hanging" }

func (h *hangingProvider) Fetch(ctx context.Context, _ string) (*weather.Report, error) {
	_, ok := ctx.Deadline()
	h.deadline <- ok
	<-ctx.Done()
	return nil, &weather.FetchError{Kind: weather.KindTransport, Err: ctx.Err()}
}

func TestFetchTimeoutBoundsHangingProvider(t *testing.T) {
	p := &hangingProvider{deadline: make(chan bool, 1)}
	w := New("s1", p, Options{FetchTimeout: 20 * time.Millisecond})

	require.NoError(t, w.Submit("London"))
	assert.True(t, <-p.deadline)

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not bounded by FetchTimeout")
	}

	st := w.State()
	assert.Equal(t, Status{Message: weather.GenericFetchMessage, Kind: StatusError, Visible: true}, st.Status)
	assert.Equal(t, Trigger{Enabled: true, Label: IdleLabel}, st.Trigger)
	assert.Nil(t, st.View)
}

func TestFailureKeepsPreviousView(t *testing.T) {
	fail := false
	var mu sync.Mutex
	p := &fakeProvider{respond: func(q string) (*weather.Report, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, &weather.FetchError{Kind: weather.KindTransport, Err: errors.New("offline")}
		}
		return reportFor(q, 15), nil
	}}
	w := New("s1", p, Options{})

	require.NoError(t, w.Submit("Rome"))
	w.Wait()

	mu.Lock()
	fail = true
	mu.Unlock()

	require.NoError(t, w.Submit("Madrid"))
	w.Wait()

	st := w.State()
	require.NotNil(t, st.View)
	assert.Equal(t, "Rome, Region", st.View.Location)
	assert.Equal(t, weather.GenericFetchMessage, st.Status.Message)
}

func TestStaleResultIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	p := &fakeProvider{respond: func(q string) (*weather.Report, error) {
		if q == "Slow City" {
			<-slow
		}
		return reportFor(q, 5), nil
	}}
	w := New("s1", p, Options{})

	require.NoError(t, w.Submit("Slow City"))
	require.NoError(t, w.Submit("Fast City"))

	// Let the later request resolve first.
	require.Eventually(t, func() bool {
		st := w.State()
		return st.View != nil && st.Trigger.Enabled
	}, time.Second, 5*time.Millisecond)

	close(slow)
	w.Wait()

	st := w.State()
	require.NotNil(t, st.View)
	assert.Equal(t, "Fast City, Region", st.View.Location)
	assert.Equal(t, "Fast City", st.Input)
	assert.True(t, st.Trigger.Enabled)
	assert.ElementsMatch(t, []string{"Slow City", "Fast City"}, p.calls())
}

func TestStaleFailureIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	p := &fakeProvider{respond: func(q string) (*weather.Report, error) {
		if q == "Broken" {
			<-slow
			return nil, &weather.FetchError{Kind: weather.KindStatus, StatusCode: 400, Detail: "API key invalid", ProviderMessage: "API key invalid"}
		}
		return reportFor(q, 5), nil
	}}
	w := New("s1", p, Options{})

	require.NoError(t, w.Submit("Broken"))
	require.NoError(t, w.Submit("Lisbon"))
	require.Eventually(t, func() bool { return w.State().View != nil }, time.Second, 5*time.Millisecond)

	close(slow)
	w.Wait()

	st := w.State()
	assert.False(t, st.Status.Visible)
	assert.Equal(t, "Lisbon, Region", st.View.Location)
}

func TestTriggerStaysBusyUntilLatestResolves(t *testing.T) {
	first := make(chan struct{})
	second := make(chan struct{})
	p := &fakeProvider{respond: func(q string) (*weather.Report, error) {
		if q == "first" {
			<-first
		} else {
			<-second
		}
		return reportFor(q, 1), nil
	}}
	w := New("s1", p, Options{})

	require.NoError(t, w.Submit("first"))
	require.NoError(t, w.Submit("second"))

	close(first)
	require.Eventually(t, func() bool { return len(p.calls()) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, w.State().Trigger.Enabled)

	close(second)
	w.Wait()
	assert.True(t, w.State().Trigger.Enabled)
}

func TestSetUnitsReformatsWithoutFetching(t *testing.T) {
	p := okProvider()
	w := New("s1", p, Options{})

	require.NoError(t, w.Submit("London"))
	w.Wait()
	require.Len(t, p.calls(), 1)

	w.SetImperial(true)
	st := w.State()
	assert.Equal(t, weather.Imperial, st.Units)
	assert.Equal(t, "68°F", st.View.Temperature)
	assert.Equal(t, "6.2 mph", st.View.Wind)

	w.SetImperial(false)
	st = w.State()
	assert.Equal(t, weather.Metric, st.Units)
	assert.Equal(t, "20°C", st.View.Temperature)
	assert.Equal(t, "10.0 km/h", st.View.Wind)

	w.Wait()
	assert.Len(t, p.calls(), 1)
}

func TestSetUnitsBeforeAnyReport(t *testing.T) {
	p := okProvider()
	w := New("s1", p, Options{})

	w.SetUnits(weather.Imperial)
	assert.Nil(t, w.State().View)
	assert.Empty(t, p.calls())

	require.NoError(t, w.Submit("Austin"))
	w.Wait()
	assert.Equal(t, "68°F", w.State().View.Temperature)
}

func TestGeolocateUnsupported(t *testing.T) {
	p := okProvider()
	w := New("s1", p, Options{})

	err := w.Geolocate(context.Background(), nil)

	assert.ErrorIs(t, err, ErrGeolocationUnsupported)
	assert.Equal(t, Status{Message: GeolocationUnsupported, Kind: StatusError, Visible: true}, w.State().Status)
	assert.Empty(t, p.calls())
}

func TestGeolocateSubmitsCoordinates(t *testing.T) {
	p := okProvider()
	w := New("s1", p, Options{})

	loc := ReportedPosition{Position: Position{Latitude: 51.5073509, Longitude: -0.1277583}}
	require.NoError(t, w.Geolocate(context.Background(), loc))
	w.Wait()

	assert.Equal(t, []string{"51.50735,-0.12776"}, p.calls())
	assert.Equal(t, "51.50735,-0.12776", w.State().Input)
	assert.NotNil(t, w.State().View)
}

// recordingLocator captures the options it was called with.
type recordingLocator struct {
	opts     PositionOptions
	deadline bool
}

func (r *recordingLocator) CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error) {
	r.opts = opts
	_, r.deadline = ctx.Deadline()
	return Position{Latitude: 1, Longitude: 2}, nil
}

func TestGeolocateRequestsHighAccuracyWithTimeout(t *testing.T) {
	w := New("s1", okProvider(), Options{})
	loc := &recordingLocator{}

	require.NoError(t, w.Geolocate(context.Background(), loc))
	w.Wait()

	assert.Equal(t, PositionOptions{HighAccuracy: true, Timeout: 10 * time.Second}, loc.opts)
	assert.True(t, loc.deadline)
}

func TestGeolocateFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "platform message", err: errors.New("User denied Geolocation"), message: "User denied Geolocation"},
		{name: "no message", err: ErrLocationUnavailable, message: LocationFallback},
		{name: "empty message", err: errors.New(""), message: LocationFallback},
		{name: "timeout", err: context.DeadlineExceeded, message: "Timeout expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := okProvider()
			w := New("s1", p, Options{})

			err := w.Geolocate(context.Background(), ReportedPosition{Err: tt.err})

			assert.Error(t, err)
			assert.Equal(t, Status{Message: tt.message, Kind: StatusError, Visible: true}, w.State().Status)
			assert.Empty(t, p.calls())
		})
	}
}

func TestStateReturnsCopy(t *testing.T) {
	w := New("s1", okProvider(), Options{})
	require.NoError(t, w.Submit("London"))
	w.Wait()

	st := w.State()
	st.View.Location = "changed"
	st.View.Alerts[0].Event = "changed"

	again := w.State()
	assert.Equal(t, "London, Region", again.View.Location)
	assert.Equal(t, weather.NoAlertsMessage, again.View.Alerts[0].Event)
}
