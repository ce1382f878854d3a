package forecast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// FailureMessage is the only error text shown to users.
const FailureMessage = "Failed to fetch forecast. Is the backend server running?"

var ErrRequestInFlight = errors.New("forecast request already in flight")

// Provider fetches forecast points for a date window.
type Provider interface {
	Forecast(ctx context.Context, req Request) ([]ForecastPoint, error)
}

// Controller owns the forecast request lifecycle and publishes every
// successful response as a new PointCollection.
type Controller struct {
	provider Provider
	logger   *slog.Logger
	now      func() time.Time
	days     int
	timeout  time.Duration

	mu      sync.Mutex
	state   State
	current *PointCollection
	subs    map[int]func(PointCollection)
	nextSub int
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithClock overrides the time source used for the request window.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithDays(days int) Option {
	return func(c *Controller) { c.days = days }
}

// WithTimeout bounds each outbound request. Zero leaves it to ctx alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

func NewController(provider Provider, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		logger:   slog.Default(),
		now:      time.Now,
		days:     DefaultDays,
		subs:     make(map[int]func(PointCollection)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "forecast-controller")
	return c
}

// RequestForecast issues exactly one backend request for the window starting
// today. It returns ErrRequestInFlight without contacting the backend while
// another request is outstanding. Failures flip the state to StatusFailed and
// leave the current collection untouched.
func (c *Controller) RequestForecast(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Status == StatusLoading {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	c.state = State{Status: StatusLoading, Loading: true}
	c.mu.Unlock()

	start, end := Window(c.now(), c.days)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("requesting forecast", "start_date", start, "end_date", end)
	points, err := c.provider.Forecast(ctx, Request{StartDate: start, EndDate: end})
	if err != nil {
		c.logger.Error("failed to fetch forecast",
			"start_date", start,
			"end_date", end,
			"error", err,
		)
		c.setState(State{Status: StatusFailed, Message: FailureMessage})
		return err
	}

	pc := NewPointCollection(points)

	c.mu.Lock()
	c.current = &pc
	subs := make([]func(PointCollection), 0, len(c.subs))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	c.mu.Unlock()

	// Still Loading here, so no other request can publish in between.
	for _, fn := range subs {
		fn(pc)
	}

	c.setState(State{Status: StatusSucceeded})
	c.logger.Info("forecast published", "points", pc.Len(), "start_date", start, "end_date", end)
	return nil
}

// Days is the length of the requested forecast window.
func (c *Controller) Days() int {
	return c.days
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the most recently published collection.
func (c *Controller) Current() (PointCollection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return PointCollection{}, false
	}
	return *c.current, true
}

// Subscribe registers fn for every future publication, in subscription order.
func (c *Controller) Subscribe(fn func(PointCollection)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
