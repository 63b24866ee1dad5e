// Package storeopt holds the collaborators every in-process store is built with.
package storeopt

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DateLayout is the calendar-date format stored on records such as Staff.LastWorkDate.
const DateLayout = "2006-01-02"

// Recorder observes the outcome of store mutations.
type Recorder interface {
	Mutation(store, op string, err error)
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string, string, error) {}

// Options are the resolved collaborators of a store.
type Options struct {
	Now      func() time.Time
	NewID    func() string
	Logger   *zap.Logger
	Recorder Recorder
	Location *time.Location
}

// Option customises Options.
type Option func(*Options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *Options) {
		if newID != nil {
			o.NewID = newID
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithRecorder sets the mutation recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Options) {
		if r != nil {
			o.Recorder = r
		}
	}
}

// WithLocation sets the time zone that defines a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(o *Options) {
		if loc != nil {
			o.Location = loc
		}
	}
}

// Apply resolves opts over the defaults.
func Apply(opts ...Option) Options {
	o := Options{
		Now:      time.Now,
		NewID:    uuid.NewString,
		Logger:   zap.NewNop(),
		Recorder: nopRecorder{},
		Location: time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Clock returns the current time in the configured location.
func (o Options) Clock() time.Time {
	return o.Now().In(o.Location)
}

// DateOf formats t as a calendar date in the configured location.
func (o Options) DateOf(t time.Time) string {
	return t.In(o.Location).Format(DateLayout)
}

// Today returns the current calendar date.
func (o Options) Today() string {
	return o.DateOf(o.Now())
}

// Observe records and logs the outcome of a mutation.
func (o Options) Observe(store, op string, err error, fields ...zap.Field) {
	o.Recorder.Mutation(store, op, err)
	fields = append(fields, zap.String("store", store), zap.String("op", op))
	if err != nil {
		o.Logger.Debug("mutation rejected", append(fields, zap.Error(err))...)
		return
	}
	o.Logger.Debug("mutation applied", fields...)
}
