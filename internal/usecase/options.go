package usecase

import "time"

// Option customizes a use case at construction time.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now; "today" for activity windows is derived from it.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
