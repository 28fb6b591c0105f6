package activitylog

import "time"

// Option applies a configuration option to the Buffer.
type Option func(*Buffer)

// WithCapacity sets how many entries are retained.
func WithCapacity(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithClock sets the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		if now != nil {
			b.now = now
		}
	}
}
