package health

import "context"

// Readiness reports whether a searchable corpus is installed.
type Readiness interface {
	Ready() bool
}

// StorePinger checks content store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}
