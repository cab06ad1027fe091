package clock

import "go.uber.org/fx"

var Module = fx.Module("clock",
	fx.Provide(New),
)

// New returns the wall clock used outside tests.
func New() Clock {
	return SystemClock{}
}
