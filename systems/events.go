package systems

import "github.com/pthm-cable/warren/components"

// Recorder receives simulation events for statistics.
type Recorder interface {
	RecordBirth(generation int)
	RecordDeath(cause components.DeathCause, age float64)
	RecordMating(litter int)
	RecordFoodEaten(value float64)
	RecordTheft(amount float64)
	RecordFight()
	RecordBurrowDug()
	RecordDigAborted()
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) RecordBirth(int)                            {}
func (NopRecorder) RecordDeath(components.DeathCause, float64) {}
func (NopRecorder) RecordMating(int)                           {}
func (NopRecorder) RecordFoodEaten(float64)                    {}
func (NopRecorder) RecordTheft(float64)                        {}
func (NopRecorder) RecordFight()                               {}
func (NopRecorder) RecordBurrowDug()                           {}
func (NopRecorder) RecordDigAborted()                          {}
