package game

import (
	"fmt"
	"math"

	"github.com/pthm-cable/warren/telemetry"
	"github.com/pthm-cable/warren/world"
)

// Export captures the complete simulation, including the clock and the
// random generator, so an imported copy continues identically.
func (g *Game) Export() world.State {
	s := g.world.Export()
	s.Tick = g.tick
	s.Elapsed = g.elapsed
	s.TimeOfDay = g.timeOfDay
	s.RNG = g.src.state()
	return s
}

// Import replaces the simulation with s. The state is fully validated first;
// on error the running game is left untouched. A state without RNG bytes
// keeps the current generator.
func (g *Game) Import(s world.State) error {
	var rngState []byte
	if len(s.RNG) > 0 {
		if _, err := parseRNGState(s.RNG); err != nil {
			return fmt.Errorf("%w: %v", world.ErrCorruptState, err)
		}
		rngState = s.RNG
	}

	if err := g.world.Import(s); err != nil {
		return err
	}

	if rngState != nil {
		// Already checked above
		if err := g.src.pcg.UnmarshalBinary(rngState); err != nil {
			panic(err)
		}
	}
	g.tick = s.Tick
	g.elapsed = s.Elapsed
	g.timeOfDay = math.Mod(s.TimeOfDay, 24)

	g.collector.Reset(g.elapsed)
	g.lastStats = telemetry.WindowStats{}
	return nil
}
