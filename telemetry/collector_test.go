package telemetry

import (
	"testing"

	"github.com/pthm-cable/warren/components"
)

func TestCollector_WindowAndTotals(t *testing.T) {
	c := NewCollector(5)

	c.RecordBirth(1)
	c.RecordBirth(3)
	c.RecordDeath(components.CauseStarvation, 10)
	c.RecordDeath(components.CauseOldAge, 30)
	c.RecordMating(2)
	c.RecordFoodEaten(20)
	c.RecordTheft(0.5)
	c.RecordFight()
	c.RecordBurrowDug()
	c.RecordDigAborted()

	if c.ShouldFlush(4.9) {
		t.Fatal("flush before window end")
	}
	if !c.ShouldFlush(5) {
		t.Fatal("no flush at window end")
	}

	var s Sample
	s.Add(&components.Agent{Energy: 40, MaxEnergy: 80, State: components.StateFleeing})
	stats := c.Flush(50, 5, 12, &s)

	if stats.Births != 2 || stats.StarvationDeaths != 1 || stats.OldAgeDeaths != 1 {
		t.Errorf("births/deaths = %d/%d/%d", stats.Births, stats.StarvationDeaths, stats.OldAgeDeaths)
	}
	if stats.MeanAgeAtDeath != 20 {
		t.Errorf("mean age at death = %v, want 20", stats.MeanAgeAtDeath)
	}
	if stats.Matings != 1 || stats.FoodEaten != 1 || stats.EnergyEaten != 20 || stats.Thefts != 1 || stats.Fights != 1 {
		t.Errorf("event counts wrong: %+v", stats)
	}
	if stats.MaxGeneration != 3 {
		t.Errorf("max generation = %d, want 3", stats.MaxGeneration)
	}
	if stats.Population != 1 || stats.Fleeing != 1 || stats.EnergyMean != 0.5 {
		t.Errorf("census fields wrong: population=%d fleeing=%d energy=%v", stats.Population, stats.Fleeing, stats.EnergyMean)
	}

	// Next window starts empty; totals keep accumulating
	if c.ShouldFlush(9) {
		t.Error("window did not restart")
	}
	c.RecordBirth(1)
	next := c.Flush(100, 10, 13, &s)
	if next.Births != 1 {
		t.Errorf("second window births = %d, want 1", next.Births)
	}
	if tot := c.Totals(); tot.Births != 3 || tot.Deaths() != 2 || tot.BurrowsDug != 1 {
		t.Errorf("totals = %+v", tot)
	}

	c.Reset(0)
	if c.Totals() != (EventCounts{}) {
		t.Error("reset should clear totals")
	}
}
