package systems

import "github.com/pthm-cable/warren/components"

// tryEat consumes the nearest food when it is within reach.
// Energy gain is clamped to the agent's max.
func (s *BehaviorSystem) tryEat(pos *components.Position, a *components.Agent, p *percept) {
	if !p.hasFood || p.foodDist > s.cfg.Food.ConsumeDistance {
		return
	}
	switch a.State {
	case components.StateDigging, components.StateMating, components.StateSnuggling:
		return
	}

	_, f, ok := s.world.Food(p.food.ID)
	if !ok {
		p.hasFood = false
		return
	}
	value := f.Value
	a.Energy += value
	if a.Energy > a.MaxEnergy {
		a.Energy = a.MaxEnergy
	}
	s.world.RemoveFood(p.food.ID)
	s.rec.RecordFoodEaten(value)
	p.hasFood = false

	if a.State == components.StateSeekingFood {
		a.SetState(components.StateWandering)
		a.HasTarget = false
	}
}
