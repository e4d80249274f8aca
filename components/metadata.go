package components

import "fmt"

// FieldDescriptor describes an agent field for inspection panels.
type FieldDescriptor struct {
	ID     string  // Unique identifier, matched by AgentValue
	Label  string  // Display name
	Format string  // Printf format (e.g., "%.2f")
	Min    float64 // Minimum value (for bars)
	Max    float64 // Maximum value (for bars)
	IsBar  bool    // True to render as progress bar
	Group  string  // Logical grouping
}

// AgentFieldDescriptors returns metadata for inspectable Agent fields.
// Field IDs must match cases in AgentValue().
func AgentFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "state", Label: "State", Format: "%s", Group: "status"},
		{ID: "energy", Label: "Energy", Format: "%.0f", Min: 0, Max: 150, IsBar: true, Group: "status"},
		{ID: "age", Label: "Age", Format: "%.0fs", Group: "status"},
		{ID: "fear", Label: "Fear", Format: "%.0f", Min: 0, Max: 100, IsBar: true, Group: "status"},
		{ID: "generation", Label: "Generation", Format: "%d", Group: "lineage"},
		{ID: "children", Label: "Children", Format: "%d", Group: "lineage"},
		{ID: "burrow", Label: "Burrow", Format: "%d", Group: "shelter"},
		{ID: "selfishness", Label: "Selfish", Format: "%.2f", Min: 0, Max: 1, IsBar: true, Group: "genome"},
		{ID: "speed", Label: "Speed", Format: "%.2f", Min: 0.5, Max: 3, IsBar: true, Group: "genome"},
		{ID: "size", Label: "Size", Format: "%.2f", Min: 0.5, Max: 2, IsBar: true, Group: "genome"},
		{ID: "fertility", Label: "Fertility", Format: "%.2f", Min: 0, Max: 1, IsBar: true, Group: "genome"},
		{ID: "mutation_rate", Label: "Mutation", Format: "%.3f", Min: 0.01, Max: 0.2, IsBar: true, Group: "genome"},
	}
}

// AgentValue returns the raw value of a described field.
func AgentValue(a *Agent, id string) any {
	switch id {
	case "state":
		return a.State.String()
	case "energy":
		return a.Energy
	case "age":
		return a.Age
	case "fear":
		return a.Fear
	case "generation":
		return a.Generation
	case "children":
		return a.Children
	case "burrow":
		return a.OwnedBurrowID
	case "selfishness":
		return a.Genome.Selfishness
	case "speed":
		return a.Genome.Speed
	case "size":
		return a.Genome.Size
	case "fertility":
		return a.Genome.Fertility
	case "mutation_rate":
		return a.Genome.MutationRate
	}
	return nil
}

// InspectField is a formatted label/value pair.
type InspectField struct {
	Group string
	Label string
	Value string
}

// Inspect formats every described field of an agent.
func Inspect(a *Agent) []InspectField {
	descs := AgentFieldDescriptors()
	out := make([]InspectField, 0, len(descs))
	for _, d := range descs {
		out = append(out, InspectField{
			Group: d.Group,
			Label: d.Label,
			Value: fmt.Sprintf(d.Format, AgentValue(a, d.ID)),
		})
	}
	return out
}
