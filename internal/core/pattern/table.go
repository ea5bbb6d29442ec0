package pattern

import "fmt"

// Table maps pattern names to patterns.
type Table struct {
	patterns map[string]Pattern
	order    []string
}

// NewTable validates and registers the provided patterns in order.
func NewTable(patterns ...Pattern) (*Table, error) {
	table := &Table{patterns: make(map[string]Pattern, len(patterns))}
	for _, pattern := range patterns {
		if err := table.add(pattern); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Presets returns the built-in patterns.
func Presets() []Pattern {
	return []Pattern{
		{
			Name:        "1:1 Balance",
			Ratios:      []float64{1, 1},
			Phases:      []PhaseName{Inhale, Exhale},
			Description: "Inhale - Exhale. Recommended tempo: 5.5 seconds.",
		},
		{
			Name:        "1:2 Relax",
			Ratios:      []float64{1, 2},
			Phases:      []PhaseName{Inhale, Exhale},
			Description: "Inhale - Extended exhale.",
		},
		{
			Name:        "1:1:1 Triangle 1",
			Ratios:      []float64{1, 1, 1},
			Description: "Inhale - Hold - Exhale.",
		},
		{
			Name:        "1:1:1 Triangle 2",
			Ratios:      []float64{1, 1, 1},
			Phases:      []PhaseName{Inhale, Exhale, Hold},
			Description: "Inhale - Exhale - Hold.",
		},
		{
			Name:        "1:1:1:1 Box",
			Ratios:      []float64{1, 1, 1, 1},
			Description: "Inhale - Hold - Exhale - Hold.",
		},
		{
			Name:        "2:5 Perform",
			Ratios:      []float64{1, 2.5},
			Phases:      []PhaseName{Inhale, Exhale},
			Description: "Inhale - Extended exhale. Ideal for exercise.",
		},
		{
			Name:        "1:4:2 Calm",
			Ratios:      []float64{1, 4, 2},
			Description: "Inhale - Extra long hold - Extended exhale.",
		},
		{
			Name:        "1:4:2:2 Unwind",
			Ratios:      []float64{1, 4, 2, 2},
			Description: "Inhale - Extra long hold - Extended exhale - Extended hold.",
		},
		{
			Name:        "4:7:8 Dream",
			Ratios:      []float64{1, 1.75, 2},
			Description: "Inhale - Extended hold - Extended exhale. Recommended for falling asleep.",
		},
	}
}

// DefaultTable returns a table holding the built-in presets.
func DefaultTable() *Table {
	table, err := NewTable(Presets()...)
	if err != nil {
		panic(err)
	}
	return table
}

// DefaultName is the pattern selected when nothing else is configured.
const DefaultName = "1:1 Balance"

// Lookup returns the named pattern.
func (table *Table) Lookup(name string) (Pattern, error) {
	pattern, ok := table.patterns[name]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	return pattern, nil
}

// Describe returns the description of name, or "" when it is unknown.
func (table *Table) Describe(name string) string {
	return table.patterns[name].Description
}

// Names returns registered names in registration order.
func (table *Table) Names() []string {
	return append([]string(nil), table.order...)
}

// Merge returns a new table with extra patterns appended. Extra patterns
// replace built-ins of the same name.
func (table *Table) Merge(extra ...Pattern) (*Table, error) {
	merged := &Table{patterns: make(map[string]Pattern, len(table.patterns)+len(extra))}
	replaced := make(map[string]Pattern, len(extra))
	for _, pattern := range extra {
		if err := pattern.Validate(); err != nil {
			return nil, err
		}
		if _, dup := replaced[pattern.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidPattern, pattern.Name)
		}
		replaced[pattern.Name] = pattern
	}
	for _, name := range table.order {
		if override, ok := replaced[name]; ok {
			merged.patterns[name] = override
			merged.order = append(merged.order, name)
			delete(replaced, name)
			continue
		}
		merged.patterns[name] = table.patterns[name]
		merged.order = append(merged.order, name)
	}
	for _, pattern := range extra {
		if _, pending := replaced[pattern.Name]; pending {
			merged.patterns[pattern.Name] = pattern
			merged.order = append(merged.order, pattern.Name)
		}
	}
	return merged, nil
}

func (table *Table) add(pattern Pattern) error {
	if err := pattern.Validate(); err != nil {
		return err
	}
	if _, exists := table.patterns[pattern.Name]; exists {
		return fmt.Errorf("%w: duplicate name %q", ErrInvalidPattern, pattern.Name)
	}
	table.patterns[pattern.Name] = pattern
	table.order = append(table.order, pattern.Name)
	return nil
}
