package telemetry

import "github.com/pthm-cable/warren/components"

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	ID       int     `csv:"id"`
	Species  string  `csv:"species"`
	BornGen  int     `csv:"born"`
	DiedGen  int     `csv:"died"`
	Cause    string  `csv:"cause"`
	ParentID int     `csv:"parent"` // -1 for founders and spawned bears
	Appetite float64 `csv:"appetite"`
	Evasion  float64 `csv:"evasion"`

	Kills    int     `csv:"kills"`
	Escapes  int     `csv:"escapes"` // attacks this agent slipped away from
	Meals    int     `csv:"meals"`
	Children int     `csv:"children"`
	Gained   float64 `csv:"energy_gained"`
}

// LifetimeTracker manages per-agent lifetime statistics. Ids are reused by
// the registry, so an entry must be removed when its agent dies.
type LifetimeTracker struct {
	stats map[int]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[int]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(a *components.Agent, parentID int) {
	lt.stats[a.ID] = &LifetimeStats{
		ID:       a.ID,
		Species:  a.Species.String(),
		BornGen:  a.BornTick,
		ParentID: parentID,
		Appetite: a.Appetite(),
		Evasion:  a.Evasion(),
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id int) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them, stamped with the
// generation and cause of death.
func (lt *LifetimeTracker) Remove(id, gen int, cause string) *LifetimeStats {
	s := lt.stats[id]
	delete(lt.stats, id)
	if s != nil {
		s.DiedGen = gen
		s.Cause = cause
	}
	return s
}

// Observe updates per-agent counters from an event.
func (lt *LifetimeTracker) Observe(e Event) {
	switch e.Type {
	case EventBirth:
		if s := lt.stats[e.OtherID]; s != nil {
			s.Children++
		}
	case EventKill:
		if s := lt.stats[e.AgentID]; s != nil {
			s.Kills++
			s.Meals++
			s.Gained += e.Amount
		}
	case EventEscape:
		if s := lt.stats[e.OtherID]; s != nil {
			s.Escapes++
		}
	case EventGraze:
		if s := lt.stats[e.AgentID]; s != nil {
			s.Meals++
			s.Gained += e.Amount
		}
	}
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
