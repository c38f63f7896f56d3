// Package telemetry provides ecosystem health tracking, bookmarking and CSV output.
package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/warren/components"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventKill
	EventEscape
	EventGraze
)

func (t EventType) String() string {
	switch t {
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	case EventKill:
		return "kill"
	case EventEscape:
		return "escape"
	case EventGraze:
		return "graze"
	default:
		return "unknown"
	}
}

// DeathCause says why an agent left the population.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseOldAge
	CauseStarvation
	CauseEaten // only used for lifetime records; kills are reported as EventKill
)

func (c DeathCause) String() string {
	switch c {
	case CauseOldAge:
		return "old_age"
	case CauseStarvation:
		return "starvation"
	case CauseEaten:
		return "eaten"
	default:
		return "none"
	}
}

// Event is a single thing that happened to an agent during a tick.
type Event struct {
	Type       EventType
	Generation int
	AgentID    int
	Species    components.Species

	// Optional fields depending on event type
	OtherID      int                // prey for kill/escape, parent for birth
	OtherSpecies components.Species // prey species for kill/escape
	MateID       int                // birth only; -1 for genome-less births
	Cause        DeathCause
	Amount       float64 // energy gained for kill/graze
}

// NewBirthEvent creates a birth event. mateID is -1 when no mate contributed genes.
func NewBirthEvent(gen, childID, parentID, mateID int, s components.Species) Event {
	return Event{
		Type:       EventBirth,
		Generation: gen,
		AgentID:    childID,
		Species:    s,
		OtherID:    parentID,
		MateID:     mateID,
	}
}

// NewDeathEvent creates a death event for an agent that aged out or starved.
func NewDeathEvent(gen, id int, s components.Species, cause DeathCause) Event {
	return Event{
		Type:       EventDeath,
		Generation: gen,
		AgentID:    id,
		Species:    s,
		Cause:      cause,
	}
}

// NewKillEvent creates a kill event.
func NewKillEvent(gen, predatorID int, predator components.Species, preyID int, prey components.Species, gained float64) Event {
	return Event{
		Type:         EventKill,
		Generation:   gen,
		AgentID:      predatorID,
		Species:      predator,
		OtherID:      preyID,
		OtherSpecies: prey,
		Amount:       gained,
	}
}

// NewEscapeEvent creates an event for prey that evaded an attack.
func NewEscapeEvent(gen, predatorID int, predator components.Species, preyID int, prey components.Species) Event {
	return Event{
		Type:         EventEscape,
		Generation:   gen,
		AgentID:      predatorID,
		Species:      predator,
		OtherID:      preyID,
		OtherSpecies: prey,
	}
}

// NewGrazeEvent creates an event for a rabbit eating grass.
func NewGrazeEvent(gen, rabbitID int, gained float64) Event {
	return Event{
		Type:       EventGraze,
		Generation: gen,
		AgentID:    rabbitID,
		Species:    components.Rabbit,
		Amount:     gained,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.Int("generation", e.Generation),
		slog.Int("id", e.AgentID),
		slog.String("species", e.Species.String()),
	}
	switch e.Type {
	case EventBirth:
		attrs = append(attrs, slog.Int("parent", e.OtherID), slog.Int("mate", e.MateID))
	case EventDeath:
		attrs = append(attrs, slog.String("cause", e.Cause.String()))
	case EventKill, EventEscape:
		attrs = append(attrs, slog.Int("prey", e.OtherID), slog.String("prey_species", e.OtherSpecies.String()))
	}
	if e.Amount != 0 {
		attrs = append(attrs, slog.Float64("gained", e.Amount))
	}
	return slog.GroupValue(attrs...)
}
