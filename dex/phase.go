package dex

import "fmt"

// Phase is the lifecycle state of a section.
type Phase uint8

const (
	PhaseOpen Phase = iota
	PhaseAddressed
	PhaseWritten
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseAddressed:
		return "addressed"
	case PhaseWritten:
		return "written"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// lifecycle is the Open -> Addressed -> Written state machine shared by
// every section. All phase checks go through it.
type lifecycle struct {
	name  string
	phase Phase
}

func (l *lifecycle) Name() string { return l.name }
func (l *lifecycle) Phase() Phase { return l.phase }

// requireOpen guards interning.
func (l *lifecycle) requireOpen(op string) error {
	if l.phase != PhaseOpen {
		return fmt.Errorf("%s: %s while %s: %w", l.name, op, l.phase, ErrUsagePhase)
	}
	return nil
}

// requireAddressed guards index and offset queries.
func (l *lifecycle) requireAddressed(op string) error {
	if l.phase == PhaseOpen {
		return fmt.Errorf("%s: %s while %s: %w", l.name, op, l.phase, ErrUsagePhase)
	}
	return nil
}

func (l *lifecycle) advance(to Phase) error {
	if l.phase+1 != to {
		return fmt.Errorf("%s: cannot move from %s to %s: %w", l.name, l.phase, to, ErrUsagePhase)
	}
	l.phase = to
	return nil
}
