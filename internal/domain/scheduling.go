package domain

// SchedulingState is produced by an external scheduler and carried through
// untouched. Nothing in this module derives it.
type SchedulingState struct {
	Type SchedulingStateType
}

// SchedulingStateOrDefault returns s, or a "no scheduled" state when s is nil.
func SchedulingStateOrDefault(s *SchedulingState) SchedulingState {
	if s == nil {
		return SchedulingState{Type: SchedulingNone}
	}
	return *s
}
