package runtime

// LocalState is the subset of server state the client mirrors for
// immediate rendering: reward balances and the in-drill item counter.
type LocalState struct {
	Gems           int
	Points         int
	ItemsCompleted int
}

// Delta is one optimistic mutation of LocalState.
type Delta struct {
	Gems           int
	Points         int
	ItemsCompleted int
}

func (s LocalState) Apply(d Delta) LocalState {
	s.Gems += d.Gems
	s.Points += d.Points
	s.ItemsCompleted += d.ItemsCompleted
	return s
}

// Clamp bounds gems to [0, gemsLimit] and points/counter to >= 0, matching
// what the server will do so the optimistic render does not overshoot.
func (s LocalState) Clamp(gemsLimit int) LocalState {
	if s.Gems < 0 {
		s.Gems = 0
	}
	if s.Gems > gemsLimit {
		s.Gems = gemsLimit
	}
	if s.Points < 0 {
		s.Points = 0
	}
	if s.ItemsCompleted < 0 {
		s.ItemsCompleted = 0
	}
	return s
}

// ApplyThenMaybeRevert is the two-phase optimistic update: apply the
// delta locally, run the authoritative server call, and on failure hand
// back the pre-optimistic state unchanged. The caller renders the first
// return value either way; the error (for example an insufficient-gems
// rejection) decides which prompt to show.
func ApplyThenMaybeRevert(state LocalState, delta Delta, call func(optimistic LocalState) error) (LocalState, error) {
	optimistic := state.Apply(delta)
	if err := call(optimistic); err != nil {
		return state, err
	}
	return optimistic, nil
}
