package transport

// timeoutState holds the mutable short timeouts and the immutable long
// timeouts and baselines shared by every handshake phase. It is reset to
// its baseline at the start of every PutCommand/GetResult/GetCommand/
// PutResult attempt and escalated on each failed iteration to prevent
// livelock, per the spec's anti-livelock discipline.
type timeoutState struct {
	putShortBase, getShortBase uint32
	putLong, getLong           uint32

	putShort, getShort uint32
}

func newTimeoutState(putShort, getShort, putLong, getLong uint32) timeoutState {
	return timeoutState{
		putShortBase: putShort,
		getShortBase: getShort,
		putLong:      putLong,
		getLong:      getLong,
	}
}

// reset restores the short timeouts to their configured baseline. Called
// at the start of every handshake attempt.
func (s *timeoutState) reset() {
	s.putShort = s.putShortBase
	s.getShort = s.getShortBase
}

// escalateGeometric multiplies both short timeouts by 3/2, capped at
// deadline. This is the master's anti-livelock rule.
func (s *timeoutState) escalateGeometric(deadline uint32) {
	s.putShort = min32(s.putShort*3/2, deadline)
	s.getShort = min32(s.getShort*3/2, deadline)
}

// escalateAdditive adds 1ms to both short timeouts, capped at deadline.
// This is the slave's anti-livelock rule, reflecting its typically
// shorter per-attempt budget.
func (s *timeoutState) escalateAdditive(deadline uint32) {
	s.putShort = min32(s.putShort+1, deadline)
	s.getShort = min32(s.getShort+1, deadline)
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
