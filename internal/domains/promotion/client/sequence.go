package client

import "sync/atomic"

// SequenceTracker numbers evaluation requests from one register. Only the
// response to the most recently issued request may be displayed.
type SequenceTracker struct {
	latest atomic.Uint64
}

// Next issues a new sequence number. It supersedes every earlier one.
func (s *SequenceTracker) Next() uint64 {
	return s.latest.Add(1)
}

// IsLatest reports whether seq is still the newest issued number.
func (s *SequenceTracker) IsLatest(seq uint64) bool {
	return s.latest.Load() == seq
}
