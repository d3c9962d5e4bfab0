package memory

import "sync/atomic"

// sequence hands out increasing identifiers, mirroring auto-increment keys.
type sequence struct {
	last atomic.Int64
}

func (s *sequence) next() int64 {
	return s.last.Add(1)
}
