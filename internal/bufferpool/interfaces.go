package bufferpool

// Replacer selects a victim frame index for the buffer manager's clock
// replacement policy. frameID values range over [0, N) independent of
// which (file, pageNo) currently occupies them — the Manager is the only
// component that knows that binding.
type Replacer interface {
	// RecordAccess marks frameID as freshly touched (sets its CLOCK
	// reference bit, and marks it present if this is the first touch).
	RecordAccess(frameID int)
	// SetEvictable marks whether frameID may be chosen as a victim, i.e.
	// whether its pin count is currently zero.
	SetEvictable(frameID int, evictable bool)
	// Evict picks and removes a victim frame, or reports BUFFEREXCEEDED
	// (ok=false) once pin-skips exceed capacity.
	Evict() (frameID int, ok bool)
	// Remove drops frameID from tracking outside of Evict (e.g. on
	// DisposePage or FlushFile).
	Remove(frameID int)
	Size() int
}
