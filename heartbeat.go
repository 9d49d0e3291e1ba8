// FILE: lixenwraith/cclog/heartbeat.go
package cclog

import (
	"strconv"
	"sync/atomic"
	"time"
)

// heartbeat periodically reports a registry's counters as a single line
type heartbeat struct {
	reg      *Registry
	target   MessageWriter
	interval time.Duration
	sequence atomic.Uint64
	buf      []byte // reused, only touched by the flusher goroutine
}

// emit writes one heartbeat record. A detached registry skips the beat.
func (h *heartbeat) emit() error {
	snap, err := h.reg.Snapshot()
	if err != nil {
		return err
	}
	seq := h.sequence.Add(1)

	h.buf = appendHeartbeat(h.buf[:0], seq, snap)
	if _, err := h.target.Write(h.buf); err != nil {
		return fmtErrorf("heartbeat write failed: %w", err)
	}
	return nil
}

// appendHeartbeat formats the heartbeat line onto dst
func appendHeartbeat(dst []byte, seq uint64, s MetricsSnapshot) []byte {
	dst = append(dst, "cclog heartbeat seq="...)
	dst = strconv.AppendUint(dst, seq, 10)
	dst = append(dst, " creations="...)
	dst = strconv.AppendUint(dst, s.Creations, 10)
	dst = append(dst, " destructions="...)
	dst = strconv.AppendUint(dst, s.Destructions, 10)
	dst = append(dst, " active="...)
	dst = strconv.AppendInt(dst, s.Active, 10)
	dst = append(dst, " opens="...)
	dst = strconv.AppendUint(dst, s.Opens, 10)
	dst = append(dst, " writes="...)
	dst = strconv.AppendUint(dst, s.Writes, 10)
	dst = append(dst, " skipped_messages="...)
	dst = strconv.AppendUint(dst, s.SkippedMessages, 10)
	dst = append(dst, " skipped_bytes="...)
	dst = strconv.AppendUint(dst, s.SkippedBytes, 10)
	return append(dst, '\n')
}
