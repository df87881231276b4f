package strategy

import (
	"math"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/zobrist"
)

const (
	minCachePowerOf2 = 10
	maxCachePowerOf2 = 22
)

type statsEntry struct {
	key   uint64
	black BoardStats
	red   BoardStats
}

var statsEntrySize = int(unsafe.Sizeof(statsEntry{}))

// StatsCache memoizes BoardStats for both colors by position key. The same
// positions come up many times in one search, and computing frozen and
// pinned pieces is the expensive part of an assessment.
type StatsCache struct {
	sync.RWMutex
	table    []statsEntry
	sizeMask uint64
	zobrist  *zobrist.Zobrist

	lookups atomic.Uint64
	hits    atomic.Uint64
	created atomic.Uint64
}

// GlobalStatsCache is shared by every strategy. It is disabled until Reset
// is called with a positive fraction.
var GlobalStatsCache = &StatsCache{}

// Reset sizes the cache to a fraction of system memory and empties it. A
// fraction of zero or less disables the cache; every lookup then computes
// the stats directly.
func (t *StatsCache) Reset(fractionOfMemory float64) {
	t.Lock()
	defer t.Unlock()
	t.lookups.Store(0)
	t.hits.Store(0)
	t.created.Store(0)
	if fractionOfMemory <= 0 {
		t.table = nil
		log.Info().Msg("stats-cache-disabled")
		return
	}
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(statsEntrySize))
	sizePowerOf2 := minCachePowerOf2
	if desiredNElems > 1 {
		sizePowerOf2 = max(minCachePowerOf2, min(maxCachePowerOf2, int(math.Log2(desiredNElems))))
	}

	numElems := 1 << sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	if t.table != nil && len(t.table) == numElems {
		clear(t.table)
	} else {
		t.table = make([]statsEntry, numElems)
	}
	if t.zobrist == nil {
		t.zobrist = zobrist.New()
	}
	log.Info().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*statsEntrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("stats-cache-size")
}

// Stats returns the black and red stats for b.
func (t *StatsCache) Stats(b *board.Board) (BoardStats, BoardStats) {
	t.RLock()
	table, mask, z := t.table, t.sizeMask, t.zobrist
	t.RUnlock()
	if table == nil {
		return GetStats(b, board.Black), GetStats(b, board.Red)
	}
	// side to move does not affect the stats
	key := z.Hash(b, board.Black)
	idx := key & mask
	t.lookups.Add(1)

	t.RLock()
	e := table[idx]
	t.RUnlock()
	if e.key == key {
		t.hits.Add(1)
		return e.black, e.red
	}

	e = statsEntry{key: key, black: GetStats(b, board.Black), red: GetStats(b, board.Red)}
	t.Lock()
	table[idx] = e
	t.Unlock()
	t.created.Add(1)
	return e.black, e.red
}

// Counters returns lookups, hits, and entries created since the last Reset.
func (t *StatsCache) Counters() (uint64, uint64, uint64) {
	return t.lookups.Load(), t.hits.Load(), t.created.Load()
}
