package solver

import (
	"container/heap"

	"github.com/san-kum/bdesim/internal/series"
)

// sourceKind tags a candidate event with the kind of series it came from.
type sourceKind uint8

const (
	kindNone sourceKind = iota // sentinel, carries no index update
	kindVariable
	kindForced
)

// event is a candidate switch: at event.time the source switch event.index
// becomes visible through delay event.delay. Events live only on the heap.
type event struct {
	time  float64
	delay int
	kind  sourceKind
	index int
}

// eventHeap orders events by time alone. Ties are broken arbitrarily; equal
// times are always coalesced by the finder so callers never observe an
// ordering among simultaneous events.
type eventHeap []event

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].time < h[j].time }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// CandidateSwitchFinder produces, in order, every time at which some delayed
// input might change the transition function's output, and keeps the
// per-delay source indices correct "as of" the most recently returned time.
// Indices only ever advance: candidate times are non-decreasing and delays
// are fixed.
type CandidateSwitchFinder struct {
	delays []float64
	end    float64
	eps    series.Tolerance

	events        eventHeap
	indices       []int
	forcedIndices []int // nil without forcing inputs
}

// NewCandidateSwitchFinder seeds the event heap with every source switch
// time shifted by every delay, drains events strictly before start so the
// indices are correct at start, and plants a sentinel at start itself so the
// initial instant is always evaluated. times and forcedTimes are merged
// switch-time axes; forcedTimes may be nil.
func NewCandidateSwitchFinder(delays []float64, times []float64, start, end float64, forcedTimes []float64, eps series.Tolerance) *CandidateSwitchFinder {
	f := &CandidateSwitchFinder{
		delays:  delays,
		end:     end,
		eps:     eps,
		indices: make([]int, len(delays)),
	}
	if forcedTimes != nil {
		f.forcedIndices = make([]int, len(delays))
	}

	for i, d := range delays {
		for j, t := range times {
			if eps.LessEq(t+d, end) {
				f.events = append(f.events, event{time: t + d, delay: i, kind: kindVariable, index: j})
			}
		}
		for j, t := range forcedTimes {
			if eps.LessEq(t+d, end) {
				f.events = append(f.events, event{time: t + d, delay: i, kind: kindForced, index: j})
			}
		}
	}
	heap.Init(&f.events)

	for len(f.events) > 0 && eps.Less(f.events[0].time, start) {
		f.popApply()
	}
	heap.Push(&f.events, event{time: start, delay: -1, kind: kindNone, index: -1})

	return f
}

// NextTime pops the earliest candidate, absorbs every further event at a
// tolerance-equal time so simultaneous switches cost one evaluation, and
// returns the coalesced time. The second result is false once the heap is
// exhausted.
func (f *CandidateSwitchFinder) NextTime() (float64, bool) {
	if len(f.events) == 0 {
		return 0, false
	}
	t := f.popApply()
	for len(f.events) > 0 && f.eps.Eq(f.events[0].time, t) {
		f.popApply()
	}
	return t, true
}

// AddNewTimes registers a freshly committed switch at time t under result
// index idx: its influence arrives one delay later on every argument slot.
func (f *CandidateSwitchFinder) AddNewTimes(t float64, idx int) {
	for i, d := range f.delays {
		if f.eps.LessEq(t+d, f.end) {
			heap.Push(&f.events, event{time: t + d, delay: i, kind: kindVariable, index: idx})
		}
	}
}

func (f *CandidateSwitchFinder) popApply() float64 {
	e := heap.Pop(&f.events).(event)
	switch e.kind {
	case kindVariable:
		f.indices[e.delay] = e.index
	case kindForced:
		f.forcedIndices[e.delay] = e.index
	}
	return e.time
}
