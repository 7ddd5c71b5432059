package queue

import (
	"container/heap"
	"slices"
	"time"

	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
)

// Queue holds pending alarms keyed by (fire time, sequence).
type Queue struct {
	// items is the heap storage.
	items alarmHeap
	// seq is the last sequence number handed out.
	seq uint64
}

// New returns an empty queue.
func New() *Queue {
	return new(Queue)
}

// Insert adds an alarm and returns its handle. Past fire times are accepted
// and become due immediately.
func (q *Queue) Insert(fireTime time.Time, label string, repeat bool) domain.Handle {
	q.seq++

	a := domain.Alarm{
		Handle: domain.Handle{FireTime: fireTime, Sequence: q.seq},
		Label:  label,
		Repeat: repeat,
	}

	heap.Push(&q.items, a)

	return a.Handle
}

// Cancel removes the earliest inserted alarm due exactly at fireTime.
// Other alarms sharing that minute stay queued.
func (q *Queue) Cancel(fireTime time.Time) (domain.Alarm, bool) {
	idx := -1

	for i, a := range q.items {
		if !a.FireTime.Equal(fireTime) {
			continue
		}

		if idx < 0 || a.Sequence < q.items[idx].Sequence {
			idx = i
		}
	}

	if idx < 0 {
		return domain.Alarm{}, false
	}

	removed, _ := heap.Remove(&q.items, idx).(domain.Alarm)

	return removed, true
}

// PeekNext returns the earliest alarm without removing it.
func (q *Queue) PeekNext() (domain.Alarm, error) {
	if len(q.items) == 0 {
		return domain.Alarm{}, domain.ErrEmptyQueue
	}

	return q.items[0], nil
}

// PopNext removes and returns the earliest alarm.
func (q *Queue) PopNext() (domain.Alarm, error) {
	if len(q.items) == 0 {
		return domain.Alarm{}, domain.ErrEmptyQueue
	}

	a, _ := heap.Pop(&q.items).(domain.Alarm)

	return a, nil
}

// Snapshot returns every pending alarm in firing order. The queue is not modified.
func (q *Queue) Snapshot() []domain.Alarm {
	out := slices.Clone(q.items)
	if out == nil {
		out = []domain.Alarm{}
	}

	slices.SortFunc(out, func(a, b domain.Alarm) int {
		switch {
		case a.Handle.Less(b.Handle):
			return -1
		case b.Handle.Less(a.Handle):
			return 1
		default:
			return 0
		}
	})

	return out
}

// Len returns the number of pending alarms.
func (q *Queue) Len() int {
	return len(q.items)
}

// alarmHeap implements heap.Interface over alarms.
type alarmHeap []domain.Alarm

func (h alarmHeap) Len() int { return len(h) }

func (h alarmHeap) Less(i, j int) bool { return h[i].Handle.Less(h[j].Handle) }

func (h alarmHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *alarmHeap) Push(x any) {
	a, _ := x.(domain.Alarm)
	*h = append(*h, a)
}

func (h *alarmHeap) Pop() any {
	old := *h
	n := len(old)
	a := old[n-1]
	old[n-1] = domain.Alarm{}
	*h = old[:n-1]

	return a
}
