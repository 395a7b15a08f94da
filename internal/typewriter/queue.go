package typewriter

import "strings"

// Queue reveals enqueued text one rune at a time through onUpdate.
//
// Chunks animate strictly in enqueue order. A Queue is not safe for
// concurrent use: the Scheduler must run callbacks on the goroutine that owns
// the queue.
type Queue struct {
	onUpdate func(string)
	sched    Scheduler
	pacing   Pacing

	displayed strings.Builder
	current   []rune
	pos       int
	pending   []string
	index     int

	typing bool
	halted bool
	stop   func() bool
	gen    int
}

func New(onUpdate func(string), sched Scheduler, pacing Pacing) *Queue {
	if sched == nil {
		sched = RealScheduler{}
	}
	if onUpdate == nil {
		onUpdate = func(string) {}
	}
	return &Queue{onUpdate: onUpdate, sched: sched, pacing: pacing}
}

// Enqueue appends text and starts animating if idle. After Cancel the text
// is only buffered until Complete.
func (q *Queue) Enqueue(text string) {
	if text == "" {
		return
	}
	q.pending = append(q.pending, text)
	if !q.typing && !q.halted {
		q.typing = true
		q.tick(q.gen)
	}
}

// AppendImmediate shows text at once, bypassing the animation.
func (q *Queue) AppendImmediate(text string) {
	if text == "" {
		return
	}
	q.displayed.WriteString(text)
	q.onUpdate(q.displayed.String())
}

// Cancel stops the animation and keeps what is already displayed.
func (q *Queue) Cancel() {
	q.stopTimer()
	q.typing = false
	q.halted = true
}

// Complete flushes the in-flight chunk and every queued chunk, then reports
// the final content once.
func (q *Queue) Complete() {
	q.stopTimer()
	if q.pos < len(q.current) {
		q.displayed.WriteString(string(q.current[q.pos:]))
	}
	for _, text := range q.pending {
		q.displayed.WriteString(text)
	}
	q.current, q.pos, q.pending = nil, 0, nil
	q.typing = false
	q.onUpdate(q.displayed.String())
}

// CompleteWithCallback completes and runs cb on the next scheduler turn, after
// the final update has been delivered.
func (q *Queue) CompleteWithCallback(cb func()) {
	q.Complete()
	if cb != nil {
		q.sched.AfterFunc(0, cb)
	}
}

// Reset discards all content and makes the queue reusable.
func (q *Queue) Reset() {
	q.stopTimer()
	q.displayed.Reset()
	q.current, q.pos, q.pending = nil, 0, nil
	q.index = 0
	q.typing, q.halted = false, false
}

// Content returns the displayed text.
func (q *Queue) Content() string {
	return q.displayed.String()
}

// FullContent returns displayed plus not yet displayed text.
func (q *Queue) FullContent() string {
	var b strings.Builder
	b.WriteString(q.displayed.String())
	if q.pos < len(q.current) {
		b.WriteString(string(q.current[q.pos:]))
	}
	for _, text := range q.pending {
		b.WriteString(text)
	}
	return b.String()
}

// Typing reports whether an animation is in flight.
func (q *Queue) Typing() bool {
	return q.typing
}

func (q *Queue) tick(gen int) {
	if gen != q.gen || !q.typing {
		return
	}
	if q.pos >= len(q.current) {
		if len(q.pending) == 0 {
			q.current, q.pos = nil, 0
			q.typing = false
			q.stop = nil
			return
		}
		q.current, q.pos = []rune(q.pending[0]), 0
		q.pending = q.pending[1:]
	}

	r := q.current[q.pos]
	q.pos++
	q.displayed.WriteRune(r)
	delay := q.pacing.Delay(q.index, r)
	q.index++

	q.stop = q.sched.AfterFunc(delay, func() { q.tick(gen) })
	q.onUpdate(q.displayed.String())
}

func (q *Queue) stopTimer() {
	if q.stop != nil {
		q.stop()
		q.stop = nil
	}
	q.gen++
}
