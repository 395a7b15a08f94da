package typewriter

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPacing() Pacing {
	return Pacing{Speed: 10, NaturalVariation: false}
}

func TestQueueRevealsOneRunePerTick(t *testing.T) {
	sched := NewManualScheduler()
	var updates []string
	q := New(func(s string) { updates = append(updates, s) }, sched, fixedPacing())

	q.Enqueue("abc")
	require.Equal(t, []string{"a"}, updates)
	assert.True(t, q.Typing())

	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, "ab", q.Content())

	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, "abc", q.Content())

	sched.Advance(100 * time.Millisecond)
	assert.False(t, q.Typing())
	assert.Equal(t, []string{"a", "ab", "abc"}, updates)
}

func TestQueueChunksDoNotInterleave(t *testing.T) {
	sched := NewManualScheduler()
	q := New(nil, sched, fixedPacing())

	q.Enqueue("Hi")
	q.Enqueue(" there")
	assert.Equal(t, "H", q.Content())
	assert.Equal(t, "Hi there", q.FullContent())

	sched.RunPending(100)
	assert.Equal(t, "Hi there", q.Content())
}

func TestQueueCompleteFlushes(t *testing.T) {
	sched := NewManualScheduler()
	var last string
	calls := 0
	q := New(func(s string) { last = s; calls++ }, sched, fixedPacing())

	q.Enqueue("Hello")
	q.Enqueue(", world")
	q.Complete()

	assert.Equal(t, "Hello, world", last)
	assert.Equal(t, "Hello, world", q.Content())
	assert.Equal(t, 0, sched.Pending())

	before := calls
	sched.Advance(time.Hour)
	assert.Equal(t, before, calls, "no ticks after complete")
}

func TestQueueCancelKeepsDisplayed(t *testing.T) {
	sched := NewManualScheduler()
	q := New(nil, sched, fixedPacing())

	q.Enqueue("abcdef")
	sched.Advance(100 * time.Millisecond)
	q.Cancel()
	sched.Advance(time.Hour)

	assert.Equal(t, "ab", q.Content())
	assert.Equal(t, "abcdef", q.FullContent())

	q.Enqueue("gh")
	assert.Equal(t, "ab", q.Content(), "halted queue only buffers")

	q.Complete()
	assert.Equal(t, "abcdefgh", q.Content())
}

func TestQueueCompleteWithCallbackRunsAfterUpdate(t *testing.T) {
	sched := NewManualScheduler()
	var order []string
	q := New(func(s string) { order = append(order, "update:"+s) }, sched, fixedPacing())

	q.Enqueue("xy")
	q.CompleteWithCallback(func() { order = append(order, "done") })
	assert.Equal(t, []string{"update:x", "update:xy"}, order)

	sched.Advance(0)
	assert.Equal(t, []string{"update:x", "update:xy", "done"}, order)
}

func TestQueueResetAndImmediate(t *testing.T) {
	sched := NewManualScheduler()
	q := New(nil, sched, fixedPacing())

	q.AppendImmediate("ready ")
	q.Enqueue("go")
	q.Reset()
	assert.Empty(t, q.FullContent())
	assert.Equal(t, 0, sched.Pending())

	q.Enqueue("again")
	q.Complete()
	assert.Equal(t, "again", q.Content())
}

func TestPacing(t *testing.T) {
	p := Pacing{Speed: 20}
	assert.Equal(t, 50*time.Millisecond, p.Delay(0, 'a'))
	assert.Equal(t, 100*time.Millisecond, p.Delay(0, '.'))
	assert.Equal(t, time.Duration(0), Pacing{}.Delay(3, 'a'))

	assert.Equal(t, 0, p.Revealed("abc", -time.Millisecond))
	assert.Equal(t, 1, p.Revealed("abc", 0))
	assert.Equal(t, 2, p.Revealed("abc", 50*time.Millisecond))
	assert.Equal(t, 3, p.Revealed("abc", time.Second))
	assert.Equal(t, 100*time.Millisecond, p.Duration("abc"))

	jittered := Pacing{Speed: 20, NaturalVariation: true, Seed: 42}
	for i := 0; i < 200; i++ {
		d := jittered.Delay(i, 'a')
		assert.GreaterOrEqual(t, d, 34*time.Millisecond)
		assert.Less(t, d, 65*time.Millisecond)
		assert.Equal(t, d, jittered.Delay(i, 'a'), "delay is deterministic")
	}
	assert.NotEqual(t, jittered.Delay(1, 'a'), Pacing{Speed: 20, NaturalVariation: true, Seed: 7}.Delay(1, 'a'))
}

func TestQueueMatchesPacingRevealed(t *testing.T) {
	sched := NewManualScheduler()
	p := Pacing{Speed: 40, NaturalVariation: true, Seed: 99}
	q := New(nil, sched, p)
	text := "Hello, world. How are you?"

	q.Enqueue(text)
	for step := 0; step < 40; step++ {
		elapsed := sched.Now()
		assert.Equal(t, p.Revealed(text, elapsed), len([]rune(q.Content())), "at %v", elapsed)
		sched.Advance(7 * time.Millisecond)
	}
}

func TestTypewriterCompletenessProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	properties := gopter.NewProperties(params)

	properties.Property("complete shows every chunk in order", prop.ForAll(
		func(chunks []string, steps int, seed uint64) bool {
			sched := NewManualScheduler()
			var last string
			q := New(func(s string) { last = s }, sched, Pacing{Speed: 50, NaturalVariation: true, Seed: seed})

			for i, c := range chunks {
				q.Enqueue(c)
				if i%2 == 0 {
					sched.Advance(time.Duration(steps) * time.Millisecond)
				}
			}
			q.Complete()
			want := strings.Join(chunks, "")
			return last == want && q.Content() == want && q.FullContent() == want
		},
		gen.SliceOf(gen.AnyString()),
		gen.IntRange(0, 200),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
