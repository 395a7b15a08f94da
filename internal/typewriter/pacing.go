package typewriter

import "time"

const (
	DefaultSpeed = 30.0

	jitterMin   = 0.7
	jitterRange = 0.6
)

// Pacing decides how long each revealed rune stays on screen before the next.
// Delay is a pure function of the seed, the rune's position and the rune
// itself, so a fixed seed reproduces the same animation.
type Pacing struct {
	// Speed is the base rate in runes per second. Zero or negative reveals
	// everything without delay.
	Speed float64
	// NaturalVariation scales each delay by a factor in [0.7, 1.3).
	NaturalVariation bool
	Seed             uint64
}

func DefaultPacing() Pacing {
	return Pacing{Speed: DefaultSpeed, NaturalVariation: true}
}

// Delay returns the pause after revealing r at index.
func (p Pacing) Delay(index int, r rune) time.Duration {
	if p.Speed <= 0 {
		return 0
	}
	d := float64(time.Second) / p.Speed
	if p.NaturalVariation {
		d *= jitterMin + jitterRange*unitFloat(p.Seed, uint64(index))
	}
	if isSentencePause(r) {
		d *= 2
	}
	return time.Duration(d)
}

// Revealed returns how many runes of text are visible after elapsed, the
// first rune being shown at zero.
func (p Pacing) Revealed(text string, elapsed time.Duration) int {
	if elapsed < 0 {
		return 0
	}
	var (
		at time.Duration
		n  int
	)
	for i, r := range []rune(text) {
		if at > elapsed {
			break
		}
		n++
		at += p.Delay(i, r)
	}
	return n
}

// Duration is the time until the last rune of text is shown.
func (p Pacing) Duration(text string) time.Duration {
	runes := []rune(text)
	var total time.Duration
	for i := 0; i < len(runes)-1; i++ {
		total += p.Delay(i, runes[i])
	}
	return total
}

func isSentencePause(r rune) bool {
	switch r {
	case '.', ',', '!', '?':
		return true
	}
	return false
}

// unitFloat maps (seed, index) to [0, 1) with splitmix64.
func unitFloat(seed, index uint64) float64 {
	z := seed + (index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return float64(z>>11) / float64(1<<53)
}
