package core

import (
	"sync/atomic"
	"time"
)

// loopScheduler runs timer callbacks on the service event loop, so the
// typewriter and the init step timer never race with stream events.
type loopScheduler struct {
	post func(func())
}

func (s loopScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	var stopped atomic.Bool
	timer := time.AfterFunc(d, func() {
		s.post(func() {
			if !stopped.Load() {
				f()
			}
		})
	})
	return func() bool {
		stopped.Store(true)
		return timer.Stop()
	}
}
