// Package scheduler runs small periodic maintenance tasks.
package scheduler

import (
	"sync"
	"time"
)

// Job is a cancellable periodic task: fn runs once after initialDelay, then
// every interval until Stop is called.
type Job struct {
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Start launches the job. fn must return; a run that overlaps the next tick
// simply delays it.
func Start(initialDelay, interval time.Duration, fn func()) *Job {
	j := &Job{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(j.done)

		delay := time.NewTimer(initialDelay)
		defer delay.Stop()

		select {
		case <-delay.C:
		case <-j.stop:
			return
		}
		fn()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn()
			case <-j.stop:
				return
			}
		}
	}()

	return j
}

// Stop cancels the job and waits for any in-flight run to finish.
// Safe to call more than once.
func (j *Job) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
	<-j.done
}
