// ABOUTME: Null audio output
// ABOUTME: Pulls from the source on a wall-clock ticker for headless daemons and tests
package output

import (
	"log"
	"sync"
	"time"
)

// Null is a device-less output that consumes audio in real time
type Null struct {
	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewNull creates a new null output
func NewNull() Output {
	return &Null{}
}

// Name returns the backend name
func (n *Null) Name() string { return "null" }

// Open starts a goroutine that pulls one period per period duration
func (n *Null) Open(sampleRate, channels, periodFrames int, src Source) error {
	if err := checkOpenArgs(sampleRate, channels, periodFrames, src); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopChan != nil {
		return ErrAlreadyOpen
	}

	period := time.Duration(periodFrames) * time.Second / time.Duration(sampleRate)
	buf := make([]float32, periodFrames*channels)
	stop := make(chan struct{})
	n.stopChan = stop

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				src.Fill(buf)
			case <-stop:
				return
			}
		}
	}()

	log.Printf("Audio output initialized: %dHz, %d channels, period %d frames (null)", sampleRate, channels, periodFrames)
	return nil
}

// Close stops the pulling goroutine
func (n *Null) Close() error {
	n.mu.Lock()
	stop := n.stopChan
	n.stopChan = nil
	n.mu.Unlock()

	if stop == nil {
		return ErrNotOpen
	}
	close(stop)
	n.wg.Wait()
	return nil
}
