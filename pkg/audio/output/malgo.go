// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Miniaudio's data callback drains the adapter directly as float32
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	filler     *byteFiller
	sampleRate int
	channels   int
	mu         sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo() Output {
	return &Malgo{}
}

// Name returns the backend name
func (m *Malgo) Name() string { return "malgo" }

// Open initializes the output device with specified format
func (m *Malgo) Open(sampleRate, channels, periodFrames int, src Source) error {
	if err := checkOpenArgs(sampleRate, channels, periodFrames, src); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return ErrAlreadyOpen
	}

	// Create malgo context if needed
	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	m.filler = newByteFiller(src, channels)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(periodFrames)
	deviceConfig.Alsa.NoMMap = 1

	filler := m.filler
	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		filler.fill(pOutputSample[:int(frameCount)*channels*bytesPerSample])
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: onSamples,
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.sampleRate = sampleRate
	m.channels = channels

	log.Printf("Audio output initialized: %dHz, %d channels, period %d frames (malgo/F32)",
		sampleRate, channels, periodFrames)

	return nil
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil && m.malgoCtx == nil {
		return ErrNotOpen
	}

	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}
