// Package wavwriter records the machine sound output as a WAV file.
// The audio data is buffered in memory and written to disk when the
// writer is closed.
package wavwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/retroenv/retrogolib/log"
)

const (
	// SampleRate of the written file in Hz.
	SampleRate = 44100
	// ToneFrequency of the square wave in Hz that is written while the sound timer is active.
	ToneFrequency = 440

	bitDepth  = 16
	channels  = 1
	amplitude = 0x2000
	pcmFormat = 1
)

// WavWriter converts sound timer activity per timer tick to PCM samples.
type WavWriter struct {
	logger         *log.Logger
	filename       string
	samplesPerTick int
	position       int
	buffer         []int
}

// New returns a writer for the given file name. tickRate is the number of timer
// ticks per second.
func New(logger *log.Logger, filename string, tickRate int) (*WavWriter, error) {
	if tickRate <= 0 || tickRate > SampleRate {
		return nil, fmt.Errorf("invalid tick rate %d", tickRate)
	}
	return &WavWriter{
		logger:         logger,
		filename:       filename,
		samplesPerTick: SampleRate / tickRate,
	}, nil
}

// Tick appends the samples for one timer tick. A square wave is generated while
// sounding is set, silence otherwise.
func (w *WavWriter) Tick(sounding bool) {
	halfPeriod := SampleRate / ToneFrequency / 2

	for range w.samplesPerTick {
		sample := 0
		if sounding {
			sample = amplitude
			if (w.position/halfPeriod)%2 == 1 {
				sample = -amplitude
			}
		}
		w.buffer = append(w.buffer, sample)
		w.position++
	}
}

// Samples returns the number of buffered samples.
func (w *WavWriter) Samples() int {
	return len(w.buffer)
}

// Encode writes the buffered samples as WAV data.
func (w *WavWriter) Encode(ws io.WriteSeeker) error {
	enc := wav.NewEncoder(ws, SampleRate, bitDepth, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  SampleRate,
		},
		Data:           w.buffer,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing encoder: %w", err)
	}
	return nil
}

// Close writes the buffered audio to the output file.
func (w *WavWriter) Close() (rerr error) {
	f, err := os.Create(w.filename)
	if err != nil {
		return fmt.Errorf("creating wav file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("closing wav file: %w", err)
		}
	}()

	w.logger.Debug("Writing audio",
		log.String("file", w.filename),
		log.Int("samples", len(w.buffer)))
	return w.Encode(f)
}
