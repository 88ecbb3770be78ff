// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDevice replays a mono 16-bit WAV file as if it were a live input.
// The file's sample rate must match the pipeline's; nothing is resampled.
type WAVDevice struct {
	path       string
	sampleRate float64
	loop       bool
	pacer      *pacer

	file    *os.File
	decoder *wav.Decoder
	pcm     *audio.IntBuffer
}

// NewWAVDevice prepares a replay of path. With loop set the file restarts
// at its end; otherwise the end of the file is reported as io.EOF. When
// realtime is set, reads are paced to frameSize/sampleRate seconds each.
func NewWAVDevice(path string, sampleRate float64, frameSize int, loop, realtime bool) *WAVDevice {
	return &WAVDevice{
		path:       path,
		sampleRate: sampleRate,
		loop:       loop,
		pacer:      newPacer(frameSize, sampleRate, realtime),
	}
}

// Open checks the file format and positions the decoder at the first
// sample.
func (d *WAVDevice) Open() error {
	f, err := os.Open(d.path)
	if err != nil {
		return err
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return fmt.Errorf("%s: not a valid WAV file", d.path)
	}
	switch {
	case dec.NumChans != 1:
		err = fmt.Errorf("%s: expected mono, got %d channels", d.path, dec.NumChans)
	case dec.BitDepth != 16:
		err = fmt.Errorf("%s: expected 16-bit samples, got %d-bit", d.path, dec.BitDepth)
	case float64(dec.SampleRate) != d.sampleRate:
		err = fmt.Errorf("%s: sample rate %d Hz does not match %g Hz", d.path, dec.SampleRate, d.sampleRate)
	}
	if err != nil {
		f.Close()
		return err
	}

	d.file = f
	if err := d.rewind(); err != nil {
		d.Close()
		return err
	}
	d.pacer.reset()
	return nil
}

// rewind restarts decoding from the first PCM sample.
func (d *WAVDevice) rewind() error {
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", d.path, err)
	}
	d.decoder = wav.NewDecoder(d.file)
	if err := d.decoder.FwdToPCM(); err != nil {
		return fmt.Errorf("failed to find PCM data in %s: %w", d.path, err)
	}
	return nil
}

// Read fills buf with the next samples, looping or failing with io.EOF at
// the end of the file.
func (d *WAVDevice) Read(buf []int16) error {
	if d.decoder == nil {
		return errors.New("device not open")
	}
	if d.pcm == nil || cap(d.pcm.Data) < len(buf) {
		d.pcm = &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: int(d.sampleRate)},
			Data:           make([]int, len(buf)),
			SourceBitDepth: 16,
		}
	}

	filled := 0
	rewound := false
	for filled < len(buf) {
		d.pcm.Data = d.pcm.Data[:len(buf)-filled]
		n, err := d.decoder.PCMBuffer(d.pcm)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", d.path, err)
		}
		for i := range n {
			buf[filled+i] = int16(d.pcm.Data[i])
		}
		filled += n

		if n > 0 {
			rewound = false
			continue
		}
		// End of data. A file with no samples at all would rewind forever.
		if !d.loop || rewound {
			return fmt.Errorf("%s: %w", d.path, io.EOF)
		}
		if err := d.rewind(); err != nil {
			return err
		}
		rewound = true
	}

	d.pacer.wait()
	return nil
}

// Close releases the file. It is safe to call more than once.
func (d *WAVDevice) Close() error {
	d.decoder = nil
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
