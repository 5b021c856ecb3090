// This file is part of Mockingboard.
//
// Mockingboard is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mockingboard is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Mockingboard.  If not, see <https://www.gnu.org/licenses/>.

// Package wavwriter allows writing of card audio to disk as a WAV file.
// Note that audio data is buffered in memory in its entirety, and written
// to disk on EndMixing. It is therefore probably only suitable for
// rendering register scripts and for testing purposes.
package wavwriter

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/xizhe-zhang/mockingboard/environment"
	"github.com/xizhe-zhang/mockingboard/hardware/card"
	"github.com/xizhe-zhang/mockingboard/logger"
)

// WavWriter buffers the stereo card mix and encodes it as 16bit PCM.
type WavWriter struct {
	env      *environment.Environment
	filename string
	buffer   []int
}

// NewWavWriter is the preferred method of initialisation for the
// WavWriter type.
func NewWavWriter(env *environment.Environment, filename string) (*WavWriter, error) {
	aw := &WavWriter{
		env:      env,
		filename: filename,
	}
	return aw, nil
}

// Queue adds samples to the in-memory buffer. the slice layout is the
// interleaved stereo stream produced by the card's Mix function.
func (aw *WavWriter) Queue(samples []int16) {
	for _, s := range samples {
		aw.buffer = append(aw.buffer, int(s))
	}
}

// EndMixing writes the buffered audio to disk.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, card.SampleRate, 16, card.NumChannels, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: card.NumChannels,
			SampleRate:  card.SampleRate,
		},
		Data:           aw.buffer,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}

	logger.Logf(aw.env, "wavwriter", "%d frames written to %s",
		len(aw.buffer)/card.NumChannels, aw.filename)

	return nil
}
