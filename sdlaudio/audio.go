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

// Package sdlaudio plays the card mix through SDL. the caller drains the
// card into the Queue function; pacing against real time falls out of the
// Queued function, which reports how much audio the device is holding.
package sdlaudio

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/xizhe-zhang/mockingboard/hardware/card"
)

// the number of frames in a device period. we don't want it long because
// it adds lag between the emulation and the speaker; too short and the
// device underruns whenever the host scheduler hiccups. the value is not
// critical
const bufferLength = 512

// Audio outputs sound using SDL.
type Audio struct {
	id   sdl.AudioDeviceID
	spec sdl.AudioSpec

	staging []byte

	// the previous chunk is kept to repeat into an underrun. flipping to
	// real silence on a starved queue causes an audible click
	last []byte
}

// NewAudio is the preferred method of initialisation for the Audio type.
func NewAudio() (*Audio, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("sdlaudio: %w", err)
	}

	aud := &Audio{}

	spec := &sdl.AudioSpec{
		Freq:     card.SampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: card.NumChannels,
		Samples:  uint16(bufferLength),
	}

	var err error
	var actualSpec sdl.AudioSpec
	aud.id, err = sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, fmt.Errorf("sdlaudio: %w", err)
	}
	aud.spec = actualSpec

	sdl.PauseAudioDevice(aud.id, false)

	return aud, nil
}

// Queue passes samples from the card mix to the SDL audio queue. the
// slice layout is the interleaved stereo stream produced by the card's
// Mix function. an empty slice is allowed and repeats the previous chunk
// if the device has run dry.
func (aud *Audio) Queue(samples []int16) error {
	if len(samples) == 0 {
		if sdl.GetQueuedAudioSize(aud.id) == 0 && len(aud.last) > 0 {
			if err := sdl.QueueAudio(aud.id, aud.last); err != nil {
				return fmt.Errorf("sdlaudio: %w", err)
			}
		}
		return nil
	}

	if cap(aud.staging) < len(samples)*2 {
		aud.staging = make([]byte, len(samples)*2)
	}
	buf := aud.staging[:len(samples)*2]
	for i, s := range samples {
		buf[i*2] = uint8(s)
		buf[i*2+1] = uint8(s >> 8)
	}

	if err := sdl.QueueAudio(aud.id, buf); err != nil {
		return fmt.Errorf("sdlaudio: %w", err)
	}
	aud.last = append(aud.last[:0], buf...)

	return nil
}

// Queued returns the number of audio frames waiting in the SDL queue.
func (aud *Audio) Queued() int {
	return int(sdl.GetQueuedAudioSize(aud.id)) / (2 * card.NumChannels)
}

// EndMixing closes the audio device.
func (aud *Audio) EndMixing() error {
	sdl.CloseAudioDevice(aud.id)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	return nil
}
