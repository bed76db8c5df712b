// Package portaudio captures microphone audio for continuous sessions.
//
// The device itself requires the PortAudio C library and is only built with
// the portaudio build tag. The PCM encoding helpers are always available.
package portaudio

import "encoding/binary"

const (
	// SampleRate is the capture rate in Hz.
	SampleRate = 16000
	// Channels is mono.
	Channels = 1
	// FramesPerBuffer is 100ms of audio at SampleRate.
	FramesPerBuffer = 1600
)

// EncodePCM16 converts samples to little-endian PCM16 bytes.
func EncodePCM16(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// DecodePCM16 converts little-endian PCM16 bytes to samples. A trailing odd
// byte is ignored.
func DecodePCM16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
