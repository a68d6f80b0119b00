// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     audio
// Description: PCM16 encoding and WAV decoding
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package audio

import (
	"encoding/binary"
	"fmt"
)

// EncodePCM16 converts float32 samples in [-1, 1] to little-endian
// 16-bit PCM. Samples outside the range are clamped.
func EncodePCM16(samples []float32) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	return data
}

// DecodePCM16 converts little-endian 16-bit PCM to float32 samples.
// A trailing odd byte is dropped.
func DecodePCM16(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples
}

// WAVInfo describes decoded WAV audio
type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Data       []byte
}

// DecodeWAV parses a RIFF/WAVE file and returns the raw PCM data with
// its format. Only uncompressed PCM (format 1) is supported. Chunks
// other than fmt and data are skipped.
func DecodeWAV(data []byte) (*WAVInfo, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("wav data too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	info := &WAVInfo{}
	pos := 12
	haveFmt := false

	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8

		if pos+chunkSize > len(data) {
			chunkSize = len(data) - pos
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", chunkSize)
			}
			format := binary.LittleEndian.Uint16(data[pos:])
			if format != 1 {
				return nil, fmt.Errorf("unsupported wav format %d, only PCM supported", format)
			}
			info.Channels = int(binary.LittleEndian.Uint16(data[pos+2:]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[pos+4:]))
			info.BitDepth = int(binary.LittleEndian.Uint16(data[pos+14:]))
			haveFmt = true
		case "data":
			info.Data = data[pos : pos+chunkSize]
		}

		pos += chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("wav file has no fmt chunk")
	}
	if info.Data == nil {
		return nil, fmt.Errorf("wav file has no data chunk")
	}
	if info.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d, only 16-bit supported", info.BitDepth)
	}
	if info.Channels < 1 || info.Channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", info.Channels)
	}
	return info, nil
}
