package media

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// SampleRate is the rate whisper models are trained on
const SampleRate = 16000

// decodeMP3 reads an MP3 file into mono float32 samples
func decodeMP3(path string) ([]float32, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid mp3: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 decode: %w", err)
	}

	return downmixStereo16(data), decoder.SampleRate(), nil
}

// downmixStereo16 converts interleaved little endian 16-bit stereo PCM, the
// format go-mp3 always produces, to mono float32 in [-1, 1]
func downmixStereo16(data []byte) []float32 {
	const maxInt16 = 32768.0

	n := len(data) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		left := int16(data[i*4]) | int16(data[i*4+1])<<8
		right := int16(data[i*4+2]) | int16(data[i*4+3])<<8
		samples[i] = float32((int32(left)+int32(right))/2) / maxInt16
	}
	return samples
}

// resample converts samples to SampleRate with linear interpolation
func resample(samples []float32, srcRate int) []float32 {
	if srcRate == SampleRate || srcRate <= 0 {
		return samples
	}

	ratio := float64(srcRate) / SampleRate
	out := make([]float32, len(samples)*SampleRate/srcRate)

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := float32(pos - float64(idx))

		switch {
		case idx+1 < len(samples):
			out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
		case idx < len(samples):
			out[i] = samples[idx]
		}
	}
	return out
}

// writeWAV stores mono samples as 16-bit PCM
func writeWAV(path string, samples []float32, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	encoder := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Data:           make([]int, len(samples)),
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}

	if err := encoder.Write(buf); err != nil {
		file.Close()
		return err
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WAVDuration returns the playing time of a WAV file, computed from the
// size of its data chunk
func WAVDuration(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if err := decoder.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("invalid WAV file %s: %w", path, err)
	}
	if decoder.NumChans < 1 || decoder.BitDepth < 8 || decoder.SampleRate == 0 || decoder.PCMChunk == nil {
		return 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	bytesPerSec := int64(decoder.SampleRate) * int64(decoder.NumChans) * int64(decoder.BitDepth/8)
	return time.Duration(int64(decoder.PCMSize) * int64(time.Second) / bytesPerSec), nil
}
