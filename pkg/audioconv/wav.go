package audioconv

import (
	"errors"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV writes mono float32 PCM as a 16-bit PCM WAV file. The chunked
// capture loop uses it to persist each recorded segment before handing the
// file to a transcriber.
func EncodeWAV(ws io.WriteSeeker, pcm []float32, sampleRate int) error {
	if len(pcm) == 0 {
		return errors.New("no samples to encode")
	}
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}

	data := make([]int, len(pcm))
	for i, v := range pcm {
		s := int(clamp(float64(v), -1, 1) * 32767)
		data[i] = s
	}

	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
