package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressArgs(t *testing.T) {
	args := compressArgs("in.wav", "out.mp3")
	assert.Equal(t, []string{
		"-y", "-i", "in.wav", "-vn",
		"-ac", "1", "-ar", "16000", "-b:a", "32k",
		"out.mp3",
	}, args)
}

func TestSegmentArgs(t *testing.T) {
	args := segmentArgs("in.mp3", "segment_001.mp3", 590, 610)
	assert.Equal(t, []string{
		"-y",
		"-ss", "00:09:50.000",
		"-i", "in.mp3",
		"-t", "00:10:10.000",
		"-vn",
		"-ac", "1", "-ar", "16000", "-b:a", "32k",
		"segment_001.mp3",
	}, args)
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00:00.000"},
		{5.5, "00:00:05.500"},
		{590, "00:09:50.000"},
		{3730.25, "01:02:10.250"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSeconds(tt.seconds))
		})
	}
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "final error", lastLine("warning one\nwarning two\nfinal error\n"))
	assert.Equal(t, "only line", lastLine("only line"))
	assert.Equal(t, "", lastLine("  \n "))
}

func TestRoundSeconds(t *testing.T) {
	assert.Equal(t, 300, RoundSeconds(299.6))
	assert.Equal(t, 299, RoundSeconds(299.4))
}
