package extraction

import (
	"math"
	"strconv"
	"strings"

	"github.com/letieu/agent-directory/internal/youtube"
)

// MaxTranscriptChars bounds the serialized transcript sent to the model.
const MaxTranscriptChars = 6000

// SerializeTranscript renders segments one per line and keeps only the
// first MaxTranscriptChars characters.
func SerializeTranscript(segments []youtube.Segment) string {
	lines := make([]string, len(segments))
	for i, s := range segments {
		lines[i] = "--- Text: " + s.Text +
			" \n Offset: " + formatSeconds(s.Offset) +
			" \n Duration: " + formatSeconds(s.Duration) + " ---"
	}
	return truncate(strings.Join(lines, "\n"), MaxTranscriptChars)
}

func formatSeconds(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// FeatureSpan rounds a start/end pair to whole seconds and clamps it so
// that 0 <= start <= end.
func FeatureSpan(start, end float64) (int, int) {
	s := roundSeconds(start)
	e := roundSeconds(end)
	if s < 0 {
		s = 0
	}
	if e < s {
		e = s
	}
	return s, e
}

func roundSeconds(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}
