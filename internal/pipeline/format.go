package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avery/session-insights/internal/transcribe"
)

// SpeakerStrategy assigns a speaker label to each transcript segment. The
// default alternating heuristic is a stand-in for real diarization; keeping
// it behind this interface lets a diarizing implementation slot in without
// touching stage logic.
type SpeakerStrategy interface {
	Label(index int, seg transcribe.Segment) string
}

// AlternatingSpeakers labels segments by index parity. A known
// simplification: it assumes a clean two-party turn-taking conversation.
type AlternatingSpeakers struct {
	Even string
	Odd  string
}

func (a AlternatingSpeakers) Label(index int, _ transcribe.Segment) string {
	if index%2 == 0 {
		return a.Even
	}
	return a.Odd
}

// DefaultSpeakers returns the Coach/Client alternation used for coaching
// sessions.
func DefaultSpeakers() SpeakerStrategy {
	return AlternatingSpeakers{Even: "Coach", Odd: "Client"}
}

// FormatTranscript renders the speaker-labeled transcript: segments in
// chronological order, one line each, prefixed with a [MM:SS] or [HH:MM:SS]
// timestamp (hours omitted when zero).
func FormatTranscript(segments []transcribe.Segment, speakers SpeakerStrategy) string {
	ordered := make([]transcribe.Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var sb strings.Builder
	for i, seg := range ordered {
		sb.WriteString(fmt.Sprintf("%s %s: %s\n",
			formatTimestamp(seg.Start), speakers.Label(i, seg), strings.TrimSpace(seg.Text)))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// formatTimestamp renders an offset in seconds as [MM:SS], or [HH:MM:SS]
// once the offset reaches an hour.
func formatTimestamp(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("[%02d:%02d:%02d]", hours, minutes, secs)
	}
	return fmt.Sprintf("[%02d:%02d]", minutes, secs)
}
