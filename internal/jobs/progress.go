package jobs

import "strings"

// progress tiers keyed by markers in the extractor's output. Substring
// matching against unstructured log text is best-effort; the tiers only
// provide floors and ceilings, never exact percentages.
type progressTier struct {
	marker string
	base   int
	step   int // lines per percent above base
	cap    int
}

var progressTiers = []progressTier{
	{marker: "all processing complete", base: 100, step: 0, cap: 100},
	{marker: "file fully processed", base: 85, step: 3, cap: 95},
	{marker: "sheet upload", base: 70, step: 4, cap: 85},
	{marker: "analyzing", base: 50, step: 6, cap: 70},
	{marker: "ocr analysis started", base: 30, step: 8, cap: 50},
	{marker: "processing started", base: 20, step: 10, cap: 30},
}

// ProgressHint estimates job progress from one output line and the number
// of lines seen so far. Lines with no recognized marker return the
// baseline 20 so the tracker's monotonic clamp decides.
func ProgressHint(line string, lineCount int) int {
	l := strings.ToLower(line)

	for _, t := range progressTiers {
		if !strings.Contains(l, t.marker) {
			continue
		}
		if t.step == 0 {
			return t.cap
		}
		p := t.base + lineCount/t.step
		if p > t.cap {
			p = t.cap
		}
		return p
	}

	if strings.Contains(l, "connect") || strings.Contains(l, "initializ") {
		return 15
	}
	return 20
}

// statusMarkers selects which lines are prominent enough to surface as the
// job's status message rather than only in the log feed.
var statusMarkers = []string{
	"complete", "started", "connect", "success", "failed", "error", "upload",
}

// StatusLine reports whether the line should replace the job's status
// message.
func StatusLine(line string) bool {
	l := strings.ToLower(line)
	for _, m := range statusMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	return false
}

// TrimTimestamp strips the extractor's leading "[HH:MM:SS] " prefix for
// status display.
func TrimTimestamp(line string) string {
	if strings.HasPrefix(line, "[") {
		if i := strings.Index(line, "] "); i >= 0 {
			return line[i+2:]
		}
	}
	return line
}
