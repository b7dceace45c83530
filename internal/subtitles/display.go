package subtitles

import "strings"

const ellipsis = "…"

// DisplayPolicy bounds how much text a cue may put on screen.
type DisplayPolicy struct {
	MaxLines     int
	MaxLineChars int
}

// Apply wraps text to the policy. Text already within one line is returned
// unchanged. Overflow past the maximum line count is cut on the last
// permitted line and marked with a trailing ellipsis. Limits are counted in
// runes.
func (p DisplayPolicy) Apply(text string) string {
	text = strings.TrimSpace(text)
	if p.MaxLineChars <= 0 || p.MaxLines <= 0 {
		return text
	}
	if runeLen(text) <= p.MaxLineChars {
		return text
	}

	lines := wrapRunes(text, p.MaxLineChars)
	if len(lines) <= p.MaxLines {
		return strings.Join(lines, "\n")
	}

	kept := lines[:p.MaxLines]
	last := []rune(kept[p.MaxLines-1])
	if len(last) >= p.MaxLineChars {
		last = last[:p.MaxLineChars-1]
	}
	kept[p.MaxLines-1] = strings.TrimRight(string(last), " ") + ellipsis
	return strings.Join(kept, "\n")
}

// ApplySegments applies the policy to every cue text, preserving timings and
// order.
func (p DisplayPolicy) ApplySegments(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		seg.Text = p.Apply(seg.Text)
		out[i] = seg
	}
	return out
}

// wrapRunes fills lines greedily, breaking at spaces when possible and inside
// unspaced runs (CJK) when a single run exceeds the limit.
func wrapRunes(text string, limit int) []string {
	var lines []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.TrimRight(string(current), " "))
			current = current[:0]
		}
	}
	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > limit {
			flush()
			lines = append(lines, string(runes[:limit]))
			runes = runes[limit:]
		}
		needed := len(runes)
		if len(current) > 0 {
			needed++
		}
		if len(current)+needed > limit {
			flush()
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, runes...)
	}
	flush()
	return lines
}

func runeLen(s string) int {
	return len([]rune(s))
}
