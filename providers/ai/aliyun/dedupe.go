package aliyun

import (
	"strings"
	"unicode/utf8"
)

// deduper turns a mix of delta and cumulative frames into non-overlapping
// pieces. It lives for exactly one stream.
type deduper struct {
	emitted  string
	lastFull string
}

// delta forwards an incremental piece unless the emitted text already ends
// with it.
func (d *deduper) delta(text string) string {
	if text == "" || strings.HasSuffix(d.emitted, text) {
		return ""
	}
	d.emitted += text
	return text
}

// full reduces a cumulative frame to the text not yet forwarded. The
// baseline is everything emitted so far, delta pieces included.
//   - extends the emitted text: forward the new suffix
//   - equal to, or a suffix of, the emitted text: forward nothing
//   - extends the previous full frame after a correction: forward the suffix
//   - shares no prefix: the server switched to incremental framing, forward
//     it whole
//   - shares a partial prefix: a correction, forward what follows the common
//     prefix unless it was already forwarded
func (d *deduper) full(text string) string {
	if text == "" {
		return ""
	}

	var piece string
	switch {
	case strings.HasPrefix(text, d.emitted):
		piece = text[len(d.emitted):]
		d.lastFull = text
	case strings.HasSuffix(d.emitted, text):
		d.lastFull = d.emitted
		return ""
	case d.lastFull != "" && d.lastFull != d.emitted && strings.HasPrefix(text, d.lastFull):
		piece = text[len(d.lastFull):]
		d.lastFull = text
	default:
		common := commonPrefix(text, d.emitted)
		if common == 0 {
			piece = text
			d.lastFull = d.emitted + text
		} else {
			piece = text[common:]
			d.lastFull = text
			if strings.HasSuffix(d.emitted, piece) {
				piece = ""
			}
		}
	}

	d.emitted += piece
	return piece
}

// commonPrefix returns the byte length of the longest common prefix of a and
// b, backed off to a rune boundary.
func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	for i > 0 && i < len(a) && !utf8.RuneStart(a[i]) {
		i--
	}
	return i
}
