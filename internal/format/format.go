// Package format converts raw engagement values into display strings and markup.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatCount abbreviates counts of a thousand or more: 1250 => "1.3k".
// Negative input is out of contract.
func FormatCount(n int64) string {
	if n < 1000 {
		return strconv.FormatInt(n, 10)
	}
	// tenths of a thousand, rounded half up
	tenths := (n + 50) / 100
	if tenths%10 == 0 {
		return fmt.Sprintf("%dk", tenths/10)
	}
	return fmt.Sprintf("%d.%dk", tenths/10, tenths%10)
}

// TimeAgo renders a millisecond timestamp relative to the wall clock
func TimeAgo(tsMillis int64) string {
	return TimeAgoAt(tsMillis, time.Now())
}

// TimeAgoAt renders a millisecond timestamp relative to now.
func TimeAgoAt(tsMillis int64, now time.Time) string {
	diff := now.Sub(time.UnixMilli(tsMillis))
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	}
}

// RoundHalfUp rounds to the given number of decimals, halves away from zero
func RoundHalfUp(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Average renders a rating average with one decimal: 4.25 => "4.3"
func Average(avg float64) string {
	return strconv.FormatFloat(RoundHalfUp(avg, 1), 'f', 1, 64)
}

// Plural returns "1 rating" or "N ratings"
func Plural(n int64, singular string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.FormatInt(n, 10) + " " + singular + "s"
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes user-authored text before it is placed in markup
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Paragraphs escapes s and converts newlines into line breaks
func Paragraphs(s string) string {
	escaped := EscapeHTML(strings.ReplaceAll(s, "\r\n", "\n"))
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

// FilledStars is the number of glyphs lit for an average
func FilledStars(average float64) int {
	return int(math.Floor(average + 0.5))
}

// StarsHTML renders five star glyphs; glyph i is filled when i <= round(average).
// Interactive glyphs are buttons carrying their value for the rating widget.
func StarsHTML(average float64, interactive bool, articleID string) string {
	return starsHTML(FilledStars(average), interactive, false, articleID)
}

// StarButtonsHTML renders the interactive glyphs lit up to filled, optionally disabled
func StarButtonsHTML(filled int, disabled bool, articleID string) string {
	return starsHTML(filled, true, disabled, articleID)
}

func starsHTML(filled int, interactive, disabled bool, articleID string) string {
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		class := "star"
		if i <= filled {
			class += " filled"
		}
		if !interactive {
			glyph := "☆"
			if i <= filled {
				glyph = "★"
			}
			fmt.Fprintf(&b, `<span class="%s" aria-hidden="true">%s</span>`, class, glyph)
			continue
		}
		fmt.Fprintf(&b,
			`<button type="button" class="%s star-btn" data-article="%s" data-value="%d" aria-label="%s"`,
			class, EscapeHTML(articleID), i, Plural(int64(i), "star"))
		if disabled {
			b.WriteString(" disabled")
		}
		b.WriteString(">★</button>")
	}
	return b.String()
}
