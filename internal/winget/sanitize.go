package winget

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// ansiEscape matches ANSI escape sequences for cursor movement and color
	ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	// footerLine matches winget's trailing summary, e.g. "2 upgrades available."
	footerLine = regexp.MustCompile(`(?i)^\d+\s+(?:upgrades?|packages?)\s+available`)
)

// Sanitize converts the raw captured text of one winget invocation into
// logical lines suitable for tabular parsing. It collapses carriage-return
// spinner redraws so only the final frame of each line survives, strips
// ANSI escapes and control characters, rejoins lines wrapped at the
// terminal width, and drops blanks, dash separators, and everything from
// the trailing summary footer on. It never fails; unrecognizable input
// yields an empty sequence.
//
// Sanitizing already-sanitized lines is a no-op.
func Sanitize(raw string) []string {
	var out []string

	for _, phys := range strings.Split(raw, "\n") {
		// Only the text after the last carriage return was visible on screen.
		if i := strings.LastIndexByte(phys, '\r'); i >= 0 {
			phys = phys[i+1:]
		}

		line := stripControl(ansiEscape.ReplaceAllString(phys, ""))
		line = strings.TrimRight(line, " \t")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// The summary footer ends the tabular body; winget may print
		// further tables (pinned packages) below it.
		if footerLine.MatchString(trimmed) {
			break
		}

		if isSeparator(trimmed) {
			continue
		}

		if len(out) > 0 && isContinuation(line) {
			out[len(out)-1] += " " + trimmed
			continue
		}

		out = append(out, line)
	}

	return out
}

// stripControl removes control characters that survive the CR collapse,
// such as backspaces and bells. Leading alignment spaces are kept.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' {
			return -1
		}
		if r == 0x7f {
			return -1
		}

		return r
	}, s)
}

// isSeparator reports whether the line is a header/body divider made of dashes.
func isSeparator(trimmed string) bool {
	return strings.ContainsRune(trimmed, '-') && strings.Trim(trimmed, "- ") == ""
}

// isContinuation reports whether the line is the tail of a row that winget
// wrapped at the terminal width. Real rows and headers separate their
// columns with runs of two or more spaces; a wrapped tail starts with
// whitespace or carries no column gaps at all.
func isContinuation(line string) bool {
	if line == "" {
		return false
	}
	if unicode.IsSpace(rune(line[0])) {
		return true
	}

	return !strings.Contains(line, "  ")
}
