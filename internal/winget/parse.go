package winget

import (
	"strings"
	"unicode"
)

// Column labels winget prints in its upgrade listing header. Matching is
// case-insensitive and by label, not by position, so a reordered header
// still maps every field correctly.
const (
	labelName      = "name"
	labelID        = "id"
	labelVersion   = "version"
	labelAvailable = "available"
	labelSource    = "source"
)

var knownLabels = map[string]bool{
	labelName:      true,
	labelID:        true,
	labelVersion:   true,
	labelAvailable: true,
	labelSource:    true,
}

// column records where a header label starts, in rune offsets.
type column struct {
	label string
	start int
}

// offsetTable maps header labels to their starting rune offsets, ordered
// left to right. Column k's text runs from its own offset up to the next
// column's offset; the final column runs to end of line. Offsets are
// recomputed per invocation since winget sizes columns to its data.
type offsetTable []column

// headerOffsets extracts the offset table from a candidate header line.
// Tokens that are not known labels are ignored.
func headerOffsets(line string) offsetTable {
	runes := []rune(line)

	var cols offsetTable
	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}

		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}

		token := strings.ToLower(string(runes[start:i]))
		if knownLabels[token] {
			cols = append(cols, column{label: token, start: start})
		}
	}

	return cols
}

// looksLikeHeader reports whether the line carries at least the Name and
// Id labels, the minimum needed to slice rows.
func looksLikeHeader(line string) bool {
	cols := headerOffsets(line)

	var hasName, hasID bool
	for _, c := range cols {
		switch c.label {
		case labelName:
			hasName = true
		case labelID:
			hasID = true
		}
	}

	return hasName && hasID
}

// sliceRow cuts one data row by the header offsets and trims each field.
// Rows shorter than the rightmost offset resolve missing fields to "".
func sliceRow(line string, cols offsetTable) map[string]string {
	runes := []rune(line)
	fields := make(map[string]string, len(cols))

	for k, col := range cols {
		start := col.start
		if start > len(runes) {
			start = len(runes)
		}

		end := len(runes)
		if k+1 < len(cols) && cols[k+1].start < end {
			end = cols[k+1].start
		}
		if end < start {
			end = start
		}

		fields[col.label] = strings.TrimSpace(string(runes[start:end]))
	}

	return fields
}

// Parse converts sanitized logical lines into updatable app records,
// preserving winget's emission order. Lines before the header are
// ignored; malformed rows are skipped, never errors.
func Parse(lines []string) []UpdatableApp {
	headerIdx := -1

	var cols offsetTable
	for i, line := range lines {
		if looksLikeHeader(line) {
			headerIdx = i
			cols = headerOffsets(line)

			break
		}
	}

	if headerIdx < 0 {
		return nil
	}

	var apps []UpdatableApp
	for _, line := range lines[headerIdx+1:] {
		// winget repeats the header when it prints a second table
		if looksLikeHeader(line) {
			continue
		}

		f := sliceRow(line, cols)
		name, id := f[labelName], f[labelID]

		// A row without both keys is a separator artifact or a wrapped
		// fragment that slipped through; drop it rather than store it.
		if name == "" || id == "" || strings.ContainsRune(id, ' ') {
			continue
		}

		apps = append(apps, UpdatableApp{
			Name:      name,
			ID:        id,
			Version:   f[labelVersion],
			Available: f[labelAvailable],
			Source:    f[labelSource],
		})
	}

	return apps
}

// ParseOutput sanitizes and parses raw winget output in one step.
func ParseOutput(raw string) []UpdatableApp {
	return Parse(Sanitize(raw))
}
