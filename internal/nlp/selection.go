package nlp

import (
	"regexp"
	"strconv"
)

var selectionRE = regexp.MustCompile(`\d+`)

// ExtractSelection reads a 1-based menu choice out of text. It returns the
// first integer found when it falls in [1, max], and 0 otherwise.
func ExtractSelection(text string, max int) int {
	m := selectionRE.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 || n > max {
		return 0
	}
	return n
}
