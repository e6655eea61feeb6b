// Package catalog implements display ordering for comic collections.
//
// Issue numbers in the wild are messy. Publishers mix plain numbers with
// decimals (`12.5`), variant suffixes (`12A`), annuals and specials with no
// number at all, and sometimes the number only appears at the end of the
// title (`Saga #54`). CompareComics imposes a single total order over all of
// them so listings stay stable and predictable.
package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hkrewson/collectz/internal/models"
)

type issueClass int

const (
	classNumeric issueClass = iota
	classAlpha
	classMissing
)

var (
	trailingIssuePattern = regexp.MustCompile(`#\s*(\S+)\s*$`)
	numericTokenPattern  = regexp.MustCompile(`^(\d+)(?:\.(\d+))?([A-Za-z]*)$`)
)

type issueKey struct {
	class   issueClass
	value   float64
	suffix  string
	padding int
	token   string
	title   string
}

// issueToken extracts the raw issue token for a comic, preferring the
// structured field over the trailing `#<token>` form in the title.
func issueToken(c models.Comic) string {
	if strings.TrimSpace(c.Issue) != "" {
		return c.Issue
	}

	if match := trailingIssuePattern.FindStringSubmatch(c.Title); match != nil {
		return match[1]
	}

	return ""
}

func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "#")
	token = strings.TrimSpace(token)

	lower := strings.ToLower(token)
	switch {
	case strings.HasPrefix(lower, "issue"):
		token = token[len("issue"):]
	case strings.HasPrefix(lower, "no."):
		token = token[len("no."):]
	}

	return strings.TrimSpace(token)
}

func keyFor(c models.Comic) issueKey {
	key := issueKey{title: strings.ToLower(c.Title)}
	token := normalizeToken(issueToken(c))

	if token == "" {
		key.class = classMissing
		return key
	}

	match := numericTokenPattern.FindStringSubmatch(token)
	if match == nil {
		key.class = classAlpha
		key.token = strings.ToLower(token)
		return key
	}

	whole := match[1]
	value, _ := strconv.ParseFloat(whole, 64)
	if match[2] != "" {
		frac, _ := strconv.ParseFloat("0."+match[2], 64)
		value += frac
	}

	key.class = classNumeric
	key.value = value
	key.suffix = strings.ToLower(match[3])
	key.padding = len(whole) - len(strings.TrimLeft(whole, "0"))
	if whole == strings.Repeat("0", len(whole)) {
		key.padding = len(whole) - 1
	}

	return key
}

// CompareComics reports the display order of a relative to b: negative when
// a sorts first, positive when b does, zero when they are indistinguishable.
// The order is: numeric issues ascending by value, then alpha-labelled issues
// (annuals, specials) case-insensitively, then comics with no issue token at
// all, each tier falling back to the title.
func CompareComics(a, b models.Comic) int {
	ka, kb := keyFor(a), keyFor(b)

	if ka.class != kb.class {
		return int(ka.class) - int(kb.class)
	}

	switch ka.class {
	case classNumeric:
		if ka.value != kb.value {
			if ka.value < kb.value {
				return -1
			}
			return 1
		}
		// Equal values: a bare `10` comes before `10A`.
		if (ka.suffix == "") != (kb.suffix == "") {
			if ka.suffix == "" {
				return -1
			}
			return 1
		}
		if cmp := strings.Compare(ka.suffix, kb.suffix); cmp != 0 {
			return cmp
		}
		// `7` before `007`, arbitrarily but stably.
		if ka.padding != kb.padding {
			return ka.padding - kb.padding
		}
	case classAlpha:
		if cmp := strings.Compare(ka.token, kb.token); cmp != 0 {
			return cmp
		}
	}

	return strings.Compare(ka.title, kb.title)
}

// SortComics orders comics in place for display, keeping the incoming order
// for entries the comparator cannot tell apart.
func SortComics(comics []models.Comic) {
	sort.SliceStable(comics, func(i, j int) bool {
		return CompareComics(comics[i], comics[j]) < 0
	})
}
