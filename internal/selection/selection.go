// Package selection resolves user-authored page selection expressions
// against a document's page count.
//
// The grammar is a comma-separated list of tokens:
//
//	expression := "" | "all" | token ("," token)*
//	token      := page | range | "-" page | "-" range
//	page       := digit+            (1-based)
//	range      := page "-" page     (N-M, N <= M)
//
// A leading "-" marks a token as an exclusion, so "-1-3" is the single
// token "exclude pages 1 through 3", never "exclude 1" followed by "-3".
// An empty expression or the literal "all" (case-insensitive) selects
// every page.
package selection

import (
	"fmt"
	"strconv"
	"strings"
)

// AllPages is the literal expression that selects every page
const AllPages = "all"

// Resolve evaluates expression against pageCount and returns the 1-based
// page indices to include, ascending and without duplicates.
//
// Include tokens define the candidate set; when only exclude tokens are
// present the candidate set is every page. Exclude tokens always subtract
// from the candidate set. Page numbers outside [1, pageCount] are an
// error, never clamped, and an expression whose final set is empty is an
// error as well.
//
// Resolve is a pure function of its two inputs and is safe for
// concurrent use.
func Resolve(expression string, pageCount int) ([]int, error) {
	if pageCount < 1 {
		return nil, fmt.Errorf("page count must be positive, got %d", pageCount)
	}

	trimmed := strings.TrimSpace(expression)
	if trimmed == "" || strings.EqualFold(trimmed, AllPages) {
		return allPages(pageCount), nil
	}

	includes := make(map[int]bool)
	excludes := make(map[int]bool)
	sawInclude := false

	for _, raw := range strings.Split(trimmed, ",") {
		token := strings.TrimSpace(raw)

		first, last, exclude, err := parseToken(token, expression, pageCount)
		if err != nil {
			return nil, err
		}

		for p := first; p <= last; p++ {
			if exclude {
				excludes[p] = true
			} else {
				includes[p] = true
			}
		}
		if !exclude {
			sawInclude = true
		}
	}

	var result []int
	if sawInclude {
		for p := 1; p <= pageCount; p++ {
			if includes[p] && !excludes[p] {
				result = append(result, p)
			}
		}
	} else {
		for p := 1; p <= pageCount; p++ {
			if !excludes[p] {
				result = append(result, p)
			}
		}
	}

	if len(result) == 0 {
		return nil, newError(KindEmptyResult, "", expression, pageCount,
			"selection resolves to no pages")
	}

	return result, nil
}

// parseToken parses one comma-separated token into an inclusive page span
// and an exclusion flag.
func parseToken(token, expression string, pageCount int) (first, last int, exclude bool, err error) {
	body := token
	if strings.HasPrefix(body, "-") {
		exclude = true
		body = body[1:]
	}

	if body == "" {
		return 0, 0, false, newError(KindInvalidToken, token, expression, pageCount,
			"token is empty")
	}

	var firstStr, lastStr string
	if i := strings.Index(body, "-"); i >= 0 {
		firstStr, lastStr = body[:i], body[i+1:]
	} else {
		firstStr, lastStr = body, body
	}

	first, err = parsePage(firstStr, token, expression, pageCount)
	if err != nil {
		return 0, 0, false, err
	}
	last, err = parsePage(lastStr, token, expression, pageCount)
	if err != nil {
		return 0, 0, false, err
	}

	if first > last {
		return 0, 0, false, newError(KindInvalidRange, token, expression, pageCount,
			"range start %d is greater than range end %d", first, last)
	}

	return first, last, exclude, nil
}

// parsePage parses a single 1-based page number and bounds-checks it.
func parsePage(s, token, expression string, pageCount int) (int, error) {
	if s == "" || !isDigits(s) {
		return 0, newError(KindInvalidToken, token, expression, pageCount,
			"expected a page number or N-M range")
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, newError(KindInvalidToken, token, expression, pageCount,
			"page number %q is not a valid integer", s)
	}

	if n < 1 || n > pageCount {
		return 0, newError(KindOutOfRange, token, expression, pageCount,
			"page %d is outside the document (1-%d)", n, pageCount)
	}

	return n, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allPages(pageCount int) []int {
	pages := make([]int, pageCount)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
