package complete

import "path/filepath"

// matchGlob wraps filepath.Match for the accept/reject filter
// chains. A malformed pattern never matches rather than erroring,
// since a completion script's pattern is user-supplied data, not a
// programming error.
func matchGlob(pattern, s string) (bool, error) {
	ok, err := filepath.Match(pattern, s)
	if err != nil {
		return false, nil
	}
	return ok, nil
}
