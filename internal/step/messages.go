package step

import "fmt"

// Fixed validator failure message templates. These strings are
// part of the user-facing contract: WarnUnless* variants surface the exact
// same text as a warning that Assert* would have raised as a fatal error.

func statusCodeNotEqualMessage(code uint16) string {
	return fmt.Sprintf("status code not equal to %d", code)
}

func statusCodeNotInRangeMessage(lo, hi uint16) string {
	return fmt.Sprintf("status code not in range [%d, %d]", lo, hi)
}

func headerMissingMessage(header string) string {
	return fmt.Sprintf("response headers did not include %q", header)
}
