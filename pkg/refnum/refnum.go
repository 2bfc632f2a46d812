// Package refnum generates human-facing reference numbers.
package refnum

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	CasePrefix     = "CASE"
	ContractPrefix = "CON"
)

// New returns PREFIX-<ULID>. ulid.Make is monotonic within a process and
// safe for concurrent use, so numbers sort by creation time.
func New(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}

func Valid(prefix, s string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	if !ok {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}
