package txdigest

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// MaxEntries is the largest number of fields a payload may carry.
	MaxEntries = 10
	// MaxEntrySize bounds the encoded length of "key:value".
	MaxEntrySize = 255
)

// rule is an explicit, named field rule.
//
// ID must be stable across versions.
// Apply must be deterministic and side-effect free.
type rule struct {
	ID    string
	Apply func(c candidate, seen map[string]struct{}) error
}

func (r rule) apply(c candidate, seen map[string]struct{}) error {
	if r.Apply == nil {
		return newError(KindInternal, "TXD-INTERNAL-001", "nil rule Apply")
	}
	return r.Apply(c, seen)
}

// fieldRules returns the per-field rules in evaluation order.
func fieldRules() []rule {
	return []rule{
		{ID: "TXD-VAL-101", Apply: checkPosition},
		{ID: "TXD-VAL-102", Apply: checkKey},
		{ID: "TXD-VAL-103", Apply: checkUnique},
		{ID: "TXD-VAL-104", Apply: checkValue},
		{ID: "TXD-VAL-105", Apply: checkSize},
	}
}

// applyRules runs rules in order, returning the first failure.
func applyRules(c candidate, seen map[string]struct{}, rules []rule) error {
	for _, r := range rules {
		if err := r.apply(c, seen); err != nil {
			return err
		}
	}
	return nil
}

func checkPosition(c candidate, _ map[string]struct{}) error {
	if c.position > MaxEntries {
		return entryError(KindTooManyEntries, "TXD-VAL-101", fmt.Sprintf("too many entries (max is %d)", MaxEntries), c.position, c.key)
	}
	return nil
}

func checkKey(c candidate, _ map[string]struct{}) error {
	if c.key == "" {
		return entryError(KindInvalidKey, "TXD-VAL-102", `invalid key: ""`, c.position, c.key)
	}
	return nil
}

func checkUnique(c candidate, seen map[string]struct{}) error {
	if _, dup := seen[c.key]; dup {
		return entryError(KindDuplicateKey, "TXD-VAL-103", "duplicate key: "+c.key, c.position, c.key)
	}
	return nil
}

func checkValue(c candidate, _ map[string]struct{}) error {
	if c.value.Type != gjson.String || c.value.Str == "" {
		return entryError(KindInvalidValue, "TXD-VAL-104", "invalid value: "+compactRaw(c.value), c.position, c.key)
	}
	return nil
}

func checkSize(c candidate, _ map[string]struct{}) error {
	n := unitLen(c.key + ":" + c.value.Str)
	if n > MaxEntrySize {
		e := entryError(KindEntryTooLong, "TXD-VAL-105", fmt.Sprintf("key+value too long (%d > %d): %s", n, MaxEntrySize, truncate(c.key, 32)), c.position, c.key)
		e.Length = n
		return e
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
