package txdigest

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Shape is the top-level form of a parsed payload, decided once after parsing.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeSequence
	ShapeMapping
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeMapping:
		return "mapping"
	default:
		return "scalar"
	}
}

func shapeOf(v gjson.Result) Shape {
	switch {
	case v.IsArray():
		return ShapeSequence
	case v.IsObject():
		return ShapeMapping
	default:
		return ShapeScalar
	}
}

// parsePayload turns the caller's payload into a parsed JSON value.
//
// Text (string, []byte, json.RawMessage) is parsed as JSON. A gjson.Result is
// used as is. Any other Go value is serialized with encoding/json first, so
// Go maps are seen in sorted key order.
func parsePayload(payload any) (gjson.Result, error) {
	var text string
	switch p := payload.(type) {
	case nil:
		return gjson.Result{}, newError(KindInvalidInputFormat, "TXD-SHAPE-001", "invalid input format")
	case string:
		text = p
	case []byte:
		text = string(p)
	case json.RawMessage:
		text = string(p)
	case gjson.Result:
		if !p.Exists() {
			return gjson.Result{}, newError(KindMalformedInput, "TXD-PARSE-001", "malformed input: empty value")
		}
		// gjson.Parse does not validate.
		if !gjson.Valid(p.Raw) {
			return gjson.Result{}, syntaxError(p.Raw)
		}
		return p, nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return gjson.Result{}, wrapError(KindMalformedInput, "TXD-PARSE-002", "malformed input: "+err.Error(), err)
		}
		text = string(b)
	}

	if !gjson.Valid(text) {
		return gjson.Result{}, syntaxError(text)
	}
	return gjson.Parse(text), nil
}

// syntaxError describes why text is not JSON. gjson only reports validity,
// so the decoder from encoding/json is used to locate the problem.
func syntaxError(text string) error {
	if strings.TrimSpace(text) == "" {
		return newError(KindMalformedInput, "TXD-PARSE-001", "malformed input: empty payload")
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return wrapError(KindMalformedInput, "TXD-PARSE-001", "malformed input: "+err.Error(), err)
	}
	return newError(KindMalformedInput, "TXD-PARSE-001", "malformed input")
}

// candidate is one (position, key, value) triple before field rules apply.
type candidate struct {
	position int
	key      string
	value    gjson.Result
}

// candidates walks the parsed payload in position order and feeds each
// triple to yield. It stops at the first error from either the shape checks
// or yield.
func candidates(v gjson.Result, legacy bool, yield func(candidate) error) error {
	switch shape := shapeOf(v); {
	case shape == ShapeSequence:
		return sequenceCandidates(v, yield)
	case shape == ShapeMapping && legacy:
		return mappingCandidates(v, yield)
	default:
		return newError(KindInvalidInputFormat, "TXD-SHAPE-001", "invalid input format")
	}
}

func sequenceCandidates(v gjson.Result, yield func(candidate) error) error {
	var err error
	position := 0
	v.ForEach(func(_, elem gjson.Result) bool {
		position++
		key, value, ok := singleMember(elem)
		if !ok {
			e := newError(KindInvalidEntry, "TXD-SHAPE-002", fmt.Sprintf("invalid entry: %s", compactRaw(elem)))
			e.Position = position
			err = e
			return false
		}
		err = yield(candidate{position: position, key: key, value: value})
		return err == nil
	})
	return err
}

// mappingCandidates yields the members of a legacy mapping in property
// order: array-index keys ("0", "1", ... without leading zeros) first in
// ascending numeric order, then every other key in document order.
func mappingCandidates(v gjson.Result, yield func(candidate) error) error {
	type member struct {
		key   string
		value gjson.Result
		index uint64
		isIdx bool
	}
	var members []member
	v.ForEach(func(key, value gjson.Result) bool {
		idx, ok := arrayIndex(key.Str)
		members = append(members, member{key: key.Str, value: value, index: idx, isIdx: ok})
		return true
	})
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.isIdx != b.isIdx {
			return a.isIdx
		}
		return a.isIdx && a.index < b.index
	})

	for i, m := range members {
		if err := yield(candidate{position: i + 1, key: m.key, value: m.value}); err != nil {
			return err
		}
	}
	return nil
}

// arrayIndex reports whether key is the canonical decimal form of an integer
// in 0..2^32-2.
func arrayIndex(key string) (uint64, bool) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 || strconv.FormatUint(n, 10) != key {
		return 0, false
	}
	return n, true
}

// singleMember returns the only member of a one-key object. Repeated member
// names count as separate members.
func singleMember(elem gjson.Result) (string, gjson.Result, bool) {
	if !elem.IsObject() {
		return "", gjson.Result{}, false
	}
	var key string
	var value gjson.Result
	n := 0
	elem.ForEach(func(k, v gjson.Result) bool {
		n++
		key, value = k.Str, v
		return n < 2
	})
	if n != 1 {
		return "", gjson.Result{}, false
	}
	return key, value, true
}

func compactRaw(v gjson.Result) string {
	raw := strings.TrimSpace(v.Raw)
	if len(raw) > 64 {
		return raw[:61] + "..."
	}
	return raw
}
