package txdigest

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func mustError(t *testing.T, err error) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected structured *txdigest.Error, got %T", err)
	}
	return e
}

func TestDigest_ErrorTaxonomy_MalformedInputCause(t *testing.T) {
	_, err := Digest("this is not JSON", false)
	e := mustError(t, err)
	if e.Kind != KindMalformedInput {
		t.Fatalf("expected KindMalformedInput, got %s", e.Kind)
	}
	if e.RuleID != "TXD-PARSE-001" {
		t.Fatalf("expected RuleID TXD-PARSE-001, got %s", e.RuleID)
	}
	var syn *json.SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("expected wrapped *json.SyntaxError, got %v", e.Cause)
	}
}

func TestDigest_ErrorTaxonomy_InvalidEntryPosition(t *testing.T) {
	_, err := Digest(`[{"amount":"123"},"beneficiary"]`, false)
	e := mustError(t, err)
	if e.Kind != KindInvalidEntry || e.RuleID != "TXD-SHAPE-002" {
		t.Fatalf("expected InvalidEntry/TXD-SHAPE-002, got %s/%s", e.Kind, e.RuleID)
	}
	if e.Position != 2 {
		t.Fatalf("expected position 2, got %d", e.Position)
	}
	if !strings.Contains(e.Error(), `"beneficiary"`) {
		t.Fatalf("expected offending entry in message, got %q", e.Error())
	}
}

func TestDigest_ErrorTaxonomy_BareArrayEntryIsInvalid(t *testing.T) {
	_, err := Digest(`[true]`, false)
	if !IsKind(err, KindInvalidEntry) {
		t.Fatalf("expected InvalidEntry, got %v", err)
	}
	_, err = Digest(`[["amount","123"]]`, false)
	if !IsKind(err, KindInvalidEntry) {
		t.Fatalf("expected InvalidEntry for nested array, got %v", err)
	}
}

func TestDigest_ErrorTaxonomy_DuplicateKeyContext(t *testing.T) {
	_, err := Digest(`[{"one":"1"},{"two":"2"},{"three":"3"},{"one":"4"}]`, false)
	e := mustError(t, err)
	if e.Kind != KindDuplicateKey || e.RuleID != "TXD-VAL-103" {
		t.Fatalf("expected DuplicateKey/TXD-VAL-103, got %s/%s", e.Kind, e.RuleID)
	}
	if e.Key != "one" || e.Position != 4 {
		t.Fatalf("expected key one at position 4, got %q at %d", e.Key, e.Position)
	}
}

func TestDigest_ErrorTaxonomy_LegacyDuplicateKey(t *testing.T) {
	_, err := Digest(`{"amount":"1","amount":"2"}`, true)
	if !IsKind(err, KindDuplicateKey) {
		t.Fatalf("expected DuplicateKey, got %v", err)
	}
}

func TestDigest_ErrorTaxonomy_EntryTooLongLength(t *testing.T) {
	payload := `[{"amount":"` + strings.Repeat("1", 249) + `"}]`
	_, err := Digest(payload, false)
	e := mustError(t, err)
	if e.Kind != KindEntryTooLong {
		t.Fatalf("expected EntryTooLong, got %s", e.Kind)
	}
	if e.Length != 256 {
		t.Fatalf("expected length 256, got %d", e.Length)
	}
	if e.Key != "amount" || e.Position != 1 {
		t.Fatalf("unexpected context: key=%q position=%d", e.Key, e.Position)
	}
}

func TestDigest_ErrorTaxonomy_RuleOrder(t *testing.T) {
	// Position is checked before the key, the key before the value.
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 10; i++ {
		b.WriteString(`{"k` + string(rune('a'+i)) + `":"v"},`)
	}
	b.WriteString(`{"":""}]`)
	_, err := Digest(b.String(), false)
	if !IsKind(err, KindTooManyEntries) {
		t.Fatalf("expected TooManyEntries, got %v", err)
	}

	_, err = Digest(`[{"":""}]`, false)
	if !IsKind(err, KindInvalidKey) {
		t.Fatalf("expected InvalidKey, got %v", err)
	}

	_, err = Digest(`[{"a":"1"},{"a":""}]`, false)
	if !IsKind(err, KindDuplicateKey) {
		t.Fatalf("expected DuplicateKey before InvalidValue, got %v", err)
	}
}

func TestDigest_ErrorTaxonomy_NonStringValues(t *testing.T) {
	for _, v := range []string{`123`, `true`, `null`, `{"a":"b"}`, `["x"]`, `""`} {
		_, err := Digest(`[{"amount":`+v+`}]`, false)
		e := mustError(t, err)
		if e.Kind != KindInvalidValue || e.RuleID != "TXD-VAL-104" {
			t.Fatalf("value %s: expected InvalidValue/TXD-VAL-104, got %s/%s", v, e.Kind, e.RuleID)
		}
	}
}

func TestDigestWithOptions_ErrorTaxonomy_UnsupportedHash(t *testing.T) {
	opts := DefaultOptions()
	opts.HashAlg = "md5"
	_, err := DigestWithOptions(`[{"amount":"123"}]`, opts)
	e := mustError(t, err)
	if e.Kind != KindDigestComputation {
		t.Fatalf("expected DigestComputationError, got %s", e.Kind)
	}
	if e.RuleID != "TXD-DIGEST-001" {
		t.Fatalf("expected RuleID TXD-DIGEST-001, got %s", e.RuleID)
	}
}

func TestErrorHelpers_NonStructured(t *testing.T) {
	err := errors.New("plain")
	if KindOf(err) != "" || RuleID(err) != "" || IsKind(err, KindInternal) {
		t.Fatalf("expected empty kind and rule for plain errors")
	}
	var e *Error
	if e.Error() != "<nil>" || e.Unwrap() != nil {
		t.Fatalf("nil *Error must be safe to use")
	}
}

func TestDigest_ErrorTaxonomy_InvalidGJSONResult(t *testing.T) {
	docs := map[string]string{
		"truncated":     `[{"amount":"123"},{"beneficiary":"John Smith"`,
		"missing comma": `[{"amount":"123"} {"beneficiary":"John Smith"}]`,
		"trailing text": `[{"amount":"123"},{"beneficiary":"John Smith"}] trailing`,
	}
	for name, doc := range docs {
		_, err := Digest(gjson.Parse(doc), false)
		e := mustError(t, err)
		if e.Kind != KindMalformedInput || e.RuleID != "TXD-PARSE-001" {
			t.Fatalf("%s: expected MalformedInput/TXD-PARSE-001, got %s/%s", name, e.Kind, e.RuleID)
		}
	}
}

func TestDigestFields_ErrorTaxonomy_Unencodable(t *testing.T) {
	cases := map[string]struct {
		fields []Field
		kind   Kind
		rule   string
	}{
		"none":          {fields: nil, kind: KindEmptyPayload, rule: "TXD-VAL-106"},
		"position zero": {fields: []Field{{Position: 0, Key: "a", Value: "1"}}, kind: KindTooManyEntries, rule: "TXD-VAL-101"},
		"position 300":  {fields: []Field{{Position: 300, Key: "a", Value: "1"}}, kind: KindTooManyEntries, rule: "TXD-VAL-101"},
		"too long":      {fields: []Field{{Position: 1, Key: "a", Value: strings.Repeat("x", 300)}}, kind: KindEntryTooLong, rule: "TXD-VAL-105"},
	}
	for name, tc := range cases {
		_, err := DigestFields(tc.fields, DefaultOptions())
		e := mustError(t, err)
		if e.Kind != tc.kind || e.RuleID != tc.rule {
			t.Fatalf("%s: expected %s/%s, got %s/%s", name, tc.kind, tc.rule, e.Kind, e.RuleID)
		}
	}

	_, err := DigestFields([]Field{{Position: 1, Key: "a", Value: strings.Repeat("x", 300)}}, DefaultOptions())
	if e := mustError(t, err); e.Length != 302 {
		t.Fatalf("expected Length 302, got %d", e.Length)
	}
}
