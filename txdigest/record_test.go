package txdigest

import (
	"bytes"
	"testing"
)

func TestEncodeRecord_TruncatesCodeUnits(t *testing.T) {
	rec := EncodeRecord(Field{Position: 3, Key: "cur", Value: "€é"}, DefaultParams())
	// "cur:" then U+20AC -> 0xAC and U+00E9 -> 0xE9.
	want := []byte{0xDF, 0x73, 6, 'c', 'u', 'r', ':', 0xAC, 0xE9}
	if !bytes.Equal(rec, want) {
		t.Fatalf("got % X want % X", rec, want)
	}
}

func TestEncodeRecord_SurrogatePair(t *testing.T) {
	rec := EncodeRecord(Field{Position: 1, Key: "m", Value: "\U0001F600"}, DefaultParams())
	// U+1F600 is D83D DE00 in UTF-16.
	want := []byte{0xDF, 0x71, 4, 'm', ':', 0x3D, 0x00}
	if !bytes.Equal(rec, want) {
		t.Fatalf("got % X want % X", rec, want)
	}
}

func TestDecodeRecord_RoundTripLatin1(t *testing.T) {
	f := Field{Position: 2, Key: "beneficiary", Value: "José: Muñoz"}
	got, err := DecodeRecord(EncodeRecord(f, DefaultParams()), 2, DefaultParams())
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if got != f {
		t.Fatalf("got %+v want %+v", got, f)
	}
}

func TestDecodeRecord_Malformed(t *testing.T) {
	good := EncodeRecord(Field{Position: 1, Key: "amount", Value: "123"}, DefaultParams())
	cases := map[string]struct {
		rec      []byte
		position int
		rule     string
	}{
		"short header": {rec: good[:2], position: 1, rule: "TXD-REC-001"},
		"class tag":    {rec: append([]byte{0x9F}, good[1:]...), position: 1, rule: "TXD-REC-002"},
		"sub-tag":      {rec: good, position: 2, rule: "TXD-REC-003"},
		"length":       {rec: good[:len(good)-1], position: 1, rule: "TXD-REC-004"},
		"separator":    {rec: []byte{0xDF, 0x71, 3, 'a', 'b', 'c'}, position: 1, rule: "TXD-REC-005"},
	}
	for name, tc := range cases {
		_, err := DecodeRecord(tc.rec, tc.position, DefaultParams())
		if !IsKind(err, KindMalformedRecord) {
			t.Fatalf("%s: expected MalformedRecord, got %v", name, err)
		}
		if RuleID(err) != tc.rule {
			t.Fatalf("%s: expected %s, got %s", name, tc.rule, RuleID(err))
		}
	}
}

func TestVerifyRecords(t *testing.T) {
	res, err := Digest(`[{"amount":"123"},{"beneficiary":"John Smith"}]`, false)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	fields, err := VerifyRecords(res.Records, res.Digest, DefaultOptions())
	if err != nil {
		t.Fatalf("VerifyRecords: %v", err)
	}
	if len(fields) != 2 || fields[1].Value != "John Smith" {
		t.Fatalf("unexpected fields %+v", fields)
	}

	swapped := [][]byte{res.Records[1], res.Records[0]}
	if _, err := VerifyRecords(swapped, res.Digest, DefaultOptions()); !IsKind(err, KindMalformedRecord) {
		t.Fatalf("expected MalformedRecord for reordered records, got %v", err)
	}

	tampered := [][]byte{res.Records[0], append([]byte(nil), res.Records[1]...)}
	tampered[1][len(tampered[1])-1] = 'X'
	if _, err := VerifyRecords(tampered, res.Digest, DefaultOptions()); !IsKind(err, KindDigestMismatch) {
		t.Fatalf("expected DigestMismatch, got %v", err)
	}

	if _, err := VerifyRecords(nil, res.Digest, DefaultOptions()); !IsKind(err, KindEmptyPayload) {
		t.Fatalf("expected EmptyPayload, got %v", err)
	}
	many := make([][]byte, MaxEntries+1)
	if _, err := VerifyRecords(many, res.Digest, DefaultOptions()); !IsKind(err, KindTooManyEntries) {
		t.Fatalf("expected TooManyEntries, got %v", err)
	}
}

func TestDigest_LoneSurrogateBecomesReplacement(t *testing.T) {
	res, err := Digest(`[{"a":"\ud800"}]`, false)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	want := []byte{0xDF, 0x71, 3, 'a', ':', 0xFD}
	if !bytes.Equal(res.Records[0], want) {
		t.Fatalf("got % X want % X", res.Records[0], want)
	}
}
