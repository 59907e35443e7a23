package txdigest

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

const (
	// DefaultClassTag is the fixed first byte of every record.
	DefaultClassTag byte = 0xDF
	// DefaultSubtagBase is added to the 1-based position to form the second byte.
	DefaultSubtagBase byte = 0x70

	recordHeaderSize = 3
)

// Params are the record tag constants. Verifiers in the field expect the
// defaults; see DefaultParams.
type Params struct {
	ClassTag   byte
	SubtagBase byte
}

func DefaultParams() Params {
	return Params{ClassTag: DefaultClassTag, SubtagBase: DefaultSubtagBase}
}

// codeUnits returns the UTF-16 code units of s.
//
// Records carry one byte per code unit, keeping only the low 8 bits. Text
// outside U+0000..U+00FF therefore does not survive the round trip; this
// matches deployed verifiers and is kept on purpose. A lone surrogate escape
// such as "\ud800" is decoded to U+FFFD before it gets here, so its byte is
// 0xFD rather than 0x00.
func codeUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// unitLen is the number of bytes s occupies inside a record. Ranging over a
// string never yields a rune above U+10FFFF.
func unitLen(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
			continue
		}
		n++
	}
	return n
}

// EncodeRecord serializes one validated field. Positions and lengths are
// written as single bytes; DigestFields rejects fields that would overflow.
//
// Layout:
//
//	ClassTag | SubtagBase+Position | len | "key:value" (low byte of each UTF-16 unit)
func EncodeRecord(f Field, p Params) []byte {
	units := codeUnits(f.Text())
	rec := make([]byte, 0, recordHeaderSize+len(units))
	rec = append(rec, p.ClassTag, p.SubtagBase+byte(f.Position), byte(len(units)))
	for _, u := range units {
		rec = append(rec, byte(u))
	}
	return rec
}

// Encode serializes fields in order, returning each record and their concatenation.
func Encode(fields []Field, p Params) (records [][]byte, stream []byte) {
	records = make([][]byte, 0, len(fields))
	for _, f := range fields {
		rec := EncodeRecord(f, p)
		records = append(records, rec)
		stream = append(stream, rec...)
	}
	return records, stream
}

// DecodeRecord parses a record expected at the given 1-based position and
// returns the field it displays. Each payload byte maps back to the code
// point of the same value. The key ends at the first ':'.
func DecodeRecord(rec []byte, position int, p Params) (Field, error) {
	if len(rec) < recordHeaderSize {
		return Field{}, recordError("TXD-REC-001", fmt.Sprintf("record %d: short header (%d bytes)", position, len(rec)), position)
	}
	if rec[0] != p.ClassTag {
		return Field{}, recordError("TXD-REC-002", fmt.Sprintf("record %d: class tag 0x%02X, want 0x%02X", position, rec[0], p.ClassTag), position)
	}
	if want := p.SubtagBase + byte(position); rec[1] != want {
		return Field{}, recordError("TXD-REC-003", fmt.Sprintf("record %d: sub-tag 0x%02X, want 0x%02X", position, rec[1], want), position)
	}
	if n := int(rec[2]); n != len(rec)-recordHeaderSize {
		e := recordError("TXD-REC-004", fmt.Sprintf("record %d: length byte %d, payload has %d bytes", position, n, len(rec)-recordHeaderSize), position)
		e.Length = n
		return Field{}, e
	}

	var b strings.Builder
	for _, c := range rec[recordHeaderSize:] {
		b.WriteRune(rune(c))
	}
	key, value, ok := strings.Cut(b.String(), ":")
	if !ok {
		return Field{}, recordError("TXD-REC-005", fmt.Sprintf("record %d: missing key separator", position), position)
	}
	return Field{Position: position, Key: key, Value: value}, nil
}

func recordError(ruleID, msg string, position int) *Error {
	e := newError(KindMalformedRecord, ruleID, msg)
	e.Position = position
	return e
}
