// Package txdigest computes the transaction-data digest shown on a secure
// display before a transaction is authorized.
//
// A payload of named string fields is validated, each field is serialized as
// a tagged length-value record, and the concatenated records are hashed.
// The pipeline is a pure function of its input and options.
package txdigest

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"xdao.co/txdigest/cidutil"
)

// Field is one validated (position, key, value) triple. Position is 1-based.
type Field struct {
	Position int
	Key      string
	Value    string
}

// Text is the string carried by the field's record.
func (f Field) Text() string {
	return f.Key + ":" + f.Value
}

// Options configure a pipeline run. Start from DefaultOptions; tag bytes are
// used literally.
type Options struct {
	// Legacy also accepts a flat key/value mapping as the payload.
	Legacy bool
	Params
	// HashAlg is one of HashSHA256 (default when empty), HashSHA512, HashSHA3_256.
	HashAlg string
}

func DefaultOptions() Options {
	return Options{Params: DefaultParams(), HashAlg: HashSHA256}
}

// Result is the outcome of one successful run.
type Result struct {
	Digest  []byte
	Records [][]byte
	HashAlg string
}

// Concat returns the byte stream the digest was computed over.
func (r *Result) Concat() []byte {
	var out []byte
	for _, rec := range r.Records {
		out = append(out, rec...)
	}
	return out
}

// DigestHex returns the digest as uppercase hex.
func (r *Result) DigestHex() string {
	return Hex(r.Digest)
}

// CID returns a CIDv1 (raw codec) for the record stream whose multihash is
// the digest itself.
func (r *Result) CID() (string, error) {
	if r == nil {
		return "", newError(KindInternal, "TXD-CID-001", "nil Result")
	}
	id, err := cidutil.CIDv1RawFromDigest(canonicalHashAlg(r.HashAlg), r.Digest)
	if err != nil {
		return "", wrapError(KindInternal, "TXD-CID-002", "cid: "+err.Error(), err)
	}
	return id.String(), nil
}

// Validate checks payload against the structural rules and returns its
// fields in position order. payload is JSON text (string, []byte,
// json.RawMessage), a gjson.Result, or any value encoding/json can marshal.
//
// The first violation aborts validation.
func Validate(payload any, legacy bool) ([]Field, error) {
	v, err := parsePayload(payload)
	if err != nil {
		return nil, err
	}

	rules := fieldRules()
	seen := make(map[string]struct{}, MaxEntries)
	var fields []Field
	err = candidates(v, legacy, func(c candidate) error {
		if err := applyRules(c, seen, rules); err != nil {
			return err
		}
		seen[c.key] = struct{}{}
		fields = append(fields, Field{Position: c.position, Key: c.key, Value: c.value.Str})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, newError(KindEmptyPayload, "TXD-VAL-106", "empty list")
	}
	return fields, nil
}

// Digest runs the pipeline with the default tags and SHA-256.
func Digest(payload any, legacy bool) (*Result, error) {
	opts := DefaultOptions()
	opts.Legacy = legacy
	return DigestWithOptions(payload, opts)
}

// DigestWithOptions validates payload, encodes the records and hashes them.
func DigestWithOptions(payload any, opts Options) (*Result, error) {
	fields, err := Validate(payload, opts.Legacy)
	if err != nil {
		return nil, err
	}
	return DigestFields(fields, opts)
}

// DigestFields encodes and hashes fields that already passed Validate.
// Fields whose position or length cannot be expressed in a record header
// are rejected.
func DigestFields(fields []Field, opts Options) (*Result, error) {
	if err := checkEncodable(fields); err != nil {
		return nil, err
	}
	records, stream := Encode(fields, opts.Params)
	sum, err := digestFor(opts.HashAlg, stream)
	if err != nil {
		return nil, err
	}
	return &Result{Digest: sum, Records: records, HashAlg: canonicalHashAlg(opts.HashAlg)}, nil
}

func checkEncodable(fields []Field) error {
	if len(fields) == 0 {
		return newError(KindEmptyPayload, "TXD-VAL-106", "empty list")
	}
	for _, f := range fields {
		if f.Position < 1 || f.Position > MaxEntries {
			return entryError(KindTooManyEntries, "TXD-VAL-101", fmt.Sprintf("position %d outside 1..%d", f.Position, MaxEntries), f.Position, f.Key)
		}
		if n := unitLen(f.Text()); n > MaxEntrySize {
			e := entryError(KindEntryTooLong, "TXD-VAL-105", fmt.Sprintf("key+value too long (%d > %d): %s", n, MaxEntrySize, truncate(f.Key, 32)), f.Position, f.Key)
			e.Length = n
			return e
		}
	}
	return nil
}

// Verify recomputes the digest of payload and compares it with expected.
func Verify(payload any, expected []byte, opts Options) (*Result, error) {
	res, err := DigestWithOptions(payload, opts)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(res.Digest, expected) != 1 {
		return nil, newError(KindDigestMismatch, "TXD-VERIFY-001", "digest mismatch: computed "+res.DigestHex())
	}
	return res, nil
}

// VerifyRecords checks a record list against digest and returns the fields
// the records display. Records must be in position order starting at 1.
func VerifyRecords(records [][]byte, digest []byte, opts Options) ([]Field, error) {
	if len(records) == 0 {
		return nil, newError(KindEmptyPayload, "TXD-VAL-106", "empty list")
	}
	if len(records) > MaxEntries {
		e := newError(KindTooManyEntries, "TXD-VAL-101", fmt.Sprintf("too many entries (max is %d)", MaxEntries))
		e.Position = len(records)
		return nil, e
	}

	fields := make([]Field, 0, len(records))
	var stream []byte
	for i, rec := range records {
		f, err := DecodeRecord(rec, i+1, opts.Params)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		stream = append(stream, rec...)
	}

	sum, err := digestFor(opts.HashAlg, stream)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(sum, digest) != 1 {
		return nil, newError(KindDigestMismatch, "TXD-VERIFY-001", "digest mismatch: computed "+Hex(sum))
	}
	return fields, nil
}

// Hex returns b as uppercase hexadecimal.
func Hex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// ParseHex decodes hexadecimal in either case, ignoring surrounding space.
func ParseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, wrapError(KindMalformedInput, "TXD-PARSE-003", "invalid hex: "+err.Error(), err)
	}
	return b, nil
}
