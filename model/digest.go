package model

import (
	"errors"
	"strconv"

	"xdao.co/txdigest/compliance"
	"xdao.co/txdigest/txdigest"
)

// Digest runs the pipeline for a boundary request and returns its JSON view.
func Digest(req DigestRequest) (*DigestResponse, error) {
	return DigestWithParams(req, txdigest.DefaultParams())
}

// DigestWithParams is Digest with non-default record tags.
func DigestWithParams(req DigestRequest, params txdigest.Params) (*DigestResponse, error) {
	if len(req.Payload) == 0 {
		return nil, NewError(ErrInvalidRequest, "missing payload")
	}
	mode, err := toCompliance(req.Compliance)
	if err != nil {
		return nil, err
	}

	fields, err := txdigest.Validate(req.Payload, mode.Legacy())
	if err != nil {
		return nil, mapErr(err)
	}
	opts := txdigest.Options{Legacy: mode.Legacy(), Params: params, HashAlg: req.HashAlg}
	res, err := txdigest.DigestFields(fields, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	return fromResult(res, fields)
}

// Verify checks hex records against a hex digest and returns the displayed fields.
func Verify(req VerifyRequest) (*VerifyResponse, error) {
	return VerifyWithParams(req, txdigest.DefaultParams())
}

// VerifyWithParams is Verify with non-default record tags.
func VerifyWithParams(req VerifyRequest, params txdigest.Params) (*VerifyResponse, error) {
	digest, err := txdigest.ParseHex(req.Digest)
	if err != nil {
		return nil, NewError(ErrInvalidRequest, "invalid digest: "+err.Error())
	}
	records := make([][]byte, 0, len(req.Records))
	for i, h := range req.Records {
		rec, err := txdigest.ParseHex(h)
		if err != nil {
			return nil, NewError(ErrInvalidRequest, "invalid record["+strconv.Itoa(i)+"]: "+err.Error())
		}
		records = append(records, rec)
	}

	opts := txdigest.Options{Params: params, HashAlg: req.HashAlg}
	fields, err := txdigest.VerifyRecords(records, digest, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	out := &VerifyResponse{Digest: txdigest.Hex(digest), Fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		out.Fields = append(out.Fields, Field{Position: f.Position, Key: f.Key, Value: f.Value})
	}
	return out, nil
}

func toCompliance(m ComplianceMode) (compliance.ComplianceMode, error) {
	if m == "" {
		return compliance.Strict, nil
	}
	mode, err := compliance.Parse(string(m))
	if err != nil {
		return 0, NewError(ErrInvalidRequest, err.Error())
	}
	return mode, nil
}

var kindCodes = map[txdigest.Kind]ErrorCode{
	txdigest.KindMalformedInput:     ErrMalformedInput,
	txdigest.KindInvalidInputFormat: ErrInvalidInputFormat,
	txdigest.KindInvalidEntry:       ErrInvalidEntry,
	txdigest.KindTooManyEntries:     ErrTooManyEntries,
	txdigest.KindInvalidKey:         ErrInvalidKey,
	txdigest.KindDuplicateKey:       ErrDuplicateKey,
	txdigest.KindInvalidValue:       ErrInvalidValue,
	txdigest.KindEntryTooLong:       ErrEntryTooLong,
	txdigest.KindEmptyPayload:       ErrEmptyPayload,
	txdigest.KindDigestComputation:  ErrDigestComputation,
	txdigest.KindMalformedRecord:    ErrMalformedRecord,
	txdigest.KindDigestMismatch:     ErrDigestMismatch,
}

// MapError converts any error into a *CodedError.
func MapError(err error) *CodedError {
	if err == nil {
		return nil
	}
	return mapErr(err)
}

func mapErr(err error) *CodedError {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce
	}
	var te *txdigest.Error
	if errors.As(err, &te) {
		code, ok := kindCodes[te.Kind]
		if !ok {
			code = ErrInternal
		}
		return &CodedError{Code: code, Message: te.Message, RuleID: te.RuleID, Position: te.Position}
	}
	return NewError(ErrInternal, err.Error())
}

func fromResult(res *txdigest.Result, fields []txdigest.Field) (*DigestResponse, error) {
	cid, err := res.CID()
	if err != nil {
		return nil, mapErr(err)
	}
	out := &DigestResponse{
		Digest:  res.DigestHex(),
		HashAlg: res.HashAlg,
		CID:     cid,
		Records: make([]Record, 0, len(res.Records)),
	}
	for i, rec := range res.Records {
		out.Records = append(out.Records, Record{Position: fields[i].Position, Key: fields[i].Key, Hex: txdigest.Hex(rec)})
	}
	return out, nil
}
