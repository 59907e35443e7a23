package model

import "encoding/json"

type ComplianceMode string

const (
	CompliancePermissive ComplianceMode = "permissive"
	ComplianceStrict     ComplianceMode = "strict"
)

// DigestRequest carries a payload exactly as the caller received it.
//
// Payload is embedded JSON (new or legacy format), not a string holding JSON.
// Compliance "permissive" also accepts the legacy mapping.
type DigestRequest struct {
	Payload    json.RawMessage `json:"payload"`
	Compliance ComplianceMode  `json:"compliance"`
	HashAlg    string          `json:"hashAlg,omitempty"`
}

type Record struct {
	Position int    `json:"position"`
	Key      string `json:"key"`
	Hex      string `json:"hex"`
}

type DigestResponse struct {
	Digest  string   `json:"digest"`
	HashAlg string   `json:"hashAlg"`
	CID     string   `json:"cid"`
	Records []Record `json:"records"`
}

// VerifyRequest checks records (uppercase or lowercase hex) against a digest.
type VerifyRequest struct {
	Digest  string   `json:"digest"`
	Records []string `json:"records"`
	HashAlg string   `json:"hashAlg,omitempty"`
}

type Field struct {
	Position int    `json:"position"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}

type VerifyResponse struct {
	Digest string  `json:"digest"`
	Fields []Field `json:"fields"`
}

// DigestCheck reports a payload whose digest matched the expected one.
type DigestCheck struct {
	OK      bool   `json:"ok"`
	Digest  string `json:"digest"`
	HashAlg string `json:"hashAlg"`
	CID     string `json:"cid"`
}
