package txdigest

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Supported Hash-Alg names. The protocol default is sha256.
const (
	HashSHA256   = "sha256"
	HashSHA512   = "sha512"
	HashSHA3_256 = "sha3-256"
)

func newHash(hashAlg string) (hash.Hash, error) {
	switch hashAlg {
	case "", HashSHA256:
		return sha256.New(), nil
	case HashSHA512:
		return sha512.New(), nil
	case HashSHA3_256:
		return sha3.New256(), nil
	default:
		return nil, newError(KindDigestComputation, "TXD-DIGEST-001", "unsupported hash algorithm: "+hashAlg)
	}
}

// digestFor hashes the concatenated record stream.
func digestFor(hashAlg string, stream []byte) ([]byte, error) {
	h, err := newHash(hashAlg)
	if err != nil {
		return nil, err
	}
	if _, err := h.Write(stream); err != nil {
		return nil, wrapError(KindDigestComputation, "TXD-DIGEST-002", "digest error: "+err.Error(), err)
	}
	return h.Sum(nil), nil
}

func canonicalHashAlg(hashAlg string) string {
	if hashAlg == "" {
		return HashSHA256
	}
	return hashAlg
}
