package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// MultihashCode maps a Hash-Alg name to its multihash code.
func MultihashCode(hashAlg string) (uint64, error) {
	switch hashAlg {
	case "sha256":
		return multihash.SHA2_256, nil
	case "sha512":
		return multihash.SHA2_512, nil
	case "sha3-256":
		return multihash.SHA3_256, nil
	default:
		return 0, fmt.Errorf("cidutil: no multihash code for %q", hashAlg)
	}
}

// CIDv1RawFromDigest returns a CIDv1 using the "raw" multicodec around a
// digest that was already computed with hashAlg. Nothing is re-hashed.
func CIDv1RawFromDigest(hashAlg string, digest []byte) (cid.Cid, error) {
	code, err := MultihashCode(hashAlg)
	if err != nil {
		return cid.Undef, err
	}
	mh, err := multihash.Encode(digest, code)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// DigestFromCID extracts the hash name and digest bytes carried by a CID string.
func DigestFromCID(s string) (string, []byte, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return "", nil, err
	}
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		return "", nil, err
	}
	switch dec.Code {
	case multihash.SHA2_256:
		return "sha256", dec.Digest, nil
	case multihash.SHA2_512:
		return "sha512", dec.Digest, nil
	case multihash.SHA3_256:
		return "sha3-256", dec.Digest, nil
	default:
		return "", nil, fmt.Errorf("cidutil: unsupported multihash code 0x%x", dec.Code)
	}
}
