// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package store

import (
	"encoding/binary"
	"math"

	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
)

// fingerprintVersion tags the blob layout so the encoding can evolve without
// silently misreading old rows.
const fingerprintVersion byte = 1

// EncodeFingerprint serialises a vector as a version byte followed by
// little-endian IEEE-754 float32s. The encoding is exact: DecodeFingerprint
// returns the same bits.
func EncodeFingerprint(vec []float32) []byte {
	buf := make([]byte, 1+4*len(vec))
	buf[0] = fingerprintVersion
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[1+4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeFingerprint parses a blob written by EncodeFingerprint.
func DecodeFingerprint(blob []byte) ([]float32, error) {
	if len(blob) == 0 {
		return nil, nmerr.New(nmerr.CodeStoreEncodingInvalid, "fingerprint: empty blob")
	}
	if blob[0] != fingerprintVersion {
		return nil, nmerr.Errorf(nmerr.CodeStoreEncodingInvalid,
			"fingerprint: unsupported encoding version %d", blob[0])
	}
	if (len(blob)-1)%4 != 0 {
		return nil, nmerr.Errorf(nmerr.CodeStoreEncodingInvalid,
			"fingerprint: blob length %d is not a whole number of float32s", len(blob))
	}

	vec := make([]float32, (len(blob)-1)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[1+4*i:]))
	}
	return vec, nil
}
