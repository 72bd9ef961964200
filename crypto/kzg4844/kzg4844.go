// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package kzg4844 implements the KZG commitment scheme types used by EIP-4844
// blob transactions.
package kzg4844

import "hash"

// BlobCommitmentVersionKZG is the version byte used for versioned hashes.
const BlobCommitmentVersionKZG uint8 = 0x01

// BlobTxHashVersion is an alias kept for readability at call sites that hash
// a commitment rather than a blob.
const BlobTxHashVersion = BlobCommitmentVersionKZG

// Blob represents a 4844 data blob.
type Blob [131072]byte

// Commitment is a serialized commitment to a polynomial.
type Commitment [48]byte

// Proof is a serialized commitment to the KZG proof.
type Proof [48]byte

// CalcBlobHashV1 calculates the 'versioned blob hash' of a commitment.
// The given hasher must be a sha256 hash instance, to avoid redundant
// allocations.
func CalcBlobHashV1(hasher hash.Hash, commit *Commitment) (vh [32]byte) {
	hasher.Reset()
	hasher.Write(commit[:])
	sum := hasher.Sum(nil)
	copy(vh[:], sum)
	vh[0] = BlobCommitmentVersionKZG
	return vh
}
