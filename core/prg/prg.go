// Package prg implements a deterministic pseudorandom generator of field
// elements, built on AES in counter mode.
//
// A pseudorandom block is produced as AES(key, nonce || counter), and the
// counter advances by one for every block consumed. The same (key, counter)
// pair is never used twice within the lifetime of a PRG, which is what makes
// the output stream computationally indistinguishable from uniform.
//
// A field element is derived by reducing the first 8 bytes of a block modulo
// p = 2^61 - 1. Direct reduction of a 64-bit block introduces a bias of
// relative magnitude at most 2^-61; this is accepted here instead of
// rejection sampling, as the generator targets simulation and reproducible
// tests rather than production key material.
package prg

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/hashcloak/smol-mpc/core/algebra"
)

const (
	// KeyLen is the AES-128 key length in bytes.
	KeyLen = 16

	// NonceLen is the length in bytes of the nonce prefixed to the counter.
	NonceLen = 8

	// SeedLen is the seed length in bytes: the key followed by the nonce.
	SeedLen = KeyLen + NonceLen

	blockLen = aes.BlockSize
)

// PRG is a deterministic, seeded generator. Two PRGs constructed from the
// same seed produce identical output sequences for identical call sequences.
// A PRG is owned by a single party and is not safe for concurrent use.
type PRG struct {
	block   cipher.Block
	nonce   [NonceLen]byte
	counter uint64
}

// New returns a PRG seeded with the given bytes. Seeds longer than SeedLen
// are cropped and shorter seeds are zero-padded, so any byte string is a
// valid seed. The first KeyLen bytes become the AES key and the remainder the
// nonce. The counter starts at zero.
func New(seed []byte) *PRG {
	material := make([]byte, SeedLen)
	copy(material, seed)

	block, err := aes.NewCipher(material[:KeyLen])
	if err != nil {
		// aes.NewCipher only fails on invalid key sizes, and the key size
		// here is constant.
		panic(err)
	}

	prg := &PRG{block: block, counter: 0}
	copy(prg.nonce[:], material[KeyLen:])
	return prg
}

// Counter returns the number of blocks consumed so far.
func (prg *PRG) Counter() uint64 {
	return prg.counter
}

// NextBytes generates n pseudorandom bytes, consuming one block per blockLen
// bytes (rounded up).
func (prg *PRG) NextBytes(n int) []byte {
	if n <= 0 {
		return nil
	}

	blocks := n / blockLen
	if n%blockLen != 0 {
		blocks++
	}

	// The keystream for sequential counters is produced in one pass: CTR
	// mode increments the initial counter block for every blockLen bytes.
	var iv [blockLen]byte
	copy(iv[:NonceLen], prg.nonce[:])
	binary.BigEndian.PutUint64(iv[NonceLen:], prg.counter)

	out := make([]byte, blocks*blockLen)
	stream := cipher.NewCTR(prg.block, iv[:])
	stream.XORKeyStream(out, out)

	prg.counter += uint64(blocks)
	return out[:n]
}

// NextElement generates one pseudorandom field element, consuming exactly one
// block. The first 8 bytes of the block are interpreted as a little-endian
// integer and reduced into [0, p).
func (prg *PRG) NextElement() algebra.Element {
	raw := prg.NextBytes(8)
	return algebra.NewElement(binary.LittleEndian.Uint64(raw))
}
