package pts

import "fmt"

const (
	// HeaderSize is the length of the clear-text file header.
	HeaderSize = 20

	cipherTypeOffset = 0x12
	cipherSeedOffset = 0x13
)

// CipherKind selects one of the two obfuscation schemes.
type CipherKind byte

const (
	// CipherV5 covers sessions written by versions 5 through 9.
	CipherV5 CipherKind = 0x01
	// CipherV10 covers sessions written by versions 10 through 12.
	CipherV10 CipherKind = 0x05
)

func (k CipherKind) params() (multiplier int, negate bool, err error) {
	switch k {
	case CipherV5:
		return 53, false, nil
	case CipherV10:
		return 11, true, nil
	default:
		return 0, false, formatErr(ErrUnsupportedCipher, cipherTypeOffset, "0x01 or 0x05", fmt.Sprintf("0x%02x", byte(k)))
	}
}

func (k CipherKind) keyIndex(pos int) byte {
	if k == CipherV5 {
		return byte(pos & 0xff)
	}
	return byte((pos >> 12) & 0xff)
}

// DeriveDelta finds the smallest i with (i*multiplier) mod 256 == seed.
func DeriveDelta(kind CipherKind, seed byte) (byte, error) {
	mul, negate, err := kind.params()
	if err != nil {
		return 0, err
	}
	for i := 0; i < 256; i++ {
		if (i*mul)&0xff == int(seed) {
			if negate {
				return byte(-i), nil
			}
			return byte(i), nil
		}
	}
	return 0, formatErr(ErrKeyDerivation, cipherSeedOffset, "seed reachable by the multiplier", fmt.Sprintf("0x%02x", seed))
}

// KeyTable is the 256-entry substitution key.
type KeyTable [256]byte

// NewKeyTable builds key[j] = j*delta mod 256.
func NewKeyTable(delta byte) KeyTable {
	var t KeyTable
	for j := range t {
		t[j] = byte(j * int(delta))
	}
	return t
}

// Apply XORs src into dst. start is the absolute stream position of src[0],
// which drives the key index. Applying twice restores the input.
func (t *KeyTable) Apply(kind CipherKind, dst, src []byte, start int) {
	for i, b := range src {
		dst[i] = b ^ t[kind.keyIndex(start+i)]
	}
}

// Decrypt returns a de-obfuscated copy of a raw session file. The first
// HeaderSize bytes are never ciphered and are copied through.
func Decrypt(raw []byte) ([]byte, error) {
	if len(raw) < HeaderSize {
		return nil, formatErr(ErrInvalidFormat, 0, fmt.Sprintf("at least %d bytes", HeaderSize), fmt.Sprintf("%d bytes", len(raw)))
	}
	kind := CipherKind(raw[cipherTypeOffset])
	delta, err := DeriveDelta(kind, raw[cipherSeedOffset])
	if err != nil {
		return nil, err
	}
	key := NewKeyTable(delta)

	out := make([]byte, len(raw))
	copy(out, raw[:HeaderSize])
	key.Apply(kind, out[HeaderSize:], raw[HeaderSize:], HeaderSize)
	return out, nil
}
