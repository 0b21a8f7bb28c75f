package vaultconfig

import (
	"crypto/aes"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// defaultIV is the RFC 3394 key wrap default integrity check value. No
// library in this codebase's dependency set implements AES key wrap, so
// this is a small, self-contained port of the algorithm; see DESIGN.md.
var defaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// keyWrap implements RFC 3394 AES key wrap. plaintext must be a multiple of
// 8 bytes; masterkey.cryptomator always wraps two 32-byte keys together.
func keyWrap(kek, plaintext []byte) ([]byte, error) {
	if len(plaintext)%8 != 0 || len(plaintext) < 16 {
		return nil, fmt.Errorf("vaultconfig: key wrap input must be a multiple of 8 bytes, >= 16")
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, err
	}

	n := len(plaintext) / 8
	r := make([][8]byte, n+1)
	copy(r[0][:], defaultIV[:])
	for i := 0; i < n; i++ {
		copy(r[i+1][:], plaintext[i*8:(i+1)*8])
	}

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], r[0][:])
			copy(buf[8:], r[i][:])
			block.Encrypt(buf, buf)

			t := uint64(n*j + i)
			var tBytes [8]byte
			binary.BigEndian.PutUint64(tBytes[:], t)
			for k := range r[0] {
				r[0][k] = buf[k] ^ tBytes[k]
			}
			copy(r[i][:], buf[8:])
		}
	}

	out := make([]byte, 0, (n+1)*8)
	out = append(out, r[0][:]...)
	for i := 1; i <= n; i++ {
		out = append(out, r[i][:]...)
	}
	return out, nil
}

// keyUnwrap reverses keyWrap, returning an error if the integrity check
// value does not match (wrong KEK or corrupted file).
func keyUnwrap(kek, wrapped []byte) ([]byte, error) {
	if len(wrapped)%8 != 0 || len(wrapped) < 24 {
		return nil, fmt.Errorf("vaultconfig: key unwrap input must be a multiple of 8 bytes, >= 24")
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, err
	}

	n := len(wrapped)/8 - 1
	r := make([][8]byte, n+1)
	copy(r[0][:], wrapped[:8])
	for i := 0; i < n; i++ {
		copy(r[i+1][:], wrapped[(i+1)*8:(i+2)*8])
	}

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(n*j + i)
			var tBytes [8]byte
			binary.BigEndian.PutUint64(tBytes[:], t)

			var a [8]byte
			for k := range a {
				a[k] = r[0][k] ^ tBytes[k]
			}
			copy(buf[:8], a[:])
			copy(buf[8:], r[i][:])
			block.Decrypt(buf, buf)

			copy(r[0][:], buf[:8])
			copy(r[i][:], buf[8:])
		}
	}

	if subtle.ConstantTimeCompare(r[0][:], defaultIV[:]) != 1 {
		return nil, fmt.Errorf("vaultconfig: key unwrap integrity check failed")
	}

	out := make([]byte, 0, n*8)
	for i := 1; i <= n; i++ {
		out = append(out, r[i][:]...)
	}
	return out, nil
}
