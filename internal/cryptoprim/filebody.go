package cryptoprim

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// ChunkPayloadSize is the maximum amount of plaintext per chunk. Chosen to
// match the real format's 32 KiB chunks, which keeps random-access reads
// cheap: a read of len bytes at offset O only has to decrypt the chunks
// overlapping [O, O+len), not the whole file.
const ChunkPayloadSize = 32 * 1024

const (
	nonceSize      = 12
	tagSize        = 16
	contentKeySize = 32
	headerSize     = nonceSize + contentKeySize + tagSize
	chunkOverhead  = nonceSize + tagSize
)

// newGCM builds an AES-GCM AEAD, used for both the header (keyed by the
// vault's wrapping key) and each chunk (keyed by the per-file content key).
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptFile encrypts an entire plaintext body into the on-disk chunked
// format: a header carrying a random per-file content key wrapped under the
// master key, followed by fixed-size authenticated chunks. Used for every
// body the vault writes (file contents, dirid.c9r backups, symlink
// targets); the whole ciphertext is built in memory in one piece.
func EncryptFile(plaintext []byte, key *masterkey.Key) ([]byte, error) {
	contentKey := make([]byte, contentKeySize)
	if _, err := rand.Read(contentKey); err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
	}

	header, err := encryptHeader(contentKey, key)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(contentKey)
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}

	out := header
	for chunkIndex := 0; chunkIndex*ChunkPayloadSize < len(plaintext) || (len(plaintext) == 0 && chunkIndex == 0); chunkIndex++ {
		start := chunkIndex * ChunkPayloadSize
		end := start + ChunkPayloadSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		chunk, err := encryptChunk(aead, plaintext[start:end], uint64(chunkIndex))
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if end == len(plaintext) {
			break
		}
	}

	return out, nil
}

// DecryptFile reverses EncryptFile over the whole body.
func DecryptFile(ciphertext []byte, key *masterkey.Key) ([]byte, error) {
	if len(ciphertext) < headerSize {
		return nil, vaulterrors.New(vaulterrors.KindCryptoDecrypt, "", "")
	}

	contentKey, err := decryptHeader(ciphertext[:headerSize], key)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(contentKey)
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}

	rest := ciphertext[headerSize:]
	var out []byte
	for chunkIndex := uint64(0); len(rest) > 0; chunkIndex++ {
		chunkSize := ChunkPayloadSize + chunkOverhead
		if chunkSize > len(rest) {
			chunkSize = len(rest)
		}
		pt, err := decryptChunk(aead, rest[:chunkSize], chunkIndex)
		if err != nil {
			return nil, err
		}
		out = append(out, pt...)
		rest = rest[chunkSize:]
	}

	return out, nil
}

// DecryptRange decrypts only the chunks overlapping [offset, offset+length)
// of the plaintext, used by the streaming Reader handle to serve a single
// pread without materializing the whole file.
func DecryptRange(ciphertext []byte, key *masterkey.Key, offset, length int64) ([]byte, error) {
	if len(ciphertext) < headerSize {
		return nil, vaulterrors.New(vaulterrors.KindCryptoDecrypt, "", "")
	}
	contentKey, err := decryptHeader(ciphertext[:headerSize], key)
	if err != nil {
		return nil, err
	}
	aead, err := newGCM(contentKey)
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}

	firstChunk := offset / ChunkPayloadSize
	lastChunk := (offset + length - 1) / ChunkPayloadSize
	if length <= 0 {
		return nil, nil
	}

	rest := ciphertext[headerSize:]
	physicalChunkSize := ChunkPayloadSize + chunkOverhead

	var out []byte
	for idx := firstChunk; idx <= lastChunk; idx++ {
		start := int(idx) * physicalChunkSize
		if start >= len(rest) {
			break
		}
		end := start + physicalChunkSize
		if end > len(rest) {
			end = len(rest)
		}
		pt, err := decryptChunk(aead, rest[start:end], uint64(idx))
		if err != nil {
			return nil, err
		}
		out = append(out, pt...)
	}

	// Trim to the requested window relative to the first decrypted chunk.
	trimStart := int(offset - firstChunk*ChunkPayloadSize)
	if trimStart < 0 {
		trimStart = 0
	}
	if trimStart > len(out) {
		trimStart = len(out)
	}
	trimEnd := trimStart + int(length)
	if trimEnd > len(out) {
		trimEnd = len(out)
	}
	return out[trimStart:trimEnd], nil
}

func encryptHeader(contentKey []byte, key *masterkey.Key) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
	}

	aead, err := newGCM(key.EncKey())
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}

	sealed := aead.Seal(nil, nonce, contentKey, nil)
	return append(nonce, sealed...), nil
}

func decryptHeader(header []byte, key *masterkey.Key) ([]byte, error) {
	if len(header) != headerSize {
		return nil, vaulterrors.New(vaulterrors.KindCryptoDecrypt, "", "")
	}
	nonce := header[:nonceSize]
	sealed := header[nonceSize:]

	aead, err := newGCM(key.EncKey())
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}

	contentKey, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}
	return contentKey, nil
}

func encryptChunk(aead cipher.AEAD, plaintext []byte, chunkIndex uint64) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
	}
	ad := chunkAssociatedData(chunkIndex)
	sealed := aead.Seal(nil, nonce, plaintext, ad)
	return append(nonce, sealed...), nil
}

func decryptChunk(aead cipher.AEAD, chunk []byte, chunkIndex uint64) ([]byte, error) {
	if len(chunk) < chunkOverhead {
		return nil, vaulterrors.New(vaulterrors.KindCryptoDecrypt, "", "")
	}
	nonce := chunk[:nonceSize]
	sealed := chunk[nonceSize:]
	ad := chunkAssociatedData(chunkIndex)

	pt, err := aead.Open(nil, nonce, sealed, ad)
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", fmt.Sprintf("chunk %d", chunkIndex))
	}
	return pt, nil
}

func chunkAssociatedData(chunkIndex uint64) []byte {
	ad := make([]byte, 8)
	binary.BigEndian.PutUint64(ad, chunkIndex)
	return ad
}

// CiphertextSize returns the on-disk size a plaintext body of length
// plaintextLen would occupy, used to report file size without decrypting
// the body. Exported so vaultops can go the other direction too.
func CiphertextSize(plaintextLen int64) int64 {
	if plaintextLen == 0 {
		return int64(headerSize + chunkOverhead)
	}
	fullChunks := plaintextLen / ChunkPayloadSize
	remainder := plaintextLen % ChunkPayloadSize
	n := fullChunks
	if remainder > 0 {
		n++
	}
	return int64(headerSize) + n*int64(chunkOverhead) + plaintextLen
}

// PlaintextSize reverses CiphertextSize given the on-disk size, used to
// report st_size without decrypting the body.
func PlaintextSize(ciphertextLen int64) int64 {
	if ciphertextLen <= int64(headerSize) {
		return 0
	}
	body := ciphertextLen - int64(headerSize)
	physicalChunk := int64(ChunkPayloadSize + chunkOverhead)
	fullChunks := body / physicalChunk
	remainder := body % physicalChunk
	size := fullChunks * ChunkPayloadSize
	if remainder > 0 {
		size += remainder - chunkOverhead
	}
	if size < 0 {
		size = 0
	}
	return size
}
