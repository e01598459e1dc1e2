// Package encryption implements the at-rest file codec: streaming AES-256
// in CTR mode, with a fresh random 16-byte IV written as the first bytes of
// every ciphertext. The key is derived once at startup as SHA-256 of the
// configured secret.
//
// The codec provides confidentiality only. Ciphertext carries no
// authentication tag, so callers must not treat a successful decrypt as
// proof the blob was not tampered with.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

const ivSize = aes.BlockSize

var (
	ErrNoSecret        = errors.New("encryption secret is not set")
	ErrShortCiphertext = errors.New("ciphertext shorter than IV")
)

// CryptoError wraps a failure inside an encrypt or decrypt pass.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string { return fmt.Sprintf("crypto %s: %v", e.Op, e.Err) }
func (e *CryptoError) Unwrap() error { return e.Err }

// Codec holds the derived symmetric key. It is read-only after construction
// and safe for concurrent use.
type Codec struct {
	key []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, &CryptoError{Op: "init", Err: ErrNoSecret}
	}
	sum := sha256.Sum256([]byte(secret))
	return &Codec{key: sum[:]}, nil
}

// EncryptFile encrypts inputPath into outputPath, creating or overwriting
// the output. The input is never modified. EncryptFile returns only after
// the ciphertext has been flushed to persistent storage.
func (c *Codec) EncryptFile(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return &CryptoError{Op: "encrypt", Err: err}
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return &CryptoError{Op: "encrypt", Err: err}
	}

	if err = c.encrypt(in, out); err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return &CryptoError{Op: "encrypt", Err: err}
	}
	return nil
}

func (c *Codec) encrypt(in io.Reader, out io.Writer) error {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return err
	}
	if _, err := out.Write(iv); err != nil {
		return err
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return err
	}
	w := cipher.StreamWriter{S: cipher.NewCTR(block, iv), W: out}
	_, err = io.Copy(w, in)
	return err
}

// DecryptFile reads the IV from the first 16 bytes of inputPath and streams
// the remainder through the inverse transform into outputPath.
func (c *Codec) DecryptFile(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return &CryptoError{Op: "decrypt", Err: err}
	}
	defer in.Close()

	iv := make([]byte, ivSize)
	if _, err = io.ReadFull(in, iv); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrShortCiphertext
		}
		return &CryptoError{Op: "decrypt", Err: err}
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return &CryptoError{Op: "decrypt", Err: err}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return &CryptoError{Op: "decrypt", Err: err}
	}

	r := cipher.StreamReader{S: cipher.NewCTR(block, iv), R: in}
	_, err = io.Copy(out, r)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return &CryptoError{Op: "decrypt", Err: err}
	}
	return nil
}
