// Package upload implements chunked upload staging: inbound file chunks
// are accumulated per flow identifier into temporary files that are
// encrypted at rest, and a descriptor is materialized only once the final
// chunk has arrived.
package upload

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20"

	"github.com/tiplinehq/tipline/internal/utils"
)

// ErrWriteFinalized is returned when writing to a secure temporary file
// after FinalizeWrite.
var ErrWriteFinalized = errors.New("secure temporary file already finalized")

// SecureTempFile is a temporary file whose content never touches disk in
// plaintext. A fresh random key and nonce are generated per file and kept
// only in memory: once the process forgets them, the on-disk bytes are
// irrecoverable, which is exactly what a crashed upload should leave
// behind.
type SecureTempFile struct {
	path string

	key   []byte
	nonce []byte

	file   *os.File
	stream *chacha20.Cipher

	size      int64
	finalized bool
}

// NewSecureTempFile creates an encrypted temporary file inside dir, open
// for writing.
func NewSecureTempFile(dir string) (*SecureTempFile, error) {
	path := filepath.Join(dir, utils.RandomKey(16)+".tmp")

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("error creating secure temporary file: %w", err)
	}

	key := randomBytes(chacha20.KeySize)
	nonce := randomBytes(chacha20.NonceSize)

	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("error initializing cipher: %w", err)
	}

	return &SecureTempFile{
		path:   path,
		key:    key,
		nonce:  nonce,
		file:   file,
		stream: stream,
	}, nil
}

// Write encrypts p with the file's keystream and appends it.
func (f *SecureTempFile) Write(p []byte) (int, error) {
	if f.finalized {
		return 0, ErrWriteFinalized
	}

	encrypted := make([]byte, len(p))
	f.stream.XORKeyStream(encrypted, p)

	n, err := f.file.Write(encrypted)
	f.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("error writing secure temporary file: %w", err)
	}

	return n, nil
}

// FinalizeWrite closes the write half. The file can then be read any
// number of times via Open.
func (f *SecureTempFile) FinalizeWrite() error {
	if f.finalized {
		return nil
	}
	f.finalized = true
	f.stream = nil

	if err := f.file.Close(); err != nil {
		return fmt.Errorf("error closing secure temporary file: %w", err)
	}

	return nil
}

// Open returns a reader yielding the decrypted content from the start of
// the file. Only valid after FinalizeWrite.
func (f *SecureTempFile) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("error opening secure temporary file: %w", err)
	}

	stream, err := chacha20.NewUnauthenticatedCipher(f.key, f.nonce)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("error initializing cipher: %w", err)
	}

	return &decryptingReader{file: file, stream: stream}, nil
}

// Path returns the on-disk location of the encrypted file.
func (f *SecureTempFile) Path() string { return f.path }

// Size returns the number of plaintext bytes written so far.
func (f *SecureTempFile) Size() int64 { return f.size }

// Remove deletes the on-disk file.
func (f *SecureTempFile) Remove() error {
	if !f.finalized {
		f.file.Close()
		f.finalized = true
	}
	return os.Remove(f.path)
}

type decryptingReader struct {
	file   *os.File
	stream *chacha20.Cipher
}

func (r *decryptingReader) Read(p []byte) (int, error) {
	n, err := r.file.Read(p)
	if n > 0 {
		r.stream.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

func (r *decryptingReader) Close() error {
	return r.file.Close()
}

func randomBytes(n int) []byte {
	out := make([]byte, n)
	if _, err := rand.Read(out); err != nil {
		panic(fmt.Sprintf("error reading random bytes: %v", err))
	}
	return out
}
