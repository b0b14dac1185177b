// Package codecerr defines the sentinel error taxonomy shared by every
// stage of the archive codec, so callers can classify failures with
// errors.Is regardless of which package produced them.
package codecerr

import "errors"

var (
	// ErrIO covers underlying read/write/stat failures.
	ErrIO = errors.New("codec: i/o failure")

	// ErrFormatInvalid covers bad magic, bad version, or impossible field values.
	ErrFormatInvalid = errors.New("codec: invalid archive format")

	// ErrHmacMismatch means the header integrity check failed.
	ErrHmacMismatch = errors.New("codec: header hmac verification failed")

	// ErrAuth means an AEAD tag mismatch: wrong password or tampering.
	ErrAuth = errors.New("codec: authentication failed")

	// ErrInvalidMetadata means decoded entry metadata violates an invariant.
	ErrInvalidMetadata = errors.New("codec: invalid entry metadata")

	// ErrDecompress means the codec failed or the output length disagreed
	// with the expected size.
	ErrDecompress = errors.New("codec: decompression failed")

	// ErrSizeBound means a user input or header field exceeds a hard limit.
	ErrSizeBound = errors.New("codec: size bound exceeded")

	// ErrPathTraversal means an attacker-supplied path was rejected.
	ErrPathTraversal = errors.New("codec: path traversal rejected")

	// ErrExists means the output file is present without force.
	ErrExists = errors.New("codec: output already exists")
)
