// Package readers generates byte payloads for upload tests, mirroring
// the random-data reader every devtools test client in this lineage
// carries (tutils.PutObjRR's reader argument).
package readers

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"hash/crc32"
	"io"
)

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// RandReader is a bytes.Reader over a freshly generated random payload,
// with its CRC32C-Castagnoli checksum available before the caller ever
// reads a byte (upload callers need the checksum up front to set
// x-goog-hash / verify round-trips).
type RandReader struct {
	*bytes.Reader
	size  int64
	crc32c string
}

// NewRandReader returns a RandReader over size random bytes.
func NewRandReader(size int64) (*RandReader, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	sum := crc32.Checksum(buf, castagnoliTable)
	var b [4]byte
	b[0] = byte(sum >> 24)
	b[1] = byte(sum >> 16)
	b[2] = byte(sum >> 8)
	b[3] = byte(sum)
	return &RandReader{
		Reader: bytes.NewReader(buf),
		size:   size,
		crc32c: base64.StdEncoding.EncodeToString(b[:]),
	}, nil
}

func (r *RandReader) Size() int64 { return r.size }

// CRC32C returns the base64-encoded big-endian CRC32C of the generated
// payload, the same encoding objectstore.HashingWriter.CRC32CBase64
// produces, so callers can assert equality against a PUT response.
func (r *RandReader) CRC32C() string { return r.crc32c }

var _ io.ReadSeeker = (*RandReader)(nil)
