package objectstore

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"io"
)

// castagnoliTable is the polynomial the real provider uses for object
// checksums (spec §9: "the source initially shipped the wrong polynomial;
// be explicit" — CRC32 and CRC32C-Castagnoli must never be conflated).
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// HashingWriter forwards writes to an underlying writer while accumulating
// an MD5 and a CRC32C-Castagnoli checksum over everything written, so
// upload handlers never need a second pass over the content.
type HashingWriter struct {
	w      io.Writer
	md5    interface {
		io.Writer
		Sum([]byte) []byte
	}
	crc32c interface {
		io.Writer
		Sum32() uint32
	}
	size int64
}

func NewHashingWriter(w io.Writer) *HashingWriter {
	return &HashingWriter{
		w:      w,
		md5:    md5.New(),
		crc32c: crc32.New(castagnoliTable),
	}
}

func (h *HashingWriter) Write(p []byte) (int, error) {
	n, err := h.w.Write(p)
	if n > 0 {
		h.md5.Write(p[:n])
		h.crc32c.Write(p[:n])
		h.size += int64(n)
	}
	return n, err
}

// MD5Hex returns the lowercase-hex MD5 digest accumulated so far.
func (h *HashingWriter) MD5Hex() string {
	return hexEncode(h.md5.Sum(nil))
}

// CRC32CBase64 returns the big-endian 4-byte CRC32C-Castagnoli value,
// base64-standard-encoded (padded), per spec §4.1/§9.
func (h *HashingWriter) CRC32CBase64() string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], h.crc32c.Sum32())
	return base64.StdEncoding.EncodeToString(buf[:])
}

func (h *HashingWriter) Size() int64 { return h.size }

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}

// XGoogHash renders the combined checksum header value spec §4.1 requires
// on media downloads: "crc32c=...,md5=...".
func XGoogHash(crc32cBase64, md5Hex string) string {
	return "crc32c=" + crc32cBase64 + ",md5=" + md5HexToBase64(md5Hex)
}

func md5HexToBase64(hexStr string) string {
	raw := make([]byte, len(hexStr)/2)
	for i := 0; i < len(raw); i++ {
		raw[i] = hexNibble(hexStr[i*2])<<4 | hexNibble(hexStr[i*2+1])
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
