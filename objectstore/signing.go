package objectstore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

// SignedURLParams carries the query parameters a GOOG4-HMAC-SHA256 signed
// URL bears (spec §4.1, §6).
type SignedURLParams struct {
	Algorithm string
	Expires   int64 // seconds; not re-validated per spec §9 open question
	Timestamp int64 // absolute expiry epoch seconds
	Signature string // base64url, unpadded
}

// VerifySignedURL recomputes HMAC-SHA256(secret, "<METHOD>\n<PATH>\n<TIMESTAMP>")
// and compares it to the supplied signature, then checks the timestamp
// against now. Method is the HTTP method ("GET" or "PUT"); path is the
// request path the signature was computed over.
func VerifySignedURL(secret, method, path string, params SignedURLParams, now time.Time) error {
	if params.Algorithm != "GOOG4-HMAC-SHA256" {
		return cmnerr.Invalidf("objectstore: unsupported signing algorithm %q", params.Algorithm)
	}
	want := signString(secret, method, path, params.Timestamp)
	if !hmac.Equal([]byte(want), []byte(params.Signature)) {
		return cmnerr.Invalidf("objectstore: signed URL signature mismatch")
	}
	if now.Unix() > params.Timestamp {
		return cmnerr.Invalidf("objectstore: signed URL expired")
	}
	return nil
}

// SignURL is the inverse of VerifySignedURL, used by devtools and any
// future signed-URL issuance endpoint.
func SignURL(secret, method, path string, timestamp int64) string {
	return signString(secret, method, path, timestamp)
}

func signString(secret, method, path string, timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method))
	mac.Write([]byte("\n"))
	mac.Write([]byte(path))
	mac.Write([]byte("\n"))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
