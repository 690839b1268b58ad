package objectstore

import (
	"io"
	"mime"
	"mime/multipart"

	jsoniter "github.com/json-iterator/go"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

// multipartMetadata is the JSON shape of the metadata part of a
// multipart/related upload (spec §4.1): only the fields this store reads.
type multipartMetadata struct {
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata"`
}

// ParseMultipartUpload splits a multipart/related body (metadata part then
// content part) as spec §4.1's multipart upload requires. This is the one
// place the object store reaches for net/http's own mime/multipart rather
// than a pack dependency: RFC 2046 multipart parsing is an HTTP protocol
// primitive the standard library already owns end-to-end, and no example
// repo in the retrieval pack vendors an alternative.
func ParseMultipartUpload(contentType string, body io.Reader) (meta multipartMetadata, content io.Reader, err error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return multipartMetadata{}, nil, cmnerr.Invalidf("objectstore: invalid multipart content-type: %v", err)
	}
	boundary, ok := params["boundary"]
	if !ok {
		return multipartMetadata{}, nil, cmnerr.Invalidf("objectstore: multipart upload missing boundary")
	}
	mr := multipart.NewReader(body, boundary)

	metaPart, err := mr.NextPart()
	if err != nil {
		return multipartMetadata{}, nil, cmnerr.Invalidf("objectstore: reading multipart metadata part: %v", err)
	}
	metaBytes, err := io.ReadAll(metaPart)
	if err != nil {
		return multipartMetadata{}, nil, cmnerr.Invalidf("objectstore: reading multipart metadata part: %v", err)
	}
	if err := jsoniter.Unmarshal(metaBytes, &meta); err != nil {
		return multipartMetadata{}, nil, cmnerr.Invalidf("objectstore: parsing multipart metadata JSON: %v", err)
	}

	contentPart, err := mr.NextPart()
	if err != nil {
		return multipartMetadata{}, nil, cmnerr.Invalidf("objectstore: reading multipart content part: %v", err)
	}
	contentType = contentPart.Header.Get("Content-Type")
	if contentType != "" {
		meta.ContentType = contentType
	}
	return meta, contentPart, nil
}
