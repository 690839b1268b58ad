package server

import (
	"net/http"
	"strconv"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/objectstore"
	"github.com/cloudcore/cloudcore/wire"
)

func (s *Server) registerStorageRoutes() {
	s.handle(http.MethodPost, "/storage/v1/b", s.createBucket)
	s.handle(http.MethodGet, "/storage/v1/b", s.listBuckets)
	s.handle(http.MethodGet, "/storage/v1/b/:bucket", s.getBucket)
	s.handle(http.MethodPatch, "/storage/v1/b/:bucket", s.patchBucket)
	s.handle(http.MethodDelete, "/storage/v1/b/:bucket", s.deleteBucket)

	s.handle(http.MethodGet, "/storage/v1/b/:bucket/o", s.listObjects)
	s.handle(http.MethodGet, "/storage/v1/b/:bucket/o/:object", s.getObject)
	s.handle(http.MethodPatch, "/storage/v1/b/:bucket/o/:object", s.patchObject)
	s.handle(http.MethodDelete, "/storage/v1/b/:bucket/o/:object", s.deleteObject)
	s.handle(http.MethodPost, "/storage/v1/b/:srcBucket/o/:srcObject/copyTo/b/:dstBucket/o/:dstObject", s.copyObject)
	s.handle(http.MethodPost, "/storage/v1/b/:srcBucket/o/:srcObject/rewriteTo/b/:dstBucket/o/:dstObject", s.rewriteObject)
	s.handle(http.MethodPost, "/storage/v1/b/:bucket/o/compose", s.composeObject)

	s.handle(http.MethodPost, "/upload/storage/v1/b/:bucket/o", s.uploadObject)
	s.handle(http.MethodPut, "/upload/storage/v1/b/:bucket/o", s.resumableChunk)
}

func (s *Server) createBucket(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var body wire.Bucket
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	b, err := s.Store.CreateBucket(objectstore.CreateBucketInput{
		Name:         body.Name,
		ProjectID:    s.projectID(r),
		Location:     body.Location,
		StorageClass: body.StorageClass,
		Versioning:   body.Versioning != nil && body.Versioning.Enabled,
	})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireBucket(b))
}

func (s *Server) getBucket(w http.ResponseWriter, r *http.Request, params map[string]string) {
	b, err := s.Store.GetBucket(s.projectID(r), params["bucket"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireBucket(b))
}

func (s *Server) listBuckets(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	buckets, err := s.Store.ListBuckets(s.projectID(r))
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	items := make([]wire.Bucket, len(buckets))
	for i, b := range buckets {
		items[i] = toWireBucket(b)
	}
	wire.WriteJSON(w, http.StatusOK, wire.BucketList{Kind: "storage#buckets", Items: items})
}

func (s *Server) patchBucket(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Bucket
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	in := objectstore.PatchBucketInput{}
	if body.Versioning != nil {
		v := body.Versioning.Enabled
		in.Versioning = &v
	}
	for _, c := range body.Cors {
		in.CorsRules = append(in.CorsRules, objectstore.CorsRule{
			Origin: c.Origin, Method: c.Method, ResponseHeader: c.ResponseHeader, MaxAgeSeconds: c.MaxAgeSeconds,
		})
	}
	for _, n := range body.NotificationConfigs {
		in.NotificationConfigs = append(in.NotificationConfigs, objectstore.NotificationConfig{
			ID: n.ID, WebhookURL: n.WebhookURL, EventTypes: n.EventTypes, ObjectNamePrefix: n.ObjectNamePrefix,
		})
	}
	if body.Lifecycle != nil {
		for _, rule := range body.Lifecycle.Rule {
			in.LifecycleRules = append(in.LifecycleRules, objectstore.LifecycleRule{
				Action:  objectstore.LifecycleAction(rule.Action.Type),
				AgeDays: rule.Condition.AgeDays,
			})
		}
	}
	b, err := s.Store.PatchBucket(s.projectID(r), params["bucket"], in)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireBucket(b))
}

func (s *Server) deleteBucket(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if err := s.Store.DeleteBucket(s.projectID(r), params["bucket"]); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request, params map[string]string) {
	gen := parseGeneration(r)
	if r.URL.Query().Get("alt") == "media" {
		obj, rc, err := s.Store.OpenObjectContent(s.projectID(r), params["bucket"], params["object"], gen)
		if err != nil {
			wire.WriteError(w, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("X-Goog-Generation", strconv.FormatInt(obj.Generation, 10))
		w.WriteHeader(http.StatusOK)
		buf := make([]byte, 64*1024)
		for {
			n, err := rc.Read(buf)
			if n > 0 {
				if _, werr := w.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}
	obj, err := s.Store.GetObject(s.projectID(r), params["bucket"], params["object"], gen)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireObject(obj))
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request, params map[string]string) {
	q := r.URL.Query()
	maxResults := 1000
	if v := q.Get("maxResults"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxResults = n
		}
	}
	res, err := s.Store.ListObjects(objectstore.ListInput{
		ProjectID:  s.projectID(r),
		BucketName: params["bucket"],
		Prefix:     q.Get("prefix"),
		Delimiter:  q.Get("delimiter"),
		PageToken:  q.Get("pageToken"),
		MaxResults: maxResults,
		Versions:   q.Get("versions") == "true",
	})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	items := make([]wire.Object, len(res.Items))
	for i, o := range res.Items {
		items[i] = toWireObject(o)
	}
	wire.WriteJSON(w, http.StatusOK, wire.ObjectList{
		Kind: "storage#objects", Items: items, Prefixes: res.Prefixes, NextPageToken: res.NextPageToken,
	})
}

func (s *Server) patchObject(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Object
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	in := objectstore.PatchMetadataInput{Metadata: body.Metadata}
	if body.ContentType != "" {
		in.ContentType = &body.ContentType
	}
	if body.StorageClass != "" {
		in.StorageClass = &body.StorageClass
	}
	obj, err := s.Store.PatchObjectMetadata(s.projectID(r), params["bucket"], params["object"], in)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireObject(obj))
}

func (s *Server) deleteObject(w http.ResponseWriter, r *http.Request, params map[string]string) {
	gen := parseGeneration(r)
	if err := s.Store.DeleteObject(s.projectID(r), params["bucket"], params["object"], gen); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) copyObject(w http.ResponseWriter, r *http.Request, params map[string]string) {
	obj, err := s.Store.CopyObject(s.projectID(r), params["srcBucket"], params["srcObject"], parseGeneration(r),
		params["dstBucket"], params["dstObject"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireObject(obj))
}

func (s *Server) rewriteObject(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Object
	_ = wire.DecodeJSONBody(r, &body)
	res, err := s.Store.RewriteObject(s.projectID(r), params["srcBucket"], params["srcObject"], parseGeneration(r),
		params["dstBucket"], params["dstObject"], body.StorageClass)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, wire.RewriteResponse{
		Kind: "storage#rewriteResponse", Done: res.Done,
		TotalBytesRewritten: uint64(res.TotalBytesRewritten),
		ObjectSize:          uint64(res.ObjectSize),
		Resource:            toWireObject(res.Resource),
	})
}

type composeRequest struct {
	SourceObjects []struct {
		Name       string `json:"name"`
		Generation int64  `json:"generation,omitempty"`
	} `json:"sourceObjects"`
	Destination wire.Object `json:"destination"`
}

func (s *Server) composeObject(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body composeRequest
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	sources := make([]objectstore.ComposeSource, len(body.SourceObjects))
	for i, src := range body.SourceObjects {
		sources[i] = objectstore.ComposeSource{Name: src.Name, Generation: src.Generation}
	}
	obj, err := s.Store.ComposeObject(s.projectID(r), params["bucket"], sources, body.Destination.Name, body.Destination.ContentType)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireObject(obj))
}

// uploadObject handles uploadType=media|multipart. Resumable init is
// handled here too (uploadType=resumable), returning the session id in
// the Location header the way the real API does.
func (s *Server) uploadObject(w http.ResponseWriter, r *http.Request, params map[string]string) {
	q := r.URL.Query()
	switch q.Get("uploadType") {
	case "resumable":
		s.initResumable(w, r, params)
	case "multipart":
		s.uploadMultipart(w, r, params)
	default:
		s.uploadMedia(w, r, params)
	}
}

func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request, params map[string]string) {
	name := r.URL.Query().Get("name")
	pre, err := parsePreconditions(r)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	obj, err := s.Store.PutObject(objectstore.PutInput{
		ProjectID: s.projectID(r), BucketName: params["bucket"], ObjectName: name,
		ContentType: r.Header.Get("Content-Type"), Preconditions: pre,
	}, r.Body)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireObject(obj))
}

func (s *Server) uploadMultipart(w http.ResponseWriter, r *http.Request, params map[string]string) {
	meta, content, err := objectstore.ParseMultipartUpload(r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	pre, err := parsePreconditions(r)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	obj, err := s.Store.PutObject(objectstore.PutInput{
		ProjectID: s.projectID(r), BucketName: params["bucket"], ObjectName: meta.Name,
		ContentType: meta.ContentType, Metadata: meta.Metadata, Preconditions: pre,
	}, content)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireObject(obj))
}

func (s *Server) initResumable(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Object
	_ = wire.DecodeJSONBody(r, &body)
	total := int64(-1)
	if v := r.Header.Get("X-Upload-Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			total = n
		}
	}
	name := body.Name
	if name == "" {
		name = r.URL.Query().Get("name")
	}
	sessionID, err := s.Store.InitResumableSession(objectstore.InitResumableInput{
		ProjectID: s.projectID(r), BucketName: params["bucket"], ObjectName: name,
		ContentType: r.Header.Get("X-Upload-Content-Type"), Metadata: body.Metadata, TotalSize: total,
	})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	w.Header().Set("Location", "/upload/storage/v1/b/"+params["bucket"]+"/o?uploadType=resumable&upload_id="+sessionID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) resumableChunk(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sessionID := r.URL.Query().Get("upload_id")
	if sessionID == "" {
		wire.WriteError(w, cmnerr.Invalidf("missing upload_id"))
		return
	}
	rng, err := names.ParseContentRange(r.Header.Get("Content-Range"))
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	if rng.StatusQuery {
		sess, err := s.Store.ResumableStatus(sessionID)
		if err != nil {
			wire.WriteError(w, err)
			return
		}
		w.Header().Set("Range", "bytes=0-"+strconv.FormatInt(sess.CurrentOffset-1, 10))
		w.WriteHeader(http.StatusPermanentRedirect)
		return
	}
	res, err := s.Store.AppendChunk(sessionID, rng, r.Body, objectstore.Preconditions{})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	if !res.Done {
		w.Header().Set("Range", "bytes=0-"+strconv.FormatInt(res.CommittedRange.End, 10))
		w.WriteHeader(http.StatusPermanentRedirect)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireObject(res.Object))
}

func parseGeneration(r *http.Request) int64 {
	v := r.URL.Query().Get("generation")
	if v == "" {
		return 0
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

func parsePreconditions(r *http.Request) (objectstore.Preconditions, error) {
	q := r.URL.Query()
	var pre objectstore.Preconditions
	var err error
	if pre.IfGenerationMatch, err = parsePreconditionPtr(q, "ifGenerationMatch"); err != nil {
		return pre, err
	}
	if pre.IfGenerationNotMatch, err = parsePreconditionPtr(q, "ifGenerationNotMatch"); err != nil {
		return pre, err
	}
	if pre.IfMetagenerationMatch, err = parsePreconditionPtr(q, "ifMetagenerationMatch"); err != nil {
		return pre, err
	}
	if pre.IfMetagenerationNotMatch, err = parsePreconditionPtr(q, "ifMetagenerationNotMatch"); err != nil {
		return pre, err
	}
	return pre, nil
}

func parsePreconditionPtr(q map[string][]string, key string) (*int64, error) {
	vs := q[key]
	if len(vs) == 0 || vs[0] == "" {
		return nil, nil
	}
	n, err := names.ValidatePreconditionInt(vs[0])
	if err != nil {
		return nil, err
	}
	return &n, nil
}
