package wire

// Bucket mirrors storage/v1's Bucket resource (spec §3, §4.1).
type Bucket struct {
	Kind             string                `json:"kind"`
	ID               string                `json:"id"`
	SelfLink         string                `json:"selfLink"`
	Name             string                `json:"name"`
	ProjectNumber    uint64                `json:"projectNumber,string"`
	Location         string                `json:"location"`
	StorageClass     string                `json:"storageClass"`
	Versioning       *BucketVersioning     `json:"versioning,omitempty"`
	Cors             []BucketCors          `json:"cors,omitempty"`
	Lifecycle        *BucketLifecycle      `json:"lifecycle,omitempty"`
	NotificationConfigs []NotificationConfig `json:"notificationConfigs,omitempty"`
	TimeCreated      string                `json:"timeCreated"`
	Updated          string                `json:"updated"`
	Metageneration   int64                 `json:"metageneration,string"`
	Etag             string                `json:"etag"`
}

type BucketVersioning struct {
	Enabled bool `json:"enabled"`
}

type BucketCors struct {
	Origin         []string `json:"origin,omitempty"`
	Method         []string `json:"method,omitempty"`
	ResponseHeader []string `json:"responseHeader,omitempty"`
	MaxAgeSeconds  int64    `json:"maxAgeSeconds,omitempty"`
}

type BucketLifecycle struct {
	Rule []BucketLifecycleRule `json:"rule"`
}

type BucketLifecycleRule struct {
	Action    BucketLifecycleAction    `json:"action"`
	Condition BucketLifecycleCondition `json:"condition"`
}

type BucketLifecycleAction struct {
	Type string `json:"type"` // "Delete" | "SetStorageClass" (we only implement Delete/Archive per spec §4.6)
}

type BucketLifecycleCondition struct {
	AgeDays int `json:"age,omitempty"`
}

type NotificationConfig struct {
	ID               string   `json:"id"`
	Kind             string   `json:"kind"`
	SelfLink         string   `json:"selfLink"`
	WebhookURL       string   `json:"webhookUrl"`
	EventTypes       []string `json:"event_types,omitempty"`
	ObjectNamePrefix string   `json:"object_name_prefix,omitempty"`
}

type BucketList struct {
	Kind  string   `json:"kind"`
	Items []Bucket `json:"items"`
}

// Object mirrors storage/v1's Object resource. Generation/Metageneration
// are serialized as JSON strings (`,string`) because the real API encodes
// 64-bit counters that way to survive float64-based JSON parsers.
type Object struct {
	Kind           string            `json:"kind"`
	ID             string            `json:"id"`
	SelfLink       string            `json:"selfLink"`
	Name           string            `json:"name"`
	Bucket         string            `json:"bucket"`
	Generation     int64             `json:"generation,string"`
	Metageneration int64             `json:"metageneration,string"`
	ContentType    string            `json:"contentType,omitempty"`
	TimeCreated    string            `json:"timeCreated"`
	Updated        string            `json:"updated"`
	StorageClass   string            `json:"storageClass"`
	Size           uint64            `json:"size,string"`
	MD5Hash        string            `json:"md5Hash"`
	CRC32C         string            `json:"crc32c"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Etag           string            `json:"etag"`
}

type ObjectList struct {
	Kind     string   `json:"kind"`
	Items    []Object `json:"items"`
	Prefixes []string `json:"prefixes,omitempty"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// RewriteResponse mirrors storage/v1's RewriteResponse (§4.1 expansion).
type RewriteResponse struct {
	Kind                 string `json:"kind"`
	TotalBytesRewritten  uint64 `json:"totalBytesRewritten,string"`
	ObjectSize           uint64 `json:"objectSize,string"`
	Done                 bool   `json:"done"`
	RewriteToken         string `json:"rewriteToken,omitempty"`
	Resource             Object `json:"resource"`
}

// ResumableUploadStatus is returned (as headers, not a body) on a 308, but
// callers that want the structured form (e.g. our own devtools) can use
// this.
type ResumableUploadStatus struct {
	Range string `json:"range"`
}
