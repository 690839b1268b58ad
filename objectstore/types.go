package objectstore

import "github.com/cloudcore/cloudcore/cmn/ids"

// Bucket is the persisted record backing spec §3's Bucket entity.
type Bucket struct {
	Name                string               `json:"name"`
	ProjectID           string                `json:"projectId"`
	Location            string                `json:"location"`
	StorageClass        string                `json:"storageClass"`
	VersioningEnabled   bool                  `json:"versioningEnabled"`
	CorsRules           []CorsRule            `json:"corsRules,omitempty"`
	NotificationConfigs []NotificationConfig  `json:"notificationConfigs,omitempty"`
	LifecycleRules      []LifecycleRule       `json:"lifecycleRules,omitempty"`
	Metageneration      int64                 `json:"metageneration"`
	CreatedAt           string                `json:"createdAt"`
	UpdatedAt           string                `json:"updatedAt"`
}

type CorsRule struct {
	Origin         []string `json:"origin,omitempty"`
	Method         []string `json:"method,omitempty"`
	ResponseHeader []string `json:"responseHeader,omitempty"`
	MaxAgeSeconds  int64    `json:"maxAgeSeconds,omitempty"`
}

type NotificationConfig struct {
	ID               string   `json:"id"`
	WebhookURL       string   `json:"webhookUrl"`
	EventTypes       []string `json:"eventTypes,omitempty"`
	ObjectNamePrefix string   `json:"objectNamePrefix,omitempty"`
}

type LifecycleAction string

const (
	LifecycleDelete  LifecycleAction = "Delete"
	LifecycleArchive LifecycleAction = "Archive"
)

type LifecycleRule struct {
	Action  LifecycleAction `json:"action"`
	AgeDays int             `json:"ageDays"`
}

// Object is the latest-version pointer row of spec §3.
type Object struct {
	BucketName   string            `json:"bucketName"`
	ProjectID    string            `json:"projectId"`
	Name         string            `json:"name"`
	Generation   int64             `json:"generation"`
	Metageneration int64           `json:"metageneration"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"contentType"`
	MD5          string            `json:"md5"`
	CRC32C       string            `json:"crc32c"`
	StorageClass string            `json:"storageClass"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	IsLatest     bool              `json:"isLatest"`
	Deleted      bool              `json:"deleted"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

// ObjectVersion is every historical content state of an object (spec §3);
// field shape mirrors Object plus an explicit Generation key component.
type ObjectVersion struct {
	Object
}

// ResumableSession tracks a chunked upload in progress (spec §3, §4.1).
type ResumableSession struct {
	SessionID          string            `json:"sessionId"`
	ProjectID          string            `json:"projectId"`
	BucketName         string            `json:"bucketName"`
	ObjectName         string            `json:"objectName"`
	DeclaredTotalSize  int64             `json:"declaredTotalSize"` // -1 if unknown
	CurrentOffset      int64             `json:"currentOffset"`
	TempPath           string            `json:"tempPath"`
	PendingContentType string            `json:"pendingContentType,omitempty"`
	PendingMetadata    map[string]string `json:"pendingMetadata,omitempty"`
	CreatedAt          string            `json:"createdAt"`
}

func newSessionID() string { return ids.NewSessionID() }
