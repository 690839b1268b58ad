package objectstore

import "strconv"

// KV key layout. Buckets and the latest-object pointer are keyed by
// (projectID, bucketName[, objectName]); versions additionally carry a
// zero-padded generation so ascending key order is ascending generation
// order.
const (
	bucketPrefix  = "ostore/bucket/"
	objectPrefix  = "ostore/object/"
	versionPrefix = "ostore/version/"
	sessionPrefix = "ostore/session/"
	counterPrefix = "ostore/gencounter/"
)

// generationCounterKey tracks the highest generation ever assigned to
// (bucketName, objectName), independent of the latest-pointer row, so a
// generation number is never reused even across full object deletion
// (spec §8 invariant 2).
func generationCounterKey(projectID, bucketName, objectName string) string {
	return counterPrefix + projectID + "/" + bucketName + "/" + objectName
}

func bucketKey(projectID, name string) string {
	return bucketPrefix + projectID + "/" + name
}

func bucketProjectPrefix(projectID string) string {
	return bucketPrefix + projectID + "/"
}

func objectKey(projectID, bucketName, objectName string) string {
	return objectPrefix + projectID + "/" + bucketName + "/" + objectName
}

func objectBucketPrefix(projectID, bucketName string) string {
	return objectPrefix + projectID + "/" + bucketName + "/"
}

func versionKey(projectID, bucketName, objectName string, generation int64) string {
	return versionPrefix + projectID + "/" + bucketName + "/" + objectName + "/" + padGeneration(generation)
}

func versionObjectPrefix(projectID, bucketName, objectName string) string {
	return versionPrefix + projectID + "/" + bucketName + "/" + objectName + "/"
}

func sessionKey(sessionID string) string {
	return sessionPrefix + sessionID
}

// padGeneration zero-pads to 19 digits (max int64) so lexicographic key
// order matches numeric generation order.
func padGeneration(generation int64) string {
	s := strconv.FormatInt(generation, 10)
	for len(s) < 19 {
		s = "0" + s
	}
	return s
}
