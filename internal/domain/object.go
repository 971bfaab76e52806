package domain

import "time"

// Object is a single entry of a bucket listing.
type Object struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadResult describes a completed upload as shown on the confirmation page.
type UploadResult struct {
	Filename string
	URL      string
	// Expiry is the validity window URL was signed with.
	Expiry time.Duration
	Files  []Object
}

// Keys returns the object keys in listing order.
func Keys(objects []Object) []string {
	keys := make([]string, len(objects))
	for i := range objects {
		keys[i] = objects[i].Key
	}
	return keys
}
