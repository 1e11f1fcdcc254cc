package utils

import "sync"

var mu sync.Mutex

// ExecuteWithMutex serializes callers that touch shared GDAL state; the
// library is not safe for concurrent dataset creation on some builds.
func ExecuteWithMutex(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
}
