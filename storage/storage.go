// Package storage publishes synthesized audio at URLs the telephony
// carrier can fetch. Implementations: Google Cloud Storage, Redis
// (served back by this process) and an in-memory fallback.
package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileName generates a unique audio object name. Timestamp plus a UUID
// fragment; collisions are treated as negligible.
func FileName() string {
	return fmt.Sprintf("audio-%d-%s.mp3", time.Now().UnixMilli(), uuid.New().String()[:13])
}
