package memory

import (
	"time"

	"github.com/google/uuid"
)

func newSummaryID() string {
	return uuid.New().String()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
