package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a sync run id. Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}
