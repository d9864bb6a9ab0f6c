// Package store persists local job postings, usage counters and
// subscriptions. Every backend implements the interfaces in internal/model.
package store

import (
	"errors"
	"time"

	"github.com/amishk599/jobradius/internal/model"
)

// ErrDuplicateJob is returned by AddJob when the posting's ID is taken.
var ErrDuplicateJob = errors.New("local job already exists")

// periodKey is the canonical text form of a usage period start.
func periodKey(periodStart time.Time) string {
	return periodStart.UTC().Format(time.RFC3339)
}

func copyPosting(p model.LocalJobPosting) model.LocalJobPosting {
	if p.Skills != nil {
		p.Skills = append([]string(nil), p.Skills...)
	}
	return p
}
