// Package contracts holds the application records that link one user to one job.
//
// Status graph:
//
//	Applied ──► Approved
//	   │
//	   └──────► Rejected
//
// Approved and Rejected are terminal.
package contracts

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

type Status string

const (
	StatusApplied  Status = "Applied"
	StatusRejected Status = "Rejected"
	StatusApproved Status = "Approved"
)

var validTransitions = map[Status][]Status{
	StatusApplied: {StatusApproved, StatusRejected},
}

// ParseStatus converts a raw string to a Status. Matching is case-sensitive.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusApplied, StatusRejected, StatusApproved:
		return st, nil
	}
	return "", fmt.Errorf("unknown contract status %q", s)
}

// IsTransitionAllowed reports whether a contract may move from → to.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal is true for statuses with no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

type Contract struct {
	ID           string         `json:"id" gorm:"primaryKey;type:uuid"`
	JobID        string         `json:"jobId" gorm:"not null;uniqueIndex:idx_contract_job_user"`
	JobName      string         `json:"jobName"`
	ContactEmail string         `json:"contactEmail"`
	UserID       string         `json:"userId" gorm:"not null;uniqueIndex:idx_contract_job_user"`
	Status       Status         `json:"status" gorm:"type:varchar(16);not null;default:'Applied'"`
	DeletedFor   pq.StringArray `json:"deletedFor" gorm:"type:text[];not null;default:'{}'"` // для кого контракт скрыт
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// IsDeletedFor reports whether the contract is hidden from viewerID.
func (c *Contract) IsDeletedFor(viewerID string) bool {
	for _, id := range c.DeletedFor {
		if id == viewerID {
			return true
		}
	}
	return false
}

// MergeDeletedFor adds ids to DeletedFor, keeping order and skipping duplicates.
// Nothing is ever removed.
func (c *Contract) MergeDeletedFor(ids ...string) {
	for _, id := range ids {
		if id == "" || c.IsDeletedFor(id) {
			continue
		}
		c.DeletedFor = append(c.DeletedFor, id)
	}
}

// Patch is the set of fields a client may send on update.
type Patch struct {
	Status       *string   `json:"status"`
	DeletedFor   *[]string `json:"deletedFor"`
	JobName      *string   `json:"jobName"`
	ContactEmail *string   `json:"contactEmail"`
}
