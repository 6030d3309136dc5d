package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"talenttrack-backend/models"
	"talenttrack-backend/models/contracts"
	"talenttrack-backend/models/jobs"
	"talenttrack-backend/models/users"
)

// ContractService is the contract ledger: applications, their status and
// per-viewer hiding.
type ContractService struct {
	contracts contracts.Repository
	jobs      jobs.Repository
	events    Publisher
	policy    Policy
	now       func() time.Time
}

func NewContractService(contractRepo contracts.Repository, jobRepo jobs.Repository, events Publisher, policy Policy) *ContractService {
	return &ContractService{
		contracts: contractRepo,
		jobs:      jobRepo,
		events:    events,
		policy:    policy,
		now:       time.Now,
	}
}

// NewContract is the body of a direct create call.
type NewContract struct {
	JobID        string `json:"jobId"`
	UserID       string `json:"userId"`
	Status       string `json:"status"`
	JobName      string `json:"jobName"`
	ContactEmail string `json:"contactEmail"`
}

// List returns every contract regardless of who hid it.
func (s *ContractService) List(ctx context.Context) ([]contracts.Contract, error) {
	list, err := s.contracts.List(ctx)
	if err != nil {
		return nil, storeErr(err, "contracts")
	}
	return list, nil
}

// ListVisible returns the contracts actor has not hidden.
func (s *ContractService) ListVisible(ctx context.Context, actor *users.User) ([]contracts.Contract, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for list contracts", ErrUnauthorized)
	}
	list, err := s.contracts.ListVisibleTo(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, "contracts")
	}
	return list, nil
}

func (s *ContractService) Get(ctx context.Context, id string) (*contracts.Contract, error) {
	if err := requireID(id, "contract"); err != nil {
		return nil, err
	}
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "contract")
	}
	return c, nil
}

// Create records an application without touching the job's applicants list.
// JobName and ContactEmail are copied from the job when not given and are
// not kept in sync afterwards.
func (s *ContractService) Create(ctx context.Context, actor *users.User, in NewContract) (*contracts.Contract, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for create contract", ErrUnauthorized)
	}
	if in.JobID == "" {
		return nil, invalid("jobId is required")
	}
	if err := requireID(in.JobID, "job"); err != nil {
		return nil, err
	}
	if in.Status != "" && in.Status != string(contracts.StatusApplied) {
		return nil, invalid("a new contract must start as %s", contracts.StatusApplied)
	}
	userID := in.UserID
	if userID == "" {
		userID = actor.ID
	}
	if err := s.policy.check(actor, "apply on behalf of another user", userID); err != nil {
		return nil, err
	}

	j, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return nil, storeErr(err, "job")
	}
	if in.JobName == "" {
		in.JobName = j.Title
	}
	if in.ContactEmail == "" {
		in.ContactEmail = j.ContactEmail
	}

	now := s.now().UTC()
	c := &contracts.Contract{
		ID:           uuid.NewString(),
		JobID:        j.ID,
		JobName:      in.JobName,
		ContactEmail: in.ContactEmail,
		UserID:       userID,
		Status:       contracts.StatusApplied,
		DeletedFor:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, storeErr(err, "application")
	}

	publish(ctx, s.events, EventContractCreated, map[string]string{
		"contractId": c.ID,
		"jobId":      c.JobID,
		"userId":     c.UserID,
		"ownerId":    j.CreatorID,
	})
	return c, nil
}

// Update applies a partial change. Each part is its own single-statement
// write: status moves through the state machine only from the status it was
// read in, DeletedFor only grows, and the details never touch either.
func (s *ContractService) Update(ctx context.Context, actor *users.User, id string, patch contracts.Patch) (*contracts.Contract, error) {
	if err := requireID(id, "contract"); err != nil {
		return nil, err
	}
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "contract")
	}
	owner := s.jobOwner(ctx, c.JobID)

	details := patch.JobName != nil || patch.ContactEmail != nil
	if patch.DeletedFor != nil || details {
		if err := s.policy.check(actor, "update contract", c.UserID, owner); err != nil {
			return nil, err
		}
	}

	from := c.Status
	to := from
	if patch.Status != nil {
		if to, err = contracts.ParseStatus(*patch.Status); err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		if to != from {
			owners := []string{owner}
			if to == contracts.StatusRejected {
				owners = append(owners, c.UserID)
			}
			if err := s.policy.check(actor, "change contract status", owners...); err != nil {
				return nil, err
			}
			if !contracts.IsTransitionAllowed(from, to) {
				return nil, invalid("transition %s → %s is not allowed", from, to)
			}
		}
	}

	now := s.now().UTC()
	if to != from {
		if err := s.contracts.UpdateStatus(ctx, id, from, to, now); err != nil {
			if !errors.Is(err, models.ErrStale) {
				return nil, storeErr(err, "contract")
			}
			cur, ferr := s.contracts.FindByID(ctx, id)
			if ferr != nil {
				return nil, storeErr(ferr, "contract")
			}
			if cur.Status != to {
				return nil, invalid("transition %s → %s is not allowed", cur.Status, to)
			}
			// someone else made the same move first
			from = to
		}
	}
	if patch.DeletedFor != nil {
		if err := s.contracts.HideFor(ctx, id, *patch.DeletedFor...); err != nil {
			return nil, storeErr(err, "contract")
		}
	}
	if details {
		if patch.JobName != nil {
			c.JobName = *patch.JobName
		}
		if patch.ContactEmail != nil {
			c.ContactEmail = *patch.ContactEmail
		}
		c.UpdatedAt = now
		if err := s.contracts.SaveDetails(ctx, c); err != nil {
			return nil, storeErr(err, "contract")
		}
	}

	updated, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "contract")
	}
	if to != from {
		s.statusChanged(ctx, actor, updated, from)
	}
	return updated, nil
}

// Approve and Reject are the job owner's decisions on an application.
func (s *ContractService) Approve(ctx context.Context, actor *users.User, id string) (*contracts.Contract, error) {
	st := string(contracts.StatusApproved)
	return s.Update(ctx, actor, id, contracts.Patch{Status: &st})
}

func (s *ContractService) Reject(ctx context.Context, actor *users.User, id string) (*contracts.Contract, error) {
	if err := requireID(id, "contract"); err != nil {
		return nil, err
	}
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "contract")
	}
	if err := s.policy.check(actor, "reject application", s.jobOwner(ctx, c.JobID)); err != nil {
		return nil, err
	}
	st := string(contracts.StatusRejected)
	return s.Update(ctx, actor, id, contracts.Patch{Status: &st})
}

// Cancel is the applicant withdrawing; the contract ends up Rejected.
func (s *ContractService) Cancel(ctx context.Context, actor *users.User, id string) (*contracts.Contract, error) {
	if err := requireID(id, "contract"); err != nil {
		return nil, err
	}
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "contract")
	}
	if err := s.policy.check(actor, "cancel application", c.UserID); err != nil {
		return nil, err
	}
	st := string(contracts.StatusRejected)
	return s.Update(ctx, actor, id, contracts.Patch{Status: &st})
}

// Hide adds actor to the contract's DeletedFor. The contract stays in storage
// and stays visible to everyone else.
func (s *ContractService) Hide(ctx context.Context, actor *users.User, id string) (*contracts.Contract, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for hide contract", ErrUnauthorized)
	}
	if err := requireID(id, "contract"); err != nil {
		return nil, err
	}
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "contract")
	}
	if err := s.policy.check(actor, "hide contract", c.UserID, s.jobOwner(ctx, c.JobID)); err != nil {
		return nil, err
	}
	if err := s.contracts.HideFor(ctx, id, actor.ID); err != nil {
		return nil, storeErr(err, "contract")
	}
	return s.Get(ctx, id)
}

// Delete removes the row for everyone. Per-viewer hiding goes through Hide.
func (s *ContractService) Delete(ctx context.Context, actor *users.User, id string) error {
	if err := requireID(id, "contract"); err != nil {
		return err
	}
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, "contract")
	}
	if err := s.policy.check(actor, "delete contract", c.UserID, s.jobOwner(ctx, c.JobID)); err != nil {
		return err
	}
	return storeErr(s.contracts.Delete(ctx, id), "contract")
}

// jobOwner returns the creator of jobID, or "" when the job is gone.
func (s *ContractService) jobOwner(ctx context.Context, jobID string) string {
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			slog.Warn("contract job lookup failed", "jobId", jobID, "err", err)
		}
		return ""
	}
	return j.CreatorID
}

func (s *ContractService) statusChanged(ctx context.Context, actor *users.User, c *contracts.Contract, from contracts.Status) {
	by := ""
	if actor != nil {
		by = actor.ID
	}
	publish(ctx, s.events, EventContractStatusChanged, map[string]string{
		"contractId": c.ID,
		"jobId":      c.JobID,
		"userId":     c.UserID,
		"by":         by,
		"from":       string(from),
		"to":         string(c.Status),
	})
}
