package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"talenttrack-backend/models/contracts"
	"talenttrack-backend/models/jobs"
	"talenttrack-backend/models/users"
)

// JobService is the job catalog. Reads are public; writes need an actor.
type JobService struct {
	jobs      jobs.Repository
	contracts contracts.Repository
	events    Publisher
	policy    Policy
	now       func() time.Time
}

func NewJobService(jobRepo jobs.Repository, contractRepo contracts.Repository, events Publisher, policy Policy) *JobService {
	return &JobService{
		jobs:      jobRepo,
		contracts: contractRepo,
		events:    events,
		policy:    policy,
		now:       time.Now,
	}
}

func (s *JobService) List(ctx context.Context) ([]jobs.Job, error) {
	list, err := s.jobs.List(ctx)
	if err != nil {
		return nil, storeErr(err, "jobs")
	}
	return list, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*jobs.Job, error) {
	if err := requireID(id, "job"); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "job")
	}
	return j, nil
}

// Create stores a new posting owned by actor. Applicants always start empty.
func (s *JobService) Create(ctx context.Context, actor *users.User, in jobs.Patch) (*jobs.Job, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for create job", ErrUnauthorized)
	}
	now := s.now().UTC()
	j := &jobs.Job{
		ID:        uuid.NewString(),
		CreatorID: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Applicants = nil
	in.Apply(j)
	j.Applicants = []string{}
	if err := validateJob(j); err != nil {
		return nil, err
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, storeErr(err, "job")
	}
	return j, nil
}

// Update replaces the provided fields, applicants included.
func (s *JobService) Update(ctx context.Context, actor *users.User, id string, patch jobs.Patch) (*jobs.Job, error) {
	if err := requireID(id, "job"); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "job")
	}
	if err := s.policy.check(actor, "update job", j.CreatorID); err != nil {
		return nil, err
	}
	patch.Apply(j)
	if err := validateJob(j); err != nil {
		return nil, err
	}
	j.UpdatedAt = s.now().UTC()
	if err := s.jobs.Save(ctx, j); err != nil {
		return nil, storeErr(err, "job")
	}
	return j, nil
}

// Delete removes the job. Contracts that point at it are left as they are.
func (s *JobService) Delete(ctx context.Context, actor *users.User, id string) error {
	if err := requireID(id, "job"); err != nil {
		return err
	}
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, "job")
	}
	if err := s.policy.check(actor, "delete job", j.CreatorID); err != nil {
		return err
	}
	return storeErr(s.jobs.Delete(ctx, id), "job")
}

// Apply creates an Applied contract for actor and then appends actor to the
// job's applicants. The two writes are separate; if the second one fails the
// contract is deleted again so no half-applied state is left behind.
func (s *JobService) Apply(ctx context.Context, actor *users.User, jobID string) (*contracts.Contract, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for apply", ErrUnauthorized)
	}
	if err := requireID(jobID, "job"); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, storeErr(err, "job")
	}
	if j.CreatorID == actor.ID {
		return nil, invalid("cannot apply to your own job")
	}
	now := s.now().UTC()
	if j.Deadline != nil && now.After(*j.Deadline) {
		return nil, invalid("application deadline has passed")
	}

	c := &contracts.Contract{
		ID:           uuid.NewString(),
		JobID:        j.ID,
		JobName:      j.Title,
		ContactEmail: j.ContactEmail,
		UserID:       actor.ID,
		Status:       contracts.StatusApplied,
		DeletedFor:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, storeErr(err, "application")
	}

	if err := s.jobs.AppendApplicant(ctx, j.ID, actor.ID); err != nil {
		// the rollback has to run even if the client is gone
		if cerr := s.contracts.Delete(context.WithoutCancel(ctx), c.ID); cerr != nil {
			slog.Error("apply: compensation failed", "contractId", c.ID, "jobId", j.ID, "err", cerr)
			return nil, fmt.Errorf("append applicant: %w (contract %s left behind: %v)", err, c.ID, cerr)
		}
		return nil, storeErr(err, "job")
	}

	publish(ctx, s.events, EventJobApplied, map[string]string{
		"jobId":      j.ID,
		"contractId": c.ID,
		"userId":     actor.ID,
		"ownerId":    j.CreatorID,
	})
	return c, nil
}

func validateJob(j *jobs.Job) error {
	j.Title = strings.TrimSpace(j.Title)
	if j.Title == "" {
		return invalid("title is required")
	}
	j.ContactEmail = strings.TrimSpace(j.ContactEmail)
	if j.ContactEmail == "" {
		return invalid("contactEmail is required")
	}
	if _, err := mail.ParseAddress(j.ContactEmail); err != nil {
		return invalid("invalid contactEmail %q", j.ContactEmail)
	}
	if (j.SalaryMin != nil && *j.SalaryMin < 0) || (j.SalaryMax != nil && *j.SalaryMax < 0) {
		return invalid("salary cannot be negative")
	}
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > *j.SalaryMax {
		return invalid("salaryMin cannot exceed salaryMax")
	}
	return nil
}
