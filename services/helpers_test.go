package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"talenttrack-backend/models/contracts"
	"talenttrack-backend/models/jobs"
	"talenttrack-backend/models/messages"
	"talenttrack-backend/models/users"
	"talenttrack-backend/services"
)

type fixture struct {
	userRepo     *users.MemoryRepository
	jobRepo      jobs.Repository
	contractRepo contracts.Repository
	events       *recorder

	auth      *services.AuthService
	users     *services.UserService
	jobs      *services.JobService
	contracts *services.ContractService
	messages  *services.MessageService
}

func newFixture(t *testing.T, policy services.Policy) *fixture {
	t.Helper()
	return newFixtureWith(t, policy, jobs.NewMemoryRepository(), contracts.NewMemoryRepository())
}

func newFixtureWithJobs(t *testing.T, policy services.Policy, jobRepo jobs.Repository) *fixture {
	t.Helper()
	return newFixtureWith(t, policy, jobRepo, contracts.NewMemoryRepository())
}

func newFixtureWith(t *testing.T, policy services.Policy, jobRepo jobs.Repository, contractRepo contracts.Repository) *fixture {
	t.Helper()
	f := &fixture{
		userRepo:     users.NewMemoryRepository(),
		jobRepo:      jobRepo,
		contractRepo: contractRepo,
		events:       &recorder{},
	}
	f.auth = services.NewAuthService(f.userRepo, services.AuthOptions{
		Secret:     []byte("test-secret"),
		BcryptCost: bcrypt.MinCost,
	})
	f.users = services.NewUserService(f.userRepo)
	f.jobs = services.NewJobService(f.jobRepo, f.contractRepo, f.events, policy)
	f.contracts = services.NewContractService(f.contractRepo, f.jobRepo, f.events, policy)
	f.messages = services.NewMessageService(messages.NewMemoryRepository(), f.events, policy)
	return f
}

// register creates a user through the auth service and returns it.
func (f *fixture) register(t *testing.T, email, first string) *users.User {
	t.Helper()
	in := services.RegisterInput{Email: email, Password: "pw-" + email, SafeCode: "code-" + email}
	if first != "" {
		in.FirstName = &first
	}
	res, err := f.auth.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res.User
}

func (f *fixture) postJob(t *testing.T, owner *users.User, title string) *jobs.Job {
	t.Helper()
	email := "hr@example.com"
	j, err := f.jobs.Create(context.Background(), owner, jobs.Patch{Title: &title, ContactEmail: &email})
	if err != nil {
		t.Fatalf("create job %q: %v", title, err)
	}
	return j
}

type event struct {
	channel string
	payload any
}

// recorder keeps every published event.
type recorder struct {
	mu     sync.Mutex
	events []event
	fail   bool
}

func (r *recorder) Publish(_ context.Context, channel string, payload any) error {
	if r.fail {
		return errors.New("broker down")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{channel, payload})
	return nil
}

func (r *recorder) channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.channel)
	}
	return out
}

// failingAppend is a job store whose applicants append always fails.
// onAppend, when set, runs first.
type failingAppend struct {
	*jobs.MemoryRepository
	onAppend func()
}

var errAppend = errors.New("append applicant: connection reset")

func (f failingAppend) AppendApplicant(context.Context, string, string) error {
	if f.onAppend != nil {
		f.onAppend()
	}
	return errAppend
}

// interleaved runs between once, right after the first FindByID returns, to
// simulate a concurrent writer landing between a read and the write after it.
type interleaved struct {
	*contracts.MemoryRepository
	between func()
	done    bool
}

func (r *interleaved) FindByID(ctx context.Context, id string) (*contracts.Contract, error) {
	c, err := r.MemoryRepository.FindByID(ctx, id)
	if !r.done && r.between != nil {
		r.done = true
		r.between()
	}
	return c, err
}

// ctxAware refuses deletes on a cancelled context, like a real driver.
type ctxAware struct {
	*contracts.MemoryRepository
}

func (r ctxAware) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.MemoryRepository.Delete(ctx, id)
}

// brokenJobs fails every lookup the way Postgres fails a malformed uuid.
type brokenJobs struct {
	*jobs.MemoryRepository
}

func (brokenJobs) FindByID(context.Context, string) (*jobs.Job, error) {
	return nil, errors.New(`ERROR: invalid input syntax for type uuid: "abc" (SQLSTATE 22P02)`)
}

func strPtr(s string) *string { return &s }
