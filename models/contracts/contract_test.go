package contracts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"talenttrack-backend/models"
	"talenttrack-backend/models/contracts"
)

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to contracts.Status
		want     bool
	}{
		{contracts.StatusApplied, contracts.StatusApproved, true},
		{contracts.StatusApplied, contracts.StatusRejected, true},
		{contracts.StatusApplied, contracts.StatusApplied, false},
		{contracts.StatusApproved, contracts.StatusRejected, false},
		{contracts.StatusApproved, contracts.StatusApplied, false},
		{contracts.StatusRejected, contracts.StatusApproved, false},
		{contracts.StatusRejected, contracts.StatusApplied, false},
	}
	for _, tt := range tests {
		if got := contracts.IsTransitionAllowed(tt.from, tt.to); got != tt.want {
			t.Errorf("IsTransitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if contracts.IsTerminal(contracts.StatusApplied) {
		t.Error("Applied should not be terminal")
	}
	for _, s := range []contracts.Status{contracts.StatusApproved, contracts.StatusRejected} {
		if !contracts.IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"Applied", "Approved", "Rejected"} {
		if _, err := contracts.ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "applied", "Hired", "APPROVED"} {
		if _, err := contracts.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) should fail", s)
		}
	}
}

func TestMergeDeletedForNeverShrinks(t *testing.T) {
	c := &contracts.Contract{DeletedFor: []string{"a"}}
	c.MergeDeletedFor("b", "a", "", "b")
	want := []string{"a", "b"}
	if len(c.DeletedFor) != len(want) {
		t.Fatalf("DeletedFor = %v, want %v", c.DeletedFor, want)
	}
	for i := range want {
		if c.DeletedFor[i] != want[i] {
			t.Errorf("DeletedFor[%d] = %q, want %q", i, c.DeletedFor[i], want[i])
		}
	}
	c.MergeDeletedFor()
	if len(c.DeletedFor) != 2 {
		t.Errorf("empty merge changed DeletedFor to %v", c.DeletedFor)
	}
}

func TestMemoryRepositoryUniqueJobUser(t *testing.T) {
	ctx := context.Background()
	repo := contracts.NewMemoryRepository()
	if err := repo.Create(ctx, &contracts.Contract{ID: "c1", JobID: "j1", UserID: "u1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, &contracts.Contract{ID: "c2", JobID: "j1", UserID: "u1"})
	if !errors.Is(err, models.ErrDuplicate) {
		t.Fatalf("second Create err = %v, want ErrDuplicate", err)
	}
	if err := repo.Create(ctx, &contracts.Contract{ID: "c3", JobID: "j1", UserID: "u2"}); err != nil {
		t.Fatalf("Create other user: %v", err)
	}
}

func TestMemoryRepositoryHideFor(t *testing.T) {
	ctx := context.Background()
	repo := contracts.NewMemoryRepository()
	for _, c := range []*contracts.Contract{
		{ID: "c1", JobID: "j1", UserID: "u1"},
		{ID: "c2", JobID: "j2", UserID: "u1"},
	} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create %s: %v", c.ID, err)
		}
	}

	if err := repo.HideFor(ctx, "c1", "viewer"); err != nil {
		t.Fatalf("HideFor: %v", err)
	}
	if err := repo.HideFor(ctx, "c1", "viewer"); err != nil {
		t.Fatalf("HideFor again: %v", err)
	}
	if err := repo.HideFor(ctx, "missing", "viewer"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("HideFor missing err = %v, want ErrNotFound", err)
	}

	visible, _ := repo.ListVisibleTo(ctx, "viewer")
	if len(visible) != 1 || visible[0].ID != "c2" {
		t.Errorf("visible to viewer = %v, want only c2", visible)
	}
	other, _ := repo.ListVisibleTo(ctx, "someone-else")
	if len(other) != 2 {
		t.Errorf("visible to someone-else = %d contracts, want 2", len(other))
	}
	all, _ := repo.List(ctx)
	if len(all) != 2 {
		t.Errorf("List = %d contracts, want 2", len(all))
	}

	c, _ := repo.FindByID(ctx, "c1")
	if len(c.DeletedFor) != 1 {
		t.Errorf("DeletedFor = %v, want one entry", c.DeletedFor)
	}
}

func TestMemoryRepositoryUpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := contracts.NewMemoryRepository()
	if err := repo.Create(ctx, &contracts.Contract{ID: "c1", JobID: "j1", UserID: "u1", Status: contracts.StatusApplied}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.UpdateStatus(ctx, "c1", contracts.StatusApplied, contracts.StatusRejected, time.Now()); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	err := repo.UpdateStatus(ctx, "c1", contracts.StatusApplied, contracts.StatusApproved, time.Now())
	if !errors.Is(err, models.ErrStale) {
		t.Errorf("second UpdateStatus err = %v, want ErrStale", err)
	}
	if err := repo.UpdateStatus(ctx, "missing", contracts.StatusApplied, contracts.StatusApproved, time.Now()); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
	c, _ := repo.FindByID(ctx, "c1")
	if c.Status != contracts.StatusRejected {
		t.Errorf("Status = %s, want Rejected", c.Status)
	}
}

func TestMemoryRepositorySaveDetailsLeavesStatusAndHides(t *testing.T) {
	ctx := context.Background()
	repo := contracts.NewMemoryRepository()
	if err := repo.Create(ctx, &contracts.Contract{ID: "c1", JobID: "j1", UserID: "u1", Status: contracts.StatusApplied}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	stale, _ := repo.FindByID(ctx, "c1")

	if err := repo.HideFor(ctx, "c1", "a", "b", "a"); err != nil {
		t.Fatalf("HideFor: %v", err)
	}
	stale.JobName = "Renamed"
	stale.Status = contracts.StatusApproved
	if err := repo.SaveDetails(ctx, stale); err != nil {
		t.Fatalf("SaveDetails: %v", err)
	}

	c, _ := repo.FindByID(ctx, "c1")
	if c.JobName != "Renamed" {
		t.Errorf("JobName = %q, want Renamed", c.JobName)
	}
	if c.Status != contracts.StatusApplied {
		t.Errorf("Status = %s, SaveDetails must not write it", c.Status)
	}
	if len(c.DeletedFor) != 2 {
		t.Errorf("DeletedFor = %v, want [a b]", c.DeletedFor)
	}
}
