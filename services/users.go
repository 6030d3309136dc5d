package services

import (
	"context"
	"fmt"
	"time"

	"talenttrack-backend/models/users"
)

// Grades accepted by Rate.
const (
	MinGrade = 1
	MaxGrade = 5
)

// UserService is the profile side of the identity store. Every profile call
// works on the actor resolved from the token, never on an id from the path.
type UserService struct {
	users users.Repository
	now   func() time.Time
}

func NewUserService(repo users.Repository) *UserService {
	return &UserService{users: repo, now: time.Now}
}

func (s *UserService) Profile(ctx context.Context, actor *users.User) (*users.User, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for profile", ErrUnauthorized)
	}
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return sanitize(u), nil
}

// UpdateProfile changes the provided profile fields. Email, password and the
// safe code cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, actor *users.User, patch users.Profile) (*users.User, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for profile", ErrUnauthorized)
	}
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if patch.Age != nil && *patch.Age < 0 {
		return nil, invalid("age cannot be negative")
	}
	patch.Apply(u)
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Save(ctx, u); err != nil {
		return nil, storeErr(err, "user")
	}
	return sanitize(u), nil
}

// List returns users that have a display name, without credentials.
func (s *UserService) List(ctx context.Context) ([]users.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, storeErr(err, "users")
	}
	list := make([]users.User, 0, len(all))
	for i := range all {
		if all[i].DisplayName() == "" {
			continue
		}
		list = append(list, *sanitize(&all[i]))
	}
	return list, nil
}

// Rate appends actor's grade to the target's ratings and recomputes the
// average.
func (s *UserService) Rate(ctx context.Context, actor *users.User, targetID string, grade int) (*users.User, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for rate", ErrUnauthorized)
	}
	if grade < MinGrade || grade > MaxGrade {
		return nil, invalid("grade must be between %d and %d", MinGrade, MaxGrade)
	}
	if targetID == actor.ID {
		return nil, invalid("cannot rate yourself")
	}
	if err := requireID(targetID, "user"); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, storeErr(err, "user")
	}

	now := s.now().UTC()
	u.Ratings = append(u.Ratings, users.Rating{RaterID: actor.ID, Grade: grade, CreatedAt: now})
	avg := users.AverageRating(u.Ratings)
	u.Rating = &avg
	u.UpdatedAt = now
	if err := s.users.Save(ctx, u); err != nil {
		return nil, storeErr(err, "user")
	}
	return sanitize(u), nil
}
