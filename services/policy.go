package services

import (
	"fmt"
	"strings"

	"talenttrack-backend/models/users"
)

// Policy is the ownership rule for mutations. With Strict off any
// authenticated user may change any job, contract or message; the client
// hides the buttons but the server does not check. Strict on requires the
// caller to be one of the owners or an admin.
type Policy struct {
	Strict bool
}

// check returns ErrForbidden unless actor may perform action on a record
// owned by owners. Owners are user ids, or emails for messages that came in
// with raw addresses.
func (p Policy) check(actor *users.User, action string, owners ...string) error {
	if actor == nil {
		return fmt.Errorf("%w: no identity for %s", ErrUnauthorized, action)
	}
	if !p.Strict || actor.IsAdmin {
		return nil
	}
	for _, o := range owners {
		if o == "" {
			continue
		}
		if o == actor.ID || strings.EqualFold(o, actor.Email) {
			return nil
		}
	}
	return fmt.Errorf("%w: not allowed to %s", ErrForbidden, action)
}
