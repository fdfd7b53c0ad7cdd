package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrInvalidTransition = errors.New("invalid review status transition")
	ErrReviewNotDraft    = errors.New("only draft reviews can be deleted")
	ErrNoOrganization    = errors.New("user has no organization")
	ErrAlreadyInOrg      = errors.New("user already belongs to an organization")
)
