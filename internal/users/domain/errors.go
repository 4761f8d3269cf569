package domain

import "github.com/buildhub-th/procure-backend/internal/apperrors"

var (
	ErrNotLinked              = apperrors.NotFound("User not linked")
	ErrProfileNotFound        = apperrors.NotFound("user not found")
	ErrPhoneNotRegistered     = apperrors.NotFound("Phone number not registered. Please contact an administrator.")
	ErrPhoneLinkedToOtherLine = apperrors.Conflict("This phone number is already linked to another LINE account")
	ErrLineLinkedToOtherUser  = apperrors.Conflict("This LINE account is already linked to another employee")
	ErrPhoneTaken             = apperrors.Conflict("phone number is already assigned to another user")
	ErrInvalidPhone           = apperrors.BadRequest("phone number must contain 9 to 10 digits")
	ErrInvalidRole            = apperrors.BadRequest("role must be one of admin, procurement, pm, engineer")
	ErrAccountDisabled        = apperrors.Unauthorized("account disabled")
	ErrLineNotBound           = apperrors.NotFound("user has no linked LINE account")
)
