package tracker

import "github.com/ayoisaiah/moodmap/internal/apperr"

var (
	// ErrConsentDeclined is returned when the user does not allow camera access.
	ErrConsentDeclined = &apperr.Error{
		Message: "camera access was not granted",
	}

	errRestoreFailed = &apperr.Error{
		Message: "unable to restore the previous session",
	}

	errSaveFailed = &apperr.Error{
		Message: "unable to save the session",
	}
)
