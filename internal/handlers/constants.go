package handlers

const (
	// AnonymousUser owns the sessions handed out when no admin password is
	// configured
	AnonymousUser = "anonymous"
	// unknownCreator is recorded as createdBy for anonymous changes
	unknownCreator = "unknown"

	// birthdayBadgeDays is how close a birthday must be to badge a person card
	birthdayBadgeDays = 30

	ErrInvalidFormData     = "Invalid form data"
	ErrForbidden           = "Invalid or missing CSRF token"
	ErrInternalServerError = "Internal server error"
)
