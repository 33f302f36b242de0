package model

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAPIError maps a reason code to a message for the few errors surfaced to visitors
// everything fetched from github degrades silently and never reaches this function
func NewAPIError(errReason error) APIError {
	switch errReason.Error() {
	case "INVALID_SORT_KEY":
		return APIError{
			Code:    "INVALID_SORT_KEY",
			Message: "sort must be one of stars, created, updated or activity",
		}

	case "UNKNOWN_LANGUAGE":
		return APIError{
			Code:    "UNKNOWN_LANGUAGE",
			Message: "language is not the primary language of any repository",
		}

	case "REPOSITORY_NOT_FOUND":
		return APIError{
			Code:    "REPOSITORY_NOT_FOUND",
			Message: "repository not found in the current list",
		}

	case "SESSION_NOT_FOUND":
		return APIError{
			Code:    "SESSION_NOT_FOUND",
			Message: "no browsing session, load the page first",
		}

	case "INVALID_REQUEST":
		return APIError{
			Code:    "INVALID_REQUEST",
			Message: "request body or query is malformed",
		}

	default:
		return APIError{
			Code:    "GENERIC_ERROR",
			Message: "internal server error. contact our support with the reason code for assistance",
		}
	}
}
