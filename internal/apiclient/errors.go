package apiclient

import (
	"errors"
	"net/http"

	"sharebite/internal/domain"
)

var errIncompleteLogin = errors.New("login response without token or user")

// statusMapping turns a non-2xx answer into a *domain.Error. Operations
// differ in how they read 400/409 and in which texts replace the server's.
type statusMapping struct {
	// rejectKind is the kind for 400 and 409. Zero keeps the defaults of
	// validation for 400 and conflict for 409.
	rejectKind domain.ErrorKind
	// fixed messages replace whatever the server said.
	fixed map[int]string
	// fallback messages apply when the server sent no message.
	fallback map[int]string
	// otherwise is the fallback for statuses without an entry.
	otherwise string
}

var defaultMapping = statusMapping{}

var claimMapping = statusMapping{
	rejectKind: domain.KindConflict,
	fixed: map[int]string{
		http.StatusUnauthorized: "Please log in to claim donations.",
		http.StatusForbidden:    "Only welfare organizations can claim food donations.",
		http.StatusNotFound:     "This donation is no longer available.",
	},
	fallback: map[int]string{
		http.StatusBadRequest: "This donation has already been claimed by someone else.",
		http.StatusConflict:   "This donation has already been claimed by someone else.",
	},
	otherwise: "Failed to claim food donation. Please try again.",
}

// lifecycleMapping serves delete and status updates, where a rejection means
// the post is no longer in a state that allows the change.
var lifecycleMapping = statusMapping{
	rejectKind: domain.KindState,
}

func (m statusMapping) toError(status int, serverMsg string) error {
	msg := serverMsg
	if fixed, ok := m.fixed[status]; ok {
		msg = fixed
	}
	if msg == "" {
		if fb, ok := m.fallback[status]; ok {
			msg = fb
		} else {
			msg = m.otherwise
		}
	}

	var kind domain.ErrorKind
	switch status {
	case http.StatusBadRequest:
		kind = domain.KindValidation
		if m.rejectKind != "" {
			kind = m.rejectKind
		}
	case http.StatusConflict:
		kind = domain.KindConflict
		if m.rejectKind != "" {
			kind = m.rejectKind
		}
	case http.StatusUnauthorized:
		kind = domain.KindAuthentication
	case http.StatusForbidden:
		kind = domain.KindAuthorization
	case http.StatusNotFound:
		kind = domain.KindNotFound
	case http.StatusNotImplemented:
		kind = domain.KindUnsupported
	default:
		kind = domain.KindTransport
	}
	return &domain.Error{Kind: kind, Message: msg}
}
