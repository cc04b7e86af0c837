package calendarsync

import "errors"

var (
	// ErrInternal is returned on client-side failures.
	ErrInternal = errors.New("calendarsync client: internal error")

	// ErrInvalidResponse is returned when the collaborator answers with an
	// unexpected status or payload.
	ErrInvalidResponse = errors.New("calendarsync client: invalid response")

	// ErrServiceDegraded signals the collaborator is unavailable and the
	// caller should proceed without the external busy signal.
	ErrServiceDegraded = errors.New("calendarsync unavailable: proceeding without external busy data")
)
