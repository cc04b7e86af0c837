package cancel_appointment

// CancelAppointmentRequest is the optional HTTP request body.
type CancelAppointmentRequest struct {
	Reason string `json:"reason,omitempty"`
}
