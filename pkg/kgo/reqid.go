package kgo

import uuid "github.com/hashicorp/go-uuid"

// newReqID generates a correlation id via hashicorp/go-uuid, echoing the
// requestId parameter the teacher threads through every call in broker.go.
// It is attached only to the InconsistentStateError that ApplyMetadata
// builds (and so to the notice line logging it); the other topology-update
// log lines carry no request id.
func newReqID() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		// GenerateUUID only fails if the system CSPRNG is broken; fall
		// back to a fixed marker rather than panicking mid-update.
		return "uuid-unavailable"
	}
	return id
}
