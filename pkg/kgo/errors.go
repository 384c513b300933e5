package kgo

import "fmt"

// Sentinel errors returned by lookups, matching §7's NotFound kind. Callers
// compare with errors.Is, the same idiom sarama uses for errors.Is(err,
// ErrNoError) throughout admin.go.
var (
	ErrTopicNotFound     = fmt.Errorf("kgo: topic not found")
	ErrPartitionNotFound = fmt.Errorf("kgo: partition not found")
	ErrBrokerNotFound    = fmt.Errorf("kgo: broker not found")
	ErrNoUAPartition     = fmt.Errorf("kgo: no unassigned partition available")
)

// ConfigError reports InvalidConfig: topic_new rejected a non-positive
// timeout or empty name before any state mutation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("kgo: invalid topic config: %s: %s", e.Field, e.Reason)
}

// InconsistentStateError reports the §7 InconsistentState kind: a metadata
// event named a partition id the topic does not know about. This signals a
// broken invariant between the client and the cluster. ApplyMetadata, the
// only place that builds one, logs it at notice level and skips that
// partition; the error is not returned to ApplyMetadata's caller.
type InconsistentStateError struct {
	Topic       string
	PartitionID int32
	NodeID      int32
	ReqID       string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("kgo: inconsistent state: topic %q partition %d (node %d) req=%s: "+
		"metadata named a partition this client does not know about",
		e.Topic, e.PartitionID, e.NodeID, e.ReqID)
}
