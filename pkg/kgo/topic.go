package kgo

import (
	"sync"
	"sync/atomic"
)

// LeaderQuerier fires an asynchronous metadata refresh for a topic — the
// external topic_leader_query collaborator named in §6.
type LeaderQuerier interface {
	QueryLeader(client *Client, topic *Topic)
}

// noopLeaderQuerier is used when a Client is built without one; metadata
// refresh is then entirely the caller's responsibility to drive via
// ApplyMetadata.
type noopLeaderQuerier struct{}

func (noopLeaderQuerier) QueryLeader(*Client, *Topic) {}

// Topic is C3: a named container of partitions plus a desired-but-unseen
// list and a designated unassigned slot.
type Topic struct {
	name   string
	client *Client
	config *TopicConfig

	rw sync.RWMutex

	parts          []*Part
	partitionCount int32
	ua             *Part
	desiredUnseen  []*Part

	refcount int32
}

// Name returns a borrowed view of the topic name, matching §4.3's
// topic_name.
func (t *Topic) Name() string { return t.name }

// Config returns the topic's immutable configuration.
func (t *Topic) Config() *TopicConfig { return t.config }

// Keep takes a reference on t.
func (t *Topic) Keep() { atomic.AddInt32(&t.refcount, 1) }

// Release drops a reference on t. Reaching zero does not by itself unlink
// the topic from the registry in this core — PartitionsRemove (§4.4.3) is
// what breaks the topic/partition cycle per §9; Release only tracks the
// count so tests can assert P3/P6-shaped properties.
func (t *Topic) Release() int32 { return atomic.AddInt32(&t.refcount, -1) }

// Refcount reads the current reference count.
func (t *Topic) Refcount() int32 { return atomic.LoadInt32(&t.refcount) }

// PartitionCount reads the authoritative partition count under the read
// lock.
func (t *Topic) PartitionCount() int32 {
	t.rw.RLock()
	defer t.rw.RUnlock()
	return t.partitionCount
}

// newTopic allocates a bare Topic; NewTopic() is the public entry point that
// also registers it and creates its UA partition.
func newTopic(client *Client, name string, config *TopicConfig) *Topic {
	t := &Topic{
		name:     name,
		client:   client,
		config:   config,
		refcount: 1,
	}
	t.ua = newPart(t, UAPartitionID)
	return t
}

// NewTopic validates config, then either returns the existing topic of
// this name with its refcount bumped (idempotent creation, P6/S1), or
// allocates, registers, and schedules a leader query for a new one.
// Grounded on rd_kafka_topic_new.
func NewTopic(client *Client, name string, config *TopicConfig) (*Topic, error) {
	if name == "" {
		return nil, &ConfigError{Field: "name", Reason: "must not be empty"}
	}
	if config.MessageTimeoutMillis <= 0 {
		return nil, &ConfigError{Field: "MessageTimeoutMillis", Reason: "must be positive"}
	}
	if config.RequestTimeoutMillis <= 0 {
		return nil, &ConfigError{Field: "RequestTimeoutMillis", Reason: "must be positive"}
	}

	if existing, err := client.FindTopic(name); err == nil {
		return existing, nil
	}

	t := newTopic(client, name, config.clone())

	if !client.registerTopic(t) {
		// Lost a race to create the same topic; return the winner with
		// a bumped ref, matching rd_kafka_topic_new's find-then-return.
		existing, _ := client.FindTopic(name)
		return existing, nil
	}

	client.cfg.Logger.Log(LogLevelDebug, "new local topic", "topic", name)
	client.leaderQuerier().QueryLeader(client, t)
	return t, nil
}

// LookupPartition returns parts[id] (ref-bumped) if 0<=id<partitionCount,
// else ua if uaOnMiss, else nil. Desired-list entries are never returned by
// this call. The caller must already hold a read or write lock on the
// topic, matching §4.3's lock precondition.
func (t *Topic) LookupPartition(id int32, uaOnMiss bool) *Part {
	var p *Part
	if id >= 0 && id < t.partitionCount {
		p = t.parts[id]
	} else if uaOnMiss {
		p = t.ua
	} else {
		return nil
	}
	if p != nil {
		p.Keep()
	}
	return p
}

// lookupPartitionLocked acquires the read lock itself; used by callers
// that are not already inside a topic critical section.
func (t *Topic) lookupPartitionLocked(id int32, uaOnMiss bool) *Part {
	t.rw.RLock()
	defer t.rw.RUnlock()
	return t.LookupPartition(id, uaOnMiss)
}

// FindPartition is LookupPartition's error-returning counterpart for
// external callers: it never falls back to UA and reports
// ErrPartitionNotFound instead of a silent nil on miss.
func (t *Topic) FindPartition(id int32) (*Part, error) {
	p := t.lookupPartitionLocked(id, false)
	if p == nil {
		return nil, ErrPartitionNotFound
	}
	return p, nil
}

// DesiredGet scans desiredUnseen for partitionID, ref-bumping on hit. The
// caller must hold at least a read lock on the topic.
func (t *Topic) DesiredGet(partitionID int32) *Part {
	for _, p := range t.desiredUnseen {
		if p.PartitionID == partitionID {
			p.Keep()
			return p
		}
	}
	return nil
}

// DesiredAdd adds partitionID as a desired partition, or marks an existing
// one desired. The caller must hold the topic write lock. Grounded on
// rd_kafka_toppar_desired_add.
func (t *Topic) DesiredAdd(partitionID int32) *Part {
	if p := t.LookupPartition(partitionID, false); p != nil {
		p.lock.Lock()
		p.flags |= PartDesired
		p.lock.Unlock()
		return p
	}

	if p := t.DesiredGet(partitionID); p != nil {
		return p
	}

	p := newPart(t, partitionID)
	p.flags = PartDesired | PartUnknown
	t.desiredUnseen = append(t.desiredUnseen, p)
	return p
}

// DesiredDel unmarks part as desired. The caller must hold the topic write
// lock. Per §9's Open Question, the reference tied to list membership is
// released only when the partition is actually removed from
// desiredUnseen (i.e. only when UNKNOWN was also set) — DESIRED alone,
// without UNKNOWN, implies the partition is not in the list and nothing
// is released. Grounded on rd_kafka_toppar_desired_del.
func (t *Topic) DesiredDel(p *Part) {
	p.lock.Lock()
	if p.flags&PartDesired == 0 {
		p.lock.Unlock()
		return
	}
	p.flags &^= PartDesired

	removed := false
	if p.flags&PartUnknown != 0 {
		p.flags &^= PartUnknown
		removed = true
	}
	p.lock.Unlock()

	if removed {
		t.removeDesired(p)
		p.Release()
	}
}

func (t *Topic) removeDesired(p *Part) {
	for i, d := range t.desiredUnseen {
		if d == p {
			t.desiredUnseen = append(t.desiredUnseen[:i], t.desiredUnseen[i+1:]...)
			return
		}
	}
}

// UAMove moves q's contents into the UA partition's queue. Returns
// ErrNoUAPartition if the UA slot is absent (only possible during
// teardown). Grounded on rd_kafka_toppar_ua_move.
func (t *Topic) UAMove(q *msgQueue) error {
	t.rw.RLock()
	ua := t.ua
	t.rw.RUnlock()

	if ua == nil {
		return ErrNoUAPartition
	}

	ua.lock.Lock()
	ua.msgQueue.concat(q)
	ua.lock.Unlock()
	return nil
}
