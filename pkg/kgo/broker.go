package kgo

import (
	"sync"
	"sync/atomic"
)

// Broker is the external collaborator described in §6: an opaque target of
// leader delegation. This core never dials it, never authenticates to it,
// and never writes to it — the broker connection state machine and its
// produce/fetch pipelines are explicitly out of scope (§1). What survives
// here, adapted from the teacher's broker struct in broker.go, is exactly
// the leader-bookkeeping half: a node identity and the rw-locked list of
// partitions for which this broker is currently leader.
type Broker struct {
	NodeID int32
	Name   string

	partsMu    sync.RWMutex
	partitions map[*Part]struct{}
	partCount  int

	refcount int32
}

// NewBroker constructs a Broker with refcount 1, held by its directory
// entry, mirroring the container's initial reference in §3's lifecycle
// note applied to brokers.
func NewBroker(nodeID int32, name string) *Broker {
	return &Broker{
		NodeID:     nodeID,
		Name:       name,
		partitions: make(map[*Part]struct{}),
		refcount:   1,
	}
}

// Keep takes a reference.
func (b *Broker) Keep() { atomic.AddInt32(&b.refcount, 1) }

// Release drops a reference; the broker has no teardown work beyond
// bookkeeping since it owns no OS resources in this trimmed-down form.
func (b *Broker) Release() { atomic.AddInt32(&b.refcount, -1) }

// PartitionCount returns the number of partitions currently linked to this
// broker as leader, matching rkb_toppar_cnt.
func (b *Broker) PartitionCount() int {
	b.partsMu.RLock()
	defer b.partsMu.RUnlock()
	return b.partCount
}

// HasPartition reports whether part is linked into this broker's partition
// list — the bijection invariant §3.4 describes.
func (b *Broker) HasPartition(part *Part) bool {
	b.partsMu.RLock()
	defer b.partsMu.RUnlock()
	_, ok := b.partitions[part]
	return ok
}

// link adds part to this broker's partition list. Callers (toppar.go's
// BrokerDelegate) must already hold the enclosing topic's write lock per
// §4.5/§5's lock ordering (topic_rw before broker_parts_rw).
func (b *Broker) link(part *Part) {
	b.partsMu.Lock()
	defer b.partsMu.Unlock()
	b.partitions[part] = struct{}{}
	b.partCount++
}

// unlink removes part from this broker's partition list.
func (b *Broker) unlink(part *Part) {
	b.partsMu.Lock()
	defer b.partsMu.Unlock()
	if _, ok := b.partitions[part]; !ok {
		return
	}
	delete(b.partitions, part)
	b.partCount--
}

// BrokerDirectory is the §6 lookup collaborator: find_by_node_id.
type BrokerDirectory struct {
	mu      sync.RWMutex
	brokers map[int32]*Broker
}

// NewBrokerDirectory builds an empty directory.
func NewBrokerDirectory() *BrokerDirectory {
	return &BrokerDirectory{brokers: make(map[int32]*Broker)}
}

// Add registers a broker under its node id, keeping one reference on its
// behalf.
func (d *BrokerDirectory) Add(b *Broker) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brokers[b.NodeID] = b
}

// FindByNodeID looks up a broker by node id. Returns (nil, false) on miss,
// matching §6's find_by_node_id → maybe(Broker) contract; on hit the
// returned Broker is not additionally ref-bumped since the directory's
// lifetime already dominates any single lookup in this trimmed-down model.
func (d *BrokerDirectory) FindByNodeID(nodeID int32) (*Broker, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.brokers[nodeID]
	return b, ok
}

// Find is FindByNodeID's error-returning counterpart, for callers (like
// metadata ingestion's "broker lookup failed" branch) that need to report
// or propagate the miss rather than just branch on it.
func (d *BrokerDirectory) Find(nodeID int32) (*Broker, error) {
	b, ok := d.FindByNodeID(nodeID)
	if !ok {
		return nil, ErrBrokerNotFound
	}
	return b, nil
}
