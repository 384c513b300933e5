package kgo

import (
	"sync"
	"sync/atomic"
)

// UAPartitionID is the distinguished sentinel partition id denoting the
// "unassigned" slot, matching RD_KAFKA_PARTITION_UA.
const UAPartitionID int32 = -1

// FetchState is the consumer-side fetch state machine. Only FetchStateNone
// is exercised by this core; richer values belong to the consumer path and
// are out of scope (§3).
type FetchState int8

const (
	FetchStateNone FetchState = iota
	FetchStateActive
)

// PartFlag is a bit in Part.flags.
type PartFlag uint8

const (
	// PartDesired marks a partition the application wants but that may
	// not yet exist on the cluster.
	PartDesired PartFlag = 1 << iota
	// PartUnknown marks a partition present in a Topic's desiredUnseen
	// list rather than its parts array.
	PartUnknown
)

// Part is a single partition's state: C2 in the design. One mutex guards
// every mutable field below, matching §3's per-partition lock and §5's
// lock inventory.
type Part struct {
	PartitionID int32
	parent      *Topic // back-reference only; does not keep the topic alive

	lock       sync.Mutex
	msgQueue   msgQueue
	xmitQueue  msgQueue
	fetchState FetchState
	leader     *Broker
	flags      PartFlag

	refcount int32
}

// newPart constructs a Part with refcount 1 held by its container (the
// topic's parts array, UA slot, or desiredUnseen list), matching
// rd_kafka_toppar_new's rd_kafka_toppar_keep(rktp) + implicit container
// ownership.
func newPart(parent *Topic, id int32) *Part {
	return &Part{
		PartitionID: id,
		parent:      parent,
		refcount:    1,
	}
}

// Keep takes a reference on part.
func (p *Part) Keep() { atomic.AddInt32(&p.refcount, 1) }

// Release drops a reference on part. Reaching zero runs no destructor: the
// partition holds no reference on its parent topic, so none is released,
// and nothing is unlinked. Callers that need to observe "did this reach
// zero" use Refcount() (chiefly for P3 in tests).
func (p *Part) Release() int32 { return atomic.AddInt32(&p.refcount, -1) }

// Refcount reads the current reference count.
func (p *Part) Refcount() int32 { return atomic.LoadInt32(&p.refcount) }

// Parent returns the owning topic (a non-owning back-reference, per §9's
// cycle-breaking note).
func (p *Part) Parent() *Topic { return p.parent }

// Leader returns the currently delegated broker, or nil.
func (p *Part) Leader() *Broker {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.leader
}

// HasFlag reports whether f is set.
func (p *Part) HasFlag(f PartFlag) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.flags&f != 0
}

// QueueLen returns the current message queue length, for diagnostics and
// tests.
func (p *Part) QueueLen() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.msgQueue.len()
}

// QueueMessages returns the queue's contents head-to-tail, for tests.
func (p *Part) QueueMessages() []*Message {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.msgQueue.slice()
}

// InsertMsg places msg at the head of the partition's queue, under the
// partition lock. Reserved for control/flash messages that must precede
// any queued data. Grounded on rd_kafka_toppar_insert_msg.
func (p *Part) InsertMsg(msg *Message) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.msgQueue.insert(msg)
}

// EnqMsg places msg at the tail of the partition's queue, under the
// partition lock. Grounded on rd_kafka_toppar_enq_msg.
func (p *Part) EnqMsg(msg *Message) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.msgQueue.enq(msg)
}

// DeqMsg removes msg from the partition's queue; the caller guarantees
// membership. Grounded on rd_kafka_toppar_deq_msg.
func (p *Part) DeqMsg(msg *Message) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.msgQueue.deq(msg)
}

// InsertQueue prepends q's contents to the partition's queue, leaving q
// empty. Implemented exactly as §4.2 specifies: concat part.msgQueue onto
// q (so q now holds "old head ... old tail"), then move-assign q into
// part.msgQueue. Grounded on rd_kafka_toppar_insert_msgq.
func (p *Part) InsertQueue(q *msgQueue) {
	p.lock.Lock()
	defer p.lock.Unlock()
	q.concat(&p.msgQueue)
	p.msgQueue.moveFrom(q)
}

// MoveMsgs concatenates src's queue onto dst's queue. Callers must already
// hold both dst.lock and src.lock (acquired by the caller), matching §4.2's
// "under both locks" requirement. Grounded on rd_kafka_toppar_move_msgs.
func MoveMsgs(dst, src *Part) {
	dst.msgQueue.concat(&src.msgQueue)
}

// BrokerDelegate rebinds part's leader to target (nil to undelegate),
// implementing the four-case table in §4.5. Callers must hold the
// enclosing topic's write lock; this function takes the broker's
// partition-list lock internally, inside the topic lock, per §5's lock
// ordering. Grounded on rd_kafka_toppar_broker_delegate.
func (p *Part) BrokerDelegate(target *Broker) {
	p.lock.Lock()
	current := p.leader
	p.lock.Unlock()

	if current == target {
		return // no-op: B->B or none->none
	}

	if current != nil {
		current.unlink(p)
		p.lock.Lock()
		p.leader = nil
		p.lock.Unlock()
		p.Release()       // release the ref held by the broker's list
		current.Release() // release the ref part held on current
	}

	if target != nil {
		target.link(p)
		p.lock.Lock()
		p.leader = target
		p.lock.Unlock()
		p.Keep()     // list now holds a ref on part
		target.Keep() // part now holds a ref on target
	}
}
