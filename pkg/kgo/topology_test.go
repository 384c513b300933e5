package kgo

import "testing"

type spyQuerier struct {
	calls int
}

func (s *spyQuerier) QueryLeader(*Client, *Topic) { s.calls++ }

func testTopicWithQuerier(q LeaderQuerier) *Topic {
	cfg := NewTopicConfig(WithMessageTimeoutMillis(1000), WithRequestTimeoutMillis(1000))
	client := NewClient(nil, q)
	top, _ := NewTopic(client, "test-topic", cfg)
	return top
}

func TestUpdateLeaderNoneToBroker(t *testing.T) {
	top := testTopic()
	p := newPart(top, 0)
	b := NewBroker(1, "broker-1")

	UpdateLeader(top, p, b)

	if p.Leader() != b {
		t.Fatalf("Leader() = %v, want b", p.Leader())
	}
}

func TestUpdateLeaderBrokerToBrokerMigrates(t *testing.T) {
	top := testTopic()
	p := newPart(top, 0)
	b1 := NewBroker(1, "broker-1")
	b2 := NewBroker(2, "broker-2")

	UpdateLeader(top, p, b1)
	UpdateLeader(top, p, b2)

	if p.Leader() != b2 {
		t.Fatalf("Leader() = %v, want b2", p.Leader())
	}
	if b1.HasPartition(p) {
		t.Fatalf("b1 still holds partition after migration")
	}
}

func TestUpdateLeaderSameLeaderIsNoop(t *testing.T) {
	top := testTopic()
	p := newPart(top, 0)
	b := NewBroker(1, "broker-1")
	UpdateLeader(top, p, b)
	before := p.Refcount()

	UpdateLeader(top, p, b)

	if p.Refcount() != before {
		t.Fatalf("Refcount() changed on redundant UpdateLeader: before=%d after=%d", before, p.Refcount())
	}
}

func TestUpdateLeaderBrokerToNoneRequestsRefresh(t *testing.T) {
	q := &spyQuerier{}
	top := testTopicWithQuerier(q)
	baseline := q.calls // NewTopic itself queries once on creation

	p := newPart(top, 0)
	b := NewBroker(1, "broker-1")
	UpdateLeader(top, p, b)
	UpdateLeader(top, p, nil)

	if got := q.calls - baseline; got != 1 {
		t.Fatalf("QueryLeader calls after losing a leader = %d, want 1", got)
	}
}

func TestUpdateLeaderNoneReportedAgainRequestsRefresh(t *testing.T) {
	q := &spyQuerier{}
	top := testTopicWithQuerier(q)
	baseline := q.calls

	p := newPart(top, 0)
	UpdateLeader(top, p, nil)

	if got := q.calls - baseline; got != 1 {
		t.Fatalf("QueryLeader calls for a still-unknown leader = %d, want 1 (S5)", got)
	}
}

func TestUpdateLeaderGainOrMigrateDoesNotRequestRefresh(t *testing.T) {
	q := &spyQuerier{}
	top := testTopicWithQuerier(q)
	baseline := q.calls

	p := newPart(top, 0)
	b1 := NewBroker(1, "broker-1")
	b2 := NewBroker(2, "broker-2")
	UpdateLeader(top, p, b1)
	UpdateLeader(top, p, b2)

	if got := q.calls - baseline; got != 0 {
		t.Fatalf("QueryLeader calls after gain+migrate = %d, want 0", got)
	}
}

func TestPartitionCountUpdateSigns(t *testing.T) {
	top := testTopic()
	GrowPartitions(top, 3)

	if got := PartitionCountUpdate(top, 3); got != 0 {
		t.Fatalf("PartitionCountUpdate(same) = %d, want 0", got)
	}
	if got := PartitionCountUpdate(top, 5); got != 1 {
		t.Fatalf("PartitionCountUpdate(grow) = %d, want 1", got)
	}
	if got := PartitionCountUpdate(top, 1); got != -1 {
		t.Fatalf("PartitionCountUpdate(shrink) = %d, want -1", got)
	}
}

func TestGrowPartitionsCreatesFreshParts(t *testing.T) {
	top := testTopic()
	GrowPartitions(top, 2)

	if got := top.PartitionCount(); got != 2 {
		t.Fatalf("PartitionCount() = %d, want 2", got)
	}

	top.rw.RLock()
	p0 := top.LookupPartition(0, false)
	p1 := top.LookupPartition(1, false)
	top.rw.RUnlock()

	if p0 == nil || p1 == nil || p0 == p1 {
		t.Fatalf("grown partitions not distinct: p0=%v p1=%v", p0, p1)
	}
}

func TestGrowPartitionsIgnoresNonGrowingCount(t *testing.T) {
	top := testTopic()
	GrowPartitions(top, 3)
	GrowPartitions(top, 2) // shrink attempt via Grow must be a no-op

	if got := top.PartitionCount(); got != 3 {
		t.Fatalf("PartitionCount() after no-op grow = %d, want 3", got)
	}
}

func TestShrinkPartitionsMovesQueuedMessagesToUA(t *testing.T) {
	top := testTopic()
	GrowPartitions(top, 3)
	b := NewBroker(1, "broker-1")

	top.rw.RLock()
	p2 := top.LookupPartition(2, false)
	top.rw.RUnlock()
	UpdateLeader(top, p2, b)

	ma, mb := &Message{Size: 1}, &Message{Size: 1}
	p2.EnqMsg(ma)
	p2.EnqMsg(mb)

	ShrinkPartitions(top, 2)

	if got := top.PartitionCount(); got != 2 {
		t.Fatalf("PartitionCount() after shrink = %d, want 2", got)
	}
	if b.HasPartition(p2) {
		t.Fatalf("broker still links a partition dropped by shrink")
	}

	got := top.ua.QueueMessages()
	if len(got) != 2 || got[0] != ma || got[1] != mb {
		t.Fatalf("UA queue after shrink = %v, want [ma mb] in order", got)
	}
}

func TestShrinkPartitionsRedesiresDroppedDesiredPartitions(t *testing.T) {
	top := testTopic()
	GrowPartitions(top, 2)

	top.rw.RLock()
	p1 := top.LookupPartition(1, false)
	top.rw.RUnlock()
	p1.lock.Lock()
	p1.flags |= PartDesired
	p1.lock.Unlock()

	before := p1.Refcount()

	ShrinkPartitions(top, 1)

	if got := top.PartitionCount(); got != 1 {
		t.Fatalf("PartitionCount() after shrink = %d, want 1", got)
	}
	if !p1.HasFlag(PartUnknown) {
		t.Fatalf("dropped desired partition missing PartUnknown after shrink")
	}

	top.rw.RLock()
	found := top.DesiredGet(1)
	top.rw.RUnlock()
	if found != p1 {
		t.Fatalf("DesiredGet(1) = %v, want the shrunk-out partition back in desiredUnseen", found)
	}
	found.Release() // release DesiredGet's bump to re-balance the assertion below

	if got := p1.Refcount(); got != before {
		t.Fatalf("Refcount() = %d, want unchanged %d (array ref transferred to desiredUnseen)", got, before)
	}
}

func TestPartitionsRemoveMovesQueuedMessagesToUA(t *testing.T) {
	top := testTopic()
	GrowPartitions(top, 2)
	b := NewBroker(1, "broker-1")

	top.rw.RLock()
	p0 := top.LookupPartition(0, false)
	top.rw.RUnlock()

	UpdateLeader(top, p0, b)
	m1, m2 := &Message{Size: 1}, &Message{Size: 1}
	p0.EnqMsg(m1)
	p0.EnqMsg(m2)

	PartitionsRemove(top)

	if got := top.PartitionCount(); got != 0 {
		t.Fatalf("PartitionCount() after PartitionsRemove = %d, want 0", got)
	}
	if b.HasPartition(p0) {
		t.Fatalf("broker still links a removed partition")
	}

	got := top.ua.QueueMessages()
	if len(got) != 2 || got[0] != m1 || got[1] != m2 {
		t.Fatalf("UA queue after PartitionsRemove = %v, want [m1 m2] in order", got)
	}
}

func TestAssignUnassignedRoutesToConcretePartitions(t *testing.T) {
	top := testTopic()
	GrowPartitions(top, 1)

	m := &Message{Size: 1}
	var q msgQueue
	q.enq(m)
	if err := top.UAMove(&q); err != nil {
		t.Fatalf("UAMove: %v", err)
	}

	AssignUnassigned(top)

	if got := top.ua.QueueLen(); got != 0 {
		t.Fatalf("ua.QueueLen() after AssignUnassigned = %d, want 0", got)
	}

	top.rw.RLock()
	p0 := top.LookupPartition(0, false)
	top.rw.RUnlock()

	if got := p0.QueueLen(); got != 1 {
		t.Fatalf("partition 0 QueueLen() = %d, want 1", got)
	}
}

func TestAssignUnassignedLeavesUnroutableMessagesInOrder(t *testing.T) {
	top := testTopic()
	// No partitions at all: the random partitioner always reports
	// unavailable, so every message must come back out in order.
	m1, m2 := &Message{Size: 1}, &Message{Size: 1}
	top.ua.EnqMsg(m1)
	top.ua.EnqMsg(m2)

	AssignUnassigned(top)

	got := top.ua.QueueMessages()
	if len(got) != 2 || got[0] != m1 || got[1] != m2 {
		t.Fatalf("UA queue after failed AssignUnassigned = %v, want [m1 m2] preserved in order", got)
	}
}
