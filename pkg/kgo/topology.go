package kgo

// UpdateLeader implements the four-case leader-update dispatch of §4.4.1:
// a partition's leader changes (or stays the same). Genuine changes are
// logged at notice level; a report of the same leader returns without
// logging or delegating. Both
// undelegating cases (the leader is reported unknown while already unknown,
// and the leader is lost) request an async metadata refresh through the
// topic's LeaderQuerier, matching §4.4.1's "leader_node_id == -1" and
// "broker lookup failed" requirements. Grounded on
// rd_kafka_toppar_leader_update.
func UpdateLeader(t *Topic, p *Part, newLeader *Broker) {
	t.rw.Lock()
	defer t.rw.Unlock()

	oldLeader := p.Leader()
	requestRefresh := false

	switch {
	case oldLeader == nil && newLeader == nil:
		// Still leaderless, but the caller is telling us the leader is
		// unknown again: ask for a fresh round of metadata regardless.
		requestRefresh = true
	case oldLeader == newLeader:
		return // same leader, no-op
	case oldLeader == nil && newLeader != nil:
		t.client.cfg.Logger.Log(LogLevelNotice, "partition now has a leader",
			"topic", t.name, "partition", p.PartitionID, "broker", newLeader.NodeID)
	case oldLeader != nil && newLeader == nil:
		t.client.cfg.Logger.Log(LogLevelNotice, "partition lost its leader",
			"topic", t.name, "partition", p.PartitionID, "broker", oldLeader.NodeID)
		requestRefresh = true
	default:
		t.client.cfg.Logger.Log(LogLevelNotice, "partition leader changed",
			"topic", t.name, "partition", p.PartitionID,
			"from", oldLeader.NodeID, "to", newLeader.NodeID)
	}

	p.BrokerDelegate(newLeader)

	if requestRefresh {
		t.client.leaderQuerier().QueryLeader(t.client, t)
	}
}

// PartitionCountUpdate implements §4.4.2: comparing a freshly observed
// partition count against the topic's current count. Returns -1 if
// newCount is smaller (shrink), 0 if unchanged, 1 if larger (growth, the
// common case). The caller then drives ShrinkPartitions or GrowPartitions
// based on the sign. Grounded on rd_kafka_topic_partition_cnt_update's
// return contract.
func PartitionCountUpdate(t *Topic, newCount int32) int {
	t.rw.RLock()
	cur := t.partitionCount
	t.rw.RUnlock()

	switch {
	case newCount < cur:
		return -1
	case newCount == cur:
		return 0
	default:
		return 1
	}
}

// GrowPartitions extends the topic's dense partition array to newCount,
// allocating fresh Part entries, moving any matching desired-but-unseen
// partitions into place, and logging at debug or notice depending on
// whether this is the topic's first assignment (§4.4.2's log-level split,
// restored from original_source). Grounded on rd_kafka_topic_partitions_add.
func GrowPartitions(t *Topic, newCount int32) {
	t.rw.Lock()
	defer t.rw.Unlock()

	if newCount <= t.partitionCount {
		return
	}

	firstAssignment := t.partitionCount == 0
	grown := make([]*Part, newCount)
	copy(grown, t.parts)

	for id := t.partitionCount; id < newCount; id++ {
		if desired := t.DesiredGet(id); desired != nil {
			desired.lock.Lock()
			desired.flags &^= PartUnknown
			desired.lock.Unlock()
			t.removeDesired(desired)
			grown[id] = desired
			continue
		}
		grown[id] = newPart(t, id)
	}

	t.parts = grown
	t.partitionCount = newCount

	level := LogLevelNotice
	if firstAssignment {
		level = LogLevelDebug
	}
	t.client.cfg.Logger.Log(level, "partition count updated",
		"topic", t.name, "partitions", newCount)
}

// ShrinkPartitions retracts the topic's dense partition array to newCount,
// the other half of §4.4.2's step 5: every partition at an index being
// dropped is undelegated from its broker, its queued messages are moved to
// the UA slot rather than discarded, and if it was flagged DESIRED it is
// re-flagged UNKNOWN and reinserted into desiredUnseen so a later grow can
// pick it back up — otherwise the array's reference is released. Grounded
// on rd_kafka_topic_partition_cnt_update's shrink branch in
// rdkafka_topic.c.
func ShrinkPartitions(t *Topic, newCount int32) {
	t.rw.Lock()
	defer t.rw.Unlock()

	if newCount < 0 {
		newCount = 0
	}
	if newCount >= t.partitionCount {
		return
	}

	for id := newCount; id < t.partitionCount; id++ {
		p := t.parts[id]
		if p == nil {
			continue
		}

		p.BrokerDelegate(nil)

		p.lock.Lock()
		q := p.msgQueue
		p.msgQueue = msgQueue{}
		desired := p.flags&PartDesired != 0
		p.lock.Unlock()

		if q.len() > 0 {
			t.ua.lock.Lock()
			t.ua.msgQueue.concat(&q)
			t.ua.lock.Unlock()
		}

		if desired {
			// The reference the array held transfers to desiredUnseen;
			// no Keep/Release here, matching the "tie release to list
			// membership" rule DesiredDel also follows.
			p.lock.Lock()
			p.flags |= PartUnknown
			p.lock.Unlock()
			t.desiredUnseen = append(t.desiredUnseen, p)
		} else {
			p.Release() // the array's reference
		}
	}

	shrunk := make([]*Part, newCount)
	copy(shrunk, t.parts[:newCount])
	t.parts = shrunk
	t.partitionCount = newCount

	t.client.cfg.Logger.Log(LogLevelNotice, "partition count shrunk",
		"topic", t.name, "partitions", newCount)
}

// PartitionsRemove implements §4.4.3: undelegate every partition from its
// broker and drop the topic's array references, observing the
// double-release discipline (the array's reference and, where still
// delegated, the broker-list's reference). Any still-queued messages are
// moved into the UA slot before the partition is cut loose, preserving
// relative order across the cutover (P2). Grounded on
// rd_kafka_topic_partitions_remove.
func PartitionsRemove(t *Topic) {
	t.rw.Lock()
	defer t.rw.Unlock()

	for _, p := range t.parts {
		if p == nil {
			continue
		}

		p.BrokerDelegate(nil)

		p.lock.Lock()
		q := p.msgQueue
		p.msgQueue = msgQueue{}
		p.lock.Unlock()

		if q.len() > 0 {
			t.ua.lock.Lock()
			t.ua.msgQueue.concat(&q)
			t.ua.lock.Unlock()
		}

		p.Release() // the array's reference
	}

	t.parts = nil
	t.partitionCount = 0
}

// AssignUnassigned implements §4.4.4: drain the UA partition's queue,
// attempting to route each message to a concrete partition via the
// topic's partitioner. Messages that still cannot be routed are
// re-enqueued onto UA in their original relative order (failed messages
// are never silently dropped, and the order of both the routed and the
// still-unrouted subsequences is preserved). Grounded on
// rd_kafka_topic_assign_uas / rd_kafka_topic_partition_available-driven
// dispatch.
func AssignUnassigned(t *Topic) {
	t.rw.Lock()
	defer t.rw.Unlock()

	if t.ua == nil {
		return
	}

	t.ua.lock.Lock()
	pending := t.ua.msgQueue
	t.ua.msgQueue = msgQueue{}
	t.ua.lock.Unlock()

	msgs := pending.slice()
	if len(msgs) == 0 {
		return
	}

	partitioner := t.config.Partitioner
	var stillUnassigned msgQueue

	for _, msg := range msgs {
		id, ok := partitioner.Partition(t.name, msg.Key, t.partitionCount)
		if !ok {
			stillUnassigned.enq(msg)
			continue
		}

		target := t.parts[id]
		if target == nil {
			stillUnassigned.enq(msg)
			continue
		}

		target.lock.Lock()
		target.msgQueue.enq(msg)
		target.lock.Unlock()
	}

	if stillUnassigned.len() > 0 {
		t.ua.lock.Lock()
		t.ua.msgQueue.concat(&stillUnassigned)
		t.ua.lock.Unlock()
	}
}
