package kgo

import (
	"github.com/twmb/franz-go/pkg/kmsg"
)

// ApplyMetadata ingests a decoded MetadataResponse and drives every
// topology operation it implies for the named topic: broker directory
// population, partition count growth, leader delegation per partition, and
// unassigned-queue drainage once new partitions exist to receive messages.
// Grounded on fetchTopicMetadata / the merge step in
// kirilldd2-franz-go/metadata.go, adapted from topicPartitionsData onto
// this core's Topic/Part model. The client never decodes the wire format
// itself in this core (no broker connection, per §1); callers hand in an
// already-decoded *kmsg.MetadataResponse obtained however they reach the
// cluster.
func ApplyMetadata(client *Client, resp *kmsg.MetadataResponse) {
	for i := range resp.Brokers {
		b := resp.Brokers[i]
		if _, ok := client.brokers.FindByNodeID(b.NodeID); !ok {
			client.brokers.Add(NewBroker(b.NodeID, b.Host))
		}
	}

	for i := range resp.Topics {
		topicMeta := resp.Topics[i]
		if topicMeta.Topic == nil {
			continue
		}
		name := *topicMeta.Topic

		t, err := client.FindTopic(name)
		if err != nil {
			continue // metadata for a topic nobody asked about; ignore
		}

		applyTopicMetadata(client, t, topicMeta)
		t.Release()
	}
}

func applyTopicMetadata(client *Client, t *Topic, topicMeta kmsg.MetadataResponseTopic) {
	if topicMeta.ErrorCode != 0 {
		client.cfg.Logger.Log(LogLevelWarn, "topic metadata error",
			"topic", t.Name(), "error_code", topicMeta.ErrorCode)
		return
	}

	newCount := int32(len(topicMeta.Partitions))

	switch PartitionCountUpdate(t, newCount) {
	case 1:
		GrowPartitions(t, newCount)
	case -1:
		ShrinkPartitions(t, newCount)
	}

	for _, partMeta := range topicMeta.Partitions {
		if partMeta.ErrorCode != 0 {
			continue
		}

		p, err := t.FindPartition(partMeta.Partition)
		if err != nil {
			inconsistent := &InconsistentStateError{
				Topic:       t.Name(),
				PartitionID: partMeta.Partition,
				NodeID:      partMeta.Leader,
				ReqID:       newReqID(),
			}
			client.cfg.Logger.Log(LogLevelNotice, inconsistent.Error())
			continue
		}

		if partMeta.Leader < 0 {
			UpdateLeader(t, p, nil)
		} else if broker, err := client.brokers.Find(partMeta.Leader); err == nil {
			UpdateLeader(t, p, broker)
		} else {
			client.cfg.Logger.Log(LogLevelNotice, "broker lookup failed for partition leader",
				"topic", t.Name(), "partition", partMeta.Partition, "broker", partMeta.Leader, "err", err)
			UpdateLeader(t, p, nil)
		}
		p.Release()
	}

	AssignUnassigned(t)
}
