package kgo

import "math/rand"

// Partitioner selects a partition for a message. Modeled as an interface
// with a single method per §9's "Dynamic dispatch" design note, swappable
// the way franz-go's parts.partitioner and rd_kafka_msg_partitioner are.
//
// Partition returns the chosen partition id and true, or false if the
// message could not be partitioned right now (e.g. no writable partitions),
// matching rd_kafka_msg_partitioner's -1-on-failure contract and the
// §4.4.4 UA-drain "unavailable" case.
type Partitioner interface {
	Partition(topic string, key []byte, partitionCount int32) (int32, bool)
}

// randomPartitioner is the default, grounded on
// rd_kafka_msg_partitioner_random.
type randomPartitioner struct{}

// RandomPartitioner is the default partitioner used when a TopicConfig does
// not name one.
func RandomPartitioner() Partitioner { return randomPartitioner{} }

func (randomPartitioner) Partition(_ string, _ []byte, partitionCount int32) (int32, bool) {
	if partitionCount <= 0 {
		return 0, false
	}
	return rand.Int31n(partitionCount), true
}
