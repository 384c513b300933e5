package kgo

import "sync"

// Client is C4: the top-level registry owning all topics and the broker
// directory, matching rd_kafka_t's rk_topics list plus rk_brokers.
type Client struct {
	cfg *ClientConfig

	mu     sync.Mutex
	topics map[string]*Topic

	brokers  *BrokerDirectory
	querier  LeaderQuerier
	querierO sync.Once
}

// NewClient builds an empty registry. A nil LeaderQuerier is fine; NewTopic()
// then drives metadata refresh through a no-op, and callers are expected to
// call ApplyMetadata directly.
func NewClient(cfg *ClientConfig, querier LeaderQuerier) *Client {
	if cfg == nil {
		cfg = NewClientConfig()
	}
	return &Client{
		cfg:     cfg,
		topics:  make(map[string]*Topic),
		brokers: NewBrokerDirectory(),
		querier: querier,
	}
}

// Brokers returns the client's broker directory.
func (c *Client) Brokers() *BrokerDirectory { return c.brokers }

func (c *Client) leaderQuerier() LeaderQuerier {
	if c.querier == nil {
		return noopLeaderQuerier{}
	}
	return c.querier
}

// FindTopic looks up an existing topic by name, bumping its refcount on
// hit, or ErrTopicNotFound on miss. Grounded on rd_kafka_topic_find.
func (c *Client) FindTopic(name string) (*Topic, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.topics[name]
	if !ok {
		return nil, ErrTopicNotFound
	}
	t.Keep()
	return t, nil
}

// registerTopic inserts t if no topic of that name is already registered.
// Returns false if another goroutine won the race, matching the
// find-or-insert discipline rd_kafka_topic_new relies on to stay idempotent
// under concurrent creation.
func (c *Client) registerTopic(t *Topic) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.topics[t.name]; exists {
		return false
	}
	c.topics[t.name] = t
	return true
}

// unregisterTopic removes a topic from the registry. Grounded on
// rd_kafka_topic_destroy0's rkt_list removal.
func (c *Client) unregisterTopic(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics, name)
}

// Topics returns a snapshot of all registered topic names, for diagnostics
// and tests.
func (c *Client) Topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.topics))
	for name := range c.topics {
		names = append(names, name)
	}
	return names
}
