package kgo

// TopicConfig is immutable after Topic construction, matching §3's "Topic"
// data model. Ownership transfers to the Topic on New, mirroring
// rd_kafka_topic_conf_t's transfer in rd_kafka_topic_new (the caller
// relinquishes ownership on success).
type TopicConfig struct {
	Partitioner          Partitioner
	MessageTimeoutMillis int
	RequestTimeoutMillis int
}

// TopicOpt configures a TopicConfig, in the style of franz-go's kgo.Opt
// functional options.
type TopicOpt func(*TopicConfig)

// WithPartitioner overrides the default random partitioner.
func WithPartitioner(p Partitioner) TopicOpt {
	return func(c *TopicConfig) { c.Partitioner = p }
}

// WithMessageTimeoutMillis sets message_timeout_ms; must be positive.
func WithMessageTimeoutMillis(ms int) TopicOpt {
	return func(c *TopicConfig) { c.MessageTimeoutMillis = ms }
}

// WithRequestTimeoutMillis sets request_timeout_ms; must be positive.
func WithRequestTimeoutMillis(ms int) TopicOpt {
	return func(c *TopicConfig) { c.RequestTimeoutMillis = ms }
}

// NewTopicConfig builds a TopicConfig from options, defaulting the
// partitioner to random if the caller did not provide one — matching
// rd_kafka_topic_new's "Default partitioner: random" step. Timeouts default
// to zero, which NewTopic() then rejects as invalid, so callers must set them.
func NewTopicConfig(opts ...TopicOpt) *TopicConfig {
	c := &TopicConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.Partitioner == nil {
		c.Partitioner = RandomPartitioner()
	}
	return c
}

// clone duplicates the config so the caller's copy and the topic's copy
// never alias, matching rd_kafka_topic_new's conf duplication note in §4.3.
func (c *TopicConfig) clone() *TopicConfig {
	cp := *c
	return &cp
}

// ClientConfig configures a Client (C4's owning container).
type ClientConfig struct {
	Logger Logger
}

// ClientOpt configures a ClientConfig.
type ClientOpt func(*ClientConfig)

// WithLogger sets the client's logging sink.
func WithLogger(l Logger) ClientOpt {
	return func(c *ClientConfig) { c.Logger = l }
}

// NewClientConfig builds a ClientConfig, defaulting to NopLogger.
func NewClientConfig(opts ...ClientOpt) *ClientConfig {
	c := &ClientConfig{Logger: NopLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
