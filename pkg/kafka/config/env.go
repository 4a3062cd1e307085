package kafka_config

const EnvKafkaBrokers = "KAFKA_BROKERS"

const (
	EnvKafkaProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaProducerRequireAcks  = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvKafkaProducerCompression  = "KAFKA_PRODUCER_COMPRESSION"
	EnvKafkaProducerAsync        = "KAFKA_PRODUCER_ASYNC"
)

const (
	EnvKafkaConsumerStartOffset       = "KAFKA_CONSUMER_START_OFFSET"
	EnvKafkaConsumerMinBytes          = "KAFKA_CONSUMER_MIN_BYTES"
	EnvKafkaConsumerMaxBytes          = "KAFKA_CONSUMER_MAX_BYTES"
	EnvKafkaConsumerMaxWait           = "KAFKA_CONSUMER_MAX_WAIT"
	EnvKafkaConsumerCommitInterval    = "KAFKA_CONSUMER_COMMIT_INTERVAL"
	EnvKafkaConsumerHeartbeatInterval = "KAFKA_CONSUMER_HEARTBEAT_INTERVAL"
	EnvKafkaConsumerSessionTimeout    = "KAFKA_CONSUMER_SESSION_TIMEOUT"
	EnvKafkaConsumerRebalanceTimeout  = "KAFKA_CONSUMER_REBALANCE_TIMEOUT"
	EnvKafkaConsumerMaxRetries        = "KAFKA_CONSUMER_MAX_RETRIES"
)

const EnvKafkaEnableMiddleware = "KAFKA_ENABLE_MIDDLEWARE"

const (
	EnvKafkaBookingsTopic      = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaBookingsDLQTopic   = "KAFKA_BOOKINGS_DLQ_TOPIC"
	EnvKafkaWorkspacesTopic    = "KAFKA_WORKSPACES_TOPIC"
	EnvKafkaWorkspacesDLQTopic = "KAFKA_WORKSPACES_DLQ_TOPIC"
	EnvKafkaNotifierGroupID    = "KAFKA_NOTIFIER_GROUP_ID"
)
