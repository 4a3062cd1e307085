package kafka_config

import "time"

const DefaultKafkaBrokers = "localhost:9092"

const (
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)

// Booking events are low volume; the notifier starts from the newest offset
// and retries a failed email three times before dead-lettering it.
const (
	DefaultConsumerStartOffset       = -1
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 1 << 20
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 30 * time.Second
	DefaultConsumerMaxRetries        = 3
)

const DefaultEnableMiddleware = true

const (
	DefaultBookingsTopic      = "bookings.events"
	DefaultBookingsDLQTopic   = "bookings.events.dlq"
	DefaultWorkspacesTopic    = "workspaces.events"
	DefaultWorkspacesDLQTopic = "workspaces.events.dlq"
	DefaultNotifierGroupID    = "bookmyworkspace-notifier"
)
