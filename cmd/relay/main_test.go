package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/nomino/pkg/broker"
	"github.com/dwikikusuma/nomino/pkg/config"
	"github.com/dwikikusuma/nomino/pkg/logger"
)

func TestNewPublisher(t *testing.T) {
	pub, err := newPublisher(config.Config{EventBroker: "none"})
	require.NoError(t, err)
	assert.IsType(t, broker.Nop{}, pub)

	pub, err = newPublisher(config.Config{EventBroker: "kafka", KafkaTopic: "order-events", KafkaBrokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	assert.IsType(t, &broker.Kafka{}, pub)
	assert.NoError(t, pub.Close())

	_, err = newPublisher(config.Config{EventBroker: "sqs"})
	assert.Error(t, err)
}

func TestRunReturnsSetupErrors(t *testing.T) {
	err := run(config.Config{EventBroker: "sqs"}, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event broker")
}
