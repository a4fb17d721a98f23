package broker

import (
	"calendarback/pkg/config"
	"context"
	"strings"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, splitBrokers(" k1:9092, ,k2:9092 "))
	assert.Empty(t, splitBrokers(""))
}

func TestInstanceGroupID(t *testing.T) {
	a, err := instanceGroupID("calendar-hub")
	require.NoError(t, err)
	b, err := instanceGroupID("calendar-hub")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "calendar-hub-"))
	assert.NotEqual(t, a, b)
}

func TestConfigs(t *testing.T) {
	conf := config.Kafka{User: "svc", Password: "secret"}

	c := consumerConfig(conf)
	assert.Equal(t, sarama.OffsetNewest, c.Consumer.Offsets.Initial)
	assert.True(t, c.Net.SASL.Enable)
	assert.Equal(t, "svc", c.Net.SASL.User)
	require.NoError(t, c.Validate())

	p := producerConfig(config.Kafka{})
	assert.False(t, p.Net.SASL.Enable)
	assert.True(t, p.Producer.Return.Successes)
	assert.Zero(t, p.Producer.Retry.Max)
	require.NoError(t, p.Validate())
}

func TestNewKafkaBroker_NoBrokers(t *testing.T) {
	_, err := NewKafkaBroker(config.Kafka{Brokers: " , "}, nil)
	assert.Error(t, err)
}

func TestHealthCheck_NotInitialized(t *testing.T) {
	kb := &KafkaBroker{}
	assert.Error(t, kb.HealthCheck(context.Background()))
}
