package listener

import (
	use_cases "calendarback/internal/application/use-cases"
	"calendarback/pkg/metrics"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaBrokerConsumer пересылает уведомления из топика в локальный хаб.
type KafkaBrokerConsumer struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
	m       *metrics.Metrics
}

func NewKafkaBrokerConsumer(usecase use_cases.UseCaser, logger *zap.SugaredLogger, m *metrics.Metrics) *KafkaBrokerConsumer {
	return &KafkaBrokerConsumer{
		logger:  logger,
		usecase: usecase,
		m:       m,
	}
}

func (k *KafkaBrokerConsumer) Setup(session sarama.ConsumerGroupSession) error {
	k.logger.Infof("Kafka setup success, member %s", session.MemberID())
	k.m.Kafka.ConsumerRebalancesTotal.WithLabelValues("setup").Inc()
	return nil
}

func (k *KafkaBrokerConsumer) Cleanup(session sarama.ConsumerGroupSession) error {
	k.logger.Info("Kafka cleanup success")
	k.m.Kafka.ConsumerRebalancesTotal.WithLabelValues("cleanup").Inc()
	return nil
}

// ConsumeClaim: битое сообщение логируется и помечается прочитанным, повторно его не читаем.
func (k *KafkaBrokerConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	topic := claim.Topic()

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			k.handle(session, topic, msg)
		case <-session.Context().Done():
			return nil
		}
	}
}

func (k *KafkaBrokerConsumer) handle(session sarama.ConsumerGroupSession, topic string, msg *sarama.ConsumerMessage) {
	k.m.Kafka.ConsumerInFlight.WithLabelValues(topic).Inc()
	defer k.m.Kafka.ConsumerInFlight.WithLabelValues(topic).Dec()

	start := time.Now()
	k.logger.Debugf("Message topic:%q partition:%d offset:%d value:%s", msg.Topic, msg.Partition, msg.Offset, msg.Value)

	result := "ok"
	if err := k.usecase.ConsumerMessage(session.Context(), msg.Value, msg.Timestamp); err != nil {
		result = "error"
		k.logger.Errorf("[offset: %d] relay failed: %v", msg.Offset, err)
	}

	k.m.Kafka.ConsumerMessagesTotal.WithLabelValues(topic, result).Inc()
	k.m.Kafka.ConsumerProcessDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())

	session.MarkMessage(msg, "")
}
