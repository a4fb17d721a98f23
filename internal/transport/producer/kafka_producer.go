package producer

import (
	"calendarback/internal/application/common"
	"calendarback/internal/application/entity"
	"calendarback/pkg/broker"
	"calendarback/pkg/metrics"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// KafkaProducer публикует уведомления в общий топик, откуда их забирают хабы всех экземпляров.
type KafkaProducer struct {
	producer    sarama.SyncProducer
	topic       string
	health      healthChecker
	logger      *zap.SugaredLogger
	maxAttempts int
	m           *metrics.Metrics
	backoff     func(attempt int) time.Duration
}

func NewProducer(broker *broker.KafkaBroker, logger *zap.SugaredLogger, maxAttempts int, m *metrics.Metrics) *KafkaProducer {
	return newProducer(broker.SyncProducer, broker.Topic, broker, logger, maxAttempts, m)
}

func newProducer(sp sarama.SyncProducer, topic string, health healthChecker, logger *zap.SugaredLogger,
	maxAttempts int, m *metrics.Metrics) *KafkaProducer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &KafkaProducer{
		producer:    sp,
		topic:       topic,
		health:      health,
		logger:      logger,
		maxAttempts: maxAttempts,
		m:           m,
		backoff:     common.ProducerBackoff.Next,
	}
}

// HealthCheck проверяет доступность Kafka через broker
func (p *KafkaProducer) HealthCheck(ctx context.Context) error {
	if p.health == nil {
		return errors.New("kafka broker is not initialized")
	}
	return p.health.HealthCheck(ctx)
}

// Notify публикует уведомление, ключ сообщения - id записи.
func (p *KafkaProducer) Notify(ctx context.Context, n entity.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return p.ProduceMessage(ctx, strconv.FormatInt(n.EntryID, 10), payload)
}

func (p *KafkaProducer) ProduceMessage(ctx context.Context, key string, message []byte) error {
	topic := p.topic
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "canceled").Inc()
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic:     topic,
			Key:       sarama.StringEncoder(key),
			Value:     sarama.ByteEncoder(message),
			Timestamp: time.Now(),
		}

		t0 := time.Now()
		part, off, err := p.producer.SendMessage(msg)
		rt := time.Since(t0)

		res := "ok"
		if err != nil {
			res = "error"
		}
		p.m.Kafka.ProducerAttemptLatencySeconds.WithLabelValues(topic, res).Observe(rt.Seconds())

		if err == nil {
			p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "success").Inc()
			p.m.Kafka.ProducerSuccessAttempts.WithLabelValues(topic).Observe(float64(attempt))
			p.logger.Debugf("[entry: %s] sent topic=%s partition=%d offset=%d attempt=%d rt=%s",
				key, topic, part, off, attempt, rt)
			return nil
		}

		lastErr = err

		var kerr sarama.KError
		if errors.As(err, &kerr) && isPermanent(kerr) {
			p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "permanent").Inc()
			p.logger.Errorf("[entry: %s] permanent kafka error attempt=%d rt=%s kafka_error=%s code=%d",
				key, attempt, rt, kerr.Error(), int16(kerr))
			return fmt.Errorf("permanent kafka error: %w", kerr)
		}
		p.logger.Warnf("[entry: %s] retryable error attempt=%d rt=%s reason=%s err=%v",
			key, attempt, rt, ClassifyRetry(err), err)

		if attempt == p.maxAttempts {
			break
		}

		if err := common.SleepCtx(ctx, p.backoff(attempt-1)); err != nil {
			p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "canceled").Inc()
			return err
		}
	}

	p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "failed").Inc()
	p.logger.Errorf("[entry: %s] produce_failed after %d attempts: %v", key, p.maxAttempts, lastErr)
	return fmt.Errorf("produce failed after %d attempts: %w", p.maxAttempts, lastErr)
}

func isPermanent(k sarama.KError) bool {
	switch k {
	case sarama.ErrTopicAuthorizationFailed,
		sarama.ErrClusterAuthorizationFailed,
		sarama.ErrInvalidRequest,
		sarama.ErrInvalidMessage,
		sarama.ErrMessageSizeTooLarge,
		sarama.ErrSASLAuthenticationFailed:
		return true
	default:
		return false
	}
}

// ClassifyRetry - короткая причина ретрая для логов
func ClassifyRetry(err error) string {
	var k sarama.KError
	if errors.As(err, &k) {
		switch k {
		case sarama.ErrLeaderNotAvailable:
			return "leader_not_available"
		case sarama.ErrRequestTimedOut:
			return "broker_timeout"
		case sarama.ErrNotEnoughReplicas, sarama.ErrNotEnoughReplicasAfterAppend:
			return "not_enough_replicas"
		default:
			return k.Error()
		}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "net_timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "client_deadline"
	}
	return "other"
}
