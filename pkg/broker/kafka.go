package broker

import (
	"calendarback/pkg/config"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type KafkaBroker struct {
	Topic         string
	GroupID       string
	ConsumerGroup sarama.ConsumerGroup
	SyncProducer  sarama.SyncProducer
	Brokers       []string
	conf          config.Kafka
	logger        *zap.SugaredLogger
}

func NewKafkaBroker(conf config.Kafka, logger *zap.SugaredLogger) (*KafkaBroker, error) {
	brokers := splitBrokers(conf.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("broker.kafka.brokers is empty")
	}

	groupID, err := instanceGroupID(conf.Group)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Создание consumer group %s для brokers: %s", groupID, conf.Brokers)
	consumerGroup, err := newConsumerGroup(brokers, groupID, conf)
	if err != nil {
		logger.Errorf("Ошибка создания consumer group: %v", err)
		return nil, err
	}
	logger.Infof("Consumer group создан успешно")

	logger.Debugf("Создание producer для brokers: %s", conf.Brokers)
	syncProducer, err := newSyncProducer(brokers, conf)
	if err != nil {
		logger.Errorf("Ошибка создания producer: %v", err)
		_ = consumerGroup.Close()
		return nil, err
	}
	logger.Infof("Producer создан успешно")

	broker := &KafkaBroker{
		Topic:         conf.Topic,
		GroupID:       groupID,
		ConsumerGroup: consumerGroup,
		SyncProducer:  syncProducer,
		Brokers:       brokers,
		conf:          conf,
		logger:        logger,
	}
	logger.Infof("KafkaBroker создан. Topic: %s, group: %s", broker.Topic, broker.GroupID)
	return broker, nil
}

// instanceGroupID - у каждого экземпляра своя группа: уведомление из топика
// должен получить хаб каждого экземпляра, а не один из них.
func instanceGroupID(base string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("generate consumer group id: %w", err)
	}
	return fmt.Sprintf("%s-%s", base, id), nil
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// HealthCheck проверяет, что producer и consumer group созданы и брокеры отвечают.
// client.Partitions() не используется: для него нужны права Describe в ACL.
func (kb *KafkaBroker) HealthCheck(ctx context.Context) error {
	if kb.SyncProducer == nil {
		return errors.New("kafka producer is not initialized")
	}
	if kb.ConsumerGroup == nil {
		return errors.New("kafka consumer group is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// минимальный клиент: только подключение к брокерам
	cfg := sarama.NewConfig()
	cfg.Net.DialTimeout = 2 * time.Second
	cfg.Net.ReadTimeout = 2 * time.Second
	cfg.Net.WriteTimeout = 2 * time.Second
	cfg.Metadata.Timeout = 2 * time.Second
	cfg.Metadata.Retry.Max = 1
	applySASLConfig(cfg, kb.conf)

	client, err := sarama.NewClient(kb.Brokers, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka brokers: %w", err)
	}
	defer client.Close()

	if len(client.Brokers()) == 0 {
		return errors.New("no kafka brokers available")
	}
	return nil
}

// Close закрывает consumer group и producer.
func (kb *KafkaBroker) Close() error {
	var errs []error
	if kb.ConsumerGroup != nil {
		errs = append(errs, kb.ConsumerGroup.Close())
	}
	if kb.SyncProducer != nil {
		errs = append(errs, kb.SyncProducer.Close())
	}
	return errors.Join(errs...)
}

// applySASLConfig включает SASL/PLAIN, если заданы логин и пароль
func applySASLConfig(cfg *sarama.Config, conf config.Kafka) {
	if conf.User == "" || conf.Password == "" {
		return
	}
	cfg.Net.SASL.Enable = true
	cfg.Net.SASL.User = conf.User
	cfg.Net.SASL.Password = conf.Password
	cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
}

func EnableSaramaZapLogs(base *zap.SugaredLogger) {
	logger := base.Named("sarama")
	sarama.Logger = &zapSarama{logger}
	logger.Debug("Sarama logger initialized")
}

type zapSarama struct{ l *zap.SugaredLogger }

func (z *zapSarama) Print(v ...interface{})                 { z.l.Debug(v...) }
func (z *zapSarama) Printf(format string, v ...interface{}) { z.l.Debugf(format, v...) }
func (z *zapSarama) Println(v ...interface{})               { z.l.Debug(v...) }

func consumerConfig(conf config.Kafka) *sarama.Config {
	kafkaConfig := sarama.NewConfig()
	// новому экземпляру старые уведомления не нужны
	kafkaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	kafkaConfig.Consumer.Return.Errors = false
	applySASLConfig(kafkaConfig, conf)
	return kafkaConfig
}

func producerConfig(conf config.Kafka) *sarama.Config {
	kafkaConfig := sarama.NewConfig()

	kafkaConfig.Net.DialTimeout = 10 * time.Second
	kafkaConfig.Net.ReadTimeout = 15 * time.Second
	kafkaConfig.Net.WriteTimeout = 15 * time.Second
	kafkaConfig.Net.KeepAlive = 30 * time.Second

	kafkaConfig.Metadata.Timeout = 10 * time.Second
	kafkaConfig.Metadata.Retry.Max = 1
	kafkaConfig.Metadata.Retry.Backoff = 1 * time.Second
	kafkaConfig.Metadata.RefreshFrequency = 1 * time.Minute

	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Return.Successes = true
	kafkaConfig.Producer.Return.Errors = true
	// ретраи делает сам producer, с backoff и классификацией ошибок
	kafkaConfig.Producer.Retry.Max = 0
	kafkaConfig.Producer.Timeout = 10 * time.Second
	kafkaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	applySASLConfig(kafkaConfig, conf)
	return kafkaConfig
}

func newConsumerGroup(brokers []string, groupID string, conf config.Kafka) (sarama.ConsumerGroup, error) {
	consumer, err := sarama.NewConsumerGroup(brokers, groupID, consumerConfig(conf))
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании Kafka Consumer Group: %w", err)
	}
	return consumer, nil
}

func newSyncProducer(brokers []string, conf config.Kafka) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(brokers, producerConfig(conf))
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании Kafka Sync Producer: %w", err)
	}
	return producer, nil
}
