package common

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff - экспоненциальная задержка с джиттером: Base * 2^attempt, не более Max,
// результат в [d/2, d).
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

var (
	// ProducerBackoff - повторы отправки в Kafka
	ProducerBackoff = Backoff{Base: 100 * time.Millisecond, Max: 10 * time.Second}
	// ConsumerBackoff - переподключение consumer group после ошибки
	ConsumerBackoff = Backoff{Base: time.Second, Max: 30 * time.Second}
)

func (b Backoff) Next(attempt int) time.Duration {
	attempt = min(max(attempt, 0), 16)

	d := b.Base << attempt
	if d <= 0 || d > b.Max {
		d = b.Max
	}
	if d < 2 {
		return d
	}

	return d/2 + rand.N(d/2)
}

// SleepCtx ждёт d или отмены ctx
func SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PtrString превращает пустую строку в nil.
func PtrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
