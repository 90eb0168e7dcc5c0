package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/jobfeed/internal/notify"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settlement struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	settled []settlement
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled = append(a.settled, settlement{tag: tag, ack: true})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled = append(a.settled, settlement{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) byTag() map[uint64]settlement {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[uint64]settlement, len(a.settled))
	for _, s := range a.settled {
		out[s.tag] = s
	}
	return out
}

type fakeSource struct {
	deliveries chan amqp.Delivery
	prefetch   int
	qosErr     error
}

func (s *fakeSource) Qos(prefetchCount int) error {
	s.prefetch = prefetchCount
	return s.qosErr
}

func (s *fakeSource) Consume(string) (<-chan amqp.Delivery, error) {
	return s.deliveries, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail map[string]error
}

func (m *fakeMailer) Send(ctx context.Context, to string, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[to]; err != nil {
		return err
	}
	m.sent = append(m.sent, to+"|"+msg.Subject)
	return nil
}

func body(t *testing.T, n notify.Notification) []byte {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return b
}

func notification(to string, kind notify.Kind) notify.Notification {
	return notify.Notification{ID: "n-" + to, Kind: kind, To: to, JobID: "job-1", JobTitle: "Dev"}
}

func TestShouldRequeue(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable", NewRetryableError(errors.New("smtp down")), true},
		{"wrapped retryable", fmt.Errorf("send: %w", NewRetryableError(errors.New("x"))), true},
		{"invalid notification", fmt.Errorf("%w: bad", notify.ErrInvalidNotification), false},
		{"already retried", fmt.Errorf("%w: smtp down", ErrAlreadyRetried), false},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRequeue(tt.err))
		})
	}
}

func TestWorker_DeliversAndSettles(t *testing.T) {
	ack := &fakeAcknowledger{}
	source := &fakeSource{deliveries: make(chan amqp.Delivery, 8)}
	mailer := &fakeMailer{fail: map[string]error{
		"down@x.vn":  errors.New("connection refused"),
		"again@x.vn": errors.New("connection refused"),
	}}

	source.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body(t, notification("ok@x.vn", notify.KindApproved))}
	source.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("{not json")}
	source.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: body(t, notification("down@x.vn", notify.KindReceived))}
	source.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 4, Redelivered: true, Body: body(t, notification("again@x.vn", notify.KindRejected))}
	source.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 5, Body: body(t, notify.Notification{Kind: "bogus", To: "a@x.vn"})}

	w := NewWorker(&Config{Source: source, Mailer: mailer, Concurrency: 2, SendTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return len(ack.byTag()) == 5 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	w.Stop()

	got := ack.byTag()
	assert.Equal(t, settlement{tag: 1, ack: true}, got[1])
	assert.Equal(t, settlement{tag: 2}, got[2])
	assert.Equal(t, settlement{tag: 3, requeue: true}, got[3])
	assert.Equal(t, settlement{tag: 4}, got[4])
	assert.Equal(t, settlement{tag: 5}, got[5])

	assert.Equal(t, []string{"ok@x.vn|Tin tuyển dụng của bạn đã được duyệt"}, mailer.sent)
	assert.Equal(t, 2, source.prefetch)
}

func TestWorker_StartReturnsWhenDeliveriesClose(t *testing.T) {
	source := &fakeSource{deliveries: make(chan amqp.Delivery)}
	close(source.deliveries)

	w := NewWorker(&Config{Source: source, Mailer: &fakeMailer{}})
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestWorker_QosFailure(t *testing.T) {
	source := &fakeSource{qosErr: errors.New("channel closed")}
	w := NewWorker(&Config{Source: source, Mailer: &fakeMailer{}})

	err := w.Start(context.Background())
	assert.ErrorContains(t, err, "failed to set QoS")
}

func TestProcess_RedeliveredFailureIsFinal(t *testing.T) {
	mailer := &fakeMailer{fail: map[string]error{"a@x.vn": errors.New("timeout")}}
	w := NewWorker(&Config{Source: &fakeSource{}, Mailer: mailer})
	n := notification("a@x.vn", notify.KindApproved)

	err := w.process(context.Background(), n, false)
	var retryable *RetryableError
	assert.True(t, errors.As(err, &retryable))

	err = w.process(context.Background(), n, true)
	assert.ErrorIs(t, err, ErrAlreadyRetried)
	assert.False(t, shouldRequeue(err))
}
