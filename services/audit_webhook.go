package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/yeremiapane/camarero-fulfillment/metrics"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

const auditCircuit = "audit-webhook"

type auditEnvelope struct {
	Type   string       `json:"type"`
	SentAt time.Time    `json:"sent_at"`
	Data   models.Event `json:"data"`
}

// AuditWebhook forwards fulfillment events to an external HTTP endpoint from a
// background worker. Events are dropped when the queue is full or the
// endpoint's circuit is open.
type AuditWebhook struct {
	URL      string
	StopChan chan struct{}

	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	queue   chan models.Event
	done    chan struct{}
}

func NewAuditWebhook(url string, timeout time.Duration, queueSize int) *AuditWebhook {
	if queueSize <= 0 {
		queueSize = 256
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        auditCircuit,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(state)
			utils.InfoLogger.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(auditCircuit).Set(0)

	return &AuditWebhook{
		URL:      url,
		StopChan: make(chan struct{}),
		client:   resty.New().SetTimeout(timeout).SetRetryCount(0),
		breaker:  breaker,
		queue:    make(chan models.Event, queueSize),
		done:     make(chan struct{}),
	}
}

func (w *AuditWebhook) Publish(_ context.Context, event models.Event) {
	select {
	case w.queue <- event:
	default:
		metrics.WebhookEvents.WithLabelValues("dropped").Inc()
		utils.ErrorLogger.WithField("event", event.Type()).Error("Audit webhook queue full, event dropped")
	}
}

func (w *AuditWebhook) Start() {
	go func() {
		defer close(w.done)
		for {
			select {
			case event := <-w.queue:
				w.deliver(event)
			case <-w.StopChan:
				w.drain()
				return
			}
		}
	}()
}

// Stop flushes what is already queued and waits for the worker to exit.
func (w *AuditWebhook) Stop() {
	close(w.StopChan)
	<-w.done
}

func (w *AuditWebhook) drain() {
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		default:
			return
		}
	}
}

func (w *AuditWebhook) deliver(event models.Event) {
	_, err := w.breaker.Execute(func() (interface{}, error) {
		resp, err := w.client.R().
			SetHeader("Content-Type", "application/json").
			SetBody(auditEnvelope{Type: event.Type(), SentAt: time.Now(), Data: event}).
			Post(w.URL)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("audit webhook responded %d", resp.StatusCode())
		}
		return nil, nil
	})
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("failed").Inc()
		utils.ErrorLogger.WithError(err).WithField("event", event.Type()).Error("Audit webhook delivery failed")
		return
	}
	metrics.WebhookEvents.WithLabelValues("delivered").Inc()
}
