package email

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
)

var emailsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "password_reset_emails_total",
		Help: "Password reset emails by delivery status (sent, failed, dropped)",
	},
	[]string{"status"},
)

func init() {
	prometheus.MustRegister(emailsTotal)
}

// DeliveryResult describes the outcome of one queued email.
type DeliveryResult struct {
	Email string
	Err   error
}

// DispatcherConfig groups the queue and worker settings.
type DispatcherConfig struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
	// OnResult is called from a worker goroutine after every delivery attempt.
	OnResult func(DeliveryResult)
}

type resetJob struct {
	email    string
	resetURL string
}

// Dispatcher sends password reset emails from a bounded queue on a fixed pool of workers,
// so request handlers never wait on the mail transport.
type Dispatcher struct {
	emails   ports.EmailService
	queue    chan resetJob
	timeout  time.Duration
	onResult func(DeliveryResult)
	logger   *logrus.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.MailDispatcher = (*Dispatcher)(nil)

// NewDispatcher starts the worker pool; call Close to drain it.
func NewDispatcher(emails ports.EmailService, cfg DispatcherConfig, logger *logrus.Logger) *Dispatcher {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := &Dispatcher{
		emails:   emails,
		queue:    make(chan resetJob, queueSize),
		timeout:  timeout,
		onResult: cfg.OnResult,
		logger:   logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// EnqueuePasswordReset queues a reset email. It returns false without blocking
// when the queue is full or the dispatcher is closed.
func (d *Dispatcher) EnqueuePasswordReset(email, resetURL string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		emailsTotal.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case d.queue <- resetJob{email: email, resetURL: resetURL}:
		return true
	default:
		emailsTotal.WithLabelValues("dropped").Inc()
		if d.logger != nil {
			d.logger.WithField("to", email).Warn("mail dispatcher: queue full, password reset email dropped")
		}
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.queue {
		d.deliver(job)
	}
}

func (d *Dispatcher) deliver(job resetJob) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.send(ctx, job)
	if err != nil {
		emailsTotal.WithLabelValues("failed").Inc()
		if d.logger != nil {
			d.logger.WithField("to", job.email).WithError(err).Error("mail dispatcher: password reset email failed")
		}
	} else {
		emailsTotal.WithLabelValues("sent").Inc()
	}

	if d.onResult != nil {
		d.onResult(DeliveryResult{Email: job.email, Err: err})
	}
}

func (d *Dispatcher) send(ctx context.Context, job resetJob) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("email sender panicked: %v", r)
			}
		}()
		done <- d.emails.SendPasswordResetEmail(ctx, job.email, job.resetURL)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send timed out after %s: %w", d.timeout, ctx.Err())
	}
}

// Close stops accepting work and waits for queued emails to be sent or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail dispatcher drain: %w", ctx.Err())
	}
}
