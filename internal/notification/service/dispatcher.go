package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/smallbiznis/partnerledger/internal/clock"
	"github.com/smallbiznis/partnerledger/internal/config"
	notificationdomain "github.com/smallbiznis/partnerledger/internal/notification/domain"
	"github.com/smallbiznis/partnerledger/internal/notification/email"
	obsmetrics "github.com/smallbiznis/partnerledger/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const sendTimeout = 30 * time.Second

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Config  config.Config
	Sender  email.Provider
	Repo    notificationdomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// Dispatcher delivers commission emails on a fixed pool of workers fed by a
// bounded queue. Enqueue never blocks; a full queue drops the message.
type Dispatcher struct {
	log     *zap.Logger
	clock   clock.Clock
	sender  email.Provider
	repo    notificationdomain.Repository
	metrics *obsmetrics.Metrics
	workers int

	queue chan notificationdomain.Message
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func NewDispatcher(p Params) *Dispatcher {
	workers := p.Config.Notification.Workers
	if workers <= 0 {
		workers = 1
	}
	size := p.Config.Notification.QueueSize
	if size <= 0 {
		size = 64
	}

	return &Dispatcher{
		log:     p.Log.Named("notification.dispatcher"),
		clock:   p.Clock,
		sender:  p.Sender,
		repo:    p.Repo,
		metrics: p.Metrics,
		workers: workers,
		queue:   make(chan notificationdomain.Message, size),
	}
}

func (d *Dispatcher) Enqueue(ctx context.Context, msg notificationdomain.Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.log.Warn("dispatcher stopped, notification dropped", zap.String("message_id", msg.ID))
		d.metrics.RecordNotification(ctx, "dropped")
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.log.Warn("notification queue full, notification dropped",
			zap.String("message_id", msg.ID),
			zap.String("commission_id", msg.CommissionID.String()),
		)
		d.metrics.RecordNotification(ctx, "dropped")
		return false
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

// Stop closes the queue and waits for queued messages to drain or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
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
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg notificationdomain.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	log := d.log.With(
		zap.String("message_id", msg.ID),
		zap.String("commission_id", msg.CommissionID.String()),
		zap.String("booking_id", msg.Payload.BookingID),
	)

	status := notificationdomain.DeliverySent
	var sendErr error
	body, err := renderBody(msg.Payload)
	if err == nil {
		err = d.sender.Send(ctx, msg.To, msg.Subject, body)
	}
	if err != nil {
		status = notificationdomain.DeliveryFailed
		sendErr = err
		log.Error("commission notification failed", zap.Error(err))
	} else {
		log.Info("commission notification sent")
	}
	d.metrics.RecordNotification(ctx, status)

	d.record(ctx, log, msg, status, sendErr)
}

func (d *Dispatcher) record(ctx context.Context, log *zap.Logger, msg notificationdomain.Message, status string, sendErr error) {
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		log.Warn("encode notification payload", zap.Error(err))
		payload = []byte("{}")
	}

	record := &notificationdomain.DeliveryRecord{
		ID:           msg.ID,
		CommissionID: msg.CommissionID,
		PartnerID:    msg.PartnerID,
		Recipient:    msg.To,
		Subject:      msg.Subject,
		Payload:      datatypes.JSON(payload),
		Status:       status,
		CreatedAt:    d.clock.Now(),
	}
	if sendErr != nil {
		text := sendErr.Error()
		record.Error = &text
	}

	if err := d.repo.Insert(ctx, record); err != nil {
		log.Warn("record notification delivery", zap.Error(err))
	}
}
