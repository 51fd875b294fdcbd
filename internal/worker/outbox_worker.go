package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cleanhive/internal/database"
	"cleanhive/internal/domain"
	"cleanhive/internal/metrics"
	"cleanhive/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskAnalyticsEvent = "analytics_event"
	TaskAuditWrite     = "audit_write"
	TaskSheetsAppend   = "sheets_append"
	TaskSheetsSchedule = "sheets_schedule"
	TaskSheetsMirror   = "sheets_mirror"
	TaskEmailSend      = "email_send"
)

type analyticsPayload struct {
	Event      string                 `json:"event"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type sheetsAppendPayload struct {
	Booking *models.Booking `json:"booking"`
}

type sheetsSchedulePayload struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type emailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// OutboxWorker drains the outbox table and applies tasks to their sinks:
// analytics endpoint, audit log, Google Sheets, transactional mail.
type OutboxWorker struct {
	db            *database.DB
	analytics     domain.AnalyticsTracker
	sheets        domain.SheetsWriter
	mailer        domain.Mailer
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.OutboxTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	slots         []string
	logger        *zerolog.Logger
}

// NewOutboxWorker builds a worker with sane defaults.
func NewOutboxWorker(
	db *database.DB,
	analytics domain.AnalyticsTracker,
	sheets domain.SheetsWriter,
	mailer domain.Mailer,
	redisClient *redis.Client,
	retry RetryPolicy,
	logger *zerolog.Logger,
) *OutboxWorker {
	defaults := DefaultRetryPolicy()
	if retry.MaxRetries == 0 {
		retry.MaxRetries = defaults.MaxRetries
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = defaults.InitialDelay
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = defaults.MaxDelay
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = defaults.BackoffFactor
	}

	return &OutboxWorker{
		db:            db,
		analytics:     analytics,
		sheets:        sheets,
		mailer:        mailer,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.OutboxTask, 128),
		redisQueueKey: "outbox:queue",
		deadLetterKey: "outbox:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		slots:         models.DefaultBookingRules().TimeSlots,
		logger:        logger,
	}
}

// EnqueueTask persists the task and schedules it via redis or in-memory queue.
func (w *OutboxWorker) EnqueueTask(ctx context.Context, taskType string, entityID int64, payload interface{}) error {
	if taskType == "" {
		return errors.New("task type is required")
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.OutboxTask{
		TaskType: taskType,
		EntityID: entityID,
		Payload:  string(payloadBytes),
		Status:   "pending",
	}

	if err := w.db.CreateOutboxTask(ctx, &task); err != nil {
		return fmt.Errorf("persist outbox task: %w", err)
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("outbox: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	// Fallback to in-memory queue if redis missing or failed.
	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("outbox: in-memory queue full, task left for polling")
	}

	return nil
}

// Start launches main loop; stops when ctx is done.
func (w *OutboxWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("outbox worker started")
	defer w.logger.Info().Msg("outbox worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingOutboxTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("outbox: fetch pending failed")
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *OutboxWorker) tryLocalQueue() (models.OutboxTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.OutboxTask{}, false
	}
}

func (w *OutboxWorker) tryRedis(ctx context.Context) (models.OutboxTask, bool) {
	if w.redis == nil {
		return models.OutboxTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.OutboxTask{}, false
		}
		w.logger.Error().Err(err).Msg("outbox: redis BRPOP error")
		return models.OutboxTask{}, false
	}
	if len(res) != 2 {
		return models.OutboxTask{}, false
	}
	var task models.OutboxTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("outbox: decode redis task failed")
		return models.OutboxTask{}, false
	}
	return task, true
}

func (w *OutboxWorker) processTask(ctx context.Context, task *models.OutboxTask) {
	// The same task can arrive from both the redis list and the db poll.
	// Recheck the stored status so a copy processed elsewhere is not re-run.
	if task.ID != 0 {
		fresh, err := w.db.GetOutboxTask(ctx, task.ID)
		if err != nil {
			w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("outbox: status recheck failed")
		} else {
			if fresh.Status != "pending" && fresh.Status != "retry" {
				return
			}
			task.RetryCount = fresh.RetryCount
		}
	}

	if err := w.handleTask(ctx, task); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncOutbox(task.TaskType, "completed")
	if err := w.db.UpdateOutboxTaskStatus(ctx, task.ID, "completed", "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("outbox: mark completed failed")
	}
}

func (w *OutboxWorker) handleTask(ctx context.Context, task *models.OutboxTask) error {
	switch task.TaskType {
	case TaskAnalyticsEvent:
		var p analyticsPayload
		if err := json.Unmarshal([]byte(task.Payload), &p); err != nil {
			return fmt.Errorf("decode analytics payload: %w", err)
		}
		if p.Event == "" {
			return errors.New("analytics event name missing")
		}
		return w.analytics.Track(ctx, p.Event, p.Properties)

	case TaskAuditWrite:
		var entry models.AuditEntry
		if err := json.Unmarshal([]byte(task.Payload), &entry); err != nil {
			return fmt.Errorf("decode audit payload: %w", err)
		}
		return w.db.InsertAuditEntry(ctx, &entry)

	case TaskSheetsAppend:
		if w.sheets == nil {
			return nil
		}
		var p sheetsAppendPayload
		if err := json.Unmarshal([]byte(task.Payload), &p); err != nil {
			return fmt.Errorf("decode sheets payload: %w", err)
		}
		if p.Booking == nil {
			return errors.New("booking payload missing")
		}
		return w.sheets.AppendBooking(ctx, p.Booking)

	case TaskSheetsSchedule:
		if w.sheets == nil {
			return nil
		}
		var p sheetsSchedulePayload
		if err := json.Unmarshal([]byte(task.Payload), &p); err != nil {
			return fmt.Errorf("decode schedule payload: %w", err)
		}
		daily, err := w.db.GetDailyBookings(ctx, p.Start, p.End)
		if err != nil {
			return fmt.Errorf("load daily bookings: %w", err)
		}
		return w.sheets.UpdateScheduleSheet(ctx, p.Start, p.End, daily, w.slots)

	case TaskSheetsMirror:
		if w.sheets == nil {
			return nil
		}
		var p sheetsSchedulePayload
		if err := json.Unmarshal([]byte(task.Payload), &p); err != nil {
			return fmt.Errorf("decode mirror payload: %w", err)
		}
		bookings, err := w.db.GetBookingsByDateRange(ctx, p.Start, p.End)
		if err != nil {
			return fmt.Errorf("load bookings: %w", err)
		}
		return w.sheets.ReplaceBookingsSheet(ctx, bookings)

	case TaskEmailSend:
		if w.mailer == nil {
			return nil
		}
		var p emailPayload
		if err := json.Unmarshal([]byte(task.Payload), &p); err != nil {
			return fmt.Errorf("decode email payload: %w", err)
		}
		if p.To == "" {
			return errors.New("email recipient missing")
		}
		return w.mailer.Send(ctx, p.To, p.Subject, p.HTML)

	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}

func (w *OutboxWorker) retryOrFail(ctx context.Context, task *models.OutboxTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		metrics.IncOutbox(task.TaskType, "failed")
		if err := w.db.UpdateOutboxTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("outbox: mark failed failed")
		}
		w.pushDeadLetter(ctx, task)
		return
	}

	metrics.IncOutbox(task.TaskType, "retry")
	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.db.UpdateOutboxTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("outbox: mark retry failed")
	}
}

func (w *OutboxWorker) pushRedis(ctx context.Context, task models.OutboxTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *OutboxWorker) pushDeadLetter(ctx context.Context, task *models.OutboxTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("outbox: encode deadletter failed")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("outbox: deadletter push failed")
	}
}
