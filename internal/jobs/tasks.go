package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/econ-bot/internal/domain"
)

const (
	TaskTypeLoanReminder = "loan:reminder"
	TaskTypeLoanSweep    = "loan:sweep"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Queues is the weighted queue set the worker consumes.
var Queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// LoanReminderPayload identifies the borrower to remind. Due only feeds the
// task ID; the claim itself checks the loan on file, so a stale task left by
// an earlier loan finds the newer one not yet due and skips it.
type LoanReminderPayload struct {
	UserID  string    `json:"user_id"`
	GuildID string    `json:"guild_id"`
	Due     time.Time `json:"due"`
}

// Key returns the profile key of the borrower.
func (p LoanReminderPayload) Key() domain.Key {
	return domain.Key{UserID: p.UserID, GuildID: p.GuildID}
}

// NewLoanReminderTask builds a task that fires at due. The task ID is derived
// from the loan so re-arming never enqueues a second copy.
func NewLoanReminderTask(key domain.Key, due time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(LoanReminderPayload{UserID: key.UserID, GuildID: key.GuildID, Due: due.UTC()})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeLoanReminder, payload,
		asynq.Queue(QueueDefault),
		asynq.TaskID(ReminderTaskID(key, due)),
		asynq.ProcessAt(due),
		asynq.MaxRetry(5),
	), nil
}

// NewLoanSweepTask builds the periodic overdue scan.
func NewLoanSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLoanSweep, nil, asynq.Queue(QueueLow), asynq.MaxRetry(0))
}

// ReminderTaskID is stable for one loan of one borrower.
func ReminderTaskID(key domain.Key, due time.Time) string {
	return fmt.Sprintf("loan-reminder:%s:%s:%d", key.GuildID, key.UserID, due.Unix())
}
