// Package notify delivers user-facing notices about ledger, billing and
// settings outcomes.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Kind classifies a notice.
type Kind string

const (
	KindTransactionAdded         Kind = "transaction.added"
	KindTransactionRemoved       Kind = "transaction.removed"
	KindTransactionMarkedSuccess Kind = "transaction.marked_success"
	KindTransactionInvalidInput  Kind = "transaction.invalid_input"
	KindTransactionNotFound      Kind = "transaction.not_found"
	KindPersistenceFailure       Kind = "transaction.persistence_failure"
	KindPlanUpdated              Kind = "plan.updated"
	KindProfileUpdated           Kind = "profile.updated"
	KindPasswordUpdated          Kind = "password.updated"
)

// Level is the severity shown to the user.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a human-readable outcome of a user operation.
type Notice struct {
	Kind    Kind      `json:"kind"`
	Level   Level     `json:"level"`
	UserKey string    `json:"userKey"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// NewNotice stamps a notice with the current UTC time.
func NewNotice(kind Kind, level Level, userKey, message string) Notice {
	return Notice{Kind: kind, Level: level, UserKey: userKey, Message: message, At: time.Now().UTC()}
}

func (n Notice) toJSON() ([]byte, error) {
	return json.Marshal(n)
}

// Notifier publishes notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
	Close() error
}

// LogNotifier writes notices to a slog logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs through logger, or the default
// logger when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notice Notice) error {
	level := slog.LevelInfo
	if notice.Level == LevelError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, notice.Message,
		slog.String("notice_kind", string(notice.Kind)),
		slog.String("user_email", notice.UserKey),
		slog.Time("at", notice.At))
	return nil
}

func (n *LogNotifier) Close() error { return nil }

// Multi fans a notice out to several notifiers, joining their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, notice Notice) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, notice); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, n := range m {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = Multi(nil)
	_ Notifier = (*KafkaNotifier)(nil)
	_ Notifier = (*AMQPNotifier)(nil)
)
