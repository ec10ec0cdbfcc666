package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification channels filled by the triggers in migrations/.
const (
	TasksChannel = "tasks_changed"
	GoalsChannel = "goals_changed"
)

// ListenConn is a dedicated connection able to receive notifications. *pgx.Conn satisfies it.
type ListenConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
}

type goalSubscription struct {
	agentName string
	onUpdate  func(*models.Goal)
}

// Listener turns database change notifications into full-snapshot pushes.
// Subscribers receive the current snapshot on subscribe and a fresh one after every change.
// Callbacks run on the listener goroutine and must not subscribe from inside the callback.
type Listener struct {
	log     *slog.Logger
	tasks   TaskRepoIface
	goals   GoalRepoIface
	metrics *metrics.Metrics

	// deliverMu serializes snapshot loads with their delivery so that no subscriber
	// observes an older snapshot after a newer one.
	deliverMu sync.Mutex

	mu       sync.Mutex
	nextID   int
	taskSubs map[int]func([]models.Task)
	goalSubs map[int]goalSubscription

	connected atomic.Bool
}

func NewListener(log *slog.Logger, tasks TaskRepoIface, goals GoalRepoIface, metrics *metrics.Metrics) *Listener {
	return &Listener{
		log:      log,
		tasks:    tasks,
		goals:    goals,
		metrics:  metrics,
		taskSubs: make(map[int]func([]models.Task)),
		goalSubs: make(map[int]goalSubscription),
	}
}

// Connected reports whether the listener currently holds a listening connection.
func (l *Listener) Connected() bool {
	return l.connected.Load()
}

// SubscribeTasks delivers the full task set now and on every change until unsubscribed.
func (l *Listener) SubscribeTasks(ctx context.Context, onUpdate func([]models.Task)) (func(), error) {
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()

	tasks, err := l.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial task snapshot: %w", err)
	}
	onUpdate(tasks)

	l.mu.Lock()
	subID := l.nextID
	l.nextID++
	l.taskSubs[subID] = onUpdate
	l.mu.Unlock()
	l.gauge("tasks", 1)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.taskSubs, subID)
			l.mu.Unlock()
			l.gauge("tasks", -1)
		})
	}, nil
}

// SubscribeGoal delivers the goal of agentName (nil when absent) now and on every change.
func (l *Listener) SubscribeGoal(ctx context.Context, agentName string, onUpdate func(*models.Goal)) (func(), error) {
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()

	goal, err := l.goals.GetGoal(ctx, agentName)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial goal snapshot: %w", err)
	}
	onUpdate(goal)

	l.mu.Lock()
	subID := l.nextID
	l.nextID++
	l.goalSubs[subID] = goalSubscription{agentName: agentName, onUpdate: onUpdate}
	l.mu.Unlock()
	l.gauge("goals", 1)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.goalSubs, subID)
			l.mu.Unlock()
			l.gauge("goals", -1)
		})
	}, nil
}

// Run listens on conn until ctx is done or the connection fails.
// Subscribers are resynchronized first since changes may have been missed while disconnected.
func (l *Listener) Run(ctx context.Context, conn ListenConn) error {
	log := sl.Op(l.log, "listener", "Listener.Run")

	for _, channel := range []string{TasksChannel, GoalsChannel} {
		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			return fmt.Errorf("failed to listen on '%s': %w", channel, err)
		}
	}
	l.connected.Store(true)
	defer l.connected.Store(false)

	log.InfoContext(ctx, "Listening for changes")
	l.resync(ctx)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.InfoContext(ctx, "Listener shutting down.")
				return nil
			}
			return fmt.Errorf("failed to wait for notification: %w", err)
		}
		l.handle(ctx, notification)
	}
}

// Start keeps a listening connection from pool alive, reconnecting after retryDelay.
func (l *Listener) Start(ctx context.Context, pool *pgxpool.Pool, retryDelay time.Duration) error {
	log := sl.Op(l.log, "listener", "Listener.Start")

	for {
		err := l.runPooled(ctx, pool)
		if ctx.Err() != nil {
			return nil
		}
		log.WarnContext(ctx, "Listener disconnected, retrying...", "delay", retryDelay.String(), sl.Err(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retryDelay):
		}
	}
}

func (l *Listener) runPooled(ctx context.Context, pool *pgxpool.Pool) error {
	pooled, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	// a LISTENing connection must never go back to the pool
	conn := pooled.Hijack()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	return l.Run(ctx, conn)
}

func (l *Listener) handle(ctx context.Context, notification *pgconn.Notification) {
	if l.metrics != nil {
		l.metrics.Notifications.WithLabelValues(notification.Channel).Inc()
	}

	switch notification.Channel {
	case TasksChannel:
		l.publishTasks(ctx)
	case GoalsChannel:
		l.publishGoal(ctx, notification.Payload)
	default:
		l.log.DebugContext(ctx, "Ignoring notification", "channel", notification.Channel)
	}
}

func (l *Listener) resync(ctx context.Context) {
	l.publishTasks(ctx)

	l.mu.Lock()
	agents := make(map[string]struct{}, len(l.goalSubs))
	for _, sub := range l.goalSubs {
		agents[sub.agentName] = struct{}{}
	}
	l.mu.Unlock()

	for agentName := range agents {
		l.publishGoal(ctx, agentName)
	}
}

func (l *Listener) publishTasks(ctx context.Context) {
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()

	l.mu.Lock()
	subs := make([]func([]models.Task), 0, len(l.taskSubs))
	for _, fn := range l.taskSubs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	tasks, err := l.tasks.ListTasks(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.log.ErrorContext(ctx, "Failed to reload tasks after change", sl.Err(err))
		}
		return
	}
	for _, fn := range subs {
		fn(tasks)
	}
}

func (l *Listener) publishGoal(ctx context.Context, agentName string) {
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()

	l.mu.Lock()
	subs := make([]func(*models.Goal), 0)
	for _, sub := range l.goalSubs {
		if sub.agentName == agentName {
			subs = append(subs, sub.onUpdate)
		}
	}
	l.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	goal, err := l.goals.GetGoal(ctx, agentName)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.log.ErrorContext(ctx, "Failed to reload goal after change", "agent", agentName, sl.Err(err))
		}
		return
	}
	for _, fn := range subs {
		fn(goal)
	}
}

func (l *Listener) gauge(stream string, delta float64) {
	if l.metrics != nil {
		l.metrics.ActiveSubscriptions.WithLabelValues(stream).Add(delta)
	}
}
