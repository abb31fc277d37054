package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	models "writersuite/internal/domain/models/workspace"
)

const listenRetryDelay = 2 * time.Second

// Listen subscribes to the workspace channel on a dedicated pooled
// connection and forwards notifications to Events. It reconnects after
// connection errors until Close is called or ctx ends.
func (s *Store) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		listenLoop(ctx, s.logger, listenRetryDelay, s.listenOnce, s.emitter.Resync)
	}()

	s.logger.Info("listening for workspace events", "channel", s.tables.Channel)
	return nil
}

// listenLoop runs once until ctx ends, waiting retry after each failure.
// once calls subscribed when its LISTEN is in place. Notifications sent
// while no session was listening are lost, so every subscription after the
// first calls resubscribed.
func listenLoop(ctx context.Context, logger *slog.Logger, retry time.Duration, once func(ctx context.Context, subscribed func()) error, resubscribed func()) {
	first := true
	subscribed := func() {
		if first {
			first = false
			return
		}
		logger.Info("workspace listener resubscribed, requesting resync")
		resubscribed()
	}

	for {
		err := once(ctx, subscribed)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("workspace listener disconnected", "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

func (s *Store) listenOnce(ctx context.Context, subscribed func()) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.tables.Channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	subscribed()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// Leave the connection clean for the pool
				conn.Exec(context.Background(), "UNLISTEN *")
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		ev, err := decodeEvent(n.Payload)
		if err != nil {
			s.logger.Warn("malformed workspace event", "payload", n.Payload, "error", err)
			continue
		}
		s.emitter.Emit(ev)
	}
}

func decodeEvent(payload string) (models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return models.Event{}, err
	}
	switch ev.Op {
	case models.OpCreated, models.OpModified, models.OpDeleted:
	default:
		return models.Event{}, fmt.Errorf("unknown op %q", ev.Op)
	}
	ev.Path = models.CleanPath(ev.Path)
	return ev, nil
}
