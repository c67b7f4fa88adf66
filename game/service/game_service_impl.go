package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
)

const tracerName = "github.com/wricardo/mcp-training/connectfour/game/service"

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionRegistry
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithTracerProvider replaces the global tracer provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *gameServiceImpl) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *gameServiceImpl) {
		s.now = now
	}
}

// NewGameService creates a new game service instance. A nil logger disables logging.
func NewGameService(sessions SessionRegistry, logger *zap.Logger, opts ...Option) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &gameServiceImpl{
		sessions: sessions,
		logger:   logger.Named("service"),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestNewGame opens a game waiting for an opponent
func (s *gameServiceImpl) RequestNewGame(ctx context.Context, key string, player engine.PlayerID) (*Snapshot, error) {
	key = strings.TrimSpace(key)
	ctx, span := s.tracer.Start(ctx, "GameService.RequestNewGame", trace.WithAttributes(
		attribute.String("game.key", key),
		attribute.String("game.player", string(player)),
	))
	defer span.End()

	if player == "" {
		return nil, s.fail(ctx, span, "new game rejected", engine.ErrEmptyPlayer)
	}

	snap, err := s.sessions.CreateWaiting(key, player)
	if err != nil {
		return nil, s.fail(ctx, span, "new game rejected", fmt.Errorf("failed to create game: %w", err))
	}

	span.SetAttributes(attribute.String("game.key", snap.Key))
	s.log(ctx).Info("game created",
		zap.String("game", snap.Key),
		zap.String("player", string(player)))
	return snap, nil
}

// JoinGame binds the second player and starts the game
func (s *gameServiceImpl) JoinGame(ctx context.Context, key string, player engine.PlayerID) (*Snapshot, error) {
	key = strings.TrimSpace(key)
	ctx, span := s.tracer.Start(ctx, "GameService.JoinGame", trace.WithAttributes(
		attribute.String("game.key", key),
		attribute.String("game.player", string(player)),
	))
	defer span.End()

	if player == "" {
		return nil, s.fail(ctx, span, "join rejected", engine.ErrEmptyPlayer)
	}

	snap, err := s.sessions.BindOpponent(key, player)
	if err != nil {
		return nil, s.fail(ctx, span, "join rejected", fmt.Errorf("failed to join game: %w", err))
	}

	s.log(ctx).Info("game started",
		zap.String("game", snap.Key),
		zap.String("player_a", string(snap.PlayerA)),
		zap.String("player_b", string(snap.PlayerB)))
	return snap, nil
}

// SubmitMove drops a token for a player. Rejected moves are reported through
// the outcome, not as errors. The terminal outcome is returned exactly once,
// after which the session no longer exists.
func (s *gameServiceImpl) SubmitMove(ctx context.Context, key string, player engine.PlayerID, column int) (*MoveResult, error) {
	key = strings.TrimSpace(key)
	ctx, span := s.tracer.Start(ctx, "GameService.SubmitMove", trace.WithAttributes(
		attribute.String("game.key", key),
		attribute.String("game.player", string(player)),
		attribute.Int("game.column", column),
	))
	defer span.End()

	var result *MoveResult
	err := s.sessions.WithSession(key, func(sess *Session) error {
		if sess.Game == nil {
			return ErrGameNotStarted
		}

		sess.Touch(s.now())
		outcome := sess.Game.AttemptMove(player, column)
		if outcome.IsTerminal() {
			sess.Finish(outcome)
			if err := s.sessions.Remove(sess.Key); err != nil {
				return fmt.Errorf("failed to remove finished game: %w", err)
			}
		}

		snap := NewSnapshot(sess)
		result = &MoveResult{
			Outcome:  outcome,
			Terminal: outcome.IsTerminal(),
			Message:  describeOutcome(outcome, player, column, snap.Winner),
			Snapshot: snap,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, "move failed", fmt.Errorf("failed to submit move: %w", err))
	}

	span.SetAttributes(attribute.String("game.outcome", result.Outcome.String()))

	fields := []zap.Field{
		zap.String("game", result.Snapshot.Key),
		zap.String("player", string(player)),
		zap.Int("column", column),
		zap.Stringer("outcome", result.Outcome),
	}
	switch {
	case result.Terminal:
		s.log(ctx).Info("game finished", fields...)
	case result.Outcome.IsRejection():
		s.log(ctx).Debug("move rejected", fields...)
	default:
		s.log(ctx).Debug("move accepted", fields...)
	}

	return result, nil
}

// GetSnapshot returns the current view of a game
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, key string) (*Snapshot, error) {
	key = strings.TrimSpace(key)
	ctx, span := s.tracer.Start(ctx, "GameService.GetSnapshot", trace.WithAttributes(
		attribute.String("game.key", key),
	))
	defer span.End()

	snap, err := s.sessions.Lookup(key)
	if err != nil {
		return nil, s.fail(ctx, span, "snapshot failed", err)
	}
	return snap, nil
}

// ListGames returns every live game, oldest first
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*Snapshot, error) {
	_, span := s.tracer.Start(ctx, "GameService.ListGames")
	defer span.End()

	sessions := s.sessions.List()
	result := make([]*Snapshot, 0, len(sessions))

	for _, sess := range sessions {
		snap, err := s.sessions.Lookup(sess.Key)
		if errors.Is(err, ErrUnknownSession) {
			// finished or abandoned since List
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}

	span.SetAttributes(attribute.Int("game.count", len(result)))
	return result, nil
}

// AbandonGame removes a game without a result
func (s *gameServiceImpl) AbandonGame(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	ctx, span := s.tracer.Start(ctx, "GameService.AbandonGame", trace.WithAttributes(
		attribute.String("game.key", key),
	))
	defer span.End()

	if err := s.sessions.Remove(key); err != nil {
		return s.fail(ctx, span, "abandon failed", err)
	}

	s.log(ctx).Info("game abandoned", zap.String("game", key))
	return nil
}

// Dispatch routes an inbound event to the matching operation
func (s *gameServiceImpl) Dispatch(ctx context.Context, event Event) (*Reply, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	reply := &Reply{Kind: event.Kind}
	switch event.Kind {
	case EventNewGame:
		snap, err := s.RequestNewGame(ctx, event.Key, event.Player)
		if err != nil {
			return nil, err
		}
		reply.Snapshot = snap
	case EventJoin:
		snap, err := s.JoinGame(ctx, event.Key, event.Player)
		if err != nil {
			return nil, err
		}
		reply.Snapshot = snap
	case EventMove:
		result, err := s.SubmitMove(ctx, event.Key, event.Player, event.Column)
		if err != nil {
			return nil, err
		}
		reply.Move = result
		reply.Snapshot = result.Snapshot
	}

	return reply, nil
}

// fail records err on the span and logs it. Caller errors are logged at debug.
func (s *gameServiceImpl) fail(ctx context.Context, span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log(ctx).Debug(msg, zap.Error(err))
	return err
}

// log returns the service logger annotated with the active trace
func (s *gameServiceImpl) log(ctx context.Context) *zap.Logger {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return s.logger.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()))
	}
	return s.logger
}
