package store

import (
	"context"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/telemetry"
	"github.com/objectiveSquid/Chat-site/pkg/metrics"
	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// instrumentedStore decorates a Store with per-operation latency metrics
// and tracing spans.
type instrumentedStore struct {
	next      Store
	storeType string
	m         metrics.StoreMetrics
}

var _ Store = (*instrumentedStore)(nil)

// Instrument wraps st so every operation is traced and, when m is non-nil,
// timed and reported through m. storeType tags each span with the backend
// name. Returns st unchanged when m is nil and tracing is off, so
// unobserved deployments pay nothing.
func Instrument(st Store, storeType string, m metrics.StoreMetrics) Store {
	if m == nil && !telemetry.IsEnabled() {
		return st
	}
	return &instrumentedStore{next: st, storeType: storeType, m: m}
}

// begin opens the operation span and returns the context to run it under
// plus the completion callback recording outcome and latency.
func (s *instrumentedStore) begin(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	spanCtx, span := telemetry.StartStoreSpan(ctx, operation, telemetry.StoreType(s.storeType))
	return spanCtx, func(err error) {
		if err != nil {
			telemetry.RecordError(spanCtx, err)
		}
		span.End()
		if s.m != nil {
			s.m.ObserveOperation(operation, time.Since(start), err)
		}
	}
}

func (s *instrumentedStore) EnsureTables(ctx context.Context) error {
	ctx, done := s.begin(ctx, "EnsureTables")
	err := s.next.EnsureTables(ctx)
	done(err)
	return err
}

func (s *instrumentedStore) AddUser(ctx context.Context, username string) (string, models.AddUserResult, error) {
	ctx, done := s.begin(ctx, "AddUser")
	token, result, err := s.next.AddUser(ctx, username)
	done(err)
	return token, result, err
}

func (s *instrumentedStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	ctx, done := s.begin(ctx, "GetUser")
	user, err := s.next.GetUser(ctx, username)
	done(err)
	return user, err
}

func (s *instrumentedStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	ctx, done := s.begin(ctx, "ListUsers")
	users, err := s.next.ListUsers(ctx)
	done(err)
	return users, err
}

func (s *instrumentedStore) DeleteUser(ctx context.Context, username string) error {
	ctx, done := s.begin(ctx, "DeleteUser")
	err := s.next.DeleteUser(ctx, username)
	done(err)
	return err
}

func (s *instrumentedStore) CheckToken(ctx context.Context, token string) (string, bool, error) {
	ctx, done := s.begin(ctx, "CheckToken")
	username, ok, err := s.next.CheckToken(ctx, token)
	done(err)
	return username, ok, err
}

func (s *instrumentedStore) CheckUserExists(ctx context.Context, username string) (bool, error) {
	ctx, done := s.begin(ctx, "CheckUserExists")
	exists, err := s.next.CheckUserExists(ctx, username)
	done(err)
	return exists, err
}

func (s *instrumentedStore) AllRelations(ctx context.Context, username string) ([]*models.Relation, error) {
	ctx, done := s.begin(ctx, "AllRelations")
	relations, err := s.next.AllRelations(ctx, username)
	done(err)
	return relations, err
}

func (s *instrumentedStore) GetRelation(ctx context.Context, first, secondary string) (*models.Relation, error) {
	ctx, done := s.begin(ctx, "GetRelation")
	relation, err := s.next.GetRelation(ctx, first, secondary)
	done(err)
	return relation, err
}

func (s *instrumentedStore) AddFriend(ctx context.Context, from, to string) (bool, error) {
	ctx, done := s.begin(ctx, "AddFriend")
	ok, err := s.next.AddFriend(ctx, from, to)
	done(err)
	return ok, err
}

func (s *instrumentedStore) RemoveFriend(ctx context.Context, from, to string) (bool, error) {
	ctx, done := s.begin(ctx, "RemoveFriend")
	ok, err := s.next.RemoveFriend(ctx, from, to)
	done(err)
	return ok, err
}

func (s *instrumentedStore) AddMessage(ctx context.Context, sender, receiver, content string) (*models.Message, error) {
	ctx, done := s.begin(ctx, "AddMessage")
	message, err := s.next.AddMessage(ctx, sender, receiver, content)
	done(err)
	return message, err
}

func (s *instrumentedStore) MessagesBetween(ctx context.Context, a, b string, since time.Time) ([]*models.Message, error) {
	ctx, done := s.begin(ctx, "MessagesBetween")
	messages, err := s.next.MessagesBetween(ctx, a, b, since)
	done(err)
	return messages, err
}

func (s *instrumentedStore) Healthcheck(ctx context.Context) error {
	ctx, done := s.begin(ctx, "Healthcheck")
	err := s.next.Healthcheck(ctx)
	done(err)
	return err
}

func (s *instrumentedStore) Close() error {
	_, done := s.begin(context.Background(), "Close")
	err := s.next.Close()
	done(err)
	return err
}
