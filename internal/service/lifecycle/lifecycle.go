package lifecycle

import (
	"context"

	"github.com/roadrescue/dispatch/internal/domain/request"
	"github.com/roadrescue/dispatch/internal/store"
	"github.com/roadrescue/dispatch/pkg/logger"
)

// Service drives a request through its status lifecycle. Terminal states
// (completed, cancelled) reject further transitions. Outside strict mode
// any non-terminal request may move to any valid status, which matches
// how callers have historically used the API; strict mode enforces the
// pending → assigned → in_progress → completed adjacency graph and is
// intended for new deployments and tests.
type Service struct {
	store  store.Store
	logger *logger.Logger
	strict bool
}

// NewService creates a new lifecycle service
func NewService(store store.Store, logger *logger.Logger, strict bool) *Service {
	return &Service{
		store:  store,
		logger: logger,
		strict: strict,
	}
}

// Transition moves a request to newStatus. A non-nil mechanicID overwrites
// the current assignment (manual dispatch); nil preserves it. Entering
// completed stamps CompletedAt exactly once; re-entering a terminal state
// is a conflict. The terminal check here runs on a read snapshot; the
// store repeats it atomically with the write, so racing transitions get
// exactly one winner.
func (s *Service) Transition(ctx context.Context, id int, newStatus request.Status, mechanicID *int) (*request.ServiceRequest, error) {
	if !newStatus.IsValid() {
		return nil, request.ErrInvalidStatus
	}

	current, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Status.IsTerminal() {
		if current.Status == request.StatusCompleted && newStatus == request.StatusCompleted {
			return nil, request.ErrAlreadyCompleted
		}
		return nil, request.ErrAlreadyTerminal
	}

	if s.strict && !request.CanTransition(current.Status, newStatus) {
		return nil, request.ErrIllegalTransition
	}

	updated, err := s.store.UpdateRequestStatus(ctx, id, newStatus, mechanicID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Request status changed",
		logger.Int("request_id", id),
		logger.String("from", string(current.Status)),
		logger.String("to", string(newStatus)),
	)

	return updated, nil
}
