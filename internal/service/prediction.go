package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cissero/platform/internal/docstore"
	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/guard"
	"github.com/cissero/platform/internal/infra"
	"github.com/cissero/platform/internal/lifecycle"
	"github.com/cissero/platform/internal/projection"
	"github.com/cissero/platform/internal/repository"
	"github.com/cissero/platform/internal/settlement"
	"github.com/google/uuid"
)

// ErrNotScheduled is the message returned when predicting on an event that is
// not open for predictions.
const ErrNotScheduled = "You can only place predictions on scheduled events"

// PredictionService places predictions and settles completed events. Balance
// debit and prediction append run under one mutex.
type PredictionService struct {
	mu          sync.Mutex
	engine      *lifecycle.Engine
	users       repository.UserRepository
	predictions repository.PredictionRepository
	docs        docstore.Store
	cache       projection.Store
	idem        *guard.IdempotencyGuard
	outbox      domain.Outbox
	metrics     *infra.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewPredictionService creates a PredictionService.
func NewPredictionService(
	engine *lifecycle.Engine,
	users repository.UserRepository,
	predictions repository.PredictionRepository,
	docs docstore.Store,
	cache projection.Store,
	idem *guard.IdempotencyGuard,
	outbox domain.Outbox,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *PredictionService {
	if outbox == nil {
		outbox = domain.DiscardOutbox{}
	}
	return &PredictionService{
		engine:      engine,
		users:       users,
		predictions: predictions,
		docs:        docs,
		cache:       cache,
		idem:        idem,
		outbox:      outbox,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// PlaceInput holds the fields of a prediction request.
type PlaceInput struct {
	EventID        string `json:"eventId"`
	ParticipantID  string `json:"participantId"`
	Amount         int64  `json:"amount"`
	IdempotencyKey string `json:"-"`
}

// PlaceResult is the stored prediction and the balance left after it.
type PlaceResult struct {
	Prediction domain.Prediction `json:"prediction"`
	Balance    int64             `json:"balance"`
}

// PlacePrediction debits amount from the user and records an active prediction.
func (s *PredictionService) PlacePrediction(ctx context.Context, user *domain.User, input PlaceInput) (*PlaceResult, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized("log in to place predictions")
	}
	if res := s.idem.Check(ctx, user.ID, input.IdempotencyKey); !res.Allowed {
		return nil, domain.ErrIdempotent(input.IdempotencyKey)
	}

	result, err := s.place(user.ID, input)
	if err != nil {
		s.idem.Release(user.ID, input.IdempotencyKey)
		return nil, err
	}

	s.syncUser(ctx, user.ID)
	s.outbox.Enqueue(domain.NewPredictionPlacedDraft(result.Prediction, result.Balance))
	s.metrics.PredictionPlaced(input.Amount)
	s.logger.Info("prediction placed",
		"prediction_id", result.Prediction.ID,
		"event_id", input.EventID,
		"user_id", user.ID,
		"amount", input.Amount,
	)
	return result, nil
}

func (s *PredictionService) place(userID string, input PlaceInput) (*PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.engine.Get(input.EventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.StatusScheduled {
		return nil, domain.ErrValidation(ErrNotScheduled)
	}
	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	user := s.users.FindByID(userID)
	if user == nil {
		return nil, domain.ErrNotFound("user", userID)
	}
	if user.Balance < input.Amount {
		return nil, domain.ErrInsufficientBalance()
	}
	if _, ok := event.Participant(input.ParticipantID); !ok {
		return nil, domain.ErrValidation("participant " + input.ParticipantID + " is not part of this event")
	}

	now := s.now().UTC()
	pred := domain.Prediction{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		UserID:        user.ID,
		ParticipantID: input.ParticipantID,
		Amount:        input.Amount,
		Timestamp:     now,
		Status:        domain.PredictionActive,
	}

	user.Balance -= input.Amount
	user.LastActive = now
	if err := s.users.Update(*user); err != nil {
		return nil, err
	}
	if err := s.predictions.Insert(pred); err != nil {
		user.Balance += input.Amount
		if rbErr := s.users.Update(*user); rbErr != nil {
			s.logger.Error("restore balance after failed insert", "user_id", user.ID, "error", rbErr)
		}
		return nil, err
	}

	return &PlaceResult{Prediction: pred, Balance: user.Balance}, nil
}

// UserPredictions returns a user's predictions, oldest first.
func (s *PredictionService) UserPredictions(userID string) []domain.Prediction {
	return s.predictions.ListByUser(userID)
}

// EventPredictions returns the predictions placed on one event.
func (s *PredictionService) EventPredictions(eventID string) ([]domain.Prediction, error) {
	if _, err := s.engine.Get(eventID); err != nil {
		return nil, err
	}
	return s.predictions.ListByEvent(eventID), nil
}

// Balance returns the cached balance projection of a user, rebuilding it on a miss.
func (s *PredictionService) Balance(ctx context.Context, userID string) (*projection.BalanceProjection, error) {
	cached, err := projection.GetBalance(ctx, s.cache, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, projection.ErrMiss) {
		s.logger.Warn("read balance projection", "user_id", userID, "error", err)
	}
	if s.users.FindByID(userID) == nil {
		return nil, domain.ErrNotFound("user", userID)
	}
	return s.refreshProjection(ctx, userID), nil
}

// SettleEvent pays out the predictions of a Completed event. An empty winnerID
// voids the event and refunds every stake; so does a winner nobody backed.
// Otherwise the pool is split among winning stakes in proportion to size,
// with the integer remainder going to the largest stake.
func (s *PredictionService) SettleEvent(ctx context.Context, eventID, winnerID string) (*domain.Settlement, error) {
	result, touched, err := s.settle(ctx, eventID, winnerID)
	if err != nil {
		return nil, err
	}

	for _, userID := range touched {
		s.syncUser(ctx, userID)
	}
	s.outbox.Enqueue(domain.NewSettlementDraft(*result))
	s.logger.Info("event settled",
		"event_id", eventID,
		"winner_id", winnerID,
		"pool", result.Pool,
		"winners", result.Winners,
		"refunded", result.Refunded,
	)
	return result, nil
}

func (s *PredictionService) settle(ctx context.Context, eventID, winnerID string) (*domain.Settlement, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.engine.Get(eventID)
	if err != nil {
		return nil, nil, err
	}
	if event.Status != domain.StatusCompleted {
		return nil, nil, domain.ErrInvalidTransition("settle", event.Status)
	}

	var active []domain.Prediction
	closed := 0
	for _, p := range s.predictions.ListByEvent(eventID) {
		if p.Status == domain.PredictionActive {
			active = append(active, p)
		} else {
			closed++
		}
	}
	if event.SettledAt != nil || (len(active) == 0 && closed > 0) {
		return nil, nil, domain.ErrConflict("event " + eventID + " is already settled")
	}

	if _, err := s.engine.RecordWinner(ctx, eventID, winnerID); err != nil {
		return nil, nil, err
	}

	settled, outcome := settlement.Parimutuel(active, winnerID)
	outcome.EventID = eventID
	outcome.WinnerID = winnerID
	for _, p := range settled {
		if err := s.predictions.Update(p); err != nil {
			return nil, nil, err
		}
	}

	credits := settlement.Credits(settled)
	touched := make([]string, 0, len(credits))
	for userID := range credits {
		touched = append(touched, userID)
	}
	sort.Strings(touched)
	for _, userID := range touched {
		user := s.users.FindByID(userID)
		if user == nil {
			s.logger.Error("settlement credit for unknown user", "user_id", userID, "event_id", eventID)
			continue
		}
		user.Balance += credits[userID]
		if err := s.users.Update(*user); err != nil {
			return nil, nil, err
		}
	}

	return &outcome, touched, nil
}

// syncUser mirrors the user profile to the document store and refreshes the
// cached balance. Failures are logged, not surfaced.
func (s *PredictionService) syncUser(ctx context.Context, userID string) {
	user := s.users.FindByID(userID)
	if user == nil {
		return
	}
	if err := s.docs.Set(ctx, docstore.CollectionUsers, user.ID, user); err != nil {
		s.logger.Warn("persist user profile", "user_id", user.ID, "error", err)
	}
	s.refreshProjection(ctx, userID)
}

func (s *PredictionService) refreshProjection(ctx context.Context, userID string) *projection.BalanceProjection {
	p := projection.BalanceProjection{UserID: userID}
	if user := s.users.FindByID(userID); user != nil {
		p.Balance = user.Balance
	}
	for _, pred := range s.predictions.ListByUser(userID) {
		if pred.Status == domain.PredictionActive {
			p.ActivePredictions++
			p.Staked += pred.Amount
		}
	}
	if err := projection.UpdateBalance(ctx, s.cache, p); err != nil {
		s.logger.Warn("refresh balance projection", "user_id", userID, "error", err)
	}
	return &p
}
