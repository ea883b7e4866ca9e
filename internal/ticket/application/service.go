package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/storefront/internal/ticket/domain"
)

const maxCodeAttempts = 5

type Service struct {
	log   *slog.Logger
	repo  TicketRepository
	codes domain.CodeGenerator
	now   func() time.Time
}

func NewService(log *slog.Logger, repo TicketRepository) *Service {
	return &Service{
		log:   log,
		repo:  repo,
		codes: domain.GenerateCode,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithCodeGenerator swaps the code source. Used by tests to force collisions.
func (s *Service) WithCodeGenerator(g domain.CodeGenerator) *Service {
	s.codes = g
	return s
}

// Create persists a ticket for the given fulfilled lines, generating its id and
// code. A code collision is retried with a fresh code.
func (s *Service) Create(ctx context.Context, cartID, purchaser string, lines []domain.Line) (domain.Ticket, error) {
	if len(lines) == 0 {
		return domain.Ticket{}, domain.ErrNoLines
	}
	var lastErr error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		now := s.now()
		code, err := s.codes(now)
		if err != nil {
			return domain.Ticket{}, err
		}
		t, err := s.repo.Create(ctx, domain.NewTicket(uuid.NewString(), code, cartID, purchaser, lines, now))
		if err == nil {
			s.log.Info("ticket created", "ticket_id", t.ID, "code", t.Code, "cart_id", cartID, "amount", t.Amount.String())
			return t, nil
		}
		if !errors.Is(err, domain.ErrCodeCollision) {
			return domain.Ticket{}, err
		}
		s.log.Warn("ticket code collision, retrying", "code", code, "attempt", attempt)
		lastErr = err
	}
	return domain.Ticket{}, fmt.Errorf("after %d attempts: %w", maxCodeAttempts, lastErr)
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Ticket, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) ListByCart(ctx context.Context, cartID string) ([]domain.Ticket, error) {
	return s.repo.ListByCart(ctx, cartID)
}

func (s *Service) ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error) {
	return s.repo.ListByPurchaser(ctx, purchaser)
}
