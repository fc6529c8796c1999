package income

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pennyplan/pennyplan/internal/utils"
	"github.com/pennyplan/pennyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyName = errors.New("name must not be empty")
var ErrNonPositiveAmount = errors.New("income amount must be greater than zero")
var ErrEntryNotFound = errors.New("income entry not found")

type Service interface {
	Create(ctx context.Context, entry IncomeEntry) (IncomeEntry, error)
	GetAll(ctx context.Context) ([]IncomeEntry, error)
	Delete(ctx context.Context, entryId int) (bool, error)
	// Total sums all income entries; used to suggest a budget amount.
	Total(ctx context.Context) (float64, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, entry IncomeEntry) (IncomeEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return IncomeEntry{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(entry.Name) == "" {
		return IncomeEntry{}, ErrEmptyName
	}
	if entry.Amount <= 0 {
		return IncomeEntry{}, ErrNonPositiveAmount
	}
	if entry.ReceivedAt.IsZero() {
		entry.ReceivedAt = s.clock.Now()
	}

	id, err := s.repo.Store(ctx, userId, entry)
	if err != nil {
		return IncomeEntry{}, err
	}
	entry.Id = id
	return entry, nil
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]IncomeEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Delete(ctx context.Context, entryId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, userId, entryId)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("income entry not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", entryId, userId)
		return false, ErrEntryNotFound
	}
	return true, nil
}

func (s *ServiceImpl) Total(ctx context.Context) (float64, error) {
	entries, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, e := range entries {
		total += e.Amount
	}
	return total, nil
}
