package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/pennyplan/pennyplan/internal/event_bus"
	"github.com/pennyplan/pennyplan/internal/utils"
	"github.com/pennyplan/pennyplan/pkg/budget"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
	"github.com/pennyplan/pennyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrNonPositiveAmount = errors.New("expense amount must be greater than zero")
var ErrUnknownSubItem = errors.New("sub-item does not belong to the item")

type Service interface {
	// Record appends expense rows for the item and re-derives its spent total.
	// With multiple sub-items selected the amount is split proportionally to
	// their budgeted amounts (equally when those sum to zero). It returns the
	// item with its authoritative spent after the recomputation.
	Record(ctx context.Context, itemId int, amount float64, subItemIds []int) (budget_item.BudgetItem, error)
	ListForItem(ctx context.Context, itemId int) ([]Expense, error)
}

type ServiceImpl struct {
	repo     Repository
	items    budget_item.Repository
	budgets  budget.BudgetService
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, items budget_item.Repository, budgets budget.BudgetService, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		items:    items,
		budgets:  budgets,
		eventBus: eventBus,
		clock:    clock,
	}
}

func (s *ServiceImpl) Record(ctx context.Context, itemId int, amount float64, subItemIds []int) (budget_item.BudgetItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return budget_item.BudgetItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if amount <= 0 {
		return budget_item.BudgetItem{}, ErrNonPositiveAmount
	}

	current, err := s.budgets.Current(ctx)
	if err != nil {
		return budget_item.BudgetItem{}, err
	}
	if !current.Exists {
		return budget_item.BudgetItem{}, budget.ErrNoCurrentBudget
	}

	recordedAt := s.clock.Now()
	if len(subItemIds) == 0 {
		_, err = s.repo.Append(ctx, userId, Expense{ItemId: itemId, Amount: amount, RecordedAt: recordedAt})
		if err != nil {
			log.Errorf("failed to record expense of %.2f on item %d: %v", amount, itemId, err)
			return budget_item.BudgetItem{}, err
		}
	} else {
		selected, err := s.selectSubItems(ctx, userId, itemId, subItemIds)
		if err != nil {
			return budget_item.BudgetItem{}, err
		}
		weights := make([]float64, len(selected))
		for i, sub := range selected {
			weights[i] = sub.Amount
		}
		shares := splitProportionally(amount, weights)
		for i, sub := range selected {
			subId := sub.Id
			_, err = s.repo.Append(ctx, userId, Expense{
				ItemId:     itemId,
				SubItemId:  &subId,
				Amount:     shares[i],
				RecordedAt: recordedAt,
			})
			if err != nil {
				log.Errorf("failed to record expense share of %.2f on sub-item %d: %v", shares[i], subId, err)
				return budget_item.BudgetItem{}, err
			}
		}
	}

	// The database owns spent; re-derive it from the full set of expense rows
	// instead of trusting any locally accumulated value.
	if _, err := s.items.RecalculateSpent(ctx, userId, itemId); err != nil {
		return budget_item.BudgetItem{}, err
	}

	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, "expense.recorded", event_bus.ExpenseRecorded{
		BudgetItemId: itemId,
		Amount:       amount,
		SubItemIds:   subItemIds,
		RecordedAt:   recordedAt,
	})); err != nil {
		log.Errorf("failed to publish expense recorded event: %v", err)
	}

	return s.items.GetItem(ctx, userId, itemId)
}

func (s *ServiceImpl) ListForItem(ctx context.Context, itemId int) ([]Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListForItem(ctx, userId, itemId)
}

// selectSubItems resolves the requested sub-item ids against the item's actual
// sub-items, preserving the requested order.
func (s *ServiceImpl) selectSubItems(ctx context.Context, userId int, itemId int, subItemIds []int) ([]budget_item.SubBudgetItem, error) {
	subItems, err := s.items.GetSubItems(ctx, userId, itemId)
	if err != nil {
		return nil, err
	}
	byId := make(map[int]budget_item.SubBudgetItem, len(subItems))
	for _, sub := range subItems {
		byId[sub.Id] = sub
	}

	selected := make([]budget_item.SubBudgetItem, 0, len(subItemIds))
	for _, id := range subItemIds {
		sub, ok := byId[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSubItem, id)
		}
		selected = append(selected, sub)
	}
	return selected, nil
}
