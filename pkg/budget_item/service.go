package budget_item

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pennyplan/pennyplan/internal/event_bus"
	"github.com/pennyplan/pennyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyName = errors.New("name must not be empty")
var ErrNonPositiveAmount = errors.New("amount must be greater than zero")
var ErrSubItemsExceedParent = errors.New("sub-item amounts exceed the parent allocation")

type Service interface {
	CreateItem(ctx context.Context, item BudgetItem) (BudgetItem, error)
	GetItem(ctx context.Context, itemId int) (BudgetItem, error)
	GetItems(ctx context.Context, budgetId int) ([]BudgetItem, error)
	UpdateItem(ctx context.Context, item BudgetItem) (BudgetItem, error)
	SetDeadline(ctx context.Context, itemId int, deadline *time.Time) error
	MarkContinuous(ctx context.Context, itemId int, continuous bool) (BudgetItem, error)
	MarkRecurring(ctx context.Context, itemId int, recurring bool) (BudgetItem, error)
	DeleteItem(ctx context.Context, itemId int) (bool, error)
	CreateSubItem(ctx context.Context, subItem SubBudgetItem) (SubBudgetItem, error)
	UpdateSubItem(ctx context.Context, subItem SubBudgetItem) (SubBudgetItem, error)
	DeleteSubItem(ctx context.Context, itemId int, subItemId int) (bool, error)
	RefreshSpent(ctx context.Context, itemId int) (float64, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

// publishMutation announces a successful item or sub-item write so that cached
// item collections (the budget snapshot in particular) get refreshed.
func (s *ServiceImpl) publishMutation(ctx context.Context, itemId int, action string) {
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, "item.mutated", event_bus.ItemMutated{
		BudgetItemId: itemId,
		Action:       action,
	})); err != nil {
		log.Errorf("failed to publish item mutated event for item %d: %v", itemId, err)
	}
}

func (s *ServiceImpl) CreateItem(ctx context.Context, item BudgetItem) (BudgetItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return BudgetItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(item.Name) == "" {
		return BudgetItem{}, ErrEmptyName
	}
	if item.Amount <= 0 {
		return BudgetItem{}, ErrNonPositiveAmount
	}

	// New categories start untracked regardless of what the caller sent.
	item.Spent = 0
	if item.Continuous && item.Recurring {
		item.SetContinuous(true)
	}

	id, err := s.repo.StoreItem(ctx, userId, item)
	if err != nil {
		return BudgetItem{}, err
	}
	item.Id = id
	s.publishMutation(ctx, item.Id, "created")
	return item, nil
}

func (s *ServiceImpl) GetItem(ctx context.Context, itemId int) (BudgetItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return BudgetItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetItem(ctx, userId, itemId)
}

func (s *ServiceImpl) GetItems(ctx context.Context, budgetId int) ([]BudgetItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetItems(ctx, userId, budgetId)
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, item BudgetItem) (BudgetItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return BudgetItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(item.Name) == "" {
		return BudgetItem{}, ErrEmptyName
	}
	if item.Amount <= 0 {
		return BudgetItem{}, ErrNonPositiveAmount
	}

	// The new amount must still cover the existing sub-item allocations.
	current, err := s.repo.GetItem(ctx, userId, item.Id)
	if err != nil {
		return BudgetItem{}, err
	}
	var subTotal float64
	for _, sub := range current.SubItems {
		subTotal += sub.Amount
	}
	if subTotal > item.Amount {
		return BudgetItem{}, ErrSubItemsExceedParent
	}

	updated, err := s.repo.UpdateItem(ctx, userId, item)
	if err != nil {
		return BudgetItem{}, err
	}
	if !updated {
		log.Warnf("item not updated, probably because it does not exist (%d) or the user (%d) is not the owner", item.Id, userId)
		return BudgetItem{}, ErrItemNotFound
	}
	s.publishMutation(ctx, item.Id, "updated")
	return s.repo.GetItem(ctx, userId, item.Id)
}

func (s *ServiceImpl) SetDeadline(ctx context.Context, itemId int, deadline *time.Time) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	updated, err := s.repo.UpdateItemDeadline(ctx, userId, itemId, deadline)
	if err != nil {
		return err
	}
	if !updated {
		return ErrItemNotFound
	}
	s.publishMutation(ctx, itemId, "updated")
	return nil
}

// MarkContinuous toggles the continuous flag. The mutual exclusivity with the
// recurring flag is enforced here, in one place, through the item setters.
func (s *ServiceImpl) MarkContinuous(ctx context.Context, itemId int, continuous bool) (BudgetItem, error) {
	return s.setFlags(ctx, itemId, func(item *BudgetItem) { item.SetContinuous(continuous) })
}

// MarkRecurring toggles the recurring flag, forcing continuous off when enabled.
func (s *ServiceImpl) MarkRecurring(ctx context.Context, itemId int, recurring bool) (BudgetItem, error) {
	return s.setFlags(ctx, itemId, func(item *BudgetItem) { item.SetRecurring(recurring) })
}

func (s *ServiceImpl) setFlags(ctx context.Context, itemId int, apply func(*BudgetItem)) (BudgetItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return BudgetItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	item, err := s.repo.GetItem(ctx, userId, itemId)
	if err != nil {
		return BudgetItem{}, err
	}
	apply(&item)
	updated, err := s.repo.UpdateItemFlags(ctx, userId, itemId, item.Continuous, item.Recurring)
	if err != nil {
		return BudgetItem{}, err
	}
	if !updated {
		return BudgetItem{}, ErrItemNotFound
	}
	s.publishMutation(ctx, itemId, "updated")
	return item, nil
}

func (s *ServiceImpl) DeleteItem(ctx context.Context, itemId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.DeleteItem(ctx, userId, itemId)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("item not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", itemId, userId)
		return false, ErrItemNotFound
	}
	s.publishMutation(ctx, itemId, "deleted")
	return true, nil
}

func (s *ServiceImpl) CreateSubItem(ctx context.Context, subItem SubBudgetItem) (SubBudgetItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SubBudgetItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(subItem.Name) == "" {
		return SubBudgetItem{}, ErrEmptyName
	}
	if subItem.Amount <= 0 {
		return SubBudgetItem{}, ErrNonPositiveAmount
	}

	parent, err := s.repo.GetItem(ctx, userId, subItem.ItemId)
	if err != nil {
		return SubBudgetItem{}, err
	}
	if err := validateSubItemTotal(parent, subItem, 0); err != nil {
		return SubBudgetItem{}, err
	}

	id, err := s.repo.StoreSubItem(ctx, userId, subItem)
	if err != nil {
		return SubBudgetItem{}, err
	}
	subItem.Id = id
	s.publishMutation(ctx, subItem.ItemId, "updated")
	return subItem, nil
}

func (s *ServiceImpl) UpdateSubItem(ctx context.Context, subItem SubBudgetItem) (SubBudgetItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SubBudgetItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(subItem.Name) == "" {
		return SubBudgetItem{}, ErrEmptyName
	}
	if subItem.Amount <= 0 {
		return SubBudgetItem{}, ErrNonPositiveAmount
	}

	parent, err := s.repo.GetItem(ctx, userId, subItem.ItemId)
	if err != nil {
		return SubBudgetItem{}, err
	}
	if err := validateSubItemTotal(parent, subItem, subItem.Id); err != nil {
		return SubBudgetItem{}, err
	}

	updated, err := s.repo.UpdateSubItem(ctx, userId, subItem)
	if err != nil {
		return SubBudgetItem{}, err
	}
	if !updated {
		return SubBudgetItem{}, ErrSubItemNotFound
	}
	s.publishMutation(ctx, subItem.ItemId, "updated")
	return subItem, nil
}

func (s *ServiceImpl) DeleteSubItem(ctx context.Context, itemId int, subItemId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.DeleteSubItem(ctx, userId, itemId, subItemId)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, ErrSubItemNotFound
	}
	s.publishMutation(ctx, itemId, "updated")
	return true, nil
}

func (s *ServiceImpl) RefreshSpent(ctx context.Context, itemId int) (float64, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.RecalculateSpent(ctx, userId, itemId)
}

// validateSubItemTotal checks that the parent's sub-item amounts, with the
// candidate included (replacing the one with replacedId when updating), do not
// exceed the parent's own allocation.
func validateSubItemTotal(parent BudgetItem, candidate SubBudgetItem, replacedId int) error {
	total := candidate.Amount
	for _, sub := range parent.SubItems {
		if sub.Id == replacedId {
			continue
		}
		total += sub.Amount
	}
	if total > parent.Amount {
		return ErrSubItemsExceedParent
	}
	return nil
}
