package budget_item

import (
	"context"
	"time"
)

// RepositoryStub is an in-memory Repository for tests. Expense amounts are fed
// in through AddExpenseAmount so that RecalculateSpent behaves like the SQL one.
type RepositoryStub struct {
	nextId        int
	items         map[int]BudgetItem
	subItems      map[int]SubBudgetItem
	expenseTotals map[int]float64
	subItemHits   map[int]int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:         map[int]BudgetItem{},
		subItems:      map[int]SubBudgetItem{},
		expenseTotals: map[int]float64{},
		subItemHits:   map[int]int{},
	}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.items = map[int]BudgetItem{}
	s.subItems = map[int]SubBudgetItem{}
	s.expenseTotals = map[int]float64{}
	s.subItemHits = map[int]int{}
}

// AddExpenseAmount simulates appended expense rows for RecalculateSpent.
func (s *RepositoryStub) AddExpenseAmount(itemId int, amount float64, subItemId *int) {
	s.expenseTotals[itemId] += amount
	if subItemId != nil {
		s.subItemHits[*subItemId]++
	}
}

func (s *RepositoryStub) StoreItem(ctx context.Context, userId int, item BudgetItem) (int, error) {
	s.nextId++
	item.Id = s.nextId
	s.items[item.Id] = item
	return item.Id, nil
}

func (s *RepositoryStub) GetItem(ctx context.Context, userId int, itemId int) (BudgetItem, error) {
	item, ok := s.items[itemId]
	if !ok {
		return BudgetItem{}, ErrItemNotFound
	}
	item.SubItems, _ = s.GetSubItems(ctx, userId, itemId)
	return item, nil
}

func (s *RepositoryStub) GetItems(ctx context.Context, userId int, budgetId int) ([]BudgetItem, error) {
	var items []BudgetItem
	for id := 1; id <= s.nextId; id++ {
		item, ok := s.items[id]
		if !ok || item.BudgetId != budgetId {
			continue
		}
		item.SubItems, _ = s.GetSubItems(ctx, userId, id)
		items = append(items, item)
	}
	return items, nil
}

func (s *RepositoryStub) UpdateItem(ctx context.Context, userId int, item BudgetItem) (bool, error) {
	existing, ok := s.items[item.Id]
	if !ok {
		return false, nil
	}
	existing.Name = item.Name
	existing.Amount = item.Amount
	existing.Deadline = item.Deadline
	existing.Note = item.Note
	existing.Tag = item.Tag
	s.items[item.Id] = existing
	return true, nil
}

func (s *RepositoryStub) UpdateItemFlags(ctx context.Context, userId int, itemId int, continuous, recurring bool) (bool, error) {
	item, ok := s.items[itemId]
	if !ok {
		return false, nil
	}
	item.Continuous = continuous
	item.Recurring = recurring
	s.items[itemId] = item
	return true, nil
}

func (s *RepositoryStub) UpdateItemDeadline(ctx context.Context, userId int, itemId int, deadline *time.Time) (bool, error) {
	item, ok := s.items[itemId]
	if !ok {
		return false, nil
	}
	item.Deadline = deadline
	s.items[itemId] = item
	return true, nil
}

func (s *RepositoryStub) DeleteItem(ctx context.Context, userId int, itemId int) (bool, error) {
	if _, ok := s.items[itemId]; !ok {
		return false, nil
	}
	delete(s.items, itemId)
	for id, sub := range s.subItems {
		if sub.ItemId == itemId {
			delete(s.subItems, id)
		}
	}
	return true, nil
}

func (s *RepositoryStub) StoreSubItem(ctx context.Context, userId int, subItem SubBudgetItem) (int, error) {
	s.nextId++
	subItem.Id = s.nextId
	s.subItems[subItem.Id] = subItem
	return subItem.Id, nil
}

func (s *RepositoryStub) GetSubItems(ctx context.Context, userId int, itemId int) ([]SubBudgetItem, error) {
	var subItems []SubBudgetItem
	for id := 1; id <= s.nextId; id++ {
		sub, ok := s.subItems[id]
		if !ok || sub.ItemId != itemId {
			continue
		}
		sub.Tracked = s.subItemHits[id] > 0
		subItems = append(subItems, sub)
	}
	return subItems, nil
}

func (s *RepositoryStub) UpdateSubItem(ctx context.Context, userId int, subItem SubBudgetItem) (bool, error) {
	existing, ok := s.subItems[subItem.Id]
	if !ok || existing.ItemId != subItem.ItemId {
		return false, nil
	}
	existing.Name = subItem.Name
	existing.Amount = subItem.Amount
	existing.Note = subItem.Note
	existing.Tag = subItem.Tag
	s.subItems[subItem.Id] = existing
	return true, nil
}

func (s *RepositoryStub) DeleteSubItem(ctx context.Context, userId int, itemId int, subItemId int) (bool, error) {
	sub, ok := s.subItems[subItemId]
	if !ok || sub.ItemId != itemId {
		return false, nil
	}
	delete(s.subItems, subItemId)
	return true, nil
}

func (s *RepositoryStub) RecalculateSpent(ctx context.Context, userId int, itemId int) (float64, error) {
	item, ok := s.items[itemId]
	if !ok {
		return 0, ErrItemNotFound
	}
	item.Spent = s.expenseTotals[itemId]
	s.items[itemId] = item
	return item.Spent, nil
}
