package budget

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pennyplan/pennyplan/internal/event_bus"
	"github.com/pennyplan/pennyplan/internal/utils"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
	"github.com/pennyplan/pennyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrNoCurrentBudget = errors.New("no current budget")
var ErrInvalidPeriod = errors.New("unknown budget period")
var ErrNonPositiveAmount = errors.New("budget amount must be greater than zero")

// DefaultLoadDebounce is the minimum interval between two full loads for the
// same user. Calls inside the window are suppressed and report false.
const DefaultLoadDebounce = time.Second

type BudgetService interface {
	// Load refreshes the user's snapshot from the store. It returns false
	// without loading when a load is already in flight or when the last load
	// finished inside the debounce window. A failed load keeps the previous
	// snapshot untouched.
	Load(ctx context.Context) (bool, error)
	// Current returns the user's snapshot, loading it first when none is
	// cached. The expired flag is recomputed against the clock on every call.
	Current(ctx context.Context) (Snapshot, error)
	// Initialize creates a new budget period. Staged carry-over items from
	// PrepareRollover are recreated under the new budget: continuous items at
	// their remaining balance, recurring items at their full amount, sub-items
	// verbatim. The amount is taken as final; any staged leftover the caller
	// wanted to carry must already be included in it.
	Initialize(ctx context.Context, period Period, amount float64) (Snapshot, error)
	// PrepareRollover reloads the current budget to capture final totals and
	// stages its continuous and recurring items plus the leftover balance for
	// the next Initialize call.
	PrepareRollover(ctx context.Context) (Rollover, error)
}

type session struct {
	loading  bool
	lastLoad time.Time
	snapshot *Snapshot
	staged   *Rollover
}

type BudgetServiceImpl struct {
	repo     BudgetRepo
	items    budget_item.Repository
	eventBus *event_bus.EventBus
	clock    utils.Clock
	debounce time.Duration

	mu       sync.Mutex
	sessions map[int]*session
}

func NewBudgetService(repo BudgetRepo, items budget_item.Repository, eventBus *event_bus.EventBus, clock utils.Clock, debounce time.Duration) *BudgetServiceImpl {
	if debounce <= 0 {
		debounce = DefaultLoadDebounce
	}
	return &BudgetServiceImpl{
		repo:     repo,
		items:    items,
		eventBus: eventBus,
		clock:    clock,
		debounce: debounce,
		sessions: make(map[int]*session),
	}
}

func (s *BudgetServiceImpl) session(userId int) *session {
	sess, ok := s.sessions[userId]
	if !ok {
		sess = &session{}
		s.sessions[userId] = sess
	}
	return sess
}

func (s *BudgetServiceImpl) Load(ctx context.Context) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	s.mu.Lock()
	sess := s.session(userId)
	if sess.loading {
		s.mu.Unlock()
		log.Debugf("budget load already in flight for user %d", userId)
		return false, nil
	}
	if !sess.lastLoad.IsZero() && s.clock.Now().Sub(sess.lastLoad) < s.debounce {
		s.mu.Unlock()
		log.Debugf("budget load for user %d suppressed by debounce", userId)
		return false, nil
	}
	sess.loading = true
	s.mu.Unlock()

	snapshot, err := s.fetch(ctx, userId)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.loading = false
	sess.lastLoad = s.clock.Now()
	if err != nil {
		// keep the last-known-good snapshot
		log.Errorf("failed to load budget for user %d: %v", userId, err)
		return false, err
	}
	sess.snapshot = &snapshot
	return true, nil
}

func (s *BudgetServiceImpl) Current(ctx context.Context) (Snapshot, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get current user: %w", err)
	}

	s.mu.Lock()
	sess := s.session(userId)
	cached := sess.snapshot
	s.mu.Unlock()

	if cached == nil {
		snapshot, err := s.fetch(ctx, userId)
		if err != nil {
			return Snapshot{}, err
		}
		s.mu.Lock()
		sess.snapshot = &snapshot
		sess.lastLoad = s.clock.Now()
		cached = sess.snapshot
		s.mu.Unlock()
	}

	snapshot := *cached
	snapshot.Expired = snapshot.Exists && s.clock.Now().After(snapshot.DateRange.End)
	return snapshot, nil
}

func (s *BudgetServiceImpl) Initialize(ctx context.Context, period Period, amount float64) (Snapshot, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !validPeriod(period) {
		return Snapshot{}, ErrInvalidPeriod
	}
	if amount <= 0 {
		return Snapshot{}, ErrNonPositiveAmount
	}

	newBudget := Budget{
		Uid:       uuid.New().String(),
		Period:    period,
		Amount:    amount,
		CreatedAt: s.clock.Now(),
	}
	id, err := s.repo.Store(ctx, userId, newBudget)
	if err != nil {
		return Snapshot{}, err
	}
	newBudget.Id = id

	s.mu.Lock()
	sess := s.session(userId)
	staged := sess.staged
	sess.staged = nil // leftover and items are consumed, even partially
	s.mu.Unlock()

	carried := 0
	if staged != nil {
		carried = s.recreateCarryOver(ctx, userId, newBudget.Id, staged)
	}

	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, "budget.period.initialized", event_bus.BudgetPeriodInitialized{
		BudgetId:     newBudget.Id,
		Period:       string(period),
		Amount:       amount,
		CarriedItems: carried,
	})); err != nil {
		log.Errorf("failed to publish budget period initialized event: %v", err)
	}

	snapshot, err := s.fetch(ctx, userId)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	sess.snapshot = &snapshot
	sess.lastLoad = s.clock.Now()
	s.mu.Unlock()
	return snapshot, nil
}

// Invalidate drops the user's cached snapshot so the next Current call reads
// fresh data. The debounce window is reset as well.
func (s *BudgetServiceImpl) Invalidate(ctx context.Context) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(userId)
	sess.snapshot = nil
	sess.lastLoad = time.Time{}
}

// recreateCarryOver recreates staged items under the new budget. A failure on
// one item is logged and does not abort the remaining items.
func (s *BudgetServiceImpl) recreateCarryOver(ctx context.Context, userId int, budgetId int, staged *Rollover) int {
	carried := 0
	recreate := func(original budget_item.BudgetItem, amount float64) {
		newItem := original
		newItem.Id = 0
		newItem.BudgetId = budgetId
		newItem.Amount = amount
		newItem.Spent = 0
		newItem.SubItems = nil

		itemId, err := s.items.StoreItem(ctx, userId, newItem)
		if err != nil {
			log.Errorf("failed to carry over item %q into budget %d: %v", original.Name, budgetId, err)
			return
		}
		carried++

		for _, sub := range original.SubItems {
			newSub := sub
			newSub.Id = 0
			newSub.ItemId = itemId
			newSub.Tracked = false
			if _, err := s.items.StoreSubItem(ctx, userId, newSub); err != nil {
				log.Errorf("failed to carry over sub-item %q of item %q: %v", sub.Name, original.Name, err)
			}
		}
	}

	for _, item := range staged.ContinuousItems {
		recreate(item, math.Max(0, item.Amount-item.Spent))
	}
	for _, item := range staged.RecurringItems {
		recreate(item, item.Amount)
	}
	return carried
}

func (s *BudgetServiceImpl) PrepareRollover(ctx context.Context) (Rollover, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rollover{}, fmt.Errorf("failed to get current user: %w", err)
	}

	// Reload directly to capture final totals before staging; the debounce
	// must not leave us staging stale spent values.
	snapshot, err := s.fetch(ctx, userId)
	if err != nil {
		return Rollover{}, err
	}
	if !snapshot.Exists {
		return Rollover{}, ErrNoCurrentBudget
	}

	rollover := Rollover{
		Leftover: budget_item.Remaining(snapshot.Budget.Amount, snapshot.Items),
	}
	for _, item := range snapshot.Items {
		switch {
		case item.Continuous:
			rollover.ContinuousItems = append(rollover.ContinuousItems, item)
		case item.Recurring:
			rollover.RecurringItems = append(rollover.RecurringItems, item)
		}
	}

	s.mu.Lock()
	sess := s.session(userId)
	sess.snapshot = &snapshot
	sess.lastLoad = s.clock.Now()
	sess.staged = &rollover
	s.mu.Unlock()

	return rollover, nil
}

// fetch reads the latest budget with its items and derives range and expiry.
// A user without any budget yields a non-existing snapshot, not an error.
func (s *BudgetServiceImpl) fetch(ctx context.Context, userId int) (Snapshot, error) {
	b, err := s.repo.FindLatest(ctx, userId)
	if errors.Is(err, ErrBudgetNotFound) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	items, err := s.items.GetItems(ctx, userId, b.Id)
	if err != nil {
		return Snapshot{}, err
	}

	dateRange := PeriodDateRange(b.CreatedAt, b.Period)
	return Snapshot{
		Exists:    true,
		Budget:    b,
		Items:     items,
		DateRange: dateRange,
		Expired:   s.clock.Now().After(dateRange.End),
	}, nil
}

func validPeriod(period Period) bool {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodBiWeekly, PeriodMonthly,
		PeriodQuarterly, PeriodSemiAnnually, PeriodAnnually, PeriodCustom:
		return true
	}
	return false
}
