package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"glance/internal/amqp"
	"glance/internal/core"
	applog "glance/internal/log"
	"glance/internal/records"
)

// Publisher announces record changes to other processes.
type Publisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// Mutation is the result of a write: the stored record and the state of
// every collection right after it.
type Mutation[T any] struct {
	Record   T             `json:"record"`
	Snapshot core.Snapshot `json:"snapshot"`
}

// RecordService validates and applies writes to the record store, then
// notifies listeners and the message broker.
type RecordService struct {
	store     records.Store
	publisher Publisher
	logger    *applog.Logger
	onChange  []func()
}

// NewRecordService wires a store and an optional publisher (nil disables
// events).
func NewRecordService(store records.Store, publisher Publisher, logger *applog.Logger) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentRecords),
	}
}

// OnChange registers fn to run after every successful write.
func (s *RecordService) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

// Init seeds the default categories when none exist yet.
func (s *RecordService) Init(ctx context.Context) error {
	seeded, err := s.store.SeedDefaultCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed default categories: %w", err)
	}
	if seeded {
		s.logger.InfoContext(ctx, "Seeded default categories", applog.FieldOperation, applog.OpSeed)
		s.changed(ctx, amqp.EntityCategory, amqp.OperationCreate, "defaults", "")
	}
	return nil
}

// Snapshot loads the three collections concurrently.
func (s *RecordService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Expenses, err = s.store.ListExpenses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Budgets, err = s.store.ListBudgets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Categories, err = s.store.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

func (s *RecordService) Budgets(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}

func (s *RecordService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (Mutation[core.Expense], error) {
	e.ID = ""
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return Mutation[core.Expense]{}, err
	}
	stored, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return Mutation[core.Expense]{}, fmt.Errorf("add expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense created",
		applog.FieldRecordID, stored.ID,
		applog.FieldAmountCents, stored.Amount.Cents,
		applog.FieldDate, stored.Date.String())
	s.changed(ctx, amqp.EntityExpense, amqp.OperationCreate, stored.ID, stored.Date.String())
	return withSnapshot(ctx, s, stored)
}

func (s *RecordService) UpdateExpense(ctx context.Context, e core.Expense) (Mutation[core.Expense], error) {
	if err := requireID(e.ID); err != nil {
		return Mutation[core.Expense]{}, err
	}
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return Mutation[core.Expense]{}, err
	}
	stored, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return Mutation[core.Expense]{}, fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	s.logger.InfoContext(ctx, "Expense updated", applog.FieldRecordID, stored.ID)
	s.changed(ctx, amqp.EntityExpense, amqp.OperationUpdate, stored.ID, stored.Date.String())
	return withSnapshot(ctx, s, stored)
}

func (s *RecordService) RemoveExpense(ctx context.Context, id string) (core.Snapshot, error) {
	if err := s.store.RemoveExpense(ctx, id); err != nil {
		return core.Snapshot{}, fmt.Errorf("remove expense %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Expense removed", applog.FieldRecordID, id)
	s.changed(ctx, amqp.EntityExpense, amqp.OperationDelete, id, "")
	return s.Snapshot(ctx)
}

func (s *RecordService) CreateBudget(ctx context.Context, b core.Budget) (Mutation[core.Budget], error) {
	b.ID = ""
	if err := b.Validate(); err != nil {
		return Mutation[core.Budget]{}, err
	}
	stored, err := s.store.AddBudget(ctx, b)
	if err != nil {
		return Mutation[core.Budget]{}, fmt.Errorf("add budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget created",
		applog.FieldRecordID, stored.ID,
		applog.FieldCategoryID, stored.CategoryID,
		applog.FieldPeriod, string(stored.Period))
	s.changed(ctx, amqp.EntityBudget, amqp.OperationCreate, stored.ID, "")
	return withSnapshot(ctx, s, stored)
}

func (s *RecordService) UpdateBudget(ctx context.Context, b core.Budget) (Mutation[core.Budget], error) {
	if err := requireID(b.ID); err != nil {
		return Mutation[core.Budget]{}, err
	}
	if err := b.Validate(); err != nil {
		return Mutation[core.Budget]{}, err
	}
	stored, err := s.store.UpdateBudget(ctx, b)
	if err != nil {
		return Mutation[core.Budget]{}, fmt.Errorf("update budget %s: %w", b.ID, err)
	}
	s.logger.InfoContext(ctx, "Budget updated", applog.FieldRecordID, stored.ID)
	s.changed(ctx, amqp.EntityBudget, amqp.OperationUpdate, stored.ID, "")
	return withSnapshot(ctx, s, stored)
}

func (s *RecordService) RemoveBudget(ctx context.Context, id string) (core.Snapshot, error) {
	if err := s.store.RemoveBudget(ctx, id); err != nil {
		return core.Snapshot{}, fmt.Errorf("remove budget %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Budget removed", applog.FieldRecordID, id)
	s.changed(ctx, amqp.EntityBudget, amqp.OperationDelete, id, "")
	return s.Snapshot(ctx)
}

func (s *RecordService) CreateCategory(ctx context.Context, c core.Category) (Mutation[core.Category], error) {
	c.ID = ""
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return Mutation[core.Category]{}, err
	}
	stored, err := s.store.AddCategory(ctx, c)
	if err != nil {
		return Mutation[core.Category]{}, fmt.Errorf("add category: %w", err)
	}
	s.logger.InfoContext(ctx, "Category created", applog.FieldRecordID, stored.ID)
	s.changed(ctx, amqp.EntityCategory, amqp.OperationCreate, stored.ID, "")
	return withSnapshot(ctx, s, stored)
}

func (s *RecordService) UpdateCategory(ctx context.Context, c core.Category) (Mutation[core.Category], error) {
	if err := requireID(c.ID); err != nil {
		return Mutation[core.Category]{}, err
	}
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return Mutation[core.Category]{}, err
	}
	stored, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return Mutation[core.Category]{}, fmt.Errorf("update category %s: %w", c.ID, err)
	}
	s.logger.InfoContext(ctx, "Category updated", applog.FieldRecordID, stored.ID)
	s.changed(ctx, amqp.EntityCategory, amqp.OperationUpdate, stored.ID, "")
	return withSnapshot(ctx, s, stored)
}

// RemoveCategory deletes the category only; expenses and budgets that
// reference it are left alone and resolve to the Unknown Category.
func (s *RecordService) RemoveCategory(ctx context.Context, id string) (core.Snapshot, error) {
	if err := s.store.RemoveCategory(ctx, id); err != nil {
		return core.Snapshot{}, fmt.Errorf("remove category %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Category removed", applog.FieldRecordID, id)
	s.changed(ctx, amqp.EntityCategory, amqp.OperationDelete, id, "")
	return s.Snapshot(ctx)
}

// Close releases the store.
func (s *RecordService) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func withSnapshot[T any](ctx context.Context, s *RecordService, record T) (Mutation[T], error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Mutation[T]{}, err
	}
	return Mutation[T]{Record: record, Snapshot: snap}, nil
}

// changed runs the change hooks and publishes the event. Publishing is best
// effort: the write already succeeded.
func (s *RecordService) changed(ctx context.Context, entity, operation, id, date string) {
	for _, fn := range s.onChange {
		fn()
	}
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordChangedMessage(entity, operation, id)
	msg.Date = date
	if err := s.publisher.PublishRecordChanged(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish record change",
			applog.FieldEntity, entity,
			applog.FieldRecordID, id,
			applog.FieldError, err.Error())
	}
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing id", core.ErrInvalidArgument)
	}
	return nil
}
