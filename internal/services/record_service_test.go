package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glance/internal/amqp"
	"glance/internal/core"
	applog "glance/internal/log"
	"glance/internal/records/memory"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.RecordChangedMessage
	err  error
}

func (p *fakePublisher) PublishRecordChanged(_ context.Context, msg *amqp.RecordChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *fakePublisher) last() *amqp.RecordChangedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.msgs) == 0 {
		return nil
	}
	return p.msgs[len(p.msgs)-1]
}

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
}

func newRecordService(t *testing.T, pub Publisher) *RecordService {
	t.Helper()
	svc := NewRecordService(memory.New(), pub, testLogger())
	require.NoError(t, svc.Init(context.Background()))
	return svc
}

func validExpense() core.Expense {
	return core.Expense{
		Amount:      core.Money{Cents: 120000},
		Description: "  Rent  ",
		Date:        core.NewDate(2025, 4, 1),
		CategoryID:  "cat_housing",
	}
}

func TestRecordServiceInitSeedsOnce(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.New(), nil, testLogger())

	require.NoError(t, svc.Init(ctx))
	require.NoError(t, svc.Init(ctx))

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories()))
}

func TestRecordServiceCreateExpenseReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newRecordService(t, pub)

	changes := 0
	svc.OnChange(func() { changes++ })

	m, err := svc.CreateExpense(ctx, validExpense())
	require.NoError(t, err)

	assert.NotEmpty(t, m.Record.ID)
	assert.Equal(t, "Rent", m.Record.Description)
	require.Len(t, m.Snapshot.Expenses, 1)
	assert.Equal(t, m.Record, m.Snapshot.Expenses[0])
	assert.Len(t, m.Snapshot.Categories, 8)
	assert.Equal(t, 1, changes)

	msg := pub.last()
	require.NotNil(t, msg)
	assert.Equal(t, amqp.EntityExpense, msg.Entity)
	assert.Equal(t, amqp.OperationCreate, msg.Operation)
	assert.Equal(t, m.Record.ID, msg.ID)
	assert.Equal(t, "2025-04-01", msg.Date)
}

func TestRecordServiceRejectsInvalidWrites(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newRecordService(t, pub)
	seeded := len(pub.msgs)

	zero := validExpense()
	zero.Amount = core.Money{}
	_, err := svc.CreateExpense(ctx, zero)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	negative := core.Budget{CategoryID: "cat_food", Amount: core.Money{Cents: -1}, Period: core.Monthly}
	_, err = svc.CreateBudget(ctx, negative)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = svc.CreateCategory(ctx, core.Category{Name: "   "})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = svc.UpdateExpense(ctx, validExpense())
	assert.ErrorIs(t, err, core.ErrInvalidArgument, "update without id")

	assert.Len(t, pub.msgs, seeded, "failed writes must not publish")
}

func TestRecordServiceUpdateMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newRecordService(t, nil)

	e := validExpense()
	e.ID = "exp_missing"
	_, err := svc.UpdateExpense(ctx, e)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.UpdateBudget(ctx, core.Budget{ID: "bud_missing", CategoryID: "cat_food", Amount: core.Money{Cents: 100}, Period: core.Weekly})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.UpdateCategory(ctx, core.Category{ID: "cat_missing", Name: "Pets"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRecordServiceRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newRecordService(t, nil)

	m, err := svc.CreateExpense(ctx, validExpense())
	require.NoError(t, err)

	snap, err := svc.RemoveExpense(ctx, m.Record.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Expenses)

	_, err = svc.RemoveExpense(ctx, m.Record.ID)
	assert.NoError(t, err)
}

func TestRecordServiceBudgetConflict(t *testing.T) {
	ctx := context.Background()
	svc := newRecordService(t, nil)

	b := core.Budget{CategoryID: "cat_food", Amount: core.Money{Cents: 50000}, Period: core.Monthly}
	_, err := svc.CreateBudget(ctx, b)
	require.NoError(t, err)

	_, err = svc.CreateBudget(ctx, b)
	assert.ErrorIs(t, err, core.ErrConflict)

	b.Period = core.Weekly
	_, err = svc.CreateBudget(ctx, b)
	assert.NoError(t, err, "different period is a different budget")
}

func TestRecordServiceRemoveCategoryKeepsReferences(t *testing.T) {
	ctx := context.Background()
	svc := newRecordService(t, nil)

	cat, err := svc.CreateCategory(ctx, core.Category{Name: " Pets "})
	require.NoError(t, err)
	assert.Equal(t, "Pets", cat.Record.Name)
	assert.Equal(t, core.DefaultColor, cat.Record.Color)

	e := validExpense()
	e.CategoryID = cat.Record.ID
	_, err = svc.CreateExpense(ctx, e)
	require.NoError(t, err)

	snap, err := svc.RemoveCategory(ctx, cat.Record.ID)
	require.NoError(t, err)
	require.Len(t, snap.Expenses, 1)
	assert.Equal(t, cat.Record.ID, snap.Expenses[0].CategoryID)
}

func TestRecordServicePublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newRecordService(t, pub)

	_, err := svc.CreateExpense(ctx, validExpense())
	assert.NoError(t, err)
}
