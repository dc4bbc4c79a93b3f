package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
	"spendtrack/internal/store/memory"
)

func TestCreateExpenseAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New())
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	d, _ := core.ParseDate("2024-03-10")
	created, err := svc.CreateExpense(ctx, core.Expense{
		Amount:      core.Money{Cents: 2550},
		Description: "Lunch at McDonald's",
		Category:    core.Food,
		Date:        d,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID")
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v / %v, want %v", created.CreatedAt, created.UpdatedAt, now)
	}

	got, err := svc.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Description != "Lunch at McDonald's" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestCreateExpenseRejectsInvalid(t *testing.T) {
	svc := NewExpenseService(memory.New())
	d, _ := core.ParseDate("2024-03-10")

	_, err := svc.CreateExpense(context.Background(), core.Expense{
		Amount:   core.Money{Cents: 100},
		Category: "groceries", // not a known category
		Date:     d,
	})
	if !errors.Is(err, core.ErrInvalidCategory) {
		t.Fatalf("err = %v, want ErrInvalidCategory", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New())

	d, _ := core.ParseDate("2024-03-10")
	created, err := svc.CreateExpense(ctx, core.Expense{
		Amount:   core.Money{Cents: 100},
		Category: core.Other,
		Date:     d,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if err := svc.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := svc.GetExpense(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetExpense after delete err = %v, want ErrNotFound", err)
	}
}

func TestUpdateExpense(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New())

	d, _ := core.ParseDate("2024-03-10")
	created, err := svc.CreateExpense(ctx, core.Expense{
		Amount:   core.Money{Cents: 100},
		Category: core.Other,
		Date:     d,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	created.Description = "Updated"
	created.Amount = core.Money{Cents: 250}
	updated, err := svc.UpdateExpense(ctx, created)
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Error("UpdatedAt went backwards")
	}

	got, err := svc.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Description != "Updated" || got.Amount.Cents != 250 {
		t.Errorf("updated expense = %+v", got)
	}
}
