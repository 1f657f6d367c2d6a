package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// ErrUnitOfWorkDone is returned when Commit or Rollback is called on a finished unit of work.
var ErrUnitOfWorkDone = errors.New("unit of work already finished")

type compensation struct {
	name string
	fn   func() error
}

// UnitOfWork couples a database transaction with compensating actions for side effects
// that live outside the database (folder moves, directory creation). The transaction is
// the only truly atomic part; compensations run in reverse registration order when the
// transaction is rolled back or fails to commit.
type UnitOfWork struct {
	tx            *gorm.DB
	compensations []compensation
	done          bool
}

// Begin opens a transaction bound to ctx.
func Begin(ctx context.Context, db *gorm.DB) (*UnitOfWork, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &UnitOfWork{tx: tx}, nil
}

// Tx is the transaction handle every staged statement must go through.
func (u *UnitOfWork) Tx() *gorm.DB {
	return u.tx
}

// OnRollback registers fn to undo a side effect that already happened.
func (u *UnitOfWork) OnRollback(name string, fn func() error) {
	u.compensations = append(u.compensations, compensation{name: name, fn: fn})
}

// Commit commits the transaction. When the commit itself fails the registered
// compensations run, and their failures are joined into the returned error.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return ErrUnitOfWorkDone
	}
	u.done = true
	if err := u.tx.Commit().Error; err != nil {
		commitErr := fmt.Errorf("failed to commit transaction: %w", err)
		return errors.Join(commitErr, u.compensate())
	}
	return nil
}

// Rollback discards the transaction and runs compensations. Calling it after Commit
// or a previous Rollback is a no-op, so it is safe to defer.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	var rbErr error
	if err := u.tx.Rollback().Error; err != nil && !errors.Is(err, gorm.ErrInvalidTransaction) {
		rbErr = fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return errors.Join(rbErr, u.compensate())
}

func (u *UnitOfWork) compensate() error {
	var errs []error
	for i := len(u.compensations) - 1; i >= 0; i-- {
		c := u.compensations[i]
		if err := c.fn(); err != nil {
			log.Printf("database.uow: compensation %q failed: %v", c.name, err)
			errs = append(errs, fmt.Errorf("compensation %q: %w", c.name, err))
		}
	}
	u.compensations = nil
	return errors.Join(errs...)
}

// Run executes fn inside a unit of work, committing on success and rolling back
// (with compensations) when fn returns an error.
func Run(ctx context.Context, db *gorm.DB, fn func(uow *UnitOfWork) error) error {
	uow, err := Begin(ctx, db)
	if err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		return errors.Join(err, uow.Rollback())
	}
	return uow.Commit()
}
