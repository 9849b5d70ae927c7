package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

// unitKey is private so only this package can plant or read the unit.
type unitKey struct{}

// ContextWithUnitOfWork hands the open unit to nested handlers. A handler
// that finds one in its context joins it instead of opening its own.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext reports the unit the transaction middleware opened, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
