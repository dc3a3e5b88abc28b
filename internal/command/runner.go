package command

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/opsdesk/opsdesk/internal/event"
	"github.com/opsdesk/opsdesk/internal/ports"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

// errRolledBack tells the unit of work to abort; the command has already
// shaped its failure Result.
var errRolledBack = errors.New("command rolled back")

// Func is one use case: authorize and mutate within the transaction carried
// by ctx, returning the outcome plus the events to emit after commit.
type Func func(ctx context.Context) (Result, []event.Event)

// Runner owns the transaction boundary. The mutation commits first; only
// then do the command's events reach the dispatcher. An aborted transaction
// emits nothing, and a failed dispatch cannot touch the Result that the
// caller already holds.
type Runner struct {
	uow        ports.UnitOfWork
	dispatcher *event.Dispatcher
	log        logrus.FieldLogger
}

// NewRunner creates a runner.
func NewRunner(uow ports.UnitOfWork, dispatcher *event.Dispatcher, log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{uow: uow, dispatcher: dispatcher, log: log}
}

// Execute runs one command end to end.
func (r *Runner) Execute(ctx context.Context, fn Func) Result {
	var res Result
	var events []event.Event

	err := r.uow.WithinTx(ctx, func(txCtx context.Context) error {
		res, events = fn(txCtx)
		if !res.Success {
			return errRolledBack
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errRolledBack) {
			return res
		}
		// Commit or infrastructure failure: the mutation did not land, so no
		// event may be emitted.
		r.log.WithError(err).Error("command transaction failed")
		return failWith(apperror.Internal("command failed", err))
	}

	if len(events) > 0 {
		r.dispatcher.Dispatch(ctx, events...)
	}
	return res
}
