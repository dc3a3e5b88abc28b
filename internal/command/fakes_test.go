package command

import (
	"context"
	"errors"

	logrustest "github.com/sirupsen/logrus/hooks/test"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/event"
)

// fakeUnitOfWork runs the function directly. It records whether the last
// invocation rolled back so tests can assert on the transaction outcome.
type fakeUnitOfWork struct {
	rolledBack bool
	commitErr  error
}

func (u *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	u.rolledBack = false
	if err := fn(ctx); err != nil {
		u.rolledBack = true
		return err
	}
	return u.commitErr
}

type memTicketRepo struct {
	tickets   map[string]*domain.Ticket
	updateErr error
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *memTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *memTicketRepo) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if t, ok := r.tickets[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, domain.ErrTicketNotFound
}

func (r *memTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return domain.ErrTicketNotFound
	}
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *memTicketRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *memTicketRepo) List(ctx context.Context, filter domain.TicketFilter) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range r.tickets {
		out = append(out, t)
	}
	return out, nil
}

func (r *memTicketRepo) Count(ctx context.Context, filter domain.TicketFilter) (int, error) {
	return len(r.tickets), nil
}

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type memAuditRepo struct {
	entries   []*domain.AuditEntry
	createErr error
}

func (r *memAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memAuditRepo) List(ctx context.Context, resourceType, resourceID string, limit int) ([]*domain.AuditEntry, error) {
	return r.entries, nil
}

func (r *memAuditRepo) FindByID(ctx context.Context, id string) (*domain.AuditEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeHasher struct{}

func (fakeHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

// harness wires a command environment with an in-memory audit trail so tests
// can assert the commit-then-dispatch causality end to end.
type harness struct {
	uow    *fakeUnitOfWork
	audits *memAuditRepo
	runner *Runner
}

func newHarness() *harness {
	logger, _ := logrustest.NewNullLogger()
	audits := &memAuditRepo{}
	dispatcher := event.NewDispatcher(logger)
	sink := event.NewAuditHandler(audits)
	for _, kind := range []event.Kind{
		event.KindTicketCreated, event.KindTicketUpdated, event.KindTicketDeleted,
		event.KindTicketAssigned, event.KindTicketUnassigned,
		event.KindTicketResolved, event.KindTicketClosed,
		event.KindAssetCreated, event.KindAssetUpdated, event.KindAssetDeleted,
		event.KindAssetAssigned, event.KindAssetUnassigned,
		event.KindProjectCreated, event.KindProjectUpdated, event.KindProjectDeleted,
		event.KindProjectMemberAdded, event.KindProjectMemberRemoved,
		event.KindUserCreated, event.KindUserUpdated, event.KindUserRoleChanged,
		event.KindUserDeactivated, event.KindUserDeleted,
	} {
		dispatcher.Register(kind, sink)
	}

	uow := &fakeUnitOfWork{}
	return &harness{
		uow:    uow,
		audits: audits,
		runner: NewRunner(uow, dispatcher, logger),
	}
}

func userWithRole(id string, role domain.Role) *domain.User {
	u := domain.NewUser(id+"@example.com", "user "+id, role, "hash")
	u.ID = id
	return u
}

func actorFor(u *domain.User) *domain.Actor {
	return u.ActorRef()
}
