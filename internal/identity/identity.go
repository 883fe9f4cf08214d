// Package identity tracks who is using the app: a signed-up user, the
// shared guest, or nobody. The active identity and the registry of known
// users are persisted in the key-value store.
package identity

import (
	"context"
	"encoding/json"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"shoppa/internal/database"
	"shoppa/internal/model"
)

const (
	KeyCurrent = "current_user"
	KeyUsers   = "users"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidInput   = errors.New("invalid name or email")
)

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
}

// Listener is told about every change of the active identity, including
// the initial Restore. id is nil when nobody is signed in.
type Listener func(ctx context.Context, id *model.Identity)

type Provider struct {
	Logger logger
	kv     database.Store
	now    func() time.Time

	mu        sync.Mutex
	current   *model.Identity
	listeners []Listener
}

func New(kv database.Store, l logger) *Provider {
	return &Provider{Logger: l, kv: kv, now: time.Now}
}

func (p *Provider) Subscribe(l Listener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
}

// Current returns a copy of the active identity, or nil.
func (p *Provider) Current() *model.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.current)
}

// Restore loads the identity saved by a previous session. A missing or
// malformed record means nobody is signed in.
func (p *Provider) Restore(ctx context.Context) *model.Identity {
	var id *model.Identity
	raw, ok, err := p.kv.Get(ctx, KeyCurrent)
	switch {
	case err != nil:
		p.Logger.Warnf("Restore: Error reading current identity, err: %v", err)
	case ok:
		var saved model.Identity
		if err = json.Unmarshal([]byte(raw), &saved); err != nil || saved.ID == "" {
			p.Logger.Warnf("Restore: Ignoring saved identity, err: %v",
				errors.Wrapf(model.ErrMalformedState, "identity record: %v", err))
		} else {
			id = &saved
		}
	}
	p.publish(ctx, id)
	return clone(id)
}

func (p *Provider) SignUp(ctx context.Context, name, email string) (*model.Identity, error) {
	name = strings.TrimSpace(name)
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if name == "" || err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "name: %q, email: %q", name, email)
	}

	users, err := p.users(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := findByEmail(users, addr.Address); ok {
		return nil, errors.Wrapf(ErrDuplicateEmail, "email: %s", addr.Address)
	}

	id := &model.Identity{
		ID:       "u_" + uuid.NewString(),
		Name:     name,
		Email:    addr.Address,
		JoinedAt: p.now().UTC(),
		Tier:     model.TierFree,
	}
	data, err := json.Marshal(append(users, *id))
	if err != nil {
		return nil, errors.Wrap(err, "error encoding user registry")
	}
	if err = p.kv.Set(ctx, KeyUsers, string(data)); err != nil {
		return nil, errors.WithMessage(err, "error saving user registry")
	}
	p.Logger.Infof("SignUp: Registered user, id: %s", id.ID)

	if err = p.switchTo(ctx, id); err != nil {
		return nil, err
	}
	return clone(id), nil
}

// Login signs in the registered user with email, case-insensitively.
func (p *Provider) Login(ctx context.Context, email string) (*model.Identity, error) {
	users, err := p.users(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := findByEmail(users, strings.TrimSpace(email))
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "no user with email: %s", email)
	}
	if err = p.switchTo(ctx, &u); err != nil {
		return nil, err
	}
	return clone(&u), nil
}

func (p *Provider) ContinueAsGuest(ctx context.Context) (*model.Identity, error) {
	id := &model.Identity{
		ID:       model.GuestID,
		Name:     "Guest",
		Guest:    true,
		JoinedAt: p.now().UTC(),
		Tier:     model.TierFree,
	}
	if err := p.switchTo(ctx, id); err != nil {
		return nil, err
	}
	return clone(id), nil
}

func (p *Provider) Logout(ctx context.Context) error {
	return p.switchTo(ctx, nil)
}

func (p *Provider) switchTo(ctx context.Context, id *model.Identity) error {
	if id == nil {
		if err := p.kv.Remove(ctx, KeyCurrent); err != nil {
			return errors.WithMessage(err, "error clearing current identity")
		}
	} else {
		data, err := json.Marshal(id)
		if err != nil {
			return errors.Wrap(err, "error encoding identity")
		}
		if err = p.kv.Set(ctx, KeyCurrent, string(data)); err != nil {
			return errors.WithMessage(err, "error saving current identity")
		}
	}
	p.publish(ctx, id)
	return nil
}

// publish sets the active identity and notifies listeners outside the lock.
func (p *Provider) publish(ctx context.Context, id *model.Identity) {
	p.mu.Lock()
	p.current = clone(id)
	listeners := append([]Listener(nil), p.listeners...)
	p.mu.Unlock()

	who := "none"
	if id != nil {
		who = id.ID
	}
	p.Logger.Debugf("publish: Active identity changed, id: %s, listeners: %d", who, len(listeners))
	for _, l := range listeners {
		l(ctx, clone(id))
	}
}

// users reads the registry. A malformed registry reads as empty.
func (p *Provider) users(ctx context.Context) ([]model.Identity, error) {
	raw, ok, err := p.kv.Get(ctx, KeyUsers)
	if err != nil {
		return nil, errors.WithMessage(err, "error reading user registry")
	}
	if !ok {
		return nil, nil
	}
	var users []model.Identity
	if err = json.Unmarshal([]byte(raw), &users); err != nil {
		p.Logger.Warnf("users: Ignoring malformed registry, err: %v", err)
		return nil, nil
	}
	return users, nil
}

func findByEmail(users []model.Identity, email string) (model.Identity, bool) {
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return model.Identity{}, false
}

func clone(id *model.Identity) *model.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
