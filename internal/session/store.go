package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/xtding233/capsule-gacha/internal/gacha"
	"github.com/xtding233/capsule-gacha/internal/game"
)

var ErrNotFound = errors.New("session not found")

// Factory builds a new session; the server swaps it when config reloads.
type Factory func(opts ...Option) (*Session, error)

// NewFactory builds one engine for p and shares it between the sessions it creates,
// so the random source must be safe for concurrent use (DefaultRNG is).
func NewFactory(p game.Params, engineOpts ...gacha.Option) (Factory, error) {
	e, err := p.NewEngine(engineOpts...)
	if err != nil {
		return nil, err
	}
	return func(opts ...Option) (*Session, error) {
		return New(e, p, opts...)
	}, nil
}

// Store keeps sessions in memory. Each session is touched by one caller at a time.
type Store struct {
	mu       sync.Mutex
	factory  Factory
	sessions map[uuid.UUID]*entry
}

type entry struct {
	mu sync.Mutex
	s  *Session
}

func NewStore(factory Factory) *Store {
	return &Store{factory: factory, sessions: make(map[uuid.UUID]*entry)}
}

// SetFactory replaces the factory for sessions created from now on.
func (st *Store) SetFactory(f Factory) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.factory = f
}

// Create builds and registers a session.
func (st *Store) Create(opts ...Option) (*Session, error) {
	st.mu.Lock()
	f := st.factory
	st.mu.Unlock()
	if f == nil {
		return nil, errors.New("session store has no factory")
	}

	s, err := f(opts...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID()] = &entry{s: s}
	return s, nil
}

// With runs fn with exclusive access to the session.
func (st *Store) With(id uuid.UUID, fn func(*Session) error) error {
	st.mu.Lock()
	e, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.s)
}

// Delete drops a session; an open reveal is simply abandoned.
func (st *Store) Delete(id uuid.UUID) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(st.sessions, id)
	return nil
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
