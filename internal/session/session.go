// Package session orchestrates one player's play: it owns the pity state,
// the wallet, the bag and the reveal sequencer, and threads them through the
// draw engine on every pull.
package session

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/xtding233/capsule-gacha/internal/gacha"
	"github.com/xtding233/capsule-gacha/internal/game"
	"github.com/xtding233/capsule-gacha/internal/pricing"
	"github.com/xtding233/capsule-gacha/internal/reveal"
	"github.com/xtding233/capsule-gacha/internal/token"
)

// ProgressListener receives the pity projection after every pull.
type ProgressListener func(gacha.Progress)

type Option func(*Session)

func WithProgressListener(fn ProgressListener) Option {
	return func(s *Session) { s.onProgress = fn }
}

// WithID fixes the session id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.id = id }
}

// Session is single-owner; Store serializes access for concurrent callers.
type Session struct {
	id         uuid.UUID
	engine     *gacha.Engine
	pity       gacha.PityState
	cost       token.Token
	wallet     *token.Wallet
	bag        *Collection
	seq        *reveal.Sequencer
	skip       bool
	shop       pricing.Shop
	bought     pricing.Purchased
	onProgress ProgressListener
}

// New starts a session with a fresh pity counter and the configured balance.
func New(engine *gacha.Engine, p game.Params, opts ...Option) (*Session, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: nil engine", gacha.ErrInvalidArgument)
	}
	pity, err := gacha.NewPityState(p.Threshold)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:     uuid.New(),
		engine: engine,
		pity:   pity,
		cost:   p.Cost,
		wallet: token.NewWallet(p.StartingBalance),
		bag:    newCollection(),
		seq:    reveal.NewSequencer(),
		skip:   p.SkipDefault,
		shop:   p.Shop,
		bought: pricing.Purchased{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) ID() uuid.UUID { return s.id }

// Pull charges the wallet, draws a batch of count and opens its reveal.
// A pull is refused while the previous reveal is still open.
func (s *Session) Pull(count int) ([]gacha.Outcome, error) {
	if st := s.seq.State(); st != reveal.StateIdle {
		return nil, fmt.Errorf("%w: previous reveal is %s", gacha.ErrInvalidState, st)
	}
	// validate before charging so a bad count costs nothing
	if count != gacha.BatchSingle && count != gacha.BatchTen {
		return nil, fmt.Errorf("%w: batch count must be %d or %d, got %d",
			gacha.ErrInvalidArgument, gacha.BatchSingle, gacha.BatchTen, count)
	}
	price := s.cost.TokensForDraws(count)
	if err := s.wallet.Spend(price); err != nil {
		return nil, err
	}

	outs, next, err := s.engine.DrawBatch(s.pity, count)
	if err != nil {
		s.wallet.Add(price)
		return nil, err
	}
	s.pity = next
	s.bag.record(outs)
	if s.onProgress != nil {
		s.onProgress(s.pity.Progress())
	}
	if err := s.seq.Start(outs, s.skip); err != nil {
		return nil, err
	}
	return outs, nil
}

// SetSkip sets skip mode for the next pull; an open reveal keeps its mode.
func (s *Session) SetSkip(skip bool) { s.skip = skip }

func (s *Session) Skip() bool { return s.skip }

func (s *Session) Advance() (reveal.Step, bool) { return s.seq.Advance() }

func (s *Session) CurrentStep() (reveal.Step, error) { return s.seq.CurrentStep() }

func (s *Session) Summary() ([]gacha.Outcome, error) { return s.seq.Summary() }

func (s *Session) Finish() error { return s.seq.Finish() }

func (s *Session) RevealState() reveal.State { return s.seq.State() }

func (s *Session) Pity() gacha.PityState { return s.pity }

func (s *Session) Progress() gacha.Progress { return s.pity.Progress() }

func (s *Session) Balance() int { return s.wallet.Balance() }

// Credit tops the wallet up.
func (s *Session) Credit(amount int) { s.wallet.Add(amount) }

// TopUp buys one bundle and credits its coins, returning the amount granted.
func (s *Session) TopUp(bundleID string) (int, error) {
	b, ok := s.shop.Find(bundleID)
	if !ok {
		return 0, fmt.Errorf("%w: unknown bundle %q", gacha.ErrInvalidArgument, bundleID)
	}
	coins := b.Grant(s.bought.FirstTime(b))
	s.bought[b.ID] = true
	s.wallet.Add(coins)
	return coins, nil
}

// MaxPlanPulls bounds how far ahead TopUpPlan will plan.
const MaxPlanPulls = 1000

// TopUpPlan is the cheapest set of bundles covering pulls more pulls of count draws.
// The plan is empty when the balance already covers them.
func (s *Session) TopUpPlan(count, pulls int) (pricing.Plan, error) {
	if count != gacha.BatchSingle && count != gacha.BatchTen {
		return pricing.Plan{}, fmt.Errorf("%w: batch count must be %d or %d, got %d",
			gacha.ErrInvalidArgument, gacha.BatchSingle, gacha.BatchTen, count)
	}
	if pulls < 1 || pulls > MaxPlanPulls {
		return pricing.Plan{}, fmt.Errorf("%w: pulls must be in [1, %d], got %d",
			gacha.ErrInvalidArgument, MaxPlanPulls, pulls)
	}
	price := s.cost.TokensForDraws(count)
	if price > 0 && pulls > math.MaxInt/price {
		return pricing.Plan{}, fmt.Errorf("%w: cost of %d pulls overflows", gacha.ErrInvalidArgument, pulls)
	}
	need := price*pulls - s.wallet.Balance()
	if need > pricing.MaxPlanCoins {
		return pricing.Plan{}, fmt.Errorf("%w: shortfall of %d coins exceeds %d",
			gacha.ErrInvalidArgument, need, pricing.MaxPlanCoins)
	}
	return pricing.CheapestTopUp(s.shop, need, s.bought), nil
}

// Price is the token cost of a pull of count draws.
func (s *Session) Price(count int) int { return s.cost.TokensForDraws(count) }

func (s *Session) Collection(order Order) []Entry { return s.bag.Entries(order) }

// Snapshot is a serializable view of the session.
type Snapshot struct {
	ID        uuid.UUID      `json:"id"`
	Pity      gacha.Progress `json:"pity"`
	Remaining int            `json:"remaining"`
	Balance   int            `json:"balance"`
	Token     string         `json:"token"`
	Skip      bool           `json:"skip"`
	Reveal    reveal.State   `json:"reveal"`
	Owned     int            `json:"owned"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.id,
		Pity:      s.Progress(),
		Remaining: s.Progress().Remaining(),
		Balance:   s.wallet.Balance(),
		Token:     s.cost.Name,
		Skip:      s.skip,
		Reveal:    s.seq.State(),
		Owned:     s.bag.Owned(),
	}
}
