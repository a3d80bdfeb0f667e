package nft

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/R3E-Network/nft_layer/internal/events"
	"github.com/R3E-Network/nft_layer/internal/metrics"
	"github.com/R3E-Network/nft_layer/internal/storage"
	"github.com/R3E-Network/nft_layer/pkg/logger"
)

// Proxy is a deployed contract: a fixed address, persistent storage and a
// pointer to the current logic. Calls are serialized; each mutating call
// runs against a staged copy of the state that is committed to the store
// only if the logic returns no error.
type Proxy struct {
	mu      sync.RWMutex
	address Address
	store   storage.Store
	logic   Logic
	state   *State
	encoded []byte

	log    *logger.Logger
	events events.Log
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithLogger sets the proxy logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Proxy) {
		if l != nil {
			p.log = l
		}
	}
}

// WithEvents sets the log that committed calls emit into.
func WithEvents(log events.Log) Option {
	return func(p *Proxy) {
		if log != nil {
			p.events = log
		}
	}
}

// NewProxy creates an undeployed proxy with empty storage. Nothing is
// persisted until the first successful call, normally Initialize.
func NewProxy(addr Address, store storage.Store, logic Logic, opts ...Option) (*Proxy, error) {
	if store == nil {
		return nil, errors.New("proxy: store is required")
	}
	if logic == nil {
		return nil, fmt.Errorf("proxy: %w", ErrUnknownLogic)
	}
	p := &Proxy{
		address: addr,
		store:   store,
		logic:   logic,
		state:   NewState(),
		log:     logger.NewDefault("nft"),
		events:  events.Discard{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("contract", FormatAddress(addr))
	return p, nil
}

// Open loads a deployed proxy from the store and resolves its logic.
func Open(ctx context.Context, addr Address, store storage.Store, registry *Registry, opts ...Option) (*Proxy, error) {
	if store == nil || registry == nil {
		return nil, errors.New("open proxy: store and registry are required")
	}
	rec, err := store.Load(ctx, FormatAddress(addr))
	if err != nil {
		return nil, fmt.Errorf("open proxy %s: %w", FormatAddress(addr), err)
	}
	logic, err := registry.Resolve(rec.Implementation)
	if err != nil {
		return nil, fmt.Errorf("open proxy %s: %w", FormatAddress(addr), err)
	}
	state, err := UnmarshalState(rec.State)
	if err != nil {
		return nil, fmt.Errorf("open proxy %s: %w", FormatAddress(addr), err)
	}

	p, err := NewProxy(addr, store, logic, opts...)
	if err != nil {
		return nil, err
	}
	p.state = state
	p.encoded = append([]byte(nil), rec.State...)
	return p, nil
}

// execute stages, applies, persists and then emits outside the lock.
func (p *Proxy) execute(ctx context.Context, op string, caller Address, apply func(*State) ([]events.Event, error)) error {
	emitted, err := p.commit(ctx, op, caller, apply)
	if err != nil {
		return err
	}
	for _, ev := range emitted {
		p.events.Emit(ctx, ev)
	}
	return nil
}

func (p *Proxy) commit(ctx context.Context, op string, caller Address, apply func(*State) ([]events.Event, error)) ([]events.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	staged := p.state.Clone()
	emitted, err := apply(staged)
	if err != nil {
		return nil, p.rejected(op, caller, err)
	}
	staged.LayoutVersion = p.logic.Layout().Version

	encoded, err := MarshalState(staged)
	if err != nil {
		return nil, fmt.Errorf("%s: encode state: %w", op, err)
	}
	start := time.Now()
	if err := p.persist(ctx, p.logic.Version(), encoded); err != nil {
		p.log.WithError(err).WithField("op", op).Error("commit failed, state unchanged")
		return nil, fmt.Errorf("%s: commit state: %w", op, err)
	}
	metrics.RecordCommit(op, time.Since(start))

	p.state = staged
	p.encoded = encoded

	contract := FormatAddress(p.address)
	for i := range emitted {
		emitted[i].Contract = contract
	}
	p.log.WithField("op", op).WithField("caller", FormatAddress(caller)).Debug("call committed")
	return emitted, nil
}

func (p *Proxy) persist(ctx context.Context, implementation string, encoded []byte) error {
	return p.store.Save(ctx, storage.Record{
		Address:        FormatAddress(p.address),
		Implementation: implementation,
		State:          encoded,
	})
}

func (p *Proxy) rejected(op string, caller Address, err error) error {
	reason := Reason(err)
	metrics.RecordRejected(op, reason)
	p.log.WithField("op", op).
		WithField("caller", FormatAddress(caller)).
		WithField("reason", reason).
		Info("call rejected")
	return reject(op, caller, err)
}

// Initialize sets the owner, royalty and base URI. It succeeds once.
func (p *Proxy) Initialize(ctx context.Context, caller Address, baseURI string, royaltyPercentage uint64) error {
	return p.execute(ctx, "initialize", caller, func(s *State) ([]events.Event, error) {
		if err := p.logic.Initialize(s, caller, baseURI, royaltyPercentage); err != nil {
			return nil, err
		}
		return []events.Event{
			{
				Type: events.EventInitialized,
				From: FormatAddress(caller),
				Metadata: map[string]string{
					"base_uri":           baseURI,
					"royalty_percentage": strconv.FormatUint(royaltyPercentage, 10),
					"implementation":     p.logic.Version(),
				},
			},
			{Type: events.EventOwnershipTransferred, To: FormatAddress(caller)},
		}, nil
	})
}

// OwnerMint mints one token to the owner without payment.
func (p *Proxy) OwnerMint(ctx context.Context, caller Address) (uint64, error) {
	var id uint64
	err := p.execute(ctx, "ownerMint", caller, func(s *State) ([]events.Event, error) {
		var err error
		if id, err = p.logic.OwnerMint(s, caller); err != nil {
			return nil, err
		}
		return []events.Event{{Type: events.EventTransfer, To: FormatAddress(s.Owner), TokenID: id}}, nil
	})
	metrics.RecordMint("owner", err)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Mint mints one token to caller against payment.
func (p *Proxy) Mint(ctx context.Context, caller Address, payment *big.Int) (uint64, error) {
	var id uint64
	err := p.execute(ctx, "mint", caller, func(s *State) ([]events.Event, error) {
		var err error
		if id, err = p.logic.Mint(s, caller, payment); err != nil {
			return nil, err
		}
		return []events.Event{{
			Type:    events.EventTransfer,
			To:      FormatAddress(caller),
			TokenID: id,
			Value:   payment.String(),
		}}, nil
	})
	metrics.RecordMint("public", err)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetBaseURI replaces the base URI for every token.
func (p *Proxy) SetBaseURI(ctx context.Context, caller Address, baseURI string) error {
	return p.execute(ctx, "setBaseURI", caller, func(s *State) ([]events.Event, error) {
		if err := p.logic.SetBaseURI(s, caller, baseURI); err != nil {
			return nil, err
		}
		return []events.Event{{
			Type:     events.EventBaseURIUpdated,
			From:     FormatAddress(caller),
			Metadata: map[string]string{"base_uri": baseURI},
		}}, nil
	})
}

// SetRoyaltyPercentage changes the royalty rate.
func (p *Proxy) SetRoyaltyPercentage(ctx context.Context, caller Address, pct uint64) error {
	return p.execute(ctx, "setRoyaltyPercentage", caller, func(s *State) ([]events.Event, error) {
		if err := p.logic.SetRoyaltyPercentage(s, caller, pct); err != nil {
			return nil, err
		}
		return []events.Event{{
			Type:  events.EventRoyaltyUpdated,
			From:  FormatAddress(caller),
			Value: strconv.FormatUint(pct, 10),
		}}, nil
	})
}

// TransferOwnership hands the owner role to newOwner. The royalty
// receiver stays where it is.
func (p *Proxy) TransferOwnership(ctx context.Context, caller, newOwner Address) error {
	return p.execute(ctx, "transferOwnership", caller, func(s *State) ([]events.Event, error) {
		if err := p.logic.TransferOwnership(s, caller, newOwner); err != nil {
			return nil, err
		}
		return []events.Event{{
			Type: events.EventOwnershipTransferred,
			From: FormatAddress(caller),
			To:   FormatAddress(newOwner),
		}}, nil
	})
}

// Withdraw pays out the retained mint proceeds to the owner.
func (p *Proxy) Withdraw(ctx context.Context, caller Address) (*big.Int, error) {
	var amount *big.Int
	err := p.execute(ctx, "withdraw", caller, func(s *State) ([]events.Event, error) {
		var err error
		if amount, err = p.logic.Withdraw(s, caller); err != nil {
			return nil, err
		}
		return []events.Event{{
			Type:  events.EventWithdrawn,
			To:    FormatAddress(caller),
			Value: amount.String(),
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// UpgradeTo points the proxy at next. Only the current logic's
// authorization check runs; storage is rewritten byte for byte.
func (p *Proxy) UpgradeTo(ctx context.Context, caller Address, next Logic) error {
	ev, err := p.upgrade(ctx, caller, next)
	if err != nil {
		return err
	}
	p.events.Emit(ctx, ev)
	return nil
}

func (p *Proxy) upgrade(ctx context.Context, caller Address, next Logic) (events.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.logic.AuthorizeUpgrade(p.state.Clone(), caller, next); err != nil {
		return events.Event{}, p.rejected("upgradeTo", caller, err)
	}
	if next == nil {
		return events.Event{}, p.rejected("upgradeTo", caller, ErrUnknownLogic)
	}
	if err := checkUpgradeLayout(p.logic.Layout(), p.state.LayoutVersion, next.Layout()); err != nil {
		return events.Event{}, p.rejected("upgradeTo", caller, err)
	}

	encoded := p.encoded
	if encoded == nil {
		var err error
		if encoded, err = MarshalState(p.state); err != nil {
			return events.Event{}, fmt.Errorf("upgradeTo: encode state: %w", err)
		}
	}
	if err := p.persist(ctx, next.Version(), encoded); err != nil {
		p.log.WithError(err).WithField("op", "upgradeTo").Error("upgrade failed, implementation unchanged")
		return events.Event{}, fmt.Errorf("upgradeTo: commit implementation: %w", err)
	}

	prev := p.logic.Version()
	p.logic = next
	p.encoded = encoded
	metrics.RecordUpgrade(next.Version())
	p.log.WithField("from", prev).WithField("to", next.Version()).Info("proxy upgraded")

	return events.Event{
		Type:     events.EventUpgraded,
		Contract: FormatAddress(p.address),
		From:     FormatAddress(caller),
		Metadata: map[string]string{"from": prev, "to": next.Version()},
	}, nil
}

// TokenURI returns the metadata URI of a minted token.
func (p *Proxy) TokenURI(id uint64) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	metrics.RecordQuery("tokenURI")
	uri, err := p.logic.TokenURI(p.state, id)
	if err != nil {
		return "", reject("tokenURI", ZeroAddress, err)
	}
	return uri, nil
}

// RoyaltyInfo returns the royalty receiver and amount for a sale.
func (p *Proxy) RoyaltyInfo(id uint64, salePrice *big.Int) (Address, *big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	metrics.RecordQuery("royaltyInfo")
	receiver, amount, err := p.logic.RoyaltyInfo(p.state, id, salePrice)
	if err != nil {
		return ZeroAddress, nil, reject("royaltyInfo", ZeroAddress, err)
	}
	return receiver, amount, nil
}

func (p *Proxy) OwnerOf(id uint64) (Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	metrics.RecordQuery("ownerOf")
	owner, err := p.logic.OwnerOf(p.state, id)
	if err != nil {
		return ZeroAddress, reject("ownerOf", ZeroAddress, err)
	}
	return owner, nil
}

func (p *Proxy) BalanceOf(holder Address) uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	metrics.RecordQuery("balanceOf")
	return p.logic.BalanceOf(p.state, holder)
}

func (p *Proxy) TotalSupply() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	metrics.RecordQuery("totalSupply")
	return p.state.TotalSupply
}

func (p *Proxy) Owner() Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Owner
}

func (p *Proxy) BaseURI() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.BaseURI
}

func (p *Proxy) RoyaltyPercentage() uint8 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.RoyaltyPercentage
}

// Proceeds returns the retained, not yet withdrawn mint payments.
func (p *Proxy) Proceeds() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.state.Proceeds)
}

// Implementation returns the current logic version.
func (p *Proxy) Implementation() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logic.Version()
}

// Snapshot returns a copy of the committed state.
func (p *Proxy) Snapshot() *State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Clone()
}

// StateBytes returns the committed state encoding, nil before the first commit.
func (p *Proxy) StateBytes() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.encoded == nil {
		return nil
	}
	return append([]byte(nil), p.encoded...)
}

func (p *Proxy) Address() Address { return p.address }
func (p *Proxy) Events() events.Log { return p.events }
func (p *Proxy) Name() string { return Name }
func (p *Proxy) Symbol() string { return Symbol }
func (p *Proxy) MaxSupply() uint64 { return MaxSupply }
func (p *Proxy) MintPrice() *big.Int { return MintPrice() }
