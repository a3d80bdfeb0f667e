// Package deploy creates and upgrades proxies: deploy derives a proxy
// address, binds it to a logic version and runs Initialize in the same
// step; upgrade swaps the logic behind an existing address.
package deploy

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"

	"github.com/R3E-Network/nft_layer/internal/events"
	"github.com/R3E-Network/nft_layer/internal/nft"
	"github.com/R3E-Network/nft_layer/internal/storage"
	"github.com/R3E-Network/nft_layer/pkg/logger"
)

// ErrAlreadyDeployed is returned when the derived address is taken.
var ErrAlreadyDeployed = errors.New("proxy already deployed at address")

// Request describes a deployment.
type Request struct {
	// Version selects the logic; empty means latest.
	Version           string
	BaseURI           string
	RoyaltyPercentage uint64
	// Salt makes the address reproducible; empty means random.
	Salt string
}

// Summary is a stored proxy as listed by the manager.
type Summary struct {
	Address        string    `json:"address"`
	Implementation string    `json:"implementation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Manager owns the open proxies of one store.
type Manager struct {
	mu       sync.Mutex
	store    storage.Store
	registry *nft.Registry
	events   events.Log
	log      *logger.Logger
	proxies  map[nft.Address]*nft.Proxy
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithEvents(log events.Log) Option {
	return func(m *Manager) {
		if log != nil {
			m.events = log
		}
	}
}

// NewManager creates a manager over store. A nil registry means the
// default one.
func NewManager(store storage.Store, registry *nft.Registry, opts ...Option) *Manager {
	if registry == nil {
		registry = nft.DefaultRegistry()
	}
	m := &Manager{
		store:    store,
		registry: registry,
		events:   events.Discard{},
		log:      logger.NewDefault("deploy"),
		proxies:  make(map[nft.Address]*nft.Proxy),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ContractAddress derives the proxy address for deployer and salt the
// way the chain derives contract hashes from sender, checksum and name.
func ContractAddress(deployer nft.Address, salt string) nft.Address {
	checksum := binary.LittleEndian.Uint32(hash.Checksum([]byte(salt)))
	return state.CreateContractHash(deployer, checksum, nft.Name)
}

// DeployProxy deploys and initializes a proxy. The deployer becomes the
// owner and royalty receiver.
func (m *Manager) DeployProxy(ctx context.Context, deployer nft.Address, req Request) (*nft.Proxy, error) {
	logic, err := m.registry.Resolve(req.Version)
	if err != nil {
		return nil, fmt.Errorf("deploy: %w", err)
	}
	salt := req.Salt
	if salt == "" {
		salt = uuid.NewString()
	}
	addr := ContractAddress(deployer, salt)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.proxies[addr]; ok {
		return nil, fmt.Errorf("deploy %s: %w", nft.FormatAddress(addr), ErrAlreadyDeployed)
	}
	_, err = m.store.Load(ctx, nft.FormatAddress(addr))
	switch {
	case err == nil:
		return nil, fmt.Errorf("deploy %s: %w", nft.FormatAddress(addr), ErrAlreadyDeployed)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("deploy %s: %w", nft.FormatAddress(addr), err)
	}

	p, err := nft.NewProxy(addr, m.store, logic, m.proxyOptions()...)
	if err != nil {
		return nil, fmt.Errorf("deploy: %w", err)
	}
	if err := p.Initialize(ctx, deployer, req.BaseURI, req.RoyaltyPercentage); err != nil {
		return nil, fmt.Errorf("deploy %s: %w", nft.FormatAddress(addr), err)
	}
	m.proxies[addr] = p

	m.log.WithField("proxy", nft.FormatAddress(addr)).
		WithField("deployer", nft.FormatAddress(deployer)).
		WithField("implementation", logic.Version()).
		Info("proxy deployed")
	return p, nil
}

// UpgradeProxy points the proxy at version (empty means latest).
func (m *Manager) UpgradeProxy(ctx context.Context, addr, caller nft.Address, version string) (*nft.Proxy, error) {
	logic, err := m.registry.Resolve(version)
	if err != nil {
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	p, err := m.Proxy(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := p.UpgradeTo(ctx, caller, logic); err != nil {
		return nil, fmt.Errorf("upgrade %s: %w", nft.FormatAddress(addr), err)
	}
	return p, nil
}

// Proxy returns the open proxy at addr, loading it from the store once.
func (m *Manager) Proxy(ctx context.Context, addr nft.Address) (*nft.Proxy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.proxies[addr]; ok {
		return p, nil
	}
	p, err := nft.Open(ctx, addr, m.store, m.registry, m.proxyOptions()...)
	if err != nil {
		return nil, err
	}
	m.proxies[addr] = p
	return p, nil
}

// List returns every stored proxy, oldest first.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	records, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list proxies: %w", err)
	}
	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, Summary{
			Address:        rec.Address,
			Implementation: rec.Implementation,
			CreatedAt:      rec.CreatedAt,
			UpdatedAt:      rec.UpdatedAt,
		})
	}
	return out, nil
}

// Registry returns the logic registry.
func (m *Manager) Registry() *nft.Registry { return m.registry }

func (m *Manager) proxyOptions() []nft.Option {
	return []nft.Option{
		nft.WithLogger(m.log.Named("nft")),
		nft.WithEvents(m.events),
	}
}
