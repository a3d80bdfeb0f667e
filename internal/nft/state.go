package nft

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// State is the contract storage owned by the proxy. Logic versions read
// and mutate it but never hold it.
type State struct {
	LayoutVersion     uint32
	Initialized       bool
	Owner             Address
	TotalSupply       uint64
	BaseURI           string
	RoyaltyReceiver   Address
	RoyaltyPercentage uint8
	Owners            map[uint64]Address
	Balances          map[Address]uint64
	Proceeds          *big.Int
}

// NewState returns empty, uninitialized storage.
func NewState() *State {
	return &State{
		Owners:   make(map[uint64]Address),
		Balances: make(map[Address]uint64),
		Proceeds: new(big.Int),
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := *s
	out.Owners = make(map[uint64]Address, len(s.Owners))
	for id, owner := range s.Owners {
		out.Owners[id] = owner
	}
	out.Balances = make(map[Address]uint64, len(s.Balances))
	for holder, n := range s.Balances {
		out.Balances[holder] = n
	}
	out.Proceeds = new(big.Int)
	if s.Proceeds != nil {
		out.Proceeds.Set(s.Proceeds)
	}
	return &out
}

type stateRecord struct {
	LayoutVersion     uint32            `json:"layoutVersion"`
	Initialized       bool              `json:"initialized"`
	Owner             string            `json:"owner"`
	TotalSupply       uint64            `json:"totalSupply"`
	BaseURI           string            `json:"baseURI"`
	RoyaltyReceiver   string            `json:"royaltyReceiver"`
	RoyaltyPercentage uint8             `json:"royaltyPercentage"`
	Owners            map[string]string `json:"owners"`
	Balances          map[string]uint64 `json:"balances"`
	Proceeds          string            `json:"proceeds"`
}

// MarshalState encodes s. The encoding is deterministic: map keys are
// sorted by encoding/json.
func MarshalState(s *State) ([]byte, error) {
	rec := stateRecord{
		LayoutVersion:     s.LayoutVersion,
		Initialized:       s.Initialized,
		Owner:             s.Owner.StringLE(),
		TotalSupply:       s.TotalSupply,
		BaseURI:           s.BaseURI,
		RoyaltyReceiver:   s.RoyaltyReceiver.StringLE(),
		RoyaltyPercentage: s.RoyaltyPercentage,
		Owners:            make(map[string]string, len(s.Owners)),
		Balances:          make(map[string]uint64, len(s.Balances)),
		Proceeds:          "0",
	}
	for id, owner := range s.Owners {
		rec.Owners[strconv.FormatUint(id, 10)] = owner.StringLE()
	}
	for holder, n := range s.Balances {
		rec.Balances[holder.StringLE()] = n
	}
	if s.Proceeds != nil {
		rec.Proceeds = s.Proceeds.String()
	}
	return json.Marshal(rec)
}

// UnmarshalState decodes and validates stored state.
func UnmarshalState(data []byte) (*State, error) {
	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}

	s := NewState()
	s.LayoutVersion = rec.LayoutVersion
	s.Initialized = rec.Initialized
	s.TotalSupply = rec.TotalSupply
	s.BaseURI = rec.BaseURI
	s.RoyaltyPercentage = rec.RoyaltyPercentage

	var err error
	if s.Owner, err = decodeHash(rec.Owner); err != nil {
		return nil, fmt.Errorf("decode state owner: %w", err)
	}
	if s.RoyaltyReceiver, err = decodeHash(rec.RoyaltyReceiver); err != nil {
		return nil, fmt.Errorf("decode state royalty receiver: %w", err)
	}
	for key, value := range rec.Owners {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode state token id %q: %w", key, err)
		}
		if id == 0 || id > rec.TotalSupply {
			return nil, fmt.Errorf("decode state: token %d outside minted range", id)
		}
		if s.Owners[id], err = decodeHash(value); err != nil {
			return nil, fmt.Errorf("decode state owner of %d: %w", id, err)
		}
	}
	for key, n := range rec.Balances {
		holder, err := decodeHash(key)
		if err != nil {
			return nil, fmt.Errorf("decode state balance holder: %w", err)
		}
		s.Balances[holder] = n
	}
	if rec.Proceeds != "" {
		if _, ok := s.Proceeds.SetString(rec.Proceeds, 10); !ok {
			return nil, fmt.Errorf("decode state proceeds %q: %w", rec.Proceeds, ErrInvalidAmount)
		}
	}

	if s.TotalSupply > MaxSupply {
		return nil, fmt.Errorf("decode state: total supply %d: %w", s.TotalSupply, ErrSupplyExceeded)
	}
	if s.RoyaltyPercentage > 100 {
		return nil, fmt.Errorf("decode state: %w", ErrInvalidRoyalty)
	}
	if uint64(len(s.Owners)) != s.TotalSupply {
		return nil, fmt.Errorf("decode state: %d owners for total supply %d", len(s.Owners), s.TotalSupply)
	}
	held := make(map[Address]uint64, len(s.Balances))
	for _, holder := range s.Owners {
		held[holder]++
	}
	for holder, n := range held {
		if s.Balances[holder] != n {
			return nil, fmt.Errorf("decode state: balance of %s is %d, owns %d", holder.StringLE(), s.Balances[holder], n)
		}
	}
	for holder, n := range s.Balances {
		if n != held[holder] {
			return nil, fmt.Errorf("decode state: balance of %s is %d, owns %d", holder.StringLE(), n, held[holder])
		}
	}
	return s, nil
}

func decodeHash(s string) (Address, error) {
	if s == "" {
		return ZeroAddress, nil
	}
	return util.Uint160DecodeStringLE(s)
}
