package nft

import "math/big"

const (
	Name   = "SampleNFTUpgradable"
	Symbol = "SNFTU"
)

// Logic is one implementation version. Implementations hold no state of
// their own: every call receives the proxy's storage and either mutates
// it or returns an error. The proxy discards the mutation on error.
type Logic interface {
	Version() string
	Layout() StorageLayout

	Initialize(s *State, caller Address, baseURI string, royaltyPercentage uint64) error
	OwnerMint(s *State, caller Address) (uint64, error)
	Mint(s *State, caller Address, payment *big.Int) (uint64, error)
	SetBaseURI(s *State, caller Address, baseURI string) error
	SetRoyaltyPercentage(s *State, caller Address, pct uint64) error
	TransferOwnership(s *State, caller, newOwner Address) error
	Withdraw(s *State, caller Address) (*big.Int, error)

	TokenURI(s *State, id uint64) (string, error)
	OwnerOf(s *State, id uint64) (Address, error)
	BalanceOf(s *State, holder Address) uint64
	RoyaltyInfo(s *State, id uint64, salePrice *big.Int) (Address, *big.Int, error)

	// AuthorizeUpgrade is the only logic code run during an upgrade. The
	// proxy checks storage layout compatibility itself.
	AuthorizeUpgrade(s *State, caller Address, next Logic) error
}

// V1 is the first implementation.
type V1 struct{}

var _ Logic = V1{}

func (V1) Version() string { return "v1" }
func (V1) Layout() StorageLayout { return LayoutV1 }

func (V1) Initialize(s *State, caller Address, baseURI string, pct uint64) error {
	return initialize(s, caller, baseURI, pct)
}

func (V1) OwnerMint(s *State, caller Address) (uint64, error) {
	if err := requireOwner(s, caller); err != nil {
		return 0, err
	}
	return mintNext(s, s.Owner)
}

// Mint checks the payment before touching supply.
func (V1) Mint(s *State, caller Address, payment *big.Int) (uint64, error) {
	if err := requireInitialized(s); err != nil {
		return 0, err
	}
	paid, err := checkPayment(payment)
	if err != nil {
		return 0, err
	}
	id, err := mintNext(s, caller)
	if err != nil {
		return 0, err
	}
	collect(s, paid)
	return id, nil
}

func (V1) SetBaseURI(s *State, caller Address, baseURI string) error {
	if err := requireOwner(s, caller); err != nil {
		return err
	}
	s.BaseURI = baseURI
	return nil
}

func (V1) SetRoyaltyPercentage(s *State, caller Address, pct uint64) error {
	if err := requireOwner(s, caller); err != nil {
		return err
	}
	p, err := validRoyalty(pct)
	if err != nil {
		return err
	}
	s.RoyaltyPercentage = p
	return nil
}

func (V1) TransferOwnership(s *State, caller, newOwner Address) error {
	return transferOwnership(s, caller, newOwner)
}

func (V1) Withdraw(s *State, caller Address) (*big.Int, error) {
	return withdraw(s, caller)
}

func (V1) TokenURI(s *State, id uint64) (string, error) {
	return tokenURI(s, id)
}

func (V1) OwnerOf(s *State, id uint64) (Address, error) {
	return ownerOf(s, id)
}

func (V1) BalanceOf(s *State, holder Address) uint64 {
	return balanceOf(s, holder)
}

func (V1) RoyaltyInfo(s *State, _ uint64, salePrice *big.Int) (Address, *big.Int, error) {
	return royaltyInfo(s, salePrice)
}

func (V1) AuthorizeUpgrade(s *State, caller Address, next Logic) error {
	if err := requireOwner(s, caller); err != nil {
		return err
	}
	if next == nil {
		return ErrUnknownLogic
	}
	return nil
}
