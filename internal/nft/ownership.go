package nft

import "math/big"

func requireInitialized(s *State) error {
	if !s.Initialized {
		return ErrNotInitialized
	}
	return nil
}

// requireOwner gates every privileged operation.
func requireOwner(s *State, caller Address) error {
	if err := requireInitialized(s); err != nil {
		return err
	}
	if !caller.Equals(s.Owner) {
		return ErrUnauthorized
	}
	return nil
}

func initialize(s *State, caller Address, baseURI string, pct uint64) error {
	if s.Initialized {
		return ErrAlreadyInitialized
	}
	if caller.Equals(ZeroAddress) {
		return ErrInvalidAddress
	}
	p, err := validRoyalty(pct)
	if err != nil {
		return err
	}
	s.Initialized = true
	s.Owner = caller
	s.RoyaltyReceiver = caller
	s.RoyaltyPercentage = p
	s.BaseURI = baseURI
	return nil
}

func transferOwnership(s *State, caller, next Address) error {
	if err := requireOwner(s, caller); err != nil {
		return err
	}
	if next.Equals(ZeroAddress) {
		return ErrInvalidAddress
	}
	s.Owner = next
	return nil
}

func withdraw(s *State, caller Address) (*big.Int, error) {
	if err := requireOwner(s, caller); err != nil {
		return nil, err
	}
	amount := new(big.Int)
	if s.Proceeds != nil {
		amount.Set(s.Proceeds)
	}
	s.Proceeds = new(big.Int)
	return amount, nil
}
