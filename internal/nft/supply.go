package nft

// MaxSupply is the immutable token cap.
const MaxSupply uint64 = 10

// mintNext assigns the next sequential id to recipient. Ids start at 1
// and are never reused.
func mintNext(s *State, recipient Address) (uint64, error) {
	if s.TotalSupply >= MaxSupply {
		return 0, ErrSupplyExceeded
	}
	s.TotalSupply++
	id := s.TotalSupply
	s.Owners[id] = recipient
	s.Balances[recipient]++
	return id, nil
}

func ownerOf(s *State, id uint64) (Address, error) {
	owner, ok := s.Owners[id]
	if !ok {
		return ZeroAddress, ErrNonexistentToken
	}
	return owner, nil
}

func balanceOf(s *State, holder Address) uint64 {
	return s.Balances[holder]
}
