package nft

import "math/big"

var hundred = big.NewInt(100)

// royaltyInfo answers for any token id, minted or not. The amount is
// floor(salePrice * pct / 100).
func royaltyInfo(s *State, salePrice *big.Int) (Address, *big.Int, error) {
	if salePrice == nil {
		salePrice = new(big.Int)
	}
	if salePrice.Sign() < 0 {
		return ZeroAddress, nil, ErrInvalidAmount
	}
	amount := new(big.Int).Mul(salePrice, big.NewInt(int64(s.RoyaltyPercentage)))
	amount.Quo(amount, hundred)
	return s.RoyaltyReceiver, amount, nil
}

func validRoyalty(pct uint64) (uint8, error) {
	if pct > 100 {
		return 0, ErrInvalidRoyalty
	}
	return uint8(pct), nil
}
