package nft

import "strconv"

// DeriveTokenURI joins baseURI, the decimal id and ".json".
func DeriveTokenURI(baseURI string, id uint64) string {
	return baseURI + strconv.FormatUint(id, 10) + ".json"
}

func tokenURI(s *State, id uint64) (string, error) {
	if id == 0 || id > s.TotalSupply {
		return "", ErrNonexistentToken
	}
	return DeriveTokenURI(s.BaseURI, id), nil
}
