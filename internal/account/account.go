// Package account derives the deterministic development accounts used by
// the CLI to deploy, mint and upgrade locally.
package account

import (
	"crypto/elliptic"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"golang.org/x/crypto/hkdf"

	"github.com/R3E-Network/nft_layer/internal/nft"
)

// DefaultSeed is used when no seed is configured.
const DefaultSeed = "nft-layer-dev"

var hkdfSalt = []byte("nft-layer-accounts")

// ErrNoSeed is returned when derivation is asked for without a seed.
var ErrNoSeed = errors.New("account seed is required")

// Account is a derived signer identity. The private key stays inside.
type Account struct {
	Index     int
	Address   nft.Address
	PublicKey string
}

// String returns the N3 address.
func (a Account) String() string {
	return nft.FormatAddress(a.Address)
}

// Derive returns the first n accounts for seed. The same seed always
// yields the same accounts.
func Derive(seed string, n int) ([]Account, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, ErrNoSeed
	}
	if n < 0 {
		return nil, fmt.Errorf("account count %d: must not be negative", n)
	}

	out := make([]Account, 0, n)
	for i := 0; i < n; i++ {
		priv, err := deriveKey(seed, i)
		if err != nil {
			return nil, fmt.Errorf("derive account %d: %w", i, err)
		}
		pub := priv.PublicKey()
		out = append(out, Account{
			Index:     i,
			Address:   pub.GetScriptHash(),
			PublicKey: pub.StringCompressed(),
		})
	}
	return out, nil
}

// At returns account i for seed.
func At(seed string, i int) (Account, error) {
	if i < 0 {
		return Account{}, fmt.Errorf("account index %d: must not be negative", i)
	}
	accounts, err := Derive(seed, i+1)
	if err != nil {
		return Account{}, err
	}
	return accounts[i], nil
}

// Resolve accepts either an account index ("0", "1", ...) or an address.
func Resolve(seed, ref string) (nft.Address, error) {
	ref = strings.TrimSpace(ref)
	if i, err := strconv.Atoi(ref); err == nil {
		acc, err := At(seed, i)
		if err != nil {
			return nft.ZeroAddress, err
		}
		return acc.Address, nil
	}
	return nft.ParseAddress(ref)
}

func deriveKey(seed string, i int) (*keys.PrivateKey, error) {
	info := []byte("account-" + strconv.Itoa(i))
	reader := hkdf.New(sha256.New, []byte(seed), hkdfSalt, info)

	okm := make([]byte, 32)
	if _, err := io.ReadFull(reader, okm); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	// Map into [1, n-1].
	n := elliptic.P256().Params().N
	d := new(big.Int).SetBytes(okm)
	d.Mod(d, new(big.Int).Sub(n, big.NewInt(1)))
	d.Add(d, big.NewInt(1))

	priv, err := keys.NewPrivateKeyFromBytes(d.FillBytes(make([]byte, 32)))
	if err != nil {
		return nil, fmt.Errorf("create neo private key: %w", err)
	}
	return priv, nil
}
