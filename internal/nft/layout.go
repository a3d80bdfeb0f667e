package nft

import "fmt"

// Slot is one named field of persistent storage.
type Slot struct {
	Name string
	Type string
}

// StorageLayout is the ordered slot list a logic version reads and writes.
type StorageLayout struct {
	Version uint32
	Slots   []Slot
}

// LayoutV1 describes State as written by V1.
var LayoutV1 = StorageLayout{
	Version: 1,
	Slots: []Slot{
		{Name: "layoutVersion", Type: "uint32"},
		{Name: "initialized", Type: "bool"},
		{Name: "owner", Type: "Hash160"},
		{Name: "totalSupply", Type: "uint64"},
		{Name: "baseURI", Type: "string"},
		{Name: "royaltyReceiver", Type: "Hash160"},
		{Name: "royaltyPercentage", Type: "uint8"},
		{Name: "owners", Type: "map[uint64]Hash160"},
		{Name: "balances", Type: "map[Hash160]uint64"},
		{Name: "proceeds", Type: "BigInteger"},
	},
}

// Extends reports whether l can take over storage written with prev:
// every slot of prev must appear at the same position with the same name
// and type. New slots may only be appended.
func (l StorageLayout) Extends(prev StorageLayout) error {
	if l.Version < prev.Version {
		return fmt.Errorf("%w: layout version %d is older than %d", ErrIncompatibleLayout, l.Version, prev.Version)
	}
	if len(l.Slots) < len(prev.Slots) {
		return fmt.Errorf("%w: %d slots removed", ErrIncompatibleLayout, len(prev.Slots)-len(l.Slots))
	}
	for i, slot := range prev.Slots {
		got := l.Slots[i]
		if got.Name != slot.Name {
			return fmt.Errorf("%w: slot %d is %q, was %q", ErrIncompatibleLayout, i, got.Name, slot.Name)
		}
		if got.Type != slot.Type {
			return fmt.Errorf("%w: slot %q changed type %s -> %s", ErrIncompatibleLayout, slot.Name, slot.Type, got.Type)
		}
	}
	return nil
}

// checkUpgradeLayout reports whether next may take over storage served by
// current and last written with layout version stored.
func checkUpgradeLayout(current StorageLayout, stored uint32, next StorageLayout) error {
	if next.Version < stored {
		return fmt.Errorf("%w: layout version %d is older than stored version %d", ErrIncompatibleLayout, next.Version, stored)
	}
	return next.Extends(current)
}
