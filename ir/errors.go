package ir

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAsset is matched by every InvalidAssetError.
	ErrInvalidAsset = errors.New("invalid asset")
	// ErrLookup is matched by every LookupError.
	ErrLookup = errors.New("asset lookup failed")
)

// InvalidAssetError reports an attribute that cannot be assigned to a schema asset.
type InvalidAssetError struct {
	Asset    string // column, table, index, ...
	Name     string
	Property string
	Reason   string
}

func (e *InvalidAssetError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Asset, e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: property %q %s", e.Asset, e.Name, e.Property, e.Reason)
}

func (e *InvalidAssetError) Unwrap() error {
	return ErrInvalidAsset
}

// LookupError reports a named sub-asset that is missing from its container,
// or that already exists when a new one with the same name is created.
type LookupError struct {
	Container string // e.g. `table "users"`
	Kind      string // column, index, foreign key, ...
	Name      string
	Exists    bool
}

func (e *LookupError) Error() string {
	if e.Exists {
		return fmt.Sprintf("%s %q already exists in %s", e.Kind, e.Name, e.Container)
	}
	return fmt.Sprintf("%s %q does not exist in %s", e.Kind, e.Name, e.Container)
}

func (e *LookupError) Unwrap() error {
	return ErrLookup
}

func invalid(asset, name, property, reason string) error {
	return &InvalidAssetError{Asset: asset, Name: name, Property: property, Reason: reason}
}

func missing(container, kind, name string) error {
	return &LookupError{Container: container, Kind: kind, Name: name}
}

func duplicate(container, kind, name string) error {
	return &LookupError{Container: container, Kind: kind, Name: name, Exists: true}
}
