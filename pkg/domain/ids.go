// Package domain defines typed identifiers and enumerations shared across
// the registry. Typed UUIDs prevent cross-entity id assignment at compile
// time; construct them via the Parse functions at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "warmpath/pkg/domain-errors"
)

// Typed identifiers. Distinct types so a ContactID can never be passed
// where a ProspectID is expected.
type (
	TenantID   uuid.UUID
	ContactID  uuid.UUID
	ProspectID uuid.UUID
)

func (id TenantID) String() string   { return uuid.UUID(id).String() }
func (id ContactID) String() string  { return uuid.UUID(id).String() }
func (id ProspectID) String() string { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ContactID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ProspectID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling renders ids as canonical UUID strings in JSON and
// storage, not as raw byte arrays.

func (id TenantID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id ContactID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id ProspectID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *TenantID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = TenantID(u)
	return nil
}

func (id *ContactID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ContactID(u)
	return nil
}

func (id *ProspectID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ProspectID(u)
	return nil
}

// NewContactID returns a fresh random contact id.
func NewContactID() ContactID { return ContactID(uuid.New()) }

// NewProspectID returns a fresh random prospect id.
func NewProspectID() ProspectID { return ProspectID(uuid.New()) }

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// ParseTenantID constructs a TenantID from external input.
func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(u), nil
}

// ParseContactID constructs a ContactID from external input.
func ParseContactID(s string) (ContactID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ContactID{}, err
	}
	return ContactID(u), nil
}

// ParseProspectID constructs a ProspectID from external input.
func ParseProspectID(s string) (ProspectID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ProspectID{}, err
	}
	return ProspectID(u), nil
}
