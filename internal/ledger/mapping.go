package ledger

import (
	"fmt"
	"sort"
)

// Role is the meaning a detector assigns to a ledger column.
type Role string

const (
	RoleID       Role = "id"
	RoleDate     Role = "date"
	RoleAmount   Role = "amount"
	RoleEntity   Role = "entity"
	RoleSender   Role = "sender"
	RoleReceiver Role = "receiver"
	RoleName     Role = "name"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleID, RoleDate, RoleAmount, RoleEntity, RoleSender, RoleReceiver, RoleName}

// Mapping binds roles to column names of a Table.
type Mapping map[Role]string

// DefaultMapping returns the column names produced by the sample generator
// and expected from CSV/JSON exports.
func DefaultMapping() Mapping {
	return Mapping{
		RoleID:       "transaction_id",
		RoleDate:     "date",
		RoleAmount:   "amount",
		RoleEntity:   "vendor_id",
		RoleSender:   "sender_id",
		RoleReceiver: "receiver_id",
		RoleName:     "vendor_name",
	}
}

// WithOverrides returns a copy of m where every non-empty override replaces
// the default column name.
func (m Mapping) WithOverrides(overrides map[Role]string) Mapping {
	out := make(Mapping, len(m))
	for role, column := range m {
		out[role] = column
	}
	for role, column := range overrides {
		if column != "" {
			out[role] = column
		}
	}
	return out
}

// Validate rejects roles that are not known to the engine.
func (m Mapping) Validate() error {
	known := make(map[Role]bool, len(Roles))
	for _, r := range Roles {
		known[r] = true
	}
	var unknown []string
	for role := range m {
		if !known[role] {
			unknown = append(unknown, string(role))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("mapping: unknown roles %v", unknown)
	}
	return nil
}

// ParseMapping returns the default mapping with overrides keyed by role
// name, rejecting unknown roles.
func ParseMapping(overrides map[string]string) (Mapping, error) {
	typed := make(map[Role]string, len(overrides))
	for role, column := range overrides {
		typed[Role(role)] = column
	}
	m := DefaultMapping().WithOverrides(typed)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
