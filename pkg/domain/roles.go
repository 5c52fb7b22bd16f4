package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RolesKind tags the shape a role value takes. Role assignments are
// polymorphic at the edges of the system: a user may carry no role, a single
// role string, or an ordered list of role strings, and required-role checks
// accept the same three shapes.
type RolesKind int

const (
	RolesNone RolesKind = iota
	RolesSingle
	RolesMany
)

// Roles is the tagged variant over the three role shapes.
//
// Usage: construct via NoRoles, Role, or RoleList; inspect via Kind and the
// matching accessor. The zero value is RolesNone.
type Roles struct {
	kind RolesKind
	one  string
	many []string
}

// NoRoles is the absent role value.
func NoRoles() Roles { return Roles{} }

// Role wraps a single role string.
func Role(name string) Roles { return Roles{kind: RolesSingle, one: name} }

// RoleList wraps an ordered sequence of role strings. An empty list still
// has the Many shape; membership checks against it simply never match.
func RoleList(names ...string) Roles {
	return Roles{kind: RolesMany, many: names}
}

// Kind reports the shape tag.
func (r Roles) Kind() RolesKind { return r.kind }

// IsNone reports whether no role value is present.
func (r Roles) IsNone() bool { return r.kind == RolesNone }

// Single returns the role string; only meaningful when Kind is RolesSingle.
func (r Roles) Single() string { return r.one }

// Many returns the role list; only meaningful when Kind is RolesMany.
func (r Roles) Many() []string { return r.many }

// Contains reports whether name is among the carried roles. None never
// matches anything.
func (r Roles) Contains(name string) bool {
	switch r.kind {
	case RolesSingle:
		return r.one == name
	case RolesMany:
		for _, candidate := range r.many {
			if candidate == name {
				return true
			}
		}
	}
	return false
}

// ParseRoles reconstructs a Roles value from its stored text form: empty
// means none, a comma-separated list means many, anything else is a single
// role. The inverse of EncodeText.
func ParseRoles(s string) Roles {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoRoles()
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				names = append(names, p)
			}
		}
		if len(names) == 0 {
			return NoRoles()
		}
		return RoleList(names...)
	}
	return Role(s)
}

// EncodeText renders the value for storage in a single text column.
func (r Roles) EncodeText() string {
	switch r.kind {
	case RolesSingle:
		return r.one
	case RolesMany:
		return strings.Join(r.many, ",")
	default:
		return ""
	}
}

// MarshalJSON preserves the polymorphic wire shape: null, "role", or
// ["role", ...].
func (r Roles) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case RolesSingle:
		return json.Marshal(r.one)
	case RolesMany:
		return json.Marshal(r.many)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a string, or a list of strings.
func (r *Roles) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*r = NoRoles()
	case string:
		*r = Role(v)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("roles list must contain only strings, got %T", item)
			}
			names = append(names, s)
		}
		*r = RoleList(names...)
	default:
		return fmt.Errorf("roles must be null, a string, or a list of strings, got %T", raw)
	}
	return nil
}
