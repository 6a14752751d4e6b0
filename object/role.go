package object

import (
	"encoding/json"
	"fmt"
)

// Role describes where an object belongs in a piece of terrain. Roles sort
// in declaration order.
type Role int

// Picture a square block of land with a square hole in the middle. The edge
// roles are laid out like this, the inner corners being those around the
// hole:
//
//	tl  t   t   t   t   t   t   tr
//	l   m   m   m   m   m   m   r
//	l   m   itl b   b   itr m   r
//	l   m   r           l   m   r
//	l   m   ibl t   t   ibr m   r
//	l   m   m   m   m   m   m   r
//	bl  b   b   b   b   b   b   br
const (
	RoleTop Role = iota
	RoleMiddle
	RoleBottom
	RoleLeft
	RoleRight
	RoleTopLeft
	RoleTopRight
	RoleBottomLeft
	RoleBottomRight
	RoleInnerTopLeft
	RoleInnerTopRight
	RoleInnerBottomLeft
	RoleInnerBottomRight
	RoleTopSlope
	RoleBottomSlope
	RoleOther
	RoleUnknown
)

var roles = [...]struct {
	code  string
	label string
}{
	RoleTop:              {"t", "top ground"},
	RoleMiddle:           {"m", "middle ground"},
	RoleBottom:           {"b", "ceiling"},
	RoleLeft:             {"l", "left wall"},
	RoleRight:            {"r", "right wall"},
	RoleTopLeft:          {"tl", "top-left corner"},
	RoleTopRight:         {"tr", "top-right corner"},
	RoleBottomLeft:       {"bl", "bottom-left corner"},
	RoleBottomRight:      {"br", "bottom-right corner"},
	RoleInnerTopLeft:     {"itl", "inner top-left corner"},
	RoleInnerTopRight:    {"itr", "inner top-right corner"},
	RoleInnerBottomLeft:  {"ibl", "inner bottom-left corner"},
	RoleInnerBottomRight: {"ibr", "inner bottom-right corner"},
	RoleTopSlope:         {"ts", "top sloped ground"},
	RoleBottomSlope:      {"bs", "ceiling slope"},
	RoleOther:            {"o", "other"},
	RoleUnknown:          {"?", "unknown"},
}

func (r Role) valid() bool {
	return r >= RoleTop && r <= RoleUnknown
}

// Rank returns the sort position of the role. Unrecognised roles rank with
// RoleUnknown.
func (r Role) Rank() int {
	if !r.valid() {
		return int(RoleUnknown)
	}
	return int(r)
}

// Code returns the short code used in portable metadata.
func (r Role) Code() string {
	if !r.valid() {
		return roles[RoleUnknown].code
	}
	return roles[r].code
}

func (r Role) String() string {
	if !r.valid() {
		return roles[RoleUnknown].label
	}
	return roles[r].label
}

// IsSlope reports whether the role is one of the slope roles.
func (r Role) IsSlope() bool {
	return r == RoleTopSlope || r == RoleBottomSlope
}

// ParseRole returns the role with the given short code.
func ParseRole(code string) (Role, error) {
	for i, info := range roles {
		if info.code == code {
			return Role(i), nil
		}
	}
	return RoleUnknown, fmt.Errorf("object: unknown role %q", code)
}

// MarshalJSON encodes the role as its short code
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Code())
}

// UnmarshalJSON decodes a role from its short code
func (r *Role) UnmarshalJSON(b []byte) error {
	var code string
	if err := json.Unmarshal(b, &code); err != nil {
		return err
	}
	role, err := ParseRole(code)
	if err != nil {
		return err
	}
	*r = role
	return nil
}
