// Package permissions is the closed set of backend permission codes the
// console understands and the conjunctive check used to filter menus and
// commands.
//
// Checks here are advisory: the backend enforces every permission again.
package permissions

import (
	"fmt"
	"sort"
)

// Permission is one backend permission code, e.g. fleets.view_navytype.
type Permission uint8

const (
	ViewNavyType Permission = iota + 1
	AddNavyType
	ChangeNavyType
	DeleteNavyType

	ViewNavySize
	AddNavySize
	ChangeNavySize
	DeleteNavySize

	ViewNavyBrand
	AddNavyBrand
	ChangeNavyBrand
	DeleteNavyBrand

	ViewNavyMehvar
	AddNavyMehvar
	ChangeNavyMehvar
	DeleteNavyMehvar

	ViewNavyMain
	AddNavyMain
	ChangeNavyMain
	DeleteNavyMain

	ViewUser
	AddUser
	ChangeUser
	DeleteUser

	ViewProvince
	AddProvince
	ChangeProvince
	DeleteProvince

	ViewCity
	AddCity
	ChangeCity
	DeleteCity

	ViewActivityArea
	AddActivityArea
	ChangeActivityArea
	DeleteActivityArea

	ViewPermission
	AddPermission
	ChangePermission
	DeletePermission

	ViewGroup
	AddGroup
	ChangeGroup
	DeleteGroup

	ViewUsageType
	AddUsageType
	ChangeUsageType
	DeleteUsageType

	ViewActivityCategory
	AddActivityCategory
	ChangeActivityCategory
	DeleteActivityCategory

	maxPermission
)

var codes = [maxPermission]string{
	ViewNavyType:   "fleets.view_navytype",
	AddNavyType:    "fleets.add_navytype",
	ChangeNavyType: "fleets.change_navytype",
	DeleteNavyType: "fleets.delete_navytype",

	ViewNavySize:   "fleets.view_navysize",
	AddNavySize:    "fleets.add_navysize",
	ChangeNavySize: "fleets.change_navysize",
	DeleteNavySize: "fleets.delete_navysize",

	ViewNavyBrand:   "fleets.view_navybrand",
	AddNavyBrand:    "fleets.add_navybrand",
	ChangeNavyBrand: "fleets.change_navybrand",
	DeleteNavyBrand: "fleets.delete_navybrand",

	ViewNavyMehvar:   "fleets.view_navymehvar",
	AddNavyMehvar:    "fleets.add_navymehvar",
	ChangeNavyMehvar: "fleets.change_navymehvar",
	DeleteNavyMehvar: "fleets.delete_navymehvar",

	ViewNavyMain:   "fleets.view_navymain",
	AddNavyMain:    "fleets.add_navymain",
	ChangeNavyMain: "fleets.change_navymain",
	DeleteNavyMain: "fleets.delete_navymain",

	ViewUser:   "accounts.view_user",
	AddUser:    "accounts.add_user",
	ChangeUser: "accounts.change_user",
	DeleteUser: "accounts.delete_user",

	ViewProvince:   "regions.view_province",
	AddProvince:    "regions.add_province",
	ChangeProvince: "regions.change_province",
	DeleteProvince: "regions.delete_province",

	ViewCity:   "regions.view_city",
	AddCity:    "regions.add_city",
	ChangeCity: "regions.change_city",
	DeleteCity: "regions.delete_city",

	ViewActivityArea:   "regions.view_activityarea",
	AddActivityArea:    "regions.add_activityarea",
	ChangeActivityArea: "regions.change_activityarea",
	DeleteActivityArea: "regions.delete_activityarea",

	ViewPermission:   "auth.view_permission",
	AddPermission:    "auth.add_permission",
	ChangePermission: "auth.change_permission",
	DeletePermission: "auth.delete_permission",

	ViewGroup:   "auth.view_group",
	AddGroup:    "auth.add_group",
	ChangeGroup: "auth.change_group",
	DeleteGroup: "auth.delete_group",

	ViewUsageType:   "usages.view_usagetype",
	AddUsageType:    "usages.add_usagetype",
	ChangeUsageType: "usages.change_usagetype",
	DeleteUsageType: "usages.delete_usagetype",

	ViewActivityCategory:   "sectors.view_activitycategory",
	AddActivityCategory:    "sectors.add_activitycategory",
	ChangeActivityCategory: "sectors.change_activitycategory",
	DeleteActivityCategory: "sectors.delete_activitycategory",
}

var byCode = func() map[string]Permission {
	m := make(map[string]Permission, len(codes))
	for p, c := range codes {
		if c != "" {
			m[c] = Permission(p)
		}
	}
	return m
}()

func (p Permission) String() string {
	if p == 0 || p >= maxPermission {
		return fmt.Sprintf("Permission(%d)", uint8(p))
	}
	return codes[p]
}

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	return p > 0 && p < maxPermission
}

// Parse maps a backend code to a Permission.
func Parse(code string) (Permission, bool) {
	p, ok := byCode[code]
	return p, ok
}

// All returns every known permission in declaration order.
func All() []Permission {
	out := make([]Permission, 0, maxPermission-1)
	for p := Permission(1); p < maxPermission; p++ {
		out = append(out, p)
	}
	return out
}

// Set is an immutable set of permissions. The zero value is empty.
type Set struct {
	bits [2]uint64
}

// NewSet builds a set from known permissions; invalid values are dropped.
func NewSet(perms ...Permission) Set {
	var s Set
	for _, p := range perms {
		if p.Valid() {
			s.bits[p/64] |= 1 << (p % 64)
		}
	}
	return s
}

// FromCodes parses backend codes. Codes the console does not know are
// returned in unknown so the caller can report them.
func FromCodes(list []string) (s Set, unknown []string) {
	perms := make([]Permission, 0, len(list))
	for _, c := range list {
		p, ok := Parse(c)
		if !ok {
			unknown = append(unknown, c)
			continue
		}
		perms = append(perms, p)
	}
	return NewSet(perms...), unknown
}

func (s Set) Has(p Permission) bool {
	if !p.Valid() {
		return false
	}
	return s.bits[p/64]&(1<<(p%64)) != 0
}

// HasAll reports whether every required permission is in s. An empty
// requirement is always satisfied.
func (s Set) HasAll(required ...Permission) bool {
	for _, p := range required {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

func (s Set) Len() int {
	n := 0
	for p := Permission(1); p < maxPermission; p++ {
		if s.Has(p) {
			n++
		}
	}
	return n
}

// Codes returns the backend codes of s, sorted.
func (s Set) Codes() []string {
	var out []string
	for p := Permission(1); p < maxPermission; p++ {
		if s.Has(p) {
			out = append(out, codes[p])
		}
	}
	sort.Strings(out)
	return out
}
