package models

import "github.com/dmitrijs2005/fleetadmin/internal/common"

// UserProfile is the /user/me response.
type UserProfile struct {
	ID          int64    `json:"id"`
	Phone       string   `json:"phone"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	IsSuperuser bool     `json:"is_superuser"`
	Permissions []string `json:"permissions"`
}

// DisplayName falls back to the phone number when no name is set.
func (u *UserProfile) DisplayName() string {
	if n := common.JoinNonEmpty(" ", u.FirstName, u.LastName); n != "" {
		return n
	}
	return u.Phone
}

type User struct {
	ID          int64   `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Phone       string  `json:"phone"`
	IsSuperuser bool    `json:"is_superuser"`
	IsStaff     bool    `json:"is_staff"`
	Groups      []int64 `json:"groups"`
}

func (r User) GetID() int64 { return r.ID }

type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r Group) GetID() int64 { return r.ID }

// Permission is a permission definition as listed by /permissions/.
type Permission struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CodeName string `json:"codename"`
}

func (r Permission) GetID() int64 { return r.ID }

// GroupPermissions is the body of /groups/{id}/permissions/.
type GroupPermissions struct {
	Permissions []int64 `json:"permissions"`
}

// TokenPair is the /login/ response.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
