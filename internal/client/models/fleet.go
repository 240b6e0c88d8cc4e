package models

import "github.com/dmitrijs2005/fleetadmin/internal/common"

type NavyType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

func (r NavyType) GetID() int64 { return r.ID }

// NavySize belongs to one NavyType.
type NavySize struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
	Type *Ref   `json:"type,omitempty"`
}

func (r NavySize) GetID() int64 { return r.ID }

// NavyBrand belongs to one NavySize.
type NavyBrand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
	Size *Ref   `json:"size,omitempty"`
}

func (r NavyBrand) GetID() int64 { return r.ID }

// NavyMehvar is an axle configuration class.
type NavyMehvar struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r NavyMehvar) GetID() int64 { return r.ID }

// NavyMain is a concrete vehicle model: a type, size and brand plus a trim
// ("tip").
type NavyMain struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Tip   string `json:"tip"`
	Type  *Ref   `json:"type"`
	Size  *Ref   `json:"size"`
	Brand *Ref   `json:"brand"`
}

func (r NavyMain) GetID() int64 { return r.ID }

// DefaultNavyMainName builds the name proposed when the user leaves it empty:
// "type - size - brand - tip", skipping blank parts.
func DefaultNavyMainName(typeName, sizeName, brandName, tip string) string {
	return common.JoinNonEmpty(" - ", typeName, sizeName, brandName, tip)
}
