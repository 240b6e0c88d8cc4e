package screens

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatePayload(p any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

type namePayload struct {
	Name string `json:"name" validate:"required"`
}

type navySizePayload struct {
	Name   string `json:"name" validate:"required"`
	TypeID int64  `json:"type_id" validate:"gt=0"`
}

type navyBrandPayload struct {
	Name   string `json:"name" validate:"required"`
	SizeID int64  `json:"size_id" validate:"gt=0"`
}

type navyMainPayload struct {
	Name    string `json:"name" validate:"required"`
	Tip     string `json:"tip"`
	TypeID  int64  `json:"type_id" validate:"gt=0"`
	SizeID  int64  `json:"size_id" validate:"gt=0"`
	BrandID int64  `json:"brand_id" validate:"gt=0"`
}

type activityAreaPayload struct {
	CityID int64  `json:"city_id" validate:"gt=0"`
	Area   string `json:"area" validate:"required"`
}

type activityCategoryPayload struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"type" validate:"required,oneof=خدمت کالا"`
}

type userPayload struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	Phone       string  `json:"phone" validate:"required,numeric,min=10,max=13"`
	IsSuperuser bool    `json:"is_superuser"`
	IsStaff     bool    `json:"is_staff"`
	Groups      []int64 `json:"groups"`
}

type userCreatePayload struct {
	userPayload
	Password string `json:"password" validate:"required,min=6"`
}

func nameFromForm(f Form, _ bool) (any, error) {
	p := namePayload{Name: f.Get("name")}
	return p, validatePayload(p)
}

func navySizeFromForm(f Form, _ bool) (any, error) {
	p := navySizePayload{Name: f.Get("name"), TypeID: f.Int("type_id")}
	return p, validatePayload(p)
}

func navyBrandFromForm(f Form, _ bool) (any, error) {
	p := navyBrandPayload{Name: f.Get("name"), SizeID: f.Int("size_id")}
	return p, validatePayload(p)
}

// navyMainFromForm proposes "type - size - brand - tip" when the name is
// left empty.
func navyMainFromForm(f Form, _ bool) (any, error) {
	p := navyMainPayload{
		Name:    f.Get("name"),
		Tip:     f.Get("tip"),
		TypeID:  f.Int("type_id"),
		SizeID:  f.Int("size_id"),
		BrandID: f.Int("brand_id"),
	}
	if p.Name == "" {
		p.Name = models.DefaultNavyMainName(f.Label("type_id"), f.Label("size_id"), f.Label("brand_id"), p.Tip)
	}
	return p, validatePayload(p)
}

func activityAreaFromForm(f Form, _ bool) (any, error) {
	p := activityAreaPayload{CityID: f.Int("city_id"), Area: f.Get("area")}
	return p, validatePayload(p)
}

func activityCategoryFromForm(f Form, _ bool) (any, error) {
	p := activityCategoryPayload{Name: f.Get("name"), Kind: f.Get("type")}
	return p, validatePayload(p)
}

// userFromForm requires a password only on create; updates never send one.
func userFromForm(f Form, creating bool) (any, error) {
	base := userPayload{
		FirstName:   f.Get("first_name"),
		LastName:    f.Get("last_name"),
		Phone:       f.Get("phone"),
		IsSuperuser: f.Bool("is_superuser"),
		IsStaff:     f.Bool("is_staff"),
		Groups:      f.IDs("groups"),
	}
	if !creating {
		return base, validatePayload(base)
	}
	p := userCreatePayload{userPayload: base, Password: f["password"]}
	return p, validatePayload(p)
}
