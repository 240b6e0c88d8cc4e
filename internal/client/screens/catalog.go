package screens

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fleetadmin/internal/client/cache"
	"github.com/dmitrijs2005/fleetadmin/internal/client/models"
	"github.com/dmitrijs2005/fleetadmin/internal/client/navigation"
	p "github.com/dmitrijs2005/fleetadmin/internal/client/permissions"
	"github.com/dmitrijs2005/fleetadmin/internal/client/services"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

// Deps are the collaborators shared by every catalog screen.
type Deps struct {
	API     services.Requester
	Cache   *cache.Layer
	Lookups *services.Lookups
	Logger  logging.Logger
}

// Catalog builds one screen per entity, in menu order.
func Catalog(d Deps) []Screen {
	return []Screen{
		NewCrudScreen(navyTypes(), d.API, d.Cache, d.Logger),
		NewCrudScreen(navySizes(d.Lookups), d.API, d.Cache, d.Logger),
		NewCrudScreen(navyBrands(d.Lookups), d.API, d.Cache, d.Logger),
		NewCrudScreen(navyMehvars(), d.API, d.Cache, d.Logger),
		NewCrudScreen(navyMain(d.Lookups), d.API, d.Cache, d.Logger),
		NewCrudScreen(activityAreas(d.Lookups), d.API, d.Cache, d.Logger),
		NewCrudScreen(usageTypes(), d.API, d.Cache, d.Logger),
		NewCrudScreen(activityCategories(), d.API, d.Cache, d.Logger),
		NewCrudScreen(users(d.Lookups), d.API, d.Cache, d.Logger),
		NewCrudScreen(groups(), d.API, d.Cache, d.Logger),
		NewCrudScreen(providerRequests(), d.API, d.Cache, d.Logger),
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func yesNo(b bool) string {
	if b {
		return "بله"
	}
	return "خیر"
}

var nameField = Field{Name: "name", Label: "نام"}

func navyTypes() Definition[models.NavyType] {
	return Definition[models.NavyType]{
		Route:   navigation.RouteNavyTypes,
		Title:   "نوع ناوگان",
		Path:    services.NavyTypesPath,
		View:    []p.Permission{p.ViewNavyType},
		Add:     []p.Permission{p.AddNavyType},
		Change:  []p.Permission{p.ChangeNavyType},
		Delete:  []p.Permission{p.DeleteNavyType},
		Fields:  []Field{nameField},
		Payload: nameFromForm,
		Prefill: func(r models.NavyType) Form { return Form{"name": r.Name} },
		Columns: []string{"شناسه", "نام"},
		Row:     func(r models.NavyType) []string { return []string{itoa(r.ID), r.Name} },
	}
}

func navySizes(l *services.Lookups) Definition[models.NavySize] {
	return Definition[models.NavySize]{
		Route:  navigation.RouteNavySizes,
		Title:  "سایز ناوگان",
		Path:   services.NavySizesPath,
		View:   []p.Permission{p.ViewNavySize},
		Add:    []p.Permission{p.AddNavySize},
		Change: []p.Permission{p.ChangeNavySize},
		Delete: []p.Permission{p.DeleteNavySize},
		Fields: []Field{
			nameField,
			{Name: "type_id", Label: "نوع ناوگان", Kind: Choice, Options: navyTypeOptions(l)},
		},
		Payload: navySizeFromForm,
		Prefill: func(r models.NavySize) Form {
			f := Form{"name": r.Name}
			if r.Type != nil {
				f["type_id"] = itoa(r.Type.ID)
				f[LabelKey("type_id")] = r.Type.Name
			}
			return f
		},
		Columns: []string{"شناسه", "نام", "نوع"},
		Row: func(r models.NavySize) []string {
			return []string{itoa(r.ID), r.Name, models.RefName(r.Type)}
		},
	}
}

func navyBrands(l *services.Lookups) Definition[models.NavyBrand] {
	return Definition[models.NavyBrand]{
		Route:   navigation.RouteNavyBrands,
		Title:   "برند ناوگان",
		Path:    services.NavyBrandsPath,
		View:    []p.Permission{p.ViewNavyBrand},
		Add:     []p.Permission{p.AddNavyBrand},
		Change:  []p.Permission{p.ChangeNavyBrand},
		Delete:  []p.Permission{p.DeleteNavyBrand},
		Fields:  []Field{nameField},
		Cascade: func() *Cascade { return NewCascade(typeSlot(l), sizeSlot(l)) },
		Payload: navyBrandFromForm,
		Prefill: func(r models.NavyBrand) Form {
			f := Form{"name": r.Name}
			if r.Size != nil {
				f["size_id"] = itoa(r.Size.ID)
				f[LabelKey("size_id")] = r.Size.Name
			}
			return f
		},
		Columns: []string{"شناسه", "نام", "سایز"},
		Row: func(r models.NavyBrand) []string {
			return []string{itoa(r.ID), r.Name, models.RefName(r.Size)}
		},
	}
}

func navyMehvars() Definition[models.NavyMehvar] {
	return Definition[models.NavyMehvar]{
		Route:   navigation.RouteNavyMehvars,
		Title:   "محور ناوگان",
		Path:    services.NavyMehvarsPath,
		View:    []p.Permission{p.ViewNavyMehvar},
		Add:     []p.Permission{p.AddNavyMehvar},
		Change:  []p.Permission{p.ChangeNavyMehvar},
		Delete:  []p.Permission{p.DeleteNavyMehvar},
		Fields:  []Field{nameField},
		Payload: nameFromForm,
		Prefill: func(r models.NavyMehvar) Form { return Form{"name": r.Name} },
		Columns: []string{"شناسه", "نام"},
		Row:     func(r models.NavyMehvar) []string { return []string{itoa(r.ID), r.Name} },
	}
}

func navyMain(l *services.Lookups) Definition[models.NavyMain] {
	return Definition[models.NavyMain]{
		Route:     navigation.RouteNavyMain,
		Title:     "ناوگان تجاری",
		Path:      services.NavyMainPath,
		Paginated: true,
		View:      []p.Permission{p.ViewNavyMain},
		Add:       []p.Permission{p.AddNavyMain},
		Change:    []p.Permission{p.ChangeNavyMain},
		Delete:    []p.Permission{p.DeleteNavyMain},
		Fields: []Field{
			{Name: "tip", Label: "تیپ", Optional: true},
			{Name: "name", Label: "نام (خالی: پیشنهاد خودکار)", Optional: true},
		},
		Cascade: func() *Cascade { return NewCascade(typeSlot(l), sizeSlot(l), brandSlot(l)) },
		Payload: navyMainFromForm,
		Prefill: func(r models.NavyMain) Form {
			f := Form{"name": r.Name, "tip": r.Tip}
			for field, ref := range map[string]*models.Ref{"type_id": r.Type, "size_id": r.Size, "brand_id": r.Brand} {
				if ref != nil {
					f[field] = itoa(ref.ID)
					f[LabelKey(field)] = ref.Name
				}
			}
			return f
		},
		Columns: []string{"شناسه", "نام", "نوع", "سایز", "برند", "تیپ"},
		Row: func(r models.NavyMain) []string {
			return []string{itoa(r.ID), r.Name, models.RefName(r.Type), models.RefName(r.Size), models.RefName(r.Brand), r.Tip}
		},
	}
}

func activityAreas(l *services.Lookups) Definition[models.ActivityArea] {
	return Definition[models.ActivityArea]{
		Route:  navigation.RouteActivityAreas,
		Title:  "منطقه فعالیت",
		Path:   services.ActivityAreasPath,
		View:   []p.Permission{p.ViewActivityArea},
		Add:    []p.Permission{p.AddActivityArea},
		Change: []p.Permission{p.ChangeActivityArea},
		Delete: []p.Permission{p.DeleteActivityArea},
		Fields: []Field{{Name: "area", Label: "منطقه"}},
		Cascade: func() *Cascade {
			return NewCascade(
				Slot{Field: "province_id", Label: "استان", Load: func(ctx context.Context, _ int64) ([]Option, error) {
					rows, err := l.Provinces(ctx)
					return toOptions(rows, err, func(r models.Province) Option { return idOption(r.ID, r.Name) })
				}},
				Slot{Field: "city_id", Label: "شهر", Load: func(ctx context.Context, provinceID int64) ([]Option, error) {
					rows, err := l.Cities(ctx, provinceID)
					return toOptions(rows, err, func(r models.City) Option { return idOption(r.ID, r.Name) })
				}},
			)
		},
		Payload: activityAreaFromForm,
		Prefill: func(r models.ActivityArea) Form {
			f := Form{"area": r.Area}
			if r.City != nil {
				f["city_id"] = itoa(r.City.ID)
				f[LabelKey("city_id")] = r.City.Name
			}
			if pid := r.ProvinceID(); pid != 0 {
				f["province_id"] = itoa(pid)
				f[LabelKey("province_id")] = r.ProvinceName()
			}
			return f
		},
		Columns: []string{"شناسه", "منطقه", "شهر", "استان"},
		Row: func(r models.ActivityArea) []string {
			return []string{itoa(r.ID), r.Area, r.CityName(), r.ProvinceName()}
		},
	}
}

func usageTypes() Definition[models.UsageType] {
	return Definition[models.UsageType]{
		Route:   navigation.RouteUsageTypes,
		Title:   "انواع کاربری",
		Path:    services.UsageTypesPath,
		View:    []p.Permission{p.ViewUsageType},
		Add:     []p.Permission{p.AddUsageType},
		Change:  []p.Permission{p.ChangeUsageType},
		Delete:  []p.Permission{p.DeleteUsageType},
		Fields:  []Field{nameField},
		Payload: nameFromForm,
		Prefill: func(r models.UsageType) Form { return Form{"name": r.Name} },
		Columns: []string{"شناسه", "نام"},
		Row:     func(r models.UsageType) []string { return []string{itoa(r.ID), r.Name} },
	}
}

func activityCategories() Definition[models.ActivityCategory] {
	kinds := staticOptions(
		Option{Value: models.CategoryKindService, Label: models.CategoryKindService},
		Option{Value: models.CategoryKindGoods, Label: models.CategoryKindGoods},
	)
	return Definition[models.ActivityCategory]{
		Route:  navigation.RouteActivityCategories,
		Title:  "رسته فعالیت",
		Path:   services.ActivityCategoriesPath,
		View:   []p.Permission{p.ViewActivityCategory},
		Add:    []p.Permission{p.AddActivityCategory},
		Change: []p.Permission{p.ChangeActivityCategory},
		Delete: []p.Permission{p.DeleteActivityCategory},
		Fields: []Field{
			nameField,
			{Name: "type", Label: "نوع", Kind: Choice, Options: kinds},
		},
		Payload: activityCategoryFromForm,
		Prefill: func(r models.ActivityCategory) Form {
			return Form{"name": r.Name, "type": r.Kind, LabelKey("type"): r.Kind}
		},
		Columns: []string{"شناسه", "نام", "نوع"},
		Row: func(r models.ActivityCategory) []string {
			return []string{itoa(r.ID), r.Name, r.Kind}
		},
	}
}

func users(l *services.Lookups) Definition[models.User] {
	return Definition[models.User]{
		Route:      navigation.RouteUsers,
		Title:      "کاربران",
		Path:       services.UsersPath,
		Searchable: true,
		View:       []p.Permission{p.ViewUser},
		Add:        []p.Permission{p.AddUser},
		Change:     []p.Permission{p.ChangeUser},
		Delete:     []p.Permission{p.DeleteUser},
		Fields: []Field{
			{Name: "first_name", Label: "نام"},
			{Name: "last_name", Label: "نام خانوادگی"},
			{Name: "phone", Label: "شماره تلفن"},
			{Name: "password", Label: "رمز عبور", Kind: Password, CreateOnly: true},
			{Name: "is_superuser", Label: "مدیر کل", Kind: Bool, Optional: true},
			{Name: "is_staff", Label: "کارمند", Kind: Bool, Optional: true},
			{Name: "groups", Label: "گروه‌ها", Kind: MultiChoice, Optional: true, Options: groupOptions(l)},
		},
		Payload: userFromForm,
		Prefill: func(r models.User) Form {
			ids := make([]string, 0, len(r.Groups))
			for _, g := range r.Groups {
				ids = append(ids, itoa(g))
			}
			return Form{
				"first_name":   r.FirstName,
				"last_name":    r.LastName,
				"phone":        r.Phone,
				"is_superuser": strconv.FormatBool(r.IsSuperuser),
				"is_staff":     strconv.FormatBool(r.IsStaff),
				"groups":       strings.Join(ids, ","),
			}
		},
		Columns: []string{"شناسه", "نام", "نام خانوادگی", "تلفن", "مدیر کل", "کارمند"},
		Row: func(r models.User) []string {
			return []string{itoa(r.ID), r.FirstName, r.LastName, r.Phone, yesNo(r.IsSuperuser), yesNo(r.IsStaff)}
		},
	}
}

func groups() Definition[models.Group] {
	return Definition[models.Group]{
		Route:   navigation.RouteGroups,
		Title:   "گروه‌ها",
		Path:    services.GroupsPath,
		View:    []p.Permission{p.ViewGroup},
		Add:     []p.Permission{p.AddGroup},
		Change:  []p.Permission{p.ChangeGroup},
		Delete:  []p.Permission{p.DeleteGroup},
		Fields:  []Field{nameField},
		Payload: nameFromForm,
		Prefill: func(r models.Group) Form { return Form{"name": r.Name} },
		Columns: []string{"شناسه", "نام"},
		Row:     func(r models.Group) []string { return []string{itoa(r.ID), r.Name} },
		Mutations: Mutations{
			Create: cache.GroupCreated,
			Update: cache.GroupUpdated,
			Delete: cache.GroupDeleted,
		},
	}
}

func providerRequests() Definition[models.ServiceProviderRequest] {
	return Definition[models.ServiceProviderRequest]{
		Route:    navigation.RouteProviderRequests,
		Title:    "درخواست‌های ارائه‌دهندگان خدمات",
		Path:     services.ProviderRequestsPath,
		ReadOnly: true,
		Columns:  []string{"شناسه", "متقاضی", "تلفن", "وضعیت", "تاریخ"},
		Row: func(r models.ServiceProviderRequest) []string {
			return []string{itoa(r.ID), r.Applicant, r.Phone, r.Status, r.CreatedAt}
		},
	}
}

func typeSlot(l *services.Lookups) Slot {
	return Slot{Field: "type_id", Label: "نوع ناوگان", Load: func(ctx context.Context, _ int64) ([]Option, error) {
		rows, err := l.NavyTypes(ctx)
		return toOptions(rows, err, func(r models.NavyType) Option { return idOption(r.ID, r.Name) })
	}}
}

func sizeSlot(l *services.Lookups) Slot {
	return Slot{Field: "size_id", Label: "سایز ناوگان", Load: func(ctx context.Context, typeID int64) ([]Option, error) {
		rows, err := l.SizesByType(ctx, typeID)
		return toOptions(rows, err, func(r models.NavySize) Option { return idOption(r.ID, r.Name) })
	}}
}

func brandSlot(l *services.Lookups) Slot {
	return Slot{Field: "brand_id", Label: "برند ناوگان", Load: func(ctx context.Context, sizeID int64) ([]Option, error) {
		rows, err := l.BrandsBySize(ctx, sizeID)
		return toOptions(rows, err, func(r models.NavyBrand) Option { return idOption(r.ID, r.Name) })
	}}
}

func navyTypeOptions(l *services.Lookups) OptionsFunc {
	return func(ctx context.Context, _ Form) ([]Option, error) {
		rows, err := l.NavyTypes(ctx)
		return toOptions(rows, err, func(r models.NavyType) Option { return idOption(r.ID, r.Name) })
	}
}

func groupOptions(l *services.Lookups) OptionsFunc {
	return func(ctx context.Context, _ Form) ([]Option, error) {
		rows, err := l.Groups(ctx)
		return toOptions(rows, err, func(r models.Group) Option { return idOption(r.ID, r.Name) })
	}
}

func toOptions[T any](rows []T, err error, conv func(T) Option) ([]Option, error) {
	if err != nil {
		return nil, err
	}
	out := make([]Option, 0, len(rows))
	for _, r := range rows {
		out = append(out, conv(r))
	}
	return out, nil
}
