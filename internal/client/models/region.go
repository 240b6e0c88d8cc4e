package models

type Province struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r Province) GetID() int64 { return r.ID }

type City struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Province *Province `json:"province,omitempty"`
}

func (r City) GetID() int64 { return r.ID }

// ActivityArea is a named area inside a city.
type ActivityArea struct {
	ID   int64  `json:"id"`
	Area string `json:"area"`
	City *City  `json:"city"`
}

func (r ActivityArea) GetID() int64 { return r.ID }

// CityName and ProvinceName tolerate missing nesting.
func (r ActivityArea) CityName() string {
	if r.City == nil {
		return ""
	}
	return r.City.Name
}

func (r ActivityArea) ProvinceName() string {
	if r.City == nil || r.City.Province == nil {
		return ""
	}
	return r.City.Province.Name
}

// ProvinceID is 0 when unknown.
func (r ActivityArea) ProvinceID() int64 {
	if r.City == nil || r.City.Province == nil {
		return 0
	}
	return r.City.Province.ID
}
