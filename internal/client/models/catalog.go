package models

type UsageType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r UsageType) GetID() int64 { return r.ID }

// Activity category kinds.
const (
	CategoryKindService = "خدمت"
	CategoryKindGoods   = "کالا"
)

type ActivityCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"type"`
}

func (r ActivityCategory) GetID() int64 { return r.ID }

// ServiceProviderRequest is a registration request submitted by a provider
// and reviewed by administrators. The console only lists them.
type ServiceProviderRequest struct {
	ID        int64  `json:"id"`
	Applicant string `json:"applicant"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func (r ServiceProviderRequest) GetID() int64 { return r.ID }
