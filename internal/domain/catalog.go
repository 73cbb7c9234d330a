package domain

// Service represents a service offered by a tenant (shop)
type Service struct {
	ID              int64
	TenantID        int64
	Name            string
	DurationMinutes int
	IsActive        bool
}

// Provider represents a person who performs services
type Provider struct {
	ID       int64
	TenantID int64
	Name     string
	IsActive bool
}

// ProviderService связка мастер × услуга
// Определяет, может ли мастер быть записан на услугу
type ProviderService struct {
	ID         int64
	TenantID   int64
	ProviderID int64
	ServiceID  int64
	Price      float64
	IsActive   bool
}
