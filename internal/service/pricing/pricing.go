package pricing

// Service estimates a flat price per service kind. Rates are fixed at
// construction; anything not in the table falls back to the default rate.
type Service struct {
	config Config
}

// Config holds the rate table
type Config struct {
	Rates    map[string]float64
	Fallback float64
}

// DefaultConfig returns the standard rate table
func DefaultConfig() Config {
	return Config{
		Rates: map[string]float64{
			"Battery Jump": 55.00,
			"Towing":       95.00,
			"Tire Change":  65.00,
			"Lockout":      75.00,
		},
		Fallback: 65.00,
	}
}

// NewService creates a new pricing service
func NewService(config Config) *Service {
	return &Service{config: config}
}

// Estimate returns the flat-rate estimate for a service kind
func (s *Service) Estimate(serviceType string) float64 {
	if rate, ok := s.config.Rates[serviceType]; ok {
		return rate
	}
	return s.config.Fallback
}
