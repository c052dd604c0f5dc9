package services

// ServiceContainer holds all application services.
type ServiceContainer struct {
	AuthService    AuthService
	ProfileService ProfileService
	ReviewService  ReviewService
}
