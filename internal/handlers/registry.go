package handlers

type AppHandlers struct {
	AuthHandler    *AuthHandler
	ProfileHandler *ProfileHandler
	ReviewHandler  *ReviewHandler
}
