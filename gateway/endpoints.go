package gateway

// Backend endpoint paths
// All API routes are defined here to ensure consistency and prevent typos
const (
	// Auth endpoints
	EndpointAuthRegister       = "/api/auth/register"
	EndpointAuthVerifyOTP      = "/api/auth/verify-otp"
	EndpointAuthLogin          = "/api/auth/login"
	EndpointAuthResendOTP      = "/api/auth/resend-otp"
	EndpointAuthForgotPassword = "/api/auth/forgot-password"
	EndpointAuthResetPassword  = "/api/auth/reset-password"
	EndpointAuthMe             = "/api/auth/me"

	// Events endpoints
	EndpointEvents = "/api/events"

	// Categories endpoints
	EndpointCategories = "/api/categories"

	// Bookmarks endpoints
	EndpointBookmarks = "/api/users/me/bookmarks"
)

// EndpointEvent returns the detail path for a single event.
func EndpointEvent(eventID string) string {
	return EndpointEvents + "/" + eventID
}

// EndpointEventsByCategory returns the category-scoped event listing path.
func EndpointEventsByCategory(categoryID string) string {
	return EndpointEvents + "/category/" + categoryID
}

// EndpointEventsByOrganizer returns the organizer-scoped event listing path.
func EndpointEventsByOrganizer(organizerID string) string {
	return EndpointEvents + "/organizer/" + organizerID
}

// EndpointEventsByCity returns the city-scoped event listing path.
func EndpointEventsByCity(cityID string) string {
	return EndpointEvents + "/city/" + cityID
}

// EndpointCategory returns the detail path for a single category.
func EndpointCategory(categoryID string) string {
	return EndpointCategories + "/" + categoryID
}

// EndpointBookmark returns the mutation path for one bookmarked event.
func EndpointBookmark(eventID string) string {
	return EndpointBookmarks + "/" + eventID
}
