// AngelaMos | 2026
// paths.go

package core

// Frontend navigation targets returned by the auth flows.
const (
	PathHome          = "/"
	PathLogin         = "/login"
	PathSignup        = "/signup"
	PathDashboard     = "/dashboard"
	PathVerifyEmail   = "/verify-email"
	PathResetPassword = "/reset-password"
)
