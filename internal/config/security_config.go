package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityAdmin                       // Access token with the admin role
)

// EndpointSecurityConfig maps route names ("METHOD /path/template") to their
// required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"POST /auth/register": SecurityPublic,
	"POST /auth/login":    SecurityPublic,
	"GET /healthz":        SecurityPublic,
	"GET /metrics":        SecurityPublic,

	// Auth - Access Protected
	"POST /auth/logout": SecurityAccess,

	// Food - Access Protected
	"GET /food/posts":             SecurityAccess,
	"POST /food/posts":            SecurityAccess,
	"GET /food/my-posts":          SecurityAccess,
	"GET /food/my-claims":         SecurityAccess,
	"POST /food/posts/{id}/claim": SecurityAccess,
	"PUT /food/posts/{id}":        SecurityAccess,
	"DELETE /food/posts/{id}":     SecurityAccess,

	// Reports - any authenticated organization may file one
	"POST /admin/reports": SecurityAccess,

	// Admin - Admin role required
	"GET /admin/pending-organizations":      SecurityAdmin,
	"GET /admin/verified-organizations":     SecurityAdmin,
	"POST /admin/verify-organization/{id}":  SecurityAdmin,
	"POST /admin/suspend-organization/{id}": SecurityAdmin,
	"GET /admin/organization-details/{id}":  SecurityAdmin,
	"GET /admin/reports":                    SecurityAdmin,
	"POST /admin/reports/{id}/resolve":      SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
