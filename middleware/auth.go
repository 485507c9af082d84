// middleware/jwt_auth.go
package middleware

import (
	"net/http"
	"strings"

	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and checks its role claim against
// the allowed roles. On success it sets "subjectID" and "role" on the context.
func AuthRequired(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		subject, role, err := utils.ExtractSubjectAndRole(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if len(allowedRoles) > 0 {
			allowed := false
			for _, r := range allowedRoles {
				if r == role {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
				return
			}
		}

		c.Set("subjectID", subject)
		c.Set("role", role)
		c.Next()
	}
}

// PatientAuth restricts a route group to authenticated patients.
func PatientAuth() gin.HandlerFunc {
	return AuthRequired(utils.RolePatient)
}

// PractitionerAuth restricts a route group to authenticated practitioners.
func PractitionerAuth() gin.HandlerFunc {
	return AuthRequired(utils.RolePractitioner)
}
