package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/utils"
)

// RoleCheck only lets the listed roles through. It must run after AuthMiddleware.
func RoleCheck(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = true
		names = append(names, strings.ToLower(string(r)))
	}

	return func(c *gin.Context) {
		v, exists := c.Get(RoleKey)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if role, _ := v.(models.Role); !allowed[role] {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", strings.Join(names, " or ")))
			c.Abort()
			return
		}

		c.Next()
	}
}
