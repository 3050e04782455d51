package middleware

import (
	"net/http"
	"strings"

	"agartpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "auth_claims"

// JWTClaims is the token payload shared between the auth service (which signs
// it) and this middleware (which verifies it).
type JWTClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	StoreID  string `json:"store_id"`
	jwt.RegisteredClaims
}

// Capability names one guarded action. Routes declare the capability they
// need; the policy table below maps roles to capabilities, so adding a role
// never means touching route definitions.
type Capability string

const (
	CapSell          Capability = "sell"
	CapAdjustStock   Capability = "adjust-stock"
	CapManageCatalog Capability = "manage-catalog"
	CapManageCredit  Capability = "manage-credit"
	CapCloseShift    Capability = "close-shift"
	CapViewReports   Capability = "view-reports"
	CapManageStaff   Capability = "manage-staff"
)

var rolePolicy = map[string]map[Capability]bool{
	"cashier": {
		CapSell: true,
	},
	"supervisor": {
		CapSell:          true,
		CapAdjustStock:   true,
		CapManageCatalog: true,
		CapManageCredit:  true,
		CapCloseShift:    true,
		CapViewReports:   true,
	},
	"admin": {
		CapSell:          true,
		CapAdjustStock:   true,
		CapManageCatalog: true,
		CapManageCredit:  true,
		CapCloseShift:    true,
		CapViewReports:   true,
		CapManageStaff:   true,
	},
}

// JWTAuth validates the bearer token and stores the claims in the context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.APIError{Detail: "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.APIError{Detail: "invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Require gates a route on one capability per the role policy table.
func Require(cap Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.APIError{Detail: "authentication required"})
			return
		}
		if !rolePolicy[claims.Role][cap] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.APIError{
				Detail: "role " + claims.Role + " cannot perform " + string(cap),
			})
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) (*JWTClaims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*JWTClaims)
	return claims, ok
}
