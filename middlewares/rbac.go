package middlewares

import (
	"fmt"
	"log"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gin-gonic/gin"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var defaultPolicies = [][]string{
	{"user", "session", "read"},
	{"user", "session", "delete"},
	{"admin", "verification", "read"},
	{"admin", "analytics", "read"},
}

// admin inherits everything a user may do
var defaultRoleLinks = [][]string{
	{"admin", "user"},
}

// Authorizer checks session roles against the casbin policy
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds an enforcer with the built-in policy set
func NewAuthorizer() (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin enforcer: %w", err)
	}

	for _, p := range defaultPolicies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("failed to add policy %v: %w", p, err)
		}
	}
	for _, g := range defaultRoleLinks {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, fmt.Errorf("failed to add role link %v: %w", g, err)
		}
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Allowed reports whether role may perform action on resource.
func (a *Authorizer) Allowed(role, resource, action string) (bool, error) {
	return a.enforcer.Enforce(role, resource, action)
}

// RBACMiddleware checks the session role; it must run after AuthMiddleware
func (a *Authorizer) RBACMiddleware(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}

		role := string(sess.User.Role)
		allowed, err := a.Allowed(role, resource, action)
		if err != nil {
			log.Printf("Casbin enforce error: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			return
		}
		if !allowed {
			log.Printf("RBACMiddleware: Permission denied for role=%s, resource=%s, action=%s", role, resource, action)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
