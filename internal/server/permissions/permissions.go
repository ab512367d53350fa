// Package permissions decides whether an actor may perform a request.
//
// Every resource type has a Policy made of two tiers. The view-level check
// runs before any resource logic and only looks at the actor and the HTTP
// method. The object-level check runs once the target instance is loaded
// and may also look at who authored it. Rules are plain tuples composed with
// AnyOf / AllOf so the disjunctive and conjunctive groups are visible in the
// table below.
package permissions

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

// Resource names a guarded endpoint family.
type Resource string

const (
	Titles     Resource = "titles"
	Categories Resource = "categories"
	Genres     Resource = "genres"
	Reviews    Resource = "reviews"
	Comments   Resource = "comments"
	Users      Resource = "users"
	Me         Resource = "me"
)

// Actor is the caller of a request. A nil User means anonymous.
type Actor struct {
	User *models.User
}

// Anonymous is the actor of requests without credentials.
func Anonymous() Actor { return Actor{} }

// Authenticated reports whether the request carried a valid credential.
func (a Actor) Authenticated() bool { return a.User != nil }

// Role is the effective role: staff and superusers count as admins.
func (a Actor) Role() models.Role {
	if a.User == nil {
		return ""
	}
	return a.User.EffectiveRole()
}

// IsOwner reports whether the actor authored an object owned by ownerID.
func (a Actor) IsOwner(ownerID string) bool {
	return a.User != nil && ownerID != "" && a.User.ID == ownerID
}

// Rule is one (requiredAuthentication, roleSet, owner) tuple. A rule grants
// access when every condition it sets holds.
type Rule struct {
	RequireAuth bool
	// Roles the actor must hold one of. Empty means any role.
	Roles []models.Role
	// Owner requires the actor to be the target's author.
	Owner bool
}

func (r Rule) grants(a Actor, ownerID string) bool {
	if r.RequireAuth && !a.Authenticated() {
		return false
	}
	if len(r.Roles) > 0 && !hasRole(a, r.Roles) {
		return false
	}
	if r.Owner && !a.IsOwner(ownerID) {
		return false
	}
	return true
}

func hasRole(a Actor, roles []models.Role) bool {
	if !a.Authenticated() {
		return false
	}
	role := a.Role()
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type combineMode int

const (
	modeAll combineMode = iota
	modeAny
)

// Combinator joins rules with logical AND or OR.
type Combinator struct {
	mode  combineMode
	rules []Rule
}

// AllOf passes when every rule grants access. An empty AllOf always passes.
func AllOf(rules ...Rule) Combinator { return Combinator{mode: modeAll, rules: rules} }

// AnyOf passes when at least one rule grants access. An empty AnyOf never passes.
func AnyOf(rules ...Rule) Combinator { return Combinator{mode: modeAny, rules: rules} }

// Allows evaluates the combinator for actor against an object owned by ownerID
// ("" when there is no target).
func (c Combinator) Allows(a Actor, ownerID string) bool {
	switch c.mode {
	case modeAny:
		for _, r := range c.rules {
			if r.grants(a, ownerID) {
				return true
			}
		}
		return false
	default:
		for _, r := range c.rules {
			if !r.grants(a, ownerID) {
				return false
			}
		}
		return true
	}
}

// Policy is the rule set of one resource type.
type Policy struct {
	// PublicRead lets safe methods through the view-level check.
	PublicRead bool
	// View guards every request that PublicRead does not cover.
	View Combinator
	// Object guards mutations of an existing instance. Nil means the
	// view-level check is the final word.
	Object *Combinator
}

var (
	authenticated = Rule{RequireAuth: true}
	adminOnly     = Rule{RequireAuth: true, Roles: []models.Role{models.RoleAdmin}}
	moderator     = Rule{RequireAuth: true, Roles: []models.Role{models.RoleModerator}}
	author        = Rule{RequireAuth: true, Owner: true}
)

func ptr(c Combinator) *Combinator { return &c }

// DefaultPolicies is the rule table of the API.
func DefaultPolicies() map[Resource]Policy {
	catalog := Policy{PublicRead: true, View: AllOf(authenticated, adminOnly)}
	ownership := Policy{
		PublicRead: true,
		View:       AllOf(authenticated),
		Object:     ptr(AnyOf(author, moderator, adminOnly)),
	}

	return map[Resource]Policy{
		Titles:     catalog,
		Categories: catalog,
		Genres:     catalog,
		Reviews:    ownership,
		Comments:   ownership,
		Users:      {View: AllOf(authenticated, adminOnly)},
		Me:         {View: AllOf(authenticated)},
	}
}

// IsSafe reports whether method is read-only.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Evaluator applies a policy table. It holds no mutable state.
type Evaluator struct {
	policies map[Resource]Policy
}

// NewEvaluator uses DefaultPolicies when policies is nil.
func NewEvaluator(policies map[Resource]Policy) *Evaluator {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Evaluator{policies: policies}
}

// CheckView runs the view-level check. Unknown resources are denied.
func (e *Evaluator) CheckView(a Actor, res Resource, method string) error {
	p, ok := e.policies[res]
	if !ok {
		return fmt.Errorf("%w: no policy for %s", common.ErrForbidden, res)
	}
	if p.PublicRead && IsSafe(method) {
		return nil
	}
	if !p.View.Allows(a, "") {
		return common.ErrForbidden
	}
	return nil
}

// CheckObject runs the object-level check for a loaded instance authored by
// ownerID. Safe methods always pass.
func (e *Evaluator) CheckObject(a Actor, res Resource, method, ownerID string) error {
	if IsSafe(method) {
		return nil
	}
	p, ok := e.policies[res]
	if !ok {
		return fmt.Errorf("%w: no policy for %s", common.ErrForbidden, res)
	}
	if p.Object == nil {
		return nil
	}
	if !p.Object.Allows(a, ownerID) {
		return common.ErrForbidden
	}
	return nil
}
