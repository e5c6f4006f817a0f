// Package authz identifies DRIMS users and decides which features their roles
// unlock. Identity comes from trusted proxy headers or a bearer token; the
// decision comes from the feature registry.
package authz

import (
	"context"

	"github.com/odpem/drims/pkg/features"
)

// AuthzRequest represents an authorization check.
type AuthzRequest struct {
	User    string
	Roles   []string
	Feature string
}

// Authorizer checks whether a user may use a feature.
type Authorizer interface {
	Authorize(ctx context.Context, req AuthzRequest) (bool, error)
}

// FeatureAuthorizer grants a feature when any of the user's roles is listed
// for it in the registry.
type FeatureAuthorizer struct {
	Registry *features.Registry
}

// NewFeatureAuthorizer returns an Authorizer over reg, or the embedded
// registry when reg is nil.
func NewFeatureAuthorizer(reg *features.Registry) *FeatureAuthorizer {
	if reg == nil {
		reg = features.Default()
	}
	return &FeatureAuthorizer{Registry: reg}
}

// Authorize never fails; unknown features are denied.
func (a *FeatureAuthorizer) Authorize(_ context.Context, req AuthzRequest) (bool, error) {
	return a.Registry.HasAccess(req.Roles, req.Feature), nil
}
