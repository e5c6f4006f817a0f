package server

import (
	"net/http"
	"strings"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/pkg/authz"
	"github.com/odpem/drims/pkg/features"
)

// Profile describes the signed-in user as the UI shell needs it.
type Profile struct {
	authz.Identity
	PrimaryRole     string `json:"primary_role"`
	RoleDisplayName string `json:"role_display_name"`
	LandingURL      string `json:"landing_url"`
	LandingFeature  string `json:"landing_feature,omitempty"`
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := authz.IdentityFromContext(r.Context())
	primary := s.registry.PrimaryRole(id.Roles)
	p := Profile{
		Identity:        id,
		PrimaryRole:     primary,
		RoleDisplayName: s.registry.RoleDisplayName(primary),
		LandingURL:      "/",
	}
	if f, ok := s.registry.Landing(id.Roles); ok {
		p.LandingURL = f.URL
		p.LandingFeature = f.Key
	}
	if p.Roles == nil {
		p.Roles = []string{}
	}
	httpio.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) featuresHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := authz.IdentityFromContext(r.Context())
	var fs []features.Feature
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		fs = s.registry.ByCategory(id.Roles, category)
	} else {
		fs = s.registry.Accessible(id.Roles)
	}
	writeFeatures(w, fs)
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := authz.IdentityFromContext(r.Context())
	writeFeatures(w, s.registry.Dashboard(id.Roles))
}

func (s *Server) navigationHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := authz.IdentityFromContext(r.Context())
	group := strings.TrimSpace(r.URL.Query().Get("group"))
	writeFeatures(w, s.registry.Navigation(id.Roles, group))
}

func writeFeatures(w http.ResponseWriter, fs []features.Feature) {
	if fs == nil {
		fs = []features.Feature{}
	}
	httpio.WriteJSON(w, http.StatusOK, map[string]any{
		"features": fs,
		"totalSize": len(fs),
	})
}
