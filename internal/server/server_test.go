package server

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/odpem/drims/pkg/audit"
	"github.com/odpem/drims/pkg/features"
)

var _ = Describe("Server", func() {
	var (
		gdb *gorm.DB
		ts  *httptest.Server
	)

	BeforeEach(func() {
		gdb = openDB()
		ts = newTestServer(gdb, Config{Audit: audit.Config{Enabled: true}})
	})

	Context("health probes", func() {
		It("answers liveness without an identity", func() {
			var body map[string]string
			rs := call(ts, http.MethodGet, "/healthz", "", nil, "", &body)
			Expect(rs.StatusCode).To(Equal(http.StatusOK))
			Expect(body["status"]).To(Equal("alive"))
		})

		It("reports ready while the database answers", func() {
			var body map[string]any
			rs := call(ts, http.MethodGet, "/readyz", "", nil, "", &body)
			Expect(rs.StatusCode).To(Equal(http.StatusOK))
			Expect(body["status"]).To(Equal("ready"))
		})

		It("reports not ready once the database is gone", func() {
			sqlDB, err := gdb.DB()
			Expect(err).NotTo(HaveOccurred())
			Expect(sqlDB.Close()).To(Succeed())

			var body map[string]any
			rs := call(ts, http.MethodGet, "/readyz", "", nil, "", &body)
			Expect(rs.StatusCode).To(Equal(http.StatusServiceUnavailable))
			Expect(body["status"]).To(Equal("not_ready"))
		})
	})

	Context("current user", func() {
		It("rejects anonymous callers", func() {
			rs := call(ts, http.MethodGet, "/api/v1/me", "", nil, "", nil)
			Expect(rs.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("describes the primary role and landing page", func() {
			var p Profile
			rs := call(ts, http.MethodGet, "/api/v1/me", "lo@odpem", []string{"LO", "INVENTORY_CLERK"}, "", &p)
			Expect(rs.StatusCode).To(Equal(http.StatusOK))
			Expect(p.User).To(Equal("lo@odpem"))
			Expect(p.PrimaryRole).To(Equal("LO"))
			Expect(p.RoleDisplayName).To(Equal("Logistics Officer"))
			Expect(p.LandingFeature).To(Equal("logistics_dashboard"))
			Expect(p.LandingURL).To(Equal("/dashboard"))
		})

		It("lists only the features the roles unlock", func() {
			var body struct {
				Features  []features.Feature `json:"features"`
				TotalSize int                `json:"totalSize"`
			}
			rs := call(ts, http.MethodGet, "/api/v1/me/features", "agency@example", []string{"AGENCY_USER"}, "", &body)
			Expect(rs.StatusCode).To(Equal(http.StatusOK))
			Expect(body.TotalSize).To(Equal(len(body.Features)))

			var keys []string
			for _, f := range body.Features {
				keys = append(keys, f.Key)
			}
			Expect(keys).To(ContainElements("relief_request_creation", "relief_request_tracking"))
			Expect(keys).NotTo(ContainElement("eligibility_review"))
		})

		It("filters navigation by group", func() {
			var body struct {
				Features []features.Feature `json:"features"`
			}
			rs := call(ts, http.MethodGet, "/api/v1/me/navigation?group=relief_requests", "agency@example", []string{"AGENCY_USER"}, "", &body)
			Expect(rs.StatusCode).To(Equal(http.StatusOK))
			Expect(body.Features).NotTo(BeEmpty())
			for _, f := range body.Features {
				Expect(f.NavigationGroup).To(Equal("relief_requests"))
			}
		})
	})

	Context("status tables", func() {
		It("returns labels and badges in code order", func() {
			var body struct {
				Type     string        `json:"type"`
				Statuses []StatusEntry `json:"statuses"`
			}
			rs := call(ts, http.MethodGet, "/api/v1/statuses/reliefrqst", "lo@odpem", []string{"LO"}, "", &body)
			Expect(rs.StatusCode).To(Equal(http.StatusOK))
			Expect(body.Statuses).To(HaveLen(8))
			Expect(body.Statuses[0]).To(Equal(StatusEntry{Code: "0", Label: "Draft", Badge: body.Statuses[0].Badge}))
			Expect(body.Statuses[4].Label).To(Equal("Denied"))
		})

		It("answers 404 for an unknown kind", func() {
			rs := call(ts, http.MethodGet, "/api/v1/statuses/nope", "lo@odpem", []string{"LO"}, "", nil)
			Expect(rs.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Context("domain routes", func() {
		It("serves each workflow package under the API prefix", func() {
			for _, path := range []string{"/api/v1/warehouses", "/api/v1/inventory", "/api/v1/transfers", "/api/v1/requests", "/api/v1/packages"} {
				rs := call(ts, http.MethodGet, path, "admin", []string{"SYSTEM_ADMIN", "LM"}, "", nil)
				Expect(rs.StatusCode).To(Equal(http.StatusOK), path)
			}
		})

		It("serves the reference lists to any signed-in user", func() {
			var body map[string]any
			rs := call(ts, http.MethodGet, "/api/v1/reference/parishes", "agency@example", []string{"AGENCY_USER"}, "", &body)
			Expect(rs.StatusCode).To(Equal(http.StatusOK))
		})

		It("gates domain routes by feature", func() {
			rs := call(ts, http.MethodGet, "/api/v1/warehouses", "agency@example", []string{"AGENCY_USER"}, "", nil)
			Expect(rs.StatusCode).To(Equal(http.StatusForbidden))
		})
	})

	Context("audit trail", func() {
		It("records mutating requests and serves them to administrators", func() {
			body := `{"event_type":"FLOOD","start_date":"2026-10-01T00:00:00Z","event_name":"October floods","event_desc":"Flooding in St. Thomas"}`
			rs := call(ts, http.MethodPost, "/api/v1/events", "dg@odpem", []string{"DG"}, body, nil)
			Expect(rs.StatusCode).To(Equal(http.StatusCreated))

			var events struct {
				Events    []audit.EventRecord `json:"events"`
				TotalSize int                 `json:"totalSize"`
			}
			rs = call(ts, http.MethodGet, "/api/v1/audit/events", "root", []string{"SYSTEM_ADMIN"}, "", &events)
			Expect(rs.StatusCode).To(Equal(http.StatusOK))
			Expect(events.Events).To(HaveLen(1))
			Expect(events.Events[0].Actor).To(Equal("dg@odpem"))
			Expect(events.Events[0].ResourceType).To(Equal("events"))
			Expect(events.Events[0].Outcome).To(Equal(audit.OutcomeSuccess))
		})

		It("hides the trail from other roles", func() {
			rs := call(ts, http.MethodGet, "/api/v1/audit/events", "dg@odpem", []string{"DG"}, "", nil)
			Expect(rs.StatusCode).To(Equal(http.StatusForbidden))
		})
	})
})
