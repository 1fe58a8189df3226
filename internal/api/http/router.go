package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"sharebite/internal/metrics"
	"sharebite/internal/security"
	"sharebite/internal/service"
)

// Services are the dependencies of the REST API.
type Services struct {
	Auth   service.AuthService
	Food   service.FoodService
	Admin  service.AdminService
	Report service.ReportService
}

// RouterOptions tune optional endpoints.
type RouterOptions struct {
	PathPrefix     string // e.g. "/api"
	MetricsEnabled bool
	MetricsPath    string
}

// NewRouter wires every endpoint of the REST API.
func NewRouter(svcs Services, tm security.TokenManager, opts RouterOptions) *mux.Router {
	root := mux.NewRouter()
	root.Use(ObserveMiddleware)

	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("GET /healthz")

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		root.Handle(path, metrics.Handler()).Methods(http.MethodGet).Name("GET /metrics")
	}

	api := root
	if opts.PathPrefix != "" {
		api = root.PathPrefix(opts.PathPrefix).Subrouter()
	}
	api.Use(NewAuthMiddleware(tm).Handler)

	auth := NewAuthHandler(svcs.Auth)
	food := NewFoodHandler(svcs.Food)
	admin := NewAdminHandler(svcs.Admin, svcs.Report)

	route := func(method, path string, h http.HandlerFunc) {
		api.HandleFunc(path, h).Methods(method).Name(method + " " + path)
	}

	route(http.MethodPost, "/auth/register", auth.Register)
	route(http.MethodPost, "/auth/login", auth.Login)
	route(http.MethodPost, "/auth/logout", auth.Logout)

	route(http.MethodGet, "/food/posts", food.ListPosts)
	route(http.MethodPost, "/food/posts", food.CreatePost)
	route(http.MethodGet, "/food/my-posts", food.ListMyPosts)
	route(http.MethodGet, "/food/my-claims", food.ListMyClaims)
	route(http.MethodPost, "/food/posts/{id}/claim", food.ClaimPost)
	route(http.MethodPut, "/food/posts/{id}", food.UpdatePost)
	route(http.MethodDelete, "/food/posts/{id}", food.DeletePost)

	route(http.MethodGet, "/admin/pending-organizations", admin.ListPending)
	route(http.MethodGet, "/admin/verified-organizations", admin.ListVerified)
	route(http.MethodPost, "/admin/verify-organization/{id}", admin.Verify)
	route(http.MethodPost, "/admin/suspend-organization/{id}", admin.Suspend)
	route(http.MethodGet, "/admin/organization-details/{id}", admin.Details)
	route(http.MethodPost, "/admin/reports", admin.SubmitReport)
	route(http.MethodGet, "/admin/reports", admin.ListReports)
	route(http.MethodPost, "/admin/reports/{id}/resolve", admin.ResolveReport)

	return root
}
