package http

import (
	"net/http"

	"sharebite/internal/domain"
	"sharebite/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// RegisterResponse acknowledges a registration. No session is created.
type RegisterResponse struct {
	Message      string               `json:"message"`
	Organization *domain.Organization `json:"organization"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string               `json:"token"`
	User  *domain.Organization `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	org, err := h.authSvc.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterResponse{
		Message:      "Registration successful! Your organization is pending verification. You will be able to log in once an administrator approves it.",
		Organization: org,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	org, token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: org})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.authSvc.Logout(r.Context(), claims.OrgID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

type FoodHandler struct {
	foodSvc service.FoodService
}

func NewFoodHandler(foodSvc service.FoodService) *FoodHandler {
	return &FoodHandler{foodSvc: foodSvc}
}

// StatusUpdateRequest is the body of PUT /food/posts/{id}.
type StatusUpdateRequest struct {
	Status domain.FoodStatus `json:"status"`
}

func writePosts(w http.ResponseWriter, posts []domain.FoodPost, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []domain.FoodPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *FoodHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.foodSvc.ListPosts(r.Context())
	writePosts(w, posts, err)
}

func (h *FoodHandler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	posts, err := h.foodSvc.ListMyPosts(r.Context(), claims.OrgID)
	writePosts(w, posts, err)
}

func (h *FoodHandler) ListMyClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	posts, err := h.foodSvc.ListMyClaims(r.Context(), claims.OrgID)
	writePosts(w, posts, err)
}

func (h *FoodHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	var post domain.FoodPost
	if err := decodeJSON(r, &post); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.foodSvc.CreatePost(r.Context(), claims.OrgID, &post)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *FoodHandler) ClaimPost(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	post, err := h.foodSvc.ClaimPost(r.Context(), claims.OrgID, id)
	if err != nil {
		writeClaimError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *FoodHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	post, err := h.foodSvc.UpdatePostStatus(r.Context(), claims.OrgID, id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *FoodHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.foodSvc.DeletePost(r.Context(), claims.OrgID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}
