package category

import (
	"encoding/json"
	"net/http"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type categoriesResponse struct {
	Categories []Category `json:"categories"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(categoriesResponse{Categories: All()}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
