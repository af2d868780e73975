package handler

import (
	"net/http"

	"orderdesk/internal/model"
	"orderdesk/internal/service"
)

func ListMenuHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := menuSvc.List(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			writeError(w, "list menu", err)
			return
		}
		if items == nil {
			items = []model.MenuItem{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func GetMenuItemHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(r, "id")
		if !ok {
			http.Error(w, "invalid menu item id", http.StatusBadRequest)
			return
		}

		item, err := menuSvc.Get(r.Context(), id)
		if err != nil {
			writeError(w, "get menu item", err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
}

func (req menuItemRequest) item() *model.MenuItem {
	return &model.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Image:       req.Image,
	}
}

func CreateMenuItemHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req menuItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		item := req.item()
		if err := menuSvc.Create(r.Context(), item); err != nil {
			writeError(w, "create menu item", err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func UpdateMenuItemHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(r, "id")
		if !ok {
			http.Error(w, "invalid menu item id", http.StatusBadRequest)
			return
		}

		var req menuItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		item := req.item()
		item.ID = id
		if err := menuSvc.Update(r.Context(), item); err != nil {
			writeError(w, "update menu item", err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func DeleteMenuItemHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(r, "id")
		if !ok {
			http.Error(w, "invalid menu item id", http.StatusBadRequest)
			return
		}

		if err := menuSvc.Delete(r.Context(), id); err != nil {
			writeError(w, "delete menu item", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
