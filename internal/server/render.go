package server

import (
	"net/http"

	"catcare/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	ctx := r.Context()
	userID, _ := ctx.Value(contextKeyUserID).(string)
	userEmail, _ := ctx.Value(contextKeyEmail).(string)

	if setter, ok := data.(types.NavbarDataSetter); ok {
		navbar := types.NavbarData{
			IsAuthenticated: userID != "",
			UserID:          userID,
			UserEmail:       userEmail,
			UserName:        userEmail,
		}

		if userID != "" {
			user, err := s.userRepo.User(ctx, userID)
			if err == nil {
				navbar.UserName = user.DisplayName()
				navbar.IsLeader = user.IsLeader()
			}
		}

		setter.SetNavbarData(navbar)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
