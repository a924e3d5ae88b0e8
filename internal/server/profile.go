package server

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"catcare/internal/utils"
	"catcare/pkg/types"
)

// handleGetProfile shows the signed in user's record and their schedule:
// every event assigned to them plus the ones claimed in this session.
func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	user, err := s.userRepo.User(ctx, userID)
	if err != nil && !errors.Is(err, types.ErrUserNotFound) {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch user for profile")
		s.internalServerError(w)
		return
	}

	board, err := s.loadedBoard(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load board for profile")
		s.internalServerError(w)
		return
	}

	err = board.Load(ctx, sessionFromContext(ctx))
	if err != nil {
		s.logger.WithError(err).Warn("schedule board reload was discarded")
	}

	query := r.URL.Query()
	data := &ProfilePageData{
		BasePageData: types.BasePageData{
			Title:  "My schedule",
			Notice: query.Get("notice"),
			Error:  query.Get("error"),
		},
		User:   user,
		Role:   types.RoleVolunteer,
		Events: board.MyEvents(),
		Claims: board.Claims(),
	}
	if actor := board.Actor(); actor != nil {
		data.Role = actor.Role
	}

	today := s.startOfToday()
	for _, ev := range data.Events {
		if !ev.Completed && !ev.ScheduledAt.Before(today) {
			data.Upcoming = append(data.Upcoming, ev)
		}
	}

	err = s.renderTemplate(w, r, "page.profile", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render profile page")
		s.internalServerError(w)
		return
	}
}

var phoneReg = regexp.MustCompile(`^[0-9()+\-. ]{8,20}$`)

const maxNameLength = 80

func (s *Service) handleGetEditProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionFromContext(ctx)

	data := &ProfileEditPageData{
		BasePageData: types.BasePageData{Title: "Edit profile"},
		Email:        session.Email,
	}

	user, err := s.userRepo.User(ctx, session.UserID)
	switch {
	case err == nil:
		data.Name = utils.PtrString(user.Name)
		data.Phone = utils.PtrString(user.Phone)
		if user.Email != nil {
			data.Email = *user.Email
		}
	case !errors.Is(err, types.ErrUserNotFound):
		s.logger.WithError(err).WithField("user_id", session.UserID).Error("failed to fetch user for profile edit")
		s.internalServerError(w)
		return
	}

	err = s.renderTemplate(w, r, "page.profile.edit", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render profile edit page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostEditProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/perfil/editar", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	phone := strings.TrimSpace(r.FormValue("phone"))

	fieldErrors := validateProfileInput(name, phone)
	if len(fieldErrors) > 0 {
		data := &ProfileEditPageData{
			BasePageData: types.BasePageData{Title: "Edit profile", Error: "Please fix the highlighted fields."},
			Email:        session.Email,
			Name:         name,
			Phone:        phone,
			FieldErrors:  fieldErrors,
		}

		w.WriteHeader(http.StatusUnprocessableEntity)
		if err := s.renderTemplate(w, r, "page.profile.edit", data); err != nil {
			s.logger.WithError(err).Error("failed to render profile edit page with errors")
		}
		return
	}

	user, err := s.userRepo.User(ctx, session.UserID)
	if errors.Is(err, types.ErrUserNotFound) {
		// Accounts created before the users row existed get one now.
		err = s.userRepo.UpsertIdentity(ctx, session.UserID, session.Email, name)
		if err == nil {
			user, err = s.userRepo.User(ctx, session.UserID)
		}
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", session.UserID).Error("failed to fetch user for profile update")
		s.internalServerError(w)
		return
	}

	user.Name = &name
	user.Phone = nil
	if phone != "" {
		user.Phone = &phone
	}

	err = s.userRepo.Update(ctx, session.UserID, user)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", session.UserID).Error("failed to update profile")
		s.internalServerError(w)
		return
	}

	s.logger.WithField("user_id", session.UserID).Info("profile updated")
	http.Redirect(w, r, "/perfil?notice=Profile+updated.", http.StatusSeeOther)
}

func validateProfileInput(name, phone string) map[string]string {
	fieldErrors := map[string]string{}

	if name == "" {
		fieldErrors["name"] = "Name is required."
	} else if utf8.RuneCountInString(name) > maxNameLength {
		fieldErrors["name"] = "Name is too long."
	}

	if phone != "" && !phoneReg.MatchString(phone) {
		fieldErrors["phone"] = "Enter a valid phone number."
	}

	return fieldErrors
}
