package server

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"catcare/internal/utils"
	"catcare/pkg/types"
)

const maxPhotoBytes = 5 << 20

var catStatuses = []string{"Fostered", "In treatment", "Available for adoption", "Adopted"}

func (s *Service) handleGetCats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	cats, err := s.catRepo.Cats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load cats")
		s.internalServerError(w)
		return
	}

	_, authErr := s.userIDFromContext(ctx)

	data := &types.CatsPageData{
		BasePageData: types.BasePageData{
			Title:  "Cats",
			Notice: query.Get("notice"),
			Error:  query.Get("error"),
		},
		Cats:     cats,
		CanAdd:   authErr == nil,
		CanEdit:  s.isLeader(r),
		Statuses: catStatuses,
	}

	err = s.renderTemplate(w, r, "page.cats", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render cats page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostCat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := r.ParseMultipartForm(maxPhotoBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.redirectCats(w, r, "error", "Photo is too large. Maximum size is 5MB.")
		return
	}

	var f types.CatForm
	if err := decoder.Decode(&f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode cat form")
		s.redirectCats(w, r, "error", "Invalid form payload.")
		return
	}

	cat, msg := catFromForm(f, s.location)
	if msg != "" {
		s.redirectCats(w, r, "error", msg)
		return
	}

	err = s.catRepo.CreateCat(ctx, cat)
	if err != nil {
		s.logger.WithError(err).Error("failed to create cat")
		s.internalServerError(w)
		return
	}

	if _, msg := s.attachPhoto(r, cat.ID); msg != "" {
		s.redirectCats(w, r, "error", cat.Name+" was added, but "+msg)
		return
	}

	s.logger.WithField("cat_id", cat.ID).Info("cat added")
	s.redirectCats(w, r, "notice", cat.Name+" was added.")
}

// handleGetCat shows one cat with its care schedule. Signed in users also
// get the edit form.
func (s *Service) handleGetCat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionFromContext(ctx)

	cat, err := s.catRepo.Cat(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, types.ErrCatNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to load cat")
		s.internalServerError(w)
		return
	}

	board, cached := s.boards.get(session.UserID)
	if !cached {
		defer board.Close()
	}

	err = board.Load(ctx, session)
	if err != nil {
		s.logger.WithError(err).Warn("schedule board load was discarded")
	}

	query := r.URL.Query()
	data := &CatPageData{
		BasePageData: types.BasePageData{
			Title:  cat.Name,
			Notice: query.Get("notice"),
			Error:  query.Get("error"),
		},
		Cat:       cat,
		Form:      catFormOf(cat, s.location),
		Statuses:  catStatuses,
		CanEdit:   session.UserID != "",
		CanDelete: s.isLeader(r),
	}

	today := s.startOfToday()
	for _, ev := range board.Events() {
		if ev.CatID != cat.ID {
			continue
		}
		if !ev.Completed && !ev.ScheduledAt.Before(today) {
			data.Upcoming = append(data.Upcoming, ev)
		} else {
			data.History = append(data.History, ev)
		}
	}
	sort.Slice(data.Upcoming, func(i, j int) bool {
		return data.Upcoming[i].ScheduledAt.Before(data.Upcoming[j].ScheduledAt)
	})
	sort.Slice(data.History, func(i, j int) bool {
		return data.History[i].ScheduledAt.After(data.History[j].ScheduledAt)
	})

	err = s.renderTemplate(w, r, "page.cat", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render cat page")
		s.internalServerError(w)
		return
	}
}

// handlePostEditCat saves the roster fields of a cat and, when a new photo
// is sent, replaces the stored one.
func (s *Service) handlePostEditCat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	catID := r.PathValue("id")

	existing, err := s.catRepo.Cat(ctx, catID)
	if err != nil {
		if errors.Is(err, types.ErrCatNotFound) {
			s.redirectCats(w, r, "error", "Cat not found.")
			return
		}
		s.logger.WithError(err).WithField("cat_id", catID).Error("failed to load cat for update")
		s.internalServerError(w)
		return
	}
	oldKey := utils.PtrString(existing.PhotoKey)

	err = r.ParseMultipartForm(maxPhotoBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.redirectCat(w, r, catID, "error", "Photo is too large. Maximum size is 5MB.")
		return
	}

	var f types.CatForm
	if err := decoder.Decode(&f, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode cat form")
		s.redirectCat(w, r, catID, "error", "Invalid form payload.")
		return
	}

	cat, msg := catFromForm(f, s.location)
	if msg != "" {
		s.redirectCat(w, r, catID, "error", msg)
		return
	}

	err = s.catRepo.UpdateCat(ctx, catID, cat)
	if err != nil {
		if errors.Is(err, types.ErrCatNotFound) {
			s.redirectCats(w, r, "error", "Cat not found.")
			return
		}
		s.logger.WithError(err).WithField("cat_id", catID).Error("failed to update cat")
		s.internalServerError(w)
		return
	}

	key, msg := s.attachPhoto(r, catID)
	if msg != "" {
		s.redirectCat(w, r, catID, "error", cat.Name+" was saved, but "+msg)
		return
	}
	if key != "" && oldKey != "" && oldKey != key {
		if err := s.photos.Delete(ctx, oldKey); err != nil {
			s.logger.WithError(err).WithField("photo_key", oldKey).Warn("failed to delete replaced cat photo")
		}
	}

	s.logger.WithField("cat_id", catID).Info("cat updated")
	s.redirectCat(w, r, catID, "notice", cat.Name+" was saved.")
}

// attachPhoto stores the optional "photo" upload of r as the photo of
// catID. It returns the new object key, or a message for the user when the
// upload was refused or failed. A request without a photo yields neither.
func (s *Service) attachPhoto(r *http.Request, catID string) (string, string) {
	ctx := r.Context()

	file, header, err := r.FormFile("photo")
	if err != nil {
		return "", ""
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", "the photo must be an image."
	}

	key, publicURL, err := s.photos.Upload(ctx, catID, header.Filename, contentType, file)
	if err != nil {
		s.logger.WithError(err).WithField("cat_id", catID).Error("failed to upload cat photo")
		return "", "the photo upload failed."
	}

	err = s.catRepo.SetPhoto(ctx, catID, key, publicURL)
	if err != nil {
		s.logger.WithError(err).WithField("cat_id", catID).Error("failed to save cat photo")
		return "", "the photo could not be saved."
	}

	return key, ""
}

// handlePostDeleteCat removes a cat and its photo. Only leaders may do it.
func (s *Service) handlePostDeleteCat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	catID := r.PathValue("id")

	if !s.isLeader(r) {
		s.redirectCats(w, r, "error", "Only leaders can remove cats.")
		return
	}

	cat, err := s.catRepo.Cat(ctx, catID)
	if err != nil {
		if errors.Is(err, types.ErrCatNotFound) {
			s.redirectCats(w, r, "error", "Cat not found.")
			return
		}
		s.logger.WithError(err).WithField("cat_id", catID).Error("failed to load cat for delete")
		s.internalServerError(w)
		return
	}

	if key := utils.PtrString(cat.PhotoKey); key != "" {
		err = s.photos.Delete(ctx, key)
		if err != nil {
			s.logger.WithError(err).WithField("cat_id", catID).WithField("photo_key", key).Error("failed to delete cat photo")
			s.redirectCats(w, r, "error", "Could not delete the photo from storage. Please try again.")
			return
		}
	}

	err = s.catRepo.DeleteCat(ctx, catID)
	if err != nil {
		s.logger.WithError(err).WithField("cat_id", catID).Error("failed to delete cat")
		s.internalServerError(w)
		return
	}

	s.redirectCats(w, r, "notice", cat.Name+" was removed.")
}

func (s *Service) isLeader(r *http.Request) bool {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		return false
	}

	user, err := s.userRepo.User(r.Context(), userID)
	if err != nil {
		return false
	}

	return user.IsLeader()
}

func (s *Service) redirectCat(w http.ResponseWriter, r *http.Request, catID, key, message string) {
	v := url.Values{}
	v.Set(key, message)
	http.Redirect(w, r, "/gatos/"+url.PathEscape(catID)+"?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) redirectCats(w http.ResponseWriter, r *http.Request, key, message string) {
	v := url.Values{}
	v.Set(key, message)
	http.Redirect(w, r, "/gatos?"+v.Encode(), http.StatusSeeOther)
}

// catFormOf pre-fills the edit form from a stored cat.
func catFormOf(cat *types.Cat, loc *time.Location) types.CatForm {
	f := types.CatForm{
		Name:   cat.Name,
		Sex:    utils.PtrString(cat.Sex),
		Status: utils.PtrString(cat.Status),
		Notes:  utils.PtrString(cat.Notes),
	}
	if cat.RescuedOn != nil {
		f.RescuedOn = cat.RescuedOn.In(loc).Format(dateLayout)
	}
	if cat.BornOn != nil {
		f.BornOn = cat.BornOn.In(loc).Format(dateLayout)
	}
	return f
}

// catFromForm validates the roster form. It returns a user facing message
// when the form cannot be accepted.
func catFromForm(f types.CatForm, loc *time.Location) (*types.Cat, string) {
	cat := &types.Cat{Name: strings.TrimSpace(f.Name)}
	if cat.Name == "" {
		return nil, "Name is required."
	}

	for _, d := range []struct {
		value string
		dst   **time.Time
		label string
	}{
		{f.RescuedOn, &cat.RescuedOn, "rescue date"},
		{f.BornOn, &cat.BornOn, "birth date"},
	} {
		value := strings.TrimSpace(d.value)
		if value == "" {
			continue
		}
		parsed, err := time.ParseInLocation(dateLayout, value, loc)
		if err != nil {
			return nil, "Enter a valid " + d.label + "."
		}
		*d.dst = utils.TimePtr(parsed)
	}

	switch sex := strings.ToUpper(strings.TrimSpace(f.Sex)); sex {
	case "":
	case string(types.CatSexMale), string(types.CatSexFemale):
		cat.Sex = utils.StringPtr(sex)
	default:
		return nil, "Choose M or F for sex."
	}

	if status := strings.TrimSpace(f.Status); status != "" {
		cat.Status = utils.StringPtr(status)
	}
	if notes := strings.TrimSpace(f.Notes); notes != "" {
		cat.Notes = utils.StringPtr(notes)
	}

	return cat, ""
}
