package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"catcare/internal"
	"catcare/internal/referencedata"
	"catcare/internal/schedule"
	"catcare/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc      *Service
	events   *fakeEventStore
	cats     *fakeCatRepo
	users    *fakeUserRepo
	photos   *fakePhotos
	identity *fakeIdentity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config := &types.Config{
		ServerPort:      8080,
		ReadTimeoutSec:  5,
		WriteTimeoutSec: 5,
		CognitoClientID: "client",
		CookieHashKey:   base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("h"), 32)),
		CookieBlockKey:  base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("b"), 32)),
		Timezone:        "UTC",
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		events: &fakeEventStore{rows: map[string]*types.EventRow{
			"e1": {
				ID:          "e1",
				Category:    "Cleaning",
				Shift:       aws.String("Morning"),
				ScheduledAt: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
				Available:   true,
			},
			"e2": {
				ID:          "e2",
				Category:    "Medication",
				CatID:       aws.String("c1"),
				Medicine:    aws.String("Antibiotic"),
				ScheduledAt: time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC),
				VolunteerID: aws.String("u-vol"),
			},
		}},
		cats: &fakeCatRepo{cats: []*types.Cat{
			{ID: "c1", Name: "Mingau", PhotoKey: aws.String("cats/c1/a.jpg"), PhotoURL: aws.String("https://photos.example.com/cats/c1/a.jpg")},
			{ID: "c2", Name: "Frajola"},
		}},
		users: &fakeUserRepo{users: map[string]*types.User{
			"u-lead":  {ID: "u-lead", Name: aws.String("Ana"), Role: "Lider"},
			"u-vol":   {ID: "u-vol", Name: aws.String("Bia"), Role: "Volunteer"},
			"u-other": {ID: "u-other", Name: aws.String("Carla"), Role: "Volunteer"},
		}},
		photos: &fakePhotos{},
		identity: &fakeIdentity{passwords: map[string]string{
			"bia@example.com": "correct horse",
		}},
	}

	tokens := fakeTokens{
		"token-lead":            {UserID: "u-lead", Email: "ana@example.com"},
		"token-vol":             {UserID: "u-vol", Email: "bia@example.com"},
		"token-other":           {UserID: "u-other", Email: "carla@example.com"},
		"token-bia@example.com": {UserID: "u-vol", Email: "bia@example.com"},
		"token-new":             {UserID: "u-new", Email: "new@example.com"},
	}

	svc, err := New(config, logger, env.identity, tokens, env.photos, env.events, env.cats, env.users, referencedata.Default())
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	env.svc = svc
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()

	if token != "" {
		value, err := e.svc.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, token)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: internal.COOKIE_ACCESS_TOKEN_NAME, Value: value})
	}

	rec := httptest.NewRecorder()
	e.svc.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func position(tab string) url.Values {
	return url.Values{
		"month": {"3"},
		"year":  {"2026"},
		"tab":   {tab},
		"day":   {"2026-03-15"},
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStripTrailingSlash(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/escalas/?tab=medication", nil), "")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/escalas?tab=medication", rec.Header().Get("Location"))
}

func TestScheduleAnonymous(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/escalas?"+position("cleaning").Encode(), nil)
	rec := env.do(t, req, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "March 2026")
	assert.Contains(t, body, "Sign in")
	assert.Contains(t, body, `action="/escalas/events/slot/claim"`)
	assert.NotContains(t, body, `action="/escalas/events"`, "anonymous users cannot create")
}

func TestScheduleLeaderSeesCreateForm(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/escalas?"+position("medication").Encode(), nil)
	rec := env.do(t, req, "token-lead")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, `action="/escalas/events"`)
	assert.Contains(t, body, "Mingau")
}

func TestScheduleDay(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/escalas/day/2026-03-15", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Antibiotic")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/escalas/day/not-a-date", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClaimRequiresSignIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, postForm("/escalas/events/event-e1/claim", position("cleaning")), "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), internal.COOKIE_REDIRECT_NAME+"=/escalas")
	assert.True(t, env.events.row("e1").Available)
}

func TestClaimEvent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, postForm("/escalas/events/event-e1/claim", position("cleaning")), "token-other")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/escalas", location.Path)
	assert.NotEmpty(t, location.Query().Get("notice"))
	assert.Equal(t, "2026-03-15", location.Query().Get("day"))
	assert.Equal(t, "cleaning", location.Query().Get("tab"))

	row := env.events.row("e1")
	assert.False(t, row.Available)
	assert.Equal(t, "u-other", aws.ToString(row.VolunteerID))

	// A second claim of the same event is refused.
	rec = env.do(t, postForm("/escalas/events/event-e1/claim", position("cleaning")), "token-vol")
	location, err = url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.NotEmpty(t, location.Query().Get("error"))
	assert.Equal(t, "u-other", aws.ToString(env.events.row("e1").VolunteerID))
}

func TestClaimEmptySlotCreatesEvent(t *testing.T) {
	env := newTestEnv(t)

	form := position("cleaning")
	form.Set("category", "cleaning")
	form.Set("shift", "Afternoon")
	form.Set("date", "2026-03-15")

	rec := env.do(t, postForm("/escalas/events/slot/claim", form), "token-vol")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	row := env.events.row("new1")
	require.NotNil(t, row)
	assert.Equal(t, "Cleaning", row.Category)
	assert.Equal(t, "Afternoon", aws.ToString(row.Shift))
	assert.Equal(t, "u-vol", aws.ToString(row.VolunteerID))
}

func TestPastDayIsNotSelectable(t *testing.T) {
	env := newTestEnv(t)

	past := position("cleaning")
	past.Set("day", "2026-03-05")

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/escalas?"+past.Encode(), nil), "token-lead")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, `action="/escalas/events"`)
	assert.NotContains(t, body, `action="/escalas/events/slot/claim"`)

	past.Set("category", "cleaning")
	past.Set("shift", "Morning")
	past.Set("date", "2026-03-05")

	rec = env.do(t, postForm("/escalas/events/slot/claim", past), "token-vol")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.NotEmpty(t, location.Query().Get("error"))
	assert.Nil(t, env.events.row("new1"))
	assert.Len(t, env.events.rows, 2)
}

func TestCompleteClaimedEvent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, postForm("/escalas/events/event-e2/complete", position("medication")), "token-vol")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "notice=")
	assert.True(t, env.events.row("e2").Completed)
}

func TestDeleteDenied(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, postForm("/escalas/events/event-e2/delete", position("medication")), "token-other")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")
	assert.NotNil(t, env.events.row("e2"))
}

func TestDeleteByAssignedVolunteer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, postForm("/escalas/events/event-e2/delete", position("medication")), "token-vol")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "notice=")
	assert.Nil(t, env.events.row("e2"))
}

func TestCreateByLeader(t *testing.T) {
	env := newTestEnv(t)

	form := position("medication")
	form.Set("category", "medication")
	form.Set("cat_id", "c2")
	form.Set("date", "2026-03-20")
	form.Set("time", "09:00")
	form.Set("medicine", "Dewormer")

	rec := env.do(t, postForm("/escalas/events", form), "token-lead")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "notice=")

	row := env.events.row("new1")
	require.NotNil(t, row)
	assert.Equal(t, "Medication", row.Category)
	assert.Equal(t, "Dewormer", aws.ToString(row.Medicine))
	assert.Equal(t, "c2", aws.ToString(row.CatID))
	assert.True(t, row.Available)
}

func TestCreateByVolunteerDenied(t *testing.T) {
	env := newTestEnv(t)

	form := position("cleaning")
	form.Set("category", "cleaning")
	form.Set("date", "2026-03-20")
	form.Set("shift", "Morning")

	rec := env.do(t, postForm("/escalas/events", form), "token-vol")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")
	assert.Nil(t, env.events.row("new1"))
}

func TestEditEventPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/escalas/events/event-e2/edit?"+position("medication").Encode(), nil), "token-vol")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Antibiotic"`)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/escalas/events/event-e2/edit", nil), "token-other")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")
}

func TestFeed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/escalas/me.ics", nil), "token-vol")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "e2@catcare")
	assert.NotContains(t, body, "e1@catcare")
}

func TestProfileRequiresSignIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/perfil", nil), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), internal.COOKIE_REDIRECT_NAME+"=/perfil")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/perfil", nil), "token-vol")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bia")
	assert.Contains(t, rec.Body.String(), "Medication 08:30 - Mingau")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"email": {"bia@example.com"}, "password": {"wrong"}}
	rec := env.do(t, postForm("/login", form), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")

	form.Set("password", "correct horse")
	req := postForm("/login", form)
	req.AddCookie(&http.Cookie{Name: internal.COOKIE_REDIRECT_NAME, Value: "/perfil"})
	rec = env.do(t, req, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/perfil", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == internal.COOKIE_ACCESS_TOKEN_NAME {
			session = c
		}
	}
	require.NotNil(t, session)

	var token string
	require.NoError(t, env.svc.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, session.Value, &token))
	assert.Equal(t, "token-bia@example.com", token)
}

func TestLogoutEvictsBoard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/escalas", nil), "token-vol")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, env.svc.boards.entries, "u-vol")

	rec = env.do(t, postForm("/logout", nil), "token-vol")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.NotContains(t, env.svc.boards.entries, "u-vol")
}

func TestLoadedBoardNeedsSignedInUser(t *testing.T) {
	env := newTestEnv(t)

	board, err := env.svc.loadedBoard(context.Background())
	assert.ErrorIs(t, err, schedule.ErrAnonymous)
	assert.Nil(t, board)
	assert.Empty(t, env.svc.boards.entries)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"name":             {"Duda"},
		"email":            {"duda@example.com"},
		"password":         {"short"},
		"confirm_password": {"short"},
	}
	rec := env.do(t, postForm("/register", form), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password must be at least 12 characters")
	assert.Empty(t, env.identity.signUps)

	form.Set("password", "Str0ng!Passw0rd")
	form.Set("confirm_password", "Str0ng!Passw0rd")
	rec = env.do(t, postForm("/register", form), "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/register/confirm?email=duda%40example.com", rec.Header().Get("Location"))

	user, err := env.users.User(t.Context(), "sub-new")
	require.NoError(t, err)
	assert.Equal(t, "Duda", user.DisplayName())
	assert.False(t, user.IsLeader())

	rec = env.do(t, postForm("/register/confirm", url.Values{"email": {"duda@example.com"}, "code": {"000000"}}), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid confirmation code")

	rec = env.do(t, postForm("/register/confirm", url.Values{"email": {"duda@example.com"}, "code": {"123456"}}), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?confirmed=true", rec.Header().Get("Location"))
}

func TestValidateRegisterInput(t *testing.T) {
	errs := validateRegisterInput(" ", "not-an-email", "Str0ng!Passw0rd", "different")
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "confirm_password")
	assert.NotContains(t, errs, "password")

	assert.Empty(t, validateRegisterInput("Duda", "duda@example.com", "Str0ng!Passw0rd", "Str0ng!Passw0rd"))
}

func TestCatsPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/gatos", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mingau")
	assert.NotContains(t, body, `action="/gatos"`)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/gatos", nil), "token-lead")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/gatos/c1/delete"`)
}

func TestPostCatWithPhoto(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Pretinha"))
	require.NoError(t, mw.WriteField("sex", "f"))
	require.NoError(t, mw.WriteField("rescued_on", "2026-02-01"))

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="pretinha.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/gatos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := env.do(t, req, "token-vol")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "notice=")

	cat, err := env.cats.Cat(t.Context(), "cat3")
	require.NoError(t, err)
	assert.Equal(t, "Pretinha", cat.Name)
	assert.Equal(t, "F", aws.ToString(cat.Sex))
	assert.Equal(t, "cats/cat3/pretinha.jpg", aws.ToString(cat.PhotoKey))
	assert.Equal(t, []string{"cats/cat3/pretinha.jpg"}, env.photos.uploaded)
}

func TestDeleteCatLeaderOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, postForm("/gatos/c1/delete", nil), "token-vol")
	assert.Contains(t, rec.Header().Get("Location"), "error=")
	_, err := env.cats.Cat(t.Context(), "c1")
	require.NoError(t, err)

	rec = env.do(t, postForm("/gatos/c1/delete", nil), "token-lead")
	assert.Contains(t, rec.Header().Get("Location"), "notice=")
	_, err = env.cats.Cat(t.Context(), "c1")
	assert.ErrorIs(t, err, types.ErrCatNotFound)
	assert.Equal(t, []string{"cats/c1/a.jpg"}, env.photos.deleted)
}

func photoRequest(t *testing.T, path string, fields map[string]string, filename, contentType string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCatDetail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/gatos/c1", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mingau")
	assert.Contains(t, body, "Medication 08:30 - Mingau")
	assert.Contains(t, body, "Bia")
	assert.NotContains(t, body, `action="/gatos/c1"`, "anonymous visitors cannot edit")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/gatos/c1", nil), "token-vol")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, `action="/gatos/c1"`)
	assert.NotContains(t, body, `action="/gatos/c1/delete"`)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/gatos/c2", nil), "token-lead")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nothing scheduled for Frajola.")
	assert.Contains(t, rec.Body.String(), `action="/gatos/c2/delete"`)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/gatos/missing", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditCat(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{"name": {"Frajola"}, "status": {"Adopted"}, "born_on": {"2025-06-01"}, "sex": {"m"}}

	rec := env.do(t, postForm("/gatos/c2", form), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.do(t, postForm("/gatos/c2", url.Values{"name": {" "}}), "token-vol")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/gatos/c2?error=")

	rec = env.do(t, postForm("/gatos/c2", form), "token-vol")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/gatos/c2?notice="))

	cat, err := env.cats.Cat(t.Context(), "c2")
	require.NoError(t, err)
	assert.Equal(t, "Adopted", aws.ToString(cat.Status))
	assert.Equal(t, "M", aws.ToString(cat.Sex))
	require.NotNil(t, cat.BornOn)
	assert.Equal(t, "2025-06-01", cat.BornOn.Format(dateLayout))
	assert.Empty(t, env.photos.uploaded)

	rec = env.do(t, postForm("/gatos/missing", form), "token-vol")
	assert.Contains(t, rec.Header().Get("Location"), "/gatos?error=")
}

func TestEditCatReplacesPhoto(t *testing.T) {
	env := newTestEnv(t)

	req := photoRequest(t, "/gatos/c1", map[string]string{"name": "Mingau"}, "b.png", "image/png")
	rec := env.do(t, req, "token-vol")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "notice=")

	cat, err := env.cats.Cat(t.Context(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "cats/c1/b.png", aws.ToString(cat.PhotoKey))
	assert.Equal(t, []string{"cats/c1/b.png"}, env.photos.uploaded)
	assert.Equal(t, []string{"cats/c1/a.jpg"}, env.photos.deleted)

	req = photoRequest(t, "/gatos/c1", map[string]string{"name": "Mingau"}, "notes.txt", "text/plain")
	rec = env.do(t, req, "token-vol")
	assert.Contains(t, rec.Header().Get("Location"), "error=")
	assert.Len(t, env.photos.uploaded, 1)
}

func TestEditProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/perfil/editar", nil), "token-vol")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Bia"`)

	bad := url.Values{"name": {"Bia"}, "phone": {"call me"}}
	rec = env.do(t, postForm("/perfil/editar", bad), "token-vol")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enter a valid phone number.")
	assert.Nil(t, env.users.users["u-vol"].Phone)

	good := url.Values{"name": {" Bia Souza "}, "phone": {"(16) 99999-0000"}}
	rec = env.do(t, postForm("/perfil/editar", good), "token-vol")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/perfil?notice="))

	user := env.users.users["u-vol"]
	assert.Equal(t, "Bia Souza", aws.ToString(user.Name))
	assert.Equal(t, "(16) 99999-0000", aws.ToString(user.Phone))
	assert.Equal(t, "Volunteer", user.Role)
}

func TestEditProfileCreatesMissingUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, postForm("/perfil/editar", url.Values{"name": {"Duda"}}), "token-new")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	user := env.users.users["u-new"]
	require.NotNil(t, user)
	assert.Equal(t, "Duda", aws.ToString(user.Name))
	assert.Equal(t, "new@example.com", aws.ToString(user.Email))
	assert.Nil(t, user.Phone)
	assert.False(t, user.IsLeader())
}

func TestValidateProfileInput(t *testing.T) {
	assert.Empty(t, validateProfileInput("Ana", ""))
	assert.Empty(t, validateProfileInput("Ana", "+55 16 99999-0000"))
	assert.Contains(t, validateProfileInput("", ""), "name")
	assert.Contains(t, validateProfileInput(strings.Repeat("a", maxNameLength+1), ""), "name")
	assert.Contains(t, validateProfileInput("Ana", "123"), "phone")
}

func TestCatFromForm(t *testing.T) {
	_, msg := catFromForm(types.CatForm{}, time.UTC)
	assert.Equal(t, "Name is required.", msg)

	_, msg = catFromForm(types.CatForm{Name: "Tom", BornOn: "yesterday"}, time.UTC)
	assert.Equal(t, "Enter a valid birth date.", msg)

	_, msg = catFromForm(types.CatForm{Name: "Tom", Sex: "x"}, time.UTC)
	assert.NotEmpty(t, msg)

	cat, msg := catFromForm(types.CatForm{Name: " Tom ", Status: "Fostered"}, time.UTC)
	assert.Empty(t, msg)
	assert.Equal(t, "Tom", cat.Name)
	assert.Equal(t, "Fostered", aws.ToString(cat.Status))
	assert.Nil(t, cat.BornOn)
}

func TestBoardCache(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	built := 0
	cache := newBoardCache(time.Minute, func() *schedule.Board {
		built++
		return schedule.NewBoard(schedule.Deps{})
	})
	cache.now = func() time.Time { return now }

	anon, cached := cache.get("")
	assert.False(t, cached)
	assert.NotNil(t, anon)
	assert.Empty(t, cache.entries)

	first, cached := cache.get("u1")
	assert.True(t, cached)
	again, _ := cache.get("u1")
	assert.Same(t, first, again)

	now = now.Add(2 * time.Minute)
	_, _ = cache.get("u2")
	assert.NotContains(t, cache.entries, "u1", "idle boards are dropped")

	fresh, _ := cache.get("u1")
	assert.NotSame(t, first, fresh)

	cache.evict("u1")
	assert.NotContains(t, cache.entries, "u1")

	cache.closeAll()
	assert.Empty(t, cache.entries)
	assert.Equal(t, 4, built)
}
