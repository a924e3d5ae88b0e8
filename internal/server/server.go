package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"catcare/internal/schedule"
	"catcare/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// IdentityProvider is the part of the Cognito client used for sign in and
// sign up.
type IdentityProvider interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
}

// TokenVerifier turns an access token into the session it belongs to.
type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (schedule.Session, error)
}

type PhotoStore interface {
	Upload(ctx context.Context, catID, filename, contentType string, body io.Reader) (string, string, error)
	Delete(ctx context.Context, key string) error
}

type CatRepository interface {
	schedule.CatStore
	Cat(ctx context.Context, id string) (*types.Cat, error)
	CreateCat(ctx context.Context, cat *types.Cat) error
	UpdateCat(ctx context.Context, id string, cat *types.Cat) error
	SetPhoto(ctx context.Context, id, key, url string) error
	DeleteCat(ctx context.Context, id string) error
}

type UserRepository interface {
	schedule.UserStore
	UpsertIdentity(ctx context.Context, userID, email, name string) error
	Update(ctx context.Context, userID string, user *types.User) error
}

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	location *time.Location
	now      func() time.Time

	cognitoClient IdentityProvider
	tokens        TokenVerifier
	photos        PhotoStore

	eventRepo schedule.EventStore
	catRepo   CatRepository
	userRepo  UserRepository
	clinics   schedule.ClinicDirectory

	boards    *boardCache
	templates *template.Template
	cookie    *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient IdentityProvider,
	tokens TokenVerifier,
	photos PhotoStore,
	eventRepo schedule.EventStore,
	catRepo CatRepository,
	userRepo UserRepository,
	clinics schedule.ClinicDirectory,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", config.Timezone, err)
	}

	s := &Service{
		logger:   logger,
		config:   config,
		location: location,
		now:      time.Now,

		cognitoClient: cognitoClient,
		tokens:        tokens,
		photos:        photos,
		cookie:        securecookie.New(hashKey, blockKey),

		eventRepo: eventRepo,
		catRepo:   catRepo,
		userRepo:  userRepo,
		clinics:   clinics,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
	s.boards = newBoardCache(boardIdleTimeout, s.newBoard)

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)
	// flow matches whole paths, so trailing slashes are handled before routing.
	s.server.Handler = s.StripTrailingSlash(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	s.boards.closeAll()
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) newBoard() *schedule.Board {
	return schedule.NewBoard(schedule.Deps{
		Events:  s.eventRepo,
		Cats:    s.catRepo,
		Users:   s.userRepo,
		Clinics: s.clinics,
		Policy: schedule.Policy{
			OpenCreation: s.config.OpenCreation,
			OpenEdit:     s.config.OpenEdit,
		},
		Location: s.location,
		Logger:   s.logger,
		Now:      s.now,
	})
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)
	r.Use(s.Authenticate)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/register/confirm", s.handleGetRegisterConfirm, http.MethodGet)
	r.HandleFunc("/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

	r.HandleFunc("/escalas", s.handleGetSchedule, http.MethodGet)
	r.HandleFunc("/escalas/day/:date", s.handleGetScheduleDay, http.MethodGet)
	r.HandleFunc("/gatos", s.handleGetCats, http.MethodGet)
	r.HandleFunc("/gatos/:id", s.handleGetCat, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/escalas/events", s.handlePostEvent, http.MethodPost)
		r.HandleFunc("/escalas/events/:key/edit", s.handleGetEditEvent, http.MethodGet)
		r.HandleFunc("/escalas/events/:key", s.handlePostEditEvent, http.MethodPost)
		r.HandleFunc("/escalas/events/:key/claim", s.handlePostClaim, http.MethodPost)
		r.HandleFunc("/escalas/events/:key/complete", s.handlePostComplete, http.MethodPost)
		r.HandleFunc("/escalas/events/:key/delete", s.handlePostDelete, http.MethodPost)
		r.HandleFunc("/escalas/me.ics", s.handleGetFeed, http.MethodGet)

		r.HandleFunc("/gatos", s.handlePostCat, http.MethodPost)
		r.HandleFunc("/gatos/:id", s.handlePostEditCat, http.MethodPost)
		r.HandleFunc("/gatos/:id/delete", s.handlePostDeleteCat, http.MethodPost)

		r.HandleFunc("/perfil", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/perfil/editar", s.handleGetEditProfile, http.MethodGet)
		r.HandleFunc("/perfil/editar", s.handlePostEditProfile, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil {
				return defaultVal
			}
			return *s
		},
		"dateOf": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("02/01/2006")
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// sessionFromContext returns the signed in user, or an empty session for
// anonymous requests.
func sessionFromContext(ctx context.Context) schedule.Session {
	userID, _ := ctx.Value(contextKeyUserID).(string)
	email, _ := ctx.Value(contextKeyEmail).(string)
	return schedule.Session{UserID: userID, Email: email}
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
