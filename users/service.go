// Package users implements the user service: registration, login and profiles.
package users

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sri-akshat/wealth-manager"
	"github.com/sri-akshat/wealth-manager/api"
	"github.com/sri-akshat/wealth-manager/auth"
	"github.com/sri-akshat/wealth-manager/store"
	"go.uber.org/zap"
)

// Version of the user service API.
const Version = "1.0.0"

// Pagination bounds of the user list.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Service serves the user API.
type Service struct {
	store  *store.Store
	issuer *auth.Issuer
	hasher auth.Hasher
	logger *zap.Logger
	now    func() time.Time
}

// New returns a user service persisting to st and signing tokens with issuer.
func New(st *store.Store, issuer *auth.Issuer, hasher auth.Hasher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  st,
		issuer: issuer,
		hasher: hasher,
		logger: logger.Named("users"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TokenForm is the OAuth2 password form of a login. Username is the email.
type TokenForm struct {
	Username string `json:"username"`
	Password string `json:"password" openapi:"password"`
}

// Token is the body of a successful login.
type Token struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        wealth.User `json:"user"`
}

// Registration is the body of a successful registration.
type Registration struct {
	User        wealth.User `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
}

// UserList is a page of users.
type UserList struct {
	Users []wealth.User `json:"users"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

// ListQuery documents the pagination parameters of the user list.
type ListQuery struct {
	Skip  int `json:"skip" doc:"number of users to skip"`
	Limit int `json:"limit" doc:"maximum number of users to return, at most 1000"`
}

// API declares the user service routes.
func (s *Service) API() *api.Service {
	notAdmin := auth.RequireRole(wealth.Admin, api.Detail)
	return &api.Service{
		Name:        "user-service",
		Title:       "User Service",
		Description: "User management service for wealth manager platform. Handles user registration, authentication, and profile management.",
		Version:     Version,
		Tags: []api.Tag{
			{Name: "users", Description: "Operations with users and profiles"},
			{Name: "auth", Description: "Authentication operations"},
			{Name: "system", Description: "System maintenance operations"},
		},
		Routes: []api.Route{
			{Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"system"},
				Response: api.HealthResponse{}, Handler: s.health},
			{Method: http.MethodPost, Path: "/users", Summary: "Create user", Tags: []string{"users"},
				Request: wealth.NewUser{}, Response: wealth.User{}, Status: http.StatusCreated, Errors: []int{400}, Handler: s.create},
			{Method: http.MethodPost, Path: "/users/", Summary: "Create user", Tags: []string{"users"},
				Request: wealth.NewUser{}, Response: wealth.User{}, Status: http.StatusCreated, Errors: []int{400}, Handler: s.create},
			{Method: http.MethodPost, Path: "/register", Summary: "Register user", Tags: []string{"users"},
				Description: "Registers a new user and returns it with an access token.",
				Request:     wealth.NewUser{}, Response: Registration{}, Status: http.StatusCreated, Errors: []int{400}, Handler: s.register},
			{Method: http.MethodPost, Path: "/token", Summary: "Login for access token", Tags: []string{"auth"},
				Description: "Authenticates a user with the OAuth2 password form and returns a bearer token.",
				Form:        TokenForm{}, Response: Token{}, Errors: []int{401}, Handler: s.token},
			{Method: http.MethodGet, Path: "/users/me", Summary: "Read current user", Tags: []string{"users"}, Auth: true,
				Response: wealth.User{}, Errors: []int{404}, Handler: s.me},
			{Method: http.MethodGet, Path: "/users", Summary: "List users", Tags: []string{"users"}, Auth: true,
				Description: "Lists users, admin only.",
				Query:       ListQuery{}, Response: UserList{}, Errors: []int{403}, Handler: s.list,
				Middleware: []func(http.Handler) http.Handler{notAdmin}},
		},
		Authenticator: s.issuer.RequireUser(api.Detail),
		Probe:         s.store.Ping,
	}
}

func (s *Service) health(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	u, err := s.signUp(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, u)
}

func (s *Service) register(w http.ResponseWriter, r *http.Request) {
	u, err := s.signUp(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.issuer.Issue(u.Email, u.Role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, Registration{User: u, AccessToken: token, TokenType: "bearer"})
}

// signUp validates and stores the user in the request body.
func (s *Service) signUp(r *http.Request) (wealth.User, error) {
	var in wealth.NewUser
	if err := api.DecodeJSON(r, &in); err != nil {
		return wealth.User{}, err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return wealth.User{}, api.Invalid("body", err)
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return wealth.User{}, err
	}
	u, err := s.store.Users.Create(r.Context(), wealth.User{
		Email:          in.Email,
		HashedPassword: hashed,
		FullName:       in.FullName,
		Role:           in.Role,
		IsActive:       true,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return wealth.User{}, api.Errorf(http.StatusBadRequest, "Email already registered")
	}
	if err != nil {
		return wealth.User{}, err
	}
	s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *Service) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		api.WriteError(w, api.Invalid("body", err))
		return
	}
	form := TokenForm{Username: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}
	var missing []error
	if form.Username == "" {
		missing = append(missing, &wealth.FieldError{Field: "username", Err: errors.New("field required")})
	}
	if form.Password == "" {
		missing = append(missing, &wealth.FieldError{Field: "password", Err: errors.New("field required")})
	}
	if len(missing) > 0 {
		api.WriteError(w, api.Invalid("body", errors.Join(missing...)))
		return
	}

	u, err := s.store.Users.ByEmail(r.Context(), form.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.fail(w, r, err)
		return
	}
	if err != nil || !s.hasher.Verify(form.Password, u.HashedPassword) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		api.Detail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	now := s.now()
	if err := s.store.Users.TouchLogin(r.Context(), u.ID, now); err != nil {
		s.fail(w, r, err)
		return
	}
	u.LastLogin = &now
	token, err := s.issuer.Issue(u.Email, u.Role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, Token{AccessToken: token, TokenType: "bearer", User: u})
}

func (s *Service) me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	u, err := s.store.Users.ByEmail(r.Context(), p.Email)
	if errors.Is(err, store.ErrNotFound) {
		api.Detail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := page(r)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	users, err := s.store.Users.List(r.Context(), skip, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	total, err := s.store.Users.Count(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, UserList{Users: users, Total: total, Skip: skip, Limit: limit})
}

// page reads the skip and limit query parameters.
func page(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()
	var errs []error
	skip, limit = 0, DefaultLimit
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, &wealth.FieldError{Field: "skip", Err: errors.New("value is not a valid integer")})
		case n < 0:
			errs = append(errs, &wealth.FieldError{Field: "skip", Err: errors.New("must be greater than or equal to 0")})
		default:
			skip = n
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, &wealth.FieldError{Field: "limit", Err: errors.New("value is not a valid integer")})
		case n < 1 || n > MaxLimit:
			errs = append(errs, &wealth.FieldError{Field: "limit", Err: errors.New("must be between 1 and 1000")})
		default:
			limit = n
		}
	}
	if len(errs) > 0 {
		return 0, 0, api.Invalid("query", errors.Join(errs...))
	}
	return skip, limit, nil
}

// fail answers with err, logging the errors that are not client errors.
func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", api.GetRequestID(r.Context())),
			zap.Error(err))
	}
	api.WriteError(w, err)
}
