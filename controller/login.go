package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pourmind/pym/model"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// Accounts are optional: none of the notes endpoints require one. The session
// only attaches a stable identity for clients that want it.

const (
	sessionName   = "session"
	sessionMaxAge = 30 * 24 * 60 * 60 // seconds
)

func (ctrl *controller) authInit(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.POST("/register", ctrl.register)
	g.POST("/login", ctrl.login)
	g.POST("/logout", ctrl.logout)
	g.GET("/user", ctrl.currentUser)
}

type authCredentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
}

type APIUser struct {
	ID       uint   `json:"id" xml:"id,attr"`
	Username string `json:"username" xml:"username"`
	Email    string `json:"email" xml:"email"`
}

type APIAuthResponse struct {
	XMLName struct{} `json:"-" xml:"result"`
	Success bool     `json:"success" xml:"success"`
	User    APIUser  `json:"user" xml:"user"`
}

type APICurrentUserResponse struct {
	XMLName       struct{} `json:"-" xml:"result"`
	Authenticated bool     `json:"authenticated" xml:"authenticated"`
	User          *APIUser `json:"user" xml:"user,omitempty"`
}

func apiUserFromModel(u *model.User) APIUser {
	return APIUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

func validateCredentials(creds authCredentials) *model.ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(creds.Username) == "" {
		fields["username"] = "username is required"
	}
	if creds.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return &model.ValidationError{Fields: fields}
}

func (ctrl *controller) register(c echo.Context) error {
	var creds authCredentials
	if err := c.Bind(&creds); err != nil {
		return ErrInvalid(err, "invalid request body")
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if verr := validateCredentials(creds); verr != nil {
		return ErrValidation(verr)
	}

	user, err := ctrl.model.RegisterUser(creds.Username, creds.Password, creds.Email)
	if err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			return ErrValidation(&model.ValidationError{Fields: map[string]string{
				"username": "username already exists",
			}})
		}
		return ErrInternal(fmt.Errorf("cannot register user: %w", err))
	}

	if err := setSessionUser(c, user.ID); err != nil {
		return ErrInternal(fmt.Errorf("cannot save session: %w", err))
	}
	return respond(c, http.StatusCreated, APIAuthResponse{Success: true, User: apiUserFromModel(user)})
}

func (ctrl *controller) login(c echo.Context) error {
	var creds authCredentials
	if err := c.Bind(&creds); err != nil {
		return ErrInvalid(err, "invalid request body")
	}
	if verr := validateCredentials(creds); verr != nil {
		return ErrValidation(verr)
	}

	// Do not leak whether the user exists.
	user, err := ctrl.model.AuthenticateUser(strings.TrimSpace(creds.Username), creds.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			return &appError{
				Code:   "UNAUTHORIZED",
				Status: http.StatusUnauthorized,
				Err:    err,
				Public: "Invalid username or password",
			}
		}
		return ErrInternal(fmt.Errorf("cannot authenticate: %w", err))
	}

	if err := ctrl.model.TouchLastLogin(user); err != nil {
		// login still succeeds; record the failure only
		if l, ok := c.Get("logger").(*slog.Logger); ok {
			l.Warn("cannot touch last login", "error", err)
		}
	}
	if err := setSessionUser(c, user.ID); err != nil {
		return ErrInternal(fmt.Errorf("cannot save session: %w", err))
	}
	return respond(c, http.StatusOK, APIAuthResponse{Success: true, User: apiUserFromModel(user)})
}

func (ctrl *controller) logout(c echo.Context) error {
	if err := clearSessionUser(c); err != nil {
		return ErrInternal(fmt.Errorf("cannot clear session: %w", err))
	}
	return respond(c, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (ctrl *controller) currentUser(c echo.Context) error {
	uid := sessionUserID(c)
	if uid == 0 {
		return respond(c, http.StatusOK, APICurrentUserResponse{Authenticated: false})
	}
	user, err := ctrl.model.GetUserByID(uid)
	if err != nil {
		// stale session pointing at a deleted account
		return respond(c, http.StatusOK, APICurrentUserResponse{Authenticated: false})
	}
	u := apiUserFromModel(user)
	return respond(c, http.StatusOK, APICurrentUserResponse{Authenticated: true, User: &u})
}

// ---- session helpers ----

func setSessionUser(c echo.Context, uid uint) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values["uid"] = uid
	return sess.Save(c.Request(), c.Response())
}

func clearSessionUser(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, "uid")
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return sess.Save(c.Request(), c.Response())
}

func sessionUserID(c echo.Context) uint {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return 0
	}
	if v, ok := sess.Values["uid"].(uint); ok {
		return v
	}
	return 0
}
