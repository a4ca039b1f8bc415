package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"user-account-service/internal/domain"
	"user-account-service/internal/feature/user"
	"user-account-service/internal/transport/http/ez"
	mdw "user-account-service/internal/transport/http/middleware"
)

// msgGone answers reads and updates of unknown or soft-deleted users.
const msgGone = "User not found or has been deleted"

type UserHandler struct {
	svc *user.Service
}

func NewUserHandler(svc *user.Service) *UserHandler { return &UserHandler{svc: svc} }

type registerIn struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerOut struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginOut struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type listIn struct {
	Search string `form:"search"`
	SortBy string `form:"sortBy"`
	Page   string `form:"page"`
	Limit  string `form:"limit"`
}

// updateIn fields left out or sent empty keep their stored value.
type updateIn struct {
	Name  string `json:"name"  binding:"omitempty,max=64"`
	Email string `json:"email" binding:"omitempty,email"`
}

func (in updateIn) patch() domain.UserPatch {
	var p domain.UserPatch
	if in.Name != "" {
		p.Name = &in.Name
	}
	if in.Email != "" {
		p.Email = &in.Email
	}
	return p
}

type updateOut struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type message struct {
	Message string `json:"message"`
}

// Mount registers the account routes on g. Register, login and logout are public;
// everything else sits behind the session gate.
func (h *UserHandler) Mount(g *gin.RouterGroup) {
	public := ez.New(g)

	ez.RegisterAction(public, ez.Action[registerIn, registerOut]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (registerOut, error) {
			u, tok, err := h.svc.Register(c.Request.Context(), user.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password,
			})
			if err != nil {
				return registerOut{}, err
			}
			return registerOut{Message: "User registered successfully", User: u, Token: tok}, nil
		},
	})

	ez.RegisterAction(public, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			tok, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{Message: "Login successful", Token: tok}, nil
		},
	})

	// Logout reports a missing token as 400, unlike the gate.
	ez.RegisterAction(public, ez.Action[struct{}, message]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (message, error) {
			tok := mdw.BearerToken(c.GetHeader("Authorization"))
			if err := h.svc.Logout(c.Request.Context(), tok); err != nil {
				return message{}, err
			}
			return message{Message: "Logout successful"}, nil
		},
	})

	authed := g.Group("")
	authed.Use(mdw.AuthSession(h.svc))
	private := ez.New(authed)

	ez.RegisterAction(private, ez.Action[listIn, *domain.Page]{
		Method: http.MethodGet,
		Path:   "/all",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listIn) (*domain.Page, error) {
			q := user.ParseListQuery(in.Search, in.SortBy, in.Page, in.Limit)
			return h.svc.List(c.Request.Context(), q)
		},
	})

	ez.RegisterAction(private, ez.Action[struct{}, []domain.DomainCount]{
		Method: http.MethodGet,
		Path:   "/aggregate/domains",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.DomainCount, error) {
			return h.svc.DomainReport(c.Request.Context())
		},
	})

	ez.RegisterAction(private, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
			if errors.Is(err, domain.ErrNotFound) {
				return nil, ez.NotFound(msgGone)
			}
			return u, err
		},
	})

	ez.RegisterAction(private, ez.Action[updateIn, updateOut]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSONOptional,
		Handler: func(c *gin.Context, in *updateIn) (updateOut, error) {
			u, err := h.svc.Update(c.Request.Context(), c.Param("id"), in.patch())
			if errors.Is(err, domain.ErrNotFound) {
				return updateOut{}, ez.NotFound(msgGone)
			}
			if err != nil {
				return updateOut{}, err
			}
			return updateOut{Message: "User updated successfully", User: u}, nil
		},
	})

	ez.RegisterAction(private, ez.Action[struct{}, message]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (message, error) {
			if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return message{}, err
			}
			return message{Message: "User deleted successfully"}, nil
		},
	})
}
