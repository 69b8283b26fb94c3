package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(*user))
}

// login accepts an OAuth2 password form (username, password) or a JSON body
// with identifier and password. The identifier may be a username or an email.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	} else {
		req.Username = c.PostForm("username")
		req.Password = c.PostForm("password")
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}

	token, err := h.Tokens.Issue(c.Request.Context(), identifier, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *Handler) me(c *gin.Context) {
	id := mustIdentity(c)
	user, err := h.Users.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}
