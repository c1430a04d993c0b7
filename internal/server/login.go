package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/multielectric/mesupply/internal/auth"
	"github.com/multielectric/mesupply/internal/models"
	"github.com/multielectric/mesupply/internal/store"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing credentials"})
		return
	}

	me, err := s.authenticate(c, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := s.tokens.Sign(*me)
	if err != nil {
		log.Printf("login: failed to sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.tokens.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"me": me})
}

func (s *Server) authenticate(c *gin.Context, email, password string) (*auth.Identity, error) {
	emp, err := s.store.EmployeeByEmail(c.Request.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		return s.bootstrapAdmin(email, password)
	}
	if err != nil {
		return nil, err
	}

	if emp.Status != models.UserStatusActive {
		return nil, errors.New("account inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}

	if err := s.store.TouchEmployeeLogin(c.Request.Context(), emp.ID); err != nil {
		log.Printf("login: failed to record login time for %s: %v", emp.ID, err)
	}

	role, ok := auth.ParseRole(emp.Role)
	if !ok {
		role = auth.RoleEmployee
	}
	return &auth.Identity{
		ID:          emp.ID,
		Name:        emp.Name,
		Email:       emp.Email,
		Role:        role,
		Permissions: auth.PermissionsForRole(role),
	}, nil
}

// bootstrapAdmin lets the configured admin log in before any employee rows
// exist, so a fresh deployment is reachable without a seed step.
func (s *Server) bootstrapAdmin(email, password string) (*auth.Identity, error) {
	cfg := s.cfg.Auth
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil, errors.New("unknown employee")
	}
	if email != cfg.AdminEmail || password != cfg.AdminPassword {
		return nil, errors.New("unknown employee")
	}

	return &auth.Identity{
		ID:          uuid.NewString(),
		Name:        "Admin",
		Email:       email,
		Role:        auth.RoleAdmin,
		Permissions: auth.PermissionsForRole(auth.RoleAdmin),
	}, nil
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"me": currentIdentity(c)})
}
