package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/cloudvault-backend/internal/auth"
	"github.com/lk2023060901/cloudvault-backend/internal/auth/middleware"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/response"
	"github.com/lk2023060901/cloudvault-backend/internal/user/biz"
	"go.uber.org/zap"
)

// UserService exposes the authentication endpoints
type UserService struct {
	uc         *biz.UserUseCase
	jwtManager *auth.JWTManager
	logger     *logger.Logger
}

func NewUserService(uc *biz.UserUseCase, jwtManager *auth.JWTManager, log *logger.Logger) *UserService {
	return &UserService{
		uc:         uc,
		jwtManager: jwtManager,
		logger:     log,
	}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type SigninRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Signup registers a new user
func (s *UserService) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, err := s.uc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("signup failed",
			zap.Error(err),
			zap.String("username", req.Username))
		response.HandleError(c, err)
		return
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username))

	response.Success(c, gin.H{
		"message": "User registered successfully!",
		"userId":  user.ID,
	})
}

// Signin authenticates a user and issues a bearer token. The principal
// may be a username or an email; email is the fallback when username is
// blank.
func (s *UserService) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	account := req.Username
	if account == "" {
		account = req.Email
	}
	if account == "" {
		response.BadRequest(c, "username or email is required")
		return
	}

	user, err := s.uc.Authenticate(c.Request.Context(), account, req.Password)
	if err != nil {
		s.logger.Warn("signin failed",
			zap.String("account", account),
			zap.String("ip", c.ClientIP()))
		response.HandleError(c, err)
		return
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		response.InternalError(c, "failed to generate token")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user": UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

// Me returns the identity of the authenticated caller
func (s *UserService) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	user, err := s.uc.Get(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// RegisterRoutes mounts the auth endpoints. Signup and signin are public;
// /me requires a bearer token.
func (s *UserService) RegisterRoutes(r *gin.RouterGroup, authRequired gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", s.Signup)
		authGroup.POST("/signin", s.Signin)
		authGroup.GET("/me", authRequired, s.Me)
	}
}

// bindingError turns gin binding failures into the validation error shape
func bindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		response.ValidationError(c, details)
		return
	}
	response.BadRequest(c, err.Error())
}
