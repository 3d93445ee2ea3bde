package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"unicode"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"
	"taskboard/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByToken(token string) (*models.User, error)
	IssueToken(userID, token string) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTasks(ctx context.Context) ([]models.Task, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error

	SetTaskLikes(ctx context.Context, taskID string, likedBy []string) error
	AddComment(ctx context.Context, taskID string, comment *models.Comment) error
	RemoveComment(ctx context.Context, taskID, commentID string) error
	AddReply(ctx context.Context, commentID string, reply *models.Reply) error
	RemoveReply(ctx context.Context, taskID, commentID, replyID string) error
	SetCommentLikes(ctx context.Context, taskID, commentID string, likedBy []string) error
	SetReplyLikes(ctx context.Context, taskID, commentID, replyID string, likedBy []string) error
	GetTaskByCommentID(ctx context.Context, commentID string) (*models.Task, error)
	GetTaskByReplyID(ctx context.Context, replyID string) (*models.Task, error)
}

type TaskAPI struct {
	httpSrv *http.Server
	users   UserRepository
	tasks   TaskRepository
}

func NewTaskAPI(cfg *Config, users UserRepository, tasks TaskRepository) *TaskAPI {
	if cfg == nil || users == nil || tasks == nil {
		return nil
	}

	httpSrv := http.Server{
		Addr: cfg.ServerAddr(),
	}

	api := TaskAPI{
		httpSrv: &httpSrv,
		users:   users,
		tasks:   tasks,
	}

	api.configRoutes()

	return &api
}

func (api *TaskAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}

	if api.httpSrv.Addr == "" {
		api.httpSrv.Addr = ":9000"
	}

	return api.httpSrv.ListenAndServe()
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return nil
	}
	return api.httpSrv.Shutdown(ctx)
}

func (api *TaskAPI) configRoutes() {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogging())

	// без этого флага gin никогда не вызывает NoMethod
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "использован некорректный HTTP-метод"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", api.register)
		auth.POST("/login", api.login)
	}

	articles := router.Group("/articles")
	{
		articles.GET("", api.getTasks)
		articles.GET("/:id", api.getTaskByID)

		authed := articles.Group("", api.authRequired())
		{
			authed.POST("", api.createTask)
			authed.GET("/my", api.getMyTasks)
			authed.PUT("/:id", api.updateTask)
			authed.DELETE("/:id", api.deleteTask)
			authed.POST("/:id/like", api.likeTask)
			authed.POST("/:id/complete", api.completeTask)
			authed.POST("/:id/incomplete", api.incompleteTask)

			authed.POST("/:id/comment", api.postComment)
			authed.GET("/:id/comments", api.getComments)
			authed.POST("/comments/:commentID/reply", api.postReply)
			authed.POST("/:id/comments/:commentID/like", api.likeComment)
			authed.POST("/:id/comments/:commentID/replies/:replyID/like", api.likeReply)
			authed.DELETE("/:id/comments/:commentID", api.deleteComment)
			authed.DELETE("/:id/comments/:commentID/replies/:replyID", api.deleteReply)
		}
	}

	api.httpSrv.Handler = router
}

func (api *TaskAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "некорректные данные пользователя"})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	if !strongPassword(req.Password) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrWeakPassword.Error()})
		return
	}

	existingUser, _ := api.users.GetUserByEmail(req.Email)
	if existingUser != nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": errors.ErrEmailAlreadyExists.Error()})
		return
	}

	existingUser, _ = api.users.GetUserByUsername(req.Username)
	if existingUser != nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": errors.ErrUserAlreadyExists.Error()})
		return
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		Password: hashPassword(req.Password),
	}

	if err := api.users.CreateUser(&user); err != nil {
		logger.Error("не удалось создать пользователя", err)
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "пользователь успешно создан",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (api *TaskAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "некорректные данные запроса"})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	user, err := api.users.GetUserByEmail(req.Email)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrInvalidCredentials.Error()})
		return
	}

	if user.Password != hashPassword(req.Password) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrInvalidCredentials.Error()})
		return
	}

	token, err := newToken()
	if err != nil {
		logger.Error("не удалось сгенерировать токен", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	// Единственная активная сессия на всю систему: перед выдачей нового
	// токена сбрасываются токены всех пользователей.
	if err := api.users.IssueToken(user.ID, token); err != nil {
		logger.Error("не удалось сохранить токен", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "вход выполнен успешно",
		"token":   token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func strongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

func validationErrorToErrorResponse(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			switch verr.Field() {
			case "Username":
				return errors.ErrInvalidUsername
			case "Email":
				return errors.ErrInvalidEmail
			case "Password":
				return errors.ErrInvalidPassword
			case "Title":
				return errors.ErrInvalidTitle
			case "Description":
				return errors.ErrInvalidDescription
			case "Priority":
				return errors.ErrInvalidPriority
			case "Status":
				return errors.ErrInvalidStatus
			case "Labels":
				return errors.ErrInvalidLabels
			}
		}
	}
	return errors.ErrValidationFailed
}
