package server

import (
	"net/http"
	"strings"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"
	"taskboard/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
)

func (api *TaskAPI) createTask(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	var req models.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidTitle.Error()})
		return
	}
	if description == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidDescription.Error()})
		return
	}
	if !allowedTaskPriorities[req.Priority] {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidPriority.Error()})
		return
	}
	if !allowedTaskStatuses[req.Status] {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidStatus.Error()})
		return
	}
	if !validTaskLabels(req.Labels) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidLabels.Error()})
		return
	}
	if req.Completed == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidCompleted.Error()})
		return
	}

	now := models.NowISO()
	task := models.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Priority:    req.Priority,
		Status:      req.Status,
		Labels:      req.Labels,
		Completed:   *req.Completed,
		UserID:      user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
		LikedBy:     []string{},
		Comments:    []models.Comment{},
	}

	if err := api.tasks.CreateTask(ctx.Request.Context(), &task); err != nil {
		logger.Error("не удалось создать задачу", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	shapeTask(&task)
	ctx.JSON(http.StatusCreated, gin.H{"message": "задача успешно создана", "task": task})
}

func (api *TaskAPI) getTasks(ctx *gin.Context) {
	tasks, err := api.tasks.GetTasks(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	resp := listTasks(tasks, ctx.Request.URL.Query())
	resp.Data = shapeTasks(resp.Data)
	ctx.JSON(http.StatusOK, resp)
}

func (api *TaskAPI) getMyTasks(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	tasks, err := api.tasks.GetTasks(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	own := keepTasks(tasks, func(t models.Task) bool { return t.UserID == user.ID })

	resp := listTasks(own, ctx.Request.URL.Query())
	resp.Data = shapeTasks(resp.Data)
	ctx.JSON(http.StatusOK, resp)
}

func (api *TaskAPI) getTaskByID(ctx *gin.Context) {
	id := ctx.Param("id")

	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), id)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	shapeTask(task)
	ctx.JSON(http.StatusOK, gin.H{"task": task})
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	id := ctx.Param("id")
	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), id)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "можно изменять только свои задачи"})
		return
	}

	var req models.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidTitle.Error()})
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidDescription.Error()})
			return
		}
		task.Description = description
	}
	if req.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*req.Priority))
		if !allowedTaskPriorities[priority] {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidPriority.Error()})
			return
		}
		task.Priority = priority
	}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !allowedTaskStatuses[status] {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidStatus.Error()})
			return
		}
		task.Status = status
	}
	if req.Labels != nil {
		labels := make([]string, 0, len(req.Labels))
		for _, label := range req.Labels {
			labels = append(labels, strings.ToLower(label))
		}
		if !validTaskLabels(labels) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidLabels.Error()})
			return
		}
		task.Labels = labels
	}

	task.UpdatedAt = models.NowISO()

	if err := api.tasks.UpdateTask(ctx.Request.Context(), id, task); err != nil {
		logger.Error("не удалось обновить задачу", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	shapeTask(task)
	ctx.JSON(http.StatusOK, gin.H{"message": "задача успешно обновлена", "task": task})
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	id := ctx.Param("id")
	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), id)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "можно удалять только свои задачи"})
		return
	}

	if err := api.tasks.DeleteTask(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "задача успешно удалена"})
}

func (api *TaskAPI) likeTask(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	id := ctx.Param("id")
	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), id)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "можно отмечать только свои задачи"})
		return
	}

	newLikedBy, liked := toggleLike(task.LikedBy, user.ID)
	if err := api.tasks.SetTaskLikes(ctx.Request.Context(), id, newLikedBy); err != nil {
		logger.Error("не удалось сохранить отметку", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	task.LikedBy = newLikedBy
	shapeTask(task)

	message := "отметка снята"
	if liked {
		message = "задача отмечена"
	}
	ctx.JSON(http.StatusOK, gin.H{"message": message, "liked": liked, "task": task})
}

func (api *TaskAPI) completeTask(ctx *gin.Context) {
	api.setCompletion(ctx, true)
}

func (api *TaskAPI) incompleteTask(ctx *gin.Context) {
	api.setCompletion(ctx, false)
}

func (api *TaskAPI) setCompletion(ctx *gin.Context, completed bool) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	id := ctx.Param("id")
	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), id)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "можно изменять только свои задачи"})
		return
	}

	task.Completed = completed
	task.UpdatedAt = models.NowISO()

	if err := api.tasks.UpdateTask(ctx.Request.Context(), id, task); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	shapeTask(task)
	message := "задача отмечена как невыполненная"
	if completed {
		message = "задача отмечена как выполненная"
	}
	ctx.JSON(http.StatusOK, gin.H{"message": message, "task": task})
}

func validTaskLabels(labels []string) bool {
	if len(labels) == 0 {
		return false
	}
	for _, label := range labels {
		if !allowedTaskLabels[label] {
			return false
		}
	}
	return true
}
