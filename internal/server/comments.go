package server

import (
	"net/http"
	"strings"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"
	"taskboard/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Модерация комментариев и ответов принадлежит владельцу задачи,
// а не автору комментария. Проверка существования выполняется до
// проверки прав: неизвестный id даёт 404, чужая задача — 403.

func (api *TaskAPI) postComment(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	taskID := ctx.Param("id")
	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "комментарии может добавлять только владелец задачи"})
		return
	}

	var req models.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrEmptyComment.Error()})
		return
	}

	now := models.NowISO()
	comment := models.Comment{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		Text:      text,
		LikedBy:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
		Replies:   []models.Reply{},
	}

	if err := api.tasks.AddComment(ctx.Request.Context(), taskID, &comment); err != nil {
		logger.Error("не удалось добавить комментарий", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "комментарий успешно добавлен", "comment": comment})
}

func (api *TaskAPI) getComments(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	taskID := ctx.Param("id")
	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "комментарии может просматривать только владелец задачи"})
		return
	}

	comments := task.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	for i := range comments {
		shapeComment(&comments[i])
	}

	ctx.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (api *TaskAPI) postReply(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	var req models.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrEmptyReply.Error()})
		return
	}

	// id комментария глобально уникален, владеющая задача ищется по нему.
	commentID := ctx.Param("commentID")
	task, err := api.tasks.GetTaskByCommentID(ctx.Request.Context(), commentID)
	if err != nil {
		if err == errors.ErrCommentNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrCommentNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "отвечать может только владелец задачи"})
		return
	}

	reply := models.Reply{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		Text:      text,
		LikedBy:   []string{},
		UpdatedAt: models.NowISO(),
	}

	if err := api.tasks.AddReply(ctx.Request.Context(), commentID, &reply); err != nil {
		logger.Error("не удалось добавить ответ", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "ответ успешно добавлен", "reply": reply})
}

func (api *TaskAPI) likeComment(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	taskID := ctx.Param("id")
	commentID := ctx.Param("commentID")

	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	comment := findComment(task, commentID)
	if comment == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrCommentNotFound.Error()})
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": errors.ErrForbidden.Error()})
		return
	}

	newLikedBy, liked := toggleLike(comment.LikedBy, user.ID)
	if err := api.tasks.SetCommentLikes(ctx.Request.Context(), taskID, commentID, newLikedBy); err != nil {
		logger.Error("не удалось сохранить отметку комментария", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	message := "отметка снята"
	if liked {
		message = "комментарий отмечен"
	}
	ctx.JSON(http.StatusOK, gin.H{"message": message, "liked": liked, "likes": len(newLikedBy)})
}

func (api *TaskAPI) likeReply(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	taskID := ctx.Param("id")
	commentID := ctx.Param("commentID")
	replyID := ctx.Param("replyID")

	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	comment := findComment(task, commentID)
	if comment == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrCommentNotFound.Error()})
		return
	}

	reply := findReply(comment, replyID)
	if reply == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrReplyNotFound.Error()})
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": errors.ErrForbidden.Error()})
		return
	}

	newLikedBy, liked := toggleLike(reply.LikedBy, user.ID)
	if err := api.tasks.SetReplyLikes(ctx.Request.Context(), taskID, commentID, replyID, newLikedBy); err != nil {
		logger.Error("не удалось сохранить отметку ответа", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	message := "отметка снята"
	if liked {
		message = "ответ отмечен"
	}
	ctx.JSON(http.StatusOK, gin.H{"message": message, "liked": liked, "likes": len(newLikedBy)})
}

func (api *TaskAPI) deleteComment(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	commentID := ctx.Param("commentID")
	task, err := api.tasks.GetTaskByCommentID(ctx.Request.Context(), commentID)
	if err != nil {
		if err == errors.ErrCommentNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrCommentNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "удалять комментарии может только владелец задачи"})
		return
	}

	if err := api.tasks.RemoveComment(ctx.Request.Context(), task.ID, commentID); err != nil {
		if err == errors.ErrCommentNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrCommentNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "комментарий удален"})
}

func (api *TaskAPI) deleteReply(ctx *gin.Context) {
	user := currentUser(ctx)
	if user == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}

	replyID := ctx.Param("replyID")
	task, err := api.tasks.GetTaskByReplyID(ctx.Request.Context(), replyID)
	if err != nil {
		if err == errors.ErrReplyNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrReplyNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	if task.UserID != user.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "удалять ответы может только владелец задачи"})
		return
	}

	// Родительский комментарий определяется по вложенности, а не по пути.
	parent := findCommentByReply(task, replyID)
	if parent == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrReplyNotFound.Error()})
		return
	}

	if err := api.tasks.RemoveReply(ctx.Request.Context(), task.ID, parent.ID, replyID); err != nil {
		if err == errors.ErrReplyNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrReplyNotFound.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "ответ удален"})
}

func findComment(task *models.Task, commentID string) *models.Comment {
	for i := range task.Comments {
		if task.Comments[i].ID == commentID {
			return &task.Comments[i]
		}
	}
	return nil
}

func findReply(comment *models.Comment, replyID string) *models.Reply {
	for i := range comment.Replies {
		if comment.Replies[i].ID == replyID {
			return &comment.Replies[i]
		}
	}
	return nil
}

func findCommentByReply(task *models.Task, replyID string) *models.Comment {
	for i := range task.Comments {
		if findReply(&task.Comments[i], replyID) != nil {
			return &task.Comments[i]
		}
	}
	return nil
}
