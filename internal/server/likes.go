package server

import "taskboard/internal/domain/models"

// toggleLike — единая операция переключения отметки "нравится" для задач,
// комментариев и ответов: если пользователь уже в списке, он удаляется.
func toggleLike(likedBy []string, userID string) ([]string, bool) {
	newLikedBy := make([]string, 0, len(likedBy)+1)
	found := false
	for _, id := range likedBy {
		if id == userID {
			found = true
			continue
		}
		newLikedBy = append(newLikedBy, id)
	}

	if found {
		return newLikedBy, false
	}
	return append(newLikedBy, userID), true
}

// shapeTask пересчитывает производные счётчики от likedBy и заменяет
// nil-срезы пустыми, чтобы в JSON уходили [] вместо null.
func shapeTask(task *models.Task) {
	if task.Labels == nil {
		task.Labels = []string{}
	}
	if task.LikedBy == nil {
		task.LikedBy = []string{}
	}
	if task.Comments == nil {
		task.Comments = []models.Comment{}
	}
	task.LikesCount = len(task.LikedBy)
	for i := range task.Comments {
		shapeComment(&task.Comments[i])
	}
}

func shapeComment(comment *models.Comment) {
	if comment.LikedBy == nil {
		comment.LikedBy = []string{}
	}
	if comment.Replies == nil {
		comment.Replies = []models.Reply{}
	}
	comment.Likes = len(comment.LikedBy)
	for i := range comment.Replies {
		shapeReply(&comment.Replies[i])
	}
}

func shapeReply(reply *models.Reply) {
	if reply.LikedBy == nil {
		reply.LikedBy = []string{}
	}
	reply.Likes = len(reply.LikedBy)
}

func shapeTasks(tasks []models.Task) []models.Task {
	for i := range tasks {
		shapeTask(&tasks[i])
	}
	return tasks
}
