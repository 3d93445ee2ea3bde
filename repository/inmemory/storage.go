package storage

import (
	"context"
	"sync"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"
)

// Storage хранит пользователей и задачи в памяти. Используется как
// резервный бэкенд, когда MongoDB недоступна, и в тестах.
type Storage struct {
	mu    sync.RWMutex
	users map[string]models.User
	tasks map[string]models.Task
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[string]models.User),
		tasks: make(map[string]models.Task),
	}
}

// cloneTask копирует вложенные срезы задачи. Геттеры и сеттеры обмениваются
// только такими копиями: обработчики дописывают производные счётчики уже
// вне блокировки хранилища, и общая память с ним недопустима.
func cloneTask(task models.Task) models.Task {
	task.Labels = append([]string(nil), task.Labels...)
	task.LikedBy = append([]string(nil), task.LikedBy...)

	comments := make([]models.Comment, len(task.Comments))
	copy(comments, task.Comments)
	for i := range comments {
		comments[i] = cloneComment(comments[i])
	}
	task.Comments = comments
	return task
}

func cloneComment(comment models.Comment) models.Comment {
	comment.LikedBy = append([]string(nil), comment.LikedBy...)

	replies := make([]models.Reply, len(comment.Replies))
	copy(replies, comment.Replies)
	for i := range replies {
		replies[i].LikedBy = append([]string(nil), replies[i].LikedBy...)
	}
	comment.Replies = replies
	return comment
}

func (s *Storage) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return errors.ErrUserAlreadyExists
		}
		if existing.Email == user.Email {
			return errors.ErrEmailAlreadyExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) GetUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) GetUserByToken(token string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if token == "" {
		return nil, errors.ErrUserNotFound
	}
	for _, user := range s.users {
		if user.Token == token {
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

// IssueToken сбрасывает токены всех пользователей и устанавливает новый
// токен указанному: в системе действует одна активная сессия.
func (s *Storage) IssueToken(userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; !exists {
		return errors.ErrUserNotFound
	}
	for id, user := range s.users {
		user.Token = ""
		s.users[id] = user
	}
	user := s.users[userID]
	user.Token = token
	s.users[userID] = user
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *Storage) GetTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, cloneTask(task))
	}
	return tasks, nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, errors.ErrTaskNotFound
	}
	t := cloneTask(task)
	return &t, nil
}

func (s *Storage) UpdateTask(ctx context.Context, id string, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; !exists {
		return errors.ErrTaskNotFound
	}
	task.ID = id
	s.tasks[id] = cloneTask(*task)
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; !exists {
		return errors.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Storage) SetTaskLikes(ctx context.Context, taskID string, likedBy []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return errors.ErrTaskNotFound
	}
	task.LikedBy = append([]string{}, likedBy...)
	task.LikesCount = len(likedBy)
	s.tasks[taskID] = task
	return nil
}

func (s *Storage) AddComment(ctx context.Context, taskID string, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return errors.ErrTaskNotFound
	}
	task.Comments = append(task.Comments, cloneComment(*comment))
	task.UpdatedAt = models.NowISO()
	s.tasks[taskID] = task
	return nil
}

func (s *Storage) RemoveComment(ctx context.Context, taskID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return errors.ErrTaskNotFound
	}

	comments := make([]models.Comment, 0, len(task.Comments))
	removed := false
	for _, comment := range task.Comments {
		if comment.ID == commentID {
			removed = true
			continue
		}
		comments = append(comments, comment)
	}
	if !removed {
		return errors.ErrCommentNotFound
	}

	task.Comments = comments
	s.tasks[taskID] = task
	return nil
}

func (s *Storage) AddReply(ctx context.Context, commentID string, reply *models.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, task := range s.tasks {
		for i := range task.Comments {
			if task.Comments[i].ID == commentID {
				r := *reply
				r.LikedBy = append([]string(nil), r.LikedBy...)
				task.Comments[i].Replies = append(task.Comments[i].Replies, r)
				s.tasks[id] = task
				return nil
			}
		}
	}
	return errors.ErrCommentNotFound
}

func (s *Storage) RemoveReply(ctx context.Context, taskID, commentID, replyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return errors.ErrTaskNotFound
	}

	for i := range task.Comments {
		if task.Comments[i].ID != commentID {
			continue
		}
		replies := make([]models.Reply, 0, len(task.Comments[i].Replies))
		removed := false
		for _, reply := range task.Comments[i].Replies {
			if reply.ID == replyID {
				removed = true
				continue
			}
			replies = append(replies, reply)
		}
		if !removed {
			return errors.ErrReplyNotFound
		}
		task.Comments[i].Replies = replies
		s.tasks[taskID] = task
		return nil
	}
	return errors.ErrReplyNotFound
}

func (s *Storage) SetCommentLikes(ctx context.Context, taskID, commentID string, likedBy []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return errors.ErrTaskNotFound
	}
	for i := range task.Comments {
		if task.Comments[i].ID == commentID {
			task.Comments[i].LikedBy = append([]string{}, likedBy...)
			task.Comments[i].Likes = len(likedBy)
			s.tasks[taskID] = task
			return nil
		}
	}
	return errors.ErrCommentNotFound
}

func (s *Storage) SetReplyLikes(ctx context.Context, taskID, commentID, replyID string, likedBy []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return errors.ErrTaskNotFound
	}
	for i := range task.Comments {
		if task.Comments[i].ID != commentID {
			continue
		}
		for j := range task.Comments[i].Replies {
			if task.Comments[i].Replies[j].ID == replyID {
				task.Comments[i].Replies[j].LikedBy = append([]string{}, likedBy...)
				task.Comments[i].Replies[j].Likes = len(likedBy)
				s.tasks[taskID] = task
				return nil
			}
		}
		return errors.ErrReplyNotFound
	}
	return errors.ErrReplyNotFound
}

func (s *Storage) GetTaskByCommentID(ctx context.Context, commentID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, task := range s.tasks {
		for i := range task.Comments {
			if task.Comments[i].ID == commentID {
				t := cloneTask(task)
				return &t, nil
			}
		}
	}
	return nil, errors.ErrCommentNotFound
}

func (s *Storage) GetTaskByReplyID(ctx context.Context, replyID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, task := range s.tasks {
		for i := range task.Comments {
			for j := range task.Comments[i].Replies {
				if task.Comments[i].Replies[j].ID == replyID {
					t := cloneTask(task)
					return &t, nil
				}
			}
		}
	}
	return nil, errors.ErrReplyNotFound
}
