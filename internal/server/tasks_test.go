package server

import (
	"encoding/json"
	"fmt"
	"testing"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func ownerUser() *models.User {
	return &models.User{
		ID:       "owner1",
		Username: "owner",
		Email:    "owner@example.com",
	}
}

func otherUser() *models.User {
	return &models.User{
		ID:       "other1",
		Username: "other",
		Email:    "other@example.com",
	}
}

func authAs(mockUsers *MockUserRepository, token string, user *models.User) {
	mockUsers.On("GetUserByToken", token).Return(user, nil)
}

func sampleTask() *models.Task {
	return &models.Task{
		ID:          "task1",
		Title:       "Купить продукты",
		Description: "Молоко и хлеб",
		Priority:    "low",
		Status:      "pending",
		Labels:      []string{"personal"},
		Completed:   false,
		UserID:      "owner1",
		CreatedAt:   "2025-01-10T10:00:00Z",
		UpdatedAt:   "2025-01-10T10:00:00Z",
		LikedBy:     []string{},
		Comments:    []models.Comment{},
	}
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		request models.CreateTaskRequest
		want    struct {
			statusCode int
		}
		mockSetup func(*MockUserRepository, *MockTaskRepository)
	}{
		{
			name:  "successful creation",
			token: "token1",
			request: models.CreateTaskRequest{
				Title:       "Новая задача",
				Description: "описание",
				Priority:    "low",
				Status:      "pending",
				Labels:      []string{"work"},
				Completed:   boolPtr(false),
			},
			want: struct{ statusCode int }{statusCode: 201},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
				mockTasks.On("CreateTask", mock.Anything, mock.AnythingOfType("*models.Task")).Return(nil)
			},
		},
		{
			name:  "label outside allowed set",
			token: "token1",
			request: models.CreateTaskRequest{
				Title:       "Новая задача",
				Description: "описание",
				Priority:    "low",
				Status:      "pending",
				Labels:      []string{"unknown"},
				Completed:   boolPtr(false),
			},
			want: struct{ statusCode int }{statusCode: 400},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
			},
		},
		{
			name:  "invalid priority",
			token: "token1",
			request: models.CreateTaskRequest{
				Title:       "Новая задача",
				Description: "описание",
				Priority:    "critical",
				Status:      "pending",
				Labels:      []string{"work"},
				Completed:   boolPtr(false),
			},
			want: struct{ statusCode int }{statusCode: 400},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
			},
		},
		{
			name:  "missing completed flag",
			token: "token1",
			request: models.CreateTaskRequest{
				Title:       "Новая задача",
				Description: "описание",
				Priority:    "low",
				Status:      "pending",
				Labels:      []string{"work"},
			},
			want: struct{ statusCode int }{statusCode: 400},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
			},
		},
		{
			name:  "unauthorized",
			token: "",
			request: models.CreateTaskRequest{
				Title:       "Новая задача",
				Description: "описание",
				Priority:    "low",
				Status:      "pending",
				Labels:      []string{"work"},
				Completed:   boolPtr(false),
			},
			want:      struct{ statusCode int }{statusCode: 401},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTasks := &MockTaskRepository{}
			tt.mockSetup(mockUsers, mockTasks)

			api := newTestAPI(mockUsers, mockTasks)
			w := doJSONRequest(api, "POST", "/articles", tt.token, tt.request)

			assert.Equal(t, tt.want.statusCode, w.Code)
			mockTasks.AssertExpectations(t)
		})
	}
}

func TestCreateTaskEchoesSubmittedFields(t *testing.T) {
	mockUsers := &MockUserRepository{}
	mockTasks := &MockTaskRepository{}
	authAs(mockUsers, "token1", ownerUser())
	mockTasks.On("CreateTask", mock.Anything, mock.AnythingOfType("*models.Task")).Return(nil)

	api := newTestAPI(mockUsers, mockTasks)
	w := doJSONRequest(api, "POST", "/articles", "token1", models.CreateTaskRequest{
		Title:       "  Задача с пробелами  ",
		Description: " описание ",
		Priority:    "high",
		Status:      "in-progress",
		Labels:      []string{"work", "urgent"},
		Completed:   boolPtr(true),
	})

	assert.Equal(t, 201, w.Code)

	var resp struct {
		Task models.Task `json:"task"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Задача с пробелами", resp.Task.Title)
	assert.Equal(t, "описание", resp.Task.Description)
	assert.Equal(t, "high", resp.Task.Priority)
	assert.Equal(t, "in-progress", resp.Task.Status)
	assert.Equal(t, []string{"work", "urgent"}, resp.Task.Labels)
	assert.True(t, resp.Task.Completed)
	assert.Equal(t, "owner1", resp.Task.UserID)
	assert.NotEmpty(t, resp.Task.ID)
	assert.Equal(t, 0, resp.Task.LikesCount)
}

func TestGetTasksPagination(t *testing.T) {
	tasks := make([]models.Task, 0, 25)
	for i := 0; i < 25; i++ {
		task := *sampleTask()
		task.ID = fmt.Sprintf("task%d", i)
		task.CreatedAt = fmt.Sprintf("2025-01-10T10:00:%02dZ", i)
		tasks = append(tasks, task)
	}

	mockUsers := &MockUserRepository{}
	mockTasks := &MockTaskRepository{}
	mockTasks.On("GetTasks", mock.Anything).Return(tasks, nil)

	api := newTestAPI(mockUsers, mockTasks)
	w := doJSONRequest(api, "GET", "/articles?page=3&limit=10", "", nil)

	assert.Equal(t, 200, w.Code)

	var resp models.TaskListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 25, resp.TotalData)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 3, resp.CurrentPage)
	assert.Equal(t, 10, resp.Limit)
	assert.Len(t, resp.Data, 5)
	// сортировка по убыванию createdAt: последняя страница — самые старые
	assert.Equal(t, "task4", resp.Data[0].ID)
}

func TestGetMyTasksScopedToOwner(t *testing.T) {
	own := *sampleTask()
	foreign := *sampleTask()
	foreign.ID = "task2"
	foreign.UserID = "other1"

	mockUsers := &MockUserRepository{}
	mockTasks := &MockTaskRepository{}
	authAs(mockUsers, "token1", ownerUser())
	mockTasks.On("GetTasks", mock.Anything).Return([]models.Task{own, foreign}, nil)

	api := newTestAPI(mockUsers, mockTasks)
	w := doJSONRequest(api, "GET", "/articles/my", "token1", nil)

	assert.Equal(t, 200, w.Code)

	var resp models.TaskListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalData)
	assert.Equal(t, "task1", resp.Data[0].ID)
}

func TestGetTaskByID(t *testing.T) {
	tests := []struct {
		name   string
		taskID string
		want   struct {
			statusCode int
		}
		mockSetup func(*MockTaskRepository)
	}{
		{
			name:   "existing task",
			taskID: "task1",
			want:   struct{ statusCode int }{statusCode: 200},
			mockSetup: func(mockTasks *MockTaskRepository) {
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(sampleTask(), nil)
			},
		},
		{
			name:   "missing task",
			taskID: "missing",
			want:   struct{ statusCode int }{statusCode: 404},
			mockSetup: func(mockTasks *MockTaskRepository) {
				mockTasks.On("GetTaskByID", mock.Anything, "missing").Return(nil, errors.ErrTaskNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTasks := &MockTaskRepository{}
			tt.mockSetup(mockTasks)

			api := newTestAPI(mockUsers, mockTasks)
			w := doJSONRequest(api, "GET", "/articles/"+tt.taskID, "", nil)

			assert.Equal(t, tt.want.statusCode, w.Code)
			mockTasks.AssertExpectations(t)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		request models.UpdateTaskRequest
		want    struct {
			statusCode int
		}
		mockSetup func(*MockUserRepository, *MockTaskRepository)
	}{
		{
			name:  "owner updates with case normalization",
			token: "token1",
			request: models.UpdateTaskRequest{
				Status:   strPtr("COMPLETED"),
				Priority: strPtr("High"),
			},
			want: struct{ statusCode int }{statusCode: 200},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(sampleTask(), nil)
				mockTasks.On("UpdateTask", mock.Anything, "task1", mock.AnythingOfType("*models.Task")).Return(nil)
			},
		},
		{
			name:    "non-owner forbidden",
			token:   "token2",
			request: models.UpdateTaskRequest{Title: strPtr("чужая задача")},
			want:    struct{ statusCode int }{statusCode: 403},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token2", otherUser())
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(sampleTask(), nil)
			},
		},
		{
			name:    "empty title rejected",
			token:   "token1",
			request: models.UpdateTaskRequest{Title: strPtr("   ")},
			want:    struct{ statusCode int }{statusCode: 400},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(sampleTask(), nil)
			},
		},
		{
			name:    "invalid status rejected",
			token:   "token1",
			request: models.UpdateTaskRequest{Status: strPtr("archived")},
			want:    struct{ statusCode int }{statusCode: 400},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(sampleTask(), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTasks := &MockTaskRepository{}
			tt.mockSetup(mockUsers, mockTasks)

			api := newTestAPI(mockUsers, mockTasks)
			w := doJSONRequest(api, "PUT", "/articles/task1", tt.token, tt.request)

			assert.Equal(t, tt.want.statusCode, w.Code)
			mockTasks.AssertExpectations(t)

			if tt.want.statusCode == 200 {
				var resp struct {
					Task models.Task `json:"task"`
				}
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "completed", resp.Task.Status)
				assert.Equal(t, "high", resp.Task.Priority)
			}
		})
	}
}

func TestDeleteTask(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  struct {
			statusCode int
		}
		mockSetup func(*MockUserRepository, *MockTaskRepository)
	}{
		{
			name:  "owner deletes task",
			token: "token1",
			want:  struct{ statusCode int }{statusCode: 200},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(sampleTask(), nil)
				mockTasks.On("DeleteTask", mock.Anything, "task1").Return(nil)
			},
		},
		{
			name:  "non-owner forbidden",
			token: "token2",
			want:  struct{ statusCode int }{statusCode: 403},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token2", otherUser())
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(sampleTask(), nil)
			},
		},
		{
			name:  "missing task",
			token: "token1",
			want:  struct{ statusCode int }{statusCode: 404},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository) {
				authAs(mockUsers, "token1", ownerUser())
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(nil, errors.ErrTaskNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTasks := &MockTaskRepository{}
			tt.mockSetup(mockUsers, mockTasks)

			api := newTestAPI(mockUsers, mockTasks)
			w := doJSONRequest(api, "DELETE", "/articles/task1", tt.token, nil)

			assert.Equal(t, tt.want.statusCode, w.Code)
			mockTasks.AssertExpectations(t)
		})
	}
}

func TestLikeTask(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		likedBy []string
		want    struct {
			statusCode int
			liked      bool
			likesCount int
		}
		mockSetup func(*MockUserRepository, *MockTaskRepository, []string)
	}{
		{
			name:    "first like",
			token:   "token1",
			likedBy: []string{},
			want: struct {
				statusCode int
				liked      bool
				likesCount int
			}{statusCode: 200, liked: true, likesCount: 1},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository, likedBy []string) {
				authAs(mockUsers, "token1", ownerUser())
				task := sampleTask()
				task.LikedBy = likedBy
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(task, nil)
				mockTasks.On("SetTaskLikes", mock.Anything, "task1", []string{"owner1"}).Return(nil)
			},
		},
		{
			name:    "second like removes the mark",
			token:   "token1",
			likedBy: []string{"owner1"},
			want: struct {
				statusCode int
				liked      bool
				likesCount int
			}{statusCode: 200, liked: false, likesCount: 0},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository, likedBy []string) {
				authAs(mockUsers, "token1", ownerUser())
				task := sampleTask()
				task.LikedBy = likedBy
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(task, nil)
				mockTasks.On("SetTaskLikes", mock.Anything, "task1", []string{}).Return(nil)
			},
		},
		{
			name:    "non-owner forbidden",
			token:   "token2",
			likedBy: []string{},
			want: struct {
				statusCode int
				liked      bool
				likesCount int
			}{statusCode: 403},
			mockSetup: func(mockUsers *MockUserRepository, mockTasks *MockTaskRepository, likedBy []string) {
				authAs(mockUsers, "token2", otherUser())
				mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(sampleTask(), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTasks := &MockTaskRepository{}
			tt.mockSetup(mockUsers, mockTasks, tt.likedBy)

			api := newTestAPI(mockUsers, mockTasks)
			w := doJSONRequest(api, "POST", "/articles/task1/like", tt.token, nil)

			assert.Equal(t, tt.want.statusCode, w.Code)
			mockTasks.AssertExpectations(t)

			if tt.want.statusCode == 200 {
				var resp struct {
					Liked bool        `json:"liked"`
					Task  models.Task `json:"task"`
				}
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.want.liked, resp.Liked)
				assert.Equal(t, tt.want.likesCount, resp.Task.LikesCount)
			}
		})
	}
}

func TestCompletionToggle(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   struct {
			completed bool
		}
	}{
		{
			name:   "mark as completed",
			action: "complete",
			want:   struct{ completed bool }{completed: true},
		},
		{
			name:   "mark as incomplete",
			action: "incomplete",
			want:   struct{ completed bool }{completed: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTasks := &MockTaskRepository{}
			authAs(mockUsers, "token1", ownerUser())

			task := sampleTask()
			task.Completed = !tt.want.completed
			mockTasks.On("GetTaskByID", mock.Anything, "task1").Return(task, nil)
			mockTasks.On("UpdateTask", mock.Anything, "task1", mock.AnythingOfType("*models.Task")).Return(nil)

			api := newTestAPI(mockUsers, mockTasks)
			w := doJSONRequest(api, "POST", "/articles/task1/"+tt.action, "token1", nil)

			assert.Equal(t, 200, w.Code)

			var resp struct {
				Task models.Task `json:"task"`
			}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want.completed, resp.Task.Completed)
		})
	}
}
