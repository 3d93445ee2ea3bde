package models

import "time"

type User struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	Username string `json:"username" bson:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" bson:"email" validate:"required,email"`
	Password string `json:"-" bson:"password"`
	Token    string `json:"-" bson:"token,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Task struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Priority    string    `json:"priority" bson:"priority"`
	Status      string    `json:"status" bson:"status"`
	Labels      []string  `json:"labels" bson:"labels"`
	Completed   bool      `json:"completed" bson:"completed"`
	UserID      string    `json:"userId" bson:"userId"`
	CreatedAt   string    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   string    `json:"updatedAt" bson:"updatedAt"`
	LikedBy     []string  `json:"likedBy" bson:"likedBy"`
	LikesCount  int       `json:"likesCount" bson:"likesCount"`
	Comments    []Comment `json:"comments" bson:"comments"`
}

type Comment struct {
	ID        string   `json:"id" bson:"_id"`
	UserID    string   `json:"userId" bson:"userId"`
	Username  string   `json:"username" bson:"username"`
	Text      string   `json:"text" bson:"text"`
	LikedBy   []string `json:"likedBy" bson:"likedBy"`
	Likes     int      `json:"likes" bson:"likes"`
	CreatedAt string   `json:"createdAt" bson:"createdAt"`
	UpdatedAt string   `json:"updatedAt" bson:"updatedAt"`
	Replies   []Reply  `json:"replies" bson:"replies"`
}

type Reply struct {
	ID        string   `json:"id" bson:"_id"`
	UserID    string   `json:"userId" bson:"userId"`
	Username  string   `json:"username" bson:"username"`
	Text      string   `json:"text" bson:"text"`
	LikedBy   []string `json:"likedBy" bson:"likedBy"`
	Likes     int      `json:"likes" bson:"likes"`
	UpdatedAt string   `json:"updatedAt" bson:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"required,max=2000"`
	Priority    string   `json:"priority" validate:"required"`
	Status      string   `json:"status" validate:"required"`
	Labels      []string `json:"labels" validate:"required,min=1"`
	Completed   *bool    `json:"completed"`
}

type UpdateTaskRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Priority    *string  `json:"priority"`
	Status      *string  `json:"status"`
	Labels      []string `json:"labels"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type TaskListResponse struct {
	TotalData   int    `json:"totalData"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	Limit       int    `json:"limit"`
	Data        []Task `json:"data"`
}

// NowISO возвращает текущий момент в строковом формате,
// в котором хранятся createdAt/updatedAt документов.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
