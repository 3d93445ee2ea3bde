package mongodb

import (
	"context"
	"time"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"
	"taskboard/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 15 * time.Second

type Storage struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

func NewStorage(connStr, dbName string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connStr))
	if err != nil {
		logger.Error("не удалось подключиться к базе данных", err)
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Error("база данных не отвечает", err)
		return nil, err
	}

	db := client.Database(dbName)
	s := &Storage{
		client: client,
		users:  db.Collection("todoUsers"),
		tasks:  db.Collection("todoTasks"),
	}

	logger.Info("соединение с базой данных установлено успешно")
	return s, nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Storage) CreateUser(user *models.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		logger.Error("не удалось создать пользователя", err)
		return errors.ErrConflict
	}
	return nil
}

func (s *Storage) GetUserByID(id string) (*models.User, error) {
	return s.findUser(bson.M{"_id": id})
}

func (s *Storage) GetUserByUsername(username string) (*models.User, error) {
	return s.findUser(bson.M{"username": username})
}

func (s *Storage) GetUserByEmail(email string) (*models.User, error) {
	return s.findUser(bson.M{"email": email})
}

func (s *Storage) GetUserByToken(token string) (*models.User, error) {
	if token == "" {
		return nil, errors.ErrUserNotFound
	}
	return s.findUser(bson.M{"token": token})
}

func (s *Storage) findUser(filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var user models.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		logger.Error("не удалось получить пользователя", err)
		return nil, err
	}
	return &user, nil
}

// IssueToken убирает токены у всех пользователей, затем ставит новый
// токен текущему. Единая активная сессия на всю систему.
func (s *Storage) IssueToken(userID, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.users.UpdateMany(ctx, bson.M{}, bson.M{"$unset": bson.M{"token": ""}}); err != nil {
		logger.Error("не удалось сбросить старые токены", err)
		return err
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"token": token}})
	if err != nil {
		logger.Error("не удалось сохранить токен", err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.tasks.InsertOne(ctx, task); err != nil {
		logger.Error("не удалось создать задачу", err)
		return err
	}
	return nil
}

func (s *Storage) GetTasks(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.tasks.Find(ctx, bson.M{})
	if err != nil {
		logger.Error("не удалось получить задачи", err)
		return nil, err
	}

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		logger.Error("не удалось прочитать задачи", err)
		return nil, err
	}
	return tasks, nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	return s.findTask(ctx, bson.M{"_id": id}, errors.ErrTaskNotFound)
}

func (s *Storage) GetTaskByCommentID(ctx context.Context, commentID string) (*models.Task, error) {
	return s.findTask(ctx, bson.M{"comments._id": commentID}, errors.ErrCommentNotFound)
}

func (s *Storage) GetTaskByReplyID(ctx context.Context, replyID string) (*models.Task, error) {
	return s.findTask(ctx, bson.M{"comments.replies._id": replyID}, errors.ErrReplyNotFound)
}

func (s *Storage) findTask(ctx context.Context, filter bson.M, notFound error) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var task models.Task
	err := s.tasks.FindOne(ctx, filter).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, notFound
	}
	if err != nil {
		logger.Error("не удалось получить задачу", err)
		return nil, err
	}
	return &task, nil
}

func (s *Storage) UpdateTask(ctx context.Context, id string, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":       task.Title,
		"description": task.Description,
		"priority":    task.Priority,
		"status":      task.Status,
		"labels":      task.Labels,
		"completed":   task.Completed,
		"updatedAt":   task.UpdatedAt,
	}}

	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Error("не удалось обновить задачу", err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrTaskNotFound
	}
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Error("не удалось удалить задачу", err)
		return err
	}
	if res.DeletedCount == 0 {
		return errors.ErrTaskNotFound
	}
	return nil
}

func (s *Storage) SetTaskLikes(ctx context.Context, taskID string, likedBy []string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"likedBy": likedBy, "likesCount": len(likedBy)}}
	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": taskID}, update)
	if err != nil {
		logger.Error("не удалось сохранить отметки задачи", err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrTaskNotFound
	}
	return nil
}

func (s *Storage) AddComment(ctx context.Context, taskID string, comment *models.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": models.NowISO()},
	}
	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": taskID}, update)
	if err != nil {
		logger.Error("не удалось добавить комментарий", err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrTaskNotFound
	}
	return nil
}

func (s *Storage) RemoveComment(ctx context.Context, taskID, commentID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}}
	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": taskID}, update)
	if err != nil {
		logger.Error("не удалось удалить комментарий", err)
		return err
	}
	if res.ModifiedCount == 0 {
		return errors.ErrCommentNotFound
	}
	return nil
}

func (s *Storage) AddReply(ctx context.Context, commentID string, reply *models.Reply) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$push": bson.M{"comments.$.replies": reply}}
	res, err := s.tasks.UpdateOne(ctx, bson.M{"comments._id": commentID}, update)
	if err != nil {
		logger.Error("не удалось добавить ответ", err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrCommentNotFound
	}
	return nil
}

func (s *Storage) RemoveReply(ctx context.Context, taskID, commentID, replyID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$pull": bson.M{"comments.$[c].replies": bson.M{"_id": replyID}}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"c._id": commentID}},
	})

	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": taskID}, update, opts)
	if err != nil {
		logger.Error("не удалось удалить ответ", err)
		return err
	}
	if res.ModifiedCount == 0 {
		return errors.ErrReplyNotFound
	}
	return nil
}

func (s *Storage) SetCommentLikes(ctx context.Context, taskID, commentID string, likedBy []string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"_id": taskID, "comments._id": commentID}
	update := bson.M{"$set": bson.M{
		"comments.$.likedBy": likedBy,
		"comments.$.likes":   len(likedBy),
	}}

	res, err := s.tasks.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.Error("не удалось сохранить отметки комментария", err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrCommentNotFound
	}
	return nil
}

func (s *Storage) SetReplyLikes(ctx context.Context, taskID, commentID, replyID string, likedBy []string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"comments.$[c].replies.$[r].likedBy": likedBy,
		"comments.$[c].replies.$[r].likes":   len(likedBy),
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"c._id": commentID},
			bson.M{"r._id": replyID},
		},
	})

	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": taskID}, update, opts)
	if err != nil {
		logger.Error("не удалось сохранить отметки ответа", err)
		return err
	}
	if res.MatchedCount == 0 {
		return errors.ErrReplyNotFound
	}
	return nil
}
