package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/taskwise/taskwise/internal/model"
)

const (
	tasksCollection = "tasks"
	usersCollection = "users"
)

// MongoStore implements Store on MongoDB. Documents keep the layout
// {_id, user, title, description, dueDate, priority, status} for tasks and
// {_id, name, email, password} for users.
type MongoStore struct {
	client *mongo.Client
	tasks  *mongo.Collection
	users  *mongo.Collection
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        primitive.ObjectID `bson:"user"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	DueDate     *time.Time         `bson:"dueDate"`
	Priority    string             `bson:"priority"`
	Status      string             `bson:"status"`
}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

// NewMongo connects to uri, verifies the connection and ensures indexes.
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		tasks:  db.Collection(tasksCollection),
		users:  db.Collection(usersCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks user index: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CreateTask implements TaskRepository.
func (s *MongoStore) CreateTask(ctx context.Context, task *model.Task) error {
	owner, err := primitive.ObjectIDFromHex(task.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to create task: invalid owner id: %w", err)
	}

	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		User:        owner,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     dateParam(task.DueDate),
		Priority:    string(task.Priority),
		Status:      string(task.Status),
	}

	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	task.ID = doc.ID.Hex()
	return nil
}

// ListTasksByOwner implements TaskRepository.
func (s *MongoStore) ListTasksByOwner(ctx context.Context, ownerID string) ([]*model.Task, error) {
	tasks := make([]*model.Task, 0)

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return tasks, nil
	}

	cursor, err := s.tasks.Find(ctx,
		bson.M{"user": owner},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	for i := range docs {
		tasks = append(tasks, docs[i].toModel())
	}
	return tasks, nil
}

// GetTask implements TaskRepository.
func (s *MongoStore) GetTask(ctx context.Context, id, ownerID string) (*model.Task, error) {
	filter, ok := taskFilter(id, ownerID)
	if !ok {
		return nil, ErrTaskNotFound
	}

	var doc taskDocument
	if err := s.tasks.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return doc.toModel(), nil
}

// UpdateTask implements TaskRepository.
func (s *MongoStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch, ownerID string) (*model.Task, error) {
	set := patchToSet(patch)
	if len(set) == 0 {
		return s.GetTask(ctx, id, ownerID)
	}

	filter, ok := taskFilter(id, ownerID)
	if !ok {
		return nil, ErrTaskNotFound
	}

	var doc taskDocument
	err := s.tasks.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return doc.toModel(), nil
}

// DeleteTask implements TaskRepository.
func (s *MongoStore) DeleteTask(ctx context.Context, id, ownerID string) (*model.Task, error) {
	filter, ok := taskFilter(id, ownerID)
	if !ok {
		return nil, ErrTaskNotFound
	}

	var doc taskDocument
	if err := s.tasks.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return doc.toModel(), nil
}

// CreateUser implements UserRepository.
func (s *MongoStore) CreateUser(ctx context.Context, user *model.User) error {
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Name:     user.Name,
		Email:    user.Email,
		Password: user.PasswordHash,
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = doc.ID.Hex()
	return nil
}

// GetUserByEmail implements UserRepository.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

// GetUserByID implements UserRepository.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &model.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.Password,
	}, nil
}

// taskFilter reports false when id or ownerID cannot match any document.
func taskFilter(id, ownerID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	filter := bson.M{"_id": oid}

	if ownerID != "" {
		owner, err := primitive.ObjectIDFromHex(ownerID)
		if err != nil {
			return nil, false
		}
		filter["user"] = owner
	}
	return filter, true
}

func patchToSet(patch model.TaskPatch) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.ClearDueDate {
		set["dueDate"] = nil
	} else if patch.DueDate != nil {
		set["dueDate"] = patch.DueDate.Time
	}
	return set
}

func (d *taskDocument) toModel() *model.Task {
	task := &model.Task{
		ID:          d.ID.Hex(),
		OwnerID:     d.User.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Priority:    model.Priority(d.Priority),
		Status:      model.Status(d.Status),
	}
	if d.DueDate != nil {
		due := model.NewDate(*d.DueDate)
		task.DueDate = &due
	}
	return task
}
