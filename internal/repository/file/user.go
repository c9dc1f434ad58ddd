package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
)

const usersFile = "users.json"

// userDocument is one entry of users.json, keyed by user id.
type userDocument struct {
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type userRepositoryImpl struct {
	storage storage.FileStorage
	mu      sync.Mutex
}

func NewUserRepository(fs storage.FileStorage) user.UserRepository {
	return &userRepositoryImpl{storage: fs}
}

// load must be called with mu held.
func (r *userRepositoryImpl) load(ctx context.Context) (map[string]userDocument, error) {
	docs := make(map[string]userDocument)
	data, err := readAll(ctx, r.storage, usersFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return docs, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", usersFile, err)
	}
	if data == nil {
		return docs, nil
	}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", usersFile, err)
	}
	return docs, nil
}

// save must be called with mu held.
func (r *userRepositoryImpl) save(ctx context.Context, docs map[string]userDocument) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", usersFile, err)
	}
	if err := r.storage.Put(ctx, usersFile, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", usersFile, err)
	}
	return nil
}

func toUser(id string, doc userDocument) user.User {
	return user.User{
		ID:           id,
		PasswordHash: doc.Password,
		FullName:     doc.Name,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx)
	if err != nil {
		return user.User{}, err
	}
	doc, ok := docs[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return toUser(id, doc), nil
}

// CreateIfAbsent implements user.UserRepository.
func (r *userRepositoryImpl) CreateIfAbsent(ctx context.Context, newUser user.User) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx)
	if err != nil {
		return user.User{}, false, err
	}
	if doc, ok := docs[newUser.ID]; ok {
		return toUser(newUser.ID, doc), false, nil
	}

	docs[newUser.ID] = userDocument{
		Password:  newUser.PasswordHash,
		Name:      newUser.FullName,
		CreatedAt: newUser.CreatedAt,
		UpdatedAt: newUser.UpdatedAt,
	}
	if err := r.save(ctx, docs); err != nil {
		return user.User{}, false, err
	}
	return newUser, true, nil
}

func (r *userRepositoryImpl) update(ctx context.Context, id string, fn func(*userDocument)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx)
	if err != nil {
		return err
	}
	doc, ok := docs[id]
	if !ok {
		return user.ErrUserNotFound
	}
	fn(&doc)
	doc.UpdatedAt = time.Now().UTC()
	docs[id] = doc
	return r.save(ctx, docs)
}

// UpdatePasswordHash implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, func(doc *userDocument) { doc.Password = passwordHash })
}

// UpdateFullName implements user.UserRepository.
func (r *userRepositoryImpl) UpdateFullName(ctx context.Context, id, fullName string) error {
	return r.update(ctx, id, func(doc *userDocument) { doc.Name = fullName })
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(docs))
	for id, doc := range docs {
		users = append(users, toUser(id, doc))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// DeleteAll implements user.UserRepository.
func (r *userRepositoryImpl) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.storage.Delete(ctx, usersFile)
}
