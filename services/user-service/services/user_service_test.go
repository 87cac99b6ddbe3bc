package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/doguaydn/microservices-e-commerce/pkg/cache"
	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ---- fakes ----

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]models.User
	nextID uint
	finds  int
}

func newFakeRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for id := uint(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type published struct {
	exchange, key string
	body          []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, exchange, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{exchange, routingKey, payload})
	return nil
}

var tokens = auth.NewTokens("test-secret", time.Hour)

func newService(repo *fakeUserRepo, pub *fakePublisher) services.UserService {
	svc := services.NewUserService(repo, services.NewCaches(cache.NewMemoryStore()), pub, tokens, zap.NewNop())
	return services.WithHashCost(svc, bcrypt.MinCost)
}

func ada() models.UserRequest {
	return models.UserRequest{Name: "Ada", Surname: "Lovelace", Email: "ada@example.com", Password: "secret123"}
}

// ---- tests ----

func TestCreate_PublishesUserRegistered(t *testing.T) {
	repo, pub := newFakeRepo(), &fakePublisher{}
	svc := newService(repo, pub)

	u, err := svc.Create(context.Background(), ada())
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", repo.users[u.ID].Password)
	assert.Equal(t, auth.RoleUser, u.Role)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, events.UserExchange, pub.msgs[0].exchange)
	assert.Equal(t, events.UserRegisteredKey, pub.msgs[0].key)

	var evt events.UserRegisteredEvent
	require.NoError(t, json.Unmarshal(pub.msgs[0].body, &evt))
	assert.Equal(t, u.ID, evt.UserID)
	assert.Equal(t, "ada@example.com", evt.Email)
	assert.Equal(t, "Ada", evt.Name)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, pub := newFakeRepo(), &fakePublisher{}
	svc := newService(repo, pub)

	_, err := svc.Create(context.Background(), ada())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), ada())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Len(t, pub.msgs, 1)
}

func TestCreate_PublishFailureStillSucceeds(t *testing.T) {
	svc := newService(newFakeRepo(), &fakePublisher{err: errors.New("broker down")})

	u, err := svc.Create(context.Background(), ada())
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
}

func TestGet_CachedAndNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakePublisher{})
	ctx := context.Background()

	u, err := svc.Create(ctx, ada())
	require.NoError(t, err)

	_, err = svc.Get(ctx, u.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.finds)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetAll_EvictedOnCreate(t *testing.T) {
	svc := newService(newFakeRepo(), &fakePublisher{})
	ctx := context.Background()

	_, err := svc.Create(ctx, ada())
	require.NoError(t, err)
	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = svc.Create(ctx, models.UserRequest{Name: "Alan", Email: "alan@example.com", Password: "secret123"})
	require.NoError(t, err)
	all, err = svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdate_ReplacesCachedUser(t *testing.T) {
	svc := newService(newFakeRepo(), &fakePublisher{})
	ctx := context.Background()

	u, err := svc.Create(ctx, ada())
	require.NoError(t, err)
	_, err = svc.Get(ctx, u.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, u.ID, models.UpdateUserRequest{Name: "Augusta", Email: "ada@example.com"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", got.Name)
}

func TestDelete_EvictsUser(t *testing.T) {
	svc := newService(newFakeRepo(), &fakePublisher{})
	ctx := context.Background()

	u, err := svc.Create(ctx, ada())
	require.NoError(t, err)
	_, err = svc.Get(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLogin(t *testing.T) {
	svc := newService(newFakeRepo(), &fakePublisher{})
	ctx := context.Background()

	u, err := svc.Create(ctx, ada())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, auth.RoleUser, claims.Role)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakePublisher{})
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "adminpass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "adminpass"))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "admin@example.com", Password: "adminpass"})
	require.NoError(t, err)
	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}
