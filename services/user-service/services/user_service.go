package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doguaydn/microservices-e-commerce/pkg/cache"
	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Create(ctx context.Context, req models.UserRequest) (*models.User, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id uint) error
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Stats(ctx context.Context) (*models.Stats, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type Caches struct {
	User *cache.Cache[models.User]
	All  *cache.Cache[[]models.User]
}

func NewCaches(store cache.Store, opts ...cache.Option) Caches {
	return Caches{
		User: cache.New[models.User](store, cache.User, opts...),
		All:  cache.New[[]models.User](store, cache.UsersAll, opts...),
	}
}

type userService struct {
	repo      repository.UserRepository
	caches    Caches
	publisher eventbus.Publisher
	tokens    *auth.Tokens
	logger    *zap.Logger
	hashCost  int
}

func NewUserService(repo repository.UserRepository, caches Caches, publisher eventbus.Publisher, tokens *auth.Tokens, logger *zap.Logger) UserService {
	return &userService{
		repo:      repo,
		caches:    caches,
		publisher: publisher,
		tokens:    tokens,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
	}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(svc UserService, cost int) UserService {
	if s, ok := svc.(*userService); ok {
		s.hashCost = cost
	}
	return svc
}

var errInvalidCredentials = apperrors.New(apperrors.KindUnauthorized, "Invalid email or password", nil)

func notFound(id uint) error {
	return apperrors.NotFound("User not found with id: %d", id)
}

func emailTaken(email string) error {
	return apperrors.Conflict("Email already exists: %s", email)
}

func (s *userService) Create(ctx context.Context, req models.UserRequest) (*models.User, error) {
	return s.create(ctx, req, auth.RoleUser)
}

func (s *userService) create(ctx context.Context, req models.UserRequest, role string) (*models.User, error) {
	_, err := s.repo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, emailTaken(req.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}
	u := &models.User{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: string(hashed),
		Phone:    req.Phone,
		Role:     role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, emailTaken(req.Email)
		}
		return nil, apperrors.Internal("failed to create user", err)
	}
	s.invalidate(ctx, s.caches.All.EvictAll(ctx))

	evt := events.UserRegisteredEvent{UserID: u.ID, Email: u.Email, Name: u.Name, Timestamp: time.Now().UTC()}
	if err := eventbus.PublishJSON(ctx, s.publisher, events.UserExchange, events.UserRegisteredKey, evt); err != nil {
		s.logger.Error("failed to publish user registered event", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.caches.User.GetOrLoad(ctx, fmt.Sprint(id), func(ctx context.Context) (models.User, error) {
		u, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return models.User{}, err
		}
		return *u, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}
	return &u, nil
}

func (s *userService) GetAll(ctx context.Context) ([]models.User, error) {
	users, err := s.caches.All.GetOrLoad(ctx, cache.AllKey, s.repo.FindAll)
	if err != nil {
		return nil, apperrors.Internal("failed to list users", err)
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.User, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != u.Email {
		if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
			return nil, emailTaken(req.Email)
		}
	}
	u.Name = req.Name
	u.Surname = req.Surname
	u.Email = req.Email
	u.Phone = req.Phone
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
		if err != nil {
			return nil, apperrors.Internal("failed to hash password", err)
		}
		u.Password = string(hashed)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, emailTaken(req.Email)
		}
		return nil, apperrors.Internal("failed to update user", err)
	}
	s.invalidate(ctx, s.caches.User.Put(ctx, fmt.Sprint(id), *u))
	s.invalidate(ctx, s.caches.All.EvictAll(ctx))
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Internal("failed to delete user", err)
	}
	s.invalidate(ctx, s.caches.User.Evict(ctx, fmt.Sprint(id)))
	s.invalidate(ctx, s.caches.All.EvictAll(ctx))
	return nil
}

func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}
	return &models.LoginResponse{Token: token, Email: u.Email, Name: u.Name, Surname: u.Surname}, nil
}

func (s *userService) Stats(ctx context.Context) (*models.Stats, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to count users", err)
	}
	return &models.Stats{TotalUsers: n}, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is
// already registered.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.create(ctx, models.UserRequest{Name: "Admin", Email: email, Password: password}, auth.RoleAdmin)
	if apperrors.KindOf(err) == apperrors.KindConflict {
		return nil
	}
	return err
}

func (s *userService) find(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}
	return u, nil
}

func (s *userService) invalidate(_ context.Context, err error) {
	if err != nil {
		s.logger.Error("cache invalidation failed", zap.Error(err))
	}
}
