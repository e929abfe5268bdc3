package services

import (
	"context"
	"errors"

	"timetrack-backend/internal/auth"
	"timetrack-backend/internal/cache"
	"timetrack-backend/internal/models"
	"timetrack-backend/internal/repositories"
)

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

// ListUsers returns a company's users
func (s *UserService) ListUsers(ctx context.Context, companyID int) ([]*models.User, error) {
	return s.Repo.List(ctx, companyID)
}

// Signup creates a new user with hashed password
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, errors.New("name, email, and password are required")
	}
	if req.CompanyID == 0 {
		return nil, errors.New("company is required")
	}

	existingUser, _ := s.Repo.GetByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, errors.New("user with this email already exists")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = "employee"
	}

	user := &models.User{
		CompanyID:    req.CompanyID,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         role,
		ResourceNo:   req.ResourceNo,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and returns a JWT token. Verified credentials
// are cached so repeat logins skip the bcrypt compare.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}

	var user *models.User
	if userID, ok := cache.GetCachedAuth(ctx, req.Email, req.Password); ok {
		cached, err := s.Repo.Get(ctx, int(userID))
		if err == nil && cached.IsActive {
			user = cached
		}
	}

	if user == nil {
		found, err := s.Repo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, errors.New("invalid email or password")
		}
		if !auth.VerifyPassword(found.PasswordHash, req.Password) {
			return nil, errors.New("invalid email or password")
		}
		if !found.IsActive {
			return nil, errors.New("account is suspended")
		}
		user = found
		cache.CacheAuth(ctx, req.Email, req.Password, int64(user.ID))
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token: token,
		User:  user,
	}, nil
}
