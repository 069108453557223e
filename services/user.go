package services

import (
	"context"
	"errors"
	"eshop/apperror"
	"eshop/jwt"
	"eshop/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"log/slog"
	"strings"
)

type RegisterInput struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	User    string `json:"user"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// 可修改的使用者欄位，nil表示不修改
type UserPatch struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Street    *string `json:"street"`
	Apartment *string `json:"apartment"`
	Zip       *string `json:"zip"`
	City      *string `json:"city"`
	Country   *string `json:"country"`
}

func (p UserPatch) updates() map[string]interface{} {
	fields := map[string]*string{
		"name":      p.Name,
		"phone":     p.Phone,
		"street":    p.Street,
		"apartment": p.Apartment,
		"zip":       p.Zip,
		"city":      p.City,
		"country":   p.Country,
	}

	updates := map[string]interface{}{}
	for column, value := range fields {
		if value != nil {
			updates[column] = *value
		}
	}
	return updates
}

type UserService struct {
	db         *gorm.DB
	issuer     *jwt.Issuer
	logger     *slog.Logger
	bcryptCost int
}

func NewUserService(db *gorm.DB, issuer *jwt.Issuer, logger *slog.Logger) *UserService {
	return &UserService{
		db:         db,
		issuer:     issuer,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// 檢查Email是否重複
func (s *UserService) isEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// 註冊使用者帳戶
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, apperror.Validation("password is required")
	}

	exists, err := s.isEmailExists(ctx, input.Email)
	if err != nil {
		return nil, apperror.Internal("cannot check email", err)
	}
	if exists {
		return nil, apperror.Validation("user already registered")
	}

	//將密碼Hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal("cannot hash password", err)
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Phone:        input.Phone,
		IsAdmin:      input.IsAdmin,
		Street:       input.Street,
		Apartment:    input.Apartment,
		Zip:          input.Zip,
		City:         input.City,
		Country:      input.Country,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Validation("user already registered")
		}
		return nil, apperror.Internal("the user cannot be created", err)
	}
	return &user, nil
}

// 驗證帳號密碼並簽發Token
func (s *UserService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(input.Email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation("user not found")
		}
		return nil, apperror.Internal("database error", err)
	}

	//檢查密碼是否正確
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.Validation("password or email is incorrect")
	}

	token, err := s.issuer.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, apperror.Internal("cannot generate token", err)
	}

	return &LoginResult{
		User:    user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}, nil
}

// 查詢使用者列表
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("name").Find(&users).Error; err != nil {
		return nil, apperror.Internal("cannot list users", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if err := checkID(id, "invalid user id"); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "the user with the given ID was not found")
	}
	return &user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := checkID(id, "invalid user id"); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return apperror.Internal("the user cannot be deleted", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

// 修改使用者資料，只接受UserPatch內的欄位
func (s *UserService) PatchUser(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := patch.updates()
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperror.Internal("the user cannot be updated", err)
	}
	return s.GetUser(ctx, id)
}

func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, apperror.Internal("cannot count users", err)
	}
	return count, nil
}
