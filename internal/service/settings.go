package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/pkg/ws"
)

// userValidate 按 json 字段名报告错误
var userValidate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

var userFieldMessages = map[string]string{
	"name":  "Name is required",
	"email": "Valid email is required",
	"phone": "Phone number is required",
	"role":  "Role must be staff or admin",
}

// PricesInput 油价修改
type PricesInput struct {
	PetrolPrice decimal.Decimal `json:"petrol_price"`
	DieselPrice decimal.Decimal `json:"diesel_price"`
}

// UserInput 用户字段
type UserInput struct {
	Name  string          `json:"name" validate:"required"`
	Email string          `json:"email" validate:"required,email"`
	Phone string          `json:"phone" validate:"required"`
	Role  models.UserRole `json:"role" validate:"oneof=staff admin"`
}

// SettingsService 站点设置与用户
type SettingsService struct {
	logger   *zap.Logger
	settings SettingsStore
	users    UserStore
	notifier Notifier
	now      func() time.Time
}

// NewSettingsService 创建设置服务
func NewSettingsService(logger *zap.Logger, settings SettingsStore, users UserStore, notifier Notifier) *SettingsService {
	return &SettingsService{
		logger:   logger,
		settings: settings,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// FuelPrices 获取油价，未设置时为 0
func (s *SettingsService) FuelPrices(ctx context.Context) (*models.FuelPrices, error) {
	prices, err := s.settings.GetFuelPrices(ctx)
	if isNotFound(err) {
		return &models.FuelPrices{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fuel prices: %w", err)
	}
	return prices, nil
}

// UpdateFuelPrices 修改油价
func (s *SettingsService) UpdateFuelPrices(ctx context.Context, in PricesInput) (*models.FuelPrices, error) {
	var issues []ledger.Issue
	if in.PetrolPrice.IsNegative() {
		issues = append(issues, ledger.Issue{Kind: ledger.KindMissingField, Field: "petrol_price", Detail: "Petrol price must not be negative"})
	}
	if in.DieselPrice.IsNegative() {
		issues = append(issues, ledger.Issue{Kind: ledger.KindMissingField, Field: "diesel_price", Detail: "Diesel price must not be negative"})
	}
	if len(issues) > 0 {
		return nil, &ledger.ValidationError{Issues: issues}
	}

	now := s.now()
	prices := &models.FuelPrices{PetrolPrice: in.PetrolPrice, DieselPrice: in.DieselPrice, LastUpdated: &now}
	if err := s.settings.SaveFuelPrices(ctx, prices); err != nil {
		return nil, fmt.Errorf("save fuel prices: %w", err)
	}

	s.logger.Info("Fuel prices updated",
		zap.String("petrol", prices.PetrolPrice.String()),
		zap.String("diesel", prices.DieselPrice.String()),
	)
	s.notifier.Publish(ws.TopicFuelPrices, prices)
	return prices, nil
}

// Profile 获取站点信息
func (s *SettingsService) Profile(ctx context.Context) (*models.SystemProfile, error) {
	profile, err := s.settings.GetProfile(ctx)
	if isNotFound(err) {
		return &models.SystemProfile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get system profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile 修改站点名称，保留创建时间
func (s *SettingsService) UpdateProfile(ctx context.Context, name string) (*models.SystemProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ledger.Fail(ledger.KindMissingField, "name", "System name is required")
	}

	current, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	profile := &models.SystemProfile{Name: name, CreatedAt: current.CreatedAt, UpdatedAt: &now}
	if profile.CreatedAt == nil {
		profile.CreatedAt = &now
	}
	if err := s.settings.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save system profile: %w", err)
	}
	return profile, nil
}

// Users 用户列表
func (s *SettingsService) Users(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// CreateUser 创建用户
func (s *SettingsService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	u, err := validateUser(in)
	if err != nil {
		return nil, err
	}
	u.ID = uuid.NewString()
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("User created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// UpdateUser 修改用户
func (s *SettingsService) UpdateUser(ctx context.Context, id string, in UserInput) (*models.User, error) {
	u, err := validateUser(in)
	if err != nil {
		return nil, err
	}
	u.ID = id
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// DeleteUser 删除用户
func (s *SettingsService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

// validateUser 去掉首尾空格，角色默认 staff，一次返回全部问题
func validateUser(in UserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Role == "" {
		in.Role = models.RoleStaff
	}

	if err := userValidate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validate user: %w", err)
		}
		issues := make([]ledger.Issue, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			issues = append(issues, ledger.Issue{
				Kind:   ledger.KindMissingField,
				Field:  fe.Field(),
				Detail: userFieldMessages[fe.Field()],
			})
		}
		return nil, &ledger.ValidationError{Issues: issues}
	}

	return &models.User{Name: in.Name, Email: in.Email, Phone: in.Phone, Role: in.Role}, nil
}
