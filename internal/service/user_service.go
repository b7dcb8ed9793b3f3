package service

import (
	"errors"

	"gorm.io/gorm"

	"exam_admin_backend/internal/model"
	"exam_admin_backend/internal/repository"
	"exam_admin_backend/internal/util"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(page, limit int) ([]model.User, int64, error) {
	return s.userRepo.List(page, limit)
}

func (s *UserService) SetDisabled(id uint, disabled bool) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	return s.userRepo.SetDisabled(id, disabled)
}
