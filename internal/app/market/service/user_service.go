package service

import (
	"context"
	"errors"
	"fmt"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"

	"github.com/google/uuid"
)

// UserService собирает профиль пользователя из нескольких хранилищ
type UserService struct {
	userRepo     repository.UserRepository
	favoriteRepo repository.FavoriteRepository
	purchaseRepo repository.PurchaseRepository
	basketSvc    *BasketService
}

// NewUserService создает новый сервис профиля
func NewUserService(
	userRepo repository.UserRepository,
	favoriteRepo repository.FavoriteRepository,
	purchaseRepo repository.PurchaseRepository,
	basketSvc *BasketService,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
		purchaseRepo: purchaseRepo,
		basketSvc:    basketSvc,
	}
}

// GetUserInfo возвращает профиль: данные пользователя, избранное,
// корзину и купленные товары
func (s *UserService) GetUserInfo(ctx context.Context, userID uuid.UUID) (*entity.UserInfoResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	favorites, err := s.favoriteRepo.ListProductIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if favorites == nil {
		favorites = []uuid.UUID{}
	}

	purchased, err := s.purchaseRepo.ListProductIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	if purchased == nil {
		purchased = []uuid.UUID{}
	}

	basket, err := s.basketSvc.GetBasket(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}

	return &entity.UserInfoResponse{
		Username:          user.Username,
		Email:             user.Email,
		AvatarURL:         user.AvatarURL,
		FavProducts:       favorites,
		Basket:            basket,
		PurchasedProducts: purchased,
	}, nil
}

// ListUsers возвращает профили всех пользователей
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	if users == nil {
		users = []entity.User{}
	}

	return users, nil
}

// SetAvatar сохраняет путь к загруженному аватару
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	if err := s.userRepo.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}
