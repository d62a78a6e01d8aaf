package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bracula/campus/internal/auth"
	"github.com/bracula/campus/internal/models"
	"github.com/bracula/campus/internal/repository"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
)

type AccommodationService interface {
	List(ctx context.Context, actor auth.Identity, mineOnly bool) ([]models.AccommodationView, error)
	Get(ctx context.Context, actor auth.Identity, id int64) (*models.AccommodationView, error)
	Create(ctx context.Context, actor auth.Identity, in CreateAccommodationInput) (*models.AccommodationView, error)
	Update(ctx context.Context, actor auth.Identity, id int64, upd models.AccommodationUpdate) (*models.AccommodationView, error)
	Delete(ctx context.Context, actor auth.Identity, id int64) error
	// ToggleFavorite flips the actor's favourite mark and returns the new state.
	ToggleFavorite(ctx context.Context, actor auth.Identity, id int64) (bool, error)
}

type CreateAccommodationInput struct {
	Title       string
	RoomType    string
	Price       float64
	Location    string
	Description string
	ContactInfo string
	Images      []string
}

func (in *CreateAccommodationInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.RoomType = strings.TrimSpace(in.RoomType)
	in.Location = strings.TrimSpace(in.Location)
	in.ContactInfo = strings.TrimSpace(in.ContactInfo)
	switch {
	case in.Title == "":
		return appErr.MissingField("title")
	case in.RoomType == "":
		return appErr.MissingField("room_type")
	case in.Price <= 0:
		return appErr.Invalid("price", "price must be greater than zero")
	case in.Location == "":
		return appErr.MissingField("location")
	case in.Description == "":
		return appErr.MissingField("description")
	case in.ContactInfo == "":
		return appErr.MissingField("contact_info")
	case len(in.Images) == 0:
		return appErr.Invalid("images", "at least one image is required")
	}
	return nil
}

var accommodationStatuses = map[string]bool{
	models.AccommodationAvailable:   true,
	models.AccommodationRented:      true,
	models.AccommodationUnavailable: true,
}

type accommodationService struct {
	listings repository.AccommodationRepository
	tx       repository.TxExecutor
}

func NewAccommodationService(listings repository.AccommodationRepository, tx repository.TxExecutor) AccommodationService {
	return &accommodationService{listings: listings, tx: tx}
}

func (s *accommodationService) List(ctx context.Context, actor auth.Identity, mineOnly bool) ([]models.AccommodationView, error) {
	var owner int64
	if mineOnly {
		owner = actor.UserID
	}
	return s.listings.List(ctx, actor.UserID, owner)
}

func (s *accommodationService) Get(ctx context.Context, actor auth.Identity, id int64) (*models.AccommodationView, error) {
	return s.listings.GetView(ctx, id, actor.UserID)
}

func (s *accommodationService) Create(ctx context.Context, actor auth.Identity, in CreateAccommodationInput) (*models.AccommodationView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a := &models.Accommodation{
		Title:       in.Title,
		RoomType:    in.RoomType,
		Price:       in.Price,
		Location:    in.Location,
		Description: in.Description,
		ContactInfo: in.ContactInfo,
		Status:      models.AccommodationAvailable,
		OwnerID:     actor.UserID,
	}
	var view *models.AccommodationView
	err := s.tx.Run(ctx, "create_accommodation",
		func(ctx context.Context, tx *gorm.DB) error {
			return s.listings.WithTx(tx).Create(ctx, a)
		},
		func(ctx context.Context, tx *gorm.DB) error {
			return s.listings.WithTx(tx).AddImages(ctx, a.ID, in.Images)
		},
		func(ctx context.Context, tx *gorm.DB) (err error) {
			view, err = s.listings.WithTx(tx).GetView(ctx, a.ID, actor.UserID)
			return err
		},
	)
	if err != nil {
		logger.L().Error("create accommodation failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		return nil, surface(err)
	}
	logger.L().Info("accommodation created", zap.Int64("accommodation_id", a.ID), zap.Int64("user_id", actor.UserID))
	return view, nil
}

// owned loads the listing on tx and fails unless actor owns it.
func (s *accommodationService) owned(ctx context.Context, tx *gorm.DB, actor auth.Identity, id int64) error {
	var a models.Accommodation
	if err := s.listings.WithTx(tx).GetByID(ctx, id, &a); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return appErr.New(appErr.CodeNotFound, "Accommodation not found")
		}
		return err
	}
	if a.OwnerID != actor.UserID {
		return appErr.New(appErr.CodeForbidden, "You can only modify your own listings")
	}
	return nil
}

func (s *accommodationService) Update(ctx context.Context, actor auth.Identity, id int64, upd models.AccommodationUpdate) (*models.AccommodationView, error) {
	if upd.Status != nil && !accommodationStatuses[*upd.Status] {
		return nil, appErr.Invalid("status", "status must be one of available, rented, unavailable")
	}
	if upd.Price != nil && *upd.Price <= 0 {
		return nil, appErr.Invalid("price", "price must be greater than zero")
	}

	var view *models.AccommodationView
	err := s.tx.Run(ctx, "update_accommodation",
		func(ctx context.Context, tx *gorm.DB) error { return s.owned(ctx, tx, actor, id) },
		func(ctx context.Context, tx *gorm.DB) error { return s.listings.WithTx(tx).Update(ctx, id, upd) },
		func(ctx context.Context, tx *gorm.DB) (err error) {
			view, err = s.listings.WithTx(tx).GetView(ctx, id, actor.UserID)
			return err
		},
	)
	if err != nil {
		return nil, surface(err)
	}
	return view, nil
}

func (s *accommodationService) Delete(ctx context.Context, actor auth.Identity, id int64) error {
	err := s.tx.Run(ctx, "delete_accommodation",
		func(ctx context.Context, tx *gorm.DB) error { return s.owned(ctx, tx, actor, id) },
		func(ctx context.Context, tx *gorm.DB) error { return s.listings.WithTx(tx).DeleteDependents(ctx, id) },
		func(ctx context.Context, tx *gorm.DB) error { return s.listings.WithTx(tx).Delete(ctx, id) },
	)
	if err != nil {
		return surface(err)
	}
	logger.L().Info("accommodation deleted", zap.Int64("accommodation_id", id), zap.Int64("user_id", actor.UserID))
	return nil
}

func (s *accommodationService) ToggleFavorite(ctx context.Context, actor auth.Identity, id int64) (bool, error) {
	var fav bool
	err := s.tx.Run(ctx, "toggle_favorite",
		func(ctx context.Context, tx *gorm.DB) error {
			var a models.Accommodation
			if err := s.listings.WithTx(tx).GetByID(ctx, id, &a); err != nil {
				if appErr.IsCode(err, appErr.CodeNotFound) {
					return appErr.New(appErr.CodeNotFound, "Accommodation not found")
				}
				return err
			}
			return nil
		},
		func(ctx context.Context, tx *gorm.DB) (err error) {
			fav, err = s.listings.WithTx(tx).ToggleFavorite(ctx, id, actor.UserID)
			return err
		},
	)
	if err != nil {
		return false, surface(err)
	}
	return fav, nil
}
