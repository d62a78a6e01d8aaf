package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bracula/campus/internal/models"
	appErr "github.com/bracula/campus/pkg/errors"
)

type AccommodationRepository interface {
	BaseRepository[models.Accommodation]
	WithTx(tx *gorm.DB) AccommodationRepository
	AddImages(ctx context.Context, accommodationID int64, urls []string) error
	// GetView reads a listing with owner name, images and the viewer's favourite flag.
	GetView(ctx context.Context, id, viewerID int64) (*models.AccommodationView, error)
	// List returns listings newest first; ownerID restricts to one owner when non-zero.
	List(ctx context.Context, viewerID, ownerID int64) ([]models.AccommodationView, error)
	Update(ctx context.Context, id int64, upd models.AccommodationUpdate) error
	DeleteDependents(ctx context.Context, id int64) error
	// ToggleFavorite flips the favourite mark and reports the new state.
	ToggleFavorite(ctx context.Context, accommodationID, userID int64) (bool, error)
}

type accommodationRepository struct {
	BaseRepository[models.Accommodation]
	db *gorm.DB
}

func NewAccommodationRepository(db *gorm.DB) AccommodationRepository {
	return &accommodationRepository{BaseRepository: NewBaseRepository[models.Accommodation](db), db: db}
}

func (r *accommodationRepository) WithTx(tx *gorm.DB) AccommodationRepository {
	return NewAccommodationRepository(tx)
}

func (r *accommodationRepository) AddImages(ctx context.Context, accommodationID int64, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	imgs := make([]models.AccommodationImage, 0, len(urls))
	for _, u := range urls {
		imgs = append(imgs, models.AccommodationImage{AccommodationID: accommodationID, ImageURL: u})
	}
	if err := r.db.WithContext(ctx).Create(&imgs).Error; err != nil {
		return storageError(err, "create accommodation images failed")
	}
	return nil
}

func (r *accommodationRepository) viewQuery(ctx context.Context, viewerID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("accommodations AS a").
		Select(`a.*, u.full_name AS owner_name, `+
			`EXISTS (SELECT 1 FROM accommodation_favorites f WHERE f.accommodation_id = a.accommodation_id AND f.user_id = ?) AS is_favorite`,
			viewerID).
		Joins("JOIN users u ON u.user_id = a.owner_id")
}

func (r *accommodationRepository) GetView(ctx context.Context, id, viewerID int64) (*models.AccommodationView, error) {
	var v models.AccommodationView
	res := r.viewQuery(ctx, viewerID).Where("a.accommodation_id = ?", id).Limit(1).Scan(&v)
	if res.Error != nil {
		return nil, storageError(res.Error, "get accommodation failed")
	}
	if res.RowsAffected == 0 {
		return nil, appErr.New(appErr.CodeNotFound, "Accommodation not found")
	}
	views := []models.AccommodationView{v}
	if err := r.attachImages(ctx, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (r *accommodationRepository) List(ctx context.Context, viewerID, ownerID int64) ([]models.AccommodationView, error) {
	q := r.viewQuery(ctx, viewerID)
	if ownerID != 0 {
		q = q.Where("a.owner_id = ?", ownerID)
	}
	out := []models.AccommodationView{}
	if err := q.Order("a.created_at DESC").Scan(&out).Error; err != nil {
		return nil, storageError(err, "list accommodations failed")
	}
	if err := r.attachImages(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *accommodationRepository) attachImages(ctx context.Context, views []models.AccommodationView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]int64, len(views))
	for i := range views {
		ids[i] = views[i].ID
		views[i].Images = []string{}
	}
	var imgs []models.AccommodationImage
	if err := r.db.WithContext(ctx).Where("accommodation_id IN ?", ids).Order("image_id ASC").Find(&imgs).Error; err != nil {
		return storageError(err, "list accommodation images failed")
	}
	byID := make(map[int64]int, len(views))
	for i := range views {
		byID[views[i].ID] = i
	}
	for _, img := range imgs {
		if i, ok := byID[img.AccommodationID]; ok {
			views[i].Images = append(views[i].Images, img.ImageURL)
		}
	}
	return nil
}

func (r *accommodationRepository) Update(ctx context.Context, id int64, upd models.AccommodationUpdate) error {
	cols := upd.Columns()
	if len(cols) == 0 {
		return appErr.New(appErr.CodeInvalid, "No fields to update")
	}
	res := r.db.WithContext(ctx).Model(&models.Accommodation{}).Where("accommodation_id = ?", id).Updates(cols)
	if res.Error != nil {
		return storageError(res.Error, "update accommodation failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "Accommodation not found")
	}
	return nil
}

func (r *accommodationRepository) DeleteDependents(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("accommodation_id = ?", id).Delete(&models.AccommodationImage{}).Error; err != nil {
		return storageError(err, "delete accommodation images failed")
	}
	if err := db.Where("accommodation_id = ?", id).Delete(&models.AccommodationFavorite{}).Error; err != nil {
		return storageError(err, "delete accommodation favorites failed")
	}
	return nil
}

func (r *accommodationRepository) ToggleFavorite(ctx context.Context, accommodationID, userID int64) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Where("accommodation_id = ? AND user_id = ?", accommodationID, userID).Delete(&models.AccommodationFavorite{})
	if res.Error != nil {
		return false, storageError(res.Error, "remove favorite failed")
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	fav := models.AccommodationFavorite{AccommodationID: accommodationID, UserID: userID}
	if err := db.Create(&fav).Error; err != nil {
		return false, storageError(err, "add favorite failed")
	}
	return true, nil
}
