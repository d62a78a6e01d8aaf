package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bracula/campus/internal/models"
	appErr "github.com/bracula/campus/pkg/errors"
)

// EventFilter narrows an event listing. Zero values mean "no filter".
type EventFilter struct {
	Types []string
	// Day matches events on that calendar day (UTC).
	Day *time.Time
}

type EventRepository interface {
	BaseRepository[models.Event]
	WithTx(tx *gorm.DB) EventRepository
	// GetView reads the event joined with organizer data and its live registration count.
	GetView(ctx context.Context, id int64) (*models.EventView, error)
	List(ctx context.Context, f EventFilter) ([]models.EventView, error)
	Count(ctx context.Context) (int64, error)
}

type eventRepository struct {
	BaseRepository[models.Event]
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{BaseRepository: NewBaseRepository[models.Event](db), db: db}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	return NewEventRepository(tx)
}

func (r *eventRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("events AS e").
		Select(`e.*, u.full_name AS organizer_name, u.avatar_url AS organizer_avatar, `+
			`(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.event_id AND er.status = ?) AS registration_count`,
			models.RegistrationRegistered).
		Joins("JOIN users u ON u.user_id = e.user_id")
}

func (r *eventRepository) GetView(ctx context.Context, id int64) (*models.EventView, error) {
	var v models.EventView
	res := r.viewQuery(ctx).Where("e.event_id = ?", id).Limit(1).Scan(&v)
	if res.Error != nil {
		return nil, storageError(res.Error, "get event failed")
	}
	if res.RowsAffected == 0 {
		return nil, appErr.New(appErr.CodeNotFound, "event not found")
	}
	v.FormattedDate = v.Date.Format(time.DateOnly)
	return &v, nil
}

func (r *eventRepository) List(ctx context.Context, f EventFilter) ([]models.EventView, error) {
	q := r.viewQuery(ctx)
	if len(f.Types) > 0 {
		q = q.Where("e.event_type IN ?", f.Types)
	}
	if f.Day != nil {
		start := time.Date(f.Day.Year(), f.Day.Month(), f.Day.Day(), 0, 0, 0, 0, time.UTC)
		q = q.Where("e.event_date >= ? AND e.event_date < ?", start, start.AddDate(0, 0, 1))
	}

	out := []models.EventView{}
	if err := q.Order("e.event_date ASC").Scan(&out).Error; err != nil {
		return nil, storageError(err, "list events failed")
	}
	for i := range out {
		out[i].FormattedDate = out[i].Date.Format(time.DateOnly)
	}
	return out, nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&n).Error; err != nil {
		return 0, storageError(err, "count events failed")
	}
	return n, nil
}

// RegistrationRepository stores event registrations.
type RegistrationRepository interface {
	WithTx(tx *gorm.DB) RegistrationRepository
	Find(ctx context.Context, eventID, userID int64) (*models.EventRegistration, error)
	Create(ctx context.Context, reg *models.EventRegistration) error
	SetStatus(ctx context.Context, registrationID int64, status string) error
	IsRegistered(ctx context.Context, eventID, userID int64) (bool, error)
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) WithTx(tx *gorm.DB) RegistrationRepository {
	return NewRegistrationRepository(tx)
}

func (r *registrationRepository) Find(ctx context.Context, eventID, userID int64) (*models.EventRegistration, error) {
	var reg models.EventRegistration
	err := r.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).Take(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "registration not found")
		}
		return nil, storageError(err, "get registration failed")
	}
	return &reg, nil
}

func (r *registrationRepository) Create(ctx context.Context, reg *models.EventRegistration) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		return registrationWriteError(err, "create registration failed")
	}
	return nil
}

func (r *registrationRepository) SetStatus(ctx context.Context, registrationID int64, status string) error {
	res := r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("registration_id = ?", registrationID).
		Update("status", status)
	if res.Error != nil {
		return storageError(res.Error, "update registration failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "registration not found")
	}
	return nil
}

func (r *registrationRepository) IsRegistered(ctx context.Context, eventID, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, models.RegistrationRegistered).
		Count(&n).Error
	if err != nil {
		return false, storageError(err, "check registration failed")
	}
	return n > 0, nil
}
