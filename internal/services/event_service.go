package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bracula/campus/internal/auth"
	"github.com/bracula/campus/internal/models"
	"github.com/bracula/campus/internal/repository"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
)

type EventService interface {
	List(ctx context.Context, f repository.EventFilter) ([]models.EventView, error)
	Get(ctx context.Context, id int64) (*models.EventView, error)
	// Create inserts the event and returns it re-read with organizer data,
	// both in one transaction.
	Create(ctx context.Context, actor auth.Identity, in CreateEventInput) (*models.EventView, error)
	// ToggleRegistration flips the actor's registration and returns the new status.
	ToggleRegistration(ctx context.Context, actor auth.Identity, eventID int64) (string, error)
	IsRegistered(ctx context.Context, actor auth.Identity, eventID int64) (bool, error)
}

type CreateEventInput struct {
	Name        string
	Type        string
	Date        time.Time
	Location    string
	OrganizerID int64
	CoverImage  string
}

func (in *CreateEventInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.Location = strings.TrimSpace(in.Location)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	switch {
	case in.Name == "":
		return appErr.MissingField("name")
	case in.Type == "":
		return appErr.MissingField("type")
	case in.Date.IsZero():
		return appErr.MissingField("date")
	case in.Location == "":
		return appErr.MissingField("location")
	case in.OrganizerID == 0:
		return appErr.MissingField("organizer_id")
	case in.CoverImage == "":
		return appErr.MissingField("cover_image")
	}
	return nil
}

type eventService struct {
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	tx            repository.TxExecutor
}

func NewEventService(events repository.EventRepository, registrations repository.RegistrationRepository, tx repository.TxExecutor) EventService {
	return &eventService{events: events, registrations: registrations, tx: tx}
}

func (s *eventService) List(ctx context.Context, f repository.EventFilter) ([]models.EventView, error) {
	return s.events.List(ctx, f)
}

func (s *eventService) Get(ctx context.Context, id int64) (*models.EventView, error) {
	return s.events.GetView(ctx, id)
}

func (s *eventService) Create(ctx context.Context, actor auth.Identity, in CreateEventInput) (*models.EventView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.OrganizerID != actor.UserID {
		return nil, appErr.New(appErr.CodeForbidden, "organizer_id must be the logged in user").WithMeta("field", "organizer_id")
	}

	e := &models.Event{
		Name:       in.Name,
		Type:       in.Type,
		Date:       in.Date,
		Location:   in.Location,
		UserID:     in.OrganizerID,
		CoverImage: in.CoverImage,
	}
	var view *models.EventView
	err := s.tx.Run(ctx, "create_event",
		func(ctx context.Context, tx *gorm.DB) error {
			return s.events.WithTx(tx).Create(ctx, e)
		},
		func(ctx context.Context, tx *gorm.DB) (err error) {
			view, err = s.events.WithTx(tx).GetView(ctx, e.ID)
			return err
		},
	)
	if err != nil {
		logger.L().Error("create event failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		return nil, surface(err)
	}
	logger.L().Info("event created", zap.Int64("event_id", e.ID), zap.Int64("user_id", actor.UserID))
	return view, nil
}

func (s *eventService) ToggleRegistration(ctx context.Context, actor auth.Identity, eventID int64) (string, error) {
	var status string
	err := s.tx.Run(ctx, "toggle_registration",
		func(ctx context.Context, tx *gorm.DB) error {
			var e models.Event
			return s.events.WithTx(tx).GetByID(ctx, eventID, &e)
		},
		func(ctx context.Context, tx *gorm.DB) error {
			regs := s.registrations.WithTx(tx)
			reg, err := regs.Find(ctx, eventID, actor.UserID)
			if appErr.IsCode(err, appErr.CodeNotFound) {
				status = models.RegistrationRegistered
				return regs.Create(ctx, &models.EventRegistration{EventID: eventID, UserID: actor.UserID, Status: status})
			}
			if err != nil {
				return err
			}
			status = models.RegistrationRegistered
			if reg.Status == models.RegistrationRegistered {
				status = models.RegistrationCancelled
			}
			return regs.SetStatus(ctx, reg.ID, status)
		},
	)
	if err != nil {
		err = surface(err)
		if !clientCodes[appErr.CodeOf(err)] {
			logger.L().Error("toggle registration failed", zap.Int64("event_id", eventID), zap.Error(err))
		}
		return "", err
	}
	return status, nil
}

func (s *eventService) IsRegistered(ctx context.Context, actor auth.Identity, eventID int64) (bool, error) {
	return s.registrations.IsRegistered(ctx, eventID, actor.UserID)
}
