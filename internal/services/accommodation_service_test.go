package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bracula/campus/internal/auth"
	"github.com/bracula/campus/internal/models"
	appErr "github.com/bracula/campus/pkg/errors"
)

var owner = auth.Identity{UserID: 2}
var stranger = auth.Identity{UserID: 9}

func ownedBy(id int64) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(2).(*models.Accommodation).OwnerID = id
	}
}

func TestAccommodationCreate(t *testing.T) {
	repo, tx := &mockAccommodationRepo{}, &inlineTx{}
	svc := NewAccommodationService(repo, tx)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Accommodation) bool {
		return a.OwnerID == 2 && a.Status == models.AccommodationAvailable
	})).Run(func(args mock.Arguments) { args.Get(1).(*models.Accommodation).ID = 4 }).Return(nil)
	repo.On("AddImages", mock.Anything, int64(4), []string{"a.jpg"}).Return(nil)
	repo.On("GetView", mock.Anything, int64(4), int64(2)).
		Return(&models.AccommodationView{Accommodation: models.Accommodation{ID: 4}, Images: []string{"a.jpg"}}, nil)

	v, err := svc.Create(context.Background(), owner, CreateAccommodationInput{
		Title: "Room", RoomType: "single", Price: 300, Location: "North",
		Description: "Quiet", ContactInfo: "ada@uni.edu", Images: []string{"a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, v.Images)
	assert.Equal(t, []string{"create_accommodation"}, tx.runs)
}

func TestAccommodationCreate_Validation(t *testing.T) {
	svc := NewAccommodationService(&mockAccommodationRepo{}, &inlineTx{})
	in := CreateAccommodationInput{Title: "Room", RoomType: "single", Price: 0}

	_, err := svc.Create(context.Background(), owner, in)
	var ae *appErr.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "price", ae.Field())
}

func TestAccommodationUpdate_OwnerOnly(t *testing.T) {
	repo := &mockAccommodationRepo{}
	svc := NewAccommodationService(repo, &inlineTx{})
	repo.On("GetByID", mock.Anything, int64(4), mock.Anything).Run(ownedBy(2)).Return(nil)

	status := models.AccommodationRented
	_, err := svc.Update(context.Background(), stranger, 4, models.AccommodationUpdate{Status: &status})
	assert.Equal(t, appErr.CodeForbidden, appErr.CodeOf(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccommodationUpdate_RejectsUnknownStatus(t *testing.T) {
	svc := NewAccommodationService(&mockAccommodationRepo{}, &inlineTx{})
	status := "sold"
	_, err := svc.Update(context.Background(), owner, 4, models.AccommodationUpdate{Status: &status})
	assert.Equal(t, appErr.CodeInvalid, appErr.CodeOf(err))
}

func TestAccommodationDelete_RemovesDependentsFirst(t *testing.T) {
	repo := &mockAccommodationRepo{}
	svc := NewAccommodationService(repo, &inlineTx{})

	var order []string
	repo.On("GetByID", mock.Anything, int64(4), mock.Anything).Run(ownedBy(2)).Return(nil)
	repo.On("DeleteDependents", mock.Anything, int64(4)).Run(func(mock.Arguments) { order = append(order, "dependents") }).Return(nil)
	repo.On("Delete", mock.Anything, int64(4)).Run(func(mock.Arguments) { order = append(order, "listing") }).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), owner, 4))
	assert.Equal(t, []string{"dependents", "listing"}, order)
}

func TestAccommodationToggleFavorite(t *testing.T) {
	repo := &mockAccommodationRepo{}
	svc := NewAccommodationService(repo, &inlineTx{})
	repo.On("GetByID", mock.Anything, int64(4), mock.Anything).Return(nil)
	repo.On("ToggleFavorite", mock.Anything, int64(4), int64(9)).Return(true, nil)

	fav, err := svc.ToggleFavorite(context.Background(), stranger, 4)
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestAccommodationList_MineOnly(t *testing.T) {
	repo := &mockAccommodationRepo{}
	svc := NewAccommodationService(repo, &inlineTx{})
	repo.On("List", mock.Anything, int64(2), int64(2)).Return([]models.AccommodationView{}, nil)
	repo.On("List", mock.Anything, int64(2), int64(0)).Return([]models.AccommodationView{{}}, nil)

	mine, err := svc.List(context.Background(), owner, true)
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := svc.List(context.Background(), owner, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
