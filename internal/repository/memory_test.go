package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/utils"
)

func seedProject(t *testing.T, repo *MemoryRepository, status models.ProjectStatus) *models.Project {
	t.Helper()
	project := &models.Project{
		FreelancerID:   uuid.New(),
		Title:          "Brand film",
		ClientEmail:    "client@example.com",
		Status:         status,
		Price:          decimal.RequireFromString("100.00"),
		CommissionRate: decimal.RequireFromString("15.00"),
	}
	require.NoError(t, repo.Projects().Create(context.Background(), project))
	return project
}

func TestMemoryCompareAndSetStatus(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	project := seedProject(t, repo, models.ProjectStatusPreview)

	updated, err := repo.Projects().CompareAndSetStatus(ctx, project.ID, models.ProjectStatusPreview, models.ProjectStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusApproved, updated.Status)

	_, err = repo.Projects().CompareAndSetStatus(ctx, project.ID, models.ProjectStatusPreview, models.ProjectStatusApproved)
	assert.True(t, errs.IsConflict(err))

	_, err = repo.Projects().CompareAndSetStatus(ctx, uuid.New(), models.ProjectStatusPreview, models.ProjectStatusApproved)
	assert.True(t, errs.IsNotFound(err))
}

func TestMemoryCompareAndSetStatus_SingleWinner(t *testing.T) {
	repo := NewMemoryRepository()
	project := seedProject(t, repo, models.ProjectStatusPreview)

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Projects().CompareAndSetStatus(context.Background(), project.ID,
				models.ProjectStatusPreview, models.ProjectStatusApproved)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		if err == nil {
			wins++
		} else if errs.IsConflict(err) {
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 7, conflicts)
}

func TestMemoryTransactionRollback(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	project := seedProject(t, repo, models.ProjectStatusApproved)
	boom := errors.New("boom")

	err := repo.WithTransaction(ctx, func(tx Repository) error {
		if _, err := tx.Projects().CompareAndSetStatus(ctx, project.ID, models.ProjectStatusApproved, models.ProjectStatusPaid); err != nil {
			return err
		}
		if err := tx.Payments().Create(ctx, &models.Payment{ProjectID: project.ID, ProviderReference: "pi_1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.Projects().Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusApproved, stored.Status)

	_, err = repo.Payments().GetByProviderReference(ctx, "pi_1")
	assert.True(t, errs.IsNotFound(err))
}

func TestMemoryPaymentReferenceUnique(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Payments().Create(ctx, &models.Payment{ProviderReference: "pi_dup"}))
	err := repo.Payments().Create(ctx, &models.Payment{ProviderReference: "pi_dup"})
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestMemoryUpdatePricingLockedAfterIntent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	project := seedProject(t, repo, models.ProjectStatusApproved)

	title := "Renamed"
	_, err := repo.Projects().Update(ctx, project.ID, ProjectChanges{Title: &title})
	require.NoError(t, err)

	require.NoError(t, repo.Projects().SetPaymentIntent(ctx, project.ID, "pi_lock"))

	price := decimal.RequireFromString("250.00")
	_, err = repo.Projects().Update(ctx, project.ID, ProjectChanges{Price: &price})
	assert.True(t, errs.IsConflict(err))

	updated, err := repo.Projects().Update(ctx, project.ID, ProjectChanges{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "100.00", updated.Price.StringFixed(2))
}

func TestMemoryIncrementDownloadsRespectsLimit(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	project := seedProject(t, repo, models.ProjectStatusPaid)
	file := &models.File{ProjectID: project.ID, Filename: "a.mp4", FileType: models.FileTypeVideo}
	require.NoError(t, repo.Files().Create(ctx, file))

	limit := 2
	for i := 0; i < 2; i++ {
		ok, err := repo.Files().IncrementDownloads(ctx, file.ID, &limit)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := repo.Files().IncrementDownloads(ctx, file.ID, &limit)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryListByFreelancerPaginates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := uuid.New()
	status := models.ProjectStatusDraft

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Projects().Create(ctx, &models.Project{FreelancerID: owner, Title: "p", ClientEmail: "c@example.com"}))
	}
	seedProject(t, repo, models.ProjectStatusDraft)

	page, total, err := repo.Projects().ListByFreelancer(ctx, owner, ProjectFilter{
		PaginationParams: utils.PaginationParams{Page: 2, Limit: 2, Order: "desc"},
		Status:           &status,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)
}

func TestMemoryMessagesMarkRead(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	projectID := uuid.New()

	require.NoError(t, repo.Messages().Create(ctx, &models.Message{ProjectID: projectID, SenderType: models.SenderTypeClient, Content: "hi"}))
	require.NoError(t, repo.Messages().Create(ctx, &models.Message{ProjectID: projectID, SenderType: models.SenderTypeFreelancer, Content: "hello"}))

	n, err := repo.Messages().MarkRead(ctx, projectID, models.SenderTypeFreelancer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
