package repository

import (
	"testing"
	"time"

	"attendance-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) models.NonWorkingDay {
	return models.NewNonWorkingDay(time.Date(y, m, d, 0, 0, 0, 0, time.UTC), "test")
}

func TestNonWorkingDayRepository_BulkUpsertSkipsDuplicates(t *testing.T) {
	repo, err := NewGormNonWorkingDayRepository(newTestDB(t))
	require.NoError(t, err)

	added, err := repo.BulkUpsert([]models.NonWorkingDay{day(2024, 5, 1), day(2024, 5, 8)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, added)

	added, err = repo.BulkUpsert([]models.NonWorkingDay{day(2024, 5, 1), day(2024, 12, 25)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, added)

	added, err = repo.BulkUpsert(nil)
	require.NoError(t, err)
	assert.Zero(t, added)

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-05-01", all[0].Date)
	assert.Equal(t, "2024-12-25", all[2].Date)
}

func TestNonWorkingDayRepository_MonthAndDelete(t *testing.T) {
	repo, err := NewGormNonWorkingDayRepository(newTestDB(t))
	require.NoError(t, err)

	_, err = repo.BulkUpsert([]models.NonWorkingDay{day(2024, 5, 8), day(2024, 5, 1), day(2024, 7, 14)})
	require.NoError(t, err)

	may, err := repo.GetByYearMonth(2024, 5)
	require.NoError(t, err)
	require.Len(t, may, 2)
	assert.Equal(t, 1, may[0].Day)
	assert.Equal(t, 8, may[1].Day)

	require.NoError(t, repo.Delete("2024-05-01"))
	assert.ErrorIs(t, repo.Delete("2024-05-01"), ErrNonWorkingDayNotFound)

	may, err = repo.GetByYearMonth(2024, 5)
	require.NoError(t, err)
	assert.Len(t, may, 1)
}
