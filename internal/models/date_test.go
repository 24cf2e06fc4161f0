package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"taskManager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDate_ParseAndString разбор и обратная печать
func TestDate_ParseAndString(t *testing.T) {
	date, err := models.ParseDate("2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", date.String())

	_, err = models.ParseDate("28.08.2026")
	assert.Error(t, err)

	_, err = models.ParseDate("tomorrow")
	assert.Error(t, err)
}

// TestDate_JSON сериализация без компонента времени
func TestDate_JSON(t *testing.T) {
	date := models.NewDate(2026, time.December, 31)

	data, err := json.Marshal(date)
	require.NoError(t, err)
	assert.Equal(t, `"2026-12-31"`, string(data))

	var decoded models.Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, date.Equal(decoded))

	// null не трогает значение
	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.True(t, date.Equal(decoded))
}

// TestDate_Equal сравнение не зависит от компонента времени
func TestDate_Equal(t *testing.T) {
	fromTime := models.DateOf(time.Date(2026, time.May, 1, 23, 59, 58, 0, time.Local))
	direct := models.NewDate(2026, time.May, 1)
	assert.True(t, fromTime.Equal(direct))
	assert.False(t, direct.Equal(models.NewDate(2026, time.May, 2)))
}

// TestStatusAndPriority_Valid допустимые значения перечислений
func TestStatusAndPriority_Valid(t *testing.T) {
	for _, s := range []models.Status{models.StatusPending, models.StatusInProgress, models.StatusCompleted} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, models.Status("archived").Valid())
	assert.False(t, models.Status("").Valid())

	for _, p := range []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh} {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, models.Priority("urgent").Valid())
}
