package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/kandang/internal/model"
)

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	res, err := Call(ctx, m, model.OpCreate, model.Offspring, model.Record{"breeding_id": "B1", "kode": "ANK-1"})
	require.NoError(t, err)
	require.True(t, res.Success)
	id := res.Data.ID()
	assert.NotEmpty(t, id)
	assert.Equal(t, "Sehat", res.Data["status"], "server default applied")

	res, err = Call(ctx, m, model.OpCreate, model.BreedingEvent, model.Record{"pejantan_id": "P1", "betina_id": "B1", "jumlah_anakan": ""})
	require.NoError(t, err)
	assert.Equal(t, float64(0), res.Data["jumlah_anakan"], "blank falls back to the default")

	res, err = Call(ctx, m, model.OpUpdate, model.Offspring, model.Record{"id": id, "status": "Dijual"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	rows, err := m.List(ctx, model.Offspring)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dijual", rows[0]["status"])
	assert.Equal(t, "ANK-1", rows[0]["kode"])

	res, err = Call(ctx, m, model.OpDelete, model.Offspring, model.Record{"id": id})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, m.Rows(model.Offspring))

	res, _ = Call(ctx, m, model.OpDelete, model.Offspring, model.Record{"id": id})
	assert.False(t, res.Success)

	assert.Equal(t, 1, m.Calls("list", model.Offspring))
	assert.Equal(t, 2, m.Calls("delete", model.Offspring))
}

func TestMemoryFailureInjection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")

	m.FailList(model.BreedingStock, boom)
	_, err := m.List(ctx, model.BreedingStock)
	assert.ErrorIs(t, err, boom)
	m.FailList(model.BreedingStock, nil)
	_, err = m.List(ctx, model.BreedingStock)
	assert.NoError(t, err)

	m.FailWrites(model.OpUpdate, ErrNetwork)
	_, err = m.Update(ctx, model.BreedingStock, "X", model.Record{"status": "Sakit"})
	assert.ErrorIs(t, err, ErrNetwork)

	m.RejectWrites(model.OpCreate, "quota exceeded")
	res, err := m.Create(ctx, model.BreedingStock, model.Record{"kode": "IND-1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "quota exceeded", res.Error)
	assert.Empty(t, m.Rows(model.BreedingStock))
}
