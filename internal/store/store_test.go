package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/injurydash/internal/dataset"
	"github.com/verte-zerg/injurydash/internal/model"
)

func sampleDataset(t *testing.T) *dataset.Store {
	t.Helper()
	injuries := []model.InjuryRecord{
		{TreatmentDate: time.Date(2017, 1, 13, 0, 0, 0, 0, time.UTC), Age: 30, Sex: model.Male, Race: "White", BodyPart: "Arm", Diagnosis: "Fracture", Location: "Home", ProductCode: 1842, Weight: 15.72, Narrative: "30YOM FELL DOWN STAIRS"},
		{TreatmentDate: time.Date(2017, 2, 1, 0, 0, 0, 0, time.UTC), Age: 4, Sex: model.Female, Race: "NS", BodyPart: "Head", Diagnosis: "Laceration", Location: "Home", ProductCode: 4076, Weight: 83.24, Narrative: "4YOF FELL OFF BED"},
	}
	products := []model.ProductEntry{{Code: 4076, Title: "beds or bedframes"}, {Code: 1842, Title: "stairs or steps"}}
	population := []model.PopulationEntry{{Age: 30, Sex: model.Male, Population: 1000}, {Age: 4, Sex: model.Female, Population: 2000}}
	st, err := dataset.New(injuries, products, population)
	require.NoError(t, err)
	return st
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "injurydash.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func TestImportLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	src := sampleDataset(t)

	require.NoError(t, s.Import(ctx, src))
	got, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, src.Injuries(), got.Injuries())
	assert.Equal(t, src.Products(), got.Products())
	assert.Equal(t, src.Population(), got.Population())
	assert.Equal(t, "stairs or steps", got.ProductTitle(1842))
	pop, ok := got.PopulationFor(model.AgeSex{Age: 4, Sex: model.Female})
	assert.True(t, ok)
	assert.Equal(t, 2000, pop)
}

func TestImportReplacesPreviousData(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.Import(ctx, sampleDataset(t)))

	smaller, err := dataset.New(nil, []model.ProductEntry{{Code: 1, Title: "one"}}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Import(ctx, smaller))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Injuries: 0, Products: 1, Population: 0}, counts)
}

func TestLoadEmptyDatabase(t *testing.T) {
	s := openTemp(t)
	st, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Injuries())
	assert.Empty(t, st.Products())
}

func TestImportHonorsCancelledContext(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Import(ctx, sampleDataset(t)))
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	cases := []struct {
		name   string
		update string
		table  string
		column string
		want   error
	}{
		{"injury sex", `UPDATE injuries SET sex = 'x' WHERE prod_code = 4076`, "injuries", "sex", dataset.ErrMalformedValue},
		{"injury date", `UPDATE injuries SET trmt_date = 'soon' WHERE prod_code = 4076`, "injuries", "trmt_date", dataset.ErrMalformedDate},
		{"population sex", `UPDATE population SET sex = 'unknown' WHERE age = 4`, "population", "sex", dataset.ErrMalformedValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := openTemp(t)
			require.NoError(t, s.Import(ctx, sampleDataset(t)))
			_, err := s.db.ExecContext(ctx, tc.update)
			require.NoError(t, err)

			_, err = s.Load(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			var loadErr *dataset.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tc.table, loadErr.File)
			assert.Equal(t, 2, loadErr.Line)
			assert.Equal(t, tc.column, loadErr.Column)
		})
	}
}
