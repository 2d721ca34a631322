package describe

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/injurydash/internal/dataset"
	"github.com/verte-zerg/injurydash/internal/model"
)

func testStore(t *testing.T) *dataset.Store {
	t.Helper()
	injuries := []model.InjuryRecord{
		{TreatmentDate: time.Date(2017, 1, 13, 0, 0, 0, 0, time.UTC), Age: 71, Sex: model.Male, Race: "White", BodyPart: "Upper Trunk", Diagnosis: "Contusion Or Abrasion", Location: "Home", ProductCode: 1807, Weight: 77.69, Narrative: "71YOM FELL ON FLOOR"},
		{TreatmentDate: time.Date(2017, 1, 14, 0, 0, 0, 0, time.UTC), Age: 16, Sex: model.Female, Race: "NS", BodyPart: "Ankle", Diagnosis: "Strain Or Sprain", Location: "Sports", ProductCode: 1205, Weight: 77.69, Narrative: "16YOF SPRAINED ANKLE"},
	}
	products := []model.ProductEntry{{Code: 1807, Title: "floors or flooring materials"}, {Code: 1205, Title: "basketball"}}
	population := []model.PopulationEntry{{Age: 16, Sex: model.Female, Population: 2000000}}
	st, err := dataset.New(injuries, products, population)
	require.NoError(t, err)
	return st
}

func TestTablesDocumentEveryColumn(t *testing.T) {
	require.Len(t, Tables, 3)
	assert.Len(t, Tables[0].Columns, 10)
	assert.Equal(t, dataset.InjuriesFile, Tables[0].File)
	assert.Equal(t, []string{"prod_code", "title"}, columnNames(Tables[1]))
	assert.Equal(t, []string{"age", "sex", "population"}, columnNames(Tables[2]))
}

func TestPreviewLimitsRows(t *testing.T) {
	st := testStore(t)

	lines := Preview(st, dataset.InjuriesFile, 1)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "trmt_date"))
	assert.Contains(t, lines[1], "2017-01-13")
	assert.Contains(t, lines[1], "77.69")

	lines = Preview(st, dataset.ProductsFile, 0)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "basketball")

	assert.Nil(t, Preview(st, "unknown.csv", 5))
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testStore(t), Options{Rows: 5}))
	out := buf.String()

	assert.Contains(t, out, "Purpose\n")
	assert.Contains(t, out, "Trend Analysis: Identifying trends over time in injury incidents.")
	assert.Contains(t, out, "narrative: A narrative description")
	assert.Contains(t, out, "floors or flooring materials")
	assert.Contains(t, out, "2000000")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderEmptyTables(t *testing.T) {
	st, err := dataset.New(nil, nil, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, st, Options{}))
	assert.Equal(t, 3, strings.Count(buf.String(), "(no rows)"))
}
