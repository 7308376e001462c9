package export

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/standings"
	"github.com/Dosada05/card-league/storage"
)

func intPtr(v int) *int { return &v }

func sampleResult(t *testing.T) *standings.Result {
	t.Helper()
	res, err := standings.New(standings.DefaultRules()).Compute(standings.Input{
		Teams: []models.Team{
			{ID: 1, TeamNumber: 11, Name: "Aces"},
			{ID: 2, TeamNumber: 12, Name: "Kings"},
		},
		Games: []models.Game{
			{ID: 1, Round: 1, Team1ID: 2, Team2ID: 1, Score1: intPtr(4), Score2: intPtr(9), Hands1: intPtr(2), Hands2: intPtr(6), Bostons2: intPtr(1)},
		},
		Overrides: models.Overrides{"2_2_points": "3"},
		NumRounds: 2,
	})
	require.NoError(t, err)
	return res
}

func TestHeader(t *testing.T) {
	assert.Equal(t, []string{
		"Team #", "Team Name",
		"R1 W/L", "R1 Points", "R1 Hands", "R1 Boston",
		"R2 W/L", "R2 Points", "R2 Hands", "R2 Boston",
		"Wins", "Points", "Hands", "Bostons",
	}, Header(2))
}

func TestBuildTable(t *testing.T) {
	table, err := BuildTable(sampleResult(t))
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []any{11, "Aces", "W", 9, 6, 1, "", 0, 0, 0, 1, 9, 6, 1}, table.Rows[0])
	assert.Equal(t, []any{12, "Kings", "L", 4, 2, 0, "", 3, 0, 0, 0, 7, 2, 0}, table.Rows[1])
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Header))
	}
}

func TestBuildTable_MatchesMatrix(t *testing.T) {
	res := sampleResult(t)
	table, err := BuildTable(res)
	require.NoError(t, err)

	for i, team := range res.Teams {
		row := table.Rows[i]
		totals := res.Matrix.Totals(team.ID)
		n := len(row)
		assert.Equal(t, []any{totals.Wins, totals.Points, totals.Hands, totals.Boston}, row[n-4:])
	}
}

func TestBuildTable_NoResults(t *testing.T) {
	res, err := standings.New(standings.DefaultRules()).Compute(standings.Input{NumRounds: 3})
	require.NoError(t, err)

	_, err = BuildTable(res)
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = RenderWinsChart(res)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestWriteCSV_Idempotent(t *testing.T) {
	table, err := BuildTable(sampleResult(t))
	require.NoError(t, err)

	var first, second bytes.Buffer
	require.NoError(t, WriteCSV(&first, table))
	require.NoError(t, WriteCSV(&second, table))
	assert.Equal(t, first.Bytes(), second.Bytes())

	lines := strings.Split(strings.TrimSpace(first.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "11,Aces,W,9,6,1,,0,0,0,1,9,6,1", lines[1])
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	table, err := BuildTable(sampleResult(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table, ""))

	rows, err := ReadXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, table.Header, rows[0])

	records := table.Records()
	for i := 1; i < len(records); i++ {
		// Trailing empty cells are trimmed by the reader; compare the prefix it returns.
		assert.Equal(t, records[i][:len(rows[i])], rows[i])
	}
}

func TestRenderWinsChart(t *testing.T) {
	png, err := RenderWinsChart(sampleResult(t))
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

type memUploader struct {
	key         string
	contentType string
	body        []byte
}

func (m *memUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.key, m.contentType, m.body = key, contentType, body
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key, ETag: "abc"}, nil
}

func (m *memUploader) Delete(context.Context, string) error { return nil }

func (m *memUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

func TestUploaderSink_Put(t *testing.T) {
	table, err := BuildTable(sampleResult(t))
	require.NoError(t, err)

	up := &memUploader{}
	sink := NewUploaderSink(up, "")
	sink.newID = func() string { return "fixed" }

	art, err := sink.Put(context.Background(), 7, table)
	require.NoError(t, err)

	assert.Equal(t, "exports/tournament-7/standings-fixed.xlsx", art.Key)
	assert.Equal(t, "https://cdn.example.com/exports/tournament-7/standings-fixed.xlsx", art.URL)
	assert.Equal(t, ContentTypeXLSX, up.contentType)
	assert.Equal(t, len(up.body), art.Size)

	rows, err := ReadXLSX(bytes.NewReader(up.body))
	require.NoError(t, err)
	assert.Equal(t, table.Header, rows[0])
}
