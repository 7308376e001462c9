package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/card-league/export"
	"github.com/Dosada05/card-league/models"
)

func TestExportService_CSV(t *testing.T) {
	f := newFixture(nil)
	sc := f.seedScenario(true)

	data, err := f.exports.CSV(t.Context(), sc.tournament.ID)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, export.Header(2), records[0])
	assert.Equal(t, []string{"1", "Aces", "W", "10", "0", "0", "", "0", "0", "0", "1", "10", "0", "0"}, records[1])
	assert.Equal(t, "Kings", records[4][1])
}

func TestExportService_XLSXRoundTrip(t *testing.T) {
	f := newFixture(nil)
	sc := f.seedScenario(true)

	data, err := f.exports.XLSX(t.Context(), sc.tournament.ID)
	require.NoError(t, err)
	records, err := export.ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "Queens", records[2][1])
}

func TestExportService_EmptyTournament(t *testing.T) {
	f := newFixture(nil)
	tour := f.store.addTournament("Empty", models.StatusActive)

	_, err := f.exports.CSV(t.Context(), tour.ID)
	assert.ErrorIs(t, err, export.ErrNoResults)
	_, err = f.exports.CSV(t.Context(), 404)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestExportService_UploadWithoutSink(t *testing.T) {
	f := newFixture(nil)
	sc := f.seedScenario(true)

	_, err := f.exports.Upload(t.Context(), sc.tournament.ID)
	assert.ErrorIs(t, err, ErrExportUnavailable)
	assert.ErrorIs(t, f.exports.UploadActive(t.Context()), ErrExportUnavailable)
}

func TestExportService_UploadActive(t *testing.T) {
	sink := &fakeSink{}
	f := newFixture(sink)
	sc := f.seedScenario(true)
	f.store.addTournament("Empty", models.StatusActive)
	f.store.addTournament("Later", models.StatusRegistration)

	artifact, err := f.exports.Upload(t.Context(), sc.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, artifact.Size)

	sink.puts = nil
	require.NoError(t, f.exports.UploadActive(t.Context()))
	assert.Equal(t, []int{sc.tournament.ID}, sink.puts)

	sink.err = errors.New("bucket gone")
	assert.ErrorContains(t, f.exports.UploadActive(t.Context()), "bucket gone")
}

func TestExportService_WinsChart(t *testing.T) {
	f := newFixture(nil)
	sc := f.seedScenario(true)

	png, err := f.exports.WinsChart(t.Context(), sc.tournament.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
