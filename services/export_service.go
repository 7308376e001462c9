package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/card-league/export"
	"github.com/Dosada05/card-league/metrics"
	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
)

type ExportService interface {
	Table(ctx context.Context, tournamentID int) (export.Table, error)
	XLSX(ctx context.Context, tournamentID int) ([]byte, error)
	CSV(ctx context.Context, tournamentID int) ([]byte, error)
	WinsChart(ctx context.Context, tournamentID int) ([]byte, error)
	// Upload stores the workbook in the export sink.
	Upload(ctx context.Context, tournamentID int) (*export.Artifact, error)
	// UploadActive uploads a workbook for every active tournament. It is
	// the body of the nightly job.
	UploadActive(ctx context.Context) error
}

type exportService struct {
	standings      StandingsService
	tournamentRepo repositories.TournamentRepository
	sink           export.Sink
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewExportService wires the export paths. sink may be nil when no storage
// is configured; Upload then fails with ErrExportUnavailable.
func NewExportService(
	standingsService StandingsService,
	tournamentRepo repositories.TournamentRepository,
	sink export.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) ExportService {
	return &exportService{
		standings:      standingsService,
		tournamentRepo: tournamentRepo,
		sink:           sink,
		metrics:        m,
		logger:         orDefaultLogger(logger),
	}
}

func (s *exportService) Table(ctx context.Context, tournamentID int) (export.Table, error) {
	res, err := s.standings.Compute(ctx, tournamentID)
	if err != nil {
		return export.Table{}, err
	}
	return export.BuildTable(res)
}

func (s *exportService) XLSX(ctx context.Context, tournamentID int) (out []byte, err error) {
	defer func() { s.metrics.ObserveExport("xlsx", err) }()
	table, err := s.Table(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, table, export.DefaultSheet); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *exportService) CSV(ctx context.Context, tournamentID int) (out []byte, err error) {
	defer func() { s.metrics.ObserveExport("csv", err) }()
	table, err := s.Table(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *exportService) WinsChart(ctx context.Context, tournamentID int) (out []byte, err error) {
	defer func() { s.metrics.ObserveExport("png", err) }()
	res, err := s.standings.Compute(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return export.RenderWinsChart(res)
}

func (s *exportService) Upload(ctx context.Context, tournamentID int) (artifact *export.Artifact, err error) {
	if s.sink == nil {
		return nil, ErrExportUnavailable
	}
	defer func() { s.metrics.ObserveExport("upload", err) }()

	table, err := s.Table(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	artifact, err = s.sink.Put(ctx, tournamentID, table)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "standings exported",
		slog.Int("tournament_id", tournamentID),
		slog.String("key", artifact.Key),
		slog.Int("size", artifact.Size))
	return artifact, nil
}

func (s *exportService) UploadActive(ctx context.Context) error {
	if s.sink == nil {
		return ErrExportUnavailable
	}
	status := models.StatusActive
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{Status: &status})
	if err != nil {
		return fmt.Errorf("list active tournaments: %w", err)
	}

	var errs []error
	for _, t := range tournaments {
		if _, err := s.Upload(ctx, t.ID); err != nil {
			if errors.Is(err, export.ErrNoResults) {
				s.logger.InfoContext(ctx, "nothing to export", slog.Int("tournament_id", t.ID))
				continue
			}
			s.logger.ErrorContext(ctx, "nightly export failed", slog.Int("tournament_id", t.ID), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("tournament %d: %w", t.ID, err))
		}
	}
	return errors.Join(errs...)
}
