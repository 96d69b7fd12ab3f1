package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/tabcore/debate-tab/storage"
)

// ExportResult points at the uploaded tab file.
type ExportResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ExportService выгружает текущий tab в объектное хранилище.
type ExportService interface {
	ExportStandings(ctx context.Context, tournamentID int) (*ExportResult, error)
}

type exportService struct {
	standings StandingsService
	uploader  storage.FileUploader
}

func NewExportService(standingsService StandingsService, uploader storage.FileUploader) ExportService {
	return &exportService{
		standings: standingsService,
		uploader:  uploader,
	}
}

func (s *exportService) ExportStandings(ctx context.Context, tournamentID int) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportUnavailable
	}

	table, err := s.standings.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{"rank", "team", "institution", "points", "speaks", "firsts", "seconds", "tie_info"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}
	for _, standing := range table {
		record := []string{
			strconv.Itoa(standing.Rank),
			standing.Team.Name,
			standing.Team.Institution,
			strconv.Itoa(standing.Team.TotalPoints),
			strconv.FormatFloat(standing.Team.TotalSpeaks, 'f', 1, 64),
			strconv.Itoa(standing.FirstPlaces),
			strconv.Itoa(standing.SecondPlaces),
			standing.TieInfo,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}

	key := fmt.Sprintf("tabs/%d/standings-%s.csv", tournamentID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, "text/csv", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to upload standings export: %w", err)
	}
	return &ExportResult{Key: result.Key, URL: result.Location}, nil
}
