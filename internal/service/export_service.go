package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/export"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportArchive interface {
	Save(filename string, data []byte) (string, error)
}

// ExportResult carries a rendered portfolio document.
type ExportResult struct {
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Content   []byte `json:"-"`
}

// ExportService provides a stable, serializable projection of a profile's
// approved achievements and renders it as CSV or PDF. Read-only over the
// record store; it never renders unapproved records.
type ExportService struct {
	profiles profileStore
	records  ownerRecordStore
	csv      datasetRenderer
	pdf      documentRenderer
	archive  exportArchive
	logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(profiles profileStore, records ownerRecordStore, csv datasetRenderer, pdf documentRenderer, archive exportArchive, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{profiles: profiles, records: records, csv: csv, pdf: pdf, archive: archive, logger: logger}
}

// Portfolio renders the approved-achievement portfolio for a profile.
// Supported formats: "csv", "pdf".
func (s *ExportService) Portfolio(ctx context.Context, profileID, format string) (*ExportResult, error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	achievements, err := s.records.ListByOwner(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievements")
	}

	dataset := buildPortfolioDataset(profile, achievements)

	var content []byte
	var mediaType string
	switch strings.ToLower(format) {
	case "csv":
		content, err = s.csv.Render(dataset)
		mediaType = "text/csv"
	case "pdf", "":
		content, err = s.pdf.Render(dataset, fmt.Sprintf("Portfolio - %s", profile.Name))
		mediaType = "application/pdf"
		format = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render portfolio")
	}

	filename := fmt.Sprintf("portfolio_%s_%d.%s", profile.ID, time.Now().UTC().Unix(), strings.ToLower(format))
	if s.archive != nil {
		if _, err := s.archive.Save(filename, content); err != nil {
			s.logger.Sugar().Warnw("failed to archive export", "profile_id", profileID, "error", err)
		}
	}

	return &ExportResult{Filename: filename, MediaType: mediaType, Content: content}, nil
}

func buildPortfolioDataset(profile *models.Profile, achievements []models.Achievement) export.Dataset {
	rows := make([]map[string]string, 0, len(achievements))
	for _, a := range achievements {
		if a.Status != models.StatusApproved {
			continue
		}
		rows = append(rows, map[string]string{
			"Title":        a.Title,
			"Category":     a.Category,
			"Date":         a.DateAchieved.Format("2006-01-02"),
			"Organization": a.Institution,
			"Skills":       strings.Join(a.Skills, ", "),
		})
	}
	return export.Dataset{
		Subject: map[string]string{
			"Name":       profile.Name,
			"Major":      profile.Major,
			"University": profile.University,
			"GPA":        strconv.FormatFloat(profile.GPA, 'f', 2, 64),
		},
		Headers: []string{"Title", "Category", "Date", "Organization", "Skills"},
		Rows:    rows,
	}
}
