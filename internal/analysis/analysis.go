// Package analysis runs the extract, lookup and match pipeline shared by the CLI and the HTTP API.
package analysis

import (
	"context"
	"time"

	"resumatch/internal/errors"
	"resumatch/internal/extract"
	"resumatch/internal/matcher"
	"resumatch/internal/observability"
	"resumatch/internal/report"
	"resumatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DocumentExtractor turns an uploaded file into text
type DocumentExtractor interface {
	ExtractFile(ctx context.Context, filename string, data []byte) (*extract.Result, error)
}

// Upload is a resume file as received from the user
type Upload struct {
	Filename string
	Data     []byte
}

// Analyzer matches uploads against the skill catalog
type Analyzer struct {
	extractor DocumentExtractor
	catalog   matcher.Lookuper
	reports   *report.Generator
	metrics   *observability.Metrics
	logger    *errors.Logger
}

func New(extractor DocumentExtractor, catalog matcher.Lookuper, reports *report.Generator, metrics *observability.Metrics, logger *errors.Logger) *Analyzer {
	if reports == nil {
		reports = report.NewGenerator(nil)
	}
	return &Analyzer{
		extractor: extractor,
		catalog:   catalog,
		reports:   reports,
		metrics:   metrics,
		logger:    logger,
	}
}

// Analyze extracts the upload's text and matches it against role.
// Extraction failures and unknown roles are returned as is.
func (a *Analyzer) Analyze(ctx context.Context, upload Upload, role string) (types.Analysis, error) {
	ctx, span := otel.Tracer("resumatch.analysis").Start(ctx, "analysis.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("job.role", role),
		attribute.String("resume.filename", upload.Filename),
		attribute.Int("resume.size", len(upload.Data)),
	)

	start := time.Now()
	extracted, err := a.extractor.ExtractFile(ctx, upload.Filename, upload.Data)
	contentType := ""
	if extracted != nil {
		contentType = extracted.ContentType
	}
	a.metrics.RecordExtraction(ctx, contentType, len(upload.Data), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		return types.Analysis{}, err
	}

	result, err := matcher.MatchRole(a.catalog, role, extracted.Text)
	if err != nil {
		span.RecordError(err)
		return types.Analysis{}, err
	}
	a.metrics.RecordMatch(ctx, role, result.Score)
	span.SetAttributes(attribute.Float64("match.score", result.Score))

	a.logger.Debug("Resume analyzed",
		"role", role,
		"content_type", extracted.ContentType,
		"text_length", len(extracted.Text),
		"score", result.Score)

	return types.Analysis{
		Filename:      upload.Filename,
		ContentType:   extracted.ContentType,
		ExtractedText: extracted.Text,
		Match:         result,
	}, nil
}

// Report renders result in the requested kind.
func (a *Analyzer) Report(ctx context.Context, result types.MatchResult, kind report.Kind) (*report.Report, error) {
	_, span := otel.Tracer("resumatch.analysis").Start(ctx, "analysis.report")
	defer span.End()
	span.SetAttributes(attribute.String("report.type", string(kind)))

	out, err := a.reports.Export(result, kind)
	a.metrics.RecordReport(ctx, string(kind), err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}
