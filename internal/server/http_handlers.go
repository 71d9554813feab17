package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"resumatch/internal/analysis"
	"resumatch/internal/errors"
	"resumatch/internal/report"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// multipartMemory is the part of a multipart body kept in memory; the rest spills to disk
const multipartMemory = 8 << 20

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumatch",
		"version": s.Version,
		"roles":   len(s.catalog.Roles()),
	}

	if s.suggester != nil {
		stats := s.suggester.Stats()
		response["suggestions"] = map[string]any{
			"configured": stats["configured"],
			"healthy":    stats["healthy"],
		}
		// matching keeps working while the language model is unavailable
		if healthy, ok := stats["healthy"].(bool); ok && !healthy {
			response["status"] = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"version": s.Version,
		"rate_limiting": map[string]any{
			"enabled": s.RateLimit.Enabled,
		},
	}
	if s.RateLimiter != nil {
		stats["rate_limiting"] = s.RateLimiter.GetStats()
	}
	if s.suggester != nil {
		stats["suggestions"] = s.suggester.Stats()
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) rolesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RolesResponse{Roles: s.catalog.Entries()})
}

func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("resumatch.api").Start(r.Context(), "api.match")
	defer span.End()
	r = r.WithContext(ctx)

	upload, role, err := s.readUpload(r)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("job.role", role))

	result, err := s.analyzer.Analyze(ctx, upload, role)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err)
		return
	}

	m := result.Match
	writeJSON(w, http.StatusOK, MatchResponse{
		Filename:      result.Filename,
		ContentType:   result.ContentType,
		ExtractedText: result.ExtractedText,
		MatchResult:   m,
		Report:        report.ToText(m.Role, m.Score, m.MatchedSkills, m.MissingSkills),
	})
}

func (s *Server) matchReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("resumatch.api").Start(r.Context(), "api.match_report")
	defer span.End()
	r = r.WithContext(ctx)

	kind := report.KindText
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := report.ParseKind(raw)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		kind = parsed
	}
	span.SetAttributes(attribute.String("report.type", string(kind)))

	upload, role, err := s.readUpload(r)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err)
		return
	}

	result, err := s.analyzer.Analyze(ctx, upload, role)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err)
		return
	}

	out, err := s.analyzer.Report(ctx, result.Match, kind)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Content); err != nil {
		s.Logger.LogError(err, "Failed to write report", "request_id", requestID(ctx))
	}
}

func (s *Server) suggestionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("resumatch.api").Start(r.Context(), "api.suggestions")
	defer span.End()
	r = r.WithContext(ctx)

	var req SuggestionRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, validationError(err))
		return
	}
	if !s.catalog.Has(req.Role) {
		s.writeAppError(w, r, errors.NewRoleNotFoundError(req.Role))
		return
	}
	span.SetAttributes(
		attribute.String("job.role", req.Role),
		attribute.Int("request.resume_length", len(req.ResumeText)),
	)

	result := s.suggester.Suggest(ctx, req.ResumeText, req.Role)
	resp := SuggestionResponse{Suggestions: result.Display(), OK: result.OK()}
	if appErr, ok := errors.As(result.Err); ok {
		resp.ErrorCode = appErr.Code
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload pulls the role field and the resume file out of a multipart form.
func (s *Server) readUpload(r *http.Request) (analysis.Upload, string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return analysis.Upload{}, "", requestBodyError(err, "expected a multipart form with role and resume fields")
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	role := strings.TrimSpace(r.FormValue("role"))
	if role == "" {
		return analysis.Upload{}, "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "role field is required", nil)
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		return analysis.Upload{}, "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "resume file is required", err)
	}
	defer func() { _ = file.Close() }()

	data, err := s.readPart(file, header)
	if err != nil {
		return analysis.Upload{}, "", err
	}
	return analysis.Upload{Filename: header.Filename, Data: data}, role, nil
}

func (s *Server) readPart(file multipart.File, header *multipart.FileHeader) ([]byte, error) {
	if s.MaxFileSize > 0 && header.Size > s.MaxFileSize {
		return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("resume exceeds the %d byte limit", s.MaxFileSize), nil)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read uploaded resume", err)
	}
	if len(data) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "resume file is empty", nil)
	}
	return data, nil
}

// parseJSONRequest decodes a JSON body, rejecting unknown fields and trailing data.
func parseJSONRequest(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return requestBodyError(err, "invalid JSON body")
	}
	if decoder.More() {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "request body must contain a single JSON object", nil)
	}
	return nil
}

func requestBodyError(err error, message string) error {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("request body exceeds the %d byte limit", maxErr.Limit), err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, message, err)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid request", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, strings.Join(msgs, "; "), nil)
}

// statusFor maps an application error onto an HTTP status.
func statusFor(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeExtraction:
		return http.StatusUnprocessableEntity
	case errors.ErrorTypeAI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(errors.ErrCodeInternal, "unexpected error", err)
	}
	status := statusFor(appErr)
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(appErr, "Request failed", "request_id", requestID(r.Context()), "path", r.URL.Path)
	} else {
		s.Logger.Debug("Request rejected",
			"request_id", requestID(r.Context()),
			"path", r.URL.Path,
			"error_code", appErr.Code,
			"error", appErr.Message)
	}

	writeErrorResponse(w, r, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, resp ErrorResponse) {
	resp.RequestID = requestID(r.Context())
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
