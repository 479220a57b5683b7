package api

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/dd0wney/workpairs/pkg/loader"
	"github.com/dd0wney/workpairs/pkg/logging"
	"github.com/dd0wney/workpairs/pkg/overlap"
	"github.com/dd0wney/workpairs/pkg/validation"
)

const (
	uploadFormField = "file"
	fileRequired    = "File is required."
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

//go:embed static/upload.html
var uploadForm []byte

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(uploadForm)
}

// handleUpload processes POST /api/upload. The file is read from the "file"
// multipart field; the strategy comes from the query string or form.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logger := s.requestLogger(r)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.respondMultipartError(w, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		s.respondMultipartError(w, err)
		return
	}
	defer file.Close()

	if header.Size == 0 {
		s.respondError(w, http.StatusBadRequest, fileRequired)
		return
	}
	maxSize := s.cfg.Server.MaxUploadSize
	if header.Size > maxSize {
		s.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the maximum upload size of %d bytes.", maxSize))
		return
	}

	req := validation.UploadRequest{
		Filename: header.Filename,
		Size:     header.Size,
		Strategy: r.FormValue("strategy"),
	}
	if err := validation.ValidateUploadRequest(&req, maxSize); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	strategy, err := overlap.ParseStrategy(req.Strategy)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, sanitizeError(logger, err, "file upload"))
		return
	}
	s.metrics.RecordUpload(len(data))

	records, skipped, err := s.load(r, logger, req.Filename, data)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, sanitizeError(logger, err, "file processing"))
		return
	}

	result, err := s.engine.ComputeWith(r.Context(), strategy, records)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, sanitizeError(logger, err, "overlap computation"))
		return
	}

	s.respondJSON(w, http.StatusOK, newUploadResponse(records, result, skipped.Rows()))
}

// load parses data with a loader scoped to this request. Skipped rows are
// collected for the response, logged and counted.
func (s *Server) load(r *http.Request, logger logging.Logger, name string, data []byte) ([]overlap.Assignment, *loader.CollectingReporter, error) {
	format := loader.DetectFormat(name, data)
	skipped := &loader.CollectingReporter{}

	ld := loader.New(
		loader.WithClock(s.clock),
		loader.WithLogger(logger),
		loader.WithReporter(loader.MultiReporter(
			skipped,
			loader.NewLogReporter(logger),
			loader.ReporterFunc(func(_ int, reason error) {
				s.metrics.RecordRowSkipped(loader.Reason(reason))
			}),
		)),
	)

	records, err := ld.Load(r.Context(), bytes.NewReader(data), name)
	if err != nil {
		s.metrics.RecordFileLoaded(string(format), "error")
		return nil, nil, err
	}
	s.metrics.RecordFileLoaded(string(format), "ok")
	return records, skipped, nil
}

func (s *Server) respondMultipartError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the maximum upload size of %d bytes.", s.cfg.Server.MaxUploadSize))
	case errors.Is(err, http.ErrMissingFile):
		s.respondError(w, http.StatusBadRequest, fileRequired)
	default:
		s.respondError(w, http.StatusBadRequest, "Request must be multipart/form-data with a \"file\" field.")
	}
}
