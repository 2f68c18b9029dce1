package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/pkg/httputil"
)

const (
	// maxFilesPerUpload bounds the number of parts in one upload request.
	maxFilesPerUpload = 10
	// multipartMemory is held in memory before parts spill to disk.
	multipartMemory = 8 << 20
)

// ImageHandler handles HTTP requests for image endpoints.
type ImageHandler struct {
	service  ImageService
	maxBytes int64
	logger   *slog.Logger
}

// NewImageHandler creates a new image HTTP handler. maxBytes is the largest
// accepted file.
func NewImageHandler(svc ImageService, maxBytes int64, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		service:  svc,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// UploadImages handles POST /images/upload (multipart/form-data with one or
// more "files" parts and a "productId" field).
func (h *ImageHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes*maxFilesPerUpload+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeMultipartError(w, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	productID, ok := httputil.ParseID(w, r.FormValue("productId"))
	if !ok {
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httputil.WriteBadRequest(w, "INVALID_INPUT", "at least one file is required")
		return
	}
	if len(headers) > maxFilesPerUpload {
		httputil.WriteBadRequest(w, "INVALID_INPUT", fmt.Sprintf("at most %d files may be uploaded at once", maxFilesPerUpload))
		return
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := h.readPart(fh)
		if err != nil {
			httputil.WriteBadRequest(w, "INVALID_INPUT", err.Error())
			return
		}
		files = append(files, f)
	}

	dtos, err := h.service.SaveImages(r.Context(), productID, files)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, "Upload Success!", dtos)
}

// DownloadImage handles GET /images/download/{id}. The payload is sent as
// an attachment under its stored file name. Clients revalidate with
// If-None-Match and get 304 while the image is unchanged.
func (h *ImageHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	img, err := h.service.GetImage(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	etag := img.ETag()
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": img.FileName})
	if disposition == "" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", img.FileType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		h.logger.WarnContext(r.Context(), "image download interrupted",
			slog.Int64("image_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// UpdateImage handles PUT /images/image/{id}/update (multipart/form-data
// with a single "file" part).
func (h *ImageHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeMultipartError(w, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["file"]
	if len(headers) != 1 {
		httputil.WriteBadRequest(w, "INVALID_INPUT", "exactly one file is required")
		return
	}

	file, err := h.readPart(headers[0])
	if err != nil {
		httputil.WriteBadRequest(w, "INVALID_INPUT", err.Error())
		return
	}

	dto, err := h.service.UpdateImage(r.Context(), id, file)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, "Update Success!", dto)
}

// etagMatches reports whether an If-None-Match header lists etag. Weak
// validators compare equal to their strong form.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// writeMultipartError answers 413 when the body limit was hit and 400 for
// any other malformed form.
func writeMultipartError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.ErrorEnvelope{
			Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			Data:    &httputil.ErrorData{Code: "PAYLOAD_TOO_LARGE"},
		})
		return
	}
	httputil.WriteBadRequest(w, "INVALID_INPUT", "failed to parse multipart form: "+err.Error())
}

// DeleteImage handles DELETE /images/image/{id}/delete.
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteImage(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Delete Success!")
}

// readPart loads one uploaded part. At most maxBytes+1 bytes are read so
// that oversize files are still reported as too large.
func (h *ImageHandler) readPart(fh *multipart.FileHeader) (domain.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("open file %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("read file %q: %w", fh.Filename, err)
	}

	return domain.UploadedFile{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
