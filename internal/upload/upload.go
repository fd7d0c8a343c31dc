// Package upload implements the image upload endpoint. It is the only
// route besides /graphql that performs work, and it authenticates itself
// from the request context before touching disk.
package upload

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	funk "github.com/thoas/go-funk"

	"github.com/dkhodos/postshare/internal/auth"
	"github.com/dkhodos/postshare/internal/logger"
)

// maxUploadSize bounds the multipart form memory footprint.
const maxUploadSize = 10 << 20

// allowedMIMETypes is the fixed allow-list of image content types.
// Anything else is silently discarded, never written to storage.
var allowedMIMETypes = []string{"image/png", "image/jpg", "image/jpeg"}

type fileSaver interface {
	Save(name string, src io.Reader) (string, error)
}

type oldImageCleaner interface {
	Enqueue(storedPath string)
}

// Handler serves PUT /post-image.
type Handler struct {
	files   fileSaver
	cleaner oldImageCleaner
}

type uploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath,omitempty"`
}

// New creates an upload Handler.
func New(files fileSaver, cleaner oldImageCleaner) *Handler {
	return &Handler{
		files:   files,
		cleaner: cleaner,
	}
}

// PutPostimage stores one uploaded image. An unauthenticated request is
// rejected before any disk write. A request without a file part (or with
// a disallowed content type, which is discarded) succeeds with a "no
// file" marker so clients may call the endpoint speculatively. When an
// oldPath is supplied the superseded file is deleted best-effort.
func (h *Handler) PutPostimage(response http.ResponseWriter, request *http.Request) {
	identity := auth.FromContext(request.Context())
	if !identity.Authenticated {
		writeJSON(response, http.StatusUnauthorized, uploadResponse{Message: "Not authenticated!"})
		return
	}

	if err := request.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(response, http.StatusOK, uploadResponse{Message: "No file provided!"})
		return
	}

	file, header, err := request.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		writeJSON(response, http.StatusOK, uploadResponse{Message: "No file provided!"})
		return
	}
	if err != nil {
		writeJSON(response, http.StatusInternalServerError, uploadResponse{Message: "Failed to read the uploaded file."})
		return
	}
	defer file.Close()

	if !funk.ContainsString(allowedMIMETypes, header.Header.Get("Content-Type")) {
		// Discarded like a missing file, nothing reaches storage.
		writeJSON(response, http.StatusOK, uploadResponse{Message: "No file provided!"})
		return
	}

	storedName := uuid.New().String() + "-" + filepath.Base(header.Filename)
	storedPath, err := h.files.Save(storedName, file)
	if err != nil {
		logger.Log.Debugln("failed to store uploaded file:", err)
		writeJSON(response, http.StatusInternalServerError, uploadResponse{Message: "Failed to store the file."})
		return
	}

	if oldPath := request.FormValue("oldPath"); oldPath != "" {
		h.cleaner.Enqueue(oldPath)
	}

	writeJSON(response, http.StatusCreated, uploadResponse{
		Message:  "File stored.",
		FilePath: storedPath,
	})
}

func writeJSON(response http.ResponseWriter, statusCode int, body uploadResponse) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)

	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Debugln("failed to encode response:", err)
	}
}
