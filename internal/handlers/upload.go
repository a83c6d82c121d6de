package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Nandeesh-nh/lan-chat/internal/services"
)

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

// Upload handles POST /upload (multipart: file, sender, target_user?).
// Validation happens before any bytes hit the disk.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(services.MaxFileSize); err != nil {
		fail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	sender := strings.TrimSpace(r.FormValue("sender"))
	target := strings.TrimSpace(r.FormValue("target_user"))
	if sender == "" {
		fail(w, http.StatusBadRequest, "Missing sender")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if err := h.Files.Validate(header.Filename, header.Size); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, size, err := h.Files.Store(file, sender, header.Filename)
	if err != nil {
		log.Printf("upload save failed for %q: %v", header.Filename, err)
		fail(w, http.StatusInternalServerError, "Error saving file")
		return
	}

	h.Messages.AppendFile(sender, target, services.OriginalFilename(ref), ref, size)

	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Filename: ref})
}

// Download handles GET /download/{storageRef}, streaming the stored payload
// with the original filename recovered from the ref.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "storageRef")

	file, originalName, err := h.Files.Resolve(ref)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			fail(w, http.StatusNotFound, "File not found")
			return
		}
		log.Printf("download failed for %q: %v", ref, err)
		fail(w, http.StatusInternalServerError, "Error downloading file")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+originalName+`"`)
	if info, err := file.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}

	if _, err := io.Copy(w, file); err != nil {
		log.Printf("download stream interrupted for %q: %v", ref, err)
	}
}
