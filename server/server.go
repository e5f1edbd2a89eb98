// Package server exposes the chunk store over HTTP. It is the collaborator
// surface: the core pipelines never require it.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/lmontoya/filepart/backend/split"
	"github.com/lmontoya/filepart/backend/store"
	"github.com/lmontoya/filepart/internal"
	"github.com/lmontoya/filepart/pkg/metrics"
)

const maxUploadBytes = 1 << 30 // 1 GiB

type Server struct {
	store     *store.Store
	collector *metrics.SplitCollector
	chunkSize int64
}

type uploadResponse struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	TotalParts int    `json:"total_parts"`
}

type listResponse struct {
	Files []fileRecord `json:"files"`
}

type fileRecord struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Kind       string `json:"kind"`
	TotalParts int    `json:"total_parts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(st *store.Store, collector *metrics.SplitCollector, chunkSize int64) *Server {
	return &Server{store: st, collector: collector, chunkSize: chunkSize}
}

// Router wires the HTTP surface: upload, list, per-chunk and whole-file
// download, delete, and Prometheus metrics.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/list", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/files/{id}/chunks/{n:[0-9]+}", s.handleChunk).Methods(http.MethodGet)
	r.HandleFunc("/files/{id}/download", s.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/files/{id}", s.handleDelete).Methods(http.MethodDelete)
	if s.collector != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.collector.Registry(), promhttp.HandlerOpts{}))
	}

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})
	return c.Handler(r)
}

func (s *Server) ListenAndServe(port int, allowedOrigins []string) error {
	addr := fmt.Sprintf(":%d", port)
	internal.Info("store server listening", internal.Fields{
		internal.FieldPort:     port,
		internal.FieldStoreDir: s.store.Root(),
	})
	return http.ListenAndServe(addr, s.Router(allowedOrigins))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("no file part"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		writeError(w, http.StatusBadRequest, errors.New("no selected file"))
		return
	}

	// Land the upload in the store's scratch dir so the chunker reads a real
	// file. The scratch name must be unique per request or concurrent uploads
	// of the same filename clobber each other mid-ingest; the real extension
	// is kept because pipeline dispatch depends on it.
	tmp, err := os.CreateTemp(s.store.TmpDir(), "upload-*"+split.Ext(name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("stage upload: %w", err))
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, fmt.Errorf("stage upload: %w", err))
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("stage upload: %w", err))
		return
	}

	m, err := s.store.Ingest(tmpPath, name, s.chunkSize)
	if err != nil {
		if errors.Is(err, split.ErrUnsupported) {
			writeError(w, http.StatusUnsupportedMediaType, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	internal.Info("file ingested", internal.Fields{
		internal.FieldFileID: m.FileID,
		internal.FieldFile:   m.OriginalFilename,
		internal.FieldParts:  m.TotalParts,
	})
	writeJSON(w, http.StatusOK, uploadResponse{
		FileID:     m.FileID,
		Filename:   m.OriginalFilename,
		TotalParts: m.TotalParts,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	resp := listResponse{Files: make([]fileRecord, 0, len(stored))}
	for _, f := range stored {
		resp.Files = append(resp.Files, fileRecord{
			ID:         f.ID,
			Filename:   f.OriginalFilename,
			Kind:       f.Kind,
			TotalParts: f.TotalParts,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["n"])
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid chunk index"))
		return
	}
	path, err := s.store.PartPath(vars["id"], index)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Reassemble to scratch first; streaming raw part concatenation would
	// duplicate CSV headers. The scratch file is unique per request so
	// concurrent downloads of one id cannot truncate or delete each other's
	// copy mid-response.
	out, err := os.CreateTemp(s.store.TmpDir(), "assemble-"+id+"-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("stage download: %w", err))
		return
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	m, err := s.store.Assemble(id, outPath)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.OriginalFilename))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, outPath)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.Remove(id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	internal.Error("request failed", internal.Fields{
		internal.FieldError: err.Error(),
	})
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
