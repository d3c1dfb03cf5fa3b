package fakeserver

import (
	"fmt"
	"net/http"
)

// Document status values.
const (
	StatusEmpty = iota
	StatusReady
)

// Document is the JSON shape of a stored document.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Status    int    `json:"status"`
}

type storedDocument struct {
	Document
	payload []byte
}

const fileField = "document[file]"

// AddDocument stores a document directly and returns it.
func (s *Server) AddDocument(name, extension string, payload []byte) Document {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.storeDocument(name, extension, payload)
}

// Payload returns the stored contents of document id.
func (s *Server) Payload(id string) ([]byte, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), doc.payload...), true
}

// storeDocument must be called with the lock held.
func (s *Server) storeDocument(name, extension string, payload []byte) Document {
	doc := &storedDocument{
		Document: Document{ID: newID(), Name: name, Extension: extension},
	}
	if payload != nil {
		doc.payload = payload
		doc.Status = StatusReady
	}
	s.documents[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	return doc.Document
}

func (s *Server) ListDocuments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		docs := make([]Document, 0, len(s.order))
		for _, id := range s.order {
			docs = append(docs, s.documents[id].Document)
		}
		s.lock.Unlock()
		writeJSON(w, http.StatusOK, docs)
	}
}

func (s *Server) GetDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := s.lookup(r.PathValue("id"))
		if !ok {
			writeNotFound(w, r.PathValue("id"))
			return
		}
		writeJSON(w, http.StatusOK, doc.Document)
	}
}

func (s *Server) DownloadPayload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := s.lookup(r.PathValue("id"))
		if !ok {
			writeNotFound(w, r.PathValue("id"))
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.payload)
	}
}

func (s *Server) CreateDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := requestFrom(r.Context())
		name, _ := req.Params["document[name]"].(string)
		extension, _ := req.Params["document[extension]"].(string)
		if name == "" || extension == "" {
			writeValidationError(w, "document[name] and document[extension] are required")
			return
		}

		var payload []byte
		if upload, ok := req.Files[fileField]; ok {
			payload = upload.Content
		}

		s.lock.Lock()
		doc := s.storeDocument(name, extension, payload)
		s.lock.Unlock()
		writeJSON(w, http.StatusCreated, doc)
	}
}

func (s *Server) UploadPayload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := requestFrom(r.Context())
		upload, ok := req.Files[fileField]
		if !ok {
			writeValidationError(w, fileField+" is required")
			return
		}

		id := r.PathValue("id")
		s.lock.Lock()
		doc, found := s.documents[id]
		if found {
			doc.payload = upload.Content
			doc.Status = StatusReady
		}
		s.lock.Unlock()
		if !found {
			writeNotFound(w, id)
			return
		}
		writeJSON(w, http.StatusOK, doc.Document)
	}
}

func (s *Server) lookup(id string) (storedDocument, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return storedDocument{}, false
	}
	return *doc, true
}

func writeNotFound(w http.ResponseWriter, id string) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error":   "not_found",
		"message": fmt.Sprintf("document %s not found", id),
	})
}
