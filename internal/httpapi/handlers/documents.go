package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chatforge/chatforge/internal/common"
	"github.com/chatforge/chatforge/internal/document"
	"github.com/chatforge/chatforge/internal/rag"
)

// UploadDocument ingests one file into a vector collection: extract
// text, chunk, embed, upsert. Chunks carry `source` and `chunk_index`
// payload keys so retrieval can reassemble the document later.
func (h *Handler) UploadDocument(c *gin.Context) {
	if h.Retrieval == nil || h.Embedder == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "vector store not configured")
		return
	}

	collection := c.PostForm("collection")
	if collection == "" {
		common.Fail(c, http.StatusBadRequest, 40000, "collection is required")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 40000, "file is required")
		return
	}
	if fh.Size > h.Cfg.UploadMaxBytes {
		common.Fail(c, http.StatusRequestEntityTooLarge, 41300, "file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 40002, "unreadable file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.Cfg.UploadMaxBytes+1))
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 40002, "unreadable file")
		return
	}
	if int64(len(data)) > h.Cfg.UploadMaxBytes {
		common.Fail(c, http.StatusRequestEntityTooLarge, 41300, "file too large")
		return
	}

	text, err := h.Extractor.ExtractText(fh.Filename, data)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedFormat) {
			common.Fail(c, http.StatusBadRequest, 40003, "unsupported file format")
		} else {
			common.Fail(c, http.StatusBadRequest, 40003, "text extraction failed")
		}
		return
	}

	chunks := h.Chunker.Split(text)
	if len(chunks) == 0 {
		common.Fail(c, http.StatusBadRequest, 40003, "document is empty")
		return
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := h.Embedder.EmbedBatch(c.Request.Context(), texts)
	if err != nil {
		log.Printf("document_embed collection=%s file=%s err=%v", collection, fh.Filename, err)
		common.Fail(c, http.StatusBadGateway, 50201, "embedding failed")
		return
	}
	if len(vectors) == 0 {
		common.Fail(c, http.StatusBadGateway, 50201, "embedding failed")
		return
	}

	if err := h.Retrieval.EnsureCollection(c.Request.Context(), collection, len(vectors[0])); err != nil {
		log.Printf("document_collection collection=%s err=%v", collection, err)
		common.Fail(c, http.StatusBadGateway, 50202, "vector store unavailable")
		return
	}

	points := make([]rag.UpsertPoint, len(chunks))
	for i, ch := range chunks {
		points[i] = rag.UpsertPoint{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"text":        ch.Text,
				"source":      fh.Filename,
				"chunk_index": ch.Index,
			},
		}
	}
	if err := h.Retrieval.Ingest(c.Request.Context(), collection, points); err != nil {
		log.Printf("document_ingest collection=%s file=%s err=%v", collection, fh.Filename, err)
		common.Fail(c, http.StatusBadGateway, 50202, "vector store unavailable")
		return
	}

	common.OK(c, gin.H{
		"collection": collection,
		"filename":   fh.Filename,
		"chunks":     len(chunks),
	})
}
