package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/collection"
	"github.com/ssargent/axlframe/pkg/storage"
)

const defaultListLimit = 100

var errLimitReached = errors.New("list limit reached")

// Server holds the API server state
type Server struct {
	archive  PacketArchive
	builder  *collection.Builder
	config   ServerConfig
	metrics  *HTTPMetrics
	recorder ArchiveRecorder
}

// NewServer creates a new API server
func NewServer(archive PacketArchive, builder *collection.Builder, config ServerConfig, metrics *HTTPMetrics, recorder ArchiveRecorder) *Server {
	return &Server{
		archive:  archive,
		builder:  builder,
		config:   config.withDefaults(),
		metrics:  metrics,
		recorder: recorder,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API and the archive size
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.archive.Count()
	if err != nil {
		sendError(w, fmt.Sprintf("Archive unavailable: %v", err), http.StatusServiceUnavailable)
		return
	}
	sendSuccess(w, http.StatusOK, map[string]interface{}{"status": "healthy", "packets": n})
}

// handleImport godoc
//
//	@Summary		Import a collection
//	@Description	Decode an uploaded collection file and archive every recovered packet
//	@Tags			collections
//	@Accept			octet-stream
//	@Produce		json
//	@Param			body	body		[]byte	true	"Collection bytes"
//	@Success		201		{object}	ImportResponse
//	@Failure		413		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/collections [post]
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes))
	if err != nil {
		s.recorder.RecordCollection(false)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, fmt.Sprintf("Collection larger than %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	c := s.builder.FromBytes(body)
	s.recorder.RecordCollection(true)

	ids, err := s.archive.PutBatch(c.Packets)
	s.recorder.RecordArchiveOperation("put", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to archive packets: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, http.StatusCreated, newImportResponse(c, ids))
}

// handleListPackets godoc
//
//	@Summary		List archived packets
//	@Description	List archived packets in id order, without sample data
//	@Tags			packets
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of packets (default 100)"
//	@Success		200		{array}		PacketView
//	@Failure		400		{object}	map[string]string
//	@Router			/packets [get]
func (s *Server) handleListPackets(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			sendError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	views := make([]PacketView, 0)
	err := s.archive.Scan(func(id ksuid.KSUID, p *codec.Packet) error {
		if len(views) == limit {
			return errLimitReached
		}
		views = append(views, newPacketView(id, p))
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		s.recorder.RecordArchiveOperation("list", false)
		sendError(w, fmt.Sprintf("Failed to list packets: %v", err), http.StatusInternalServerError)
		return
	}
	s.recorder.RecordArchiveOperation("list", true)
	sendSuccess(w, http.StatusOK, views)
}

// handleGetPacket godoc
//
//	@Summary		Get an archived packet
//	@Description	Get one packet with sample statistics. Use ?data=true to include the samples.
//	@Tags			packets
//	@Produce		json
//	@Param			id		path		string	true	"Packet id"
//	@Param			data	query		bool	false	"Include sample data"
//	@Success		200		{object}	PacketView
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/packets/{id} [get]
func (s *Server) handleGetPacket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := s.archive.Get(id)
	if err != nil {
		s.recorder.RecordArchiveOperation("get", false)
		sendArchiveError(w, err)
		return
	}
	s.recorder.RecordArchiveOperation("get", true)

	view := newPacketView(id, p)
	view.Stats = newStatsView(p)
	if r.URL.Query().Get("data") == "true" {
		view.Data = p.Data.Float32s()
		for i, v := range view.Data {
			view.Data[i] = float32(finite(float64(v)))
		}
	}
	sendSuccess(w, http.StatusOK, view)
}

// handleDeletePacket godoc
//
//	@Summary		Delete an archived packet
//	@Tags			packets
//	@Produce		json
//	@Param			id	path		string	true	"Packet id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Router			/packets/{id} [delete]
func (s *Server) handleDeletePacket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := s.archive.Get(id); err != nil {
		s.recorder.RecordArchiveOperation("delete", false)
		sendArchiveError(w, err)
		return
	}
	err := s.archive.Delete(id)
	s.recorder.RecordArchiveOperation("delete", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to delete packet: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, http.StatusOK, map[string]string{"message": "Packet deleted"})
}

func parseID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid packet id", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

func sendArchiveError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, "Packet not found", http.StatusNotFound)
		return
	}
	sendError(w, fmt.Sprintf("Archive error: %v", err), http.StatusInternalServerError)
}
