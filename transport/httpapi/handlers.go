package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opencds/icd/directory"
	"github.com/opencds/icd/wire"
)

// maxBodyBytes bounds the request body read. A sync request carrying the
// maximum allowed contacts (20,000 sixteen-byte identifiers by default)
// plus user/token fields fits comfortably within this; it exists to stop
// a misbehaving client from forcing an unbounded read.
const maxBodyBytes = 8 << 20

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, "user.register")
	if !ok {
		return
	}
	now := s.clock()
	s.dir.Sweep(now)
	s.dir.Register(req.User, req.AuthToken, now)
	s.reply(w, "user.register", &wire.Response{Result: wire.ResultSuccess})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, "user.delete")
	if !ok {
		return
	}
	now := s.clock()
	s.dir.Sweep(now)
	if err := s.dir.Unregister(req.User, req.AuthToken, now); err != nil {
		s.replyError(w, "user.delete", err)
		return
	}
	s.reply(w, "user.delete", &wire.Response{Result: wire.ResultSuccess})
}

func (s *Server) handleFullSync(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, "discovery.full")
	if !ok {
		return
	}
	now := s.clock()
	s.dir.Sweep(now)
	found, err := s.dir.FullSync(req.User, req.AuthToken, req.Identifiers, now)
	if err != nil {
		s.replyError(w, "discovery.full", err)
		return
	}
	s.metrics.ObserveSync("full", len(req.Identifiers))
	s.reply(w, "discovery.full", &wire.Response{Result: wire.ResultSuccess, AddedUsers: found})
}

func (s *Server) handleIncrementalSync(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, "discovery.incremental")
	if !ok {
		return
	}
	now := s.clock()
	s.dir.Sweep(now)
	added, removed, err := s.dir.IncrementalSync(req.User, req.AuthToken, req.Identifiers, now)
	if err != nil {
		s.replyError(w, "discovery.incremental", err)
		return
	}
	s.metrics.ObserveSync("incremental", len(req.Identifiers))
	s.reply(w, "discovery.incremental", &wire.Response{
		Result:       wire.ResultSuccess,
		AddedUsers:   added,
		RemovedUsers: removed,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.dir.Reset()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Success"))
}

func (s *Server) handleCreateUsers(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 {
		http.Error(w, "invalid count", http.StatusBadRequest)
		return
	}
	if err := s.dir.CreateRandomUsers(n, s.clock()); err != nil {
		if errors.Is(err, directory.ErrTooManyUsers) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("Too many"))
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Success"))
}

func (s *Server) handleAddMany(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, "test.add.many")
	if !ok {
		return
	}
	if err := s.dir.AddMany(req.Identifiers, s.clock()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.reply(w, "test.add.many", &wire.Response{Result: wire.ResultSuccess})
}

// decode reads and parses the request envelope. On failure it has already
// written the appropriate error reply and returns ok=false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, endpoint string) (*wire.Request, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		s.replyError(w, endpoint, wire.ErrRequestDataInvalid)
		return nil, false
	}
	if len(body) > maxBodyBytes {
		s.replyError(w, endpoint, wire.ErrRequestDataInvalid)
		return nil, false
	}
	req, err := wire.DecodeRequest(body)
	if err != nil {
		s.replyError(w, endpoint, err)
		return nil, false
	}
	return req, true
}

// reply writes resp as the envelope body. The HTTP status is always 200:
// failure is carried in the envelope's result field, not the transport.
func (s *Server) reply(w http.ResponseWriter, endpoint string, resp *wire.Response) {
	s.metrics.ObserveRequest(endpoint, resp.Result)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wire.EncodeResponse(resp))
}

// replyError maps one of the four contract failures to its Result code
// and replies with it. Any other error is a programming error: it is not
// mapped to a Result code but panics, so the recover middleware turns it
// into a transport-level 500.
func (s *Server) replyError(w http.ResponseWriter, endpoint string, err error) {
	s.reply(w, endpoint, &wire.Response{Result: resultForError(err)})
}

func resultForError(err error) wire.Result {
	switch {
	case errors.Is(err, directory.ErrAuthenticationInvalid):
		return wire.ResultAuthenticationInvalid
	case errors.Is(err, directory.ErrRateLimitExceeded):
		return wire.ResultRateLimitExceeded
	case errors.Is(err, wire.ErrRequestDataMissing):
		return wire.ResultRequestDataMissing
	case errors.Is(err, wire.ErrRequestDataInvalid):
		return wire.ResultRequestDataInvalid
	default:
		panic(err)
	}
}
