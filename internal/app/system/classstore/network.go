package classstore

import (
	"context"
	"strings"

	"github.com/dalemusser/quickclass/internal/app/system/importfmt"

	"go.uber.org/zap"
)

// Save flushes edits, sends the collected list to the gateway and, on
// success, replaces the list with the canonical answer. On failure the
// list is left exactly as it was after the flush and an error Status is
// recorded. Only one Save may be in flight at a time.
func (s *Store) Save(ctx context.Context, edits PageEdits) (Status, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Status{}, ErrClosed
	}
	if s.saving {
		st := s.setStatusLocked(StatusError, s.str.Busy)
		s.mu.Unlock()
		return st, ErrInFlight
	}
	s.syncLocked(edits, s.currentPage)
	payload := collect(s.entries)
	s.saving = true
	s.mu.Unlock()

	canonical, err := s.gw.Save(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if s.closed {
		return Status{}, ErrClosed
	}
	if err != nil {
		s.log.Warn("class list save failed", zap.Int("entries", len(payload)), zap.Error(err))
		return s.setStatusLocked(StatusError, s.str.Error), err
	}

	s.replaceLocked(canonical)
	msg := s.str.Saved
	if len(canonical) == 0 {
		msg = s.str.NothingToSave
	}
	s.log.Info("class list saved", zap.Int("entries", len(canonical)))
	return s.setStatusLocked(StatusSuccess, msg), nil
}

// Import flushes edits and forwards raw bulk text to the gateway, which
// parses it. On success the list is replaced by the canonical list in the
// result and the gateway's message becomes the status. Only one Import may
// be in flight at a time.
func (s *Store) Import(ctx context.Context, edits PageEdits, raw string, mode ImportMode) (Status, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Status{}, ErrClosed
	}
	s.syncLocked(edits, s.currentPage)
	if strings.TrimSpace(raw) == "" {
		st := s.setStatusLocked(StatusError, s.str.ImportEmpty)
		s.mu.Unlock()
		return st, nil
	}
	if s.importing {
		st := s.setStatusLocked(StatusError, s.str.Busy)
		s.mu.Unlock()
		return st, ErrInFlight
	}
	s.importing = true
	s.mu.Unlock()

	res, err := s.gw.BatchImport(ctx, raw, mode)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.importing = false
	if s.closed {
		return Status{}, ErrClosed
	}
	if err != nil {
		s.log.Warn("class list import failed", zap.String("mode", string(mode)), zap.Error(err))
		return s.setStatusLocked(StatusError, s.str.Error), err
	}

	s.replaceLocked(res.Classes)
	msg := res.Message
	if msg == "" {
		msg = s.str.Saved
	}
	s.log.Info("class list imported", zap.String("mode", string(mode)), zap.Int("entries", len(res.Classes)), zap.Int("skipped", len(res.Skipped)))
	s.setStatusLocked(StatusSuccess, msg)
	s.status.Details = importfmt.ErrorsHTML(res.Skipped)
	return s.status, nil
}

// Reload discards the in-memory list and fetches it again from the gateway.
func (s *Store) Reload(ctx context.Context) error {
	initial, err := s.gw.LoadInitial(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.replaceLocked(initial)
	s.currentPage = 1
	return nil
}

// Status returns the last recorded status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Busy reports whether a save or an import is currently in flight.
func (s *Store) Busy() (saving, importing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving, s.importing
}

func (s *Store) setStatusLocked(kind StatusKind, msg string) Status {
	s.status = Status{Kind: kind, Message: msg, At: s.now()}
	return s.status
}
