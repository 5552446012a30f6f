package orgtree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vantage/internal/domain"
	models "vantage/internal/domain/models/orgtree"
	"vantage/internal/domain/repositories"
	"vantage/internal/domain/services"
	orgtreeSvc "vantage/internal/domain/services/orgtree"
	"vantage/internal/metrics"
	engine "vantage/internal/orgtree"
)

type sessionKey struct {
	userID    uuid.UUID
	companyID int64
}

type sessionEntry struct {
	mu       sync.Mutex
	session  *engine.Session
	lastUsed time.Time
}

// EditorConfig tunes the editor service
type EditorConfig struct {
	IndentationWidth int
	IdleTimeout      time.Duration
	Validator        *engine.Validator // nil uses the default tier table
}

// EditorService keeps one engine.Session per user and company. Operations
// on the same session are serialized; different sessions run in parallel.
type EditorService struct {
	loader      *snapshotLoader
	authorizer  services.CompanyAuthorizer
	persister   orgtreeSvc.TreePersister
	prefs       services.UserPreferencesService
	validator   *engine.Validator
	width       int
	idleTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*sessionEntry

	// pending tracks background persistence so shutdown can wait for it
	pending sync.WaitGroup
}

var _ orgtreeSvc.EditorService = (*EditorService)(nil)

// NewEditorService creates the editor service. cache and prefs may be nil.
func NewEditorService(
	hierarchy repositories.HierarchyRepository,
	cache orgtreeSvc.SnapshotCache,
	authorizer services.CompanyAuthorizer,
	persister orgtreeSvc.TreePersister,
	prefs services.UserPreferencesService,
	cfg EditorConfig,
	logger *slog.Logger,
) *EditorService {
	validator := cfg.Validator
	if validator == nil {
		validator = engine.NewValidator(nil)
	}
	return &EditorService{
		loader:      &snapshotLoader{hierarchy: hierarchy, cache: cache, logger: logger},
		authorizer:  authorizer,
		persister:   persister,
		prefs:       prefs,
		validator:   validator,
		width:       cfg.IndentationWidth,
		idleTimeout: cfg.IdleTimeout,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[sessionKey]*sessionEntry),
	}
}

// Open reloads the session tree from upstream. Expansion survives for items
// that still exist.
func (s *EditorService) Open(ctx context.Context, userID uuid.UUID, companyID int64) (*orgtreeSvc.EditorView, error) {
	if err := s.authorizer.CanEditCompany(ctx, userID, companyID); err != nil {
		return nil, err
	}

	entry, created, err := s.entry(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !created {
		company, err := s.loader.load(ctx, companyID)
		if err != nil {
			return nil, err
		}
		entry.session.Load(company)
	}

	s.logger.Debug("editor session opened", "user_id", userID, "company_id", companyID)
	return s.view(companyID, entry.session), nil
}

func (s *EditorService) View(ctx context.Context, userID uuid.UUID, companyID int64) (*orgtreeSvc.EditorView, error) {
	return s.with(ctx, userID, companyID, func(session *engine.Session) error {
		return nil
	})
}

// Toggle expands or collapses one item
func (s *EditorService) Toggle(ctx context.Context, userID uuid.UUID, companyID int64, itemID string) (*orgtreeSvc.EditorView, error) {
	return s.with(ctx, userID, companyID, func(session *engine.Session) error {
		if _, err := session.Toggle(itemID); err != nil {
			return lookupError(itemID, err)
		}
		return nil
	})
}

func (s *EditorService) DragStart(ctx context.Context, userID uuid.UUID, companyID int64, activeID string) (*orgtreeSvc.EditorView, error) {
	return s.with(ctx, userID, companyID, func(session *engine.Session) error {
		if err := session.DragStart(activeID); err != nil {
			return lookupError(activeID, err)
		}
		return nil
	})
}

// DragMove updates the projection. An unknown hovered item leaves the drag
// as it was.
func (s *EditorService) DragMove(ctx context.Context, userID uuid.UUID, companyID int64, overID string, offsetLeft float64) (*orgtreeSvc.EditorView, error) {
	return s.with(ctx, userID, companyID, func(session *engine.Session) error {
		if !session.Dragging() {
			return &domain.ValidationError{Message: "no drag in progress"}
		}
		if _, err := session.DragMove(overID, offsetLeft); err != nil {
			if errors.Is(err, engine.ErrItemNotFound) {
				s.logger.Debug("drag over unknown item ignored", "company_id", companyID, "over_id", overID)
				return nil
			}
			return err
		}
		return nil
	})
}

// DragEnd commits the move to the session, then persists the payload in the
// background. The editor shows the new order immediately; a failed write is
// logged and counted but not rolled back.
func (s *EditorService) DragEnd(ctx context.Context, userID uuid.UUID, companyID int64) (*orgtreeSvc.DragEndResult, error) {
	var result *engine.MoveResult
	view, err := s.with(ctx, userID, companyID, func(session *engine.Session) error {
		var err error
		result, err = session.DragEnd()
		return err
	})
	if err != nil {
		var rejected *domain.MoveRejectedError
		if errors.As(err, &rejected) {
			metrics.RecordMove(metrics.MoveRejected, rejected.Reason)
			s.logger.Info("move rejected",
				"company_id", companyID,
				"active_id", rejected.ItemID,
				"reason", rejected.Reason,
				"conflicting_id", rejected.ConflictingID,
			)
		}
		return nil, err
	}

	if !result.Moved {
		metrics.RecordMove(metrics.MoveNoop, "")
		return &orgtreeSvc.DragEndResult{MoveResult: *result, View: view}, nil
	}

	metrics.RecordMove(metrics.MoveMoved, "")
	s.logger.Info("tree item moved",
		"company_id", companyID,
		"active_id", result.ActiveID,
		"parent_id", result.Placement.ParentID,
		"parent_changed", result.ParentChanged,
		"records", len(result.Payload),
	)

	s.pending.Add(1)
	go s.persist(context.WithoutCancel(ctx), companyID, result.ActiveID, result.Payload)

	return &orgtreeSvc.DragEndResult{MoveResult: *result, View: view}, nil
}

// DragCancel abandons the drag and restores the expansion it changed
func (s *EditorService) DragCancel(ctx context.Context, userID uuid.UUID, companyID int64) (*orgtreeSvc.EditorView, error) {
	return s.with(ctx, userID, companyID, func(session *engine.Session) error {
		session.DragCancel()
		return nil
	})
}

// Wait blocks until background persistence has finished or ctx is done
func (s *EditorService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *EditorService) persist(ctx context.Context, companyID int64, activeID string, records []models.ReorderRecord) {
	defer s.pending.Done()

	if err := s.persister.Persist(ctx, companyID, records); err != nil {
		metrics.RecordPersistFailure()
		s.logger.Error("failed to persist tree reorder",
			"company_id", companyID,
			"active_id", activeID,
			"records", len(records),
			"error", err,
		)
	}
}

// with runs fn on the caller's session under its lock and returns the
// resulting view
func (s *EditorService) with(ctx context.Context, userID uuid.UUID, companyID int64, fn func(*engine.Session) error) (*orgtreeSvc.EditorView, error) {
	if err := s.authorizer.CanEditCompany(ctx, userID, companyID); err != nil {
		return nil, err
	}

	entry, _, err := s.entry(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := fn(entry.session); err != nil {
		return nil, err
	}
	return s.view(companyID, entry.session), nil
}

// entry returns the session for key, creating and loading it on first use.
// Idle sessions are evicted on the way.
func (s *EditorService) entry(ctx context.Context, userID uuid.UUID, companyID int64) (*sessionEntry, bool, error) {
	key := sessionKey{userID: userID, companyID: companyID}
	now := s.now()

	s.mu.Lock()
	s.evictIdle(now)
	entry, ok := s.sessions[key]
	if ok {
		entry.lastUsed = now
		s.mu.Unlock()
		return entry, false, nil
	}
	s.mu.Unlock()

	company, err := s.loader.load(ctx, companyID)
	if err != nil {
		return nil, false, err
	}
	session := engine.NewSession(s.validator, s.indentationWidth(ctx, userID))
	session.Load(company)

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have created it while we were loading
	if existing, ok := s.sessions[key]; ok {
		existing.lastUsed = now
		return existing, false, nil
	}
	entry = &sessionEntry{session: session, lastUsed: now}
	s.sessions[key] = entry
	return entry, true, nil
}

// evictIdle drops sessions unused for longer than the idle timeout.
// Must be called with s.mu held.
func (s *EditorService) evictIdle(now time.Time) {
	if s.idleTimeout <= 0 {
		return
	}
	for key, entry := range s.sessions {
		if now.Sub(entry.lastUsed) > s.idleTimeout {
			delete(s.sessions, key)
			s.logger.Debug("editor session evicted", "user_id", key.userID, "company_id", key.companyID)
		}
	}
}

// indentationWidth prefers the user's saved preference over the default
func (s *EditorService) indentationWidth(ctx context.Context, userID uuid.UUID) int {
	if s.prefs == nil {
		return s.width
	}
	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to read tree preferences", "user_id", userID, "error", err)
		return s.width
	}
	tree, err := prefs.GetTree()
	if err != nil || tree.IndentationWidth == nil || *tree.IndentationWidth <= 0 {
		return s.width
	}
	return *tree.IndentationWidth
}

func (s *EditorService) view(companyID int64, session *engine.Session) *orgtreeSvc.EditorView {
	view := &orgtreeSvc.EditorView{
		CompanyID: companyID,
		Visible:   session.Visible(),
		Expanded:  session.Expanded(),
		Dragging:  session.Dragging(),
	}
	if projection, ok := session.Projection(); ok {
		view.Projection = &projection
	}
	return view
}

// lookupError maps engine lookup failures to domain.ErrNotFound
func lookupError(itemID string, err error) error {
	if errors.Is(err, engine.ErrItemNotFound) {
		return fmt.Errorf("tree item %s: %w", itemID, domain.ErrNotFound)
	}
	return err
}
