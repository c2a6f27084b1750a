package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/session-planner/internal/domain"
	"github.com/prohmpiriya/session-planner/internal/dto"
	"github.com/prohmpiriya/session-planner/internal/planner"
	"github.com/prohmpiriya/session-planner/internal/repository"
	"github.com/prohmpiriya/session-planner/pkg/logger"
	"github.com/prohmpiriya/session-planner/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// SessionConfigService errors
var (
	ErrDraftNotFound   = errors.New("draft not found")
	ErrVersionConflict = errors.New("draft version conflict")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidAction   = errors.New("invalid action")
	ErrForbidden       = errors.New("draft belongs to another user")
)

const publishTimeout = 30 * time.Second

// SessionConfigServiceConfig contains configuration for the service
type SessionConfigServiceConfig struct {
	DefaultCurrency   string
	RequiredByDefault bool
	Logger            *logger.Logger
}

// sessionConfigService implements the SessionConfigService interface
type sessionConfigService struct {
	repo            repository.DraftRepository
	publisher       ChangePublisher
	defaultCurrency string
	required        bool
	log             *logger.Logger

	// publishing runs in the background so slow brokers never hold requests
	pending sync.WaitGroup
}

// NewSessionConfigService creates a new SessionConfigService
func NewSessionConfigService(repo repository.DraftRepository, publisher ChangePublisher, cfg *SessionConfigServiceConfig) SessionConfigService {
	if cfg == nil {
		cfg = &SessionConfigServiceConfig{}
	}
	if publisher == nil {
		publisher = NewNoOpChangePublisher()
	}
	currency := cfg.DefaultCurrency
	if currency == "" {
		currency = planner.DefaultCurrency
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}
	return &sessionConfigService{
		repo:            repo,
		publisher:       publisher,
		defaultCurrency: currency,
		required:        cfg.RequiredByDefault,
		log:             log.With(zap.String("component", "session_config_service")),
	}
}

// CreateDraft starts a new draft, optionally seeded from a serialized payload
func (s *sessionConfigService) CreateDraft(ctx context.Context, createdBy string, req *dto.CreateDraftRequest) (*dto.DraftResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session_config.create_draft")
	defer span.End()

	if req == nil {
		req = &dto.CreateDraftRequest{}
	}
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	required := s.required
	if req.Required != nil {
		required = *req.Required
	}

	var (
		ctrl *planner.Controller
		err  error
	)
	if req.Payload != nil {
		var st planner.State
		st, err = req.Payload.ToState(currency, required)
		if err == nil {
			ctrl, err = planner.Restore(st)
		}
	} else {
		ctrl, err = planner.NewController(planner.Options{Currency: currency, Required: required})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	draft := &repository.Draft{
		ID:        uuid.New().String(),
		CreatedBy: createdBy,
		State:     ctrl.Snapshot(),
		Complete:  ctrl.IsComplete(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create draft")
		return nil, err
	}

	span.SetAttributes(attribute.String("draft_id", draft.ID))
	s.log.InfoContext(ctx, "draft created",
		zap.String("draft_id", draft.ID),
		zap.String("created_by", createdBy),
		zap.Bool("seeded", req.Payload != nil),
	)
	s.publish(ctx, domain.SessionConfigEventCreated, "", draft)

	return toDraftResponse(draft, ctrl.View()), nil
}

// GetDraft retrieves a draft by ID
func (s *sessionConfigService) GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session_config.get_draft")
	defer span.End()
	span.SetAttributes(attribute.String("draft_id", id))

	draft, ctrl, err := s.load(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return toDraftResponse(draft, ctrl.View()), nil
}

// ListDrafts lists the drafts of one creator, most recently updated first
func (s *sessionConfigService) ListDrafts(ctx context.Context, filter *dto.DraftListFilter) ([]*dto.DraftResponse, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session_config.list_drafts")
	defer span.End()

	if filter == nil {
		filter = &dto.DraftListFilter{}
	}
	filter.SetDefaults()

	drafts, total, err := s.repo.ListByCreator(ctx, filter.CreatedBy, filter.Limit, filter.Offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list drafts")
		return nil, 0, err
	}

	out := make([]*dto.DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		ctrl, err := planner.Restore(d.State)
		if err != nil {
			return nil, 0, fmt.Errorf("draft %s: %w", d.ID, err)
		}
		out = append(out, toDraftResponse(d, ctrl.View()))
	}
	span.SetAttributes(attribute.Int("total", total))
	return out, total, nil
}

// DeleteDraft soft deletes a draft
func (s *sessionConfigService) DeleteDraft(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.session_config.delete_draft")
	defer span.End()
	span.SetAttributes(attribute.String("draft_id", id))

	draft, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if draft == nil {
		return ErrDraftNotFound
	}
	if err := checkOwner(ctx, draft); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return ErrDraftNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete draft")
		return err
	}

	s.log.InfoContext(ctx, "draft deleted", zap.String("draft_id", id))
	s.publish(ctx, domain.SessionConfigEventDeleted, "", draft)
	return nil
}

// ApplyAction restores the draft's controller, runs the action and saves
// the result as the next version. Failed actions leave the draft untouched.
func (s *sessionConfigService) ApplyAction(ctx context.Context, id string, req *dto.ActionRequest) (*dto.ActionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session_config.apply_action")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "action is required")
		return nil, fmt.Errorf("%w: action is required", ErrInvalidAction)
	}
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, fmt.Errorf("%w: %s", ErrInvalidAction, msg)
	}
	span.SetAttributes(
		attribute.String("draft_id", id),
		attribute.String("action", string(req.Type)),
	)

	draft, ctrl, err := s.load(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if req.ExpectedVersion != 0 && req.ExpectedVersion != draft.Version {
		span.SetStatus(codes.Error, "stale version")
		return nil, fmt.Errorf("%w: expected version %d, current %d", ErrVersionConflict, req.ExpectedVersion, draft.Version)
	}

	view, err := apply(ctrl, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	expected := draft.Version
	draft.State = ctrl.Snapshot()
	draft.Complete = view.Complete
	draft.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, draft, expected); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			err = fmt.Errorf("%w: draft %s changed since version %d", ErrVersionConflict, id, expected)
		case errors.Is(err, repository.ErrDraftNotFound):
			err = ErrDraftNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save draft")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("version", draft.Version),
		attribute.Bool("complete", view.Complete),
	)
	s.log.Debug("action applied",
		zap.String("draft_id", id),
		zap.String("action", string(req.Type)),
		zap.Int64("version", draft.Version),
		zap.Bool("complete", view.Complete),
	)
	s.publish(ctx, domain.SessionConfigEventChanged, string(req.Type), draft)

	return &dto.ActionResponse{DraftID: draft.ID, Version: draft.Version, View: view}, nil
}

// Payload returns the serialized configuration of a draft
func (s *sessionConfigService) Payload(ctx context.Context, id string) (*dto.Payload, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session_config.payload")
	defer span.End()
	span.SetAttributes(attribute.String("draft_id", id))

	draft, _, err := s.load(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	p := dto.NewPayload(draft.State)
	return &p, nil
}

// Completeness reports whether a draft passes every completeness rule
func (s *sessionConfigService) Completeness(ctx context.Context, id string) (*dto.CompletenessResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session_config.completeness")
	defer span.End()
	span.SetAttributes(attribute.String("draft_id", id))

	draft, ctrl, err := s.load(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	problems := ctrl.Problems()
	if problems == nil {
		problems = []planner.Problem{}
	}
	return &dto.CompletenessResponse{
		DraftID:  draft.ID,
		Required: ctrl.Required(),
		Complete: len(problems) == 0,
		Problems: problems,
	}, nil
}

// Wait blocks until background publishing has finished
func (s *sessionConfigService) Wait() {
	s.pending.Wait()
}

// load fetches a draft the caller may access and restores its controller
func (s *sessionConfigService) load(ctx context.Context, id string) (*repository.Draft, *planner.Controller, error) {
	draft, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if draft == nil {
		return nil, nil, ErrDraftNotFound
	}
	if err := checkOwner(ctx, draft); err != nil {
		return nil, nil, err
	}
	ctrl, err := planner.Restore(draft.State)
	if err != nil {
		return nil, nil, fmt.Errorf("draft %s holds an unreadable state: %w", id, err)
	}
	return draft, ctrl, nil
}

// publish announces a draft version without blocking the caller. Failures
// are logged; the draft itself is already saved.
func (s *sessionConfigService) publish(ctx context.Context, eventType domain.SessionConfigEventType, action string, draft *repository.Draft) {
	event := &domain.SessionConfigEvent{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		DraftID:    draft.ID,
		Version:    draft.Version,
		Action:     action,
		Required:   draft.State.Required,
		Complete:   draft.Complete,
		DateCount:  len(draft.State.Dates),
		GroupCount: len(draft.State.Groups),
		OccurredAt: time.Now(),
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.ErrorContext(ctx, "failed to publish session config event",
				zap.String("draft_id", event.DraftID),
				zap.Int64("version", event.Version),
				zap.String("event_type", string(eventType)),
				zap.Error(err),
			)
		}
	}()
}

// apply dispatches one action to the controller
func apply(ctrl *planner.Controller, req *dto.ActionRequest) (planner.View, error) {
	key := domain.NormalizeGroupKey(req.Group)

	switch req.Type {
	case dto.ActionSelectDates:
		return ctrl.SelectDates(req.Dates)
	case dto.ActionAddSlot:
		return ctrl.AddSlot(req.Date, *req.Index)
	case dto.ActionRemoveSlot:
		return ctrl.RemoveSlot(req.Date, *req.Index)
	case dto.ActionCommitTime:
		return ctrl.CommitTime(req.Date, *req.Index, req.Time)
	case dto.ActionAssignGroup:
		return ctrl.AssignGroup(req.Date, *req.Index, key)
	case dto.ActionCreateGroup:
		return ctrl.CreateGroup(key)
	case dto.ActionDeleteGroup:
		return ctrl.DeleteGroup(key)
	case dto.ActionOpenEditor:
		return ctrl.OpenEditor(key)
	case dto.ActionCommitEditor:
		return ctrl.CommitEditor()
	case dto.ActionRevertEditor:
		return ctrl.RevertEditor()
	case dto.ActionAddSeatingArea:
		return ctrl.AddSeatingArea(key)
	case dto.ActionRemoveSeatingArea:
		return ctrl.RemoveSeatingArea(key, *req.Area)
	case dto.ActionRenameSeatingArea:
		return ctrl.RenameSeatingArea(key, *req.Area, req.Name)
	case dto.ActionAddTier:
		return ctrl.AddTier(key, *req.Area)
	case dto.ActionRemoveTier:
		return ctrl.RemoveTier(key, *req.Area, *req.Tier)
	case dto.ActionRenameTier:
		return ctrl.RenameTier(key, *req.Area, *req.Tier, req.Name)
	case dto.ActionCommitPrice:
		return ctrl.CommitPrice(key, *req.Area, *req.Tier, req.Price)
	case dto.ActionSetCurrency:
		return ctrl.SetCurrency(req.Currency)
	case dto.ActionSetRequired:
		return ctrl.SetRequired(*req.Required)
	default:
		return ctrl.View(), fmt.Errorf("%w: %s", ErrInvalidAction, req.Type)
	}
}

func toDraftResponse(d *repository.Draft, view planner.View) *dto.DraftResponse {
	return &dto.DraftResponse{
		ID:        d.ID,
		Version:   d.Version,
		CreatedBy: d.CreatedBy,
		View:      view,
		CreatedAt: dto.FormatTime(d.CreatedAt),
		UpdatedAt: dto.FormatTime(d.UpdatedAt),
	}
}
