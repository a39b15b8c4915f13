package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/crew-service/internal/domain"
	"github.com/aidar/crew-service/internal/repository"
)

// CrewService coordinates every membership change across the crew registry and the
// user directory: authorize, conditionally update the crew, propagate to the user, report.
// The two stores share no transaction; a failed propagation is compensated by the
// inverse crew update and surfaces as ErrInconsistentState when that fails too.
//
// Policy: a crew always keeps at least one admin while it has members, and a crew
// whose last member leaves is deleted.
type CrewService struct {
	crewRepo repository.CrewRepository
	userRepo repository.UserRepository
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewCrewService creates a new CrewService
func NewCrewService(crewRepo repository.CrewRepository, userRepo repository.UserRepository, logger *slog.Logger) *CrewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrewService{
		crewRepo: crewRepo,
		userRepo: userRepo,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// GetCrew returns a crew with members and admins resolved to display-safe profiles
func (s *CrewService) GetCrew(ctx context.Context, crewID string) (*domain.CrewDetails, error) {
	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		return nil, storeErr(err)
	}

	users, err := s.userRepo.GetByIDs(ctx, crew.Members)
	if err != nil {
		return nil, storeErr(err)
	}

	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	details := &domain.CrewDetails{
		ID:           crew.ID,
		Name:         crew.Name,
		CreationDate: crew.CreationDate,
		Members:      summaries(crew.Members, byID),
		Admins:       summaries(crew.Admins, byID),
	}

	return details, nil
}

// CreateCrew creates a crew with the caller as sole member and admin and points the caller at it
func (s *CrewService) CreateCrew(ctx context.Context, callerID, name string) (*domain.Crew, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: crew name is required", domain.ErrInvalidInput)
	}

	caller, err := s.loadCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.HasCrew() {
		return nil, domain.ErrAlreadyInCrew
	}

	crew := domain.NewCrew(s.newID(), name, caller, s.now().UTC())
	if err := s.crewRepo.Create(ctx, crew); err != nil {
		return nil, storeErr(err)
	}

	matched, err := s.userRepo.SetCrewIfAbsent(ctx, caller.ID, crew.ID)
	if err != nil || !matched {
		undo := func(ctx context.Context) error {
			_, err := s.crewRepo.Delete(ctx, crew.ID)
			return err
		}
		return nil, s.compensate(ctx, "create", crew.ID, caller.ID, err, domain.ErrAlreadyInCrew, undo)
	}

	s.logger.Info("crew created", "crew_id", crew.ID, "user_id", caller.ID)
	return crew, nil
}

// AddMember adds an unaffiliated user to the crew. The directory write is conditioned on the
// target still having no crew, so of two crews racing for the same user only one wins.
func (s *CrewService) AddMember(ctx context.Context, callerID, crewID, targetUID string) error {
	req, err := s.prepare(ctx, callerID, crewID, targetUID)
	if err != nil {
		return err
	}
	target := req.target
	if target.HasCrew() {
		return domain.ErrAlreadyInCrew
	}

	matched, err := s.crewRepo.AddMember(ctx, crewID, target.ID)
	if err != nil {
		return storeErr(err)
	}
	if !matched {
		crew, err := s.reload(ctx, crewID)
		if err != nil {
			return err
		}
		if crew.IsMember(target.ID) {
			return domain.ErrAlreadyInCrew
		}
		return domain.ErrConcurrentUpdate
	}

	matched, err = s.userRepo.SetCrewIfAbsent(ctx, target.ID, crewID)
	if err != nil || !matched {
		undo := func(ctx context.Context) error {
			removed, err := s.crewRepo.RemoveMember(ctx, crewID, target.ID)
			if err != nil || removed {
				return err
			}
			return s.ensureNotMember(ctx, crewID, target.ID)
		}
		return s.compensate(ctx, "add", crewID, target.ID, err, domain.ErrAlreadyInCrew, undo)
	}

	s.logger.Info("crew member added", "crew_id", crewID, "user_id", target.ID)
	return nil
}

// PromoteMember grants admin status to an existing member. Only the crew is touched.
func (s *CrewService) PromoteMember(ctx context.Context, callerID, crewID, targetUID string) error {
	req, err := s.prepare(ctx, callerID, crewID, targetUID)
	if err != nil {
		return err
	}
	target := req.target

	matched, err := s.crewRepo.AddAdmin(ctx, crewID, target.ID)
	if err != nil {
		return storeErr(err)
	}
	if matched {
		return nil
	}

	crew, err := s.reload(ctx, crewID)
	if err != nil {
		return err
	}
	switch {
	case !crew.IsMember(target.ID):
		return domain.ErrNotCrewMember
	case crew.IsAdmin(target.ID):
		return domain.ErrAlreadyAdmin
	default:
		return domain.ErrConcurrentUpdate
	}
}

// DemoteAdmin revokes admin status. The sole admin cannot be demoted.
func (s *CrewService) DemoteAdmin(ctx context.Context, callerID, crewID, targetUID string) error {
	req, err := s.prepare(ctx, callerID, crewID, targetUID)
	if err != nil {
		return err
	}
	target := req.target

	matched, err := s.crewRepo.RemoveAdmin(ctx, crewID, target.ID)
	if err != nil {
		return storeErr(err)
	}
	if matched {
		return nil
	}

	crew, err := s.reload(ctx, crewID)
	if err != nil {
		return err
	}
	switch {
	case !crew.IsMember(target.ID):
		return domain.ErrNotCrewMember
	case !crew.IsAdmin(target.ID):
		return domain.ErrNotAdmin
	case crew.IsSoleAdmin(target.ID):
		return domain.ErrLastAdmin
	default:
		return domain.ErrConcurrentUpdate
	}
}

// RemoveMember strips a member (and any admin status) from the crew and clears their pointer.
// Removing oneself behaves exactly like LeaveCrew.
func (s *CrewService) RemoveMember(ctx context.Context, callerID, crewID, targetUID string) error {
	req, err := s.prepare(ctx, callerID, crewID, targetUID)
	if err != nil {
		return err
	}

	if req.target.ID == req.caller.ID {
		return s.leave(ctx, req.caller, req.crew)
	}
	if !req.crew.IsMember(req.target.ID) {
		return domain.ErrNotCrewMember
	}

	return s.removeAndPropagate(ctx, "remove", req.crew, req.target)
}

// LeaveCrew removes the caller from their crew
func (s *CrewService) LeaveCrew(ctx context.Context, callerID string) error {
	caller, err := s.loadCaller(ctx, callerID)
	if err != nil {
		return err
	}
	if !caller.HasCrew() {
		return domain.ErrNotInCrew
	}

	crew, err := s.crewRepo.GetByID(ctx, caller.CrewID)
	if errors.Is(err, domain.ErrCrewNotFound) {
		return s.clearDanglingPointer(ctx, caller)
	}
	if err != nil {
		return storeErr(err)
	}
	if !crew.IsMember(caller.ID) {
		return s.clearDanglingPointer(ctx, caller)
	}

	return s.leave(ctx, caller, crew)
}

func (s *CrewService) leave(ctx context.Context, caller *domain.User, crew *domain.Crew) error {
	if !crew.IsSoleMember(caller.ID) {
		if crew.IsSoleAdmin(caller.ID) {
			return domain.ErrLastAdmin
		}
		return s.removeAndPropagate(ctx, "leave", crew, caller)
	}

	matched, err := s.crewRepo.DeleteIfSoleMember(ctx, crew.ID, caller.ID)
	if err != nil {
		return storeErr(err)
	}
	if !matched {
		return domain.ErrConcurrentUpdate
	}

	cleared, err := s.userRepo.ClearCrew(ctx, caller.ID, crew.ID)
	if err != nil {
		undo := func(ctx context.Context) error {
			return s.crewRepo.Create(ctx, crew)
		}
		return s.compensate(ctx, "dissolve", crew.ID, caller.ID, err, nil, undo)
	}
	if !cleared {
		s.logger.Warn("crew pointer already cleared", "crew_id", crew.ID, "user_id", caller.ID)
	}

	s.logger.Info("crew dissolved", "crew_id", crew.ID, "user_id", caller.ID)
	return nil
}

func (s *CrewService) removeAndPropagate(ctx context.Context, op string, crew *domain.Crew, target *domain.User) error {
	wasAdmin := crew.IsAdmin(target.ID)

	matched, err := s.crewRepo.RemoveMember(ctx, crew.ID, target.ID)
	if err != nil {
		return storeErr(err)
	}
	if !matched {
		current, err := s.reload(ctx, crew.ID)
		if err != nil {
			return err
		}
		switch {
		case !current.IsMember(target.ID):
			return domain.ErrNotCrewMember
		case current.IsSoleAdmin(target.ID):
			return domain.ErrLastAdmin
		default:
			return domain.ErrConcurrentUpdate
		}
	}

	cleared, err := s.userRepo.ClearCrew(ctx, target.ID, crew.ID)
	if err != nil {
		undo := func(ctx context.Context) error {
			added, err := s.crewRepo.AddMember(ctx, crew.ID, target.ID)
			if err != nil {
				return err
			}
			promoted := true
			if wasAdmin {
				if promoted, err = s.crewRepo.AddAdmin(ctx, crew.ID, target.ID); err != nil {
					return err
				}
			}
			if added && promoted {
				return nil
			}
			return s.ensureMember(ctx, crew.ID, target.ID, wasAdmin)
		}
		return s.compensate(ctx, op, crew.ID, target.ID, err, nil, undo)
	}
	if !cleared {
		// The member entry was stale: the pointer already referenced another crew or nothing.
		s.logger.Warn("crew pointer did not reference crew", "op", op, "crew_id", crew.ID, "user_id", target.ID)
	}

	s.logger.Info("crew member removed", "op", op, "crew_id", crew.ID, "user_id", target.ID)
	return nil
}

// compensate undoes a matched crew update after the user directory write failed (propagateErr)
// or did not match (propagateErr == nil, reported as conflictErr).
func (s *CrewService) compensate(
	ctx context.Context,
	op, crewID, userID string,
	propagateErr, conflictErr error,
	undo func(ctx context.Context) error,
) error {
	// Compensation must run even if the request itself was cancelled.
	if undoErr := undo(context.WithoutCancel(ctx)); undoErr != nil {
		s.logger.Error("membership state inconsistent",
			"op", op,
			"crew_id", crewID,
			"user_id", userID,
			"propagation_error", propagateErr,
			"compensation_error", undoErr,
		)
		return fmt.Errorf("%w: %s crew=%s user=%s: %w",
			domain.ErrInconsistentState, op, crewID, userID, errors.Join(propagateErr, undoErr))
	}

	if propagateErr != nil {
		s.logger.Warn("directory propagation failed, crew update compensated",
			"op", op, "crew_id", crewID, "user_id", userID, "error", propagateErr)
		return storeErr(propagateErr)
	}
	return conflictErr
}

// membershipRequest is an authorized admin request against one crew
type membershipRequest struct {
	caller *domain.User
	crew   *domain.Crew
	target *domain.User
}

// prepare loads the caller, runs the admin guard against crewID and resolves the target.
// Nothing is mutated before the guard has passed.
func (s *CrewService) prepare(ctx context.Context, callerID, crewID, targetUID string) (*membershipRequest, error) {
	caller, err := s.loadCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	crew, err := s.authorize(ctx, caller, crewID)
	if err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetByUID(ctx, targetUID)
	if err != nil {
		return nil, storeErr(err)
	}
	return &membershipRequest{caller: caller, crew: crew, target: target}, nil
}

// authorize fails closed: any lookup failure is a denial
func (s *CrewService) authorize(ctx context.Context, caller *domain.User, crewID string) (*domain.Crew, error) {
	if !caller.HasCrew() || caller.CrewID != crewID {
		return nil, domain.ErrForbidden
	}

	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrForbidden, err)
	}
	if !domain.IsAdmin(caller, crew) {
		return nil, domain.ErrForbidden
	}
	return crew, nil
}

func (s *CrewService) loadCaller(ctx context.Context, callerID string) (*domain.User, error) {
	caller, err := s.userRepo.GetByID(ctx, callerID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: caller %s does not exist", domain.ErrUnauthorized, callerID)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return caller, nil
}

func (s *CrewService) reload(ctx context.Context, crewID string) (*domain.Crew, error) {
	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		return nil, storeErr(err)
	}
	return crew, nil
}

func (s *CrewService) ensureNotMember(ctx context.Context, crewID, userID string) error {
	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if errors.Is(err, domain.ErrCrewNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if crew.IsMember(userID) {
		return fmt.Errorf("user %s is still listed in crew %s", userID, crewID)
	}
	return nil
}

// ensureMember confirms that an unmatched re-add still left the user listed (and admin, if required)
func (s *CrewService) ensureMember(ctx context.Context, crewID, userID string, admin bool) error {
	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		return fmt.Errorf("restore user %s in crew %s: %w", userID, crewID, err)
	}
	if !crew.IsMember(userID) {
		return fmt.Errorf("user %s could not be restored in crew %s", userID, crewID)
	}
	if admin && !crew.IsAdmin(userID) {
		return fmt.Errorf("admin role of user %s could not be restored in crew %s", userID, crewID)
	}
	return nil
}

func (s *CrewService) clearDanglingPointer(ctx context.Context, caller *domain.User) error {
	if _, err := s.userRepo.ClearCrew(ctx, caller.ID, caller.CrewID); err != nil {
		return storeErr(err)
	}
	s.logger.Warn("cleared dangling crew pointer", "crew_id", caller.CrewID, "user_id", caller.ID)
	return nil
}

func summaries(ids []string, byID map[string]*domain.User) []domain.UserSummary {
	out := make([]domain.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out
}

// storeErr tags unexpected repository errors, leaving domain errors untouched
func storeErr(err error) error {
	if err == nil || domain.KindOf(err) != domain.KindStoreFailure {
		return err
	}
	if errors.Is(err, domain.ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
}
