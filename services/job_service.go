package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/store"
	"github.com/kendall-kelly/cleancans-api/utils"
	"gorm.io/datatypes"
)

// Photo list names accepted by AddPhotos
const (
	PhotoKindBefore = "before"
	PhotoKindAfter  = "after"
)

// transitions lists the statuses a technician may move a job to
var transitions = map[string][]string{
	models.JobStatusScheduled:  {models.JobStatusEnRoute, models.JobStatusInProgress, models.JobStatusCancelled},
	models.JobStatusEnRoute:    {models.JobStatusInProgress, models.JobStatusCancelled},
	models.JobStatusInProgress: {models.JobStatusCompleted, models.JobStatusCancelled},
}

// IsValidJobStatus reports whether status is a known job status
func IsValidJobStatus(status string) bool {
	switch status {
	case models.JobStatusScheduled, models.JobStatusEnRoute, models.JobStatusInProgress,
		models.JobStatusCompleted, models.JobStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a job may move from one status to another
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// JobUpdate carries an administrator's edits; nil fields are left unchanged
type JobUpdate struct {
	TechnicianID  *string `json:"technician_id"`
	Status        *string `json:"status"`
	Notes         *string `json:"notes"`
	ScheduledDate *string `json:"scheduled_date"`
}

// JobPhotos holds readable URLs for a job's photo lists
type JobPhotos struct {
	Before []string `json:"before"`
	After  []string `json:"after"`
}

// JobService runs the job lifecycle after booking
type JobService struct {
	store    *store.Store
	sms      *SMSService
	photos   PhotoStore
	outbox   Waker
	location *time.Location
	logger   *slog.Logger
}

// NewJobService creates a job service. photos and outbox may be nil.
func NewJobService(st *store.Store, sms *SMSService, photos PhotoStore, outbox Waker, loc *time.Location, logger *slog.Logger) *JobService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{store: st, sms: sms, photos: photos, outbox: outbox, location: loc, logger: logger}
}

// Get returns the job with id
func (s *JobService) Get(ctx context.Context, id string) (models.Job, error) {
	job, ok, err := store.Jobs(s.store).FindByID(ctx, id)
	if err != nil {
		return models.Job{}, err
	}
	if !ok {
		return models.Job{}, ErrJobNotFound
	}
	return job, nil
}

// GetFor returns the job with id if user may see it
func (s *JobService) GetFor(ctx context.Context, user models.User, id string) (models.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return models.Job{}, err
	}
	if user.Role != models.RoleCustomer {
		return job, nil
	}

	customer, ok, err := linkedCustomer(ctx, s.store, user.ID)
	if err != nil {
		return models.Job{}, err
	}
	if !ok || customer.ID != job.CustomerID {
		return models.Job{}, ErrForbidden
	}
	return job, nil
}

// ListFor returns the jobs user may see. Administrators see every job.
// Technicians see their own jobs plus unassigned open jobs, soonest first.
// Customers see their own jobs, newest booking first.
func (s *JobService) ListFor(ctx context.Context, user models.User) ([]models.Job, error) {
	switch user.Role {
	case models.RoleAdmin:
		return store.Jobs(s.store).All(ctx)
	case models.RoleTechnician:
		jobs, err := store.Jobs(s.store).FindBy(ctx, func(j models.Job) bool {
			if j.TechnicianID != nil {
				return *j.TechnicianID == user.ID
			}
			return !j.IsTerminal()
		})
		if err != nil {
			return nil, err
		}
		sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].ScheduledDate < jobs[k].ScheduledDate })
		return jobs, nil
	default:
		customer, ok, err := linkedCustomer(ctx, s.store, user.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []models.Job{}, nil
		}
		jobs, err := store.Jobs(s.store).Where(ctx, map[string]interface{}{"customer_id": customer.ID})
		if err != nil {
			return nil, err
		}
		for i, k := 0, len(jobs)-1; i < k; i, k = i+1, k-1 {
			jobs[i], jobs[k] = jobs[k], jobs[i]
		}
		return jobs, nil
	}
}

// Assign sets the technician of a job. Technicians may only assign
// themselves; administrators may assign any technician, or clear the
// assignment with an empty technicianID.
func (s *JobService) Assign(ctx context.Context, actor models.User, jobID, technicianID string) (models.Job, error) {
	if actor.Role == models.RoleTechnician {
		if technicianID != "" && technicianID != actor.ID {
			return models.Job{}, ErrForbidden
		}
		technicianID = actor.ID
	}

	var job models.Job
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, ok, err := store.Jobs(tx).FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrJobNotFound
		}
		if current.IsTerminal() {
			return fmt.Errorf("%w: job is %s", ErrInvalidTransition, current.Status)
		}
		if actor.Role == models.RoleTechnician && current.TechnicianID != nil && *current.TechnicianID != actor.ID {
			return ErrForbidden
		}

		var value interface{}
		if technicianID != "" {
			if err := requireTechnician(ctx, tx, technicianID); err != nil {
				return err
			}
			value = technicianID
		}
		job, _, err = store.Jobs(tx).Update(ctx, jobID, map[string]interface{}{"technician_id": value})
		return err
	})
	return job, err
}

// UpdateStatus moves a job along its lifecycle and queues the matching
// customer text. Setting the current status again only records techNotes.
// A technician working an unassigned job takes it over.
func (s *JobService) UpdateStatus(ctx context.Context, actor models.User, jobID, status, techNotes string) (models.Job, error) {
	if !IsValidJobStatus(status) {
		return models.Job{}, ErrInvalidStatus
	}

	var job models.Job
	notified := false
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, ok, err := store.Jobs(tx).FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrJobNotFound
		}

		fields := map[string]interface{}{}
		if techNotes != "" {
			fields["tech_notes"] = techNotes
		}
		if actor.Role == models.RoleTechnician {
			if current.TechnicianID != nil && *current.TechnicianID != actor.ID {
				return ErrForbidden
			}
			if current.TechnicianID == nil {
				fields["technician_id"] = actor.ID
			}
		}

		changed := status != current.Status
		if changed {
			if !CanTransition(current.Status, status) {
				return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
			}
			fields["status"] = status
			if status == models.JobStatusCompleted {
				completed := s.store.Now().UTC()
				fields["completed"] = &completed
			}
		}

		job, _, err = store.Jobs(tx).Update(ctx, jobID, fields)
		if err != nil || !changed || status == models.JobStatusCancelled {
			return err
		}

		customer, ok, err := store.Customers(tx).FindByID(ctx, job.CustomerID)
		if err != nil || !ok || customer.Phone == "" || s.sms == nil {
			return err
		}
		category := models.NotificationStatusUpdate
		if status == models.JobStatusCompleted {
			category = models.NotificationCompletion
		}
		if _, err := s.sms.Enqueue(ctx, tx, job.ID, category, customer.Phone, s.sms.StatusUpdateMessage(customer.Name, status)); err != nil {
			return err
		}
		notified = true
		return nil
	})
	if err != nil {
		return models.Job{}, err
	}

	if notified && s.outbox != nil {
		s.outbox.Notify()
	}
	return job, nil
}

// AddPhotos appends photo references to the before or after list of a job
func (s *JobService) AddPhotos(ctx context.Context, actor models.User, jobID, kind string, refs []string) (models.Job, error) {
	column := ""
	switch kind {
	case PhotoKindBefore:
		column = "before_photos"
	case PhotoKindAfter:
		column = "after_photos"
	default:
		return models.Job{}, ErrInvalidPhotoKind
	}

	cleaned := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if err := utils.ValidatePhotoRef(ref); err != nil {
			return models.Job{}, err
		}
		cleaned = append(cleaned, ref)
	}

	var job models.Job
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, ok, err := store.Jobs(tx).FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrJobNotFound
		}
		if actor.Role == models.RoleTechnician && current.TechnicianID != nil && *current.TechnicianID != actor.ID {
			return ErrForbidden
		}

		existing := current.BeforePhotos
		if kind == PhotoKindAfter {
			existing = current.AfterPhotos
		}
		merged := make(datatypes.JSONSlice[string], 0, len(existing)+len(cleaned))
		merged = append(merged, existing...)
		merged = append(merged, cleaned...)
		if len(merged) > utils.MaxPhotosPerJob {
			return fmt.Errorf("%w: at most %d %s photos", ErrTooManyPhotos, utils.MaxPhotosPerJob, kind)
		}

		job, _, err = store.Jobs(tx).Update(ctx, jobID, map[string]interface{}{column: merged})
		return err
	})
	return job, err
}

// Update applies an administrator's edits. Administrators may set any
// status; no customer text is sent for these corrections.
func (s *JobService) Update(ctx context.Context, jobID string, in JobUpdate) (models.Job, error) {
	fields := map[string]interface{}{}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.ScheduledDate != nil {
		date, err := models.ParseDate(*in.ScheduledDate, s.location)
		if err != nil {
			return models.Job{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		fields["scheduled_date"] = models.FormatDate(date)
	}
	if in.Status != nil {
		if !IsValidJobStatus(*in.Status) {
			return models.Job{}, ErrInvalidStatus
		}
		fields["status"] = *in.Status
	}

	var job models.Job
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, ok, err := store.Jobs(tx).FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrJobNotFound
		}

		if in.TechnicianID != nil {
			if *in.TechnicianID == "" {
				fields["technician_id"] = nil
			} else {
				if err := requireTechnician(ctx, tx, *in.TechnicianID); err != nil {
					return err
				}
				fields["technician_id"] = *in.TechnicianID
			}
		}
		if in.Status != nil && *in.Status == models.JobStatusCompleted && current.Completed == nil {
			completed := s.store.Now().UTC()
			fields["completed"] = &completed
		}

		job, _, err = store.Jobs(tx).Update(ctx, jobID, fields)
		return err
	})
	return job, err
}

// Delete removes a job together with its pending notifications and the
// stored objects behind its photo keys. Object removal failures are logged.
func (s *JobService) Delete(ctx context.Context, jobID string) error {
	var job models.Job
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, ok, err := store.Jobs(tx).FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrJobNotFound
		}
		job = current

		pending, err := store.Notifications(tx).Where(ctx, map[string]interface{}{
			"job_id": jobID,
			"status": models.NotificationPending,
		})
		if err != nil {
			return err
		}
		for _, n := range pending {
			if _, err := store.Notifications(tx).Delete(ctx, n.ID); err != nil {
				return err
			}
		}

		_, err = store.Jobs(tx).Delete(ctx, jobID)
		return err
	})
	if err != nil {
		return err
	}

	if s.photos == nil {
		return nil
	}
	for _, ref := range append(append([]string{}, job.BeforePhotos...), job.AfterPhotos...) {
		if utils.IsPhotoURL(ref) {
			continue
		}
		if err := s.photos.Delete(ctx, ref); err != nil {
			s.logger.WarnContext(ctx, "failed to delete job photo", "job_id", jobID, "key", ref, "error", err)
		}
	}
	return nil
}

// PhotoURLs resolves the photo references of job to readable URLs. Object
// keys are presigned; absolute URLs are returned as they are.
func (s *JobService) PhotoURLs(ctx context.Context, job models.Job) (JobPhotos, error) {
	before, err := s.resolve(ctx, job.BeforePhotos)
	if err != nil {
		return JobPhotos{}, err
	}
	after, err := s.resolve(ctx, job.AfterPhotos)
	if err != nil {
		return JobPhotos{}, err
	}
	return JobPhotos{Before: before, After: after}, nil
}

func (s *JobService) resolve(ctx context.Context, refs []string) ([]string, error) {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if utils.IsPhotoURL(ref) || s.photos == nil {
			urls = append(urls, ref)
			continue
		}
		u, err := s.photos.PresignURL(ctx, ref)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func requireTechnician(ctx context.Context, st *store.Store, userID string) error {
	tech, ok, err := store.Users(st).FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	if tech.Role != models.RoleTechnician {
		return ErrNotTechnician
	}
	return nil
}

// linkedCustomer finds the customer profile of a user without creating one
func linkedCustomer(ctx context.Context, st *store.Store, userID string) (models.Customer, bool, error) {
	customers, err := store.Customers(st).Where(ctx, map[string]interface{}{"user_id": userID})
	if err != nil || len(customers) == 0 {
		return models.Customer{}, false, err
	}
	return customers[0], true, nil
}
