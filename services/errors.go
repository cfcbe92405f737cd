package services

import "errors"

var (
	// ErrInvalidFrequency is returned for a plan frequency other than weekly, biweekly or monthly
	ErrInvalidFrequency = errors.New("invalid plan frequency")
	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD format
	ErrInvalidDate = errors.New("invalid date")

	ErrUserNotFound     = errors.New("user not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrJobNotFound      = errors.New("job not found")
	ErrPlanNotFound     = errors.New("recurring plan not found")

	// ErrServiceInactive is returned when booking a service that is not offered
	ErrServiceInactive = errors.New("service is not active")
	// ErrCustomerHasJobs is returned when deleting a customer that jobs still reference
	ErrCustomerHasJobs = errors.New("customer has existing jobs")
	// ErrInvalidTransition is returned for a job status change that is not allowed
	ErrInvalidTransition = errors.New("invalid job status transition")
	// ErrInvalidStatus is returned for an unknown job status
	ErrInvalidStatus = errors.New("invalid job status")
	// ErrNotTechnician is returned when assigning a job to a user that is not a technician
	ErrNotTechnician = errors.New("user is not a technician")
)

var (
	// ErrForbidden is returned when a user acts on a record they do not own
	ErrForbidden = errors.New("not allowed to access this resource")
	// ErrInvalidPhotoKind is returned for a photo list other than before or after
	ErrInvalidPhotoKind = errors.New("photo kind must be before or after")
	// ErrTooManyPhotos is returned when a photo list would exceed its cap
	ErrTooManyPhotos = errors.New("too many photos")
	// ErrIdentityProvider is returned when the Auth0 profile cannot be fetched
	ErrIdentityProvider = errors.New("identity provider request failed")
	// ErrUserExists is returned when registering an Auth0 identity twice
	ErrUserExists = errors.New("user already exists")
)
