package errs

import (
	"errors"
)

var (
	ErrInvalidParam   = errors.New("[educafric] invalid param")
	ErrInvalidChannel = errors.New("[educafric] invalid channel")

	ErrTemplateNotFound             = errors.New("[educafric] template not found")
	ErrTemplateLanguageNotSupported = errors.New("[educafric] template language not supported")
	ErrTemplateDataMissing          = errors.New("[educafric] template data missing")

	ErrMissingContact           = errors.New("[educafric] recipient missing contact")
	ErrSendTimeout              = errors.New("[educafric] send notification timeout")
	ErrProviderFailure          = errors.New("[educafric] provider reported failure")
	ErrNoAvailableProvider      = errors.New("[educafric] no available provider")
	ErrFailedToSendNotification = errors.New("[educafric] failed to send notification")

	ErrUserNotFound      = errors.New("[educafric] user not found")
	ErrStudentNotFound   = errors.New("[educafric] student not found")
	ErrSchoolNotFound    = errors.New("[educafric] school not found")
	ErrGuardianNotFound  = errors.New("[educafric] guardian not found")
	ErrNoValidRecipients = errors.New("[educafric] no valid recipients found")
	ErrDuplicateAlert    = errors.New("[educafric] alert already sent")

	ErrRecipientCacheKeyNotFound      = errors.New("[educafric] recipient cache key not found")
	ErrFailedToCreateCommunicationLog = errors.New("[educafric] failed to create communication log")
)
