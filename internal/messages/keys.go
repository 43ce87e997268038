package messages

// Ключи сообщений для пользователя
const (
	Welcome          = "welcome"
	InvalidInput     = "invalid-input"
	ErrorGeneric     = "error-generic"
	ThankYou         = "thank-you"
	DMFailed         = "dm-failed"
	SavedNotNotified = "saved-not-notified"
	ReasonTooShort   = "reason-too-short"
	ReasonTooLong    = "reason-too-long"
	MessageEmpty     = "message-empty"
	MessageTooLong   = "message-too-long"
	MsgAdded         = "msg-added"
	ErrorAddingMsg   = "error-adding-msg"
	NoOpenRequest    = "no-open-request"

	ApprovedUser      = "approved-user"
	ApprovedUserIntro = "approved-user-intro"
	DeclinedUser      = "declined-user"
)

// Ключи ответов администратору
const (
	RequestProcessed      = "request-processed"
	RequestNotFound       = "request-not-found"
	NotAuthorized         = "not-authorized"
	ActionSuccessApproved = "action-success-approved"
	ActionSuccessDeclined = "action-success-declined"
	AlreadyApproved       = "already-approved"
	AlreadyDeclined       = "already-declined"
	ErrorApproving        = "error-approving"
	ErrorDeclining        = "error-declining"
	InvalidCallback       = "invalid-callback"
	UnknownAction         = "unknown-action"
	InvalidRequestID      = "invalid-request-id"
	CallbackError         = "callback-error"
	ErrorAlert            = "error-alert"
)

// Ключи карточки заявки
const (
	CardTitle      = "card-title"
	CardUser       = "card-user"
	CardID         = "card-id"
	CardTime       = "card-time"
	CardReason     = "card-reason"
	CardApproved   = "card-approved"
	CardDeclined   = "card-declined"
	CardDecidedBy  = "card-decided-by"
	ButtonApprove  = "button-approve"
	ButtonDecline  = "button-decline"
	UnknownAdmin   = "unknown-admin"
	DefaultDisplay = "default-display-name"
)

// Ключи админ-панели
const (
	AdminDashboard    = "admin-dashboard"
	ButtonPending     = "button-pending"
	ButtonCompleted   = "button-completed"
	PendingTitle      = "pending-title"
	CompletedTitle    = "completed-title"
	NoRequests        = "no-requests"
	FetchingPending   = "fetching-pending"
	FetchingCompleted = "fetching-completed"
	CleanupTitle      = "cleanup-title"
	CleanupPrompt     = "cleanup-prompt"
	CleanupEmpty      = "cleanup-empty"
	CleanupNothing    = "cleanup-nothing"
	CleanupMarked     = "cleanup-marked"
	PrivateOnlyHint   = "private-only-hint"
)

// Описания команд в меню бота
const (
	CommandStart     = "command-start"
	CommandAdmin     = "command-admin"
	CommandPending   = "command-pending"
	CommandCompleted = "command-completed"
	CommandCleanup   = "command-cleanup"
)

// Подписи относительного времени
const (
	RelTimeAgo     = "reltime-ago"
	RelTimeFromNow = "reltime-from-now"
)
