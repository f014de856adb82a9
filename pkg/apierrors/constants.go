package apierrors

const (
	MsgFailListTask       = "errorListTask"
	MsgFailGetTask        = "failGetTask"
	MsgFailCreateTask     = "failCreateTask"
	MsgFailUpdateTask     = "failUpdateTask"
	MsgFailDeleteTask     = "failDeleteTask"
	MsgFailUpdateStatus   = "failUpdateTaskStatus"
	MsgFailTaskStats      = "failTaskStats"
	MsgInvalidTaskPayload = "invalidTaskPayload"
	MsgInvalidQuery       = "invalidQuery"
	MsgTaskNotFound       = "taskNotFound"
	MsgUnauthorized       = "unauthorized"
	MsgTokenExpired       = "tokenExpired"
)

// Field rule messages are looked up as MsgValidationPrefix + rule.
const MsgValidationPrefix = "validation_"

// Success messages share the bundle with error messages.
const (
	MsgTaskCreated       = "taskCreated"
	MsgTaskUpdated       = "taskUpdated"
	MsgTaskDeleted       = "taskDeleted"
	MsgTaskStatusUpdated = "taskStatusUpdated"
)
