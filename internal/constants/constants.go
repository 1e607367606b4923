package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
	ContextKeyTask   = "task"
)

// Auth
const (
	MinPasswordLength = 6
	// bcrypt refuses longer input
	MaxPasswordBytes  = 72
	MaxNameLength     = 50
	MaxBioLength      = 500
	MaxAvatarLength   = 500
	BearerScheme      = "Bearer"
)

// Task field limits
const (
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxTagCount          = 20
	MaxTagLength         = 30
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AI
const (
	MaxAIGeneratedTasks = 20
	MaxAIInputLength    = 5000
)
