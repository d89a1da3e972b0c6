package domain

import "strings"

// Stack identifies which side of the application emitted a log event
type Stack string

const (
	StackFrontend Stack = "frontend"
	StackBackend  Stack = "backend"
)

// Level is the severity of a log event
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Category is the package tag attached to a log event
type Category string

// Backend-only categories
const (
	CategoryCache      Category = "cache"
	CategoryController Category = "controller"
	CategoryCronJob    Category = "cron_job"
	CategoryDB         Category = "db"
	CategoryDomain     Category = "domain"
	CategoryHandler    Category = "handler"
	CategoryRepository Category = "repository"
	CategoryRoute      Category = "route"
	CategoryService    Category = "service"
)

// Frontend-only categories
const (
	CategoryComponent Category = "component"
	CategoryHook      Category = "hook"
	CategoryPage      Category = "page"
	CategoryState     Category = "state"
	CategoryStyle     Category = "style"
)

// Categories valid on both stacks
const (
	CategoryAuth       Category = "auth"
	CategoryConfig     Category = "config"
	CategoryMiddleware Category = "middleware"
	CategoryUtils      Category = "utils"
)

var (
	validLevels = map[Level]bool{
		LevelDebug: true, LevelInfo: true, LevelWarn: true, LevelError: true, LevelFatal: true,
	}
	sharedCategories = []Category{CategoryAuth, CategoryConfig, CategoryMiddleware, CategoryUtils}
	stackCategories  = map[Stack][]Category{
		StackBackend: {
			CategoryCache, CategoryController, CategoryCronJob, CategoryDB, CategoryDomain,
			CategoryHandler, CategoryRepository, CategoryRoute, CategoryService,
		},
		StackFrontend: {
			CategoryComponent, CategoryHook, CategoryPage, CategoryState, CategoryStyle,
		},
	}
)

// LogEvent is one structured message for the telemetry collaborator
type LogEvent struct {
	Stack    Stack    `json:"stack"`
	Level    Level    `json:"level"`
	Category Category `json:"package"`
	Message  string   `json:"message"`
}

// Valid reports whether the event satisfies the sink's parameter rules:
// a known stack, a known level, a category allowed on that stack and a non-empty message.
func (e LogEvent) Valid() bool {
	allowed, ok := stackCategories[e.Stack]
	if !ok || !validLevels[e.Level] || strings.TrimSpace(e.Message) == "" {
		return false
	}
	for _, c := range sharedCategories {
		if c == e.Category {
			return true
		}
	}
	for _, c := range allowed {
		if c == e.Category {
			return true
		}
	}
	return false
}
