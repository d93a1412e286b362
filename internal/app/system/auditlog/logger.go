// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/quickclass/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
// Each value is "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only) or "off".
type Config struct {
	// Auth covers login, logout and rejected API tokens.
	Auth string
	// Content covers class list saves/imports and block changes.
	Content string
}

// Uniform applies one setting to every category.
func Uniform(setting string) Config {
	return Config{Auth: setting, Content: setting}
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// Actor identifies who performed an action. It travels in the request
// context so code below the handlers can attribute events.
type Actor struct {
	ID        string // user ObjectID hex; empty for API token callers
	Name      string
	IP        string
	UserAgent string
}

type actorKey struct{}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by WithActor, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// ActorFromRequest fills IP and user agent from r.
func ActorFromRequest(r *http.Request, id, name string) Actor {
	return Actor{ID: id, Name: name, IP: getClientIP(r), UserAgent: r.UserAgent()}
}

func (a Actor) objectID() *primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		return nil
	}
	return &oid
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryClasses, audit.CategoryBlocks:
		setting = l.config.Content
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) logActor(ctx context.Context, category, eventType string, success bool, reason string, details map[string]string) {
	a, _ := ActorFrom(ctx)
	if details == nil {
		details = map[string]string{}
	}
	if a.Name != "" {
		details["actor_name"] = a.Name
	}
	l.Log(ctx, audit.Event{
		Category:      category,
		EventType:     eventType,
		ActorID:       a.objectID(),
		IP:            a.IP,
		UserAgent:     a.UserAgent,
		Success:       success,
		FailureReason: reason,
		Details:       details,
	})
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"login_id": loginID},
	})
}

// LoginFailed logs a failed login. userID is nil when no user matched.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType string, userID *primitive.ObjectID, loginID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		ActorID:       userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: eventType,
		Details:       map[string]string{"login_id": loginID},
	})
}

// Logout logs a logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var uid *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		uid = &oid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		ActorID:   uid,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Class list Events ---

// ClassesSaved logs a class list save.
func (l *Logger) ClassesSaved(ctx context.Context, count int) {
	l.logActor(ctx, audit.CategoryClasses, audit.EventClassesSaved, true, "", map[string]string{
		"count": strconv.Itoa(count),
	})
}

// ClassesSaveFailed logs a save the server could not complete.
func (l *Logger) ClassesSaveFailed(ctx context.Context, reason string) {
	l.logActor(ctx, audit.CategoryClasses, audit.EventClassesSaved, false, reason, nil)
}

// ClassesImported logs a bulk import.
func (l *Logger) ClassesImported(ctx context.Context, mode string, imported, skipped, total int) {
	l.logActor(ctx, audit.CategoryClasses, audit.EventClassesImported, true, "", map[string]string{
		"mode":     mode,
		"imported": strconv.Itoa(imported),
		"skipped":  strconv.Itoa(skipped),
		"total":    strconv.Itoa(total),
	})
}

// --- Block Events ---

// BlockCreated logs a new content block.
func (l *Logger) BlockCreated(ctx context.Context, blockID primitive.ObjectID, title string) {
	l.logActor(ctx, audit.CategoryBlocks, audit.EventBlockCreated, true, "", map[string]string{
		"block_id": blockID.Hex(),
		"title":    title,
	})
}

// BlockClassesSet logs a change to a block's class attribute.
func (l *Logger) BlockClassesSet(ctx context.Context, blockID primitive.ObjectID, classString string) {
	l.logActor(ctx, audit.CategoryBlocks, audit.EventBlockClassesSet, true, "", map[string]string{
		"block_id":   blockID.Hex(),
		"class_name": classString,
	})
}
