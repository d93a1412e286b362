package gateway

import (
	"context"
	"errors"
	"sync"

	classsetstore "github.com/dalemusser/quickclass/internal/app/store/classsets"
	"github.com/dalemusser/quickclass/internal/app/system/auditlog"
	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/app/system/importfmt"
	"github.com/dalemusser/quickclass/internal/app/system/normalize"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Local is the in-process gateway. It re-canonicalizes everything it is
// given before writing, so it is the final authority on the stored list.
type Local struct {
	sets    *classsetstore.Store
	audit   *auditlog.Logger
	log     *zap.Logger
	setName string

	// serializes read-modify-write imports against saves
	mu sync.Mutex
}

// NewLocal creates a gateway over the default class set in db.
func NewLocal(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Local {
	return &Local{
		sets:    classsetstore.New(db),
		audit:   audit,
		log:     logger,
		setName: models.DefaultClassSet,
	}
}

// LoadInitial returns the stored list.
func (g *Local) LoadInitial(ctx context.Context) ([]models.ClassEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	entries, err := g.sets.Entries(ctx, g.setName)
	if err != nil {
		g.log.Error("load class list", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// Save canonicalizes candidate, stores it as the whole list and returns
// what was stored.
func (g *Local) Save(ctx context.Context, candidate []models.ClassEntry) ([]models.ClassEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	canonical := normalize.Entries(candidate)
	stored, err := g.replace(ctx, canonical)
	if err != nil {
		g.log.Error("save class list", zap.Error(err), zap.Int("count", len(canonical)))
		g.audit.ClassesSaveFailed(ctx, err.Error())
		return nil, err
	}
	g.audit.ClassesSaved(ctx, len(stored))
	return stored, nil
}

// BatchImport parses raw, appends to or replaces the stored list and
// returns the new canonical list with a summary message.
func (g *Local) BatchImport(ctx context.Context, raw string, mode classstore.ImportMode) (classstore.ImportResult, error) {
	res, err := importfmt.Parse(raw)
	if err != nil {
		if errors.Is(err, importfmt.ErrTooManyRows) || errors.Is(err, importfmt.ErrTooLarge) {
			return classstore.ImportResult{}, reject(err.Error())
		}
		return classstore.ImportResult{}, err
	}
	if len(res.Entries) == 0 {
		return classstore.ImportResult{}, reject(res.Message())
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var merged []models.ClassEntry
	if mode == classstore.ImportReplace {
		merged = res.Entries
	} else {
		current, err := g.LoadInitial(ctx)
		if err != nil {
			return classstore.ImportResult{}, err
		}
		merged = append(current, res.Entries...)
	}

	stored, err := g.replace(ctx, normalize.Entries(merged))
	if err != nil {
		g.log.Error("import class list", zap.Error(err), zap.String("mode", string(mode)))
		return classstore.ImportResult{}, err
	}

	g.audit.ClassesImported(ctx, string(mode), len(res.Entries), res.Skipped(), len(stored))
	return classstore.ImportResult{Message: res.Message(), Classes: stored, Skipped: res.Errors}, nil
}

func (g *Local) replace(ctx context.Context, entries []models.ClassEntry) ([]models.ClassEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	actor, _ := auditlog.ActorFrom(ctx)
	set, err := g.sets.Replace(ctx, g.setName, entries, actor.Name)
	if err != nil {
		return nil, err
	}
	return set.Entries, nil
}
