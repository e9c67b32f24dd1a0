package authkit

import (
	"context"
	"sort"
	"sync"

	"github.com/fernandezvara/dbkit"
	"github.com/rs/zerolog"
)

// Service provides item, rule, hierarchy, and assignment management plus
// recursive access checking. It integrates with the database through dbkit
// with enhanced error handling.
//
// Error Handling:
// All database operations use dbkit's chainable error wrapping to provide
// detailed context about failed operations. Domain invariant violations are
// reported through the authkit sentinel errors.
//
// Example error handling:
//
//	err := service.AddChild(ctx, "admin", "editor")
//	if err != nil {
//	    if authkit.IsCycleDetected(err) {
//	        // The edge would close a loop in the hierarchy
//	    }
//	    if authkit.IsInvalidArgument(err) {
//	        // Self-edge or permission-parents-role attempt
//	    }
//	}
type Service struct {
	db        dbkit.IDB
	evaluator RuleEvaluator
	config    Config
	logger    zerolog.Logger

	defaultRoles map[string]struct{}
	locks        *nameLocks
	txMonitor    *transactionMonitor
}

// New creates a new AuthKit service. A nil evaluator falls back to the
// shipped ExprEvaluator.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := authkit.New(db, authkit.NewExprEvaluator(), authkit.Config{
//	    DefaultRoles: []string{"guest"},
//	})
func New(db dbkit.IDB, evaluator RuleEvaluator, cfg Config) *Service {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	defaults := make(map[string]struct{}, len(cfg.DefaultRoles))
	for _, name := range cfg.DefaultRoles {
		defaults[name] = struct{}{}
	}

	return &Service{
		db:           db,
		evaluator:    evaluator,
		config:       cfg,
		logger:       logger,
		defaultRoles: defaults,
		locks:        newNameLocks(),
		txMonitor:    newTransactionMonitor(),
	}
}

// Config returns the configuration the service was created with.
func (s *Service) Config() Config {
	return s.config
}

// Evaluator returns the rule evaluator in use.
func (s *Service) Evaluator() RuleEvaluator {
	return s.evaluator
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AuthAuditLog, error) {
	var logs []AuthAuditLog
	q := s.idb(ctx).NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.TargetUserID != "" {
		q = q.Where("target_user_id = ?", filter.TargetUserID)
	}
	if filter.ItemName != "" {
		q = q.Where("item_name = ?", filter.ItemName)
	}
	if filter.RuleName != "" {
		q = q.Where("rule_name = ?", filter.RuleName)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err()
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// ============================================================================
// PER-NAME MUTATION LOCKS
// ============================================================================

// nameLocks serializes mutating operations per item name. Two concurrent
// cycle-checking AddChild calls on overlapping subgraphs, or a rename racing
// with a dependent cascade, could otherwise corrupt the DAG invariant.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	mu   sync.Mutex
	refs int
}

func newNameLocks() *nameLocks {
	return &nameLocks{locks: make(map[string]*nameLock)}
}

// lock acquires the mutex for every given name in sorted order, so callers
// holding overlapping name sets never deadlock. Returns the unlock func.
func (nl *nameLocks) lock(names ...string) func() {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	sort.Strings(unique)

	acquired := make([]*nameLock, 0, len(unique))
	for _, name := range unique {
		nl.mu.Lock()
		l, ok := nl.locks[name]
		if !ok {
			l = &nameLock{}
			nl.locks[name] = l
		}
		l.refs++
		nl.mu.Unlock()

		l.mu.Lock()
		acquired = append(acquired, l)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].mu.Unlock()
		}
		nl.mu.Lock()
		for _, name := range unique {
			if l, ok := nl.locks[name]; ok {
				l.refs--
				if l.refs == 0 {
					delete(nl.locks, name)
				}
			}
		}
		nl.mu.Unlock()
	}
}
