package authkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

func whereName(name string) func(q *bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("name = ?", name)
	}
}

// audit writes a best-effort audit log entry. Actor and request metadata are
// taken from the context; a failed write never fails the mutation itself.
func (s *Service) audit(ctx context.Context, entry *AuditEntry) {
	ac := GetAuditContext(ctx)
	entry.ActorID = ac.ActorID
	entry.IPAddress = ac.IPAddress
	entry.UserAgent = ac.UserAgent
	entry.RequestID = ac.RequestID

	_, err := s.idb(ctx).NewInsert().Model(entry.ToModel()).Exec(ctx)
	if err = dbkit.WithErr1(err, "LogAudit").Err(); err != nil {
		s.logger.Warn().Err(err).Str("action", string(entry.Action)).Msg("audit log write failed")
	}
}

// getItemsByNames batch-loads full item records for a set of names.
// itemType narrows the result to one type; pass 0 for both types.
func (s *Service) getItemsByNames(ctx context.Context, names []string, itemType ItemType) (map[string]*Item, error) {
	if len(names) == 0 {
		return map[string]*Item{}, nil
	}

	var items []Item
	q := s.idb(ctx).NewSelect().Model(&items).Where("name IN (?)", bun.In(names))
	if itemType != 0 {
		q = q.Where("type = ?", itemType)
	}
	err := dbkit.WithErr1(q.Scan(ctx), "GetItemsByNames").Err()
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Item, len(items))
	for i := range items {
		result[items[i].Name] = &items[i]
	}
	return result, nil
}

// getRulesByNames batch-loads rule records for a set of names.
func (s *Service) getRulesByNames(ctx context.Context, names []string) (map[string]*Rule, error) {
	if len(names) == 0 {
		return map[string]*Rule{}, nil
	}

	var rules []Rule
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&rules).Where("name IN (?)", bun.In(names)).Scan(ctx), "GetRulesByNames").Err()
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Rule, len(rules))
	for i := range rules {
		result[rules[i].Name] = &rules[i]
	}
	return result, nil
}

// loadEdges fetches the complete edge set in one query.
func (s *Service) loadEdges(ctx context.Context) ([]ItemChild, error) {
	var edges []ItemChild
	err := dbkit.WithErr1(s.idb(ctx).NewSelect().Model(&edges).Scan(ctx), "LoadEdges").Err()
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// parentsByChild projects the edge set into a child -> parents adjacency map.
func (s *Service) parentsByChild(ctx context.Context) (map[string][]string, error) {
	edges, err := s.loadEdges(ctx)
	if err != nil {
		return nil, err
	}

	parents := make(map[string][]string)
	for _, edge := range edges {
		parents[edge.Child] = append(parents[edge.Child], edge.Parent)
	}
	return parents, nil
}
