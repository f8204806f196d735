package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/sitesearch/internal/db"
)

// ReplaceHashes deletes del and stores items in one MULTI/EXEC transaction,
// so readers see either the previous or the new set of hashes.
// On a cluster all keys must hash to one slot.
func (s *Store) ReplaceHashes(ctx context.Context, del []string, items []db.HashSetItem) error {
	if len(del) == 0 && len(items) == 0 {
		return nil
	}

	// ops/keys describe each queued command for error context.
	cmds := make([]rueidis.Completed, 0, len(items)+3)
	ops := make([]string, 0, len(items)+1)
	keys := make([]string, 0, len(items)+1)

	cmds = append(cmds, s.b().Multi().Build())
	if len(del) > 0 {
		cmds = append(cmds, s.b().Del().Key(del...).Build())
		ops = append(ops, db.OpDel)
		keys = append(keys, del[0])
	}
	for _, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds = append(cmds, cmd.Build())
		ops = append(ops, db.OpHSet)
		keys = append(keys, item.Key)
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return wrap(db.OpExec, "", err)
	}
	for i, r := range replies {
		if err := r.Error(); err != nil && i < len(ops) {
			return wrap(ops[i], keys[i], err)
		}
	}
	return nil
}

// HGetAllMulti fetches all fields for multiple hashes in a single DoMulti round-trip.
// Results are positional: out[i] belongs to keys[i].
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))

	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, wrap(db.OpHGetAll, keys[i], err)
		}
		out[i] = m
	}

	return out, nil
}

// Scan iterates keys matching a pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, wrap(db.OpScan, pattern, err)
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
