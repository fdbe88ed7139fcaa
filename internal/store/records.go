package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/archlint/core/internal/engine"
	"github.com/archlint/core/internal/models"
)

var ErrNotFound = errors.New("record not found")

const (
	recordPrefix = "dfr/"
	timePrefix   = "idx/created/"

	recentLimit     = 5
	ruleScanLimit   = 50
	ruleFreqLimit   = 5
	shortHashLength = 8
)

// Record is a stored validation result.
type Record struct {
	ID            string             `json:"id"`
	PlanHash      string             `json:"plan_hash"`
	EngineVersion string             `json:"engine_version"`
	SchemaVersion string             `json:"schema_version"`
	CanonicalPlan string             `json:"canonical_plan"`
	Violations    []models.Violation `json:"violations"`
	Passed        bool               `json:"passed"`
	CreatedAt     time.Time          `json:"created_at"`
}

// DFR rebuilds the report a record was stored from.
func (r *Record) DFR() *models.DFR {
	violations := r.Violations
	if violations == nil {
		violations = []models.Violation{}
	}
	return &models.DFR{
		PlanHash:      r.PlanHash,
		EngineVersion: r.EngineVersion,
		Passed:        r.Passed,
		Violations:    violations,
		Timestamp:     r.CreatedAt,
	}
}

func recordKey(planHash, engineVersion string) []byte {
	return []byte(recordPrefix + engine.CacheKey(planHash, engineVersion))
}

// timeKey sorts lexicographically in creation order. Its value is the cache
// key of the record.
func timeKey(createdAt time.Time, planHash, engineVersion string) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", timePrefix, createdAt.UnixNano(), engine.CacheKey(planHash, engineVersion)))
}

// Get returns the record for (planHash, engineVersion) or ErrNotFound.
func (s *Store) Get(ctx context.Context, planHash, engineVersion string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec *Record
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = readRecord(txn, recordKey(planHash, engineVersion))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// PutIfAbsent stores rec unless a record with the same key exists. It returns
// the record that is stored after the call and whether rec was the one
// written. Concurrent writers of the same key agree on a single winner.
func (s *Store) PutIfAbsent(ctx context.Context, rec *Record) (*Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	key := recordKey(rec.PlanHash, rec.EngineVersion)

	var existing *Record
	err := s.db.Update(func(txn *badger.Txn) error {
		found, err := readRecord(txn, key)
		if err == nil {
			existing = found
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(timeKey(rec.CreatedAt, rec.PlanHash, rec.EngineVersion), []byte(engine.CacheKey(rec.PlanHash, rec.EngineVersion)))
	})

	switch {
	case errors.Is(err, badger.ErrConflict):
		s.logger.Debug("concurrent write lost, reading winner",
			zap.String("plan_hash", rec.PlanHash),
			zap.String("engine_version", rec.EngineVersion))
		winner, gerr := s.Get(ctx, rec.PlanHash, rec.EngineVersion)
		if gerr != nil {
			return nil, false, fmt.Errorf("read after write conflict: %w", gerr)
		}
		return winner, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("store record: %w", err)
	case existing != nil:
		return existing, false, nil
	default:
		return rec, true, nil
	}
}

// Stats summarizes stored results: totals, the five most recent records and
// the most frequent rules among the last fifty failures.
func (s *Store) Stats(ctx context.Context) (*models.ValidationStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats := &models.ValidationStats{
		RecentValidations: []models.RecentValidation{},
		RuleFrequency:     []models.RuleCount{},
	}
	counts := make(map[string]int)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(timePrefix)
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seeking past the prefix with 0xff positions a reverse iterator on
		// the newest key.
		failuresSeen := 0
		for it.Seek(append(append([]byte{}, prefix...), 0xff)); it.ValidForPrefix(prefix); it.Next() {
			cacheKey, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := readRecord(txn, append([]byte(recordPrefix), cacheKey...))
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			stats.TotalValidations++
			if rec.Passed {
				stats.Passed++
			} else {
				stats.Failed++
			}

			if len(stats.RecentValidations) < recentLimit {
				stats.RecentValidations = append(stats.RecentValidations, recent(rec))
			}
			if !rec.Passed && failuresSeen < ruleScanLimit {
				failuresSeen++
				for _, v := range rec.Violations {
					counts[v.RuleID]++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}

	stats.RuleFrequency = topRules(counts, ruleFreqLimit)
	return stats, nil
}

func recent(rec *Record) models.RecentValidation {
	short := rec.PlanHash
	if len(short) > shortHashLength {
		short = short[:shortHashLength]
	}
	status := "failed"
	if rec.Passed {
		status = "passed"
	}
	return models.RecentValidation{
		ID:       rec.ID,
		PlanHash: short,
		Status:   status,
		Time:     rec.CreatedAt.Format(time.RFC3339Nano),
	}
}

// topRules orders by count descending, then rule id.
func topRules(counts map[string]int, limit int) []models.RuleCount {
	out := make([]models.RuleCount, 0, len(counts))
	for rule, n := range counts {
		out = append(out, models.RuleCount{Rule: rule, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Rule < out[j].Rule
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func readRecord(txn *badger.Txn, key []byte) (*Record, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("decode record %s: %w", key, err)
	}
	return &rec, nil
}
