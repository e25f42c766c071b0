// Package csvfile loads bucket ("barca") targets from a CSV file with the
// header market, group, target_percent.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// TargetLoader implements domain.TargetLoader over a CSV file. Parsed tables
// are cached per market context for the configured TTL.
type TargetLoader struct {
	path   string
	cache  *cache.Cache
	logger *zap.Logger
}

// NewTargetLoader creates a loader for path. A ttl <= 0 disables caching.
func NewTargetLoader(path string, ttl time.Duration, logger *zap.Logger) *TargetLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}
	return &TargetLoader{
		path:   path,
		cache:  c,
		logger: logger.Named("TargetLoader"),
	}
}

// Load returns bucket -> target percent for marketContext. A later row for
// the same bucket replaces an earlier one.
func (l *TargetLoader) Load(_ context.Context, marketContext string) (map[string]float64, error) {
	if l.cache != nil {
		if cached, ok := l.cache.Get(marketContext); ok {
			return maps.Clone(cached.(map[string]float64)), nil
		}
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open barca allocations %s: %v", domain.ErrConfiguration, l.path, err)
	}
	defer f.Close()

	targets, err := ParseTargets(f, marketContext)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid barca allocations in %s: %v", domain.ErrConfiguration, l.path, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no barca targets found for market %q", domain.ErrConfiguration, marketContext)
	}

	l.logger.Debug("Loaded barca targets",
		zap.String("market", marketContext),
		zap.Int("buckets", len(targets)))

	if l.cache != nil {
		l.cache.Set(marketContext, maps.Clone(targets), cache.DefaultExpiration)
	}
	return targets, nil
}

// ParseTargets reads market, group, target_percent rows and keeps those
// whose market equals marketContext
func ParseTargets(r io.Reader, marketContext string) (map[string]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("header row is required")
		}
		return nil, err
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range []string{"market", "group", "target_percent"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("header must contain a %s column", col)
		}
	}

	field := func(rec []string, col string) string {
		if i := idx[col]; i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	targets := make(map[string]float64)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if field(rec, "market") != marketContext {
			continue
		}

		line, _ := reader.FieldPos(0)
		pct, err := strconv.ParseFloat(field(rec, "target_percent"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid target_percent %q", line, field(rec, "target_percent"))
		}
		targets[field(rec, "group")] = pct
	}

	return targets, nil
}
