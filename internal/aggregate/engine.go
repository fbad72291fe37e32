package aggregate

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"enrdash/internal/dataset"
	"enrdash/internal/errors"
)

// FilterSpec restricts a view to a year range, a region set and an
// energy-type set. Empty sets and a zero year range mean "no constraint" on
// that dimension.
type FilterSpec struct {
	YearMin     int      `json:"year_min" validate:"omitempty,gte=1900"`
	YearMax     int      `json:"year_max" validate:"omitempty,gte=1900"`
	Regions     []string `json:"regions,omitempty"`
	EnergyTypes []string `json:"energy_types,omitempty"`
}

// CacheKey returns the canonical string for this spec. Sets are sorted and
// deduplicated so equivalent specs share one cache entry.
func (s FilterSpec) CacheKey() string {
	regions := normalizeSet(s.Regions)
	types := normalizeSet(s.EnergyTypes)
	return fmt.Sprintf("y=%d-%d|r=%s|e=%s",
		s.YearMin, s.YearMax,
		strings.Join(regions, ","),
		strings.Join(types, ","))
}

func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Engine produces filtered views over one immutable observation table.
// Views are cached by canonical spec key; the engine is rebuilt (and the
// cache therefore dropped) whenever the dataset snapshot is reloaded.
type Engine struct {
	logger       *slog.Logger
	observations []dataset.Observation

	mu    sync.RWMutex
	cache map[string]*FilteredView
}

// NewEngine creates a filter engine over the given long-form table.
func NewEngine(observations []dataset.Observation, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:       logger.With(slog.String("component", "filter_engine")),
		observations: observations,
		cache:        make(map[string]*FilteredView),
	}
}

// Filter returns the view for the given spec, computing it on first use and
// serving the cached view afterwards. The source observations are never
// mutated.
func (e *Engine) Filter(spec FilterSpec) (*FilteredView, error) {
	if spec.YearMin != 0 && spec.YearMax != 0 && spec.YearMin > spec.YearMax {
		return nil, errors.NewValidationError(
			fmt.Sprintf("year range inverted: %d > %d", spec.YearMin, spec.YearMax))
	}

	key := spec.CacheKey()

	e.mu.RLock()
	if view, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return view, nil
	}
	e.mu.RUnlock()

	view := e.compute(spec)

	e.mu.Lock()
	e.cache[key] = view
	e.mu.Unlock()

	e.logger.Debug("filtered view computed",
		slog.String("key", key),
		slog.Int("rows", len(view.Rows)))

	return view, nil
}

// CachedViews reports the number of views currently held.
func (e *Engine) CachedViews() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func (e *Engine) compute(spec FilterSpec) *FilteredView {
	regionSet := toSet(spec.Regions)
	typeSet := toSet(spec.EnergyTypes)

	rows := make([]dataset.Observation, 0, len(e.observations))
	for _, obs := range e.observations {
		if spec.YearMin != 0 && obs.Year < spec.YearMin {
			continue
		}
		if spec.YearMax != 0 && obs.Year > spec.YearMax {
			continue
		}
		if len(regionSet) > 0 {
			if _, ok := regionSet[obs.RegionCode]; !ok {
				continue
			}
		}
		if len(typeSet) > 0 {
			if _, ok := typeSet[string(obs.EnergyType)]; !ok {
				continue
			}
		}
		rows = append(rows, obs)
	}

	// Source table is already in canonical order, but a view must not depend
	// on that holding forever.
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.RegionCode != b.RegionCode {
			return a.RegionCode < b.RegionCode
		}
		return a.EnergyType < b.EnergyType
	})

	return &FilteredView{Spec: spec, Rows: rows}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
