package scenario

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/vensus137/coreness-go/pkg/errors"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// kv is one ordered (key, scenario) pair inside a priority-tier bucket
// that must preserve YAML declaration order (spec.md §4.1: "iteration
// order within a tier follows YAML load order").
type kv struct {
	key      string
	scenario string
}

type regexEntry struct {
	pattern  string
	compiled *regexp.Regexp
	scenario string
}

// Index is one tenant's derived ScenarioIndex (spec.md §3): the
// priority-ordered trigger buckets plus the scenario lookup tables a
// matched trigger resolves against.
type Index struct {
	TenantID string

	scenarios  map[string]*Scenario // full name -> scenario
	shortNames map[string]string    // short name -> full name, only when unambiguous

	textExact map[string]string // lower(key) -> scenario name
	textState map[string]string // state_type -> scenario name
	textRegex []regexEntry
	textStartsWith []kv
	textContains   []kv

	callbackExact    map[string]string
	callbackContains []kv

	newMember map[string]string // "group"|"link"|"creator"|"initiator"|"default" -> scenario
}

// BuildIndex compiles scenarios (and their declared triggers) into a
// fresh Index. Regex compile errors are logged and that single regex
// trigger is skipped, per spec.md §4.1's "Failure semantics" -- a bad
// pattern never fails the whole build.
func BuildIndex(tenantID string, scenarios []Scenario) *Index {
	idx := &Index{
		TenantID:   tenantID,
		scenarios:  make(map[string]*Scenario, len(scenarios)),
		shortNames: make(map[string]string, len(scenarios)),
		textExact:  make(map[string]string),
		textState:  make(map[string]string),
		callbackExact: make(map[string]string),
		newMember:  make(map[string]string),
	}

	seenShort := make(map[string]int)
	for i := range scenarios {
		s := &scenarios[i]
		idx.scenarios[s.Name] = s
		seenShort[s.Short]++
	}
	for short, count := range seenShort {
		if count == 1 {
			for _, s := range scenarios {
				if s.Short == short {
					idx.shortNames[short] = s.Name
					break
				}
			}
		}
	}

	for i := range scenarios {
		s := &scenarios[i]
		for _, tr := range s.Triggers {
			idx.addTrigger(tr, s.Name)
		}
	}
	return idx
}

func (idx *Index) addTrigger(tr Trigger, scenarioName string) {
	switch tr.Kind {
	case TextExact:
		idx.textExact[strings.ToLower(tr.Key)] = scenarioName
	case TextState:
		idx.textState[tr.Key] = scenarioName
	case TextRegex:
		re, err := regexp.Compile("(?i)" + tr.Key)
		if err != nil {
			logger.Warnw("scenario: skipping invalid regex trigger",
				"pattern", tr.Key, logger.FieldScenario, scenarioName, logger.FieldError, err)
			return
		}
		idx.textRegex = append(idx.textRegex, regexEntry{pattern: tr.Key, compiled: re, scenario: scenarioName})
	case TextStartsWith:
		idx.textStartsWith = append(idx.textStartsWith, kv{key: strings.ToLower(tr.Key), scenario: scenarioName})
	case TextContains:
		idx.textContains = append(idx.textContains, kv{key: strings.ToLower(tr.Key), scenario: scenarioName})
	case CallbackExact:
		idx.callbackExact[normalizeCallback(tr.Key)] = scenarioName
	case CallbackContains:
		idx.callbackContains = append(idx.callbackContains, kv{key: normalizeCallback(tr.Key), scenario: scenarioName})
	case NewMemberGroup:
		idx.newMember["group"] = scenarioName
	case NewMemberLink:
		idx.newMember["link"] = scenarioName
	case NewMemberCreator:
		idx.newMember["creator"] = scenarioName
	case NewMemberInitiator:
		idx.newMember["initiator"] = scenarioName
	case NewMemberDefault:
		idx.newMember["default"] = scenarioName
	}
}

// ScenarioNames returns every scenario's fully-qualified name in the
// index, for callers that must enumerate the whole set (the scheduler's
// schedule sweep).
func (idx *Index) ScenarioNames() []string {
	names := make([]string, 0, len(idx.scenarios))
	for name := range idx.scenarios {
		names = append(names, name)
	}
	return names
}

// Scenario resolves name -- full key first, then short name if
// unambiguous -- to its Scenario, or reports ok=false.
func (idx *Index) Scenario(name string) (*Scenario, bool) {
	if s, ok := idx.scenarios[name]; ok {
		return s, true
	}
	if full, ok := idx.shortNames[name]; ok {
		s, ok := idx.scenarios[full]
		return s, ok
	}
	return nil, false
}

// Loader produces the scenario set for one tenant (spec.md §6's
// scenario/trigger YAML files, parsed by internal/loader). Kept as a
// narrow interface here so Store never depends on file formats.
type Loader interface {
	LoadScenarios(ctx context.Context, tenantID string) ([]Scenario, error)
}

// Store owns the per-tenant Index cache: built lazily on first use,
// retained until explicit invalidation, with concurrent first-loads for
// the same tenant deduplicated by a build lock (grounded on
// test_scenario_engine_cache.py, SPEC_FULL.md §5). The pack has no
// golang.org/x/sync/singleflight import to ground adopting it, so this
// is a small hand-rolled mutex+map dedup instead.
type Store struct {
	loader Loader

	mu       sync.Mutex
	indexes  map[string]*Index
	building map[string]*buildState
}

type buildState struct {
	done  chan struct{}
	index *Index
	err   error
}

// NewStore builds a Store that loads scenarios through loader on miss.
func NewStore(loader Loader) *Store {
	return &Store{
		loader:   loader,
		indexes:  make(map[string]*Index),
		building: make(map[string]*buildState),
	}
}

// Get returns the tenant's cached Index, building it on first use. The
// built Index is swapped in atomically -- no caller ever observes a
// partially-populated index (spec.md §3 invariant).
func (s *Store) Get(ctx context.Context, tenantID string) (*Index, error) {
	const op = "scenario.Store.Get"

	s.mu.Lock()
	if idx, ok := s.indexes[tenantID]; ok {
		s.mu.Unlock()
		return idx, nil
	}
	if bs, ok := s.building[tenantID]; ok {
		s.mu.Unlock()
		<-bs.done
		return bs.index, bs.err
	}
	bs := &buildState{done: make(chan struct{})}
	s.building[tenantID] = bs
	s.mu.Unlock()

	scenarios, err := s.loader.LoadScenarios(ctx, tenantID)
	if err != nil {
		bs.err = errors.Wrap(err, op, fmt.Sprintf("loading scenarios for tenant %s", tenantID))
	} else {
		bs.index = BuildIndex(tenantID, scenarios)
	}

	s.mu.Lock()
	if bs.err == nil {
		s.indexes[tenantID] = bs.index
	}
	delete(s.building, tenantID)
	s.mu.Unlock()
	close(bs.done)

	return bs.index, bs.err
}

// Invalidate drops the tenant's cached Index, forcing the next Get to
// rebuild from the loader (spec.md §4.1 reload_tenant_scenarios).
func (s *Store) Invalidate(tenantID string) {
	s.mu.Lock()
	delete(s.indexes, tenantID)
	s.mu.Unlock()
}
