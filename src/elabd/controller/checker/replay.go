package checker

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/uber/elabd/src/elabd/entity"
)

// Replayed notifications are resent in this order after a restart: file contents before regions of interest.
var _replayRank = map[string]int{
	entity.CheckerMethodSyncFile: 0,
	entity.CheckerMethodSyncROI:  1,
}

type replayEntry struct {
	method string
	file   string
	params json.RawMessage
}

// replayStore keeps the latest params of each replayable notification per file.
// Entries are copies and are never modified once stored.
type replayStore struct {
	mu sync.Mutex
	// method -> file -> params
	entries map[string]map[string]json.RawMessage
	// first-registration order of methods without an explicit rank
	order []string
}

func (r *replayStore) put(method, file string, params json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]map[string]json.RawMessage)
	}
	byFile, ok := r.entries[method]
	if !ok {
		byFile = make(map[string]json.RawMessage)
		r.entries[method] = byFile
		r.order = append(r.order, method)
	}
	byFile[file] = append(json.RawMessage(nil), params...)
}

func (r *replayStore) forget(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, byFile := range r.entries {
		delete(byFile, file)
	}
}

func (r *replayStore) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.order = nil
}

// snapshot returns every stored notification in replay order.
func (r *replayStore) snapshot() []replayEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	methods := append([]string(nil), r.order...)
	sort.SliceStable(methods, func(i, j int) bool {
		return rank(methods[i]) < rank(methods[j])
	})

	var result []replayEntry
	for _, method := range methods {
		files := make([]string, 0, len(r.entries[method]))
		for file := range r.entries[method] {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			result = append(result, replayEntry{method: method, file: file, params: r.entries[method][file]})
		}
	}
	return result
}

func rank(method string) int {
	if r, ok := _replayRank[method]; ok {
		return r
	}
	return len(_replayRank)
}
