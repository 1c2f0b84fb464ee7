package history

import "sync"

// cache is the bounded most-recent-first view of each subject's history.
// It is volatile and rebuilt empty on restart; the durable log is the source
// of truth. Writers for different subjects never contend on the same lock.
type cache struct {
	mu       sync.RWMutex
	subjects map[string]*subjectHistory
	max      int
}

type subjectHistory struct {
	mu   sync.Mutex
	recs []*PredictionRecord // newest first
}

func newCache(max int) *cache {
	return &cache{subjects: make(map[string]*subjectHistory), max: max}
}

func (c *cache) subject(subjectID string) *subjectHistory {
	c.mu.RLock()
	sh := c.subjects[subjectID]
	c.mu.RUnlock()
	if sh != nil {
		return sh
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sh = c.subjects[subjectID]; sh == nil {
		sh = &subjectHistory{}
		c.subjects[subjectID] = sh
	}
	return sh
}

// insert places rec at the head of the subject's history and truncates to the
// configured bound.
func (c *cache) insert(subjectID string, rec *PredictionRecord) {
	sh := c.subject(subjectID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.recs = append([]*PredictionRecord{rec}, sh.recs...)
	if len(sh.recs) > c.max {
		sh.recs = sh.recs[:c.max]
	}
}

// snapshot returns a copy of the subject's cached records, newest first.
func (c *cache) snapshot(subjectID string) []*PredictionRecord {
	c.mu.RLock()
	sh := c.subjects[subjectID]
	c.mu.RUnlock()
	if sh == nil {
		return nil
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	out := make([]*PredictionRecord, len(sh.recs))
	copy(out, sh.recs)
	return out
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subjects = make(map[string]*subjectHistory)
}
