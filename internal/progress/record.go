// Package progress tracks per-learner section completion and aggregates it
// against resolved content graphs.
package progress

import "time"

// Record is the per-learner, per-course completion record. Done maps a
// lesson id to the set of completed section ids within it. Records are
// created lazily on first write and never deleted here.
type Record struct {
	UserID    string                     `json:"user_id"`
	CourseID  string                     `json:"course_id"`
	Done      map[string]map[string]bool `json:"done"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// NewRecord creates an empty record for a (user, course) pair.
func NewRecord(userID, courseID string) *Record {
	return &Record{
		UserID:   userID,
		CourseID: courseID,
		Done:     make(map[string]map[string]bool),
	}
}

// MarkDone records a completed section. Marking the same section twice is a
// no-op: membership is a set, not a counter.
func (r *Record) MarkDone(lessonID, sectionID string) {
	if r.Done == nil {
		r.Done = make(map[string]map[string]bool)
	}
	sections := r.Done[lessonID]
	if sections == nil {
		sections = make(map[string]bool)
		r.Done[lessonID] = sections
	}
	sections[sectionID] = true
	r.UpdatedAt = time.Now()
}

// MarkUndone removes a section from the completed set.
func (r *Record) MarkUndone(lessonID, sectionID string) {
	sections := r.Done[lessonID]
	if sections == nil {
		return
	}
	delete(sections, sectionID)
	if len(sections) == 0 {
		delete(r.Done, lessonID)
	}
	r.UpdatedAt = time.Now()
}

// IsDone reports whether a section is marked completed.
func (r *Record) IsDone(lessonID, sectionID string) bool {
	return r.Done[lessonID][sectionID]
}

// CompletedIn returns the completed section set for one lesson. The returned
// map is the record's own; callers must not mutate it.
func (r *Record) CompletedIn(lessonID string) map[string]bool {
	return r.Done[lessonID]
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	out := &Record{
		UserID:    r.UserID,
		CourseID:  r.CourseID,
		Done:      make(map[string]map[string]bool, len(r.Done)),
		UpdatedAt: r.UpdatedAt,
	}
	for lid, sections := range r.Done {
		cp := make(map[string]bool, len(sections))
		for sid := range sections {
			cp[sid] = true
		}
		out.Done[lid] = cp
	}
	return out
}
