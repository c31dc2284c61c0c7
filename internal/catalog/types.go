package catalog

// Course is a top-level enrollable bundle of disciplines. A course may also
// reference lessons directly, outside any discipline.
type Course struct {
	ID            string   `yaml:"id" json:"id"`
	Title         string   `yaml:"title" json:"title"`
	DisciplineIDs []string `yaml:"discipline_ids" json:"discipline_ids"`
	LessonIDs     []string `yaml:"lesson_ids,omitempty" json:"lesson_ids,omitempty"`
}

// Discipline is a subject area composed of lessons. A discipline may be
// referenced by more than one course and may also be addressed standalone.
type Discipline struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	LessonIDs []string `yaml:"lesson_ids" json:"lesson_ids"`
}

// Lesson is a content unit composed of topics and sections. A lesson may be
// referenced by more than one discipline.
type Lesson struct {
	ID         string   `yaml:"id" json:"id"`
	TopicIDs   []string `yaml:"topic_ids" json:"topic_ids"`
	SectionIDs []string `yaml:"section_ids" json:"section_ids"`
}

// Topic is an editorial tracking unit, optionally linked to a filtered pool
// of practice questions.
type Topic struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	QuestionFilter string  `yaml:"question_filter,omitempty" json:"question_filter,omitempty"`
	Difficulty     string  `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	Weight         float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
}
