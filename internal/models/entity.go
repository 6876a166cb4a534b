package models

// EntityKind identifies one of the dashboard entities handled by the form workflow.
type EntityKind string

const (
	KindStudent    EntityKind = "student"
	KindTeacher    EntityKind = "teacher"
	KindParent     EntityKind = "parent"
	KindClass      EntityKind = "class"
	KindSubject    EntityKind = "subject"
	KindLesson     EntityKind = "lesson"
	KindExam       EntityKind = "exam"
	KindAssignment EntityKind = "assignment"
	KindResult     EntityKind = "result"
	KindEvent      EntityKind = "event"
)

// AllEntityKinds lists every kind the form workflow must handle.
var AllEntityKinds = []EntityKind{
	KindStudent,
	KindTeacher,
	KindParent,
	KindClass,
	KindSubject,
	KindLesson,
	KindExam,
	KindAssignment,
	KindResult,
	KindEvent,
}

// ParseEntityKind resolves a raw path segment into a known kind.
func ParseEntityKind(raw string) (EntityKind, bool) {
	for _, kind := range AllEntityKinds {
		if string(kind) == raw {
			return kind, true
		}
	}
	return "", false
}

// HasIdentity reports whether records of this kind own an identity provider account.
func (k EntityKind) HasIdentity() bool {
	return k == KindStudent || k == KindTeacher || k == KindParent
}

// FormMode describes what a form submission does to its entity.
type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeUpdate FormMode = "update"
	ModeDelete FormMode = "delete"
)

// ParseFormMode resolves a query value into a form mode.
func ParseFormMode(raw string) (FormMode, bool) {
	switch FormMode(raw) {
	case ModeCreate, ModeUpdate, ModeDelete:
		return FormMode(raw), true
	default:
		return "", false
	}
}

// Sex enumerates the values accepted for people records.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

// Weekday enumerates the school days a lesson may be scheduled on.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
)
