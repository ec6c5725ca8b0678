package permissions

import (
	"errors"
	"fmt"
)

// Action names a gated operation.
type Action string

const (
	ActionCreateResume      Action = "create_resume"
	ActionCreateCoverLetter Action = "create_cover_letter"
	ActionUseAITools        Action = "use_ai_tools"
	ActionCustomize         Action = "use_customizations"
)

// ErrDenied matches every *DeniedError.
var ErrDenied = errors.New("upgrade required")

// DeniedError explains which level would allow the action.
type DeniedError struct {
	Action   Action
	Level    Level
	Required Level
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s requires %s (current plan %s)", e.Action, e.Required, e.Level)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// Counts is the number of documents a user already owns, per kind.
type Counts struct {
	Resumes      int `json:"resumes"`
	CoverLetters int `json:"coverLetters"`
}

// Check returns nil when level may perform action, or a *DeniedError.
func (p Policy) Check(action Action, level Level, counts Counts) error {
	if p.allows(action, level, counts) {
		return nil
	}
	return &DeniedError{Action: action, Level: level, Required: p.requiredLevel(action, counts)}
}

func (p Policy) allows(action Action, level Level, counts Counts) bool {
	switch action {
	case ActionCreateResume:
		return p.CanCreateResume(level, counts.Resumes)
	case ActionCreateCoverLetter:
		return p.CanCreateCoverLetter(level, counts.CoverLetters)
	case ActionUseAITools:
		return CanUseAITools(level)
	case ActionCustomize:
		return CanUseCustomizations(level)
	default:
		panic(fmt.Sprintf("permissions: unknown action %q", action))
	}
}

// requiredLevel is the lowest tier that allows action at counts.
func (p Policy) requiredLevel(action Action, counts Counts) Level {
	for _, l := range []Level{Free, Pro, Enterprise} {
		if p.allows(action, l, counts) {
			return l
		}
	}
	return Enterprise
}

// Snapshot is the permission map shown to clients.
type Snapshot struct {
	Level                Level `json:"level"`
	CanCreateResume      bool  `json:"canCreateResume"`
	CanCreateCoverLetter bool  `json:"canCreateCoverLetter"`
	CanUseAITools        bool  `json:"canUseAITools"`
	CanUseCustomizations bool  `json:"canUseCustomizations"`
	// Limits are nil when unlimited.
	ResumeLimit      *int   `json:"resumeLimit"`
	CoverLetterLimit *int   `json:"coverLetterLimit"`
	Usage            Counts `json:"usage"`
}

// Snapshot evaluates every gate for level and counts.
func (p Policy) Snapshot(level Level, counts Counts) Snapshot {
	s := Snapshot{
		Level:                level,
		CanCreateResume:      p.CanCreateResume(level, counts.Resumes),
		CanCreateCoverLetter: p.CanCreateCoverLetter(level, counts.CoverLetters),
		CanUseAITools:        CanUseAITools(level),
		CanUseCustomizations: CanUseCustomizations(level),
		Usage:                counts,
	}
	switch level {
	case Enterprise:
	case Pro:
		s.ResumeLimit, s.CoverLetterLimit = intPtr(p.ProResumeLimit), intPtr(p.ProCoverLetterLimit)
	default:
		s.ResumeLimit, s.CoverLetterLimit = intPtr(p.FreeResumeLimit), intPtr(p.FreeCoverLetterLimit)
	}
	return s
}

func intPtr(v int) *int { return &v }
