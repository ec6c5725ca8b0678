package permissions

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Product limits. ENTERPRISE is unlimited for both document kinds.
const (
	DefaultFreeResumeLimit      = 1
	DefaultProResumeLimit       = 3
	DefaultFreeCoverLetterLimit = 1
	DefaultProCoverLetterLimit  = 3
)

// Policy holds the per-tier document limits.
type Policy struct {
	FreeResumeLimit      int `yaml:"free_resume_limit" json:"freeResumeLimit"`
	ProResumeLimit       int `yaml:"pro_resume_limit" json:"proResumeLimit"`
	FreeCoverLetterLimit int `yaml:"free_cover_letter_limit" json:"freeCoverLetterLimit"`
	ProCoverLetterLimit  int `yaml:"pro_cover_letter_limit" json:"proCoverLetterLimit"`
}

// DefaultPolicy returns the product defaults.
func DefaultPolicy() Policy {
	return Policy{
		FreeResumeLimit:      DefaultFreeResumeLimit,
		ProResumeLimit:       DefaultProResumeLimit,
		FreeCoverLetterLimit: DefaultFreeCoverLetterLimit,
		ProCoverLetterLimit:  DefaultProCoverLetterLimit,
	}
}

// LoadPolicy overlays the YAML file at path on the defaults. Keys missing
// from the file keep their default. An empty path returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read plan policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse plan policy: %w", err)
	}
	if err := p.validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) validate() error {
	if p.FreeResumeLimit < 0 || p.ProResumeLimit < 0 || p.FreeCoverLetterLimit < 0 || p.ProCoverLetterLimit < 0 {
		return errors.New("plan policy limits must not be negative")
	}
	if p.FreeResumeLimit > p.ProResumeLimit || p.FreeCoverLetterLimit > p.ProCoverLetterLimit {
		return errors.New("plan policy FREE limits must not exceed PRO limits")
	}
	return nil
}

// CanCreateResume reports whether a user at level with count resumes may create another.
func (p Policy) CanCreateResume(level Level, count int) bool {
	return allowCreate(level, count, p.FreeResumeLimit, p.ProResumeLimit)
}

// CanCreateCoverLetter is CanCreateResume for the independent cover letter counter.
func (p Policy) CanCreateCoverLetter(level Level, count int) bool {
	return allowCreate(level, count, p.FreeCoverLetterLimit, p.ProCoverLetterLimit)
}

func allowCreate(level Level, count, freeLimit, proLimit int) bool {
	switch level {
	case Enterprise:
		return true
	case Pro:
		return count < proLimit
	default:
		return count < freeLimit
	}
}

// CanUseAITools is true for PRO and ENTERPRISE.
func CanUseAITools(level Level) bool {
	return level == Pro || level == Enterprise
}

// CanUseCustomizations is true for ENTERPRISE only.
func CanUseCustomizations(level Level) bool {
	return level == Enterprise
}

// CanCreateResume applies the default policy.
func CanCreateResume(level Level, count int) bool {
	return DefaultPolicy().CanCreateResume(level, count)
}

// CanCreateCoverLetter applies the default policy.
func CanCreateCoverLetter(level Level, count int) bool {
	return DefaultPolicy().CanCreateCoverLetter(level, count)
}
