package validation

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxSkills      = 50
	maxSkillLength = 60
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("skill_list", SkillList)
	_ = v.RegisterValidation("application_status", ApplicationStatus)
	_ = v.RegisterValidation("job_status", JobStatus)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// RegisterGinValidators installs the custom tags on gin's binding validator so
// request DTOs can use them in `binding:"..."` tags.
func RegisterGinValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// SkillList accepts up to 50 skills, each non-blank and at most 60 characters.
// An empty list is valid; use required for mandatory lists.
func SkillList(fl validator.FieldLevel) bool {
	skills, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	if len(skills) > maxSkills {
		return false
	}
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || len([]rune(s)) > maxSkillLength {
			return false
		}
	}
	return true
}

// ApplicationStatus accepts the statuses an employer may set.
func ApplicationStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "shortlisted", "accepted", "rejected":
		return true
	}
	return false
}

// JobStatus accepts draft or published; empty means draft.
func JobStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "draft", "published":
		return true
	}
	return false
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		// Supplementary planes hold most emoji
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
