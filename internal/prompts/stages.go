package prompts

import (
	"encoding/json"
	"slices"
	"strings"
)

// Stage names a model call whose instructions can be overridden.
type Stage string

const (
	StageDocuments Stage = "documents"
	StagePhotos    Stage = "photos"
	StageAssistant Stage = "assistant"
)

var stages = []Stage{StageDocuments, StagePhotos, StageAssistant}

// Stages returns the known stages in pipeline order.
func Stages() []Stage {
	return slices.Clone(stages)
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return slices.Contains(stages, s)
}

// ParseStage accepts a stage name in any case, with surrounding space.
func ParseStage(s string) (Stage, error) {
	v := Stage(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", ErrInvalidStage
	}
	return v, nil
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
