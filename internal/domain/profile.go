package domain

import "fmt"

const (
	ProfileFull  = "full"
	ProfileLight = "light"
)

// Profile holds the fixed summarization parameters of a deployment.
type Profile struct {
	Name               string
	ModelID            string
	MaxLength          int
	MinLength          int
	Deterministic      bool
	ExportSummary      bool
	CollapsiblePreview bool
}

func FullProfile(modelID string) Profile {
	return Profile{
		Name:          ProfileFull,
		ModelID:       modelID,
		MaxLength:     150,
		MinLength:     30,
		Deterministic: true,
	}
}

func LightProfile(modelID string) Profile {
	return Profile{
		Name:               ProfileLight,
		ModelID:            modelID,
		MaxLength:          130,
		MinLength:          30,
		Deterministic:      true,
		ExportSummary:      true,
		CollapsiblePreview: true,
	}
}

func ProfileByName(name, modelID string) (Profile, error) {
	switch name {
	case ProfileFull:
		return FullProfile(modelID), nil
	case ProfileLight:
		return LightProfile(modelID), nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
}
