package version

import (
	"fmt"
	"strings"
)

// BumpData represents the inputs for a single version bump
type BumpData struct {
	Version      string
	OutFile      string
	TemplatePath string
}

// Bump regenerates the version file, then commits and tags the result.
// The git tag keeps the leading "v"; the generated constant drops it.
func Bump(data BumpData, generator VersionGenerator, vc VersionControl) error {
	if !strings.HasPrefix(data.Version, "v") {
		return fmt.Errorf("version must begin with a \"v\": %s", data.Version)
	}

	versionData := VersionData{
		VERSION: strings.TrimPrefix(data.Version, "v"),
	}

	if err := generator.Generate(versionData); err != nil {
		return err
	}

	if err := vc.Add(data.OutFile); err != nil {
		return err
	}

	if err := vc.Commit(fmt.Sprintf("Bump version %s", data.Version)); err != nil {
		return err
	}

	return vc.Tag(data.Version)
}
