package stage

import (
	"encoding/json"
	"fmt"
	"strings"

	"bipv/internal/services"
)

// EncodeArtifact serializes a stage result for storage on the element row.
func EncodeArtifact(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode stage artifact: %w", err)
	}
	return string(data), nil
}

// DecodeArtifact parses a stored stage artifact produced by an earlier stage.
// On failure it returns a services.ErrValidation suitable for stage Execute
// methods, since a missing artifact means the element skipped a stage.
func DecodeArtifact(stageName, raw string, out any) error {
	if strings.TrimSpace(raw) == "" {
		return services.Wrap(
			services.ErrValidation, stageName, "decode artifact",
			"required result from an earlier stage is missing; reset the element", nil)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return services.Wrap(
			services.ErrValidation, stageName, "decode artifact",
			"stored stage result is corrupt; reset the element", err)
	}
	return nil
}
