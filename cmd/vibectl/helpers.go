package main

import (
	"fmt"

	"github.com/google/uuid"
)

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

// optionalString maps an unset flag to nil so the server keeps its default.
func optionalString(set bool, v string) *string {
	if !set {
		return nil
	}
	return &v
}
