package testsupport

import (
	"context"
	"fmt"
	"testing"

	"bipv/internal/config"
	"bipv/internal/store"
)

// MustOpenStore opens a store against the test config and closes it on cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

// MustCreateProject inserts a project or fails the test.
func MustCreateProject(t testing.TB, st *store.Store, name string) *store.Project {
	t.Helper()
	project, err := st.CreateProject(context.Background(), name, "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

// MustRegisterElement inserts a pending south-facing element with sane geometry.
func MustRegisterElement(t testing.TB, st *store.Store, projectID int64, key string) *store.Element {
	t.Helper()
	element := &store.Element{
		ProjectID:   projectID,
		ElementKey:  key,
		Fingerprint: fmt.Sprintf("fp-%s", key),
		Label:       fmt.Sprintf("Window %s", key),
		Level:       "01",
		AzimuthDeg:  180,
		TiltDeg:     90,
		WidthM:      1.2,
		HeightM:     1.5,
		GlassAreaM2: 1.62,
	}
	registered, created, err := st.RegisterElement(context.Background(), element)
	if err != nil {
		t.Fatalf("register element: %v", err)
	}
	if !created {
		t.Fatalf("element %s already registered", key)
	}
	return registered
}
