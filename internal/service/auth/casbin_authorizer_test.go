package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"vantage/internal/domain"
)

type fakeMembers struct {
	roles map[int64]string
	err   error
}

func (f *fakeMembers) GetRole(ctx context.Context, userID uuid.UUID, companyID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	role, ok := f.roles[companyID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return role, nil
}

func (f *fakeMembers) AddMember(ctx context.Context, userID uuid.UUID, companyID int64, role string) error {
	f.roles[companyID] = role
	return nil
}

func newTestAuthorizer(t *testing.T, members *fakeMembers, policyPath string, mode Mode) *CasbinAuthorizer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := NewCasbinAuthorizer(members, policyPath, mode, logger)
	if err != nil {
		t.Fatalf("NewCasbinAuthorizer() error = %v", err)
	}
	return a
}

func TestCasbinAuthorizer_DefaultPolicy(t *testing.T) {
	members := &fakeMembers{roles: map[int64]string{
		1: "viewer",
		2: "editor",
		3: "admin",
		4: "auditor",
	}}
	a := newTestAuthorizer(t, members, "", ModeEnforce)
	user := uuid.New()

	tests := []struct {
		name      string
		companyID int64
		wantView  bool
		wantEdit  bool
	}{
		{"viewer reads only", 1, true, false},
		{"editor inherits read", 2, true, true},
		{"admin has everything", 3, true, true},
		{"unknown role", 4, false, false},
		{"not a member", 99, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.CanViewCompany(context.Background(), user, tt.companyID)
			if (err == nil) != tt.wantView {
				t.Errorf("CanViewCompany() error = %v, want allowed %v", err, tt.wantView)
			}
			if err != nil && !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("CanViewCompany() error = %v, want ErrForbidden", err)
			}

			err = a.CanEditCompany(context.Background(), user, tt.companyID)
			if (err == nil) != tt.wantEdit {
				t.Errorf("CanEditCompany() error = %v, want allowed %v", err, tt.wantEdit)
			}
		})
	}
}

func TestCasbinAuthorizer_PolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	policy := "p, role:viewer, company:7, tree, read\n"
	if err := os.WriteFile(path, []byte(policy), 0o644); err != nil {
		t.Fatal(err)
	}

	members := &fakeMembers{roles: map[int64]string{7: "viewer", 8: "viewer"}}
	a := newTestAuthorizer(t, members, path, ModeEnforce)
	user := uuid.New()

	if err := a.CanViewCompany(context.Background(), user, 7); err != nil {
		t.Errorf("company 7: error = %v, want allowed", err)
	}
	if err := a.CanViewCompany(context.Background(), user, 8); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("company 8: error = %v, want ErrForbidden", err)
	}
}

func TestCasbinAuthorizer_Modes(t *testing.T) {
	user := uuid.New()

	shadow := newTestAuthorizer(t, &fakeMembers{roles: map[int64]string{}}, "", ModeShadow)
	if err := shadow.CanEditCompany(context.Background(), user, 1); err != nil {
		t.Errorf("shadow mode: error = %v, want nil", err)
	}

	lookupErr := errors.New("db down")
	disabled := newTestAuthorizer(t, &fakeMembers{err: lookupErr}, "", ModeDisabled)
	if err := disabled.CanEditCompany(context.Background(), user, 1); err != nil {
		t.Errorf("disabled mode: error = %v, want nil", err)
	}

	enforce := newTestAuthorizer(t, &fakeMembers{err: lookupErr}, "", ModeEnforce)
	if err := enforce.CanViewCompany(context.Background(), user, 1); !errors.Is(err, lookupErr) {
		t.Errorf("lookup failure: error = %v, want wrapped %v", err, lookupErr)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{"", ModeEnforce, false},
		{"Shadow", ModeShadow, false},
		{" disabled ", ModeDisabled, false},
		{"audit", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
