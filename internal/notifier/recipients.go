package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/katatrina/complaint-BE/internal/db"
	"github.com/katatrina/complaint-BE/internal/token"
)

// RecipientSet holds the staff addresses for one notification. It is never persisted.
type RecipientSet struct {
	SuperAdminEmails     []string
	AdminEmails          []string
	AssignedOfficerEmail string
	AssignedOfficerName  string
}

// StaffEmails returns every staff address once, case-insensitively, keeping the first spelling.
func (rs RecipientSet) StaffEmails() []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(email string) {
		email = strings.TrimSpace(email)
		if email == "" {
			return
		}
		key := strings.ToLower(email)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, email)
	}

	for _, e := range rs.SuperAdminEmails {
		add(e)
	}
	for _, e := range rs.AdminEmails {
		add(e)
	}
	add(rs.AssignedOfficerEmail)

	return out
}

// resolveRecipients collects super-admins, admins of the caller's faculty and the officer.
// Lookups that fail are reported but do not discard the recipients that were found.
func resolveRecipients(ctx context.Context, store db.Store, principal token.Principal, officerID string) (RecipientSet, error) {
	var (
		rs   RecipientSet
		errs []error
	)

	superAdmins, err := store.ListUsersByRole(ctx, token.RoleSuperAdmin)
	if err != nil {
		errs = append(errs, fmt.Errorf("list super admins: %w", err))
	}
	for _, u := range superAdmins {
		rs.SuperAdminEmails = append(rs.SuperAdminEmails, u.Email)
	}

	if principal.FacultyID != "" {
		admins, err := store.ListUsersByFacultyAndRole(ctx, principal.FacultyID, token.RoleAdmin)
		if err != nil {
			errs = append(errs, fmt.Errorf("list faculty admins: %w", err))
		}
		for _, u := range admins {
			rs.AdminEmails = append(rs.AdminEmails, u.Email)
		}
	}

	if officerID != "" {
		officer, err := store.GetUserByID(ctx, officerID)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("get officer %s: %w", officerID, err))
		case officer.WantsEmail():
			rs.AssignedOfficerEmail = officer.Email
			rs.AssignedOfficerName = officer.Name
		default:
			rs.AssignedOfficerName = officer.Name
		}
	}

	return rs, errors.Join(errs...)
}
