// Package contacts adapts the Google People API to the core
// ContactsDirectory port.
package contacts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	pp "google.golang.org/api/people/v1"

	"github.com/mikey/inbox-triage/internal/core"
)

const connectionsPageSize = 1000

// PeopleDirectory looks up a user's contacts with their contact-group
// memberships. Lookups are best effort; callers treat any error as "no
// known contacts".
type PeopleDirectory struct {
	svc    *pp.Service
	logger *zap.Logger
}

// New creates a People API contacts directory.
func New(ctx context.Context, credentialsFile string, logger *zap.Logger) (*PeopleDirectory, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := pp.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	return &PeopleDirectory{
		svc:    svc,
		logger: logger,
	}, nil
}

// Find returns the authorized account's contacts keyed by lower-cased bare
// address. The People API scopes connections to the authorized account;
// userID is accepted for interface symmetry and logged for traceability.
func (d *PeopleDirectory) Find(ctx context.Context, userID string) (map[string]core.Contact, error) {
	groupNames, err := d.contactGroupNames(ctx)
	if err != nil {
		// Group names only enrich scoring; carry on without them.
		d.logger.Debug("Contact group listing failed", zap.Error(err))
		groupNames = map[string]string{}
	}

	found := make(map[string]core.Contact)
	pageToken := ""
	for {
		call := d.svc.People.Connections.List("people/me").
			PersonFields("names,emailAddresses,memberships").
			PageSize(connectionsPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list connections: %w", err)
		}

		for _, person := range resp.Connections {
			contact := core.Contact{
				Name:   displayName(person),
				Groups: membershipNames(person, groupNames),
			}
			for _, addr := range person.EmailAddresses {
				email := strings.ToLower(strings.TrimSpace(addr.Value))
				if email == "" {
					continue
				}
				contact.Email = email
				found[email] = contact
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	d.logger.Debug("Loaded contacts",
		zap.String("user_id", userID),
		zap.Int("count", len(found)))

	return found, nil
}

// contactGroupNames maps contact-group resource names to display names.
func (d *PeopleDirectory) contactGroupNames(ctx context.Context) (map[string]string, error) {
	resp, err := d.svc.ContactGroups.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list contact groups: %w", err)
	}

	names := make(map[string]string, len(resp.ContactGroups))
	for _, group := range resp.ContactGroups {
		names[group.ResourceName] = group.FormattedName
	}
	return names, nil
}

func displayName(person *pp.Person) string {
	for _, name := range person.Names {
		if name.DisplayName != "" {
			return name.DisplayName
		}
	}
	return ""
}

func membershipNames(person *pp.Person, groupNames map[string]string) []string {
	var groups []string
	for _, membership := range person.Memberships {
		cg := membership.ContactGroupMembership
		if cg == nil {
			continue
		}
		if name, ok := groupNames[cg.ContactGroupResourceName]; ok && name != "" {
			groups = append(groups, name)
		}
	}
	return groups
}

// Disabled is a ContactsDirectory that knows nobody. Used when the contacts
// integration is turned off.
type Disabled struct{}

// Find returns an empty contact set.
func (Disabled) Find(ctx context.Context, userID string) (map[string]core.Contact, error) {
	return map[string]core.Contact{}, nil
}
