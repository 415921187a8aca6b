package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
)

func writeSponsorCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sponsors.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,tier,website\n"+rows), 0o644))
	return path
}

func TestSponsors_CreatesMissingCompanies(t *testing.T) {
	hub := new(mockHubSpot)
	hub.On("ListAll", mock.Anything, ObjectTypeCompanies, mock.Anything).Return([]model.Record{
		contact("c1", map[string]string{
			"name": "Acme Corp", "domain": "acme.com",
			"linkedin_company_page": "https://linkedin.com/company/12345",
		}),
	}, nil)
	hub.On("Create", mock.Anything, ObjectTypeCompanies, map[string]string{
		"name":           "Globex",
		"domain":         "globex.com",
		"lifecyclestage": "lead",
		"hs_lead_status": "NEW",
	}).Return(&model.Record{ID: "c2"}, nil)

	path := writeSponsorCSV(t,
		"Acme Corp,Gold,https://www.acme.com/about\n"+
			"Globex,Silver,globex.com\n")

	s := NewSponsors(hub, nil, nil, SponsorsConfig{CSVPath: path})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary["sponsors"])
	assert.Equal(t, 1, summary["matched"]) // Acme by domain
	assert.Equal(t, 1, summary["created"]) // Globex
	hub.AssertExpectations(t)
}

func TestSponsors_MatchesByNameWhenDomainMissing(t *testing.T) {
	hub := new(mockHubSpot)
	hub.On("ListAll", mock.Anything, ObjectTypeCompanies, mock.Anything).Return([]model.Record{
		contact("c1", map[string]string{"name": "Initech"}),
	}, nil)

	path := writeSponsorCSV(t, "initech,Bronze,\n")

	s := NewSponsors(hub, nil, nil, SponsorsConfig{CSVPath: path})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["matched"])
	hub.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSponsors_DryRun_NoWrites(t *testing.T) {
	hub := new(mockHubSpot)
	hub.On("ListAll", mock.Anything, ObjectTypeCompanies, mock.Anything).
		Return([]model.Record{}, nil)

	path := writeSponsorCSV(t, "Globex,Silver,globex.com\n")

	s := NewSponsors(hub, nil, nil, SponsorsConfig{CSVPath: path, DryRun: true})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["created"])
	hub.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSponsors_NoSourceIsAnError(t *testing.T) {
	s := NewSponsors(new(mockHubSpot), nil, nil, SponsorsConfig{})
	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no page URL or CSV path")
}

// matchedAcmeHub returns a hub mock where Acme Corp exists with one
// associated contact carrying the given properties.
func matchedAcmeHub(t *testing.T, contactProps map[string]string) *mockHubSpot {
	t.Helper()
	hub := new(mockHubSpot)
	hub.On("ListAll", mock.Anything, ObjectTypeCompanies, mock.Anything).Return([]model.Record{
		contact("c1", map[string]string{"name": "Acme Corp", "domain": "acme.com"}),
	}, nil)
	hub.On("Associations", mock.Anything, ObjectTypeCompanies, "c1", hubspot.ObjectTypeContacts).
		Return([]string{"p1"}, nil)
	hub.On("Get", mock.Anything, hubspot.ObjectTypeContacts, "p1", mock.Anything).
		Return(&model.Record{ID: "p1", Properties: contactProps}, nil)
	return hub
}

func TestSponsors_CreateTasks_CallWhenPhoneOnFile(t *testing.T) {
	hub := matchedAcmeHub(t, map[string]string{
		"firstname": "Ada", "lastname": "King", "phone": "555-0100",
	})
	hub.On("Create", mock.Anything, ObjectTypeTasks, mock.MatchedBy(func(props map[string]string) bool {
		return props[fieldTaskSubject] == "Priority Outreach: Acme Corp Sponsor" &&
			props[fieldTaskType] == taskTypeCall &&
			props[fieldTaskPriority] == taskPriorityHigh
	})).Return(&model.Record{ID: "t1"}, nil)
	hub.On("Associate", mock.Anything, ObjectTypeTasks, "t1", ObjectTypeCompanies, "c1", assocTaskToCompany).
		Return(nil)

	path := writeSponsorCSV(t, "Acme Corp,Gold,acme.com\n")
	s := NewSponsors(hub, nil, nil, SponsorsConfig{
		CSVPath: path, EventName: "AirCargo Conference 2026", CreateTasks: true,
	})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["tasks"])
	hub.AssertExpectations(t)
}

func TestSponsors_CreateTasks_LinkedInWhenNoPhone(t *testing.T) {
	hub := matchedAcmeHub(t, map[string]string{
		"firstname": "Ada", "lastname": "King",
	})
	hub.On("Create", mock.Anything, ObjectTypeTasks, mock.MatchedBy(func(props map[string]string) bool {
		return props[fieldTaskSubject] == "Digital Outreach: Acme Corp" &&
			props[fieldTaskType] == taskTypeLinkedIn &&
			props[fieldTaskPriority] == taskPriorityMedium
	})).Return(&model.Record{ID: "t1"}, nil)
	hub.On("Associate", mock.Anything, ObjectTypeTasks, "t1", ObjectTypeCompanies, "c1", assocTaskToCompany).
		Return(nil)

	path := writeSponsorCSV(t, "Acme Corp,Gold,acme.com\n")
	s := NewSponsors(hub, nil, nil, SponsorsConfig{
		CSVPath: path, EventName: "AirCargo Conference 2026", CreateTasks: true,
	})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["tasks"])
	hub.AssertExpectations(t)
}

func TestSponsors_ConferenceTasksPerContact(t *testing.T) {
	hub := matchedAcmeHub(t, map[string]string{
		"firstname": "Ada", "lastname": "King", "jobtitle": "VP Ops",
	})
	hub.On("Create", mock.Anything, ObjectTypeTasks, mock.MatchedBy(func(props map[string]string) bool {
		return props[fieldTaskSubject] == "Conference Prep: Ada King - AirCargo Conference 2026" &&
			props[fieldTaskType] == taskTypeLinkedIn &&
			props[fieldTaskPriority] == taskPriorityHigh
	})).Return(&model.Record{ID: "t1"}, nil)
	hub.On("Associate", mock.Anything, ObjectTypeTasks, "t1", hubspot.ObjectTypeContacts, "p1", assocTaskToContact).
		Return(nil)

	path := writeSponsorCSV(t, "Acme Corp,Gold,acme.com\n")
	s := NewSponsors(hub, nil, nil, SponsorsConfig{
		CSVPath: path, EventName: "AirCargo Conference 2026", ConferenceTasks: true,
	})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["conference_tasks"])
	hub.AssertExpectations(t)
}

func TestSponsors_GeoQuerySkipsAlreadyTaskedContacts(t *testing.T) {
	hub := matchedAcmeHub(t, map[string]string{"firstname": "Ada", "lastname": "King"})
	// conference prep task for the sponsor contact
	hub.On("Create", mock.Anything, ObjectTypeTasks, mock.MatchedBy(func(props map[string]string) bool {
		return props[fieldTaskSubject] == "Conference Prep: Ada King - Expo"
	})).Return(&model.Record{ID: "t1"}, nil).Once()
	hub.On("Associate", mock.Anything, ObjectTypeTasks, "t1", hubspot.ObjectTypeContacts, "p1", assocTaskToContact).
		Return(nil)

	// the geo search finds the already-tasked contact plus a new one
	hub.On("Search", mock.Anything, hubspot.ObjectTypeContacts, mock.MatchedBy(func(q hubspot.SearchQuery) bool {
		return len(q.Filters) == 1 && q.Filters[0].Property == "city" && q.Filters[0].Value == "Springfield"
	})).Return([]model.Record{
		contact("p1", map[string]string{"firstname": "Ada", "lastname": "King"}),
		contact("p9", map[string]string{"firstname": "Grace", "lastname": "Hopper", "company": "Navy"}),
	}, nil)
	hub.On("Create", mock.Anything, ObjectTypeTasks, mock.MatchedBy(func(props map[string]string) bool {
		return props[fieldTaskSubject] == "Conference Prep: Grace Hopper - Expo"
	})).Return(&model.Record{ID: "t2"}, nil).Once()
	hub.On("Associate", mock.Anything, ObjectTypeTasks, "t2", hubspot.ObjectTypeContacts, "p9", assocTaskToContact).
		Return(nil)

	path := writeSponsorCSV(t, "Acme Corp,Gold,acme.com\n")
	s := NewSponsors(hub, nil, nil, SponsorsConfig{
		CSVPath: path, EventName: "Expo",
		ConferenceTasks: true, GeoQuery: true, GeoCity: "Springfield",
	})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["conference_tasks"])
	assert.Equal(t, 1, summary["geo_tasks"])
	hub.AssertExpectations(t)
}

func TestSponsors_AISeedsRanksContacts(t *testing.T) {
	hub := matchedAcmeHub(t, map[string]string{
		"firstname": "Ada", "lastname": "King",
		"jobtitle": "VP Supply Chain", "hs_linkedin_url": "linkedin.com/in/ada",
	})
	claude := &mockClaude{responses: []string{
		`[{"contactId": "p1", "name": "Ada King", "reasoning": "broad logistics network"}]`,
	}}

	path := writeSponsorCSV(t, "Acme Corp,Gold,acme.com\n")
	s := NewSponsors(hub, claude, nil, SponsorsConfig{
		CSVPath: path, GeoCity: "Orlando", AISeeds: true,
	})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["seeds"])
	require.Len(t, claude.requests, 1)
	assert.Contains(t, claude.requests[0].Messages[0].Content, "Ada King")
	assert.Contains(t, claude.requests[0].Messages[0].Content, "Acme Corp")
	assert.Contains(t, claude.requests[0].Messages[0].Content, "Orlando")
}

func TestSponsors_ScoreContactsUpdatesIndustry(t *testing.T) {
	hub := matchedAcmeHub(t, map[string]string{
		"firstname": "Ada", "lastname": "King", "jobtitle": "Dispatch Manager",
	})
	hub.On("Update", mock.Anything, hubspot.ObjectTypeContacts, "p1",
		map[string]string{"industry": "LOGISTICS_AND_SUPPLY_CHAIN"}).Return(nil)
	claude := &mockClaude{responses: []string{
		`{"score": 7, "segment": "Courier", "reason": "dispatch role at courier", "hubspotIndustry": "LOGISTICS_AND_SUPPLY_CHAIN"}`,
	}}

	path := writeSponsorCSV(t, "Acme Corp,Gold,acme.com\n")
	s := NewSponsors(hub, claude, nil, SponsorsConfig{CSVPath: path, ScoreContacts: true})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["scored"])
	hub.AssertExpectations(t)
}

func TestSponsors_ScoreContactsLowScoreSkipsUpdate(t *testing.T) {
	hub := matchedAcmeHub(t, map[string]string{"firstname": "Bob", "lastname": "Roe"})
	claude := &mockClaude{responses: []string{
		`{"score": 2, "segment": "Skip", "reason": "rideshare driver", "hubspotIndustry": "LOGISTICS_AND_SUPPLY_CHAIN"}`,
	}}

	path := writeSponsorCSV(t, "Acme Corp,Gold,acme.com\n")
	s := NewSponsors(hub, claude, nil, SponsorsConfig{CSVPath: path, ScoreContacts: true})
	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary["scored"])
	hub.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
