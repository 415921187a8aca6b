package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
)

// ObjectTypeTasks is the HubSpot object type for sales workspace tasks.
const ObjectTypeTasks = "tasks"

const (
	fieldTaskSubject  = "hs_task_subject"
	fieldTaskBody     = "hs_task_body"
	fieldTaskType     = "hs_task_type"
	fieldTaskPriority = "hs_task_priority"
	fieldTaskStatus   = "hs_task_status"
	fieldTaskDue      = "hs_timestamp"

	taskTypeCall     = "CALL"
	taskTypeLinkedIn = "LINKEDIN_MESSAGE"

	taskPriorityHigh   = "HIGH"
	taskPriorityMedium = "MEDIUM"

	assocTaskToCompany = "task_to_company"
	assocTaskToContact = "task_to_contact"

	// maxCompanyContacts caps how many associated contacts are fetched per
	// company when generating tasks.
	maxCompanyContacts = 20
)

// contactTaskProperties are the contact fields needed to write a task body.
var contactTaskProperties = []string{
	model.FieldFirstName, model.FieldLastName, model.FieldEmail,
	model.FieldPhone, model.FieldJobTitle, model.FieldLinkedInURL,
	model.FieldCompany, model.FieldCity,
}

// nearbyCities expands a conference city into the surrounding metro area
// for the geographic contact search.
var nearbyCities = map[string][]string{
	"Orlando":   {"Orlando", "Kissimmee", "Winter Park", "Lake Buena Vista", "Sanford", "Altamonte Springs"},
	"Las Vegas": {"Las Vegas", "Henderson", "North Las Vegas", "Paradise"},
	"Chicago":   {"Chicago", "Evanston", "Oak Park", "Naperville", "Schaumburg"},
	"Miami":     {"Miami", "Miami Beach", "Fort Lauderdale", "Hollywood", "Coral Gables"},
	"Dallas":    {"Dallas", "Fort Worth", "Plano", "Irving", "Arlington"},
}

// taskProperties assembles the property map for a sales workspace task due now.
func taskProperties(subject, body, taskType, priority string) map[string]string {
	return map[string]string{
		fieldTaskSubject:  subject,
		fieldTaskBody:     body,
		fieldTaskType:     taskType,
		fieldTaskPriority: priority,
		fieldTaskStatus:   "NOT_STARTED",
		fieldTaskDue:      strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
}

// conferencePrepTask builds the prep task for a contact already connected
// on LinkedIn.
func conferencePrepTask(c model.Record, companyName, eventName string) (string, map[string]string) {
	fullName := c.FullName()
	if fullName == "" {
		fullName = "Unknown"
	}
	subject := fmt.Sprintf("Conference Prep: %s - %s", fullName, eventName)
	body := fmt.Sprintf(
		"%s (%s at %s) is connected to you on LinkedIn. Tagged for %s.\n\n"+
			"LinkedIn: %s\n\n"+
			"Draft message:\n"+
			"Hey %s, I'll be at %s next week -- would love to chat about how Chrt "+
			"is helping companies like %s streamline time-critical logistics. "+
			"Open to grabbing coffee or a quick meeting?",
		fullName, c.Get(model.FieldJobTitle), companyName, eventName,
		c.Get(model.FieldLinkedInURL),
		strings.TrimSpace(c.Get(model.FieldFirstName)), eventName, companyName,
	)
	return subject, taskProperties(subject, body, taskTypeLinkedIn, taskPriorityHigh)
}

// companyContacts fetches the first contacts associated with a company.
func (s *Sponsors) companyContacts(ctx context.Context, companyID string) ([]model.Record, error) {
	ids, err := s.hub.Associations(ctx, ObjectTypeCompanies, companyID, hubspot.ObjectTypeContacts)
	if err != nil {
		return nil, err
	}
	if len(ids) > maxCompanyContacts {
		ids = ids[:maxCompanyContacts]
	}

	contacts := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		c, err := s.hub.Get(ctx, hubspot.ObjectTypeContacts, id, contactTaskProperties)
		if err != nil {
			return contacts, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, nil
}

// createOutreachTasks writes one prioritized outreach task per matched
// sponsor company: a call when any contact has a phone number on file, a
// LinkedIn touch otherwise.
func (s *Sponsors) createOutreachTasks(ctx context.Context, log *zap.Logger, matched []matchedSponsor, summary Summary) {
	for _, m := range matched {
		contacts, err := s.companyContacts(ctx, m.companyID)
		if err != nil {
			log.Error("fetch company contacts failed",
				zap.String("company", m.sponsor.Name), zap.Error(err))
			summary.Add("errors", 1)
			continue
		}

		hasPhone := false
		for _, c := range contacts {
			if c.Has(model.FieldPhone) {
				hasPhone = true
				break
			}
		}

		navURL := m.navURL
		if navURL == "" {
			navURL = "N/A (LinkedIn URL missing)"
		}
		tierInfo := ""
		if m.sponsor.Tier != "" && m.sponsor.Tier != "Unknown" {
			tierInfo = fmt.Sprintf("[%s Sponsor] ", m.sponsor.Tier)
		}

		var subject, body, taskType, priority string
		if hasPhone {
			subject = fmt.Sprintf("Priority Outreach: %s Sponsor", m.sponsor.Name)
			body = fmt.Sprintf("%sSponsor at %s. Phone number available on contact record. "+
				"Check for 2nd-degree connections: %s", tierInfo, s.cfg.EventName, navURL)
			taskType, priority = taskTypeCall, taskPriorityHigh
		} else {
			subject = fmt.Sprintf("Digital Outreach: %s", m.sponsor.Name)
			body = fmt.Sprintf("%sSponsor at %s. No phone on file. "+
				"Use Sales Nav to find 2nd-degree connections: %s", tierInfo, s.cfg.EventName, navURL)
			taskType, priority = taskTypeLinkedIn, taskPriorityMedium
		}

		if s.createCompanyTask(ctx, log, m.companyID, subject, taskProperties(subject, body, taskType, priority), summary) {
			summary.Add("tasks", 1)
		}
	}
}

// createConferenceTasks writes a Conference Prep task for every contact at
// a matched sponsor company, recording each tasked contact ID in tasked.
func (s *Sponsors) createConferenceTasks(ctx context.Context, log *zap.Logger, matched []matchedSponsor, tasked map[string]struct{}, summary Summary) {
	for _, m := range matched {
		contacts, err := s.companyContacts(ctx, m.companyID)
		if err != nil {
			log.Error("fetch company contacts failed",
				zap.String("company", m.sponsor.Name), zap.Error(err))
			summary.Add("errors", 1)
			continue
		}
		for _, c := range contacts {
			tasked[c.ID] = struct{}{}
			subject, props := conferencePrepTask(c, m.sponsor.Name, s.cfg.EventName)
			if s.createContactTask(ctx, log, c.ID, subject, props, summary) {
				summary.Add("conference_tasks", 1)
			}
		}
	}
}

// createGeoTasks searches contacts in and around the conference city and
// writes Conference Prep tasks for the ones not already covered by the
// sponsor-company pass.
func (s *Sponsors) createGeoTasks(ctx context.Context, log *zap.Logger, tasked map[string]struct{}, summary Summary) {
	cities, ok := nearbyCities[s.cfg.GeoCity]
	if !ok {
		cities = []string{s.cfg.GeoCity}
	}
	log.Info("searching contacts near conference city",
		zap.String("city", s.cfg.GeoCity), zap.Strings("cities", cities))

	seen := make(map[string]struct{})
	var found []model.Record
	for _, city := range cities {
		records, err := s.hub.Search(ctx, hubspot.ObjectTypeContacts, hubspot.SearchQuery{
			Filters:    []hubspot.SearchFilter{{Property: model.FieldCity, Operator: "EQ", Value: city}},
			Properties: contactTaskProperties,
			Limit:      100,
		})
		if err != nil {
			log.Error("city search failed", zap.String("city", city), zap.Error(err))
			summary.Add("errors", 1)
			continue
		}
		for _, c := range records {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			found = append(found, c)
		}
	}
	log.Info("geo search complete", zap.Int("contacts", len(found)))

	for _, c := range found {
		if _, done := tasked[c.ID]; done {
			continue
		}
		company := c.Get(model.FieldCompany)
		if company == "" {
			company = "Unknown Company"
		}
		subject, props := conferencePrepTask(c, company, s.cfg.EventName)
		if s.createContactTask(ctx, log, c.ID, subject, props, summary) {
			summary.Add("geo_tasks", 1)
		}
	}
}

// createCompanyTask creates a task associated with a company; dry runs log
// instead. Returns true when the task counts toward the summary.
func (s *Sponsors) createCompanyTask(ctx context.Context, log *zap.Logger, companyID, subject string, props map[string]string, summary Summary) bool {
	return s.createAssociatedTask(ctx, log, ObjectTypeCompanies, companyID, assocTaskToCompany, subject, props, summary)
}

// createContactTask creates a task associated with a contact.
func (s *Sponsors) createContactTask(ctx context.Context, log *zap.Logger, contactID, subject string, props map[string]string, summary Summary) bool {
	return s.createAssociatedTask(ctx, log, hubspot.ObjectTypeContacts, contactID, assocTaskToContact, subject, props, summary)
}

func (s *Sponsors) createAssociatedTask(ctx context.Context, log *zap.Logger, toType, toID, label, subject string, props map[string]string, summary Summary) bool {
	if s.cfg.DryRun {
		log.Info("dry-run: would create task", zap.String("subject", subject))
		return true
	}
	created, err := s.hub.Create(ctx, ObjectTypeTasks, props)
	if err != nil {
		log.Error("create task failed", zap.String("subject", subject), zap.Error(err))
		summary.Add("errors", 1)
		return false
	}
	if err := s.hub.Associate(ctx, ObjectTypeTasks, created.ID, toType, toID, label); err != nil {
		log.Error("associate task failed",
			zap.String("subject", subject), zap.String("id", created.ID), zap.Error(err))
		summary.Add("errors", 1)
		return false
	}
	log.Info("created task", zap.String("subject", subject), zap.String("id", created.ID))
	return true
}
