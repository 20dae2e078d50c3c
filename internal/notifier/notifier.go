package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/katatrina/complaint-BE/internal/db"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/mailer"
	"github.com/katatrina/complaint-BE/internal/partner"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	defaultInitiatorName = "Admin"
	defaultCloseReason   = "Closed by admin"
)

// ReportFetcher reads the current report from the partner.
type ReportFetcher interface {
	GetReport(ctx context.Context, reportID string, authorization string) (*partner.Report, error)
}

// Notifier turns a successful report operation into emails and real-time events.
type Notifier struct {
	store   db.Store
	reports ReportFetcher
	mailer  mailer.Sender
	events  event.Emitter
}

func NewNotifier(store db.Store, reports ReportFetcher, sender mailer.Sender, events event.Emitter) *Notifier {
	return &Notifier{
		store:   store,
		reports: reports,
		mailer:  sender,
		events:  events,
	}
}

// Handle runs one task. Every email and every event is attempted independently;
// the returned error joins whatever failed.
func (n *Notifier) Handle(ctx context.Context, task Task) error {
	if task.ReportID == "" || !task.Trigger.AcceptsStatus(task.ResponseStatus) {
		return nil
	}

	var errs []error

	report, err := n.snapshot(ctx, task)
	if err != nil {
		errs = append(errs, err)
	}

	officerID := officerFor(task, report)
	recipients, err := resolveRecipients(ctx, n.store, task.Principal, officerID)
	if err != nil {
		errs = append(errs, err)
	}

	c := content{
		Report:        report,
		OfficerName:   firstNonEmpty(gjson.GetBytes(task.RequestBody, "adminName").String(), recipients.AssignedOfficerName, report.AdminName),
		InitiatorName: firstNonEmpty(gjson.GetBytes(task.RequestBody, "initiatorName").String(), defaultInitiatorName),
		Reason:        firstNonEmpty(gjson.GetBytes(task.RequestBody, "reason").String(), defaultCloseReason),
		ChatroomID:    chatroomID(task.ResponseBody),
	}

	if staff := recipients.StaffEmails(); len(staff) > 0 {
		if err = n.send(ctx, staff, staffMessage(task.Trigger, c)); err != nil {
			errs = append(errs, fmt.Errorf("staff email: %w", err))
		}
	}

	if report.AnonymityKnown && !report.IsAnonymous && report.StudentEmail != "" {
		if err = n.send(ctx, []string{report.StudentEmail}, studentMessage(task.Trigger, c)); err != nil {
			errs = append(errs, fmt.Errorf("student email: %w", err))
		}
	}

	for _, ev := range n.eventsFor(task, c, officerID) {
		if err = n.emit(ev); err != nil {
			errs = append(errs, err)
		}
	}

	log.Info().Str("trigger", string(task.Trigger)).Str("report", task.ReportID).
		Int("staff", len(recipients.StaffEmails())).Int("failures", len(errs)).Msg("notification task processed")

	return errors.Join(errs...)
}

// snapshot builds the report view from the forwarded response, re-fetching it when
// the response lacks what the student notification needs.
func (n *Notifier) snapshot(ctx context.Context, task Task) (*partner.Report, error) {
	fromResponse, err := partner.ParseReport(task.ResponseBody)
	if err != nil {
		fromResponse = &partner.Report{}
	}
	// A response that is a chatroom or a message describes something else.
	if fromResponse.ID != "" && fromResponse.ID != task.ReportID {
		fromResponse = &partner.Report{}
	}
	fromResponse.ID = task.ReportID

	needsFetch := fromResponse.DisplayID == "" ||
		!fromResponse.AnonymityKnown ||
		(!fromResponse.IsAnonymous && fromResponse.StudentEmail == "")
	if !needsFetch {
		return fromResponse, nil
	}

	fetched, err := n.reports.GetReport(ctx, task.ReportID, task.Authorization)
	if err != nil {
		return fromResponse, fmt.Errorf("re-fetch report %s: %w", task.ReportID, err)
	}

	merged := *fetched
	merged.ID = task.ReportID
	if !merged.AnonymityKnown && fromResponse.AnonymityKnown {
		merged.IsAnonymous = fromResponse.IsAnonymous
		merged.AnonymityKnown = true
	}
	if merged.Status == "" {
		merged.Status = fromResponse.Status
	}
	if merged.AdminID == "" {
		merged.AdminID = fromResponse.AdminID
	}
	if merged.AdminName == "" {
		merged.AdminName = fromResponse.AdminName
	}
	return &merged, nil
}

func (n *Notifier) send(ctx context.Context, to []string, m message) error {
	email, err := render(to, m)
	if err != nil {
		return err
	}
	return n.mailer.SendEmail(ctx, email)
}

// emit isolates a misbehaving emitter so one failure never stops the remaining events.
func (n *Notifier) emit(ev event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("emit %s: %v", ev.Name, r)
		}
	}()
	n.events.Broadcast(ev)
	return nil
}

func (n *Notifier) eventsFor(task Task, c content, officerID string) []event.Event {
	report := c.Report
	base := func(extra map[string]interface{}) map[string]interface{} {
		data := map[string]interface{}{
			"complaintId": report.ID,
			"displayId":   report.DisplayID,
		}
		for k, v := range extra {
			data[k] = v
		}
		return data
	}

	switch task.Trigger {
	case TriggerAssignAdmin:
		return []event.Event{
			{Name: event.EventComplaintAssignment, Data: base(map[string]interface{}{
				"action":        "assigned",
				"adminId":       officerID,
				"adminName":     c.OfficerName,
				"initiatorName": c.InitiatorName,
				"initiatorId":   task.Principal.ID,
			})},
			{Name: event.EventComplaintStatus, Data: base(map[string]interface{}{
				"status":    firstNonEmpty(report.Status, partner.StatusInProgress),
				"updatedBy": task.Principal.ID,
			})},
		}
	case TriggerRevokeAdmin:
		return []event.Event{
			{Name: event.EventComplaintAssignment, Data: base(map[string]interface{}{
				"action":        "revoked",
				"adminId":       officerID,
				"adminName":     c.OfficerName,
				"initiatorName": c.InitiatorName,
				"initiatorId":   task.Principal.ID,
			})},
		}
	case TriggerResolve:
		return []event.Event{
			{Name: event.EventComplaintStatus, Data: base(map[string]interface{}{
				"status":    partner.StatusResolved,
				"updatedBy": task.Principal.ID,
			})},
		}
	case TriggerClose:
		return []event.Event{
			{Name: event.EventComplaintStatus, Data: base(map[string]interface{}{
				"status":    partner.StatusClosed,
				"reason":    c.Reason,
				"updatedBy": task.Principal.ID,
			})},
		}
	case TriggerChatroomInitiate:
		return []event.Event{
			{Name: event.EventComplaintChatroom, Data: base(map[string]interface{}{
				"chatroomId":  c.ChatroomID,
				"initiatorId": task.Principal.ID,
			})},
		}
	default:
		return nil
	}
}

// officerFor picks the officer whose address joins the staff list.
func officerFor(task Task, report *partner.Report) string {
	switch task.Trigger {
	case TriggerAssignAdmin:
		return firstNonEmpty(gjson.GetBytes(task.RequestBody, "adminId").String(), report.AdminID)
	case TriggerRevokeAdmin:
		return firstNonEmpty(
			gjson.GetBytes(task.RequestBody, "adminId").String(),
			partner.ReportObject(gjson.ParseBytes(task.ResponseBody)).Get("previousAdminId").String(),
			report.AdminID,
		)
	default:
		return report.AdminID
	}
}

func chatroomID(body []byte) string {
	obj := partner.ReportObject(gjson.ParseBytes(body))
	for _, path := range []string{"chatroomId", "chatroom._id", "chatroom.id", "_id", "id"} {
		if v := obj.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
