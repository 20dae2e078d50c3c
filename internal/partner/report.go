package partner

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

var ErrReportUnavailable = errors.New("report unavailable")

const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// Report is the subset of the partner's complaint record this service consults.
type Report struct {
	ID          string
	DisplayID   string
	Title       string
	Status      string
	IsAnonymous bool
	// AnonymityKnown is false when the record carried no isAnonymous flag.
	AnonymityKnown bool
	AdminID        string
	AdminName      string
	StudentName    string
	StudentEmail   string
	CreatedAt      time.Time
}

// Label is the human identifier used in notifications.
func (r *Report) Label() string {
	if r.DisplayID != "" {
		return r.DisplayID
	}
	return r.ID
}

// ParseReport extracts a report from a partner payload. The report may be the root
// object or wrapped in "data" or "report".
func ParseReport(body []byte) (*Report, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("report payload is not valid JSON")
	}

	obj := ReportObject(gjson.ParseBytes(body))
	if !obj.IsObject() {
		return nil, errors.New("report payload is not an object")
	}

	report := &Report{
		ID:             firstString(obj, "id", "_id"),
		DisplayID:      firstString(obj, "displayId"),
		Title:          firstString(obj, "title"),
		Status:         firstString(obj, "status"),
		IsAnonymous:    obj.Get("isAnonymous").Bool(),
		AnonymityKnown: obj.Get("isAnonymous").Exists(),
		AdminName:      firstString(obj, "adminName", "assignedTo.name", "admin.name"),
		StudentName:    firstString(obj, "user.name", "student.name"),
		StudentEmail:   firstString(obj, "user.email", "student.email"),
	}
	report.AdminID = refID(obj.Get("adminId"))
	if report.AdminID == "" {
		report.AdminID = refID(obj.Get("assignedTo"))
	}

	if created := obj.Get("createdAt"); created.Exists() {
		if t, err := time.Parse(time.RFC3339, created.String()); err == nil {
			report.CreatedAt = t
		}
	}

	return report, nil
}

// ReportObject unwraps the common envelopes around a report.
func ReportObject(root gjson.Result) gjson.Result {
	if data := root.Get("data"); data.IsObject() {
		if inner := data.Get("report"); inner.IsObject() {
			return inner
		}
		return data
	}
	if inner := root.Get("report"); inner.IsObject() {
		return inner
	}
	return root
}

// refID reads an id that may be a plain string or an embedded object.
func refID(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return v.String()
	case v.IsObject():
		return firstString(v, "id", "_id")
	default:
		return ""
	}
}

func firstString(obj gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := obj.Get(path); v.Exists() && v.Type != gjson.Null && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
