package proxy

import (
	"context"
	"net/http"

	"github.com/katatrina/complaint-BE/internal/partner"
	"github.com/rs/zerolog/log"
)

const (
	MsgStudentMustBeIdentified = "Student must be identified before direct communication"
	MsgOfficerMustBeAssigned   = "An officer must be assigned before starting a chatroom"
)

// ReportFetcher reads a report straight from the partner, outside the proxy pipeline.
type ReportFetcher interface {
	GetReport(ctx context.Context, reportID string, authorization string) (*partner.Report, error)
}

// Gate checks business rules before a request is allowed upstream.
type Gate struct {
	reports ReportFetcher
}

func NewGate(reports ReportFetcher) *Gate {
	return &Gate{reports: reports}
}

// Check returns a response when the request must be rejected, or nil to let it through.
// When the report cannot be read the request is let through: partner unavailability
// must not block traffic the partner itself would accept.
func (g *Gate) Check(ctx context.Context, m Match, req *Request) *Response {
	if m.Action != ActionChatroomInitiate || m.ReportID == "" {
		return nil
	}

	report, err := g.reports.GetReport(ctx, m.ReportID, req.Authorization)
	if err != nil {
		log.Warn().Err(err).Str("report", m.ReportID).Msg("chatroom gate could not verify report, allowing request")
		return nil
	}

	if report.IsAnonymous {
		return errorJSON(http.StatusBadRequest, MsgStudentMustBeIdentified)
	}
	if report.AdminID == "" {
		return errorJSON(http.StatusBadRequest, MsgOfficerMustBeAssigned)
	}

	return nil
}
