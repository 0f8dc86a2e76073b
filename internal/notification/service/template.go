package service

import (
	"bytes"
	"fmt"
	"text/template"

	notificationdomain "github.com/smallbiznis/partnerledger/internal/notification/domain"
)

var commissionBody = template.Must(template.New("commission").Parse(`Hello {{.PartnerName}},

A new booking has been credited to you.

Booking:          {{.BookingID}}
{{- if .TravelerName}}
Lead traveler:    {{.TravelerName}}
{{- end}}
{{- if .TripTitle}}
Trip:             {{.TripTitle}}
{{- end}}
{{- if .DepartureDate}}
Departure:        {{.DepartureDate}}
{{- end}}
{{- if .TravelerCount}}
Travelers:        {{.TravelerCount}}
{{- end}}
Category:         {{.TripCategory}}
Booking amount:   {{.BookingAmount}} {{.Currency}}
Commission rate:  {{.CommissionRate}}%
Commission:       {{.CommissionAmount}} {{.Currency}}

You now have {{.PendingCommissionCount}} pending commission(s) totalling {{.PendingCommissionSum}} {{.Currency}}.
`))

func renderBody(payload notificationdomain.CommissionPayload) (string, error) {
	var buf bytes.Buffer
	if err := commissionBody.Execute(&buf, payload); err != nil {
		return "", fmt.Errorf("render commission email: %w", err)
	}
	return buf.String(), nil
}

// CommissionSubject is the subject line for new-commission emails.
func CommissionSubject(payload notificationdomain.CommissionPayload) string {
	return fmt.Sprintf("New commission: %s %s on booking %s", payload.CommissionAmount, payload.Currency, payload.BookingID)
}
