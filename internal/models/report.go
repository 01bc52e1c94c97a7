package models

import "time"

// ReportHeader is the fixed first row of every CSV report.
var ReportHeader = []string{"Site-Name", "Path-Policy", "QoS-Policy", "NAT-Policy"}

// ReportRow is one resolved spoke site.
type ReportRow struct {
	SiteName   string
	PathPolicy string
	QoSPolicy  string
	NATPolicy  string
}

// Record returns the row as CSV fields in header order.
func (r ReportRow) Record() []string {
	return []string{r.SiteName, r.PathPolicy, r.QoSPolicy, r.NATPolicy}
}

// Report is the complete output of one run. SitesTotal counts every
// listed site, hubs included; Rows holds the spokes only.
type Report struct {
	TenantName  string
	GeneratedAt time.Time
	OutputPath  string
	SitesTotal  int
	Rows        []ReportRow
}
