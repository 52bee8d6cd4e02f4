package dto

// ChartData matches the label/value pairing the dashboard charts consume.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type DashboardResponse struct {
	ComplianceBySector   ChartData `json:"compliance_by_sector"`
	TopNonCompliantItems ChartData `json:"top_non_compliant_items"`
}
