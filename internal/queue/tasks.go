package queue

const (
	TypeClaimDecision        = "notify:claim_decision"
	TypeComplianceRejected   = "notify:compliance_rejected"
	TypeLaborRequestReceived = "notify:labor_request_received"
)

type ClaimDecisionPayload struct {
	ClaimID    string `json:"claim_id"`
	AgencyName string `json:"agency_name"`
	To         string `json:"to"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

type ComplianceRejectedPayload struct {
	AgencyID       string `json:"agency_id"`
	AgencyName     string `json:"agency_name"`
	To             string `json:"to"`
	ComplianceType string `json:"compliance_type"`
	Reason         string `json:"reason"`
}

type LaborRequestReceivedPayload struct {
	RequestID   string `json:"request_id"`
	To          string `json:"to"`
	ContactName string `json:"contact_name"`
	CompanyName string `json:"company_name"`
	ProjectName string `json:"project_name"`
	CraftCount  int    `json:"craft_count"`
	Workers     int    `json:"workers"`
}
