package models

// AlertsResponse is the envelope returned for alert list queries.
type AlertsResponse struct {
	Alerts         []AlertRecord `json:"alerts"`
	TotalInHistory int           `json:"total_in_history"`
	Returned       int           `json:"returned"`
}

// AlertStats summarizes the current alert history.
type AlertStats struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	Recent24h  int            `json:"recent_24h"`
}

// ClearResponse confirms a history clear.
type ClearResponse struct {
	Message string `json:"message"`
	Removed int    `json:"removed"`
}
