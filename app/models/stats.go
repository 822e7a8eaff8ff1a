package models

// DailyStats is the number of items created on one day.
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardCounts is the admin overview.
type DashboardCounts struct {
	Users              int64 `json:"users"`
	BannedUsers        int64 `json:"banned_users"`
	Listings           int64 `json:"listings"`
	PendingListings    int64 `json:"pending_listings"`
	RejectedListings   int64 `json:"rejected_listings"`
	Reports            int64 `json:"reports"`
	UnvalidatedReports int64 `json:"unvalidated_reports"`
}
