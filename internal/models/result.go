package models

type AnalyzeRequest struct {
	Role           string `form:"role" validate:"required"`
	GitHubUsername string `form:"github_username" validate:"omitempty,max=39"`
	Save           bool   `form:"save"`
}

// SaveHistoryRequest accepts loosely typed counts; the handler coerces them.
type SaveHistoryRequest struct {
	Username      string      `json:"username" validate:"required"`
	Role          string      `json:"role" validate:"required"`
	ATSScore      float64     `json:"ats_score" validate:"gte=0,lte=100"`
	Repositories  interface{} `json:"repositories"`
	Followers     interface{} `json:"followers"`
	Contributions interface{} `json:"contributions"`
}

type SaveHistoryResponse struct {
	Saved  bool           `json:"saved"`
	Record *HistoryRecord `json:"record,omitempty"`
}

type HistoryResponse struct {
	Username string          `json:"username"`
	Records  []HistoryRecord `json:"records"`
}

type LeaderboardResponse struct {
	Rows []LeaderboardRow `json:"rows"`
}

type AnalyzeResponse struct {
	SessionID string          `json:"session_id"`
	Report    *AnalysisReport `json:"report"`
	Saved     bool            `json:"saved"`
	Record    *HistoryRecord  `json:"record,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}
