package models

// Comment is a timestamped note appended to a violation. Comments are
// append-only and belong to exactly one violation.
type Comment struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Violation is a logged safety incident. The record store assigns the ID at
// creation; all other fields are set once by the reporter and never mutated.
// Date is the human-formatted timestamp string written at creation in
// "dd/mm/yyyy[, time]" layout.
type Violation struct {
	ID          string     `json:"id"`
	ImageURL    string     `json:"imageUrl"`
	Date        string     `json:"date"`
	Location    string     `json:"location"`
	Department  Department `json:"department"`
	Category    Category   `json:"category"`
	Severity    Severity   `json:"severity"`
	Description string     `json:"description"`
	Reporter    string     `json:"reporter"`
	Comments    []Comment  `json:"comments"`
}

// ViolationSubmission is the payload for creating a new violation against the
// record store. The store assigns the ID and there is no update or delete
// counterpart: corrections happen out-of-band in the backing spreadsheet.
type ViolationSubmission struct {
	Location    string     `json:"location"`
	Department  Department `json:"department"`
	Category    Category   `json:"category"`
	Severity    Severity   `json:"severity"`
	Description string     `json:"description"`
	Reporter    string     `json:"reporter"`
	Image       string     `json:"image"`
}

// Suggestion is the validated result of an inference call: severity and
// category are guaranteed members of the closed enumerations.
type Suggestion struct {
	SuggestedSeverity Severity `json:"suggestedSeverity"`
	SuggestedCategory Category `json:"suggestedCategory"`
	ExpertAdvice      string   `json:"expertAdvice"`
}

// Stats summarizes the currently loaded record list.
type Stats struct {
	TotalViolations int    `json:"totalViolations"`
	TotalComments   int    `json:"totalComments"`
	ActiveReporters int    `json:"activeReporters"`
	LastSync        string `json:"lastSync"`
}

// ErrorResponse is the uniform error body returned by handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the uniform informational body returned by handlers.
type MessageResponse struct {
	Message string `json:"message"`
}
