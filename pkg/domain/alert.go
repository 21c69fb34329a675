package domain

// Severity tags an alert for display.
type Severity string

const (
	SeverityPrimary Severity = "primary"
	SeverityGray    Severity = "gray"
	SeverityRed     Severity = "red"
	SeverityYellow  Severity = "yellow"
	SeverityGreen   Severity = "green"
	SeverityOrange  Severity = "orange"
)

// Alert is a transient notification shown to the user.
type Alert struct {
	Message  string   `json:"msg"`
	Severity Severity `json:"color"`
}
