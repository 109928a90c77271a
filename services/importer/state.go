package importer

import "fmt"

// AdminStats tracks administrator-account outcomes across one run
type AdminStats struct {
	Created            int `json:"created"`
	Skipped            int `json:"skipped"`
	Errors             int `json:"errors"`
	PasswordsGenerated int `json:"passwords_generated"`
}

// CreatedInstitution is the per-row success summary kept on the report
type CreatedInstitution struct {
	Row           int    `json:"row"`
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Level         int    `json:"level"`
	AdminUsername string `json:"admin_username,omitempty"`
	AdminEmail    string `json:"admin_email,omitempty"`
}

// RunState is the request-scoped accumulator for one import call. It is
// built fresh at call start and never shared across calls.
type RunState struct {
	Total         int
	Success       int
	Failed        int
	Skipped       int
	SampleSkipped int

	Messages []string
	Errors   []string
	Warnings []string

	Created []CreatedInstitution
	Admin   AdminStats
}

func newRunState() *RunState {
	return &RunState{}
}

func (s *RunState) addMessage(format string, args ...interface{}) {
	s.Messages = append(s.Messages, fmt.Sprintf(format, args...))
}

func (s *RunState) addRowError(row int, err error) {
	s.Failed++
	s.Errors = append(s.Errors, fmt.Sprintf("row %d: %v", row, err))
}

func (s *RunState) addRowWarning(row int, format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf("row %d: %s", row, fmt.Sprintf(format, args...)))
}

func (s *RunState) recordSkip(row int, reason string) {
	s.Skipped++
	s.addMessage("row %d: skipped (%s)", row, reason)
}

func (s *RunState) recordSampleSkip(row int) {
	s.SampleSkipped++
	s.addMessage("row %d: sample row skipped", row)
}
