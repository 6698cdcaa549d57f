package models

import (
	"strings"
	"time"
	"unicode"
)

// CaseStatus tracks a case through its lifecycle
type CaseStatus string

// Case statuses, in lifecycle order
const (
	CaseStatusInReview CaseStatus = "In Review"
	CaseStatusAccepted CaseStatus = "Accepted"
	CaseStatusSolved   CaseStatus = "Solved"
)

// SolutionStatus tracks whether a student has submitted a solution
type SolutionStatus string

// Solution statuses
const (
	SolutionStatusPending   SolutionStatus = "pending"
	SolutionStatusSubmitted SolutionStatus = "submitted"
)

// caseTransitions is the single source of truth for legal status moves.
// Re-accepting an accepted case overwrites acceptedBy; a solved case is
// terminal.
var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusInReview: {CaseStatusAccepted, CaseStatusSolved},
	CaseStatusAccepted: {CaseStatusAccepted, CaseStatusSolved},
	CaseStatusSolved:   {},
}

// CanTransition reports whether a case may move from s to the given status
func (s CaseStatus) CanTransition(to CaseStatus) bool {
	for _, next := range caseTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Case represents a citizen-submitted issue tracked through its lifecycle
type Case struct {
	ID          string     `bson:"id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Name        string     `bson:"name" json:"name"`
	Mobile      string     `bson:"mobile" json:"mobile"`
	Category    string     `bson:"category" json:"category"`
	Description string     `bson:"description" json:"description"`
	Language    string     `bson:"language" json:"language"`
	Location    string     `bson:"location" json:"location"`
	Status      CaseStatus `bson:"status" json:"status"`
	AcceptedBy  *string    `bson:"acceptedBy" json:"acceptedBy"`
	Proofs      []string   `bson:"proofs" json:"proofs"`
	Voice       *string    `bson:"voice" json:"voice"`
	Video       *string    `bson:"video" json:"video"`
	Solution    Solution   `bson:"solution" json:"solution"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
}

// Solution is the embedded record of a student's response to a case
type Solution struct {
	Status      SolutionStatus `bson:"status" json:"status"`
	Text        string         `bson:"text" json:"text"`
	DocsNeeded  string         `bson:"docsNeeded" json:"docsNeeded"`
	Files       []string       `bson:"files" json:"files"`
	Voice       *string        `bson:"voice" json:"voice"`
	Video       *string        `bson:"video" json:"video"`
	StudentName *string        `bson:"studentName" json:"studentName"`
	SubmittedAt *time.Time     `bson:"submittedAt" json:"submittedAt"`
}

// NewPendingSolution returns the solution sub-entity a case is created with
func NewPendingSolution() Solution {
	return Solution{
		Status: SolutionStatusPending,
		Files:  []string{},
	}
}

const (
	titleMaxLen  = 80
	titleCutLen  = 77
	maskedDigits = "xxxx"
)

// DeriveTitle builds the case title from the description: the trimmed
// description as-is when it fits, otherwise the first 77 characters with
// trailing whitespace removed plus an ellipsis.
func DeriveTitle(description string) string {
	clean := strings.TrimSpace(description)
	runes := []rune(clean)
	if len(runes) <= titleMaxLen {
		return clean
	}
	cut := strings.TrimRightFunc(string(runes[:titleCutLen]), unicode.IsSpace)
	return cut + "..."
}

// MaskMobile redacts a phone number to first 2 digits + "xxxx" + last 2.
// Inputs with fewer than 4 digits are returned unmasked; non-digits are
// stripped first.
func MaskMobile(mobile string) string {
	var digits strings.Builder
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 4 {
		return d
	}
	return d[:2] + maskedDigits + d[len(d)-2:]
}

// NormalizeCategory trims and lower-cases a category, defaulting to "other"
func NormalizeCategory(category string) string {
	c := strings.TrimSpace(category)
	if c == "" {
		return "other"
	}
	return strings.ToLower(c)
}
