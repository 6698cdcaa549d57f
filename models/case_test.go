package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitleShortDescription(t *testing.T) {
	assert.Equal(t, "Streetlight broken near park", DeriveTitle("Streetlight broken near park"))
	assert.Equal(t, "pothole", DeriveTitle("  pothole  "))
}

func TestDeriveTitleExactly80(t *testing.T) {
	desc := strings.Repeat("a", 80)
	assert.Equal(t, desc, DeriveTitle(desc))
}

func TestDeriveTitleLongDescription(t *testing.T) {
	desc := strings.Repeat("a", 100)
	title := DeriveTitle(desc)
	assert.Equal(t, strings.Repeat("a", 77)+"...", title)
	assert.Len(t, title, 80)
}

func TestDeriveTitleTrimsTrailingWhitespaceBeforeEllipsis(t *testing.T) {
	// 76 chars then a space at the cut point
	desc := strings.Repeat("b", 76) + " " + strings.Repeat("c", 30)
	assert.Equal(t, strings.Repeat("b", 76)+"...", DeriveTitle(desc))
}

func TestMaskMobile(t *testing.T) {
	assert.Equal(t, "98xxxx10", MaskMobile("9876543210"))
	assert.Equal(t, "12", MaskMobile("12"))
	assert.Equal(t, "", MaskMobile(""))
	assert.Equal(t, "98xxxx10", MaskMobile("98-765 432.10"))
	assert.Equal(t, "123", MaskMobile("1a2b3c"))
	assert.Equal(t, "12xxxx34", MaskMobile("1234"))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "other", NormalizeCategory(""))
	assert.Equal(t, "other", NormalizeCategory("   "))
	assert.Equal(t, "roads", NormalizeCategory(" Roads "))
	assert.Equal(t, "water", NormalizeCategory("WATER"))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CaseStatusInReview.CanTransition(CaseStatusAccepted))
	assert.True(t, CaseStatusInReview.CanTransition(CaseStatusSolved))
	assert.True(t, CaseStatusAccepted.CanTransition(CaseStatusAccepted))
	assert.True(t, CaseStatusAccepted.CanTransition(CaseStatusSolved))

	assert.False(t, CaseStatusSolved.CanTransition(CaseStatusAccepted))
	assert.False(t, CaseStatusSolved.CanTransition(CaseStatusSolved))
	assert.False(t, CaseStatusSolved.CanTransition(CaseStatusInReview))
	assert.False(t, CaseStatusAccepted.CanTransition(CaseStatusInReview))
	assert.False(t, CaseStatusInReview.CanTransition(CaseStatusInReview))
}

func TestNewPendingSolution(t *testing.T) {
	s := NewPendingSolution()
	assert.Equal(t, SolutionStatusPending, s.Status)
	assert.NotNil(t, s.Files)
	assert.Empty(t, s.Files)
	assert.Nil(t, s.StudentName)
	assert.Nil(t, s.SubmittedAt)
}
