package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentconnect/intake/internal/catalog"
)

func TestPaymentReference(t *testing.T) {
	tests := []struct {
		first, last string
		want        string
	}{
		{"Jane", "Doe", "Jane Doe"},
		{"", "", " "},
		{"Ana-María", "O'Neil", "Ana-María O'Neil"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := PaymentReference(PersonalInfo{FirstName: tt.first, LastName: tt.last})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "14 March 2025", FormatDate("2025-03-14"))
	assert.Equal(t, "1 January 2026", FormatDate("2026-01-01"))
	assert.Equal(t, "", FormatDate(""))
	assert.Equal(t, "next week", FormatDate("next week"))
}

func TestDerive_LineItemsFollowSelectionOrder(t *testing.T) {
	st := NewFormState()
	st = st.WithSubjectToggled("chemistry")
	st = st.WithSubjectToggled("mathematics")
	st, err := st.WithMark("mathematics", MarkCurrent, "35")
	require.NoError(t, err)

	pricing := catalog.Pricing{CostPerSubject: 400, Currency: "LKR", Locale: "en"}
	r := Derive(st, testCatalog(), pricing)

	require.Len(t, r.LineItems, 2)
	assert.Equal(t, "chemistry", r.LineItems[0].SubjectID)
	assert.Equal(t, "Chemistry", r.LineItems[0].Name)
	assert.Equal(t, "Sat 13:30", r.LineItems[0].Schedule)
	assert.False(t, r.LineItems[0].HasMarks)

	assert.Equal(t, "mathematics", r.LineItems[1].SubjectID)
	assert.True(t, r.LineItems[1].HasMarks)
	assert.Equal(t, "35", r.LineItems[1].Marks.Current)
	assert.Equal(t, "LKR 400", r.LineItems[1].CostDisplay)

	assert.Equal(t, int64(800), r.TotalCost)
}

func TestDerive_UnknownSubjectDoesNotPanic(t *testing.T) {
	st := NewFormState()
	st.Subjects = []string{"physics", "retired-subject"}

	r := Derive(st, testCatalog(), catalog.Pricing{CostPerSubject: 400})

	require.Len(t, r.LineItems, 2)
	assert.True(t, r.LineItems[0].Known)
	assert.False(t, r.LineItems[1].Known)
	assert.Empty(t, r.LineItems[1].Name)
	assert.Empty(t, r.LineItems[1].Schedule)
}

func TestReview_ReferenceFromName(t *testing.T) {
	st := NewFormState()
	st, _ = st.WithField(FieldFirstName, "Jane")
	st, _ = st.WithField(FieldLastName, "Doe")

	r := Derive(st, testCatalog(), catalog.DefaultPricing())
	assert.Equal(t, "Jane Doe", r.PaymentReference)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("guardianContact")
	require.NoError(t, err)
	assert.Equal(t, FieldGuardianContact, f)

	_, err = ParseField("age")
	require.ErrorIs(t, err, ErrUnknownField)

	mf, err := ParseMarkField("targetMarks")
	require.NoError(t, err)
	assert.Equal(t, MarkTarget, mf)

	_, err = ParseMarkField("bestMarks")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestStepLabels(t *testing.T) {
	assert.Equal(t, []string{"Personal Info", "Subjects", "Marks", "Review & Payment"}, StepLabels())
	assert.Len(t, StepLabels(), StepCount)
}
