package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "foicore/pkg/domainerrors"
)

func TestTruncateWords(t *testing.T) {
	t.Run("short input passes through", func(t *testing.T) {
		assert.Equal(t, "§1: Privacy", TruncateWords("§1: Privacy", 12))
	})

	t.Run("long input is cut at a word boundary", func(t *testing.T) {
		line := "§5 Abs. 2: Protection of personal data of third parties and ongoing administrative proceedings of the federal government"
		got := TruncateWords(line, 12)
		assert.True(t, strings.HasSuffix(got, "…"))
		trimmed := strings.TrimSuffix(got, "…")
		assert.True(t, strings.HasPrefix(line, trimmed), "never cuts mid-word: %q", got)
		assert.Len(t, strings.Fields(trimmed), 12)
	})

	t.Run("stable", func(t *testing.T) {
		line := strings.Repeat("word ", 40)
		assert.Equal(t, TruncateWords(line, 12), TruncateWords(line, 12))
	})
}

func TestOwnRefusalChoices(t *testing.T) {
	t.Run("one choice per non-empty line", func(t *testing.T) {
		st := &Statute{RefusalReasons: "§1: Privacy\n\n§2: Security\r\n§3: Trade secrets\n"}
		choices := st.OwnRefusalChoices()
		require.Len(t, choices, 3)
		assert.Equal(t, "§1: Privacy", choices[0].Code)
		assert.Equal(t, "§2: Security", choices[1].Code)
		assert.Equal(t, "§3: Trade secrets", choices[2].Code)
	})

	t.Run("empty reasons yield no choices", func(t *testing.T) {
		st := &Statute{RefusalReasons: ""}
		assert.Empty(t, st.OwnRefusalChoices())
	})
}

func TestStatuteValidate(t *testing.T) {
	day := 30
	base := func() *Statute {
		return &Statute{
			ID:                  uuid.New(),
			Name:                "Informationsfreiheitsgesetz",
			MaxResponseTime:     &day,
			MaxResponseTimeUnit: UnitCalendarDay,
		}
	}

	t.Run("valid statute passes", func(t *testing.T) {
		assert.NoError(t, base().Validate(nil))
	})

	t.Run("empty name rejected", func(t *testing.T) {
		st := base()
		st.Name = ""
		err := st.Validate(nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("unknown unit rejected when a response time is set", func(t *testing.T) {
		st := base()
		st.MaxResponseTimeUnit = "fortnight"
		err := st.Validate(nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidUnit))
	})

	t.Run("unit not checked without a response time", func(t *testing.T) {
		st := base()
		st.MaxResponseTime = nil
		st.MaxResponseTimeUnit = ""
		assert.NoError(t, st.Validate(nil))
	})

	t.Run("combined without meta rejected", func(t *testing.T) {
		st := base()
		st.CombinedIDs = []uuid.UUID{uuid.New()}
		err := st.Validate(nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("meta combining meta rejected", func(t *testing.T) {
		st := base()
		st.Meta = true
		nested := base()
		nested.Meta = true
		err := st.Validate([]*Statute{nested})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("meta combining plain statutes passes", func(t *testing.T) {
		st := base()
		st.Meta = true
		assert.NoError(t, st.Validate([]*Statute{base(), base()}))
	})
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "informationsfreiheitsgesetz-bund", Slugify("Informationsfreiheitsgesetz (Bund)"))
	assert.Equal(t, "umweltinformationsgesetz", Slugify("Umweltinformationsgesetz"))
	assert.Equal(t, "a-b-c", Slugify("  A  b   C "))
}
