package testtype

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOk bool
	}{
		{raw: "IELTS", want: IELTS, wantOk: true},
		{raw: "  ielts-academic ", want: IELTS, wantOk: true},
		{raw: "IELTS (General Training)", want: IELTS, wantOk: true},
		{raw: "IELTS for UKVI", want: IELTSUKVI, wantOk: true},
		{raw: "ielts_ukvi", want: IELTSUKVI, wantOk: true},
		{raw: "TOEFL iBT", want: TOEFL, wantOk: true},
		{raw: "Duolingo English Test", want: Duolingo, wantOk: true},
		{raw: "gmat focus", want: GMAT, wantOk: true},
		{raw: "toelf", want: TOEFL, wantOk: true},
		{raw: "duolinguo", want: Duolingo, wantOk: true},
		{raw: "", wantOk: false},
		{raw: "cooking class", wantOk: false},
		{raw: "xyz", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "TOEFL iBT", Label(TOEFL))
	assert.Equal(t, "unknown", Label("unknown"))
}

func TestAll(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)
	assert.Equal(t, IELTS, all[0].Key)
	for _, typ := range all {
		assert.True(t, IsValid(typ.Key), typ.Key)
		got, ok := Normalize(typ.Label)
		assert.True(t, ok, typ.Label)
		assert.Equal(t, typ.Key, got)
	}

	// callers cannot alter the canonical list
	all[0].Key = "changed"
	assert.Equal(t, IELTS, All()[0].Key)
}

func TestInitValidators(t *testing.T) {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)

	type booking struct {
		TestType string `validate:"testtype"`
	}
	assert.NoError(t, validate.Struct(booking{TestType: "Pearson Test of English"}))

	err := validate.Struct(booking{TestType: "karate"})
	require.Error(t, err)
	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, "unknown test type", vErrs[0].Translate(translator))
}
