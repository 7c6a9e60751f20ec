// Package testtype holds the canonical list of tests the consultancy prepares for and books,
// and normalizes the many spellings users and admins type for them.
package testtype

import (
	"regexp"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/edvise/core"
)

// Categories
const (
	CategoryEnglish      = "english"
	CategoryAdmissions   = "admissions"
	CategoryProfessional = "professional"
)

// Canonical keys
const (
	IELTS     = "ielts"
	IELTSUKVI = "ielts_ukvi"
	TOEFL     = "toefl"
	PTE       = "pte"
	Duolingo  = "duolingo"
	GRE       = "gre"
	GMAT      = "gmat"
	SAT       = "sat"
	OET       = "oet"
	CELPIP    = "celpip"
)

// minFuzzyRatio is the lowest difflib similarity accepted by the fuzzy fallback.
const minFuzzyRatio = 0.8

type Type struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

var (
	types = []Type{
		{Key: IELTS, Label: "IELTS", Category: CategoryEnglish},
		{Key: IELTSUKVI, Label: "IELTS for UKVI", Category: CategoryEnglish},
		{Key: TOEFL, Label: "TOEFL iBT", Category: CategoryEnglish},
		{Key: PTE, Label: "PTE Academic", Category: CategoryEnglish},
		{Key: Duolingo, Label: "Duolingo English Test", Category: CategoryEnglish},
		{Key: CELPIP, Label: "CELPIP", Category: CategoryEnglish},
		{Key: GRE, Label: "GRE General Test", Category: CategoryAdmissions},
		{Key: GMAT, Label: "GMAT Focus Edition", Category: CategoryAdmissions},
		{Key: SAT, Label: "Digital SAT", Category: CategoryAdmissions},
		{Key: OET, Label: "OET", Category: CategoryProfessional},
	}

	// Mapping normalizes free-text test names (lowercased, separators collapsed) to canonical keys.
	Mapping = map[string]string{
		"ielts":                     IELTS,
		"ielts academic":            IELTS,
		"ielts general":             IELTS,
		"ielts general training":    IELTS,
		"ielts gt":                  IELTS,
		"ielts ac":                  IELTS,
		"academic ielts":            IELTS,
		"ielts ukvi":                IELTSUKVI,
		"ielts for ukvi":            IELTSUKVI,
		"ukvi ielts":                IELTSUKVI,
		"ielts life skills":         IELTSUKVI,
		"toefl":                     TOEFL,
		"toefl ibt":                 TOEFL,
		"toefl essentials":          TOEFL,
		"ibt":                       TOEFL,
		"pte":                       PTE,
		"pte a":                     PTE,
		"pte academic":              PTE,
		"pearson":                   PTE,
		"pearson test of english":   PTE,
		"duolingo":                  Duolingo,
		"det":                       Duolingo,
		"duolingo english test":     Duolingo,
		"duolingo english":          Duolingo,
		"gre":                       GRE,
		"gre general":               GRE,
		"gre general test":          GRE,
		"gmat":                      GMAT,
		"gmat focus":                GMAT,
		"gmat focus edition":        GMAT,
		"sat":                       SAT,
		"digital sat":               SAT,
		"oet":                       OET,
		"occupational english test": OET,
		"celpip":                    CELPIP,
		"celpip general":            CELPIP,
	}

	byKey      = make(map[string]Type, len(types))
	candidates []string // Mapping keys + lowercased labels, sorted for deterministic fuzzy matching

	separators = regexp.MustCompile(`[\s\-_/.,:()]+`)

	testTypeTag  = "testtype"
	testTypeText = "unknown test type"
)

func init() {
	for _, t := range types {
		byKey[t.Key] = t
		Mapping[t.Key] = t.Key
		Mapping[clean(t.Label)] = t.Key
	}
	candidates = make([]string, 0, len(Mapping))
	for k := range Mapping {
		candidates = append(candidates, k)
	}
	sort.Strings(candidates)
}

func clean(raw string) string {
	return strings.TrimSpace(separators.ReplaceAllString(core.CleanString(raw, true /* lower */), " "))
}

// Normalize maps raw to a canonical test type key: exact lookup first, then a fuzzy match.
func Normalize(raw string) (string, bool) {
	s := clean(raw)
	if s == "" {
		return "", false
	}
	if key, ok := Mapping[s]; ok {
		return key, true
	}
	if key, ok := byKey[strings.ReplaceAll(s, " ", "_")]; ok {
		return key.Key, true
	}

	var best string
	var bestRatio float64
	matcher := difflib.NewMatcher(nil, strings.Split(s, ""))
	for _, cand := range candidates {
		matcher.SetSeq1(strings.Split(cand, ""))
		if matcher.QuickRatio() < minFuzzyRatio {
			continue
		}
		if r := matcher.Ratio(); r > bestRatio {
			best, bestRatio = cand, r
		}
	}
	if bestRatio >= minFuzzyRatio {
		return Mapping[best], true
	}
	return "", false
}

// Label returns the display label of a canonical key, or the key itself when unknown.
func Label(key string) string {
	if t, ok := byKey[key]; ok {
		return t.Label
	}
	return key
}

func IsValid(key string) bool {
	_, ok := byKey[key]
	return ok
}

func Get(key string) (Type, bool) {
	t, ok := byKey[key]
	return t, ok
}

// All returns the canonical test types, in display order.
func All() []Type {
	res := make([]Type, len(types))
	copy(res, types)
	return res
}

// InitValidators registers the `testtype` tag: the field must normalize to a known test type.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(testTypeTag, func(fl validator.FieldLevel) bool {
		_, ok := Normalize(fl.Field().String())
		return ok
	})
	core.RegisterCustomTranslation(validate, translator, testTypeTag, testTypeText)
}
