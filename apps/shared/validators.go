// Package shared holds what the API and the admin CLI set up the same way.
package shared

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/catalog"
	"github.com/trezcool/edvise/core/payment"
	"github.com/trezcool/edvise/core/pricing"
	"github.com/trezcool/edvise/core/reservation"
	"github.com/trezcool/edvise/core/testtype"
	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/core/writing"
)

// NewValidator returns a validator knowing every custom tag of the domain packages,
// with their english error messages.
func NewValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()

	core.InitValidators(validate, translator)
	testtype.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	pricing.InitValidators(validate, translator)
	reservation.InitValidators(validate, translator)
	writing.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)
	return validate, translator
}
