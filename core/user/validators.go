package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edvise/core"
)

var (
	userRoleTag  = "userrole"
	userRoleText = "invalid role"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(userRoleTag, core.OneOfValidation(AllRoles...))
	core.RegisterCustomTranslation(validate, translator, userRoleTag, userRoleText)
}
