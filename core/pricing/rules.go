package pricing

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
)

var (
	promoRuleTag  = "promorule"
	promoRuleText = "invalid rule: must be a boolean expression over TestType, Tier, Seats, Subtotal, Code, Weekday"
)

// RuleEnv is what promotion rules can see, e.g. `TestType == "ielts" && Seats >= 3`.
type RuleEnv struct {
	TestType string  // canonical test type key
	Tier     string  // tier name
	Seats    int     // number of candidates booked
	Subtotal float64 // in major currency units
	Code     string  // promo code provided by the customer (upper-cased)
	Weekday  string  // "Monday", ... (UTC)
}

// ruleCache holds compiled programs by source; rules are evaluated on every quote.
type ruleCache struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func newRuleCache() *ruleCache {
	return &ruleCache{programs: make(map[string]*vm.Program)}
}

func compileRule(rule string) (*vm.Program, error) {
	return expr.Compile(rule, expr.Env(RuleEnv{}), expr.AsBool())
}

func (c *ruleCache) get(rule string) (*vm.Program, error) {
	c.mu.RLock()
	p, ok := c.programs[rule]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := compileRule(rule)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.programs[rule] = p
	c.mu.Unlock()
	return p, nil
}

// eval reports whether rule holds for env. An empty rule always holds.
func (c *ruleCache) eval(rule string, env RuleEnv) (bool, error) {
	if rule == "" {
		return true, nil
	}
	p, err := c.get(rule)
	if err != nil {
		return false, errors.Wrap(err, "compiling rule")
	}
	out, err := expr.Run(p, env)
	if err != nil {
		return false, errors.Wrap(err, "running rule")
	}
	ok, _ := out.(bool)
	return ok, nil
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(promoRuleTag, func(fl validator.FieldLevel) bool {
		_, err := compileRule(fl.Field().String())
		return err == nil
	})
	core.RegisterCustomTranslation(validate, translator, promoRuleTag, promoRuleText)
}
