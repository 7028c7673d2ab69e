package konfetti

import (
	"context"

	"github.com/samarcan/konfetti/errors"
)

// Failure is one entry of a validation report.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Validate eagerly resolves every declared variable and reports everything
// that cannot be served, instead of stopping at the first problem. An
// optional variable without a default is allowed to be absent; anything
// else that fails to resolve or coerce is a failure. Values resolved here
// land in the same cache normal access uses, so a clean validation makes
// subsequent reads free.
func (k *Konfig) Validate(ctx context.Context) []Failure {
	var failures []Failure

	for _, name := range k.Names() {
		k.varsMu.RLock()
		v := k.vars[name]
		k.varsMu.RUnlock()

		_, err := k.Get(ctx, name)
		if err == nil {
			continue
		}

		// Absence is only a defect when the declaration demands presence.
		if errors.IsMissing(err) && !v.IsRequired() {
			continue
		}

		failures = append(failures, Failure{Name: name, Reason: err.Error()})
	}

	if k.metrics != nil && len(failures) > 0 {
		k.metrics.RecordValidationFailures(len(failures))
	}

	if len(failures) > 0 {
		k.logger.Warn("validation found unresolvable variables", "failures", len(failures))
	}

	return failures
}
