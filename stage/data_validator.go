package stage

import (
	"strings"
	"unicode/utf8"

	"github.com/sherlocklabs/sherlock/core"
)

// DataValidatorOptions tune the token estimate and its ceiling.
type DataValidatorOptions struct {
	// CharMultiplier converts character count to a token estimate.
	CharMultiplier float64
	// WordMultiplier converts word count to a token estimate.
	WordMultiplier float64
	// MaxTokens is the largest estimated size that passes validation.
	MaxTokens int
}

// DataValidator estimates the query's token count from its character and
// word counts, averaging the two independent estimates. Pure, no I/O.
type DataValidator struct {
	opts DataValidatorOptions
}

var _ core.Stage = (*DataValidator)(nil)

// NewDataValidator creates the validator with default multipliers.
func NewDataValidator(optFns ...func(o *DataValidatorOptions)) *DataValidator {
	opts := DataValidatorOptions{
		CharMultiplier: 0.25,
		WordMultiplier: 1.3,
		MaxTokens:      4000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &DataValidator{opts: opts}
}

// Name implements core.Stage.
func (v *DataValidator) Name() core.StageName { return core.StageDataValidator }

// Run implements core.Stage.
func (v *DataValidator) Run(rc *core.RunContext, state *core.State) error {
	estimate := v.Estimate(state.UserQuery.Content)
	state.IsDataValid = estimate <= v.opts.MaxTokens
	if !state.IsDataValid {
		rc.LogInfo("query rejected as too long", "estimated_tokens", estimate, "max_tokens", v.opts.MaxTokens)
	}
	return nil
}

// Estimate returns the averaged token estimate for a text.
func (v *DataValidator) Estimate(text string) int {
	chars := float64(utf8.RuneCountInString(text))
	words := float64(len(strings.Fields(text)))
	return int((chars*v.opts.CharMultiplier + words*v.opts.WordMultiplier) / 2)
}
