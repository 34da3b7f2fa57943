package boogaloo

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	bgerrors "github.com/halsten/boogaloo/internal/errors"
)

// ToJSON renders tc as the report a driver's `--json` output prints,
// building the document by patching field by field with sjson rather than
// a full struct marshal round-trip.
func (tc *TestCase) ToJSON() (string, error) {
	doc := "{}"
	var err error
	set := func(path string, v any) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, v)
	}

	set("run_id", tc.RunID)
	set("entry_signature", tc.EntrySignature)
	set("verdict", string(tc.Verdict()))

	for i, r := range tc.Returns {
		set(fmt.Sprintf("returns.%d", i), r.String())
	}
	for i, c := range tc.FinalConstraintMemory {
		set(fmt.Sprintf("final_constraints.%d", i), c.String())
	}

	if f := tc.Failure; f != nil {
		set("failure.kind", f.Kind.String())
		switch f.Kind {
		case bgerrors.AssertionViolated:
			set("failure.clause_kind", f.ClauseKind.String())
			set("failure.message", f.Message)
			set("failure.declared_at", f.DeclaredAt.String())
			set("failure.failed_at", f.FailedAt.String())
			set("failure.stack", f.Stack.String())
		case bgerrors.Unreachable:
			set("failure.at", f.UnreachableAt.String())
		case bgerrors.Unsupported:
			set("failure.at", f.At.String())
			set("failure.detail", f.Detail)
		}
	}

	if err != nil {
		return "", err
	}
	return doc, nil
}

// VerdictFromJSON extracts just the verdict field from a rendered report
// without unmarshaling the whole document — the read-side counterpart to
// ToJSON's patch-based construction.
func VerdictFromJSON(doc string) Verdict {
	return Verdict(gjson.Get(doc, "verdict").String())
}

// FailureKindFromJSON extracts the failure kind, or "" if the report is a
// passing TestCase.
func FailureKindFromJSON(doc string) string {
	return gjson.Get(doc, "failure.kind").String()
}
