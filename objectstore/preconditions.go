package objectstore

import "github.com/cloudcore/cloudcore/cmn/cmnerr"

// Preconditions holds the query-parameter preconditions spec §4.1
// evaluates before any write. A nil pointer means the precondition was not
// supplied.
type Preconditions struct {
	IfGenerationMatch        *int64
	IfGenerationNotMatch     *int64
	IfMetagenerationMatch    *int64
	IfMetagenerationNotMatch *int64
}

// Check evaluates every supplied precondition against the current latest
// object row. existing is nil when no live object currently exists.
func (p Preconditions) Check(existing *Object) error {
	if p.IfGenerationMatch != nil {
		want := *p.IfGenerationMatch
		if want == 0 {
			if existing != nil {
				return cmnerr.ConditionNotMetf("ifGenerationMatch=0 requires the object to not exist")
			}
		} else if existing == nil || existing.Generation != want {
			return cmnerr.ConditionNotMetf("ifGenerationMatch=%d not satisfied", want)
		}
	}
	if p.IfGenerationNotMatch != nil {
		want := *p.IfGenerationNotMatch
		if existing != nil && existing.Generation == want {
			return cmnerr.ConditionNotMetf("ifGenerationNotMatch=%d not satisfied", want)
		}
	}
	if p.IfMetagenerationMatch != nil {
		want := *p.IfMetagenerationMatch
		if existing == nil || existing.Metageneration != want {
			return cmnerr.ConditionNotMetf("ifMetagenerationMatch=%d not satisfied", want)
		}
	}
	if p.IfMetagenerationNotMatch != nil {
		want := *p.IfMetagenerationNotMatch
		if existing != nil && existing.Metageneration == want {
			return cmnerr.ConditionNotMetf("ifMetagenerationNotMatch=%d not satisfied", want)
		}
	}
	return nil
}
