// Package eligibility implements the pure predicate deciding whether a
// student profile may see a job drive. It performs no I/O; callers hand it
// already-normalized data.
package eligibility

import (
	"strings"

	"github.com/campushire/placement-api/internal/models"
)

// DefaultPlacedCTCThresholdLPA is the policy floor (in lakhs per annum) below
// which an already-placed student may not re-apply.
const DefaultPlacedCTCThresholdLPA = 10

// Ineligibility reasons. Evaluate reports every failing rule, never a subset.
const (
	ReasonCGPA         = "CGPA requirement not met"
	ReasonDepartment   = "Department not eligible"
	ReasonBacklogs     = "Backlogs exceed limit"
	ReasonBatch        = "Batch not eligible"
	ReasonPlacedCTC    = "Already placed; CTC below re-application threshold"
	ReasonUnplacedOnly = "Drive restricted to unplaced students"
)

// Profile is the slice of a user relevant to eligibility checks.
type Profile struct {
	CGPA            float64
	CurrentBacklogs int
	Department      string
	Batch           string
	IsPlaced        bool
}

// Rules is a drive's eligibility gate plus the package policy inputs.
type Rules struct {
	MinCGPA            *float64
	MaxBacklogs        *int
	AllowedDepartments []string
	AllowedBatches     []string
	UnplacedOnly       bool
	CTC                float64
	// PlacedCTCThresholdLPA overrides the default placed-student CTC floor
	// when positive.
	PlacedCTCThresholdLPA float64
}

// ProfileFor builds an eligibility profile from a user record, applying the
// batch-from-graduation-year fallback in one place.
func ProfileFor(user models.User) Profile {
	return Profile{
		CGPA:            user.CGPA,
		CurrentBacklogs: user.CurrentBacklogs,
		Department:      user.Department,
		Batch:           user.EffectiveBatch(),
		IsPlaced:        user.IsPlaced,
	}
}

// RulesFor extracts a drive's eligibility gate. The threshold comes from
// configuration; zero selects the default.
func RulesFor(drive models.JobDrive, placedCTCThresholdLPA float64) Rules {
	return Rules{
		MinCGPA:               drive.MinCGPA,
		MaxBacklogs:           drive.MaxBacklogs,
		AllowedDepartments:    drive.Departments(),
		AllowedBatches:        drive.Batches(),
		UnplacedOnly:          drive.UnplacedOnly,
		CTC:                   drive.CTC,
		PlacedCTCThresholdLPA: placedCTCThresholdLPA,
	}
}

// Evaluate returns every failing rule for the profile/rules pair. An empty
// result means the profile is eligible. Rules are independent; none
// short-circuits another.
func Evaluate(profile Profile, rules Rules) []string {
	var reasons []string

	if rules.MinCGPA != nil && profile.CGPA < *rules.MinCGPA {
		reasons = append(reasons, ReasonCGPA)
	}

	if len(rules.AllowedDepartments) > 0 && !containsFold(rules.AllowedDepartments, profile.Department) {
		reasons = append(reasons, ReasonDepartment)
	}

	if rules.MaxBacklogs != nil && profile.CurrentBacklogs > *rules.MaxBacklogs {
		reasons = append(reasons, ReasonBacklogs)
	}

	if len(rules.AllowedBatches) > 0 {
		if profile.Batch == "" || !containsFold(rules.AllowedBatches, profile.Batch) {
			reasons = append(reasons, ReasonBatch)
		}
	}

	threshold := rules.PlacedCTCThresholdLPA
	if threshold <= 0 {
		threshold = DefaultPlacedCTCThresholdLPA
	}
	if profile.IsPlaced && rules.CTC <= threshold {
		reasons = append(reasons, ReasonPlacedCTC)
	}

	if rules.UnplacedOnly && profile.IsPlaced {
		reasons = append(reasons, ReasonUnplacedOnly)
	}

	return reasons
}

// IsEligible reports whether the profile passes every rule.
func IsEligible(profile Profile, rules Rules) bool {
	return len(Evaluate(profile, rules)) == 0
}

func containsFold(values []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}
